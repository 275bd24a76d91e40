package table

// MaxPageButtons is the largest number of page buttons a pager shows
const MaxPageButtons = 5

// PageWindow returns the page numbers to display for current out of total pages.
// Windows are anchored at the first and last pages near the extremes and
// centered on current otherwise.
func PageWindow(current, total int) []int {
	if total <= 0 {
		return []int{}
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	var start int
	switch {
	case total <= MaxPageButtons:
		start = 1
	case current <= 3:
		start = 1
	case current >= total-2:
		start = total - MaxPageButtons + 1
	default:
		start = current - 2
	}

	n := min(total, MaxPageButtons)
	pages := make([]int, n)
	for i := range pages {
		pages[i] = start + i
	}
	return pages
}

// PageCount returns ceil(count / perPage)
func PageCount(count, perPage int) int {
	if count <= 0 || perPage <= 0 {
		return 0
	}
	return (count + perPage - 1) / perPage
}
