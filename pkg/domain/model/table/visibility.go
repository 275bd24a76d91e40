package table

// VisibleColumns tracks which declared columns are shown. At least one column
// is always visible.
type VisibleColumns struct {
	order   []string
	visible map[string]bool
}

// NewVisibleColumns creates the visibility state for columns. Unknown keys in
// initial are ignored; an empty or fully unknown initial set shows everything.
func NewVisibleColumns(columns []Column, initial []string) *VisibleColumns {
	v := &VisibleColumns{
		order:   make([]string, 0, len(columns)),
		visible: make(map[string]bool, len(columns)),
	}
	for _, c := range columns {
		v.order = append(v.order, c.Key)
		v.visible[c.Key] = false
	}

	count := 0
	for _, key := range initial {
		if _, ok := v.visible[key]; ok && !v.visible[key] {
			v.visible[key] = true
			count++
		}
	}
	if count == 0 {
		v.ShowAll()
	}
	return v
}

// Toggle flips the visibility of key. Hiding the last visible column and
// unknown keys are no-ops. It reports whether anything changed.
func (v *VisibleColumns) Toggle(key string) bool {
	shown, ok := v.visible[key]
	if !ok {
		return false
	}
	if shown && v.Len() == 1 {
		return false
	}
	v.visible[key] = !shown
	return true
}

// ShowAll makes every declared column visible
func (v *VisibleColumns) ShowAll() {
	for _, key := range v.order {
		v.visible[key] = true
	}
}

// Set replaces the visible set with keys. It is ignored when no key is known.
func (v *VisibleColumns) Set(keys []string) {
	next := make(map[string]bool, len(v.order))
	count := 0
	for _, key := range keys {
		if _, ok := v.visible[key]; ok && !next[key] {
			next[key] = true
			count++
		}
	}
	if count == 0 {
		return
	}
	for _, key := range v.order {
		v.visible[key] = next[key]
	}
}

// IsVisible reports whether key is shown
func (v *VisibleColumns) IsVisible(key string) bool {
	return v.visible[key]
}

// Len returns the number of visible columns
func (v *VisibleColumns) Len() int {
	n := 0
	for _, shown := range v.visible {
		if shown {
			n++
		}
	}
	return n
}

// Keys returns the visible keys in declaration order
func (v *VisibleColumns) Keys() []string {
	keys := make([]string, 0, len(v.order))
	for _, key := range v.order {
		if v.visible[key] {
			keys = append(keys, key)
		}
	}
	return keys
}

// Apply returns the visible subset of columns, preserving their order
func (v *VisibleColumns) Apply(columns []Column) []Column {
	result := make([]Column, 0, len(columns))
	for _, c := range columns {
		if v.visible[c.Key] {
			result = append(result, c)
		}
	}
	return result
}
