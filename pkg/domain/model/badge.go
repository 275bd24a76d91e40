package model

import (
	"strings"

	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

// StatusBadge is the label and tone shown for a status value
type StatusBadge struct {
	Label string          `json:"label"`
	Tone  types.BadgeTone `json:"tone"`
}

var badges = map[string]StatusBadge{
	"active":      {Label: "Active", Tone: types.ToneSuccess},
	"inactive":    {Label: "Inactive", Tone: types.ToneNeutral},
	"pending":     {Label: "Pending", Tone: types.ToneWarning},
	"approved":    {Label: "Approved", Tone: types.ToneSuccess},
	"rejected":    {Label: "Rejected", Tone: types.ToneDanger},
	"draft":       {Label: "Draft", Tone: types.ToneInfo},
	"in_progress": {Label: "In Progress", Tone: types.ToneInfo},
	"completed":   {Label: "Completed", Tone: types.ToneSuccess},
	"achieved":    {Label: "Achieved", Tone: types.ToneSuccess},
	"behind":      {Label: "Behind", Tone: types.ToneDanger},
	"cancelled":   {Label: "Cancelled", Tone: types.ToneDanger},
}

// Badge maps any status string to a badge. Unknown statuses get a neutral
// badge with a title-cased label.
func Badge(status string) StatusBadge {
	key := strings.ToLower(strings.TrimSpace(status))
	if b, ok := badges[key]; ok {
		return b
	}
	if key == "" {
		return StatusBadge{Label: "Unknown", Tone: types.ToneNeutral}
	}
	return StatusBadge{Label: titleCase(key), Tone: types.ToneNeutral}
}

// BoolBadge renders a switch value as an active or inactive badge
func BoolBadge(v bool) StatusBadge {
	if v {
		return badges["active"]
	}
	return badges["inactive"]
}

func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// StatCard is a headline number on the dashboard
type StatCard struct {
	Title string          `json:"title"`
	Value string          `json:"value"`
	Delta string          `json:"delta,omitempty"`
	Tone  types.BadgeTone `json:"tone"`
}
