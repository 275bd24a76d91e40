package types

// BadgeTone is the color family of a status badge or stat card
type BadgeTone string

const (
	ToneSuccess BadgeTone = "success"
	ToneWarning BadgeTone = "warning"
	ToneDanger  BadgeTone = "danger"
	ToneInfo    BadgeTone = "info"
	ToneNeutral BadgeTone = "neutral"
)
