package model

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/form"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/table"
)

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// TargetID identifies a sales target
type TargetID string

// NewTargetID returns a random target ID
func NewTargetID() TargetID {
	return TargetID(uuid.NewString())
}

func (id TargetID) String() string {
	return string(id)
}

// Target is a sales goal for a user and territory over a monthly period
type Target struct {
	ID          TargetID     `json:"id"`
	UserID      string       `json:"user_id"`
	TerritoryID string       `json:"territory_id"`
	Period      string       `json:"period"`
	Lines       []TargetLine `json:"lines"`
	CreatedBy   string       `json:"created_by,omitempty"`
	UpdatedBy   string       `json:"updated_by,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TargetLine is the goal for one product within a target
type TargetLine struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	Amount    Money   `json:"amount"`
	Achieved  Money   `json:"achieved"`
}

// TargetSummary is derived from target lines whenever it is read
type TargetSummary struct {
	Lines         int     `json:"lines"`
	TotalQuantity float64 `json:"total_quantity"`
	TotalAmount   Money   `json:"total_amount"`
	TotalAchieved Money   `json:"total_achieved"`
	// Achievement is TotalAchieved / TotalAmount in percent, 0 when no amount is set
	Achievement float64 `json:"achievement"`
}

// Summary totals the child lines
func (t *Target) Summary() TargetSummary {
	s := TargetSummary{Lines: len(t.Lines)}
	for _, l := range t.Lines {
		s.TotalQuantity += l.Quantity
		s.TotalAmount += l.Amount
		s.TotalAchieved += l.Achieved
	}
	if s.TotalAmount > 0 {
		s.Achievement = float64(s.TotalAchieved) / float64(s.TotalAmount) * 100
	}
	return s
}

// Status returns a badge status for the target achievement
func (t *Target) Status() string {
	s := t.Summary()
	switch {
	case s.TotalAmount == 0:
		return "draft"
	case s.TotalAchieved >= s.TotalAmount:
		return "achieved"
	case s.Achievement >= 50:
		return "in_progress"
	default:
		return "behind"
	}
}

// Validate checks the target fields
func (t *Target) Validate() error {
	errs := form.ValidationErrors{}
	if t.UserID == "" {
		errs["user_id"] = form.ReasonRequired
	}
	if t.TerritoryID == "" {
		errs["territory_id"] = form.ReasonRequired
	}
	switch {
	case t.Period == "":
		errs["period"] = form.ReasonRequired
	case !periodPattern.MatchString(t.Period):
		errs["period"] = "must be a month in YYYY-MM format"
	}
	seen := make(map[string]bool, len(t.Lines))
	for _, l := range t.Lines {
		switch {
		case l.ProductID == "":
			errs["lines"] = "every line requires a product"
		case seen[l.ProductID]:
			errs["lines"] = "a product may appear only once"
		case l.Quantity < 0 || l.Amount < 0 || l.Achieved < 0:
			errs["lines"] = "line values must not be negative"
		}
		seen[l.ProductID] = true
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Clone returns a deep copy of the target
func (t *Target) Clone() *Target {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Lines = append([]TargetLine(nil), t.Lines...)
	return &cp
}

// Row flattens the target and its summary for table display
func (t *Target) Row() table.Row {
	s := t.Summary()
	return table.Row{
		"id":             t.ID.String(),
		"user_id":        t.UserID,
		"territory_id":   t.TerritoryID,
		"period":         t.Period,
		"lines":          s.Lines,
		"total_amount":   s.TotalAmount.Float64(),
		"total_achieved": s.TotalAchieved.Float64(),
		"achievement":    s.Achievement,
		"status":         t.Status(),
	}
}
