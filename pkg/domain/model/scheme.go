package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/form"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/table"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

// SchemeID identifies an incentive scheme
type SchemeID string

// NewSchemeID returns a random scheme ID
func NewSchemeID() SchemeID {
	return SchemeID(uuid.NewString())
}

func (id SchemeID) String() string {
	return string(id)
}

// Scheme is an incentive program that expense claims are filed under
type Scheme struct {
	ID          SchemeID     `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	StartDate   string       `json:"start_date"`
	EndDate     string       `json:"end_date,omitempty"`
	Active      bool         `json:"active"`
	Totals      SchemeTotals `json:"totals"`
	CreatedBy   string       `json:"created_by,omitempty"`
	UpdatedBy   string       `json:"updated_by,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// SchemeTotals is the aggregate of the claims filed under a scheme
type SchemeTotals struct {
	ClaimsGenerated int64 `json:"claims_generated"`
	ClaimsApproved  int64 `json:"claims_approved"`
	TotalPayout     Money `json:"total_payout"`
}

// Add returns t + o
func (t SchemeTotals) Add(o SchemeTotals) SchemeTotals {
	return SchemeTotals{
		ClaimsGenerated: t.ClaimsGenerated + o.ClaimsGenerated,
		ClaimsApproved:  t.ClaimsApproved + o.ClaimsApproved,
		TotalPayout:     t.TotalPayout + o.TotalPayout,
	}
}

// Neg returns -t
func (t SchemeTotals) Neg() SchemeTotals {
	return SchemeTotals{
		ClaimsGenerated: -t.ClaimsGenerated,
		ClaimsApproved:  -t.ClaimsApproved,
		TotalPayout:     -t.TotalPayout,
	}
}

// IsZero reports whether t changes nothing
func (t SchemeTotals) IsZero() bool {
	return t == SchemeTotals{}
}

// Contribution is what a single claim in status adds to its scheme totals
func Contribution(status types.ClaimStatus, amount Money) SchemeTotals {
	t := SchemeTotals{ClaimsGenerated: 1}
	if status == types.ClaimStatusApproved {
		t.ClaimsApproved = 1
		t.TotalPayout = amount
	}
	return t
}

// TotalsDelta is the change to scheme totals when a claim of amount moves
// from one status to another
func TotalsDelta(from, to types.ClaimStatus, amount Money) SchemeTotals {
	return Contribution(to, amount).Add(Contribution(from, amount).Neg())
}

// ComputeSchemeTotals derives the totals from the full set of claims
func ComputeSchemeTotals(claims []*ExpenseClaim) SchemeTotals {
	var t SchemeTotals
	for _, c := range claims {
		t = t.Add(Contribution(c.Status, c.Amount))
	}
	return t
}

// Validate checks the scheme fields
func (s *Scheme) Validate() error {
	errs := form.ValidationErrors{}
	if s.Name == "" {
		errs["name"] = form.ReasonRequired
	}
	start, startErr := time.Parse(form.DateLayout, s.StartDate)
	switch {
	case s.StartDate == "":
		errs["start_date"] = form.ReasonRequired
	case startErr != nil:
		errs["start_date"] = form.ReasonInvalidDate
	}
	if s.EndDate != "" {
		end, err := time.Parse(form.DateLayout, s.EndDate)
		switch {
		case err != nil:
			errs["end_date"] = form.ReasonInvalidDate
		case startErr == nil && end.Before(start):
			errs["end_date"] = "must not be before the start date"
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Clone returns a copy of the scheme
func (s *Scheme) Clone() *Scheme {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// Row flattens the scheme for table display
func (s *Scheme) Row() table.Row {
	return table.Row{
		"id":               s.ID.String(),
		"name":             s.Name,
		"start_date":       s.StartDate,
		"end_date":         s.EndDate,
		"active":           s.Active,
		"claims_generated": s.Totals.ClaimsGenerated,
		"claims_approved":  s.Totals.ClaimsApproved,
		"total_payout":     s.Totals.TotalPayout.Float64(),
	}
}
