package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/form"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/table"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

// ExpenseClaimID identifies an expense claim
type ExpenseClaimID string

// NewExpenseClaimID returns a random claim ID
func NewExpenseClaimID() ExpenseClaimID {
	return ExpenseClaimID(uuid.NewString())
}

func (id ExpenseClaimID) String() string {
	return string(id)
}

// ExpenseClaim is a reimbursement request filed by a sales representative
// under an incentive scheme
type ExpenseClaim struct {
	ID          ExpenseClaimID    `json:"id"`
	SchemeID    SchemeID          `json:"scheme_id"`
	UserID      string            `json:"user_id"`
	Type        string            `json:"type"`
	Date        string            `json:"date"`
	Amount      Money             `json:"amount"`
	Description string            `json:"description,omitempty"`
	Status      types.ClaimStatus `json:"status"`
	Attachments []string          `json:"attachments,omitempty"`
	CreatedBy   string            `json:"created_by,omitempty"`
	UpdatedBy   string            `json:"updated_by,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ClaimKey is the tuple that identifies duplicate claims
type ClaimKey struct {
	UserID string `json:"user_id"`
	Type   string `json:"type"`
	Date   string `json:"date"`
	Amount Money  `json:"amount"`
}

// Key returns the duplicate-detection key of the claim. Every field is
// compared exactly.
func (c *ExpenseClaim) Key() ClaimKey {
	return ClaimKey{
		UserID: c.UserID,
		Type:   c.Type,
		Date:   c.Date,
		Amount: c.Amount,
	}
}

// ID returns a deterministic identifier of the key, usable as a document ID
func (k ClaimKey) ID() string {
	sum := sha256.Sum256([]byte(k.UserID + "\x00" + k.Type + "\x00" + k.Date + "\x00" + k.Amount.String()))
	return hex.EncodeToString(sum[:])
}

// Validate checks the claim fields. It returns form.ValidationErrors keyed by
// field so callers can report them per control.
func (c *ExpenseClaim) Validate() error {
	errs := form.ValidationErrors{}
	if c.SchemeID == "" {
		errs["scheme_id"] = form.ReasonRequired
	}
	if c.UserID == "" {
		errs["user_id"] = form.ReasonRequired
	}
	if strings.TrimSpace(c.Type) == "" {
		errs["type"] = form.ReasonRequired
	}
	if c.Date == "" {
		errs["date"] = form.ReasonRequired
	} else if _, err := time.Parse(form.DateLayout, c.Date); err != nil {
		errs["date"] = form.ReasonInvalidDate
	}
	if c.Amount <= 0 {
		errs["amount"] = "must be greater than zero"
	}
	if c.Status != "" && !c.Status.IsValid() {
		errs["status"] = form.ReasonInvalidOption
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Clone returns a deep copy of the claim
func (c *ExpenseClaim) Clone() *ExpenseClaim {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Attachments = append([]string(nil), c.Attachments...)
	return &cp
}

// Row flattens the claim for table display
func (c *ExpenseClaim) Row() table.Row {
	return table.Row{
		"id":          c.ID.String(),
		"scheme_id":   string(c.SchemeID),
		"user_id":     c.UserID,
		"type":        c.Type,
		"date":        c.Date,
		"amount":      c.Amount.Float64(),
		"description": c.Description,
		"status":      c.Status.String(),
		"attachments": len(c.Attachments),
		"created_by":  c.CreatedBy,
		"created_at":  c.CreatedAt,
	}
}
