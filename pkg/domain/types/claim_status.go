package types

import "fmt"

// ClaimStatus represents the review status of an expense claim
type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusRejected ClaimStatus = "rejected"
)

// AllClaimStatuses returns all valid claim statuses
func AllClaimStatuses() []ClaimStatus {
	return []ClaimStatus{
		ClaimStatusPending,
		ClaimStatusApproved,
		ClaimStatusRejected,
	}
}

// IsValid checks if the claim status is valid
func (s ClaimStatus) IsValid() bool {
	switch s {
	case ClaimStatusPending,
		ClaimStatusApproved,
		ClaimStatusRejected:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as pending
func (s ClaimStatus) Normalize() ClaimStatus {
	if s == "" {
		return ClaimStatusPending
	}
	return s
}

// CanTransitionTo reports whether a claim may move from s to next.
// Reviewed claims can only go back to pending for re-review.
func (s ClaimStatus) CanTransitionTo(next ClaimStatus) bool {
	from := s.Normalize()
	if !next.IsValid() || from == next {
		return false
	}
	if from == ClaimStatusPending {
		return true
	}
	return next == ClaimStatusPending
}

// String returns the string representation of the claim status
func (s ClaimStatus) String() string {
	return string(s)
}

// ParseClaimStatus parses a string into a ClaimStatus
func ParseClaimStatus(s string) (ClaimStatus, error) {
	status := ClaimStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid claim status: %s", s)
	}
	return status, nil
}
