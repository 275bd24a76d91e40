package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

func TestClaimStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from types.ClaimStatus
		to   types.ClaimStatus
		want bool
	}{
		{name: "pending to approved", from: types.ClaimStatusPending, to: types.ClaimStatusApproved, want: true},
		{name: "pending to rejected", from: types.ClaimStatusPending, to: types.ClaimStatusRejected, want: true},
		{name: "empty behaves as pending", from: "", to: types.ClaimStatusApproved, want: true},
		{name: "approved back to pending", from: types.ClaimStatusApproved, to: types.ClaimStatusPending, want: true},
		{name: "rejected back to pending", from: types.ClaimStatusRejected, to: types.ClaimStatusPending, want: true},
		{name: "approved to rejected", from: types.ClaimStatusApproved, to: types.ClaimStatusRejected, want: false},
		{name: "rejected to approved", from: types.ClaimStatusRejected, to: types.ClaimStatusApproved, want: false},
		{name: "same status", from: types.ClaimStatusPending, to: types.ClaimStatusPending, want: false},
		{name: "unknown target", from: types.ClaimStatusPending, to: "paid", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.from.CanTransitionTo(tt.to)).Equal(tt.want)
		})
	}
}

func TestParseClaimStatus(t *testing.T) {
	for _, s := range types.AllClaimStatuses() {
		got, err := types.ParseClaimStatus(s.String())
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal(s)
	}

	_, err := types.ParseClaimStatus("paid")
	gt.Value(t, err).NotNil()
}

func TestRole(t *testing.T) {
	tests := []struct {
		role      types.Role
		canWrite  bool
		canReview bool
	}{
		{role: types.RoleAdmin, canWrite: true, canReview: true},
		{role: types.RoleManager, canWrite: true, canReview: true},
		{role: types.RoleSalesRep, canWrite: true, canReview: false},
		{role: types.RoleViewer, canWrite: false, canReview: false},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			gt.Bool(t, tt.role.IsValid()).True()
			gt.Value(t, tt.role.CanWrite()).Equal(tt.canWrite)
			gt.Value(t, tt.role.CanReview()).Equal(tt.canReview)
		})
	}

	_, err := types.ParseRole("root")
	gt.Value(t, err).NotNil()
}

func TestSortDirection(t *testing.T) {
	gt.Value(t, types.SortAsc.Toggle()).Equal(types.SortDesc)
	gt.Value(t, types.SortDesc.Toggle()).Equal(types.SortAsc)

	d, err := types.ParseSortDirection("")
	gt.NoError(t, err).Required()
	gt.Value(t, d).Equal(types.SortAsc)

	_, err = types.ParseSortDirection("up")
	gt.Value(t, err).NotNil()
}

func TestParseFormMode(t *testing.T) {
	tests := []struct {
		input    string
		want     types.FormMode
		wantErr  bool
		readOnly bool
	}{
		{input: "", want: types.FormModeCreate},
		{input: "create", want: types.FormModeCreate},
		{input: "edit", want: types.FormModeEdit},
		{input: "view", want: types.FormModeView, readOnly: true},
		{input: "delete", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := types.ParseFormMode(tt.input)
			if tt.wantErr {
				gt.Value(t, err).NotNil()
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
			gt.Value(t, got.ReadOnly()).Equal(tt.readOnly)
		})
	}
}

func TestEntityName_Validate(t *testing.T) {
	tests := []struct {
		name    string
		entity  types.EntityName
		wantErr bool
	}{
		{name: "simple", entity: "countries"},
		{name: "with underscore", entity: "expense_types"},
		{name: "with digits", entity: "zone2"},
		{name: "empty", entity: "", wantErr: true},
		{name: "uppercase", entity: "Countries", wantErr: true},
		{name: "leading digit", entity: "2zones", wantErr: true},
		{name: "hyphen", entity: "expense-types", wantErr: true},
		{name: "trailing underscore", entity: "zones_", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entity.Validate()
			if tt.wantErr {
				gt.Value(t, err).NotNil()
			} else {
				gt.NoError(t, err)
			}
		})
	}
}

func TestFieldKey_Validate(t *testing.T) {
	gt.NoError(t, types.FieldKey("country_id").Validate())
	gt.Value(t, types.FieldKey("").Validate()).NotNil()
	gt.Value(t, types.FieldKey("country.id").Validate()).NotNil()
}
