package model_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/form"
)

func TestExpenseClaim_Key(t *testing.T) {
	a := &model.ExpenseClaim{UserID: "u1", Type: "Fuel", Date: "2024-03-01", Amount: 4500}
	b := &model.ExpenseClaim{UserID: "u1", Type: "Fuel", Date: "2024-03-01", Amount: 4500, Description: "different"}
	gt.Value(t, a.Key()).Equal(b.Key())
	gt.Value(t, a.Key().ID()).Equal(b.Key().ID())

	variants := []*model.ExpenseClaim{
		{UserID: "u2", Type: "Fuel", Date: "2024-03-01", Amount: 4500},
		{UserID: "u1", Type: "Meals", Date: "2024-03-01", Amount: 4500},
		{UserID: "u1", Type: "fuel", Date: "2024-03-01", Amount: 4500},
		{UserID: "u1", Type: "Fuel", Date: "2024-03-02", Amount: 4500},
		{UserID: "u1", Type: "Fuel", Date: "2024-03-01", Amount: 4501},
	}
	for _, v := range variants {
		gt.Value(t, v.Key().ID()).NotEqual(a.Key().ID())
	}
}

func TestExpenseClaim_Validate(t *testing.T) {
	valid := &model.ExpenseClaim{SchemeID: "s1", UserID: "u1", Type: "Fuel", Date: "2024-03-01", Amount: 1}
	gt.NoError(t, valid.Validate())

	bad := &model.ExpenseClaim{Date: "03/01/2024", Amount: 0, Status: "paid"}
	var verrs form.ValidationErrors
	gt.Bool(t, errors.As(bad.Validate(), &verrs)).True()
	gt.Value(t, verrs).Equal(form.ValidationErrors{
		"scheme_id": form.ReasonRequired,
		"user_id":   form.ReasonRequired,
		"type":      form.ReasonRequired,
		"date":      form.ReasonInvalidDate,
		"amount":    "must be greater than zero",
		"status":    form.ReasonInvalidOption,
	})
}

func TestExpenseClaim_Clone(t *testing.T) {
	c := &model.ExpenseClaim{Attachments: []string{"a.pdf"}}
	cp := c.Clone()
	cp.Attachments[0] = "b.pdf"
	gt.Value(t, c.Attachments[0]).Equal("a.pdf")
}
