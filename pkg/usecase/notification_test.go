package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/form"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
)

func TestFailureNotification(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		msg  string
	}{
		{
			name: "validation errors",
			err:  goerr.Wrap(form.ValidationErrors{"name": form.ReasonRequired}, "invalid"),
			msg:  "Please correct the highlighted fields",
		},
		{
			name: "user-facing sentinel",
			err:  goerr.Wrap(usecase.ErrRecordInUse, "record is referenced", goerr.V("entity", "countries")),
			msg:  usecase.ErrRecordInUse.Error(),
		},
		{
			name: "permission",
			err:  goerr.Wrap(usecase.ErrPermissionDenied, "role cannot write"),
			msg:  "permission denied",
		},
		{
			name: "internal error is not leaked",
			err:  goerr.Wrap(errors.New("connection reset by peer"), "failed to list records"),
			msg:  "Something went wrong, please try again",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n := usecase.FailureNotification(tc.err)
			gt.Value(t, n.Level).Equal(usecase.NotifyError)
			gt.String(t, n.Message).Equal(tc.msg)
		})
	}
}
