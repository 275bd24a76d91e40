package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
)

func claimID(r *http.Request) model.ExpenseClaimID {
	return model.ExpenseClaimID(chi.URLParam(r, "id"))
}

func (s *Server) listClaimsHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := s.uc.ExpenseClaim.List(r.Context(), listFilters(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, claims)
}

func (s *Server) claimTableHandler(w http.ResponseWriter, r *http.Request) {
	q, err := tableQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := s.uc.ExpenseClaim.Table(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, view)
}

func (s *Server) createClaimHandler(w http.ResponseWriter, r *http.Request) {
	var in usecase.ExpenseClaimInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.uc.ExpenseClaim.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusCreated, res)
}

func (s *Server) getClaimHandler(w http.ResponseWriter, r *http.Request) {
	claim, err := s.uc.ExpenseClaim.Get(r.Context(), claimID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, claim)
}

func (s *Server) deleteClaimHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.uc.ExpenseClaim.Delete(r.Context(), claimID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, res)
}

func (s *Server) changeClaimStatusHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status types.ClaimStatus `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.uc.ExpenseClaim.ChangeStatus(r.Context(), claimID(r), body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, res)
}
