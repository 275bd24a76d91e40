package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
)

func schemeID(r *http.Request) model.SchemeID {
	return model.SchemeID(chi.URLParam(r, "id"))
}

func (s *Server) listSchemesHandler(w http.ResponseWriter, r *http.Request) {
	schemes, err := s.uc.Scheme.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, schemes)
}

func (s *Server) schemeTableHandler(w http.ResponseWriter, r *http.Request) {
	q, err := tableQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := s.uc.Scheme.Table(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, view)
}

func (s *Server) createSchemeHandler(w http.ResponseWriter, r *http.Request) {
	var in usecase.SchemeInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.uc.Scheme.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusCreated, res)
}

func (s *Server) getSchemeHandler(w http.ResponseWriter, r *http.Request) {
	scheme, err := s.uc.Scheme.Get(r.Context(), schemeID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, scheme)
}

func (s *Server) updateSchemeHandler(w http.ResponseWriter, r *http.Request) {
	var in usecase.SchemeInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.uc.Scheme.Update(r.Context(), schemeID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, res)
}

func (s *Server) deleteSchemeHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.uc.Scheme.Delete(r.Context(), schemeID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, res)
}

func (s *Server) schemeTotalsHandler(w http.ResponseWriter, r *http.Request) {
	totals, err := s.uc.ExpenseClaim.SchemeTotals(r.Context(), schemeID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, totals)
}

func (s *Server) recomputeSchemeHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.uc.Scheme.Recompute(r.Context(), schemeID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, res)
}
