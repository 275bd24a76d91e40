package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
)

func targetID(r *http.Request) model.TargetID {
	return model.TargetID(chi.URLParam(r, "id"))
}

func (s *Server) listTargetsHandler(w http.ResponseWriter, r *http.Request) {
	targets, err := s.uc.Target.List(r.Context(), listFilters(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, targets)
}

func (s *Server) targetTableHandler(w http.ResponseWriter, r *http.Request) {
	q, err := tableQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := s.uc.Target.Table(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, view)
}

func (s *Server) createTargetHandler(w http.ResponseWriter, r *http.Request) {
	var in usecase.TargetInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.uc.Target.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusCreated, res)
}

func (s *Server) getTargetHandler(w http.ResponseWriter, r *http.Request) {
	target, err := s.uc.Target.Get(r.Context(), targetID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, target)
}

func (s *Server) updateTargetHandler(w http.ResponseWriter, r *http.Request) {
	var in usecase.TargetInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.uc.Target.Update(r.Context(), targetID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, res)
}

func (s *Server) deleteTargetHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.uc.Target.Delete(r.Context(), targetID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, res)
}
