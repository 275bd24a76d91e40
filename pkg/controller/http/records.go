package http

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/form"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
)

func entityParam(r *http.Request) types.EntityName {
	return types.EntityName(chi.URLParam(r, "entity"))
}

func (s *Server) listSchemasHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, http.StatusOK, s.uc.Record.Schemas())
}

func (s *Server) recordTableHandler(w http.ResponseWriter, r *http.Request) {
	q, err := tableQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := s.uc.Record.Table(r.Context(), entityParam(r), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, view)
}

func (s *Server) recordExportHandler(w http.ResponseWriter, r *http.Request) {
	q, err := tableQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entity := entityParam(r)

	// Buffered so that a failure can still be reported in the envelope
	var buf bytes.Buffer
	if err := s.uc.Record.Export(r.Context(), entity, q, &buf); err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+entity.String()+`.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// recordFormHandler renders the modal. A POST carries the values being edited
// so that dependent dropdowns can be recomputed.
func (s *Server) recordFormHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, err := types.ParseFormMode(q.Get("mode"))
	if err != nil {
		writeError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "invalid form mode", goerr.V("mode", q.Get("mode"))))
		return
	}

	req := usecase.FormRequest{Mode: mode, ID: model.RecordID(q.Get("id"))}
	if r.Method == http.MethodPost {
		var values form.State
		if err := decodeJSON(r, &values); err != nil {
			writeError(w, r, err)
			return
		}
		req.Values = values
	}

	view, err := s.uc.Record.Form(r.Context(), entityParam(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, view)
}

func (s *Server) listRecordsHandler(w http.ResponseWriter, r *http.Request) {
	records, err := s.uc.Record.List(r.Context(), entityParam(r), listFilters(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, records)
}

func (s *Server) getRecordHandler(w http.ResponseWriter, r *http.Request) {
	record, err := s.uc.Record.Get(r.Context(), entityParam(r), model.RecordID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, record)
}

func (s *Server) createRecordHandler(w http.ResponseWriter, r *http.Request) {
	var values form.State
	if err := decodeJSON(r, &values); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.uc.Record.Create(r.Context(), entityParam(r), values)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusCreated, res)
}

func (s *Server) updateRecordHandler(w http.ResponseWriter, r *http.Request) {
	var values form.State
	if err := decodeJSON(r, &values); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.uc.Record.Update(r.Context(), entityParam(r), model.RecordID(chi.URLParam(r, "id")), values)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, res)
}

func (s *Server) deleteRecordHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.uc.Record.Delete(r.Context(), entityParam(r), model.RecordID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, res)
}
