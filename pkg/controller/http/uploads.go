package http

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
	"github.com/salesdesk-io/salesdesk/pkg/utils/logging"
)

// uploadMemoryBytes is the part of a multipart body kept in memory; the rest
// spills to temporary files
const uploadMemoryBytes = 32 << 20

func (s *Server) uploadPoliciesHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, http.StatusOK, s.uc.Upload.Policies())
}

func uploadFile(fh *multipart.FileHeader) usecase.UploadFile {
	return usecase.UploadFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}
}

// uploadHandler stores the "files" parts of a multipart body under the
// context given in the query. The response lists one result per file.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(uploadMemoryBytes); err != nil {
		writeError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "invalid multipart body", goerr.V("reason", err.Error())))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logging.From(r.Context()).Warn("failed to remove multipart temp files", "error", err.Error())
		}
	}()

	var files []usecase.UploadFile
	for _, fh := range r.MultipartForm.File["files"] {
		files = append(files, uploadFile(fh))
	}

	results, err := s.uc.Upload.Upload(r.Context(), r.URL.Query().Get("context"), files)
	if err != nil {
		writeError(w, r, err)
		return
	}

	notification := uploadNotification(results)
	writeJSON(r.Context(), w, http.StatusOK, envelope{Data: results, Notification: &notification})
}

func uploadNotification(results []model.UploadResult) usecase.Notification {
	failed := 0
	for _, res := range results {
		if res.Error != "" {
			failed++
		}
	}
	switch {
	case failed == 0:
		return usecase.Notification{Level: usecase.NotifySuccess, Message: fmt.Sprintf("%d file(s) uploaded", len(results))}
	default:
		return usecase.Notification{
			Level:   usecase.NotifyError,
			Message: fmt.Sprintf("%d of %d file(s) uploaded", len(results)-failed, len(results)),
		}
	}
}
