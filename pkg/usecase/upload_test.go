package usecase_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/form"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
	"github.com/salesdesk-io/salesdesk/pkg/service/storage"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
)

func textFile(name, contentType, body string) usecase.UploadFile {
	return usecase.UploadFile{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func TestUploadPartialSuccess(t *testing.T) {
	store := storage.NewMemory("https://cdn.example.com/")
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	uc, _ := newUseCases(t, usecase.WithStorage(store), usecase.WithClock(func() time.Time { return now }))

	tooLarge := textFile("huge.png", "image/png", "x")
	tooLarge.Size = 6 << 20
	broken := textFile("broken.png", "image/png", "x")
	broken.Open = func() (io.ReadCloser, error) { return nil, errors.New("disk gone") }

	results, err := uc.Upload.Upload(ctxAs(types.RoleSalesRep), model.UploadContextImage, []usecase.UploadFile{
		textFile("My Photo.PNG", "image/png", "png-bytes"),
		textFile("report.pdf", "application/pdf", "%PDF"),
		tooLarge,
		broken,
	})
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(4).Required()

	ok := results[0]
	gt.String(t, ok.Name).Equal("My Photo.PNG")
	gt.String(t, ok.Error).Equal("")
	gt.Bool(t, strings.HasPrefix(ok.Path, "image/2026/10/")).True()
	gt.Bool(t, strings.HasSuffix(ok.Path, "-my-photo.png")).True()
	gt.String(t, ok.URL).Equal("https://cdn.example.com/" + ok.Path)

	obj, found := store.Get(ok.Path)
	gt.Bool(t, found).True()
	gt.String(t, string(obj.Data)).Equal("png-bytes")
	gt.String(t, obj.ContentType).Equal("image/png")

	gt.String(t, results[1].Error).Contains("file type is not accepted")
	gt.String(t, results[1].URL).Equal("")
	gt.String(t, results[2].Error).Contains("file exceeds the size limit")
	gt.String(t, results[3].Error).Equal("failed to read file")
	gt.Number(t, store.Len()).Equal(1)
}

func TestUploadRejected(t *testing.T) {
	store := storage.NewMemory("https://cdn.example.com")
	uc, _ := newUseCases(t, usecase.WithStorage(store))
	files := []usecase.UploadFile{textFile("a.png", "image/png", "a")}

	t.Run("unknown context", func(t *testing.T) {
		_, err := uc.Upload.Upload(ctxAs(types.RoleAdmin), "avatar", files)
		gt.Error(t, err).Is(model.ErrUnknownUploadContext)
	})

	t.Run("no files", func(t *testing.T) {
		_, err := uc.Upload.Upload(ctxAs(types.RoleAdmin), model.UploadContextImage, nil)
		var verrs form.ValidationErrors
		gt.Bool(t, errors.As(err, &verrs)).True()
		gt.Value(t, verrs["files"]).Equal(form.ReasonRequired)
	})

	t.Run("viewer", func(t *testing.T) {
		_, err := uc.Upload.Upload(ctxAs(types.RoleViewer), model.UploadContextImage, files)
		gt.Error(t, err).Is(usecase.ErrPermissionDenied)
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := uc.Upload.Upload(context.Background(), model.UploadContextImage, files)
		gt.Error(t, err).Is(usecase.ErrUnauthenticated)
	})

	t.Run("storage not configured", func(t *testing.T) {
		bare, _ := newUseCases(t)
		_, err := bare.Upload.Upload(ctxAs(types.RoleAdmin), model.UploadContextImage, files)
		gt.Error(t, err).Is(usecase.ErrStorageNotConfigured)
	})

	gt.Number(t, store.Len()).Equal(0)
}
