package usecase

import (
	"context"
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/form"
	"github.com/salesdesk-io/salesdesk/pkg/service/storage"
	"github.com/salesdesk-io/salesdesk/pkg/utils/logging"
	"github.com/salesdesk-io/salesdesk/pkg/utils/safe"
	"golang.org/x/sync/errgroup"
)

const uploadConcurrency = 4

// UploadFile is one file of a batch. Open is called at most once.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

type UploadUseCase struct {
	storage  interfaces.ObjectStorage
	policies map[string]model.UploadPolicy
	now      func() time.Time
}

func NewUploadUseCase(storage interfaces.ObjectStorage, policies map[string]model.UploadPolicy, now func() time.Time) *UploadUseCase {
	return &UploadUseCase{
		storage:  storage,
		policies: policies,
		now:      now,
	}
}

// Policies returns the accepted upload contexts
func (uc *UploadUseCase) Policies() map[string]model.UploadPolicy {
	return uc.policies
}

// Upload stores every acceptable file of the batch. A rejected or failed
// file is reported in its result without affecting the others, so the batch
// may partially succeed. Results keep the order of files.
func (uc *UploadUseCase) Upload(ctx context.Context, uploadContext string, files []UploadFile) ([]model.UploadResult, error) {
	if _, err := requireWriter(ctx); err != nil {
		return nil, err
	}
	if uc.storage == nil {
		return nil, goerr.Wrap(ErrStorageNotConfigured, "cannot upload")
	}
	policy, ok := uc.policies[uploadContext]
	if !ok {
		return nil, goerr.Wrap(model.ErrUnknownUploadContext, "unknown upload context", goerr.V("context", uploadContext))
	}
	if len(files) == 0 {
		return nil, goerr.Wrap(form.ValidationErrors{"files": form.ReasonRequired}, "no files to upload")
	}

	results := make([]model.UploadResult, len(files))
	var eg errgroup.Group
	eg.SetLimit(uploadConcurrency)

	for i, file := range files {
		eg.Go(func() error {
			results[i] = uc.uploadOne(ctx, policy, file)
			return nil
		})
	}
	_ = eg.Wait()

	return results, nil
}

func (uc *UploadUseCase) uploadOne(ctx context.Context, policy model.UploadPolicy, file UploadFile) model.UploadResult {
	result := model.UploadResult{Name: file.Name, Size: file.Size}
	logger := logging.From(ctx).With("name", file.Name, "context", policy.Context)

	if err := policy.Check(file.ContentType, file.Size); err != nil {
		logger.Info("Upload rejected", "error", err.Error())
		result.Error = err.Error()
		return result
	}

	key, err := storage.ObjectKey(policy.Context, file.Name, uc.now())
	if err != nil {
		logger.Error("Failed to build object key", "error", err.Error())
		result.Error = "failed to store file"
		return result
	}

	r, err := file.Open()
	if err != nil {
		logger.Error("Failed to open upload", "error", err.Error())
		result.Error = "failed to read file"
		return result
	}
	defer safe.Close(ctx, r)

	if err := uc.storage.Upload(ctx, key, file.ContentType, r, file.Size); err != nil {
		logger.Error("Failed to store upload", "error", err.Error(), "path", key)
		result.Error = "failed to store file"
		return result
	}

	result.Path = key
	result.URL = uc.storage.PublicURL(key)
	return result
}
