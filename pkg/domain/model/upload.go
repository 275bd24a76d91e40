package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

const (
	megabyte = 1 << 20

	UploadContextImage      = "image"
	UploadContextVideo      = "video"
	UploadContextDocument   = "document"
	UploadContextAttachment = "attachment"
)

// UploadPolicy restricts the files accepted in one upload context
type UploadPolicy struct {
	Context         string   `json:"context"`
	AllowedPrefixes []string `json:"allowed_prefixes"`
	MaxBytes        int64    `json:"max_bytes"`
}

// Check validates a file's content type and size against the policy
func (p UploadPolicy) Check(contentType string, size int64) error {
	allowed := false
	for _, prefix := range p.AllowedPrefixes {
		if strings.HasPrefix(contentType, prefix) {
			allowed = true
			break
		}
	}
	if !allowed {
		return goerr.Wrap(ErrUnsupportedMediaType, "file type is not accepted",
			goerr.V(ContentTypeKey, contentType),
			goerr.V("context", p.Context))
	}
	if size > p.MaxBytes {
		return goerr.Wrap(ErrFileTooLarge, "file exceeds the size limit",
			goerr.V(SizeKey, size),
			goerr.V(MaxBytesKey, p.MaxBytes))
	}
	return nil
}

// DefaultUploadPolicies returns the built-in upload contexts
func DefaultUploadPolicies() map[string]UploadPolicy {
	return map[string]UploadPolicy{
		UploadContextImage:      {Context: UploadContextImage, AllowedPrefixes: []string{"image/"}, MaxBytes: 5 * megabyte},
		UploadContextVideo:      {Context: UploadContextVideo, AllowedPrefixes: []string{"video/"}, MaxBytes: 100 * megabyte},
		UploadContextDocument:   {Context: UploadContextDocument, AllowedPrefixes: []string{"application/pdf"}, MaxBytes: 10 * megabyte},
		UploadContextAttachment: {Context: UploadContextAttachment, AllowedPrefixes: []string{"image/", "application/pdf"}, MaxBytes: 10 * megabyte},
	}
}

// UploadResult is the outcome of one file in a batch. Exactly one of URL and
// Error is set.
type UploadResult struct {
	Name  string `json:"name"`
	Path  string `json:"path,omitempty"`
	URL   string `json:"url,omitempty"`
	Size  int64  `json:"size"`
	Error string `json:"error,omitempty"`
}
