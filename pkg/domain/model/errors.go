package model

import "github.com/m-mizutani/goerr/v2"

var (
	ErrInvalidMoney         = goerr.New("invalid money amount")
	ErrUnknownEntity        = goerr.New("unknown entity")
	ErrUnsupportedMediaType = goerr.New("unsupported media type")
	ErrFileTooLarge         = goerr.New("file too large")
	ErrUnknownUploadContext = goerr.New("unknown upload context")
)

// Context keys for error values
const (
	EntityKey      = "entity"
	FieldKeyKey    = "field_key"
	ContentTypeKey = "content_type"
	SizeKey        = "size"
	MaxBytesKey    = "max_bytes"
	AmountKey      = "amount"
)
