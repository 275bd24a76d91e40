package storage

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
)

// S3 stores objects in an S3-compatible bucket
type S3 struct {
	client     *s3.Client
	bucket     string
	publicBase string
}

var _ interfaces.ObjectStorage = &S3{}

// NewS3 loads the default AWS configuration. A non-empty endpoint enables
// path-style addressing for MinIO and similar services.
func NewS3(ctx context.Context, bucket, region, endpoint, publicBase string) (*S3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load AWS config", goerr.V("region", region))
	}

	var opts []func(*s3.Options)
	if endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3{
		client:     s3.NewFromConfig(cfg, opts...),
		bucket:     bucket,
		publicBase: s3PublicBase(bucket, region, endpoint, publicBase),
	}, nil
}

func s3PublicBase(bucket, region, endpoint, publicBase string) string {
	switch {
	case publicBase != "":
		return strings.TrimRight(publicBase, "/")
	case endpoint != "":
		return strings.TrimRight(endpoint, "/") + "/" + bucket
	default:
		return "https://" + bucket + ".s3." + region + ".amazonaws.com"
	}
}

func (s *S3) Upload(ctx context.Context, path, contentType string, r io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		Body:        r,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return goerr.Wrap(err, "failed to put object", goerr.V("bucket", s.bucket), goerr.V("path", path))
	}
	return nil
}

func (s *S3) PublicURL(path string) string {
	return s.publicBase + "/" + path
}
