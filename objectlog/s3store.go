package objectlog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v4"

	"github.com/olsdb/olsdb/olserr"
)

const contentType = "application/json"

// S3Store is an objectlog.Store backed by an S3-compatible bucket.
// Its Get/PutNew bodies follow the same pattern as an S3-backed
// conditional log store: PutObject with IfNoneMatch="*" to detect a
// losing conditional create, GetObject with a NoSuchKey/NoSuchBucket
// check to detect absence.
type S3Store struct {
	client  *s3.Client
	bucket  string
	timeout time.Duration
}

// S3Config names the bucket the client writes to, plus static
// credentials and an optional endpoint override (for S3-compatible
// object stores that are not AWS itself).
type S3Config struct {
	Endpoint  string // empty for AWS itself
	Bucket    string
	AccessKey string
	SecretKey string
	Timeout   time.Duration // per-call bound; default 30s
}

// NewS3Store builds the AWS SDK v2 client described by cfg. It mirrors
// the Python original's single boto3.client(endpoint_url=..., ...)
// call: one client, configured once, serving both AWS S3 and any
// S3-compatible endpoint.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	}
	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Store{client: client, bucket: cfg.Bucket, timeout: timeout}, nil
}

// Get fetches the object at key. A NoSuchKey/NoSuchBucket error is
// reported as ok=false with a nil error; any other failure is wrapped
// olserr.TransientIO after exhausting the retry budget.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	var data []byte
	err := retry(ctx, func() error {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			var nsk *types.NoSuchKey
			var nsb *types.NoSuchBucket
			if errors.As(err, &nsk) || errors.As(err, &nsb) {
				return backoff.Permanent(err)
			}
			return err
		}
		defer out.Body.Close()
		body, err := io.ReadAll(out.Body)
		if err != nil {
			return err
		}
		data = body
		return nil
	})

	if err != nil {
		var nsk *types.NoSuchKey
		var nsb *types.NoSuchBucket
		if errors.As(err, &nsk) || errors.As(err, &nsb) {
			return nil, false, nil
		}
		return nil, false, olserr.TransientIO.Wrap(err)
	}

	slog.Debug("objectlog get", "bucket", s.bucket, "key", key, "bytes", len(data), "elapsed_ms", time.Since(started).Milliseconds())
	return data, true, nil
}

// PutNew stores data at key iff no object currently exists there. A
// PreconditionFailed API error — this node lost the race for this LSN
// — maps to olserr.SegmentExists and is not retried. Any other error
// is retried with backoff and wrapped olserr.TransientIO if the
// budget is exhausted.
func (s *S3Store) PutNew(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	err := retry(ctx, func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
			// "*" is the expected character for this condition.
			IfNoneMatch: aws.String("*"),
		})
		if err != nil {
			var apiErr smithy.APIError
			if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
				return backoff.Permanent(olserr.SegmentExists.New("key %s", key))
			}
		}
		return err
	})

	if err != nil {
		if olserr.SegmentExists.Has(err) {
			return err
		}
		return olserr.TransientIO.Wrap(err)
	}

	slog.Debug("objectlog put", "bucket", s.bucket, "key", key, "bytes", len(data), "elapsed_ms", time.Since(started).Milliseconds())
	return nil
}

// retry wraps op with an exponential backoff policy bounded by ctx,
// for transient network errors. A backoff.Permanent error (e.g. a
// conditional-create precondition failure) stops retrying immediately.
func retry(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	return backoff.Retry(op, policy)
}
