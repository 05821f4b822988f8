package evidence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3PayloadStore implements PayloadStore on S3 with Object Lock. Writes use
// a conditional put (If-None-Match: *) so an existing object is never
// replaced, and carry the object-lock retention matching PutOptions.
//
// The target bucket must be created with Object Lock enabled; that is a
// deployment concern, not checked here.
type S3PayloadStore struct {
	client *s3.Client
}

// S3PayloadStoreConfig configures the S3 client.
type S3PayloadStoreConfig struct {
	Region   string
	Endpoint string // optional, for MinIO/LocalStack
}

// NewS3PayloadStore creates a WORM payload store backed by S3.
func NewS3PayloadStore(ctx context.Context, cfg S3PayloadStoreConfig) (*S3PayloadStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("evidence: load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3PayloadStore{client: client}, nil
}

// NewS3PayloadStoreFromClient wraps an existing client (used by tests and
// by callers that share one client across stores).
func NewS3PayloadStoreFromClient(client *s3.Client) *S3PayloadStore {
	return &S3PayloadStore{client: client}
}

func lockModeToS3(mode LockMode) types.ObjectLockMode {
	if mode == LockCompliance {
		return types.ObjectLockModeCompliance
	}
	return types.ObjectLockModeGovernance
}

// Put implements PayloadStore.
func (s *S3PayloadStore) Put(ctx context.Context, ref PayloadRef, payload []byte, opts PutOptions) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:                    aws.String(ref.Bucket),
		Key:                       aws.String(ref.Key),
		Body:                      bytes.NewReader(payload),
		ContentType:               aws.String("application/json"),
		IfNoneMatch:               aws.String("*"),
		ObjectLockMode:            lockModeToS3(opts.LockMode),
		ObjectLockRetainUntilDate: aws.Time(opts.RetainUntil),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return fmt.Errorf("%w: %s", ErrPayloadExists, s.URI(ref))
		}
		return fmt.Errorf("evidence: s3 put %s: %w", s.URI(ref), err)
	}
	return nil
}

// URI implements PayloadStore.
func (s *S3PayloadStore) URI(ref PayloadRef) string {
	return payloadURI("s3", ref)
}

// Get implements PayloadStore.
func (s *S3PayloadStore) Get(ctx context.Context, ref PayloadRef) (StoredPayload, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return StoredPayload{}, fmt.Errorf("%w: %s", ErrPayloadNotFound, s.URI(ref))
		}
		return StoredPayload{}, fmt.Errorf("evidence: s3 get %s: %w", s.URI(ref), err)
	}
	defer func() { _ = out.Body.Close() }()

	payload, err := io.ReadAll(out.Body)
	if err != nil {
		return StoredPayload{}, fmt.Errorf("evidence: s3 read %s: %w", s.URI(ref), err)
	}
	stored := StoredPayload{Payload: payload}
	if out.ObjectLockMode == types.ObjectLockModeCompliance {
		stored.LockMode = LockCompliance
	} else if out.ObjectLockMode == types.ObjectLockModeGovernance {
		stored.LockMode = LockGovernance
	}
	if out.ObjectLockRetainUntilDate != nil {
		stored.RetainUntil = *out.ObjectLockRetainUntilDate
	}
	return stored, nil
}
