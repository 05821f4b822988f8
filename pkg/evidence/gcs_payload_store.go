//go:build gcp

package evidence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// Custom metadata key carrying the logical retention lock on GCS objects,
// where per-object lock modes are not native as on S3.
const (
	gcsLockModeMetaKey    = "portarium-lock-mode"
	gcsRetainUntilMetaKey = "portarium-retain-until"
)

// GCSPayloadStore implements PayloadStore on Google Cloud Storage. Writes
// use the DoesNotExist generation precondition so an existing object is
// never replaced; compliance payloads additionally get a temporary hold.
// Bucket-level retention policy is a deployment concern.
type GCSPayloadStore struct {
	client *storage.Client
}

// NewGCSPayloadStore creates a WORM payload store backed by GCS (uses ADC).
func NewGCSPayloadStore(ctx context.Context) (*GCSPayloadStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("evidence: create GCS client: %w", err)
	}
	return &GCSPayloadStore{client: client}, nil
}

// Put implements PayloadStore.
func (s *GCSPayloadStore) Put(ctx context.Context, ref PayloadRef, payload []byte, opts PutOptions) error {
	obj := s.client.Bucket(ref.Bucket).Object(ref.Key).If(storage.Conditions{DoesNotExist: true})

	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"
	w.Metadata = map[string]string{
		gcsLockModeMetaKey:    string(opts.LockMode),
		gcsRetainUntilMetaKey: opts.RetainUntil.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if opts.LockMode == LockCompliance {
		w.TemporaryHold = true
	}

	if _, err := w.Write(payload); err != nil {
		_ = w.Close()
		return fmt.Errorf("evidence: gcs write %s: %w", s.URI(ref), err)
	}
	if err := w.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			return fmt.Errorf("%w: %s", ErrPayloadExists, s.URI(ref))
		}
		return fmt.Errorf("evidence: gcs close %s: %w", s.URI(ref), err)
	}
	return nil
}

// URI implements PayloadStore.
func (s *GCSPayloadStore) URI(ref PayloadRef) string {
	return payloadURI("gs", ref)
}

// Get implements PayloadStore.
func (s *GCSPayloadStore) Get(ctx context.Context, ref PayloadRef) (StoredPayload, error) {
	obj := s.client.Bucket(ref.Bucket).Object(ref.Key)
	reader, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return StoredPayload{}, fmt.Errorf("%w: %s", ErrPayloadNotFound, s.URI(ref))
		}
		return StoredPayload{}, fmt.Errorf("evidence: gcs get %s: %w", s.URI(ref), err)
	}
	defer func() { _ = reader.Close() }()

	payload, err := io.ReadAll(reader)
	if err != nil {
		return StoredPayload{}, fmt.Errorf("evidence: gcs read %s: %w", s.URI(ref), err)
	}

	stored := StoredPayload{Payload: payload}
	if attrs, err := obj.Attrs(ctx); err == nil {
		stored.LockMode = LockMode(attrs.Metadata[gcsLockModeMetaKey])
	}
	return stored, nil
}
