package evidence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportSealsVerifiableBundle(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryLog(SHA256Hasher{})
	_, err := log.AppendEntry(ctx, "ws-1", entryInput("ev-1", "first"))
	require.NoError(t, err)
	tail, err := log.AppendEntry(ctx, "ws-1", entryInput("ev-2", "second"))
	require.NoError(t, err)

	exporter := NewExporter(log, SHA256Hasher{})
	exporter.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	bundle, err := exporter.Export(ctx, "ws-1", BundleTypeAudit)
	require.NoError(t, err)
	assert.Contains(t, bundle.ID, "bundle-")
	assert.Len(t, bundle.Entries, 2)
	assert.Equal(t, tail.HashSHA256, bundle.ChainHead)

	require.NoError(t, VerifyBundle(bundle, SHA256Hasher{}))
}

func TestExportIsDeterministicPerChain(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryLog(SHA256Hasher{})
	_, err := log.AppendEntry(ctx, "ws-1", entryInput("ev-1", "only"))
	require.NoError(t, err)

	exporter := NewExporter(log, SHA256Hasher{})
	a, err := exporter.Export(ctx, "ws-1", BundleTypeAudit)
	require.NoError(t, err)
	b, err := exporter.Export(ctx, "ws-1", BundleTypeIncident)
	require.NoError(t, err)

	// Same chain, same digest; identity and type live outside the digest.
	assert.Equal(t, a.Digest, b.Digest)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestVerifyBundleRejectsTamper(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryLog(SHA256Hasher{})
	_, err := log.AppendEntry(ctx, "ws-1", entryInput("ev-1", "original"))
	require.NoError(t, err)

	exporter := NewExporter(log, SHA256Hasher{})
	bundle, err := exporter.Export(ctx, "ws-1", BundleTypeIncident)
	require.NoError(t, err)

	bundle.Entries[0].Summary = "rewritten"
	assert.Error(t, VerifyBundle(bundle, SHA256Hasher{}))
}

func TestExportEmptyChain(t *testing.T) {
	exporter := NewExporter(NewMemoryLog(SHA256Hasher{}), SHA256Hasher{})
	bundle, err := exporter.Export(context.Background(), "ws-empty", BundleTypeAudit)
	require.NoError(t, err)
	assert.Empty(t, bundle.Entries)
	assert.Empty(t, bundle.ChainHead)
	require.NoError(t, VerifyBundle(bundle, SHA256Hasher{}))
}
