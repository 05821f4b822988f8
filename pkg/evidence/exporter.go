package evidence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/45ck/Portarium-sub005/pkg/canonicalize"
	"github.com/45ck/Portarium-sub005/pkg/primitives"
)

// BundleType names the purpose of an exported evidence bundle.
type BundleType string

const (
	BundleTypeAudit    BundleType = "AUDIT_EXPORT"
	BundleTypeIncident BundleType = "INCIDENT_REPORT"
)

// Bundle is a sealed export of one tenant's evidence chain. The digest is
// computed over the canonical JSON form of the entries, so two exports of
// the same chain compare equal byte-for-byte.
type Bundle struct {
	ID         string                `json:"id"`
	Type       BundleType            `json:"type"`
	TenantID   primitives.TenantID   `json:"tenantId"`
	ExportedAt time.Time             `json:"exportedAt"`
	Entries    []Entry               `json:"entries"`
	ChainHead  primitives.HashSHA256 `json:"chainHead,omitempty"`
	Digest     string                `json:"digest"`
}

// Exporter seals tenant evidence chains into verifiable bundles.
type Exporter struct {
	log    Log
	hasher Hasher
	now    func() time.Time
}

// NewExporter creates an Exporter over log.
func NewExporter(log Log, hasher Hasher) *Exporter {
	return &Exporter{log: log, hasher: hasher, now: time.Now}
}

// Export reads the tenant's full chain, verifies it, and seals it into a
// Bundle. A broken chain is never exported.
func (e *Exporter) Export(ctx context.Context, tenantID primitives.TenantID, bundleType BundleType) (*Bundle, error) {
	entries, err := e.log.ListEntries(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("evidence: export read: %w", err)
	}
	if result := VerifyChain(entries, e.hasher); !result.OK {
		return nil, fmt.Errorf("evidence: refusing to export broken chain for tenant %s: %s at entry %d",
			tenantID, result.Reason, result.Index)
	}

	digest, err := canonicalize.CanonicalHash(entries)
	if err != nil {
		return nil, fmt.Errorf("evidence: bundle digest: %w", err)
	}

	bundle := &Bundle{
		ID:         "bundle-" + uuid.NewString(),
		Type:       bundleType,
		TenantID:   tenantID,
		ExportedAt: e.now().UTC(),
		Entries:    entries,
		Digest:     digest,
	}
	if len(entries) > 0 {
		bundle.ChainHead = entries[len(entries)-1].HashSHA256
	}
	return bundle, nil
}

// VerifyBundle recomputes a bundle's digest and chain links. It is the
// receiving side of Export.
func VerifyBundle(bundle *Bundle, hasher Hasher) error {
	if result := VerifyChain(bundle.Entries, hasher); !result.OK {
		return fmt.Errorf("evidence: bundle chain broken: %s at entry %d", result.Reason, result.Index)
	}
	digest, err := canonicalize.CanonicalHash(bundle.Entries)
	if err != nil {
		return fmt.Errorf("evidence: bundle digest: %w", err)
	}
	if digest != bundle.Digest {
		return fmt.Errorf("evidence: bundle digest mismatch")
	}
	return nil
}
