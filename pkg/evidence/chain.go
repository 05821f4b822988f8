package evidence

import (
	"fmt"

	"github.com/45ck/Portarium-sub005/pkg/canonicalize"
	"github.com/45ck/Portarium-sub005/pkg/primitives"
)

// CanonicalizeEntryInput returns the RFC 8785 canonical JSON form of an
// unsealed entry body. The entry hash is computed over this form plus the
// previous entry's hash, so the digest is stable across field order.
func CanonicalizeEntryInput(in EntryInput) (string, error) {
	b, err := canonicalize.Canonicalize(in)
	if err != nil {
		return "", fmt.Errorf("evidence: canonicalize entry %s: %w", in.EvidenceID, err)
	}
	return string(b), nil
}

// AppendEntry seals next onto the chain whose current tail is previous
// (nil for the first entry of a tenant). The sealed entry's PreviousHash is
// the tail's HashSHA256 and its own hash covers the canonical body plus
// that link.
//
// Appends for one tenant must be serialized by the caller (see Log) or the
// chain forks into two valid-looking heads.
func AppendEntry(previous *Entry, next EntryInput, hasher Hasher) (Entry, error) {
	canonical, err := CanonicalizeEntryInput(next)
	if err != nil {
		return Entry{}, err
	}

	var previousHash primitives.HashSHA256
	if previous != nil {
		previousHash = previous.HashSHA256
	}

	sealed := Entry{
		SchemaVersion: next.SchemaVersion,
		EvidenceID:    next.EvidenceID,
		WorkspaceID:   next.WorkspaceID,
		CorrelationID: next.CorrelationID,
		OccurredAtISO: next.OccurredAtISO,
		Category:      next.Category,
		Summary:       next.Summary,
		Actor:         next.Actor,
		Links:         next.Links,
		PayloadRefs:   next.PayloadRefs,
		PreviousHash:  previousHash,
		HashSHA256:    hasher.SHA256Hex(canonical + string(previousHash)),
	}
	return sealed, nil
}

// VerifyReason identifies the first broken link found by VerifyChain.
type VerifyReason string

const (
	ReasonHashMismatch           VerifyReason = "hash_mismatch"
	ReasonPreviousHashMismatch   VerifyReason = "previous_hash_mismatch"
	ReasonUnexpectedPreviousHash VerifyReason = "unexpected_previous_hash"
	ReasonCanonicalizeFailed     VerifyReason = "canonicalize_failed"
)

// VerifyResult reports chain integrity. When OK is false, Index is the
// position of the first broken entry and Reason names the failure.
type VerifyResult struct {
	OK     bool
	Index  int
	Reason VerifyReason
}

// VerifyChain recomputes every entry's hash from its content and checks the
// previous-hash links. It is the sole tamper-detection mechanism for the
// ledger; there is no separate signature scheme.
func VerifyChain(entries []Entry, hasher Hasher) VerifyResult {
	var previousHash primitives.HashSHA256
	for i, entry := range entries {
		if i == 0 {
			if entry.PreviousHash != "" {
				return VerifyResult{Index: 0, Reason: ReasonUnexpectedPreviousHash}
			}
		} else if entry.PreviousHash != previousHash {
			return VerifyResult{Index: i, Reason: ReasonPreviousHashMismatch}
		}

		canonical, err := CanonicalizeEntryInput(entry.body())
		if err != nil {
			return VerifyResult{Index: i, Reason: ReasonCanonicalizeFailed}
		}
		recomputed := hasher.SHA256Hex(canonical + string(entry.PreviousHash))
		if recomputed != entry.HashSHA256 {
			return VerifyResult{Index: i, Reason: ReasonHashMismatch}
		}
		previousHash = entry.HashSHA256
	}
	return VerifyResult{OK: true}
}
