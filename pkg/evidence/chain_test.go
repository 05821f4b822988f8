package evidence

import (
	"fmt"
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/45ck/Portarium-sub005/pkg/primitives"
)

// fakeHasher is a cheap deterministic stand-in for SHA-256 that still
// produces 64 hex chars.
type fakeHasher struct{}

func (fakeHasher) SHA256Hex(input string) primitives.HashSHA256 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(input))
	return primitives.HashSHA256(fmt.Sprintf("%08x", h.Sum32()) + "00000000000000000000000000000000000000000000000000000000")
}

func entryInput(id, summary string) EntryInput {
	return EntryInput{
		SchemaVersion: 1,
		EvidenceID:    primitives.EvidenceID(id),
		WorkspaceID:   "ws-1",
		CorrelationID: "corr-1",
		OccurredAtISO: "2026-02-16T00:00:00Z",
		Category:      CategorySystem,
		Summary:       summary,
		Actor:         Actor{Kind: ActorSystem},
	}
}

func buildChain(t *testing.T, n int) []Entry {
	t.Helper()
	hasher := fakeHasher{}
	entries := make([]Entry, 0, n)
	var previous *Entry
	for i := 0; i < n; i++ {
		sealed, err := AppendEntry(previous, entryInput(fmt.Sprintf("ev-%d", i+1), fmt.Sprintf("entry %d", i+1)), hasher)
		require.NoError(t, err)
		entries = append(entries, sealed)
		previous = &entries[len(entries)-1]
	}
	return entries
}

func TestAppendEntryLinksToPrevious(t *testing.T) {
	chain := buildChain(t, 2)

	assert.Empty(t, chain[0].PreviousHash, "first entry has no previous hash")
	assert.Equal(t, chain[0].HashSHA256, chain[1].PreviousHash)
	assert.Equal(t, VerifyResult{OK: true}, VerifyChain(chain, fakeHasher{}))
}

func TestVerifyChainEmptyIsOK(t *testing.T) {
	assert.True(t, VerifyChain(nil, fakeHasher{}).OK)
}

func TestVerifyChainDetectsContentTampering(t *testing.T) {
	chain := buildChain(t, 3)
	chain[1].Summary = "tampered"

	res := VerifyChain(chain, fakeHasher{})
	assert.False(t, res.OK)
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, ReasonHashMismatch, res.Reason)
}

func TestVerifyChainDetectsHashTampering(t *testing.T) {
	chain := buildChain(t, 3)
	chain[2].HashSHA256 = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"

	res := VerifyChain(chain, fakeHasher{})
	assert.False(t, res.OK)
	assert.Equal(t, 2, res.Index)
	assert.Equal(t, ReasonHashMismatch, res.Reason)
}

func TestVerifyChainDetectsBrokenLink(t *testing.T) {
	chain := buildChain(t, 3)
	chain[1].PreviousHash = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"

	res := VerifyChain(chain, fakeHasher{})
	assert.False(t, res.OK)
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, ReasonPreviousHashMismatch, res.Reason)
}

func TestVerifyChainRejectsPreviousHashOnFirstEntry(t *testing.T) {
	chain := buildChain(t, 1)
	chain[0].PreviousHash = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"

	res := VerifyChain(chain, fakeHasher{})
	assert.False(t, res.OK)
	assert.Equal(t, 0, res.Index)
	assert.Equal(t, ReasonUnexpectedPreviousHash, res.Reason)
}

func TestSHA256HasherProducesLowercaseHex(t *testing.T) {
	digest := SHA256Hasher{}.SHA256Hex("hello")
	assert.Len(t, string(digest), 64)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", string(digest))
}

func TestRealHasherChainVerifies(t *testing.T) {
	hasher := SHA256Hasher{}
	e1, err := AppendEntry(nil, entryInput("ev-1", "first"), hasher)
	require.NoError(t, err)
	e2, err := AppendEntry(&e1, entryInput("ev-2", "second"), hasher)
	require.NoError(t, err)

	assert.True(t, VerifyChain([]Entry{e1, e2}, hasher).OK)
}
