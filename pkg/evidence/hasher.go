package evidence

import (
	"github.com/45ck/Portarium-sub005/pkg/canonicalize"
	"github.com/45ck/Portarium-sub005/pkg/primitives"
)

// Hasher digests canonical entry content. It is an interface so tests can
// substitute a cheap deterministic hash.
type Hasher interface {
	SHA256Hex(input string) primitives.HashSHA256
}

// SHA256Hasher is the production Hasher backed by crypto/sha256.
type SHA256Hasher struct{}

// SHA256Hex returns the lowercase hex SHA-256 digest of input.
func (SHA256Hasher) SHA256Hex(input string) primitives.HashSHA256 {
	return primitives.HashSHA256(canonicalize.HashBytes([]byte(input)))
}
