// Package encryption implements the encrypted-integer arithmetic provider
// backing the tally counters.
//
// The provider is additively homomorphic: decrypt(add(enc(a), enc(b))) == a+b
// and decrypt(sub(enc(a), enc(b))) == a-b. Ciphertexts are opaque; no value
// leaks without an explicit access grant, and Decrypt refuses principals
// that were never granted access.
package encryption

import (
	"context"

	"github.com/google/uuid"
)

// Principal identifies a party allowed to operate on a ciphertext.
type Principal string

// Ciphertext is an opaque encrypted integer. Handle keys the provider's
// grant table; Bytes is the raw ciphertext and must be treated as opaque by
// every caller.
type Ciphertext struct {
	Handle uuid.UUID
	Bytes  []byte
}

// IsZero reports whether the ciphertext is unset.
func (c Ciphertext) IsZero() bool { return c.Handle == uuid.Nil }

// Provider is the boundary contract for encrypted-integer arithmetic.
//
// Arithmetic accepts only ciphertexts this provider minted; results inherit
// the intersection of the operands' access grants. Decrypt fails with
// sentinel.ErrDenied when the principal lacks a grant. All operations are
// synchronous and fail-fast.
type Provider interface {
	// EncryptU8 encrypts a small value (a ballot choice).
	EncryptU8(ctx context.Context, value uint8) (Ciphertext, error)

	// EncryptU32 encrypts a counter value.
	EncryptU32(ctx context.Context, value uint32) (Ciphertext, error)

	// Add returns enc(a+b).
	Add(ctx context.Context, a, b Ciphertext) (Ciphertext, error)

	// Sub returns enc(a-b). The protocol only subtracts 0/1 choices from
	// 0/1 values or bounded counters, so negative results are unreachable;
	// Decrypt rejects any value outside the uint32 range regardless.
	Sub(ctx context.Context, a, b Ciphertext) (Ciphertext, error)

	// Decrypt recovers the plaintext for a granted principal.
	Decrypt(ctx context.Context, ct Ciphertext, principal Principal) (uint32, error)

	// Grant allows principal to use ct in arithmetic and decryption.
	Grant(ctx context.Context, ct Ciphertext, principal Principal) error
}
