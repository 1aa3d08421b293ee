package encryption

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verdict/pkg/platform/sentinel"
)

// 512-bit keys keep key generation fast; the algebra is size-independent.
const testKeyBits = 512

func newTestProvider(t *testing.T) *PaillierProvider {
	t.Helper()
	p, err := NewPaillier(testKeyBits)
	require.NoError(t, err)
	return p
}

func TestHomomorphicAddition(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	const me = Principal("test")

	a, err := p.EncryptU32(ctx, 17)
	require.NoError(t, err)
	b, err := p.EncryptU32(ctx, 25)
	require.NoError(t, err)
	require.NoError(t, p.Grant(ctx, a, me))
	require.NoError(t, p.Grant(ctx, b, me))

	sum, err := p.Add(ctx, a, b)
	require.NoError(t, err)

	v, err := p.Decrypt(ctx, sum, me)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), v)
}

// TestComplementLaw checks the encrypted complement used for the innocent
// counter: dec(enc(1) - enc(c)) == 1 - c for c in {0, 1}.
func TestComplementLaw(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	const me = Principal("test")

	for _, choice := range []uint8{0, 1} {
		one, err := p.EncryptU8(ctx, 1)
		require.NoError(t, err)
		c, err := p.EncryptU8(ctx, choice)
		require.NoError(t, err)
		require.NoError(t, p.Grant(ctx, one, me))
		require.NoError(t, p.Grant(ctx, c, me))

		complement, err := p.Sub(ctx, one, c)
		require.NoError(t, err)

		v, err := p.Decrypt(ctx, complement, me)
		require.NoError(t, err)
		assert.Equal(t, uint32(1-choice), v)
	}
}

func TestAccumulatedTally(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	const me = Principal("test")

	counter, err := p.EncryptU32(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, p.Grant(ctx, counter, me))

	choices := []uint8{1, 0, 1, 1, 0}
	var want uint32
	for _, c := range choices {
		ct, err := p.EncryptU8(ctx, c)
		require.NoError(t, err)
		require.NoError(t, p.Grant(ctx, ct, me))
		counter, err = p.Add(ctx, counter, ct)
		require.NoError(t, err)
		want += uint32(c)
	}

	v, err := p.Decrypt(ctx, counter, me)
	require.NoError(t, err)
	assert.Equal(t, want, v)
}

func TestDecryptRequiresGrant(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	ct, err := p.EncryptU32(ctx, 7)
	require.NoError(t, err)

	_, err = p.Decrypt(ctx, ct, Principal("stranger"))
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrDenied)
}

func TestArithmeticRejectsForeignCiphertext(t *testing.T) {
	p := newTestProvider(t)
	other := newTestProvider(t)
	ctx := context.Background()

	mine, err := p.EncryptU32(ctx, 1)
	require.NoError(t, err)
	foreign, err := other.EncryptU32(ctx, 1)
	require.NoError(t, err)

	_, err = p.Add(ctx, mine, foreign)
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

// TestGrantIntersection verifies results are only readable by principals
// granted on both operands.
func TestGrantIntersection(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	both := Principal("both")

	a, err := p.EncryptU32(ctx, 3)
	require.NoError(t, err)
	b, err := p.EncryptU32(ctx, 4)
	require.NoError(t, err)

	require.NoError(t, p.Grant(ctx, a, both))
	require.NoError(t, p.Grant(ctx, b, both))
	require.NoError(t, p.Grant(ctx, a, Principal("only-a")))

	sum, err := p.Add(ctx, a, b)
	require.NoError(t, err)

	v, err := p.Decrypt(ctx, sum, both)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), v)

	_, err = p.Decrypt(ctx, sum, Principal("only-a"))
	assert.ErrorIs(t, err, sentinel.ErrDenied)
}

func TestAdoptRestoresGrants(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	const me = Principal("core")

	ct, err := p.EncryptU32(ctx, 9)
	require.NoError(t, err)
	require.NoError(t, p.Grant(ctx, ct, me))

	// Simulate a process restart: a fresh provider knows nothing about the
	// stored ciphertext until it adopts it.
	// The key material must be the same, so reuse p's keys via Adopt only.
	restored := Ciphertext{Handle: ct.Handle, Bytes: ct.Bytes}
	p2 := &PaillierProvider{
		privateKey: p.privateKey,
		publicKey:  p.publicKey,
		grants:     map[uuid.UUID]map[Principal]struct{}{},
	}
	_, err = p2.Decrypt(ctx, restored, me)
	require.Error(t, err)

	p2.Adopt(restored, me)
	v, err := p2.Decrypt(ctx, restored, me)
	require.NoError(t, err)
	assert.Equal(t, uint32(9), v)
}
