package encryption

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"sync"

	"github.com/google/uuid"
	paillier "github.com/roasbeef/go-go-gadget-paillier"

	"verdict/pkg/platform/sentinel"
)

// PaillierProvider implements Provider over the Paillier cryptosystem.
// Paillier is additively homomorphic: E(a)*E(b) mod N^2 = E(a+b). Subtraction
// multiplies by the additive inverse, E(a)*E(b)^(N-1) = E(a-b mod N).
//
// Access grants are tracked per ciphertext handle. The provider only accepts
// ciphertexts it minted itself, so a caller cannot smuggle in a foreign
// ciphertext to bypass the grant table.
type PaillierProvider struct {
	privateKey *paillier.PrivateKey
	publicKey  *paillier.PublicKey

	mu     sync.RWMutex
	grants map[uuid.UUID]map[Principal]struct{}
}

// NewPaillier generates a fresh keypair of the given size and returns a
// ready provider. Key generation is the only expensive call; everything else
// is modular arithmetic.
func NewPaillier(bits int) (*PaillierProvider, error) {
	priv, err := paillier.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("generate paillier key: %w", err)
	}
	return &PaillierProvider{
		privateKey: priv,
		publicKey:  &priv.PublicKey,
		grants:     make(map[uuid.UUID]map[Principal]struct{}),
	}, nil
}

func (p *PaillierProvider) EncryptU8(ctx context.Context, value uint8) (Ciphertext, error) {
	return p.encrypt(new(big.Int).SetUint64(uint64(value)))
}

func (p *PaillierProvider) EncryptU32(ctx context.Context, value uint32) (Ciphertext, error) {
	return p.encrypt(new(big.Int).SetUint64(uint64(value)))
}

func (p *PaillierProvider) encrypt(value *big.Int) (Ciphertext, error) {
	raw, err := paillier.Encrypt(p.publicKey, value.Bytes())
	if err != nil {
		return Ciphertext{}, fmt.Errorf("paillier encrypt: %w", err)
	}
	return p.mint(raw, nil), nil
}

// Add returns enc(a+b). The result inherits the grants common to both
// operands.
func (p *PaillierProvider) Add(ctx context.Context, a, b Ciphertext) (Ciphertext, error) {
	shared, err := p.sharedGrants(a, b)
	if err != nil {
		return Ciphertext{}, err
	}
	raw := paillier.AddCipher(p.publicKey, a.Bytes, b.Bytes)
	return p.mint(raw, shared), nil
}

// Sub returns enc(a-b) via multiplication with the additive inverse.
func (p *PaillierProvider) Sub(ctx context.Context, a, b Ciphertext) (Ciphertext, error) {
	shared, err := p.sharedGrants(a, b)
	if err != nil {
		return Ciphertext{}, err
	}
	nMinusOne := new(big.Int).Sub(p.publicKey.N, big.NewInt(1))
	negB := paillier.Mul(p.publicKey, b.Bytes, nMinusOne.Bytes())
	raw := paillier.AddCipher(p.publicKey, a.Bytes, negB)
	return p.mint(raw, shared), nil
}

func (p *PaillierProvider) Decrypt(ctx context.Context, ct Ciphertext, principal Principal) (uint32, error) {
	p.mu.RLock()
	acl, known := p.grants[ct.Handle]
	_, granted := acl[principal]
	p.mu.RUnlock()

	if !known {
		return 0, fmt.Errorf("decrypt: unknown ciphertext: %w", sentinel.ErrNotFound)
	}
	if !granted {
		return 0, fmt.Errorf("decrypt: principal %q has no grant: %w", principal, sentinel.ErrDenied)
	}

	plain, err := paillier.Decrypt(p.privateKey, ct.Bytes)
	if err != nil {
		return 0, fmt.Errorf("paillier decrypt: %w", err)
	}
	v := new(big.Int).SetBytes(plain)
	if !v.IsUint64() || v.Uint64() > math.MaxUint32 {
		return 0, fmt.Errorf("decrypt: value outside uint32 range: %w", sentinel.ErrInvalidState)
	}
	return uint32(v.Uint64()), nil
}

func (p *PaillierProvider) Grant(ctx context.Context, ct Ciphertext, principal Principal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	acl, ok := p.grants[ct.Handle]
	if !ok {
		return fmt.Errorf("grant: unknown ciphertext: %w", sentinel.ErrNotFound)
	}
	acl[principal] = struct{}{}
	return nil
}

// Adopt re-registers a ciphertext loaded from persistent storage and restores
// the given grants. Needed because the grant table is process-local while
// counters outlive the process in the case store.
func (p *PaillierProvider) Adopt(ct Ciphertext, principals ...Principal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	acl, ok := p.grants[ct.Handle]
	if !ok {
		acl = make(map[Principal]struct{})
		p.grants[ct.Handle] = acl
	}
	for _, pr := range principals {
		acl[pr] = struct{}{}
	}
}

// mint registers a new ciphertext under a fresh handle with the given ACL.
func (p *PaillierProvider) mint(raw []byte, acl map[Principal]struct{}) Ciphertext {
	if acl == nil {
		acl = make(map[Principal]struct{})
	}
	handle := uuid.New()
	p.mu.Lock()
	p.grants[handle] = acl
	p.mu.Unlock()
	return Ciphertext{Handle: handle, Bytes: raw}
}

// sharedGrants verifies both operands were minted here and computes the
// intersection of their ACLs.
func (p *PaillierProvider) sharedGrants(a, b Ciphertext) (map[Principal]struct{}, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	aclA, okA := p.grants[a.Handle]
	aclB, okB := p.grants[b.Handle]
	if !okA || !okB {
		return nil, fmt.Errorf("arithmetic on unknown ciphertext: %w", sentinel.ErrNotFound)
	}
	shared := make(map[Principal]struct{})
	for pr := range aclA {
		if _, ok := aclB[pr]; ok {
			shared[pr] = struct{}{}
		}
	}
	return shared, nil
}
