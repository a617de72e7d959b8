package jwtx

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/cryptox"
)

// KeyManager owns the signing keys of this instance together with the
// KeySet and Verifier built from them.
type KeyManager struct {
	Verifier Verifier
	KeySet   *KeySet

	issuer  string
	ttl     time.Duration
	mu      sync.RWMutex
	signers []Signer
}

// KeyManagerOptions configures a KeyManager.
type KeyManagerOptions struct {
	// Issuer is written into and required on every token.
	Issuer string

	// TTL is the token lifetime. Defaults to DefaultAccessTokenTTL.
	TTL time.Duration

	// NumKeys is the number of ephemeral keys to generate (1..10, default 1).
	// Ignored by NewKeyManagerFromKeys.
	NumKeys int
}

// NewEphemeralKeyManager generates keys that live only in memory. Tokens
// issued before a restart stop verifying afterwards.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	n := min(max(opts.NumKeys, 1), 10)

	keys := make([]ed25519.PrivateKey, 0, n)
	for range n {
		pemKey, err := cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, err
		}
		key, err := cryptox.ParseEd25519Key(pemKey)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	return NewKeyManagerFromKeys(opts, keys...)
}

// NewKeyManagerFromKeys builds a manager around existing private keys, such
// as one loaded from a PEM file. Key ids are derived from the public key so
// they are stable across restarts.
func NewKeyManagerFromKeys(opts KeyManagerOptions, keys ...ed25519.PrivateKey) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, errors.New("jwtx: Issuer is required")
	}
	if len(keys) == 0 {
		return nil, errors.New("jwtx: at least one signing key is required")
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultAccessTokenTTL
	}

	keyset := NewKeySet()
	km := &KeyManager{
		Verifier: NewVerifierEdDSA(keyset, opts.Issuer),
		KeySet:   keyset,
		issuer:   opts.Issuer,
		ttl:      opts.TTL,
	}

	for i, key := range keys {
		pub, _ := key.Public().(ed25519.PublicKey)
		signer := NewSignerEdDSAFromKey(KeyID(pub), key)
		if err := signer.Validate(); err != nil {
			return nil, fmt.Errorf("jwtx: signer %d: %w", i+1, err)
		}
		if err := km.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: signer %d: %w", i+1, err)
		}
	}

	return km, nil
}

// KeyID derives a kid from the public key fingerprint.
func KeyID(pub ed25519.PublicKey) string {
	return "accounts-" + cryptox.FingerprintToken(string(pub))[:16]
}

// Issue signs a bearer token for accountID using a randomly selected key.
func (km *KeyManager) Issue(accountID string, now time.Time) (string, Claims, error) {
	signer := km.GetSigner()
	if signer == nil {
		return "", Claims{}, ErrNoKey
	}

	claims := NewAccountClaims(accountID, km.issuer, km.ttl, now)
	token, err := signer.Sign(claims)
	if err != nil {
		return "", Claims{}, fmt.Errorf("jwtx: sign: %w", err)
	}
	return token, claims, nil
}

// TTL returns the configured token lifetime.
func (km *KeyManager) TTL() time.Duration { return km.ttl }

// IsReady reports whether any verification key is loaded.
func (km *KeyManager) IsReady() bool {
	return km.KeySet.IsReady()
}

// GetSigner returns one of the active signers at random.
func (km *KeyManager) GetSigner() Signer {
	km.mu.RLock()
	defer km.mu.RUnlock()

	switch len(km.signers) {
	case 0:
		return nil
	case 1:
		return km.signers[0]
	default:
		return km.signers[rand.IntN(len(km.signers))]
	}
}

// NumSigners returns the number of active signing keys.
func (km *KeyManager) NumSigners() int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return len(km.signers)
}

// AddSigner makes signer available for signing and verification.
func (km *KeyManager) AddSigner(signer Signer) error {
	if signer == nil {
		return errors.New("jwtx: signer cannot be nil")
	}

	km.mu.Lock()
	defer km.mu.Unlock()

	if err := km.KeySet.AddSigner(signer); err != nil {
		return fmt.Errorf("jwtx: add signer to keyset: %w", err)
	}
	km.signers = append(km.signers, signer)
	return nil
}
