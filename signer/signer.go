package signer

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/bitfsorg/walletcore-go/log"
	"github.com/bitfsorg/walletcore-go/wallet"
)

// DigestLen is the size of every digest the signer accepts.
const DigestLen = 32

// compactHeaderBase is the SignCompact header of a compressed key with
// recovery id 0.
const compactHeaderBase = 27 + 4

// ConfirmFunc asks the user to approve a signing request. Returning
// false cancels the send.
type ConfirmFunc func(ctx context.Context, req wallet.SignRequest) (bool, error)

// Option configures a KeySigner.
type Option func(*KeySigner)

// WithDefaultPath sets the path used when a request carries none.
func WithDefaultPath(path string) Option { return func(s *KeySigner) { s.defaultPath = path } }

// WithConfirm installs a user confirmation step before every signature.
func WithConfirm(fn ConfirmFunc) Option { return func(s *KeySigner) { s.confirm = fn } }

// KeySigner signs wallet requests with keys derived from a seed.
type KeySigner struct {
	hd          *HDKey
	defaultPath string
	confirm     ConfirmFunc

	mu   sync.Mutex
	keys map[string]*secp256k1.PrivateKey
}

var _ wallet.Signer = (*KeySigner)(nil)

// NewKeySigner returns a signer for seed. Requests without a path use
// BitcoinLegacyPath unless WithDefaultPath says otherwise.
func NewKeySigner(seed []byte, opts ...Option) (*KeySigner, error) {
	hd, err := NewHDKey(seed)
	if err != nil {
		return nil, err
	}
	s := &KeySigner{
		hd:          hd,
		defaultPath: BitcoinLegacyPath,
		keys:        make(map[string]*secp256k1.PrivateKey),
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := ParsePath(s.defaultPath); err != nil {
		return nil, err
	}
	return s, nil
}

// FromMnemonic is NewKeySigner over the seed of mnemonic and passphrase.
func FromMnemonic(mnemonic, passphrase string, opts ...Option) (*KeySigner, error) {
	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	return NewKeySigner(seed, opts...)
}

// key returns the private key at path, deriving it on first use.
func (s *KeySigner) key(path string) (*secp256k1.PrivateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if k, ok := s.keys[path]; ok {
		return k, nil
	}
	kp, err := s.hd.Derive(path)
	if err != nil {
		return nil, err
	}
	k := secp256k1.PrivKeyFromBytes(kp.PrivateKey.Serialize())
	s.keys[path] = k
	return k, nil
}

// PublicKey returns the compressed public key at path, or at the default
// path when path is empty.
func (s *KeySigner) PublicKey(path string) ([]byte, error) {
	if path == "" {
		path = s.defaultPath
	}
	k, err := s.key(path)
	if err != nil {
		return nil, err
	}
	return k.PubKey().SerializeCompressed(), nil
}

// Sign signs every digest of req with the key at req.Path. When req names
// a public key it must be the one at that path, in either encoding.
func (s *KeySigner) Sign(ctx context.Context, req wallet.SignRequest) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := req.Path
	if path == "" {
		path = s.defaultPath
	}
	priv, err := s.key(path)
	if err != nil {
		return nil, err
	}
	if len(req.PublicKey) > 0 {
		want, err := secp256k1.ParsePubKey(req.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrKeyMismatch, err)
		}
		if !bytes.Equal(want.SerializeCompressed(), priv.PubKey().SerializeCompressed()) {
			return nil, fmt.Errorf("%w: %s", ErrKeyMismatch, path)
		}
	}
	for i, d := range req.Digests {
		if len(d) != DigestLen {
			return nil, fmt.Errorf("%w: digest %d has %d bytes", ErrDigestLength, i, len(d))
		}
	}

	if s.confirm != nil {
		ok, err := s.confirm(ctx, req)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, wallet.ErrSignerCancelled
		}
	}

	out := make([][]byte, len(req.Digests))
	for i, d := range req.Digests {
		switch req.Scheme {
		case wallet.SchemeECDSA:
			out[i] = signRS(priv, d)
		case wallet.SchemeRecoverable:
			out[i] = signRecoverable(priv, d)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, req.Scheme)
		}
	}
	log.Signer.Debug().
		Str("path", path).
		Str("scheme", req.Scheme.String()).
		Int("digests", len(req.Digests)).
		Msg("signed")
	return out, nil
}

// signRS returns the low-S signature of digest as 64-byte r||s.
func signRS(priv *secp256k1.PrivateKey, digest []byte) []byte {
	sig := ecdsa.Sign(priv, digest)
	r, s := sig.R(), sig.S()
	rb, sb := r.Bytes(), s.Bytes()
	return append(rb[:], sb[:]...)
}

// signRecoverable returns the signature of digest as 65-byte r||s||v with
// v in {0,1}.
func signRecoverable(priv *secp256k1.PrivateKey, digest []byte) []byte {
	compact := ecdsa.SignCompact(priv, digest, true)
	out := make([]byte, 65)
	copy(out, compact[1:])
	out[64] = compact[0] - compactHeaderBase
	return out
}
