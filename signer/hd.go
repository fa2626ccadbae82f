package signer

import (
	"fmt"
	"strconv"
	"strings"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"
)

const (
	// Hardened is the BIP32 hardened index offset.
	Hardened = 0x80000000

	// MaxPathDepth bounds the number of path components.
	MaxPathDepth = 255

	// Seed length limits from BIP32.
	MinSeedLen = 16
	MaxSeedLen = 64
)

// Default account paths.
const (
	BitcoinLegacyPath       = "m/44'/0'/0'/0/0"
	BitcoinNestedSegwitPath = "m/49'/0'/0'/0/0"
	BitcoinSegwitPath       = "m/84'/0'/0'/0/0"
	BitcoinTestNetPath      = "m/44'/1'/0'/0/0"
	VeChainPath             = "m/44'/818'/0'/0/0"
)

// ParsePath parses a derivation path such as m/44'/0'/0'/0/0. Hardened
// components may be marked with ' or h. "m" alone is the master key.
func ParsePath(path string) ([]uint32, error) {
	parts := strings.Split(strings.TrimSpace(path), "/")
	if parts[0] != "m" && parts[0] != "M" {
		return nil, fmt.Errorf("%w: %q must start with m", ErrInvalidPath, path)
	}
	parts = parts[1:]
	if len(parts) > MaxPathDepth {
		return nil, fmt.Errorf("%w: depth %d exceeds %d", ErrInvalidPath, len(parts), MaxPathDepth)
	}

	out := make([]uint32, 0, len(parts))
	for i, p := range parts {
		hardened := strings.HasSuffix(p, "'") || strings.HasSuffix(p, "h") || strings.HasSuffix(p, "H")
		if hardened {
			p = p[:len(p)-1]
		}
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil || n >= Hardened {
			return nil, fmt.Errorf("%w: component %d %q", ErrInvalidPath, i, parts[i])
		}
		idx := uint32(n)
		if hardened {
			idx += Hardened
		}
		out = append(out, idx)
	}
	return out, nil
}

// FormatPath is the inverse of ParsePath, marking hardened components with '.
func FormatPath(indices []uint32) string {
	var b strings.Builder
	b.WriteString("m")
	for _, idx := range indices {
		if idx >= Hardened {
			fmt.Fprintf(&b, "/%d'", idx-Hardened)
		} else {
			fmt.Fprintf(&b, "/%d", idx)
		}
	}
	return b.String()
}

// KeyPair holds a derived public/private key pair.
type KeyPair struct {
	PrivateKey *ec.PrivateKey `json:"-"`
	PublicKey  *ec.PublicKey  `json:"public_key"`
	Path       string         `json:"path"`
}

// HDKey derives keys from a BIP32 master key.
type HDKey struct {
	master *bip32.ExtendedKey
}

// NewHDKey creates the master key of seed.
func NewHDKey(seed []byte) (*HDKey, error) {
	if len(seed) < MinSeedLen || len(seed) > MaxSeedLen {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidSeed, len(seed))
	}
	// The network only affects extended key serialization, which is unused.
	master, err := bip32.NewMaster(seed, &chaincfg.MainNet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}
	return &HDKey{master: master}, nil
}

// Derive returns the key pair at path.
func (k *HDKey) Derive(path string) (*KeyPair, error) {
	indices, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	current := k.master
	for depth, idx := range indices {
		current, err = current.Child(idx)
		if err != nil {
			return nil, fmt.Errorf("%w: depth %d: %w", ErrDerivationFailed, depth, err)
		}
	}

	privKey, err := current.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: extract private key: %w", ErrDerivationFailed, err)
	}
	return &KeyPair{
		PrivateKey: privKey,
		PublicKey:  privKey.PubKey(),
		Path:       FormatPath(indices),
	}, nil
}
