package address

import "fmt"

// Chain names a supported blockchain.
type Chain string

const (
	Bitcoin Chain = "bitcoin"
	VeChain Chain = "vechain"
)

// Scheme selects how a Bitcoin address is derived from a public key.
type Scheme int

const (
	SchemeLegacy       Scheme = iota // P2PKH, Base58Check
	SchemeNestedSegwit               // P2SH-P2WPKH, Base58Check
	SchemeSegwit                     // P2WPKH, Bech32
)

func (s Scheme) String() string {
	switch s {
	case SchemeLegacy:
		return "legacy"
	case SchemeNestedSegwit:
		return "nested-segwit"
	case SchemeSegwit:
		return "segwit"
	}
	return "unknown"
}

// ParseScheme is the inverse of Scheme.String.
func ParseScheme(s string) (Scheme, error) {
	for _, sc := range []Scheme{SchemeLegacy, SchemeNestedSegwit, SchemeSegwit} {
		if sc.String() == s {
			return sc, nil
		}
	}
	return 0, fmt.Errorf("%w: scheme %q", ErrUnsupportedChain, s)
}

// Codec derives and validates addresses for one chain and network.
type Codec interface {
	Chain() Chain
	FromPublicKey(pub []byte) (string, error)
	Validate(addr string) error
}

// NewCodec returns the codec for chain. network and scheme apply to
// Bitcoin only.
func NewCodec(chain Chain, network string, scheme Scheme) (Codec, error) {
	switch chain {
	case Bitcoin:
		p, err := GetNetwork(network)
		if err != nil {
			return nil, err
		}
		if scheme < SchemeLegacy || scheme > SchemeSegwit {
			return nil, fmt.Errorf("%w: scheme %d", ErrUnsupportedChain, scheme)
		}
		return &BitcoinCodec{Params: p, Scheme: scheme}, nil
	case VeChain:
		return VeChainCodec{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedChain, chain)
}

// BitcoinCodec derives addresses with a fixed scheme and accepts any
// valid address of its network.
type BitcoinCodec struct {
	Params *Params
	Scheme Scheme
}

func (c *BitcoinCodec) Chain() Chain { return Bitcoin }

func (c *BitcoinCodec) FromPublicKey(pub []byte) (string, error) {
	switch c.Scheme {
	case SchemeNestedSegwit:
		return DeriveNestedSegwit(pub, c.Params)
	case SchemeSegwit:
		return DeriveSegwit(pub, c.Params)
	}
	return DeriveLegacy(pub, c.Params)
}

func (c *BitcoinCodec) Validate(addr string) error { return Validate(addr, c.Params) }

// VeChainCodec handles VeChain account addresses.
type VeChainCodec struct{}

func (VeChainCodec) Chain() Chain { return VeChain }

func (VeChainCodec) FromPublicKey(pub []byte) (string, error) { return DeriveVeChain(pub) }

func (VeChainCodec) Validate(addr string) error { return ValidateVeChain(addr) }
