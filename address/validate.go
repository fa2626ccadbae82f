package address

import "fmt"

// Kind identifies the output type an address pays to.
type Kind int

const (
	KindP2PKH Kind = iota
	KindP2SH
	KindWitness
)

func (k Kind) String() string {
	switch k {
	case KindP2PKH:
		return "p2pkh"
	case KindP2SH:
		return "p2sh"
	case KindWitness:
		return "witness"
	}
	return "unknown"
}

// Decoded is a parsed Bitcoin address. For P2PKH and P2SH, Program holds
// the 20-byte hash and Version is zero.
type Decoded struct {
	Kind    Kind
	Version byte
	Program []byte
}

// knownLegacyPrefix reports whether addr starts like a Base58 address on
// any predefined network.
func knownLegacyPrefix(addr string) bool {
	for _, p := range predefined {
		if p.hasLegacyPrefix(addr) {
			return true
		}
	}
	return false
}

// Decode parses addr for network p. Strings that begin with a legacy
// prefix are decoded as Base58Check, anything else as a witness address.
func Decode(addr string, p *Params) (*Decoded, error) {
	if !knownLegacyPrefix(addr) {
		version, program, err := DecodeSegwit(p.Bech32HRP, addr)
		if err != nil {
			return nil, err
		}
		return &Decoded{Kind: KindWitness, Version: version, Program: program}, nil
	}

	version, hash, err := decodeBase58Check(addr)
	if err != nil {
		return nil, err
	}
	// A valid mainnet address is still rejected on testnet, and vice versa.
	if !p.hasLegacyPrefix(addr) {
		return nil, fmt.Errorf("%w: prefix %q on %s", ErrWrongNetwork, addr[:1], p.Name)
	}
	switch version {
	case p.AddressVersion:
		return &Decoded{Kind: KindP2PKH, Program: hash}, nil
	case p.P2SHVersion:
		return &Decoded{Kind: KindP2SH, Program: hash}, nil
	}
	return nil, fmt.Errorf("%w: version byte 0x%02x on %s", ErrWrongNetwork, version, p.Name)
}

// Validate reports whether addr is a valid address on network p.
func Validate(addr string, p *Params) error {
	_, err := Decode(addr, p)
	return err
}

// IsValid is Validate as a boolean.
func IsValid(addr string, p *Params) bool {
	return Validate(addr, p) == nil
}
