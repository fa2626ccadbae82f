package address

import "fmt"

// Params holds the address parameters of one Bitcoin network.
type Params struct {
	Name           string
	AddressVersion byte     // P2PKH version byte
	P2SHVersion    byte     // P2SH version byte
	Bech32HRP      string   // human-readable part of witness addresses
	LegacyPrefixes []string // leading characters of Base58 addresses
}

// Predefined network parameters.
var (
	BitcoinMainNet = Params{
		Name:           "mainnet",
		AddressVersion: 0x00,
		P2SHVersion:    0x05,
		Bech32HRP:      "bc",
		LegacyPrefixes: []string{"1", "3"},
	}

	BitcoinTestNet = Params{
		Name:           "testnet",
		AddressVersion: 0x6f,
		P2SHVersion:    0xc4,
		Bech32HRP:      "tb",
		LegacyPrefixes: []string{"m", "n", "2"},
	}

	BitcoinRegTest = Params{
		Name:           "regtest",
		AddressVersion: 0x6f,
		P2SHVersion:    0xc4,
		Bech32HRP:      "bcrt",
		LegacyPrefixes: []string{"m", "n", "2"},
	}
)

// predefined maps network names to their params.
var predefined = map[string]*Params{
	"mainnet": &BitcoinMainNet,
	"testnet": &BitcoinTestNet,
	"regtest": &BitcoinRegTest,
}

// GetNetwork returns predefined params by name.
func GetNetwork(name string) (*Params, error) {
	if p, ok := predefined[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, name)
}

// IsMainNet reports whether p describes Bitcoin mainnet.
func (p *Params) IsMainNet() bool {
	return p.Name == BitcoinMainNet.Name
}

// hasLegacyPrefix reports whether addr starts with one of p's Base58 prefixes.
func (p *Params) hasLegacyPrefix(addr string) bool {
	for _, pre := range p.LegacyPrefixes {
		if len(addr) > 0 && addr[:1] == pre {
			return true
		}
	}
	return false
}
