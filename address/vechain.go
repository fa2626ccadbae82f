package address

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DeriveVeChain returns the 0x-prefixed lowercase hex account address of
// pub: the last 20 bytes of keccak256 over the uncompressed key.
func DeriveVeChain(pub []byte) (string, error) {
	pk, err := parsePubKey(pub)
	if err != nil {
		return "", err
	}
	ecdsaPub, err := crypto.DecompressPubkey(pk.Compressed())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPubKey, err)
	}
	return strings.ToLower(crypto.PubkeyToAddress(*ecdsaPub).Hex()), nil
}

// ValidateVeChain checks that addr is a 0x-prefixed 20-byte hex address.
func ValidateVeChain(addr string) error {
	if !strings.HasPrefix(addr, "0x") && !strings.HasPrefix(addr, "0X") {
		return fmt.Errorf("%w: missing 0x prefix", ErrMalformed)
	}
	if !common.IsHexAddress(addr) {
		return fmt.Errorf("%w: not a 20-byte hex address", ErrMalformed)
	}
	return nil
}

// ParseVeChain validates addr and returns it as an account address.
func ParseVeChain(addr string) (common.Address, error) {
	if err := ValidateVeChain(addr); err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(addr), nil
}
