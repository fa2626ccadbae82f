package vechain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bitfsorg/walletcore-go/address"
)

// transferSelector is the 4-byte selector of transfer(address,uint256).
var transferSelector = []byte{0xa9, 0x05, 0x9c, 0xbb}

// Clause is one call inside a VeChain transaction. A nil To deploys a
// contract.
type Clause struct {
	To    *common.Address `rlp:"nil"`
	Value *big.Int
	Data  []byte
}

// Kind is what a transfer moves.
type Kind int

const (
	KindCoin         Kind = iota // VET
	KindToken                    // VIP-180 token, e.g. VTHO
	KindContractCall             // arbitrary call data, not built by this package
)

func (k Kind) String() string {
	switch k {
	case KindCoin:
		return "coin"
	case KindToken:
		return "token"
	case KindContractCall:
		return "contract-call"
	}
	return "unknown"
}

// TokenTransferData returns the call data of transfer(to, amount).
func TokenTransferData(to common.Address, amount *big.Int) []byte {
	data := make([]byte, 0, len(transferSelector)+64)
	data = append(data, transferSelector...)
	data = append(data, common.LeftPadBytes(to.Bytes(), 32)...)
	return append(data, common.LeftPadBytes(amount.Bytes(), 32)...)
}

// BuildClause turns a transfer of amount to `to` into a clause. Coin
// transfers move VET directly; token transfers call the token contract.
func BuildClause(kind Kind, to string, amount *big.Int, token string) (Clause, error) {
	if amount == nil || amount.Sign() <= 0 {
		return Clause{}, ErrMissingAmount
	}
	recipient, err := address.ParseVeChain(to)
	if err != nil {
		return Clause{}, fmt.Errorf("%w: recipient: %w", ErrInvalidAddress, err)
	}

	switch kind {
	case KindCoin:
		return Clause{To: &recipient, Value: new(big.Int).Set(amount), Data: []byte{}}, nil
	case KindToken:
		contract, err := address.ParseVeChain(token)
		if err != nil {
			return Clause{}, fmt.Errorf("%w: token contract: %w", ErrInvalidAddress, err)
		}
		return Clause{To: &contract, Value: new(big.Int), Data: TokenTransferData(recipient, amount)}, nil
	}
	return Clause{}, fmt.Errorf("%w: %v", ErrUnsupportedKind, kind)
}
