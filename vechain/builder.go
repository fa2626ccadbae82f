package vechain

import (
	"fmt"
	"math/big"
)

// Transaction describes a single-clause VeChain transfer.
type Transaction struct {
	Kind   Kind
	Amount *big.Int // wei of VET, or token base units
	Fee    *Fee
	From   string
	To     string
	Token  string // token contract, KindToken only

	ChainTag   uint8
	BlockRef   uint64
	Expiration uint32 // DefaultExpiration when zero
	Nonce      uint64
}

// Builder assembles VeChain transaction bodies and delegates their byte
// encoding to an Encoder.
type Builder struct {
	encoder Encoder
}

// NewBuilder returns a Builder using enc, or RLPEncoder when enc is nil.
func NewBuilder(enc Encoder) *Builder {
	if enc == nil {
		enc = RLPEncoder{}
	}
	return &Builder{encoder: enc}
}

// Body returns the transaction body for tx. Gas is the fee's gas when set,
// otherwise the intrinsic gas of the clause plus the fee's extra gas.
func (b *Builder) Body(tx Transaction) (*Body, error) {
	if tx.Fee == nil {
		return nil, ErrMissingFee
	}
	clause, err := BuildClause(tx.Kind, tx.To, tx.Amount, tx.Token)
	if err != nil {
		return nil, err
	}
	clauses := []Clause{clause}

	gas := tx.Fee.Gas
	if gas == 0 {
		gas = IntrinsicGas(clauses) + tx.Fee.ExtraGas
	}
	expiration := tx.Expiration
	if expiration == 0 {
		expiration = DefaultExpiration
	}

	return &Body{
		ChainTag:     tx.ChainTag,
		BlockRef:     tx.BlockRef,
		Expiration:   expiration,
		Clauses:      clauses,
		GasPriceCoef: tx.Fee.Coefficient(),
		Gas:          gas,
		Nonce:        tx.Nonce,
		Reserved:     nil,
	}, nil
}

// BuildForSign returns the 32-byte hash the sender must sign.
func (b *Builder) BuildForSign(tx Transaction) ([]byte, error) {
	body, err := b.Body(tx)
	if err != nil {
		return nil, err
	}
	return b.encoder.SigningHash(body)
}

// BuildForSend returns the signed wire transaction. signature is the
// 65-byte r||s||v signature over the BuildForSign hash.
func (b *Builder) BuildForSend(tx Transaction, signature []byte) ([]byte, error) {
	if len(signature) != SignatureLen {
		return nil, fmt.Errorf("%w: got %d", ErrSignatureLength, len(signature))
	}
	body, err := b.Body(tx)
	if err != nil {
		return nil, err
	}
	return b.encoder.EncodeSigned(body, signature)
}
