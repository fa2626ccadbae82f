package vechain

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/blake2b"
)

const (
	// MainNetChainTag is the last byte of the mainnet genesis block ID.
	MainNetChainTag = uint8(0x4a)

	// TestNetChainTag is the last byte of the testnet genesis block ID.
	TestNetChainTag = uint8(0x27)

	// DefaultExpiration is the number of blocks after BlockRef during
	// which the transaction may be included.
	DefaultExpiration = uint32(720)

	// SignatureLen is the size of an r||s||v recoverable signature.
	SignatureLen = 65
)

// Body holds the fields of a transaction that its signature commits to.
type Body struct {
	ChainTag     uint8
	BlockRef     uint64
	Expiration   uint32
	Clauses      []Clause
	GasPriceCoef uint8
	Gas          uint64
	DependsOn    *common.Hash `rlp:"nil"`
	Nonce        uint64
	Reserved     []rlp.RawValue
}

// signedBody is Body followed by the signature, as sent on the wire.
type signedBody struct {
	ChainTag     uint8
	BlockRef     uint64
	Expiration   uint32
	Clauses      []Clause
	GasPriceCoef uint8
	Gas          uint64
	DependsOn    *common.Hash `rlp:"nil"`
	Nonce        uint64
	Reserved     []rlp.RawValue
	Signature    []byte
}

// Encoder produces the byte forms of a transaction body.
type Encoder interface {
	EncodeUnsigned(b *Body) ([]byte, error)
	SigningHash(b *Body) ([]byte, error)
	EncodeSigned(b *Body, signature []byte) ([]byte, error)
}

// RLPEncoder encodes bodies as RLP lists and hashes them with BLAKE2b-256.
type RLPEncoder struct{}

func (RLPEncoder) EncodeUnsigned(b *Body) ([]byte, error) {
	raw, err := rlp.EncodeToBytes(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return raw, nil
}

func (e RLPEncoder) SigningHash(b *Body) ([]byte, error) {
	raw, err := e.EncodeUnsigned(b)
	if err != nil {
		return nil, err
	}
	h := blake2b.Sum256(raw)
	return h[:], nil
}

func (RLPEncoder) EncodeSigned(b *Body, signature []byte) ([]byte, error) {
	raw, err := rlp.EncodeToBytes(&signedBody{
		ChainTag:     b.ChainTag,
		BlockRef:     b.BlockRef,
		Expiration:   b.Expiration,
		Clauses:      b.Clauses,
		GasPriceCoef: b.GasPriceCoef,
		Gas:          b.Gas,
		DependsOn:    b.DependsOn,
		Nonce:        b.Nonce,
		Reserved:     b.Reserved,
		Signature:    signature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return raw, nil
}

// DecodeSigned splits a signed wire transaction into body and signature.
func DecodeSigned(raw []byte) (*Body, []byte, error) {
	var sb signedBody
	if err := rlp.DecodeBytes(raw, &sb); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return &Body{
		ChainTag:     sb.ChainTag,
		BlockRef:     sb.BlockRef,
		Expiration:   sb.Expiration,
		Clauses:      sb.Clauses,
		GasPriceCoef: sb.GasPriceCoef,
		Gas:          sb.Gas,
		DependsOn:    sb.DependsOn,
		Nonce:        sb.Nonce,
		Reserved:     sb.Reserved,
	}, sb.Signature, nil
}

// Signer recovers the account that produced signature over signingHash.
func Signer(signingHash, signature []byte) (common.Address, error) {
	if len(signature) != SignatureLen {
		return common.Address{}, ErrSignatureLength
	}
	pub, err := crypto.SigToPub(signingHash, signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: recover signer: %w", ErrEncoding, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// TxID returns the transaction ID: BLAKE2b-256 of the signing hash followed
// by the signer address.
func TxID(signingHash []byte, signer common.Address) string {
	h, _ := blake2b.New256(nil)
	h.Write(signingHash)
	h.Write(signer.Bytes())
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// BlockRefFromID returns the block reference of a block: the first eight
// bytes of its ID.
func BlockRefFromID(id string) (uint64, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(id, "0x"))
	if err != nil || len(raw) < 8 {
		return 0, fmt.Errorf("%w: block id %q", ErrEncoding, id)
	}
	return binary.BigEndian.Uint64(raw[:8]), nil
}
