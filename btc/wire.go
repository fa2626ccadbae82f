package btc

import (
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"

	"github.com/bitfsorg/walletcore-go/serde"
)

const (
	// TxVersion is the version of every transaction the builder emits.
	TxVersion = uint32(1)

	// SequenceFinal disables relative lock-time on an input.
	SequenceFinal = uint32(0xffffffff)

	// HashLen is the size of a transaction hash.
	HashLen = 32
)

// TxIn spends the output PrevIndex of transaction PrevHash. PrevHash is in
// internal (little-endian) byte order.
type TxIn struct {
	PrevHash  []byte
	PrevIndex uint32
	Script    []byte
	Sequence  uint32
}

// TxOut locks Amount satoshis to Script.
type TxOut struct {
	Amount uint64
	Script []byte
}

// Tx is a legacy (non-witness) Bitcoin transaction.
type Tx struct {
	Version  uint32
	Inputs   []TxIn
	Outputs  []TxOut
	LockTime uint32
}

var (
	txInSerde = serde.Xmap(
		serde.Tuple4(serde.FixedBytes(HashLen), serde.U32LE(), serde.VarBytes(), serde.U32LE()),
		func(q serde.Quad[[]byte, uint32, []byte, uint32]) TxIn {
			return TxIn{PrevHash: q.First, PrevIndex: q.Second, Script: q.Third, Sequence: q.Fourth}
		},
		func(in TxIn) serde.Quad[[]byte, uint32, []byte, uint32] {
			return serde.Quad[[]byte, uint32, []byte, uint32]{
				First: in.PrevHash, Second: in.PrevIndex, Third: in.Script, Fourth: in.Sequence,
			}
		},
	)

	txOutSerde = serde.Xmap(
		serde.Tuple2(serde.U64LE(), serde.VarBytes()),
		func(p serde.Pair[uint64, []byte]) TxOut { return TxOut{Amount: p.First, Script: p.Second} },
		func(out TxOut) serde.Pair[uint64, []byte] {
			return serde.Pair[uint64, []byte]{First: out.Amount, Second: out.Script}
		},
	)

	txSerde = serde.Xmap(
		serde.Tuple4(
			serde.U32LE(),
			serde.VectorOf(serde.CompactSizeLength(), txInSerde),
			serde.VectorOf(serde.CompactSizeLength(), txOutSerde),
			serde.U32LE(),
		),
		func(q serde.Quad[uint32, []TxIn, []TxOut, uint32]) Tx {
			return Tx{Version: q.First, Inputs: q.Second, Outputs: q.Third, LockTime: q.Fourth}
		},
		func(tx Tx) serde.Quad[uint32, []TxIn, []TxOut, uint32] {
			return serde.Quad[uint32, []TxIn, []TxOut, uint32]{
				First: tx.Version, Second: tx.Inputs, Third: tx.Outputs, Fourth: tx.LockTime,
			}
		},
	)
)

// TxSerde is the wire codec of Tx.
func TxSerde() serde.Serde[Tx] {
	return txSerde
}

// Bytes returns the wire encoding of tx.
func (tx *Tx) Bytes() ([]byte, error) {
	b, err := txSerde.Serialize(*tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTx, err)
	}
	return b, nil
}

// TxID returns the display-order hex id of tx.
func (tx *Tx) TxID() (string, error) {
	b, err := tx.Bytes()
	if err != nil {
		return "", err
	}
	return TxID(b), nil
}

// ParseTx decodes a raw transaction. Trailing bytes are rejected.
func ParseTx(raw []byte) (*Tx, error) {
	tx, err := serde.Decode(txSerde, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTx, err)
	}
	return &tx, nil
}

// TxID returns the display-order hex double SHA-256 of a raw transaction.
func TxID(raw []byte) string {
	h := chainhash.DoubleHashH(raw)
	return h.String()
}

// reverseBytes returns a reversed copy of b.
func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}
