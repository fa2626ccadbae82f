package btc

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/bitfsorg/walletcore-go/address"
)

const (
	// SigHashAll commits a signature to every input and output.
	SigHashAll = uint32(0x01)

	// SignatureLen is the size of one r||s signature.
	SignatureLen = 64
)

// Builder turns a Transaction and an explicit set of unspent outputs into
// signing digests and, once signed, the final wire transaction. A Builder
// holds only its key material and network; it is safe for concurrent use.
type Builder struct {
	params       *address.Params
	pubKey       []byte
	verifyKey    *secp256k1.PublicKey
	address      string
	sourceScript []byte
}

// NewBuilder returns a builder spending P2PKH outputs of pubKey.
func NewBuilder(pubKey []byte, params *address.Params) (*Builder, error) {
	if params == nil {
		params = &address.BitcoinMainNet
	}
	pk, err := ec.PublicKeyFromBytes(pubKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", address.ErrInvalidPubKey, err)
	}
	compressed := pk.Compressed()
	verifyKey, err := secp256k1.ParsePubKey(compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", address.ErrInvalidPubKey, err)
	}
	hash, err := address.PubKeyHash(compressed)
	if err != nil {
		return nil, err
	}
	addr, err := address.EncodeLegacy(hash, params)
	if err != nil {
		return nil, err
	}
	return &Builder{
		params:       params,
		pubKey:       compressed,
		verifyKey:    verifyKey,
		address:      addr,
		sourceScript: P2PKHScript(hash),
	}, nil
}

// Address returns the P2PKH address the builder spends from.
func (b *Builder) Address() string { return b.address }

// Script returns the builder's own locking script.
func (b *Builder) Script() []byte { return append([]byte(nil), b.sourceScript...) }

// PublicKey returns the compressed public key.
func (b *Builder) PublicKey() []byte { return append([]byte(nil), b.pubKey...) }

// Params returns the builder's network.
func (b *Builder) Params() *address.Params { return b.params }

// unsigned assembles the transaction with empty input scripts, and returns
// alongside it the locking script each input spends.
func (b *Builder) unsigned(t Transaction, unspents []UnspentOutput) (*Tx, [][]byte, error) {
	if t.Fee == nil {
		return nil, nil, ErrMissingFee
	}
	if t.Amount == 0 {
		return nil, nil, ErrMissingAmount
	}
	if len(unspents) == 0 {
		return nil, nil, ErrNoUnspents
	}

	total := SumUnspents(unspents)
	need := t.Amount + t.Fee.Amount
	if need < t.Amount || total < need {
		return nil, nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, total, need)
	}

	toScript, err := OutputScript(t.To, b.params)
	if err != nil {
		return nil, nil, err
	}
	tx := &Tx{
		Version: TxVersion,
		Outputs: []TxOut{{Amount: t.Amount, Script: toScript}},
	}
	if change := total - need; change != 0 {
		changeScript := b.sourceScript
		if t.From != "" && t.From != b.address {
			if changeScript, err = OutputScript(t.From, b.params); err != nil {
				return nil, nil, err
			}
		}
		tx.Outputs = append(tx.Outputs, TxOut{Amount: change, Script: changeScript})
	}

	lockScripts := make([][]byte, len(unspents))
	tx.Inputs = make([]TxIn, len(unspents))
	for i, u := range unspents {
		hash, err := hex.DecodeString(u.TxHash)
		if err != nil || len(hash) != HashLen {
			return nil, nil, fmt.Errorf("%w: input %d tx hash %q", ErrInvalidUnspent, i, u.TxHash)
		}
		tx.Inputs[i] = TxIn{
			PrevHash:  reverseBytes(hash),
			PrevIndex: u.Index,
			Script:    []byte{},
			Sequence:  SequenceFinal,
		}
		// Unspents without a script belong to the wallet's own address.
		lockScripts[i] = u.Script
		if len(lockScripts[i]) == 0 {
			lockScripts[i] = b.sourceScript
		}
	}
	return tx, lockScripts, nil
}

// sigHash returns the legacy SIGHASH_ALL digest of input idx: the
// transaction with only that input carrying its locking script, followed
// by the 4-byte hash type, double SHA-256 hashed.
func sigHash(tx *Tx, lockScripts [][]byte, idx int) ([]byte, error) {
	cp := *tx
	cp.Inputs = make([]TxIn, len(tx.Inputs))
	for i, in := range tx.Inputs {
		in.Script = []byte{}
		if i == idx {
			in.Script = lockScripts[i]
		}
		cp.Inputs[i] = in
	}
	pre, err := cp.Bytes()
	if err != nil {
		return nil, err
	}
	pre = binary.LittleEndian.AppendUint32(pre, SigHashAll)
	h := chainhash.DoubleHashH(pre)
	return h.CloneBytes(), nil
}

// BuildForSign returns one 32-byte digest per unspent, in input order.
// Every unspent is spent; change goes back to the source address when the
// inputs exceed amount plus fee.
func (b *Builder) BuildForSign(t Transaction, unspents []UnspentOutput) ([][]byte, error) {
	tx, lockScripts, err := b.unsigned(t, unspents)
	if err != nil {
		return nil, err
	}
	digests := make([][]byte, len(tx.Inputs))
	for i := range tx.Inputs {
		if digests[i], err = sigHash(tx, lockScripts, i); err != nil {
			return nil, err
		}
	}
	return digests, nil
}

// BuildForSend rebuilds the transaction from the same inputs, attaches
// signature (64 bytes of r||s per input, in input order) and returns the
// wire encoding.
func (b *Builder) BuildForSend(t Transaction, unspents []UnspentOutput, signature []byte) ([]byte, error) {
	tx, lockScripts, err := b.unsigned(t, unspents)
	if err != nil {
		return nil, err
	}
	if len(signature) != SignatureLen*len(tx.Inputs) {
		return nil, fmt.Errorf("%w: got %d bytes for %d inputs", ErrSignatureLength, len(signature), len(tx.Inputs))
	}

	scriptSigs := make([][]byte, len(tx.Inputs))
	for i := range tx.Inputs {
		digest, err := sigHash(tx, lockScripts, i)
		if err != nil {
			return nil, err
		}
		sig, err := parseRS(signature[i*SignatureLen : (i+1)*SignatureLen])
		if err != nil {
			return nil, fmt.Errorf("%w: input %d", err, i)
		}
		if !sig.Verify(digest, b.verifyKey) {
			return nil, fmt.Errorf("%w: input %d does not verify", ErrInvalidSignature, i)
		}
		der := append(sig.Serialize(), byte(SigHashAll))
		scriptSigs[i] = append(PushData(der), PushData(b.pubKey)...)
	}
	for i := range tx.Inputs {
		tx.Inputs[i].Script = scriptSigs[i]
	}
	return tx.Bytes()
}

// parseRS reads a 64-byte big-endian r||s signature.
func parseRS(rs []byte) (*ecdsa.Signature, error) {
	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(rs[:32]); overflow || r.IsZero() {
		return nil, fmt.Errorf("%w: r out of range", ErrInvalidSignature)
	}
	if overflow := s.SetByteSlice(rs[32:]); overflow || s.IsZero() {
		return nil, fmt.Errorf("%w: s out of range", ErrInvalidSignature)
	}
	return ecdsa.NewSignature(&r, &s), nil
}
