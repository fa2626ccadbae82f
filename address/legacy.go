package address

import (
	"bytes"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/btcsuite/btcd/btcutil/base58"
)

const (
	// Hash160Len is the size of a RIPEMD160(SHA256(x)) digest.
	Hash160Len = 20

	checksumLen     = 4
	legacyDecodeLen = 1 + Hash160Len + checksumLen
	minLegacyLen    = 26
	maxLegacyLen    = 35
)

// parsePubKey accepts a compressed or uncompressed secp256k1 public key.
func parsePubKey(pub []byte) (*ec.PublicKey, error) {
	pk, err := ec.PublicKeyFromBytes(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPubKey, err)
	}
	return pk, nil
}

// PubKeyHash returns HASH160 of the compressed form of pub.
func PubKeyHash(pub []byte) ([]byte, error) {
	pk, err := parsePubKey(pub)
	if err != nil {
		return nil, err
	}
	return bsvhash.Hash160(pk.Compressed()), nil
}

// checksum returns the first four bytes of the double SHA-256 of payload.
func checksum(payload []byte) []byte {
	h := chainhash.DoubleHashH(payload)
	return h[:checksumLen]
}

// encodeBase58Check lays out version || hash || checksum and Base58 encodes it.
func encodeBase58Check(version byte, hash []byte) (string, error) {
	if len(hash) != Hash160Len {
		return "", fmt.Errorf("%w: hash must be %d bytes, got %d", ErrMalformed, Hash160Len, len(hash))
	}
	payload := make([]byte, 0, legacyDecodeLen)
	payload = append(payload, version)
	payload = append(payload, hash...)
	payload = append(payload, checksum(payload)...)
	return base58.Encode(payload), nil
}

// decodeBase58Check returns the version byte and hash of a legacy address.
func decodeBase58Check(addr string) (byte, []byte, error) {
	if len(addr) < minLegacyLen || len(addr) > maxLegacyLen {
		return 0, nil, fmt.Errorf("%w: length %d outside %d..%d", ErrMalformed, len(addr), minLegacyLen, maxLegacyLen)
	}
	raw := base58.Decode(addr)
	if len(raw) != legacyDecodeLen {
		return 0, nil, fmt.Errorf("%w: base58 payload is %d bytes", ErrMalformed, len(raw))
	}
	body := raw[:1+Hash160Len]
	if !bytes.Equal(checksum(body), raw[1+Hash160Len:]) {
		return 0, nil, ErrChecksumMismatch
	}
	return raw[0], raw[1 : 1+Hash160Len], nil
}

// EncodeLegacy encodes a public key hash as a P2PKH address.
func EncodeLegacy(pubKeyHash []byte, p *Params) (string, error) {
	return encodeBase58Check(p.AddressVersion, pubKeyHash)
}

// EncodeScriptHash encodes a script hash as a P2SH address.
func EncodeScriptHash(scriptHash []byte, p *Params) (string, error) {
	return encodeBase58Check(p.P2SHVersion, scriptHash)
}

// DeriveLegacy derives the P2PKH address of a public key.
func DeriveLegacy(pub []byte, p *Params) (string, error) {
	h, err := PubKeyHash(pub)
	if err != nil {
		return "", err
	}
	return EncodeLegacy(h, p)
}

// NestedSegwitRedeemScript returns the P2WPKH witness program script
// (OP_0 <20-byte hash>) that a nested segwit address commits to.
func NestedSegwitRedeemScript(pubKeyHash []byte) []byte {
	script := make([]byte, 0, 2+Hash160Len)
	script = append(script, 0x00, Hash160Len)
	return append(script, pubKeyHash...)
}

// DeriveNestedSegwit derives the P2SH-wrapped P2WPKH address of a public key.
func DeriveNestedSegwit(pub []byte, p *Params) (string, error) {
	h, err := PubKeyHash(pub)
	if err != nil {
		return "", err
	}
	return EncodeScriptHash(bsvhash.Hash160(NestedSegwitRedeemScript(h)), p)
}
