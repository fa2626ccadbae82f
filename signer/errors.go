package signer

import "errors"

var (
	// ErrInvalidSeed indicates the seed is empty or outside the BIP32 length range.
	ErrInvalidSeed = errors.New("signer: invalid seed")

	// ErrInvalidMnemonic indicates the mnemonic fails BIP39 validation.
	ErrInvalidMnemonic = errors.New("signer: invalid mnemonic")

	// ErrInvalidEntropy indicates an unsupported mnemonic entropy size.
	ErrInvalidEntropy = errors.New("signer: entropy must be 128 or 256 bits")

	// ErrInvalidPath indicates a malformed derivation path.
	ErrInvalidPath = errors.New("signer: invalid derivation path")

	// ErrDerivationFailed indicates BIP32 child key derivation failed.
	ErrDerivationFailed = errors.New("signer: key derivation failed")

	// ErrKeyMismatch indicates the requested public key is not the one at the path.
	ErrKeyMismatch = errors.New("signer: public key does not match derivation path")

	// ErrDigestLength indicates a digest that is not 32 bytes.
	ErrDigestLength = errors.New("signer: digest must be 32 bytes")

	// ErrUnsupportedScheme indicates a signature scheme the signer cannot produce.
	ErrUnsupportedScheme = errors.New("signer: unsupported signature scheme")
)
