package address

import (
	"errors"
	"fmt"
)

var (
	// ErrAddress is the category of every address derivation or validation failure.
	ErrAddress = errors.New("address: invalid address")

	// ErrMalformed indicates the string is not a well-formed encoding.
	ErrMalformed = fmt.Errorf("%w: malformed encoding", ErrAddress)

	// ErrChecksumMismatch indicates the embedded checksum does not match the payload.
	ErrChecksumMismatch = fmt.Errorf("%w: checksum mismatch", ErrAddress)

	// ErrWrongNetwork indicates the address belongs to a different network.
	ErrWrongNetwork = fmt.Errorf("%w: wrong network", ErrAddress)

	// ErrInvalidPubKey indicates the public key cannot be parsed.
	ErrInvalidPubKey = fmt.Errorf("%w: invalid public key", ErrAddress)

	// ErrUnsupportedChain indicates no codec exists for the chain or scheme.
	ErrUnsupportedChain = fmt.Errorf("%w: unsupported chain", ErrAddress)

	// ErrInvalidNetwork indicates an unknown network name.
	ErrInvalidNetwork = errors.New("address: invalid network name")
)
