package btc

import (
	"errors"
	"fmt"
)

var (
	// ErrBuild is the category of every transaction construction failure.
	ErrBuild = errors.New("btc: transaction build failed")

	// ErrMissingFee indicates the transaction carries no fee.
	ErrMissingFee = fmt.Errorf("%w: fee is required", ErrBuild)

	// ErrMissingAmount indicates the transaction amount is zero.
	ErrMissingAmount = fmt.Errorf("%w: amount is required", ErrBuild)

	// ErrNoUnspents indicates no unspent outputs were supplied.
	ErrNoUnspents = fmt.Errorf("%w: no unspent outputs", ErrBuild)

	// ErrInsufficientFunds indicates the unspents do not cover amount plus fee.
	ErrInsufficientFunds = fmt.Errorf("%w: insufficient funds", ErrBuild)

	// ErrOutputScript indicates an address could not be turned into a locking script.
	ErrOutputScript = fmt.Errorf("%w: cannot build output script", ErrBuild)

	// ErrSignatureLength indicates the signature blob is not 64 bytes per input.
	ErrSignatureLength = fmt.Errorf("%w: signature length mismatch", ErrBuild)

	// ErrInvalidSignature indicates a signature is out of range or does not verify.
	ErrInvalidSignature = fmt.Errorf("%w: invalid signature", ErrBuild)

	// ErrInvalidUnspent indicates an unspent output has a malformed outpoint.
	ErrInvalidUnspent = fmt.Errorf("%w: invalid unspent output", ErrBuild)

	// ErrInvalidTx indicates raw bytes are not a valid transaction encoding.
	ErrInvalidTx = errors.New("btc: invalid transaction encoding")
)
