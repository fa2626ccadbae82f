package vechain

import (
	"errors"
	"fmt"
)

var (
	// ErrBuild is the category of every VeChain transaction construction failure.
	ErrBuild = errors.New("vechain: transaction build failed")

	// ErrMissingFee indicates the transaction carries no fee.
	ErrMissingFee = fmt.Errorf("%w: fee is required", ErrBuild)

	// ErrMissingAmount indicates the transfer amount is nil or not positive.
	ErrMissingAmount = fmt.Errorf("%w: amount is required", ErrBuild)

	// ErrInvalidAddress indicates a recipient or contract address is malformed.
	ErrInvalidAddress = fmt.Errorf("%w: invalid address", ErrBuild)

	// ErrUnsupportedKind indicates a transfer kind with no clause encoding.
	ErrUnsupportedKind = fmt.Errorf("%w: unsupported transfer kind", ErrBuild)

	// ErrSignatureLength indicates the signature is not 65 bytes.
	ErrSignatureLength = fmt.Errorf("%w: signature must be 65 bytes", ErrBuild)

	// ErrEncoding indicates the encoder failed.
	ErrEncoding = errors.New("vechain: encoding failed")
)
