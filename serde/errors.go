package serde

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompleteData indicates the input ended before the value was complete.
	ErrIncompleteData = errors.New("serde: incomplete data")

	// ErrRedundant indicates bytes were left over after a full decode.
	ErrRedundant = errors.New("serde: redundant data")

	// ErrWrongFormat indicates the bytes do not follow the expected layout.
	ErrWrongFormat = errors.New("serde: wrong format")

	// ErrValidation indicates a structurally valid value failed a semantic check.
	ErrValidation = errors.New("serde: validation failed")

	// ErrOther indicates any other encoding or decoding failure.
	ErrOther = errors.New("serde: encoding failure")
)

// DecodeError describes a failed encode or decode. Kind is one of the
// package sentinels, so callers can match with errors.Is(err, ErrWrongFormat).
// Expected and Got carry byte counts for incomplete and redundant data.
type DecodeError struct {
	Kind     error
	Expected int
	Got      int
	Msg      string
	Err      error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Kind == ErrIncompleteData:
		return fmt.Sprintf("%v: expected %d bytes, got %d", e.Kind, e.Expected, e.Got)
	case e.Kind == ErrRedundant:
		return fmt.Sprintf("%v: %d trailing bytes", e.Kind, e.Got)
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
	}
	return e.Kind.Error()
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func incomplete(expected, got int) error {
	return &DecodeError{Kind: ErrIncompleteData, Expected: expected, Got: got}
}

func redundant(got int) error {
	return &DecodeError{Kind: ErrRedundant, Got: got}
}

func wrongFormat(format string, args ...any) error {
	return &DecodeError{Kind: ErrWrongFormat, Msg: fmt.Sprintf(format, args...)}
}

func validation(msg string, err error) error {
	return &DecodeError{Kind: ErrValidation, Msg: msg, Err: err}
}

// Validation wraps err as a validation failure. Mapping functions passed
// to Xfmap may return it directly to control the message.
func Validation(msg string) error {
	return validation(msg, nil)
}
