package resolve

import "errors"

var (
	// ErrInvalidHandle indicates the handle is not of the form user@domain.
	ErrInvalidHandle = errors.New("resolve: invalid payment handle")

	// ErrLookupFailed indicates the DNS query failed or returned no records.
	ErrLookupFailed = errors.New("resolve: DNS lookup failed")

	// ErrDNSSECValidationFailed indicates the response was not DNSSEC-validated
	// (the AD flag was not set by the upstream resolver).
	ErrDNSSECValidationFailed = errors.New("resolve: DNSSEC validation failed")

	// ErrNoInstructions indicates no bitcoin: TXT record exists for the handle.
	ErrNoInstructions = errors.New("resolve: no payment instructions")

	// ErrAmbiguous indicates more than one bitcoin: TXT record exists.
	ErrAmbiguous = errors.New("resolve: multiple payment instructions")

	// ErrInvalidURI indicates a malformed bitcoin: URI.
	ErrInvalidURI = errors.New("resolve: invalid bitcoin URI")

	// ErrNoAddress indicates the instructions carry no on-chain address for
	// the network.
	ErrNoAddress = errors.New("resolve: no on-chain address")
)
