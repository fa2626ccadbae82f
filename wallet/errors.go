package wallet

import "errors"

var (
	// ErrNetwork marks failures talking to the chain: fetching state or
	// submitting a transaction.
	ErrNetwork = errors.New("wallet: network failure")

	// ErrBuild marks failures assembling a transaction from wallet state.
	ErrBuild = errors.New("wallet: transaction build failed")

	// ErrSigner marks failures reported by the external signer.
	ErrSigner = errors.New("wallet: signer failure")

	// ErrSignerCancelled is returned by a Signer when the user declines to
	// sign. Send treats it as a no-op rather than a failure.
	ErrSignerCancelled = errors.New("wallet: signing cancelled")

	// ErrSnapshotNotFound indicates the store holds no snapshot for the key.
	ErrSnapshotNotFound = errors.New("wallet: snapshot not found")

	// ErrInvalidDestination indicates the destination is neither a valid
	// address nor a resolvable payment handle.
	ErrInvalidDestination = errors.New("wallet: invalid destination")

	// ErrSignatureCount indicates the signer returned the wrong number of
	// signatures.
	ErrSignatureCount = errors.New("wallet: signature count mismatch")
)
