package wallet

import (
	"context"
	"math/big"
)

// Transfer is a user's request to move value.
type Transfer struct {
	To     string
	Amount *big.Int

	// Token selects a token transfer on chains that support them; empty
	// means the native coin.
	Token string
}

// FeeOption is one priced tier for a transfer.
type FeeOption struct {
	Tier string

	// Amount is the total fee in the fee currency's smallest unit:
	// satoshis on Bitcoin, wei of VTHO on VeChain.
	Amount *big.Int

	RatePerByte uint64 // Bitcoin
	Gas         uint64 // VeChain
	Coefficient uint8  // VeChain
}

// State is what a chain reports about the wallet's account.
type State struct {
	Balance *big.Int
	Tokens  map[string]*big.Int

	// Tracked reports whether Pending is authoritative. Chains that cannot
	// report individual transactions leave it false and set
	// HasUnconfirmed instead.
	Tracked        bool
	Pending        []PendingTransaction
	HasUnconfirmed bool

	// inputs holds the adapter's spendable inputs, e.g. unspent outputs.
	inputs any
}

// SignatureScheme tells the signer what signature layout to produce.
type SignatureScheme uint8

const (
	// SchemeECDSA asks for 64-byte r||s signatures.
	SchemeECDSA SignatureScheme = iota

	// SchemeRecoverable asks for 65-byte r||s||v signatures, v in {0,1}.
	SchemeRecoverable
)

func (s SignatureScheme) String() string {
	switch s {
	case SchemeECDSA:
		return "ecdsa"
	case SchemeRecoverable:
		return "ecdsa-recoverable"
	}
	return "unknown"
}

// Prepared is a transaction awaiting signatures.
type Prepared struct {
	Digests [][]byte
	Scheme  SignatureScheme
	Fee     *big.Int

	payload any
}

// Chain is the set of chain-specific capabilities the wallet drives.
// Prepare and Finalize are pure; FetchState, EstimateFees and Submit talk
// to the network.
type Chain interface {
	Name() string
	Address() string
	PublicKey() []byte

	// FetchState reads balances and, for chains that track transactions,
	// which of pending are still unconfirmed.
	FetchState(ctx context.Context, pending []PendingTransaction) (*State, error)

	EstimateFees(ctx context.Context, state *State, t Transfer) ([]FeeOption, error)
	Prepare(state *State, t Transfer, fee FeeOption) (*Prepared, error)
	Finalize(p *Prepared, signatures [][]byte) ([]byte, error)

	// Submit broadcasts raw and returns the transaction ID.
	Submit(ctx context.Context, raw []byte) (string, error)
}

// SignRequest asks a signer to sign digests with the key at Path.
type SignRequest struct {
	Digests   [][]byte
	PublicKey []byte
	Path      string
	Scheme    SignatureScheme
}

// Signer produces one signature per digest. It returns
// ErrSignerCancelled if the user declines.
type Signer interface {
	Sign(ctx context.Context, req SignRequest) ([][]byte, error)
}

// SignerFunc adapts a function to Signer.
type SignerFunc func(ctx context.Context, req SignRequest) ([][]byte, error)

func (f SignerFunc) Sign(ctx context.Context, req SignRequest) ([][]byte, error) {
	return f(ctx, req)
}
