package wallet

import (
	"math/big"
	"time"
)

// Status is where a wallet is in its refresh cycle.
type Status uint8

const (
	StatusIdle Status = iota
	StatusLoading
	StatusUpdated
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusUpdated:
		return "updated"
	case StatusErrored:
		return "errored"
	}
	return "unknown"
}

// PendingTransaction is an outgoing transaction not yet confirmed.
type PendingTransaction struct {
	TxID   string
	To     string
	Amount *big.Int
	Fee    *big.Int

	// Placeholder marks an entry synthesized from unconfirmed chain
	// activity on chains that do not report individual transactions.
	Placeholder bool
	CreatedAt   time.Time
}

// Snapshot is the observable state of a wallet.
type Snapshot struct {
	Chain   string
	Address string

	// Balance is in the chain's smallest unit: satoshis or wei of VET.
	Balance *big.Int

	// Tokens maps token symbols to balances, e.g. "VTHO" on VeChain.
	Tokens map[string]*big.Int

	Pending   []PendingTransaction
	Status    Status
	UpdatedAt time.Time

	// Error is the message of the last failed update, if Status is
	// StatusErrored.
	Error string
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Balance = cloneInt(s.Balance)
	if s.Tokens != nil {
		out.Tokens = make(map[string]*big.Int, len(s.Tokens))
		for k, v := range s.Tokens {
			out.Tokens[k] = cloneInt(v)
		}
	}
	out.Pending = clonePending(s.Pending)
	return out
}

func clonePending(in []PendingTransaction) []PendingTransaction {
	if in == nil {
		return nil
	}
	out := make([]PendingTransaction, len(in))
	for i, p := range in {
		p.Amount = cloneInt(p.Amount)
		p.Fee = cloneInt(p.Fee)
		out[i] = p
	}
	return out
}

func cloneInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
