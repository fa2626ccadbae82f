package btc

import (
	"fmt"
	"sort"
)

// Selection is the set of unspents chosen to fund a transfer.
type Selection struct {
	Unspents []UnspentOutput
	Total    uint64 // sum of Unspents
	Fee      uint64
	Change   uint64 // Total - amount - Fee; zero when below DustLimit
}

// SelectUnspents chooses unspents to fund amount at ratePerByte. It tries
// two strategies:
//  1. Single unspent: the smallest one that covers amount plus fee.
//  2. Largest-first accumulation until amount plus fee is covered.
//
// The strategy leaving less change wins. Change below DustLimit is added
// to the fee so that no dust output is created.
func SelectUnspents(unspents []UnspentOutput, amount, ratePerByte uint64) (*Selection, error) {
	return SelectUnspentsTo(unspents, amount, ratePerByte, nil)
}

// SelectUnspentsTo is SelectUnspents with the recipient output sized from
// its locking script rather than as P2PKH.
func SelectUnspentsTo(unspents []UnspentOutput, amount, ratePerByte uint64, recipient []byte) (*Selection, error) {
	if amount == 0 {
		return nil, ErrMissingAmount
	}

	candidates := make([]UnspentOutput, 0, len(unspents))
	for _, u := range unspents {
		if u.Amount > 0 {
			candidates = append(candidates, u)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoUnspents
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Amount < candidates[j].Amount
	})

	// Fees assume a change output; finish folds dust change into the fee.
	fee := func(n int) uint64 {
		return EstimateFee(EstimateSizeTo(n, recipient), ratePerByte)
	}
	target := func(n int) uint64 { return amount + fee(n) }

	var single *Selection
	for _, u := range candidates {
		if u.Amount >= target(1) {
			single = finish([]UnspentOutput{u}, amount, fee(1))
			break
		}
	}

	var accum *Selection
	var picked []UnspentOutput
	var total uint64
	for i := len(candidates) - 1; i >= 0; i-- {
		picked = append(picked, candidates[i])
		total += candidates[i].Amount
		if total >= target(len(picked)) {
			accum = finish(picked, amount, fee(len(picked)))
			break
		}
	}

	switch {
	case single != nil && accum != nil:
		if single.Change <= accum.Change {
			return single, nil
		}
		return accum, nil
	case single != nil:
		return single, nil
	case accum != nil:
		return accum, nil
	}
	return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, SumUnspents(candidates), target(len(candidates)))
}

func finish(picked []UnspentOutput, amount, fee uint64) *Selection {
	total := SumUnspents(picked)
	change := total - amount - fee
	if change < DustLimit {
		fee += change
		change = 0
	}
	return &Selection{
		Unspents: append([]UnspentOutput(nil), picked...),
		Total:    total,
		Fee:      fee,
		Change:   change,
	}
}
