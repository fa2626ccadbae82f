// Package wallet orchestrates a single-chain account: it refreshes balance
// and pending transactions from the chain, prices transfers, and drives a
// transfer through preparation, external signing, finalization and
// submission.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/bitfsorg/walletcore-go/log"
	"github.com/bitfsorg/walletcore-go/network"
)

// Resolver turns a human-readable payment handle such as user@domain into
// an on-chain address.
type Resolver interface {
	Resolve(ctx context.Context, handle string) (string, error)
}

// Option configures a Wallet.
type Option func(*Wallet)

// WithStore persists snapshots in s.
func WithStore(s Store) Option { return func(w *Wallet) { w.store = s } }

// WithResolver enables user@domain destinations.
func WithResolver(r Resolver) Option { return func(w *Wallet) { w.resolver = r } }

// WithMetrics records update and send outcomes in m.
func WithMetrics(m *Metrics) Option { return func(w *Wallet) { w.metrics = m } }

// WithDerivationPath sets the key path passed to the signer.
func WithDerivationPath(path string) Option { return func(w *Wallet) { w.path = path } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(w *Wallet) { w.now = now } }

// Wallet tracks one account on one chain. It is safe for concurrent use.
type Wallet struct {
	chain    Chain
	store    Store
	resolver Resolver
	metrics  *Metrics
	path     string
	now      func() time.Time
	logger   zerolog.Logger

	// generation identifies the most recent Update call.
	generation atomic.Uint64

	mu       sync.Mutex
	snapshot Snapshot
	state    *State
}

// SendResult is the outcome of Send. A cancelled signing yields a result
// with Cancelled set and no error.
type SendResult struct {
	TxID      string
	Raw       []byte
	Fee       *big.Int
	Cancelled bool
}

// New returns a wallet for chain. If a store is configured, the last saved
// snapshot for the account is restored.
func New(chain Chain, opts ...Option) (*Wallet, error) {
	w := &Wallet{
		chain:  chain,
		now:    time.Now,
		logger: log.Wallet.With().Str("chain", chain.Name()).Str("address", chain.Address()).Logger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.snapshot = Snapshot{
		Chain:   chain.Name(),
		Address: chain.Address(),
		Balance: new(big.Int),
		Status:  StatusIdle,
	}

	if w.store != nil {
		saved, err := w.store.Load(w.key())
		switch {
		case errors.Is(err, ErrSnapshotNotFound):
		case err != nil:
			return nil, err
		default:
			w.snapshot = *saved
			if w.snapshot.Status == StatusLoading {
				w.snapshot.Status = StatusIdle
			}
			w.logger.Debug().Int("pending", len(saved.Pending)).Msg("restored snapshot")
		}
	}
	return w, nil
}

func (w *Wallet) key() string {
	return w.chain.Name() + ":" + w.chain.Address()
}

// Snapshot returns a copy of the current state.
func (w *Wallet) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot.Clone()
}

// Update fetches the account state from the chain. A newer Update
// supersedes an older one still in flight: the older result is still
// applied to balance and pending transactions, but only the newest call
// moves Status to Updated or Errored.
func (w *Wallet) Update(ctx context.Context) (Snapshot, error) {
	gen := w.generation.Add(1)

	w.mu.Lock()
	w.snapshot.Status = StatusLoading
	asked := clonePending(w.snapshot.Pending)
	w.mu.Unlock()

	st, err := w.chain.FetchState(ctx, asked)

	w.mu.Lock()
	defer w.mu.Unlock()
	current := w.generation.Load() == gen

	if err != nil {
		if current {
			w.snapshot.Status = StatusErrored
			w.snapshot.Error = err.Error()
		}
		w.metrics.recordUpdate(w.chain.Name(), OutcomeError)
		w.logger.Warn().Err(err).Uint64("generation", gen).Msg("update failed")
		return w.snapshot.Clone(), fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	w.apply(st, asked)
	w.state = st
	if current {
		w.snapshot.Status = StatusUpdated
		w.snapshot.UpdatedAt = w.now()
		w.snapshot.Error = ""
		w.metrics.recordUpdate(w.chain.Name(), OutcomeSuccess)
	} else {
		w.metrics.recordUpdate(w.chain.Name(), OutcomeSuperseded)
		w.logger.Debug().Uint64("generation", gen).Msg("update superseded")
	}
	w.metrics.setPending(w.chain.Name(), len(w.snapshot.Pending))
	w.persist()

	w.logger.Info().
		Str("balance", w.snapshot.Balance.String()).
		Int("pending", len(w.snapshot.Pending)).
		Str("status", w.snapshot.Status.String()).
		Msg("wallet updated")
	return w.snapshot.Clone(), nil
}

// apply merges fetched state into the snapshot. asked is the pending list
// the fetch was made with; entries appended since then are kept.
// Callers hold w.mu.
func (w *Wallet) apply(st *State, asked []PendingTransaction) {
	w.snapshot.Balance = cloneInt(st.Balance)
	if w.snapshot.Balance == nil {
		w.snapshot.Balance = new(big.Int)
	}
	w.snapshot.Tokens = nil
	if st.Tokens != nil {
		w.snapshot.Tokens = make(map[string]*big.Int, len(st.Tokens))
		for k, v := range st.Tokens {
			w.snapshot.Tokens[k] = cloneInt(v)
		}
	}

	if st.Tracked {
		wasAsked := make(map[string]bool, len(asked))
		for _, p := range asked {
			wasAsked[p.TxID] = true
		}
		stillPending := make(map[string]bool, len(st.Pending))
		for _, p := range st.Pending {
			stillPending[p.TxID] = true
		}
		var next []PendingTransaction
		for _, p := range w.snapshot.Pending {
			if !wasAsked[p.TxID] || stillPending[p.TxID] {
				next = append(next, p)
			}
		}
		w.snapshot.Pending = next
		return
	}

	switch {
	case !st.HasUnconfirmed:
		w.snapshot.Pending = nil
	case len(w.snapshot.Pending) == 0:
		w.snapshot.Pending = []PendingTransaction{{Placeholder: true, CreatedAt: w.now()}}
	}
}

// persist saves the snapshot, logging failures. Callers hold w.mu.
func (w *Wallet) persist() {
	if w.store == nil {
		return
	}
	snap := w.snapshot.Clone()
	if err := w.store.Save(w.key(), &snap); err != nil {
		w.logger.Error().Err(err).Msg("save snapshot")
	}
}

// currentState returns the state of the last Update, fetching it if
// there is none.
func (w *Wallet) currentState(ctx context.Context) (*State, error) {
	w.mu.Lock()
	st := w.state
	w.mu.Unlock()
	if st != nil {
		return st, nil
	}
	if _, err := w.Update(ctx); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state, nil
}

// resolveDestination returns dest, or the address a handle resolves to.
func (w *Wallet) resolveDestination(ctx context.Context, dest string) (string, error) {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidDestination)
	}
	if !strings.Contains(dest, "@") {
		return dest, nil
	}
	if w.resolver == nil {
		return "", fmt.Errorf("%w: %s: no resolver configured", ErrInvalidDestination, dest)
	}
	addr, err := w.resolver.Resolve(ctx, dest)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidDestination, dest, err)
	}
	w.logger.Debug().Str("handle", dest).Str("address", addr).Msg("resolved destination")
	return addr, nil
}

func isNetworkError(err error) bool {
	for _, target := range []error{
		network.ErrConnectionFailed,
		network.ErrAuthFailed,
		network.ErrTxNotFound,
		network.ErrBroadcastRejected,
		network.ErrInvalidResponse,
		context.Canceled,
		context.DeadlineExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Fees prices sending amount of the native coin to destination, one
// option per tier, cheapest first.
func (w *Wallet) Fees(ctx context.Context, amount *big.Int, destination string) ([]FeeOption, error) {
	return w.FeesFor(ctx, Transfer{To: destination, Amount: amount})
}

// FeesFor prices t, one option per tier, cheapest first.
func (w *Wallet) FeesFor(ctx context.Context, t Transfer) ([]FeeOption, error) {
	to, err := w.resolveDestination(ctx, t.To)
	if err != nil {
		return nil, err
	}
	t.To = to

	st, err := w.currentState(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := w.chain.EstimateFees(ctx, st, t)
	if err != nil {
		if isNetworkError(err) {
			return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}
	return opts, nil
}

// Send prepares t at fee, has signer sign it, then finalizes and submits
// the transaction. On success the transaction is appended to the pending
// list. Send never retries; on any failure nothing is appended.
func (w *Wallet) Send(ctx context.Context, t Transfer, fee FeeOption, signer Signer) (*SendResult, error) {
	name := w.chain.Name()
	fail := func(category, err error) (*SendResult, error) {
		w.metrics.recordSend(name, OutcomeError)
		w.logger.Warn().Err(err).Msg("send failed")
		return nil, fmt.Errorf("%w: %w", category, err)
	}

	to, err := w.resolveDestination(ctx, t.To)
	if err != nil {
		w.metrics.recordSend(name, OutcomeError)
		return nil, err
	}
	t.To = to

	st, err := w.currentState(ctx)
	if err != nil {
		w.metrics.recordSend(name, OutcomeError)
		return nil, err
	}

	prepared, err := w.chain.Prepare(st, t, fee)
	if err != nil {
		return fail(ErrBuild, err)
	}

	sigs, err := signer.Sign(ctx, SignRequest{
		Digests:   prepared.Digests,
		PublicKey: w.chain.PublicKey(),
		Path:      w.path,
		Scheme:    prepared.Scheme,
	})
	if errors.Is(err, ErrSignerCancelled) {
		w.metrics.recordSend(name, OutcomeCancelled)
		w.logger.Info().Msg("signing cancelled")
		return &SendResult{Cancelled: true}, nil
	}
	if err != nil {
		return fail(ErrSigner, err)
	}

	raw, err := w.chain.Finalize(prepared, sigs)
	if err != nil {
		return fail(ErrBuild, err)
	}

	txid, err := w.chain.Submit(ctx, raw)
	if err != nil {
		return fail(ErrNetwork, err)
	}

	w.mu.Lock()
	pending := w.snapshot.Pending[:0:0]
	for _, p := range w.snapshot.Pending {
		if !p.Placeholder {
			pending = append(pending, p)
		}
	}
	w.snapshot.Pending = append(pending, PendingTransaction{
		TxID:      txid,
		To:        t.To,
		Amount:    cloneInt(t.Amount),
		Fee:       cloneInt(prepared.Fee),
		CreatedAt: w.now(),
	})
	// Inputs spent by this transaction must not be offered again.
	w.state = nil
	w.metrics.setPending(name, len(w.snapshot.Pending))
	w.persist()
	w.mu.Unlock()

	w.metrics.recordSend(name, OutcomeSuccess)
	w.logger.Info().Str("txid", txid).Str("to", t.To).Str("fee", prepared.Fee.String()).Msg("transaction sent")
	return &SendResult{TxID: txid, Raw: raw, Fee: cloneInt(prepared.Fee)}, nil
}
