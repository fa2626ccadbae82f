package wallet

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/bitfsorg/walletcore-go/address"
	"github.com/bitfsorg/walletcore-go/btc"
	"github.com/bitfsorg/walletcore-go/log"
	"github.com/bitfsorg/walletcore-go/network"
)

// DefaultConfirmationTarget is the block target used for fee estimates.
const DefaultConfirmationTarget = 6

// BitcoinChain drives a P2PKH Bitcoin account through a BitcoinService.
type BitcoinChain struct {
	service network.BitcoinService
	builder *btc.Builder
	target  int
}

var _ Chain = (*BitcoinChain)(nil)

// NewBitcoinChain returns an adapter spending the P2PKH outputs of pubKey.
func NewBitcoinChain(service network.BitcoinService, pubKey []byte, params *address.Params) (*BitcoinChain, error) {
	b, err := btc.NewBuilder(pubKey, params)
	if err != nil {
		return nil, err
	}
	return &BitcoinChain{service: service, builder: b, target: DefaultConfirmationTarget}, nil
}

func (c *BitcoinChain) Name() string      { return "bitcoin" }
func (c *BitcoinChain) Address() string   { return c.builder.Address() }
func (c *BitcoinChain) PublicKey() []byte { return c.builder.PublicKey() }

// FetchState lists the address's unspent outputs. Bitcoin reports no
// per-transaction detail, so pending is ignored and unconfirmed outputs
// only raise HasUnconfirmed.
func (c *BitcoinChain) FetchState(ctx context.Context, _ []PendingTransaction) (*State, error) {
	utxos, err := c.service.ListUnspent(ctx, c.Address())
	if err != nil {
		return nil, err
	}

	unspents := make([]btc.UnspentOutput, 0, len(utxos))
	st := &State{Balance: new(big.Int)}
	for _, u := range utxos {
		script, err := hex.DecodeString(u.ScriptPubKey)
		if err != nil {
			return nil, fmt.Errorf("%w: script of %s:%d: %v", network.ErrInvalidResponse, u.TxID, u.Vout, err)
		}
		unspents = append(unspents, btc.UnspentOutput{
			TxHash: u.TxID,
			Index:  u.Vout,
			Amount: u.Amount,
			Script: script,
		})
		st.Balance.Add(st.Balance, new(big.Int).SetUint64(u.Amount))
		if u.Confirmations == 0 {
			st.HasUnconfirmed = true
		}
	}
	st.inputs = unspents
	return st, nil
}

func (c *BitcoinChain) unspents(state *State) []btc.UnspentOutput {
	if state == nil {
		return nil
	}
	u, _ := state.inputs.([]btc.UnspentOutput)
	return u
}

func satoshis(v *big.Int) (uint64, error) {
	if v == nil || v.Sign() <= 0 {
		return 0, btc.ErrMissingAmount
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("%w: amount %s exceeds 64 bits", btc.ErrBuild, v)
	}
	return v.Uint64(), nil
}

// EstimateFees prices t at low, medium and high rates around the node's
// estimate, sizing the recipient output from t.To's locking script. A node
// without enough data for an estimate falls back to btc.DefaultFeeRate.
func (c *BitcoinChain) EstimateFees(ctx context.Context, state *State, t Transfer) ([]FeeOption, error) {
	amount, err := satoshis(t.Amount)
	if err != nil {
		return nil, err
	}
	recipient, err := btc.OutputScript(t.To, c.builder.Params())
	if err != nil {
		return nil, err
	}
	rate, err := c.service.EstimateFeeRate(ctx, c.target)
	if err != nil {
		if !errors.Is(err, network.ErrInvalidResponse) {
			return nil, err
		}
		log.Bitcoin.Warn().Err(err).Uint64("rate", btc.DefaultFeeRate).Msg("fee estimate unavailable, using default rate")
		rate = btc.DefaultFeeRate
	}

	calc := btc.FeeCalculator{Rates: btc.RatesFromEstimate(rate), Recipient: recipient}
	tiers, err := calc.Calculate(amount, c.unspents(state))
	if err != nil {
		return nil, err
	}
	option := func(tier string, f btc.Fee) FeeOption {
		return FeeOption{Tier: tier, Amount: new(big.Int).SetUint64(f.Amount), RatePerByte: f.RatePerByte}
	}
	return []FeeOption{
		option("low", tiers.Low),
		option("medium", tiers.Medium),
		option("high", tiers.High),
	}, nil
}

type bitcoinPayload struct {
	tx       btc.Transaction
	unspents []btc.UnspentOutput
}

// Prepare selects unspents at the fee option's rate and returns one
// digest per selected input.
func (c *BitcoinChain) Prepare(state *State, t Transfer, fee FeeOption) (*Prepared, error) {
	amount, err := satoshis(t.Amount)
	if err != nil {
		return nil, err
	}
	recipient, err := btc.OutputScript(t.To, c.builder.Params())
	if err != nil {
		return nil, err
	}
	sel, err := btc.SelectUnspentsTo(c.unspents(state), amount, fee.RatePerByte, recipient)
	if err != nil {
		return nil, err
	}
	tx := btc.Transaction{
		Amount: amount,
		Fee:    &btc.Fee{Amount: sel.Fee, RatePerByte: fee.RatePerByte},
		To:     t.To,
	}
	digests, err := c.builder.BuildForSign(tx, sel.Unspents)
	if err != nil {
		return nil, err
	}
	return &Prepared{
		Digests: digests,
		Scheme:  SchemeECDSA,
		Fee:     new(big.Int).SetUint64(sel.Fee),
		payload: bitcoinPayload{tx: tx, unspents: sel.Unspents},
	}, nil
}

// Finalize joins the r||s signatures in input order and builds the wire
// transaction.
func (c *BitcoinChain) Finalize(p *Prepared, signatures [][]byte) ([]byte, error) {
	payload, ok := p.payload.(bitcoinPayload)
	if !ok {
		return nil, fmt.Errorf("%w: not a bitcoin transaction", btc.ErrInvalidTx)
	}
	if len(signatures) != len(p.Digests) {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrSignatureCount, len(p.Digests), len(signatures))
	}
	joined := make([]byte, 0, btc.SignatureLen*len(signatures))
	for _, s := range signatures {
		joined = append(joined, s...)
	}
	return c.builder.BuildForSend(payload.tx, payload.unspents, joined)
}

// Submit broadcasts raw through the node.
func (c *BitcoinChain) Submit(ctx context.Context, raw []byte) (string, error) {
	return c.service.BroadcastTx(ctx, hex.EncodeToString(raw))
}
