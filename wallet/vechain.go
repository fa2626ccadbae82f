package wallet

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/bitfsorg/walletcore-go/address"
	"github.com/bitfsorg/walletcore-go/log"
	"github.com/bitfsorg/walletcore-go/network"
	"github.com/bitfsorg/walletcore-go/vechain"
)

// VTHOContract is the built-in energy token contract.
const VTHOContract = "0x0000000000000000000000000000456e65726779"

// tokenContracts maps well-known token symbols to their contracts.
var tokenContracts = map[string]string{
	"VTHO": VTHOContract,
}

// VeChainChain drives a VeChain account through a ThorService.
type VeChainChain struct {
	service network.ThorService
	builder *vechain.Builder
	fees    vechain.FeeCalculator
	pubKey  []byte
	address string

	mu       sync.Mutex
	chainTag *uint8
}

var _ Chain = (*VeChainChain)(nil)

// NewVeChainChain returns an adapter for the account of pubKey. A nil
// encoder selects vechain.RLPEncoder.
func NewVeChainChain(service network.ThorService, pubKey []byte, enc vechain.Encoder) (*VeChainChain, error) {
	addr, err := address.DeriveVeChain(pubKey)
	if err != nil {
		return nil, err
	}
	return &VeChainChain{
		service: service,
		builder: vechain.NewBuilder(enc),
		pubKey:  append([]byte(nil), pubKey...),
		address: addr,
	}, nil
}

func (c *VeChainChain) Name() string      { return "vechain" }
func (c *VeChainChain) Address() string   { return c.address }
func (c *VeChainChain) PublicKey() []byte { return append([]byte(nil), c.pubKey...) }

type vechainInputs struct {
	chainTag uint8
	blockRef uint64
}

func (c *VeChainChain) getChainTag(ctx context.Context) (uint8, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chainTag != nil {
		return *c.chainTag, nil
	}
	tag, err := c.service.GetChainTag(ctx)
	if err != nil {
		return 0, err
	}
	c.chainTag = &tag
	return tag, nil
}

// FetchState reads the account balances and keeps the pending
// transactions that have no receipt yet.
func (c *VeChainChain) FetchState(ctx context.Context, pending []PendingTransaction) (*State, error) {
	acc, err := c.service.GetAccount(ctx, c.address)
	if err != nil {
		return nil, err
	}
	best, err := c.service.GetBestBlock(ctx)
	if err != nil {
		return nil, err
	}
	blockRef, err := vechain.BlockRefFromID(best.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", network.ErrInvalidResponse, err)
	}
	tag, err := c.getChainTag(ctx)
	if err != nil {
		return nil, err
	}

	st := &State{
		Balance: new(big.Int).Set(acc.Balance),
		Tokens:  map[string]*big.Int{"VTHO": new(big.Int).Set(acc.Energy)},
		Tracked: true,
		Pending: []PendingTransaction{},
		inputs:  vechainInputs{chainTag: tag, blockRef: blockRef},
	}
	for _, p := range pending {
		rc, err := c.service.GetReceipt(ctx, p.TxID)
		switch {
		case errors.Is(err, network.ErrTxNotFound):
			st.Pending = append(st.Pending, p)
		case err != nil:
			return nil, err
		case rc.Reverted:
			log.VeChain.Warn().Str("txid", p.TxID).Uint64("block", rc.BlockNumber).Msg("transaction reverted")
		}
	}
	st.HasUnconfirmed = len(st.Pending) > 0
	return st, nil
}

// clauseFor maps a transfer to a builder kind and token contract.
func clauseFor(t Transfer) (vechain.Kind, string) {
	if t.Token == "" {
		return vechain.KindCoin, ""
	}
	if contract, ok := tokenContracts[strings.ToUpper(t.Token)]; ok {
		return vechain.KindToken, contract
	}
	return vechain.KindToken, t.Token
}

// EstimateFees prices t at each priority tier. Amounts are in wei of VTHO.
func (c *VeChainChain) EstimateFees(_ context.Context, _ *State, t Transfer) ([]FeeOption, error) {
	kind, token := clauseFor(t)
	clause, err := vechain.BuildClause(kind, t.To, t.Amount, token)
	if err != nil {
		return nil, err
	}
	tiers := c.fees.Tiers([]vechain.Clause{clause}, 0)
	out := make([]FeeOption, 0, len(tiers))
	for _, f := range tiers {
		out = append(out, FeeOption{
			Tier:        f.Priority.String(),
			Amount:      f.Wei(),
			Gas:         f.Gas,
			Coefficient: f.Coefficient(),
		})
	}
	return out, nil
}

func randomNonce() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

// Prepare builds the transaction body against the block reference read by
// FetchState and returns its signing hash.
func (c *VeChainChain) Prepare(state *State, t Transfer, fee FeeOption) (*Prepared, error) {
	var in vechainInputs
	if state != nil {
		in, _ = state.inputs.(vechainInputs)
	}
	priority, ok := vechain.PriorityFromCoefficient(fee.Coefficient)
	if !ok {
		return nil, fmt.Errorf("%w: coefficient %d", vechain.ErrMissingFee, fee.Coefficient)
	}
	nonce, err := randomNonce()
	if err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", vechain.ErrBuild, err)
	}

	kind, token := clauseFor(t)
	tx := vechain.Transaction{
		Kind:     kind,
		Amount:   t.Amount,
		Fee:      &vechain.Fee{Priority: priority, Gas: fee.Gas},
		From:     c.address,
		To:       t.To,
		Token:    token,
		ChainTag: in.chainTag,
		BlockRef: in.blockRef,
		Nonce:    nonce,
	}
	hash, err := c.builder.BuildForSign(tx)
	if err != nil {
		return nil, err
	}
	return &Prepared{
		Digests: [][]byte{hash},
		Scheme:  SchemeRecoverable,
		Fee:     cloneInt(fee.Amount),
		payload: tx,
	}, nil
}

// Finalize attaches the single recoverable signature.
func (c *VeChainChain) Finalize(p *Prepared, signatures [][]byte) ([]byte, error) {
	tx, ok := p.payload.(vechain.Transaction)
	if !ok {
		return nil, fmt.Errorf("%w: not a vechain transaction", vechain.ErrEncoding)
	}
	if len(signatures) != 1 {
		return nil, fmt.Errorf("%w: want 1, got %d", ErrSignatureCount, len(signatures))
	}
	return c.builder.BuildForSend(tx, signatures[0])
}

// Submit posts raw to the Thor node.
func (c *VeChainChain) Submit(ctx context.Context, raw []byte) (string, error) {
	return c.service.SendRawTx(ctx, raw)
}
