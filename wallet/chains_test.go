package wallet

import (
	"context"
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/walletcore-go/address"
	"github.com/bitfsorg/walletcore-go/btc"
	"github.com/bitfsorg/walletcore-go/network"
	"github.com/bitfsorg/walletcore-go/vechain"
)

const (
	keyOneHex     = "0000000000000000000000000000000000000000000000000000000000000001"
	keyOnePubHex  = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	keyOneAddress = "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH"
	keyOneScript  = "76a914751e76e8199196d454941c45d1b3a323f1433bd688ac"
	keyOneVeChain = "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf"
	genesisAddr   = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// ecdsaSigner signs every digest with key one as 64-byte r||s.
func ecdsaSigner(t *testing.T) Signer {
	priv := secp256k1.PrivKeyFromBytes(mustHex(t, keyOneHex))
	return SignerFunc(func(_ context.Context, req SignRequest) ([][]byte, error) {
		out := make([][]byte, len(req.Digests))
		for i, d := range req.Digests {
			sig := ecdsa.Sign(priv, d)
			r, s := sig.R(), sig.S()
			rb, sb := r.Bytes(), s.Bytes()
			out[i] = append(rb[:], sb[:]...)
		}
		return out, nil
	})
}

// recoverableSigner signs with key one as 65-byte r||s||v.
func recoverableSigner(t *testing.T) Signer {
	key, err := crypto.ToECDSA(mustHex(t, keyOneHex))
	require.NoError(t, err)
	return SignerFunc(func(_ context.Context, req SignRequest) ([][]byte, error) {
		out := make([][]byte, len(req.Digests))
		for i, d := range req.Digests {
			sig, err := crypto.Sign(d, key)
			if err != nil {
				return nil, err
			}
			out[i] = sig
		}
		return out, nil
	})
}

func testUTXOs() []*network.UTXO {
	return []*network.UTXO{
		{TxID: strings.Repeat("11", 32), Vout: 0, Amount: 100000, ScriptPubKey: keyOneScript, Confirmations: 6},
		{TxID: strings.Repeat("22", 32), Vout: 1, Amount: 50000, ScriptPubKey: keyOneScript, Confirmations: 0},
	}
}

func newBitcoinChain(t *testing.T, svc network.BitcoinService) *BitcoinChain {
	t.Helper()
	c, err := NewBitcoinChain(svc, mustHex(t, keyOnePubHex), &address.BitcoinMainNet)
	require.NoError(t, err)
	return c
}

func TestBitcoinChain_FetchState(t *testing.T) {
	svc := &network.MockBitcoinService{
		ListUnspentFn: func(_ context.Context, addr string) ([]*network.UTXO, error) {
			assert.Equal(t, keyOneAddress, addr)
			return testUTXOs(), nil
		},
	}
	c := newBitcoinChain(t, svc)
	assert.Equal(t, "bitcoin", c.Name())
	assert.Equal(t, keyOneAddress, c.Address())

	st, err := c.FetchState(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(150000), st.Balance.Int64())
	assert.True(t, st.HasUnconfirmed)
	assert.False(t, st.Tracked)
	assert.Len(t, c.unspents(st), 2)
}

func TestBitcoinChain_FetchStateBadScript(t *testing.T) {
	svc := &network.MockBitcoinService{
		ListUnspentFn: func(context.Context, string) ([]*network.UTXO, error) {
			return []*network.UTXO{{TxID: strings.Repeat("11", 32), Amount: 1, ScriptPubKey: "zz"}}, nil
		},
	}
	_, err := newBitcoinChain(t, svc).FetchState(context.Background(), nil)
	assert.ErrorIs(t, err, network.ErrInvalidResponse)
}

func TestBitcoinChain_EstimateFees(t *testing.T) {
	tests := []struct {
		name     string
		estimate func(context.Context, int) (uint64, error)
		want     []int64
		rates    []uint64
	}{
		{
			name:     "node estimate",
			estimate: func(context.Context, int) (uint64, error) { return 10, nil },
			want:     []int64{1130, 2260, 4520},
			rates:    []uint64{5, 10, 20},
		},
		{
			name: "no estimate falls back to default",
			estimate: func(context.Context, int) (uint64, error) {
				return 0, network.ErrInvalidResponse
			},
			want:  []int64{226, 226, 452},
			rates: []uint64{1, 1, 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &network.MockBitcoinService{
				ListUnspentFn: func(context.Context, string) ([]*network.UTXO, error) {
					return testUTXOs(), nil
				},
				EstimateFeeRateFn: tt.estimate,
			}
			c := newBitcoinChain(t, svc)
			st, err := c.FetchState(context.Background(), nil)
			require.NoError(t, err)

			opts, err := c.EstimateFees(context.Background(), st, Transfer{To: genesisAddr, Amount: big.NewInt(30000)})
			require.NoError(t, err)
			require.Len(t, opts, 3)
			for i, o := range opts {
				assert.Equal(t, tt.want[i], o.Amount.Int64(), o.Tier)
				assert.Equal(t, tt.rates[i], o.RatePerByte, o.Tier)
			}
			assert.Equal(t, "low", opts[0].Tier)
			assert.Equal(t, "high", opts[2].Tier)
		})
	}
}

func TestBitcoinChain_EstimateFeesByDestination(t *testing.T) {
	tests := []struct {
		name string
		to   string
		want []int64
	}{
		{"p2pkh", genesisAddr, []int64{1130, 2260, 4520}},
		{"p2wpkh", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", []int64{1115, 2230, 4460}},
		{"p2tr", "bc1p0xlxvlhemja6c4dqv22uapctqupfhlxm9h8z3k2e72q4k9hcz7vqzk5jj0", []int64{1175, 2350, 4700}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &network.MockBitcoinService{
				ListUnspentFn:     func(context.Context, string) ([]*network.UTXO, error) { return testUTXOs(), nil },
				EstimateFeeRateFn: func(context.Context, int) (uint64, error) { return 10, nil },
			}
			c := newBitcoinChain(t, svc)
			st, err := c.FetchState(context.Background(), nil)
			require.NoError(t, err)

			transfer := Transfer{To: tt.to, Amount: big.NewInt(30000)}
			opts, err := c.EstimateFees(context.Background(), st, transfer)
			require.NoError(t, err)
			require.Len(t, opts, 3)
			for i, o := range opts {
				assert.Equal(t, tt.want[i], o.Amount.Int64(), o.Tier)
			}

			// The quoted fee is what the prepared transaction pays.
			p, err := c.Prepare(st, transfer, opts[1])
			require.NoError(t, err)
			assert.Equal(t, opts[1].Amount.Int64(), p.Fee.Int64())
		})
	}
}

func TestBitcoinWallet_FeesRejectsInvalidDestination(t *testing.T) {
	estimated := false
	svc := &network.MockBitcoinService{
		ListUnspentFn: func(context.Context, string) ([]*network.UTXO, error) { return testUTXOs(), nil },
		EstimateFeeRateFn: func(context.Context, int) (uint64, error) {
			estimated = true
			return 10, nil
		},
	}
	w, err := New(newBitcoinChain(t, svc))
	require.NoError(t, err)

	for _, dest := range []string{"not-an-address", "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"} {
		opts, err := w.Fees(context.Background(), big.NewInt(1000), dest)
		assert.Nil(t, opts, dest)
		assert.ErrorIs(t, err, ErrBuild, dest)
		assert.ErrorIs(t, err, btc.ErrOutputScript, dest)
	}
	assert.False(t, estimated)
}

func TestBitcoinChain_EstimateFeesConnectionError(t *testing.T) {
	svc := &network.MockBitcoinService{
		EstimateFeeRateFn: func(context.Context, int) (uint64, error) { return 0, network.ErrConnectionFailed },
	}
	c := newBitcoinChain(t, svc)
	_, err := c.EstimateFees(context.Background(), &State{}, Transfer{To: genesisAddr, Amount: big.NewInt(1)})
	assert.ErrorIs(t, err, network.ErrConnectionFailed)
}

func TestBitcoinWallet_SendEndToEnd(t *testing.T) {
	var broadcast string
	svc := &network.MockBitcoinService{
		ListUnspentFn: func(context.Context, string) ([]*network.UTXO, error) {
			return testUTXOs(), nil
		},
		EstimateFeeRateFn: func(context.Context, int) (uint64, error) { return 10, nil },
		BroadcastTxFn: func(_ context.Context, rawHex string) (string, error) {
			broadcast = rawHex
			raw, err := hex.DecodeString(rawHex)
			if err != nil {
				return "", err
			}
			return btc.TxID(raw), nil
		},
	}
	w, err := New(newBitcoinChain(t, svc))
	require.NoError(t, err)

	snap, err := w.Update(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Pending, 1)
	assert.True(t, snap.Pending[0].Placeholder)

	opts, err := w.Fees(context.Background(), big.NewInt(30000), genesisAddr)
	require.NoError(t, err)
	medium := opts[1]

	res, err := w.Send(context.Background(), Transfer{To: genesisAddr, Amount: big.NewInt(30000)}, medium, ecdsaSigner(t))
	require.NoError(t, err)
	assert.Equal(t, int64(2260), res.Fee.Int64())
	assert.Equal(t, hex.EncodeToString(res.Raw), broadcast)

	tx, err := btc.ParseTx(res.Raw)
	require.NoError(t, err)
	require.Len(t, tx.Inputs, 1)
	assert.Equal(t, uint32(1), tx.Inputs[0].PrevIndex)
	require.Len(t, tx.Outputs, 2)
	assert.Equal(t, uint64(30000), tx.Outputs[0].Amount)
	assert.Equal(t, uint64(17740), tx.Outputs[1].Amount)
	assert.Equal(t, keyOneScript, hex.EncodeToString(tx.Outputs[1].Script))

	// The sent transaction replaces the placeholder.
	snap = w.Snapshot()
	require.Len(t, snap.Pending, 1)
	assert.Equal(t, res.TxID, snap.Pending[0].TxID)
	assert.False(t, snap.Pending[0].Placeholder)
}

func TestBitcoinWallet_SendInsufficientFunds(t *testing.T) {
	svc := &network.MockBitcoinService{
		ListUnspentFn: func(context.Context, string) ([]*network.UTXO, error) {
			return testUTXOs(), nil
		},
	}
	w, err := New(newBitcoinChain(t, svc))
	require.NoError(t, err)

	_, err = w.Send(context.Background(), Transfer{To: genesisAddr, Amount: big.NewInt(1_000_000)}, FeeOption{RatePerByte: 1}, ecdsaSigner(t))
	assert.ErrorIs(t, err, ErrBuild)
	assert.ErrorIs(t, err, btc.ErrInsufficientFunds)
}

func TestBitcoinChain_FinalizeSignatureCount(t *testing.T) {
	c := newBitcoinChain(t, &network.MockBitcoinService{})
	p := &Prepared{Digests: [][]byte{{1}, {2}}, payload: bitcoinPayload{}}
	_, err := c.Finalize(p, [][]byte{make([]byte, 64)})
	assert.ErrorIs(t, err, ErrSignatureCount)
}

// --- VeChain ---

const bestBlockID = "0x00000010aabbccdd000000000000000000000000000000000000000000000000"

func thorMock(receipts map[string]*network.Receipt) *network.MockThorService {
	return &network.MockThorService{
		GetAccountFn: func(context.Context, string) (*network.Account, error) {
			return &network.Account{
				Balance: big.NewInt(5_000_000),
				Energy:  big.NewInt(42_000),
			}, nil
		},
		GetBestBlockFn: func(context.Context) (*network.Block, error) {
			return &network.Block{Number: 16, ID: bestBlockID}, nil
		},
		GetChainTagFn: func(context.Context) (uint8, error) { return vechain.TestNetChainTag, nil },
		GetReceiptFn: func(_ context.Context, txid string) (*network.Receipt, error) {
			if rc, ok := receipts[txid]; ok {
				return rc, nil
			}
			return nil, network.ErrTxNotFound
		},
	}
}

func newVeChainChain(t *testing.T, svc network.ThorService) *VeChainChain {
	t.Helper()
	c, err := NewVeChainChain(svc, mustHex(t, keyOnePubHex), nil)
	require.NoError(t, err)
	return c
}

func TestVeChainChain_FetchState(t *testing.T) {
	svc := thorMock(map[string]*network.Receipt{
		"0xdone":     {TxID: "0xdone"},
		"0xreverted": {TxID: "0xreverted", Reverted: true},
	})
	tagCalls := 0
	getTag := svc.GetChainTagFn
	svc.GetChainTagFn = func(ctx context.Context) (uint8, error) {
		tagCalls++
		return getTag(ctx)
	}

	c := newVeChainChain(t, svc)
	assert.Equal(t, keyOneVeChain, c.Address())

	pending := []PendingTransaction{{TxID: "0xdone"}, {TxID: "0xwaiting"}, {TxID: "0xreverted"}}
	st, err := c.FetchState(context.Background(), pending)
	require.NoError(t, err)
	assert.True(t, st.Tracked)
	assert.True(t, st.HasUnconfirmed)
	assert.Equal(t, int64(5_000_000), st.Balance.Int64())
	assert.Equal(t, int64(42_000), st.Tokens["VTHO"].Int64())
	require.Len(t, st.Pending, 1)
	assert.Equal(t, "0xwaiting", st.Pending[0].TxID)

	in := st.inputs.(vechainInputs)
	assert.Equal(t, uint8(vechain.TestNetChainTag), in.chainTag)
	assert.Equal(t, uint64(0x00000010aabbccdd), in.blockRef)

	_, err = c.FetchState(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, tagCalls)
}

func TestVeChainChain_EstimateFees(t *testing.T) {
	c := newVeChainChain(t, thorMock(nil))
	opts, err := c.EstimateFees(context.Background(), nil, Transfer{To: keyOneVeChain, Amount: big.NewInt(1)})
	require.NoError(t, err)
	require.Len(t, opts, 3)

	assert.Equal(t, "regular", opts[0].Tier)
	assert.Equal(t, uint64(21000), opts[0].Gas)
	assert.Equal(t, "21000000000000000000", opts[0].Amount.String())
	assert.Equal(t, uint8(255), opts[2].Coefficient)
	assert.Equal(t, "42000000000000000000", opts[2].Amount.String())
}

func TestVeChainChain_PrepareRejectsUnknownCoefficient(t *testing.T) {
	c := newVeChainChain(t, thorMock(nil))
	_, err := c.Prepare(&State{}, Transfer{To: keyOneVeChain, Amount: big.NewInt(1)}, FeeOption{Coefficient: 1})
	assert.ErrorIs(t, err, vechain.ErrBuild)
}

func TestVeChainWallet_SendEndToEnd(t *testing.T) {
	var sent []byte
	svc := thorMock(nil)
	svc.SendRawTxFn = func(_ context.Context, raw []byte) (string, error) {
		sent = raw
		return "0xabc", nil
	}
	w, err := New(newVeChainChain(t, svc))
	require.NoError(t, err)

	opts, err := w.Fees(context.Background(), big.NewInt(1000), keyOneVeChain)
	require.NoError(t, err)

	var digest []byte
	signer := recoverableSigner(t)
	capture := SignerFunc(func(ctx context.Context, req SignRequest) ([][]byte, error) {
		assert.Equal(t, SchemeRecoverable, req.Scheme)
		digest = req.Digests[0]
		return signer.Sign(ctx, req)
	})

	res, err := w.Send(context.Background(), Transfer{To: keyOneVeChain, Amount: big.NewInt(1000)}, opts[1], capture)
	require.NoError(t, err)
	assert.Equal(t, "0xabc", res.TxID)
	assert.Equal(t, sent, res.Raw)

	body, sig, err := vechain.DecodeSigned(res.Raw)
	require.NoError(t, err)
	assert.Equal(t, uint8(vechain.TestNetChainTag), body.ChainTag)
	assert.Equal(t, uint64(0x00000010aabbccdd), body.BlockRef)
	assert.Equal(t, uint8(127), body.GasPriceCoef)
	assert.Equal(t, uint64(21000), body.Gas)

	from, err := vechain.Signer(digest, sig)
	require.NoError(t, err)
	assert.Equal(t, keyOneVeChain, strings.ToLower(from.Hex()))

	snap := w.Snapshot()
	require.Len(t, snap.Pending, 1)
	assert.Equal(t, "0xabc", snap.Pending[0].TxID)
}

func TestVeChainChain_FinalizeSignatureCount(t *testing.T) {
	c := newVeChainChain(t, thorMock(nil))
	_, err := c.Finalize(&Prepared{payload: vechain.Transaction{}}, nil)
	assert.ErrorIs(t, err, ErrSignatureCount)
}
