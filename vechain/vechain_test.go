package vechain

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/walletcore-go/log"
)

const (
	// Address of private key 1.
	keyOneAddr = "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf"
	vthoToken  = "0x0000000000000000000000000000456e65726779"
)

func oneVET() *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// --- Fees ---

func TestIntrinsicGas(t *testing.T) {
	t.Run("coin transfer", func(t *testing.T) {
		c, err := BuildClause(KindCoin, keyOneAddr, oneVET(), "")
		require.NoError(t, err)
		assert.Equal(t, uint64(21000), IntrinsicGas([]Clause{c}))
	})

	t.Run("zero bytes only", func(t *testing.T) {
		for _, m := range []int{1, 32, 100} {
			c := Clause{Value: new(big.Int), Data: make([]byte, m)}
			assert.Equal(t, uint64(21000+4*m), IntrinsicGas([]Clause{c}), "m=%d", m)
		}
	})

	t.Run("first non-zero byte adds surcharge", func(t *testing.T) {
		data := make([]byte, 10)
		base := IntrinsicGas([]Clause{{Value: new(big.Int), Data: data}})
		data[3] = 1
		got := IntrinsicGas([]Clause{{Value: new(big.Int), Data: data}})
		assert.Equal(t, base-ZeroByteGas+NonZeroByteGas+DataSurcharge, got)
	})

	t.Run("surcharge once across clauses", func(t *testing.T) {
		clauses := []Clause{
			{Value: new(big.Int), Data: []byte{1}},
			{Value: new(big.Int), Data: []byte{2, 0}},
		}
		want := TxGas + 2*ClauseGas + 2*NonZeroByteGas + ZeroByteGas + DataSurcharge
		assert.Equal(t, want, IntrinsicGas(clauses))
	})

	t.Run("no clauses", func(t *testing.T) {
		assert.Equal(t, TxGas, IntrinsicGas(nil))
	})
}

func TestTokenClauseGas(t *testing.T) {
	c, err := BuildClause(KindToken, keyOneAddr, big.NewInt(1000), vthoToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(37936), IntrinsicGas([]Clause{c}))
}

func TestPriorityCoefficients(t *testing.T) {
	for _, p := range Priorities {
		got, ok := PriorityFromCoefficient(p.Coefficient())
		assert.True(t, ok, p.String())
		assert.Equal(t, p, got)
	}
	assert.Equal(t, uint8(0), PriorityRegular.Coefficient())
	assert.Equal(t, uint8(127), PriorityMedium.Coefficient())
	assert.Equal(t, uint8(255), PriorityHigh.Coefficient())
}

func TestPriorityFromCoefficient_Unexpected(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf, "debug")
	defer log.Init("info", false)

	for _, coef := range []uint8{1, 64, 128, 254} {
		_, ok := PriorityFromCoefficient(coef)
		assert.False(t, ok, "coef=%d", coef)
	}
	assert.Equal(t, 4, strings.Count(buf.String(), "unexpected coefficient"))
	assert.Contains(t, buf.String(), `"component":"vechain"`)
}

func TestGasPriceMultiplier(t *testing.T) {
	assert.True(t, GasPriceMultiplier(0).Equal(decimal.NewFromInt(1)))
	assert.True(t, GasPriceMultiplier(255).Equal(decimal.NewFromInt(2)))
	m := GasPriceMultiplier(127)
	assert.True(t, m.GreaterThan(decimal.NewFromInt(1)))
	assert.True(t, m.LessThan(decimal.NewFromFloat(1.5)))
}

func TestFeeCalculator_Tiers(t *testing.T) {
	c, err := BuildClause(KindCoin, keyOneAddr, oneVET(), "")
	require.NoError(t, err)

	tiers := FeeCalculator{}.Tiers([]Clause{c}, 0)
	require.Len(t, tiers, 3)

	assert.Equal(t, PriorityRegular, tiers[0].Priority)
	assert.Equal(t, uint64(21000), tiers[0].Gas)
	assert.True(t, tiers[0].Amount.Equal(decimal.NewFromInt(21)), tiers[0].Amount.String())
	assert.True(t, tiers[2].Amount.Equal(decimal.NewFromInt(42)), tiers[2].Amount.String())
	assert.True(t, tiers[1].Amount.GreaterThan(tiers[0].Amount))
	assert.True(t, tiers[1].Amount.LessThan(tiers[2].Amount))

	// 21000 * 10^15 * 2
	want, _ := new(big.Int).SetString("42000000000000000000", 10)
	assert.Equal(t, 0, tiers[2].Wei().Cmp(want))
	want, _ = new(big.Int).SetString("21000000000000000000", 10)
	assert.Equal(t, 0, tiers[0].Wei().Cmp(want))

	// 21000 * 10^15 * 382 / 255, rounded down to the wei.
	assert.Equal(t, "31.458823529411764705", tiers[1].Amount.String())
	for _, f := range tiers {
		assert.Equal(t, 0, f.Amount.Shift(18).BigInt().Cmp(f.Wei()), f.Priority.String())
	}
}

func TestFeeAmountMatchesWei(t *testing.T) {
	for _, gas := range []uint64{21000, 36518, 1} {
		for _, coef := range []uint8{0, 1, 127, 200, 255} {
			f := Fee{Gas: gas, Amount: FeeAmount(gas, coef)}
			wei := feeWei(gas, coef)
			assert.Equal(t, 0, f.Amount.Shift(18).BigInt().Cmp(wei), "gas %d coef %d", gas, coef)
		}
	}
}

func TestFeeCalculator_ExtraGas(t *testing.T) {
	fee := FeeCalculator{}.Calculate(nil, 1000, PriorityRegular)
	assert.Equal(t, TxGas+1000, fee.Gas)
	assert.Equal(t, uint64(1000), fee.ExtraGas)
	assert.True(t, fee.Amount.Equal(decimal.NewFromInt(6)))
}

// --- Clauses ---

func TestBuildClause(t *testing.T) {
	t.Run("coin", func(t *testing.T) {
		c, err := BuildClause(KindCoin, keyOneAddr, oneVET(), "")
		require.NoError(t, err)
		require.NotNil(t, c.To)
		assert.Equal(t, common.HexToAddress(keyOneAddr), *c.To)
		assert.Equal(t, 0, c.Value.Cmp(oneVET()))
		assert.Empty(t, c.Data)
	})

	t.Run("token", func(t *testing.T) {
		c, err := BuildClause(KindToken, keyOneAddr, big.NewInt(1000), vthoToken)
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress(vthoToken), *c.To)
		assert.Equal(t, 0, c.Value.Sign())
		want := "a9059cbb" +
			"0000000000000000000000007e5f4552091a69125d5dfcb7b8c2659029395bdf" +
			"00000000000000000000000000000000000000000000000000000000000003e8"
		assert.Equal(t, want, hex.EncodeToString(c.Data))
	})

	t.Run("errors", func(t *testing.T) {
		_, err := BuildClause(KindCoin, keyOneAddr, nil, "")
		assert.ErrorIs(t, err, ErrMissingAmount)
		_, err = BuildClause(KindCoin, keyOneAddr, big.NewInt(0), "")
		assert.ErrorIs(t, err, ErrMissingAmount)
		_, err = BuildClause(KindCoin, "0x1234", oneVET(), "")
		assert.ErrorIs(t, err, ErrInvalidAddress)
		_, err = BuildClause(KindToken, keyOneAddr, oneVET(), "nope")
		assert.ErrorIs(t, err, ErrInvalidAddress)
		_, err = BuildClause(KindContractCall, keyOneAddr, oneVET(), "")
		assert.ErrorIs(t, err, ErrUnsupportedKind)
		assert.ErrorIs(t, err, ErrBuild)
	})
}

// --- Encoding ---

func sampleTx() Transaction {
	return Transaction{
		Kind:     KindCoin,
		Amount:   oneVET(),
		Fee:      &Fee{Priority: PriorityRegular},
		To:       keyOneAddr,
		ChainTag: TestNetChainTag,
		BlockRef: 0xaabbccdd,
		Nonce:    12345,
	}
}

func TestRLPEncoder_Unsigned(t *testing.T) {
	body, err := NewBuilder(nil).Body(sampleTx())
	require.NoError(t, err)
	assert.Equal(t, DefaultExpiration, body.Expiration)
	assert.Equal(t, uint64(21000), body.Gas)
	assert.Nil(t, body.DependsOn)

	raw, err := RLPEncoder{}.EncodeUnsigned(body)
	require.NoError(t, err)
	assert.Equal(t,
		"f32784aabbccdd8202d0e0df947e5f4552091a69125d5dfcb7b8c2659029395bdf880de0b6b3a7640000808082520880823039c0",
		hex.EncodeToString(raw))

	hash, err := NewBuilder(nil).BuildForSign(sampleTx())
	require.NoError(t, err)
	assert.Equal(t, "c7325021658600db2a9552cbd2cdb91d9358a2defebca5be2ae98ea728cd7194", hex.EncodeToString(hash))
}

func TestBuilder_SignedRoundTrip(t *testing.T) {
	priv, err := crypto.ToECDSA(mustHex(t, strings.Repeat("00", 31)+"01"))
	require.NoError(t, err)

	b := NewBuilder(nil)
	tx := sampleTx()
	hash, err := b.BuildForSign(tx)
	require.NoError(t, err)
	sig, err := crypto.Sign(hash, priv)
	require.NoError(t, err)
	require.Len(t, sig, SignatureLen)

	raw, err := b.BuildForSend(tx, sig)
	require.NoError(t, err)

	body, gotSig, err := DecodeSigned(raw)
	require.NoError(t, err)
	assert.Equal(t, sig, gotSig)
	assert.Equal(t, uint64(12345), body.Nonce)
	require.Len(t, body.Clauses, 1)
	assert.Equal(t, 0, body.Clauses[0].Value.Cmp(oneVET()))

	again, err := RLPEncoder{}.SigningHash(body)
	require.NoError(t, err)
	assert.Equal(t, hash, again)

	signer, err := Signer(again, gotSig)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(keyOneAddr), signer)

	id := TxID(hash, signer)
	assert.True(t, strings.HasPrefix(id, "0x"))
	assert.Len(t, id, 66)
}

func TestBuilder_Errors(t *testing.T) {
	b := NewBuilder(nil)

	tx := sampleTx()
	tx.Fee = nil
	_, err := b.BuildForSign(tx)
	assert.ErrorIs(t, err, ErrMissingFee)
	assert.ErrorIs(t, err, ErrBuild)

	tx = sampleTx()
	tx.Amount = nil
	_, err = b.BuildForSign(tx)
	assert.ErrorIs(t, err, ErrMissingAmount)

	_, err = b.BuildForSend(sampleTx(), make([]byte, 64))
	assert.ErrorIs(t, err, ErrSignatureLength)

	_, err = Signer(make([]byte, 32), make([]byte, 10))
	assert.ErrorIs(t, err, ErrSignatureLength)
}

func TestBuilder_GasOverride(t *testing.T) {
	tx := sampleTx()
	tx.Fee = &Fee{Priority: PriorityHigh, Gas: 50000}
	body, err := NewBuilder(nil).Body(tx)
	require.NoError(t, err)
	assert.Equal(t, uint64(50000), body.Gas)
	assert.Equal(t, uint8(255), body.GasPriceCoef)

	tx.Fee = &Fee{Priority: PriorityMedium, ExtraGas: 100}
	body, err = NewBuilder(nil).Body(tx)
	require.NoError(t, err)
	assert.Equal(t, uint64(21100), body.Gas)
}

type recordingEncoder struct {
	RLPEncoder
	bodies []*Body
}

func (e *recordingEncoder) SigningHash(b *Body) ([]byte, error) {
	e.bodies = append(e.bodies, b)
	return e.RLPEncoder.SigningHash(b)
}

func TestBuilder_CustomEncoder(t *testing.T) {
	enc := &recordingEncoder{}
	_, err := NewBuilder(enc).BuildForSign(sampleTx())
	require.NoError(t, err)
	require.Len(t, enc.bodies, 1)
	assert.Equal(t, TestNetChainTag, enc.bodies[0].ChainTag)
}

func TestBlockRefFromID(t *testing.T) {
	ref, err := BlockRefFromID("0x00000001aabbccdd" + strings.Repeat("00", 24))
	require.NoError(t, err)
	assert.Equal(t, uint64(0x00000001aabbccdd), ref)

	_, err = BlockRefFromID("0x1234")
	assert.ErrorIs(t, err, ErrEncoding)
}
