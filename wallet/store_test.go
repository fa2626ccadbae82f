package wallet

import (
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/walletcore-go/serde"
)

func sampleSnapshot() *Snapshot {
	at := time.Date(2024, 5, 1, 12, 0, 0, 123, time.UTC)
	return &Snapshot{
		Chain:   "vechain",
		Address: keyOneVeChain,
		Balance: new(big.Int).Exp(big.NewInt(10), big.NewInt(20), nil),
		Tokens:  map[string]*big.Int{"VTHO": big.NewInt(42)},
		Pending: []PendingTransaction{
			{TxID: "0xabc", To: keyOneVeChain, Amount: big.NewInt(1000), Fee: big.NewInt(21), CreatedAt: at},
			{Placeholder: true, CreatedAt: at},
		},
		Status:    StatusErrored,
		UpdatedAt: at,
		Error:     "network: connection failed",
	}
}

// assertBigEqual treats nil as distinct from zero.
func assertBigEqual(t *testing.T, want, got *big.Int, msg string) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got, msg)
		return
	}
	require.NotNil(t, got, msg)
	assert.Zero(t, want.Cmp(got), "%s: %s != %s", msg, want, got)
}

func assertSnapshotEqual(t *testing.T, want, got *Snapshot) {
	t.Helper()
	assert.Equal(t, want.Chain, got.Chain)
	assert.Equal(t, want.Address, got.Address)
	assertBigEqual(t, want.Balance, got.Balance, "balance")
	assert.Equal(t, want.Tokens == nil, got.Tokens == nil, "tokens nil")
	require.Len(t, got.Tokens, len(want.Tokens))
	for k, v := range want.Tokens {
		assertBigEqual(t, v, got.Tokens[k], k)
	}
	require.Len(t, got.Pending, len(want.Pending))
	for i, p := range want.Pending {
		g := got.Pending[i]
		assert.Equal(t, p.TxID, g.TxID)
		assert.Equal(t, p.To, g.To)
		assert.Equal(t, p.Placeholder, g.Placeholder)
		assert.True(t, p.CreatedAt.Equal(g.CreatedAt))
		assertBigEqual(t, p.Amount, g.Amount, "amount")
		assertBigEqual(t, p.Fee, g.Fee, "fee")
	}
	assert.Equal(t, want.Status, got.Status)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))
	assert.Equal(t, want.Error, got.Error)
}

func TestSnapshotSerde(t *testing.T) {
	want := sampleSnapshot()
	raw, err := SnapshotSerde().Serialize(*want)
	require.NoError(t, err)
	assert.Equal(t, byte(snapshotVersion), raw[0])

	got, err := serde.Decode(SnapshotSerde(), raw)
	require.NoError(t, err)
	assertSnapshotEqual(t, want, &got)
}

func TestSnapshotSerde_ZeroTime(t *testing.T) {
	raw, err := SnapshotSerde().Serialize(Snapshot{Chain: "bitcoin", Balance: new(big.Int)})
	require.NoError(t, err)
	got, err := serde.Decode(SnapshotSerde(), raw)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.IsZero())
	assert.Equal(t, StatusIdle, got.Status)
}

func TestSnapshotSerde_KeepsNilApartFromZero(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
	}{
		{"nil tokens and amounts", Snapshot{
			Chain:   "bitcoin",
			Balance: new(big.Int),
			Pending: []PendingTransaction{{Placeholder: true}},
		}},
		{"empty tokens and zero amounts", Snapshot{
			Chain:   "vechain",
			Balance: new(big.Int),
			Tokens:  map[string]*big.Int{},
			Pending: []PendingTransaction{{TxID: "0x01", Amount: new(big.Int), Fee: new(big.Int)}},
		}},
		{"nil balance", Snapshot{Chain: "bitcoin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := SnapshotSerde().Serialize(tt.snap)
			require.NoError(t, err)
			got, err := serde.Decode(SnapshotSerde(), raw)
			require.NoError(t, err)
			assertSnapshotEqual(t, &tt.snap, &got)
		})
	}
}

func TestSnapshotSerde_Rejects(t *testing.T) {
	raw, err := SnapshotSerde().Serialize(*sampleSnapshot())
	require.NoError(t, err)

	t.Run("version", func(t *testing.T) {
		bad := append([]byte(nil), raw...)
		bad[0] = snapshotVersion + 1
		_, err := serde.Decode(SnapshotSerde(), bad)
		assert.ErrorIs(t, err, serde.ErrValidation)
	})

	t.Run("status", func(t *testing.T) {
		s := sampleSnapshot()
		s.Status = Status(9)
		bad, err := SnapshotSerde().Serialize(*s)
		require.NoError(t, err)
		_, err = serde.Decode(SnapshotSerde(), bad)
		assert.ErrorIs(t, err, serde.ErrValidation)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := serde.Decode(SnapshotSerde(), raw[:len(raw)-3])
		assert.Error(t, err)
	})

	t.Run("trailing", func(t *testing.T) {
		_, err := serde.Decode(SnapshotSerde(), append(append([]byte(nil), raw...), 0x00))
		assert.Error(t, err)
	})
}

func testStore(t *testing.T, s Store) {
	t.Helper()
	_, err := s.Load("bitcoin:missing")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	want := sampleSnapshot()
	require.NoError(t, s.Save("vechain:"+keyOneVeChain, want))

	got, err := s.Load("vechain:" + keyOneVeChain)
	require.NoError(t, err)
	assertSnapshotEqual(t, want, got)

	// Stored snapshots do not alias the caller's.
	want.Balance.SetInt64(1)
	again, err := s.Load("vechain:" + keyOneVeChain)
	require.NoError(t, err)
	assert.NotEqual(t, int64(1), again.Balance.Int64())

	want.Status = StatusUpdated
	require.NoError(t, s.Save("vechain:"+keyOneVeChain, want))
	got, err = s.Load("vechain:" + keyOneVeChain)
	require.NoError(t, err)
	assert.Equal(t, StatusUpdated, got.Status)
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()
	testStore(t, s)
	assert.NoError(t, s.Close())
}

func TestBoltStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wallet.db")
	s, err := OpenBoltStore(path)
	require.NoError(t, err)
	testStore(t, s)
	require.NoError(t, s.Close())

	reopened, err := OpenBoltStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Load("vechain:" + keyOneVeChain)
	require.NoError(t, err)
	assert.Equal(t, StatusUpdated, got.Status)
}
