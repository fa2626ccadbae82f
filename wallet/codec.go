package wallet

import (
	"fmt"
	"math/big"
	"time"

	"github.com/bitfsorg/walletcore-go/serde"
)

const snapshotVersion = 2

var (
	// bigIntSerde keeps nil apart from zero with an option byte.
	bigIntSerde = serde.Xmap(serde.Option(serde.Bytes()),
		func(b *[]byte) *big.Int {
			if b == nil {
				return nil
			}
			return new(big.Int).SetBytes(*b)
		},
		func(v *big.Int) *[]byte {
			if v == nil {
				return nil
			}
			b := v.Bytes()
			return &b
		},
	)

	// tokensSerde keeps a nil map apart from an empty one.
	tokensSerde = serde.Xmap(serde.Option(serde.Map(serde.String(), bigIntSerde)),
		func(m *map[string]*big.Int) map[string]*big.Int {
			if m == nil {
				return nil
			}
			return *m
		},
		func(m map[string]*big.Int) *map[string]*big.Int {
			if m == nil {
				return nil
			}
			return &m
		},
	)

	// timeSerde stores Unix nanoseconds; 0 is the zero time.
	timeSerde = serde.Xmap(serde.I64LE(),
		func(n int64) time.Time {
			if n == 0 {
				return time.Time{}
			}
			return time.Unix(0, n).UTC()
		},
		func(t time.Time) int64 {
			if t.IsZero() {
				return 0
			}
			return t.UnixNano()
		},
	)

	statusSerde = serde.Xfmap(serde.U8(),
		func(b uint8) (Status, error) {
			if Status(b) > StatusErrored {
				return 0, fmt.Errorf("unknown status %d", b)
			}
			return Status(b), nil
		},
		func(s Status) uint8 { return uint8(s) },
	)

	pendingSerde = serde.Xmap(
		serde.Tuple4(
			serde.Tuple2(serde.String(), serde.String()),
			serde.Tuple2(bigIntSerde, bigIntSerde),
			serde.Bool(),
			timeSerde,
		),
		func(q serde.Quad[serde.Pair[string, string], serde.Pair[*big.Int, *big.Int], bool, time.Time]) PendingTransaction {
			return PendingTransaction{
				TxID:        q.First.First,
				To:          q.First.Second,
				Amount:      q.Second.First,
				Fee:         q.Second.Second,
				Placeholder: q.Third,
				CreatedAt:   q.Fourth,
			}
		},
		func(p PendingTransaction) serde.Quad[serde.Pair[string, string], serde.Pair[*big.Int, *big.Int], bool, time.Time] {
			return serde.Quad[serde.Pair[string, string], serde.Pair[*big.Int, *big.Int], bool, time.Time]{
				First:  serde.Pair[string, string]{First: p.TxID, Second: p.To},
				Second: serde.Pair[*big.Int, *big.Int]{First: p.Amount, Second: p.Fee},
				Third:  p.Placeholder,
				Fourth: p.CreatedAt,
			}
		},
	)
)

type (
	snapshotHeader = serde.Triple[uint8, string, string]
	snapshotFunds  = serde.Pair[*big.Int, map[string]*big.Int]
	snapshotStatus = serde.Triple[Status, time.Time, string]
	snapshotRecord = serde.Quad[snapshotHeader, snapshotFunds, []PendingTransaction, snapshotStatus]
)

// SnapshotSerde encodes a Snapshot as a versioned record.
func SnapshotSerde() serde.Serde[Snapshot] {
	return serde.Xfmap(
		serde.Tuple4(
			serde.Tuple3(serde.U8(), serde.String(), serde.String()),
			serde.Tuple2(bigIntSerde, tokensSerde),
			serde.Vector(pendingSerde),
			serde.Tuple3(statusSerde, timeSerde, serde.String()),
		),
		func(r snapshotRecord) (Snapshot, error) {
			if r.First.First != snapshotVersion {
				return Snapshot{}, fmt.Errorf("unsupported snapshot version %d", r.First.First)
			}
			return Snapshot{
				Chain:     r.First.Second,
				Address:   r.First.Third,
				Balance:   r.Second.First,
				Tokens:    r.Second.Second,
				Pending:   r.Third,
				Status:    r.Fourth.First,
				UpdatedAt: r.Fourth.Second,
				Error:     r.Fourth.Third,
			}, nil
		},
		func(s Snapshot) snapshotRecord {
			return snapshotRecord{
				First:  snapshotHeader{First: snapshotVersion, Second: s.Chain, Third: s.Address},
				Second: snapshotFunds{First: s.Balance, Second: s.Tokens},
				Third:  s.Pending,
				Fourth: snapshotStatus{First: s.Status, Second: s.UpdatedAt, Third: s.Error},
			}
		},
	)
}
