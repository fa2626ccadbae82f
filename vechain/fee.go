package vechain

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/bitfsorg/walletcore-go/log"
)

// Gas schedule.
const (
	TxGas          = uint64(5000)
	ClauseGas      = uint64(16000)
	ZeroByteGas    = uint64(4)
	NonZeroByteGas = uint64(68)

	// DataSurcharge is charged once per transaction whose clauses carry
	// any non-zero data byte.
	DataSurcharge = uint64(15000)

	maxCoefficient = 255
)

var (
	// weiPerGasUnit is the base gas price, 10^15 wei (0.001 VTHO).
	weiPerGasUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(15), nil)
)

// Priority is a gas price tier.
type Priority int

const (
	PriorityRegular Priority = iota
	PriorityMedium
	PriorityHigh
)

// Priorities lists every tier from cheapest to most expensive.
var Priorities = []Priority{PriorityRegular, PriorityMedium, PriorityHigh}

func (p Priority) String() string {
	switch p {
	case PriorityRegular:
		return "regular"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	}
	return "unknown"
}

// Coefficient returns the gas price coefficient of p.
func (p Priority) Coefficient() uint8 {
	switch p {
	case PriorityMedium:
		return 127
	case PriorityHigh:
		return 255
	}
	return 0
}

// PriorityFromCoefficient maps a gas price coefficient back to its tier.
// Coefficients other than 0, 127 and 255 have no tier; they are logged and
// reported with ok == false.
func PriorityFromCoefficient(coef uint8) (p Priority, ok bool) {
	switch coef {
	case 0:
		return PriorityRegular, true
	case 127:
		return PriorityMedium, true
	case 255:
		return PriorityHigh, true
	}
	log.VeChain.Warn().Uint8("coefficient", coef).Msg("unexpected coefficient")
	return 0, false
}

// GasPriceMultiplier returns 1 + coef/255.
func GasPriceMultiplier(coef uint8) decimal.Decimal {
	return decimal.NewFromInt(1).Add(
		decimal.NewFromInt(int64(coef)).Div(decimal.NewFromInt(maxCoefficient)),
	)
}

// DataGas returns the gas charged for clause data bytes.
func DataGas(data []byte) uint64 {
	var gas uint64
	for _, b := range data {
		if b == 0 {
			gas += ZeroByteGas
		} else {
			gas += NonZeroByteGas
		}
	}
	return gas
}

// IntrinsicGas returns the gas a transaction with clauses costs before
// execution.
func IntrinsicGas(clauses []Clause) uint64 {
	gas := TxGas + ClauseGas*uint64(len(clauses))
	surcharge := false
	for _, c := range clauses {
		gas += DataGas(c.Data)
		if !surcharge {
			for _, b := range c.Data {
				if b != 0 {
					surcharge = true
					break
				}
			}
		}
	}
	if surcharge {
		gas += DataSurcharge
	}
	return gas
}

// Fee is the cost of a VeChain transaction.
type Fee struct {
	Priority Priority        `json:"priority"`
	ExtraGas uint64          `json:"extra_gas"`
	Gas      uint64          `json:"gas"`
	Amount   decimal.Decimal `json:"amount"` // VTHO
}

// Coefficient returns the gas price coefficient of the fee's tier.
func (f Fee) Coefficient() uint8 { return f.Priority.Coefficient() }

// Wei returns the fee in wei, rounded down: gas * 10^15 * (255+coef) / 255.
func (f Fee) Wei() *big.Int { return feeWei(f.Gas, f.Coefficient()) }

func feeWei(gas uint64, coef uint8) *big.Int {
	w := new(big.Int).SetUint64(gas)
	w.Mul(w, weiPerGasUnit)
	w.Mul(w, big.NewInt(int64(maxCoefficient)+int64(coef)))
	return w.Quo(w, big.NewInt(maxCoefficient))
}

// FeeAmount returns gas * multiplier / 1000 in VTHO, to the wei, so it
// always equals the Wei value of the same fee.
func FeeAmount(gas uint64, coef uint8) decimal.Decimal {
	return decimal.NewFromBigInt(feeWei(gas, coef), -18)
}

// FeeCalculator prices clause sets per priority tier.
type FeeCalculator struct{}

// Calculate returns the fee of clauses plus extraGas at priority.
func (FeeCalculator) Calculate(clauses []Clause, extraGas uint64, priority Priority) Fee {
	gas := IntrinsicGas(clauses) + extraGas
	return Fee{
		Priority: priority,
		ExtraGas: extraGas,
		Gas:      gas,
		Amount:   FeeAmount(gas, priority.Coefficient()),
	}
}

// Tiers returns the fee at every priority, cheapest first.
func (c FeeCalculator) Tiers(clauses []Clause, extraGas uint64) []Fee {
	fees := make([]Fee, 0, len(Priorities))
	for _, p := range Priorities {
		fees = append(fees, c.Calculate(clauses, extraGas, p))
	}
	return fees
}
