package btc

import "github.com/bitfsorg/walletcore-go/serde"

const (
	// DustLimit is the smallest change output worth creating, in satoshis.
	DustLimit = uint64(546)

	// DefaultFeeRate is the fallback fee rate in satoshis per byte.
	DefaultFeeRate = uint64(1)

	baseTxSize = 10  // version + locktime + two one-byte counts
	inputSize  = 148 // outpoint + sequence + P2PKH scriptSig
	outputSize = 34  // amount + P2PKH script
)

// EstimateSize approximates the size in bytes of a P2PKH transaction.
func EstimateSize(numInputs, numOutputs int) int {
	return baseTxSize + numInputs*inputSize + numOutputs*outputSize
}

// OutputSize returns the serialized size of an output locked by script:
// amount, CompactSize length and the script itself.
func OutputSize(script []byte) int {
	return 8 + serde.CompactSizeLen(uint64(len(script))) + len(script)
}

// EstimateSizeTo approximates the size of a transaction spending
// numInputs P2PKH inputs to recipient, with a P2PKH change output. A nil
// recipient is sized as P2PKH.
func EstimateSizeTo(numInputs int, recipient []byte) int {
	if recipient == nil {
		return EstimateSize(numInputs, 2)
	}
	return baseTxSize + numInputs*inputSize + OutputSize(recipient) + outputSize
}

// EstimateFee returns size*rate, with a zero rate replaced by DefaultFeeRate.
func EstimateFee(sizeBytes int, ratePerByte uint64) uint64 {
	if ratePerByte == 0 {
		ratePerByte = DefaultFeeRate
	}
	return uint64(sizeBytes) * ratePerByte
}

// FeeRates holds one rate per priority tier, in satoshis per byte.
type FeeRates struct {
	Low    uint64 `json:"low"`
	Medium uint64 `json:"medium"`
	High   uint64 `json:"high"`
}

// RatesFromEstimate derives tiered rates around a node's estimate for
// the medium tier. Low is half of it and high is double, both at least
// DefaultFeeRate.
func RatesFromEstimate(medium uint64) FeeRates {
	if medium < DefaultFeeRate {
		medium = DefaultFeeRate
	}
	low := medium / 2
	if low < DefaultFeeRate {
		low = DefaultFeeRate
	}
	return FeeRates{Low: low, Medium: medium, High: medium * 2}
}

// TieredFees is a fee per priority tier.
type TieredFees struct {
	Low    Fee `json:"low"`
	Medium Fee `json:"medium"`
	High   Fee `json:"high"`
}

// FeeCalculator prices transfers for a fixed rate table.
type FeeCalculator struct {
	Rates FeeRates

	// Recipient is the locking script being paid; nil prices a P2PKH
	// output.
	Recipient []byte
}

// Calculate returns the fee of sending amount from unspents at each tier.
// Every fee is for the coin selection that tier's rate would make.
func (c FeeCalculator) Calculate(amount uint64, unspents []UnspentOutput) (TieredFees, error) {
	price := func(rate uint64) (Fee, error) {
		sel, err := SelectUnspentsTo(unspents, amount, rate, c.Recipient)
		if err != nil {
			return Fee{}, err
		}
		return Fee{Amount: sel.Fee, RatePerByte: rate}, nil
	}

	var (
		out TieredFees
		err error
	)
	if out.Low, err = price(c.Rates.Low); err != nil {
		return TieredFees{}, err
	}
	if out.Medium, err = price(c.Rates.Medium); err != nil {
		return TieredFees{}, err
	}
	if out.High, err = price(c.Rates.High); err != nil {
		return TieredFees{}, err
	}
	return out, nil
}
