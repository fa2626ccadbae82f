package btc

// UnspentOutput is a spendable output owned by the wallet.
type UnspentOutput struct {
	TxHash string `json:"tx_hash"` // display-order hex
	Index  uint32 `json:"index"`
	Amount uint64 `json:"amount"` // satoshis
	Script []byte `json:"script"` // locking script; empty means the wallet's own P2PKH script
}

// Fee is the miner fee of a transaction and the rate it was derived from.
type Fee struct {
	Amount      uint64 `json:"amount"`        // satoshis
	RatePerByte uint64 `json:"rate_per_byte"` // satoshis per byte
}

// Transaction is a requested transfer of Amount to To.
type Transaction struct {
	Amount uint64 `json:"amount"`
	Fee    *Fee   `json:"fee,omitempty"`
	From   string `json:"from,omitempty"` // change address, defaults to the builder's address
	To     string `json:"to"`
}

// SumUnspents returns the total value of unspents.
func SumUnspents(unspents []UnspentOutput) uint64 {
	var sum uint64
	for _, u := range unspents {
		sum += u.Amount
	}
	return sum
}
