package network

import (
	"context"
	"math/big"
)

// BitcoinService is the chain collaborator used by the Bitcoin wallet
// adapter.
type BitcoinService interface {
	// ListUnspent returns all unspent transaction outputs for the given
	// address, including unconfirmed ones.
	ListUnspent(ctx context.Context, address string) ([]*UTXO, error)

	// EstimateFeeRate returns a fee rate in satoshis per byte expected to
	// confirm within targetBlocks.
	EstimateFeeRate(ctx context.Context, targetBlocks int) (uint64, error)

	// BroadcastTx submits a raw transaction hex to the network and returns the txid.
	BroadcastTx(ctx context.Context, rawTxHex string) (string, error)

	// GetTxStatus returns the confirmation status of a transaction.
	GetTxStatus(ctx context.Context, txid string) (*TxStatus, error)

	// GetBestBlockHeight returns the height of the current chain tip.
	GetBestBlockHeight(ctx context.Context) (uint64, error)
}

// ThorService is the chain collaborator used by the VeChain wallet adapter.
type ThorService interface {
	// GetAccount returns the VET and VTHO balances of address.
	GetAccount(ctx context.Context, address string) (*Account, error)

	// GetBestBlock returns the current chain tip.
	GetBestBlock(ctx context.Context) (*Block, error)

	// GetChainTag returns the last byte of the genesis block ID.
	GetChainTag(ctx context.Context) (uint8, error)

	// GetReceipt returns the receipt of a transaction, or ErrTxNotFound
	// while it is still pending.
	GetReceipt(ctx context.Context, txid string) (*Receipt, error)

	// SendRawTx submits a signed transaction and returns its ID.
	SendRawTx(ctx context.Context, raw []byte) (string, error)
}

// UTXO represents an unspent transaction output.
type UTXO struct {
	TxID          string `json:"txid"`
	Vout          uint32 `json:"vout"`
	Amount        uint64 `json:"amount"`
	ScriptPubKey  string `json:"script_pubkey"`
	Address       string `json:"address"`
	Confirmations int64  `json:"confirmations"`
}

// TxStatus represents the confirmation status of a transaction.
type TxStatus struct {
	Confirmed     bool   `json:"confirmed"`
	Confirmations int64  `json:"confirmations"`
	BlockHash     string `json:"block_hash"`
	BlockHeight   uint64 `json:"block_height"`
}

// Account is a VeChain account state. Balance is VET and Energy is VTHO,
// both in wei.
type Account struct {
	Balance *big.Int `json:"balance"`
	Energy  *big.Int `json:"energy"`
	HasCode bool     `json:"has_code"`
}

// Block is a VeChain block summary.
type Block struct {
	Number    uint64 `json:"number"`
	ID        string `json:"id"`
	Timestamp uint64 `json:"timestamp"`
}

// Receipt is the execution outcome of a VeChain transaction.
type Receipt struct {
	TxID        string `json:"txid"`
	GasUsed     uint64 `json:"gas_used"`
	Reverted    bool   `json:"reverted"`
	BlockID     string `json:"block_id"`
	BlockNumber uint64 `json:"block_number"`
}
