package network

import "context"

// MockBitcoinService is a test double for BitcoinService.
// All function fields must be set before the corresponding method is called.
type MockBitcoinService struct {
	ListUnspentFn        func(ctx context.Context, address string) ([]*UTXO, error)
	EstimateFeeRateFn    func(ctx context.Context, targetBlocks int) (uint64, error)
	BroadcastTxFn        func(ctx context.Context, rawTxHex string) (string, error)
	GetTxStatusFn        func(ctx context.Context, txid string) (*TxStatus, error)
	GetBestBlockHeightFn func(ctx context.Context) (uint64, error)
}

var _ BitcoinService = (*MockBitcoinService)(nil)

func (m *MockBitcoinService) ListUnspent(ctx context.Context, address string) ([]*UTXO, error) {
	return m.ListUnspentFn(ctx, address)
}
func (m *MockBitcoinService) EstimateFeeRate(ctx context.Context, targetBlocks int) (uint64, error) {
	return m.EstimateFeeRateFn(ctx, targetBlocks)
}
func (m *MockBitcoinService) BroadcastTx(ctx context.Context, rawTxHex string) (string, error) {
	return m.BroadcastTxFn(ctx, rawTxHex)
}
func (m *MockBitcoinService) GetTxStatus(ctx context.Context, txid string) (*TxStatus, error) {
	return m.GetTxStatusFn(ctx, txid)
}
func (m *MockBitcoinService) GetBestBlockHeight(ctx context.Context) (uint64, error) {
	return m.GetBestBlockHeightFn(ctx)
}

// MockThorService is a test double for ThorService.
// All function fields must be set before the corresponding method is called.
type MockThorService struct {
	GetAccountFn   func(ctx context.Context, address string) (*Account, error)
	GetBestBlockFn func(ctx context.Context) (*Block, error)
	GetChainTagFn  func(ctx context.Context) (uint8, error)
	GetReceiptFn   func(ctx context.Context, txid string) (*Receipt, error)
	SendRawTxFn    func(ctx context.Context, raw []byte) (string, error)
}

var _ ThorService = (*MockThorService)(nil)

func (m *MockThorService) GetAccount(ctx context.Context, address string) (*Account, error) {
	return m.GetAccountFn(ctx, address)
}
func (m *MockThorService) GetBestBlock(ctx context.Context) (*Block, error) {
	return m.GetBestBlockFn(ctx)
}
func (m *MockThorService) GetChainTag(ctx context.Context) (uint8, error) {
	return m.GetChainTagFn(ctx)
}
func (m *MockThorService) GetReceipt(ctx context.Context, txid string) (*Receipt, error) {
	return m.GetReceiptFn(ctx, txid)
}
func (m *MockThorService) SendRawTx(ctx context.Context, raw []byte) (string, error) {
	return m.SendRawTxFn(ctx, raw)
}
