package network

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/bitfsorg/walletcore-go/log"
)

// ThorClient talks to a VeChain Thor node over its REST API.
type ThorClient struct {
	baseURL string
	client  *http.Client
}

var _ ThorService = (*ThorClient)(nil)

// NewThorClient creates a client for the Thor node at baseURL.
func NewThorClient(baseURL string) *ThorClient {
	return &ThorClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// do sends a request and decodes the JSON response into out. A JSON null
// body leaves out untouched and reports found == false.
func (c *ThorClient) do(ctx context.Context, method, path string, in, out interface{}) (found bool, err error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return false, fmt.Errorf("network: marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return false, fmt.Errorf("network: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	log.Network.Debug().Str("method", method).Str("path", path).Msg("thor request")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return false, fmt.Errorf("%w: read response: %w", ErrConnectionFailed, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return false, fmt.Errorf("%w: HTTP %d", ErrAuthFailed, resp.StatusCode)
	case resp.StatusCode == http.StatusBadRequest:
		return false, &ThorError{Status: resp.StatusCode, Message: strings.TrimSpace(truncate(respBody, 1024))}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return false, fmt.Errorf("%w: HTTP %d: %s", ErrConnectionFailed, resp.StatusCode, truncate(respBody, 1024))
	}

	trimmed := bytes.TrimSpace(respBody)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false, nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return false, fmt.Errorf("%w: decode response: %w", ErrInvalidResponse, err)
	}
	return true, nil
}

// ThorError is a request the node refused, with its plain-text reason.
type ThorError struct {
	Status  int
	Message string
}

func (e *ThorError) Error() string {
	return fmt.Sprintf("thor: HTTP %d: %s", e.Status, e.Message)
}

type accountResult struct {
	Balance *hexutil.Big `json:"balance"`
	Energy  *hexutil.Big `json:"energy"`
	HasCode bool         `json:"hasCode"`
}

// GetAccount calls GET /accounts/{address}.
func (c *ThorClient) GetAccount(ctx context.Context, address string) (*Account, error) {
	var r accountResult
	found, err := c.do(ctx, http.MethodGet, "/accounts/"+address, nil, &r)
	if err != nil {
		return nil, err
	}
	if !found || r.Balance == nil || r.Energy == nil {
		return nil, fmt.Errorf("%w: account %s", ErrInvalidResponse, address)
	}
	return &Account{Balance: r.Balance.ToInt(), Energy: r.Energy.ToInt(), HasCode: r.HasCode}, nil
}

type blockResult struct {
	Number    uint64 `json:"number"`
	ID        string `json:"id"`
	Timestamp uint64 `json:"timestamp"`
}

func (c *ThorClient) getBlock(ctx context.Context, revision string) (*Block, error) {
	var r blockResult
	found, err := c.do(ctx, http.MethodGet, "/blocks/"+revision, nil, &r)
	if err != nil {
		return nil, err
	}
	if !found || r.ID == "" {
		return nil, fmt.Errorf("%w: block %s", ErrInvalidResponse, revision)
	}
	return &Block{Number: r.Number, ID: r.ID, Timestamp: r.Timestamp}, nil
}

// GetBestBlock calls GET /blocks/best.
func (c *ThorClient) GetBestBlock(ctx context.Context) (*Block, error) {
	return c.getBlock(ctx, "best")
}

// GetChainTag fetches the genesis block and returns the last byte of its ID.
func (c *ThorClient) GetChainTag(ctx context.Context) (uint8, error) {
	genesis, err := c.getBlock(ctx, "0")
	if err != nil {
		return 0, err
	}
	id, err := hex.DecodeString(strings.TrimPrefix(genesis.ID, "0x"))
	if err != nil || len(id) != 32 {
		return 0, fmt.Errorf("%w: genesis id %q", ErrInvalidResponse, genesis.ID)
	}
	return id[31], nil
}

type receiptResult struct {
	GasUsed  uint64 `json:"gasUsed"`
	Reverted bool   `json:"reverted"`
	Meta     struct {
		BlockID     string `json:"blockID"`
		BlockNumber uint64 `json:"blockNumber"`
		TxID        string `json:"txID"`
	} `json:"meta"`
}

// GetReceipt calls GET /transactions/{id}/receipt. The node answers null
// for transactions not yet in a block.
func (c *ThorClient) GetReceipt(ctx context.Context, txid string) (*Receipt, error) {
	var r receiptResult
	found, err := c.do(ctx, http.MethodGet, "/transactions/"+txid+"/receipt", nil, &r)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrTxNotFound, txid)
	}
	return &Receipt{
		TxID:        txid,
		GasUsed:     r.GasUsed,
		Reverted:    r.Reverted,
		BlockID:     r.Meta.BlockID,
		BlockNumber: r.Meta.BlockNumber,
	}, nil
}

type sendTxRequest struct {
	Raw string `json:"raw"`
}

type sendTxResult struct {
	ID string `json:"id"`
}

// SendRawTx calls POST /transactions. A 400 answer is reported as
// ErrBroadcastRejected.
func (c *ThorClient) SendRawTx(ctx context.Context, raw []byte) (string, error) {
	var r sendTxResult
	found, err := c.do(ctx, http.MethodPost, "/transactions", sendTxRequest{Raw: hexutil.Encode(raw)}, &r)
	if err != nil {
		var te *ThorError
		if errors.As(err, &te) {
			return "", fmt.Errorf("%w: %w", ErrBroadcastRejected, te)
		}
		return "", err
	}
	if !found || r.ID == "" {
		return "", fmt.Errorf("%w: missing transaction id", ErrInvalidResponse)
	}
	return r.ID, nil
}
