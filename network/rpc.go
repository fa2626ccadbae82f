package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bitfsorg/walletcore-go/log"
)

// maxResponseSize bounds how much of a node response is read.
const maxResponseSize = 16 << 20

// RPCClient talks JSON-RPC 1.0 to a Bitcoin Core compatible node. The
// BitcoinService methods are thin wrappers over Call.
type RPCClient struct {
	url    string
	user   string
	pass   string
	client *http.Client
	nextID atomic.Int64
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// RPCError is an error returned by the JSON-RPC server.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// rpcInvalidAddressOrKey is returned by Bitcoin Core for unknown txids.
const rpcInvalidAddressOrKey = -5

// NewRPCClient returns a client for cfg.URL, using Basic auth when
// cfg.User is set.
func NewRPCClient(cfg RPCConfig) *RPCClient {
	return &RPCClient{
		url:  cfg.URL,
		user: cfg.User,
		pass: cfg.Password,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
	}
}

// Call runs method on the node and decodes the result into result, which
// may be nil to discard it. A nil params sends an empty array.
//
// Transport failures wrap ErrConnectionFailed, rejected credentials wrap
// ErrAuthFailed and undecodable replies wrap ErrInvalidResponse. Errors
// reported by the node itself are returned as *RPCError.
func (c *RPCClient) Call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	id := c.nextID.Add(1)
	body, err := json.Marshal(rpcRequest{JSONRPC: "1.0", ID: id, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("network: marshal request: %w", err)
	}

	log.Network.Debug().Str("method", method).Int64("id", id).Msg("rpc call")
	status, raw, err := c.post(ctx, body)
	if err != nil {
		return err
	}

	var resp rpcResponse
	decodeErr := json.Unmarshal(raw, &resp)
	switch {
	case status < 200 || status >= 300:
		// Bitcoin Core reports RPC errors with HTTP 500 and a JSON body.
		if decodeErr == nil && resp.Error != nil {
			return resp.Error
		}
		return fmt.Errorf("%w: HTTP %d: %s", ErrConnectionFailed, status, truncate(raw, 1024))
	case decodeErr != nil:
		return fmt.Errorf("%w: decode response: %w", ErrInvalidResponse, decodeErr)
	case resp.ID != id:
		return fmt.Errorf("%w: response id %d for request %d", ErrInvalidResponse, resp.ID, id)
	case resp.Error != nil:
		return resp.Error
	}

	if result == nil || resp.Result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return fmt.Errorf("%w: unmarshal %s result: %w", ErrInvalidResponse, method, err)
	}
	return nil
}

// post sends one request body and returns the status and bounded reply.
func (c *RPCClient) post(ctx context.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("network: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.pass)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return 0, nil, fmt.Errorf("%w: HTTP %d", ErrAuthFailed, resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read response: %w", ErrConnectionFailed, err)
	}
	return resp.StatusCode, raw, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
