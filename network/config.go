package network

import "fmt"

// RPCConfig holds the connection parameters for a Bitcoin node's JSON-RPC interface.
type RPCConfig struct {
	URL      string `json:"url"`
	User     string `json:"user"`
	Password string `json:"password"`
	Network  string `json:"network"`
}

// Environment variables read by ResolveConfig and ResolveThorURL.
const (
	EnvRPCURL  = "WALLETCORE_RPC_URL"
	EnvRPCUser = "WALLETCORE_RPC_USER"
	EnvRPCPass = "WALLETCORE_RPC_PASS"
	EnvThorURL = "WALLETCORE_THOR_URL"
)

// NetworkPresets contains default RPC configurations for known networks.
// Mainnet is intentionally omitted to require explicit configuration.
var NetworkPresets = map[string]RPCConfig{
	"regtest": {URL: "http://localhost:18443", User: "walletcore", Password: "walletcore"},
	"testnet": {URL: "http://localhost:18332", User: "walletcore", Password: "walletcore"},
}

// ThorPresets contains default Thor node URLs. Mainnet is omitted for the
// same reason as in NetworkPresets.
var ThorPresets = map[string]string{
	"testnet": "https://testnet.vechain.org",
	"solo":    "http://localhost:8669",
}

// ResolveConfig merges RPC configuration from three sources with decreasing priority:
//  1. CLI flags (highest priority)
//  2. Environment variables (WALLETCORE_RPC_URL, WALLETCORE_RPC_USER, WALLETCORE_RPC_PASS)
//  3. Network presets (lowest priority, regtest/testnet only)
//
// For mainnet, explicit configuration is required -- there is no preset.
func ResolveConfig(flags *RPCConfig, env map[string]string, network string) (*RPCConfig, error) {
	result := RPCConfig{Network: network}

	if preset, ok := NetworkPresets[network]; ok {
		result = preset
		result.Network = network
	}

	if v := env[EnvRPCURL]; v != "" {
		result.URL = v
	}
	if v := env[EnvRPCUser]; v != "" {
		result.User = v
	}
	if v := env[EnvRPCPass]; v != "" {
		result.Password = v
	}

	if flags != nil {
		if flags.URL != "" {
			result.URL = flags.URL
		}
		if flags.User != "" {
			result.User = flags.User
		}
		if flags.Password != "" {
			result.Password = flags.Password
		}
	}

	if result.URL == "" {
		return nil, fmt.Errorf("network: %s requires explicit RPC configuration (set --rpc-url, %s, or config file)", network, EnvRPCURL)
	}

	return &result, nil
}

// ResolveThorURL picks the Thor node URL from flag, environment, then
// preset, in that order.
func ResolveThorURL(flag string, env map[string]string, network string) (string, error) {
	switch {
	case flag != "":
		return flag, nil
	case env[EnvThorURL] != "":
		return env[EnvThorURL], nil
	}
	if url, ok := ThorPresets[network]; ok {
		return url, nil
	}
	return "", fmt.Errorf("network: %s requires an explicit Thor URL (set --thor-url, %s, or config file)", network, EnvThorURL)
}
