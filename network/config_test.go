package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkPresets(t *testing.T) {
	tests := []struct {
		name    string
		network string
		url     string
		user    string
	}{
		{"regtest defaults", "regtest", "http://localhost:18443", "walletcore"},
		{"testnet defaults", "testnet", "http://localhost:18332", "walletcore"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preset, ok := NetworkPresets[tt.network]
			require.True(t, ok, "preset should exist for %s", tt.network)
			assert.Equal(t, tt.url, preset.URL)
			assert.Equal(t, tt.user, preset.User)
		})
	}
}

func TestMainnetHasNoPreset(t *testing.T) {
	_, ok := NetworkPresets["mainnet"]
	assert.False(t, ok)
	_, ok = ThorPresets["mainnet"]
	assert.False(t, ok)
}

func TestResolveConfigFlagsOverrideAll(t *testing.T) {
	flags := &RPCConfig{URL: "http://custom:9999", User: "me", Password: "secret"}
	env := map[string]string{EnvRPCURL: "http://env:1", EnvRPCUser: "envuser"}
	cfg, err := ResolveConfig(flags, env, "regtest")
	require.NoError(t, err)
	assert.Equal(t, "http://custom:9999", cfg.URL)
	assert.Equal(t, "me", cfg.User)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "regtest", cfg.Network)
}

func TestResolveConfigEnvOverridesPreset(t *testing.T) {
	env := map[string]string{
		EnvRPCURL:  "http://env-node:18332",
		EnvRPCUser: "envuser",
	}
	cfg, err := ResolveConfig(nil, env, "regtest")
	require.NoError(t, err)
	assert.Equal(t, "http://env-node:18332", cfg.URL)
	assert.Equal(t, "envuser", cfg.User)
	assert.Equal(t, "walletcore", cfg.Password) // falls through to preset
}

func TestResolveConfigMainnetRequiresExplicit(t *testing.T) {
	_, err := ResolveConfig(nil, nil, "mainnet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mainnet")

	cfg, err := ResolveConfig(nil, map[string]string{EnvRPCURL: "http://node:8332"}, "mainnet")
	require.NoError(t, err)
	assert.Equal(t, "http://node:8332", cfg.URL)
	assert.Empty(t, cfg.User)
}

func TestResolveConfigPartialFlags(t *testing.T) {
	flags := &RPCConfig{URL: "http://partial:8332"}
	cfg, err := ResolveConfig(flags, nil, "testnet")
	require.NoError(t, err)
	assert.Equal(t, "http://partial:8332", cfg.URL)
	assert.Equal(t, "walletcore", cfg.User)
}

func TestResolveThorURL(t *testing.T) {
	url, err := ResolveThorURL("http://flag:8669", map[string]string{EnvThorURL: "http://env:8669"}, "testnet")
	require.NoError(t, err)
	assert.Equal(t, "http://flag:8669", url)

	url, err = ResolveThorURL("", map[string]string{EnvThorURL: "http://env:8669"}, "mainnet")
	require.NoError(t, err)
	assert.Equal(t, "http://env:8669", url)

	url, err = ResolveThorURL("", nil, "testnet")
	require.NoError(t, err)
	assert.Equal(t, "https://testnet.vechain.org", url)

	_, err = ResolveThorURL("", nil, "mainnet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mainnet")
}
