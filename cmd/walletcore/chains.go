package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/walletcore-go/address"
	"github.com/bitfsorg/walletcore-go/network"
	"github.com/bitfsorg/walletcore-go/wallet"
)

// rpcFlags override the configured node endpoints.
type rpcFlags struct {
	url, user, pass string
	thorURL         string
}

func (f *rpcFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "rpc-url", "", "Bitcoin node JSON-RPC URL")
	cmd.Flags().StringVar(&f.user, "rpc-user", "", "Bitcoin node RPC user")
	cmd.Flags().StringVar(&f.pass, "rpc-pass", "", "Bitcoin node RPC password")
	cmd.Flags().StringVar(&f.thorURL, "thor-url", "", "VeChain Thor node URL")
}

func (a *app) bitcoinChain(pubHex string, f rpcFlags) (*wallet.BitcoinChain, error) {
	pub, err := hex.DecodeString(pubHex)
	if err != nil {
		return nil, fmt.Errorf("public key: %w", err)
	}
	params, err := address.GetNetwork(a.cfg.Network)
	if err != nil {
		return nil, err
	}
	rpc, err := a.rpcConfig(f)
	if err != nil {
		return nil, err
	}
	return wallet.NewBitcoinChain(network.NewRPCClient(*rpc), pub, params)
}

// rpcConfig resolves the node endpoint. The config already carries file
// and environment values, so only flags and presets remain.
func (a *app) rpcConfig(f rpcFlags) (*network.RPCConfig, error) {
	rpc := &network.RPCConfig{URL: a.cfg.RPCURL, User: a.cfg.RPCUser, Password: a.cfg.RPCPass}
	if f.url != "" {
		rpc.URL = f.url
	}
	if f.user != "" {
		rpc.User = f.user
	}
	if f.pass != "" {
		rpc.Password = f.pass
	}
	return network.ResolveConfig(rpc, nil, a.cfg.Network)
}

// thorNetwork maps the configured network to a Thor preset name.
func thorNetwork(n string) string {
	if n == "regtest" {
		return "solo"
	}
	return n
}

func (a *app) vechainChain(pubHex string, f rpcFlags) (*wallet.VeChainChain, error) {
	pub, err := hex.DecodeString(pubHex)
	if err != nil {
		return nil, fmt.Errorf("public key: %w", err)
	}
	url := f.thorURL
	if url == "" {
		url = a.cfg.ThorURL
	}
	url, err = network.ResolveThorURL(url, nil, thorNetwork(a.cfg.Network))
	if err != nil {
		return nil, err
	}
	return wallet.NewVeChainChain(network.NewThorClient(url), pub, nil)
}
