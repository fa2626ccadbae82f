package main

import (
	"github.com/spf13/cobra"

	"github.com/bitfsorg/walletcore-go/config"
	"github.com/bitfsorg/walletcore-go/log"
)

// app carries the resolved configuration to subcommands.
type app struct {
	dataDir string
	cfg     config.Config

	// Flag overrides, applied over the config file and environment.
	network  string
	logLevel string
	logJSON  bool
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "walletcore",
		Short:         "Multi-chain wallet core tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.dataDir, "datadir", config.DefaultDataDir(), "data directory")
	pf.StringVar(&a.network, "network", "", "network: mainnet, testnet or regtest")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.BoolVar(&a.logJSON, "log-json", false, "JSON log output")

	root.AddCommand(
		newAddressCmd(a),
		newFeeCmd(a),
		newMnemonicCmd(a),
		newResolveCmd(a),
		newBalanceCmd(a),
		newTxCmd(a),
	)
	return root
}

// load reads config from the data directory and environment, then
// applies flags that were set explicitly.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.dataDir)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("network") {
		cfg.Network = a.network
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-json") {
		cfg.LogJSON = a.logJSON
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}
	a.cfg = cfg
	log.Init(cfg.LogLevel, cfg.LogJSON)
	return nil
}
