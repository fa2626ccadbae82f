package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/walletcore-go/config"
	"github.com/bitfsorg/walletcore-go/wallet"
)

func newBalanceCmd(a *app) *cobra.Command {
	var chainName string
	var rpc rpcFlags
	cmd := &cobra.Command{
		Use:   "balance <pubkey-hex>",
		Short: "Refresh and print the wallet state of a public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				chain wallet.Chain
				err   error
			)
			switch chainName {
			case "bitcoin":
				chain, err = a.bitcoinChain(args[0], rpc)
			case "vechain":
				chain, err = a.vechainChain(args[0], rpc)
			default:
				return fmt.Errorf("unknown chain %q", chainName)
			}
			if err != nil {
				return err
			}

			store, err := wallet.OpenBoltStore(config.SnapshotDBPath(a.cfg.DataDir))
			if err != nil {
				return err
			}
			defer store.Close()

			w, err := wallet.New(chain, wallet.WithStore(store))
			if err != nil {
				return err
			}
			snap, err := w.Update(cmd.Context())
			printSnapshot(cmd, snap)
			return err
		},
	}
	cmd.Flags().StringVar(&chainName, "chain", "bitcoin", "chain: bitcoin or vechain")
	rpc.register(cmd)
	return cmd
}

func printSnapshot(cmd *cobra.Command, s wallet.Snapshot) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "address: %s\n", s.Address)
	fmt.Fprintf(out, "balance: %s\n", s.Balance)
	for sym, v := range s.Tokens {
		fmt.Fprintf(out, "%-7s  %s\n", sym+":", v)
	}
	fmt.Fprintf(out, "status:  %s\n", s.Status)
	if !s.UpdatedAt.IsZero() {
		fmt.Fprintf(out, "updated: %s\n", s.UpdatedAt.Format(time.RFC3339))
	}
	for _, p := range s.Pending {
		if p.Placeholder {
			fmt.Fprintln(out, "pending: unconfirmed activity")
			continue
		}
		fmt.Fprintf(out, "pending: %s -> %s (%s)\n", p.TxID, p.To, p.Amount)
	}
}
