package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/walletcore-go/network"
)

func newTxCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Inspect transactions",
	}
	cmd.AddCommand(newTxStatusCmd(a))
	return cmd
}

func newTxStatusCmd(a *app) *cobra.Command {
	var rpc rpcFlags
	cmd := &cobra.Command{
		Use:   "status <txid>",
		Short: "Show the confirmation status of a Bitcoin transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.rpcConfig(rpc)
			if err != nil {
				return err
			}
			client := network.NewRPCClient(*cfg)
			ctx := cmd.Context()

			st, err := client.GetTxStatus(ctx, args[0])
			if err != nil {
				return err
			}
			tip, err := client.GetBestBlockHeight(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !st.Confirmed {
				fmt.Fprintf(out, "unconfirmed (tip %d)\n", tip)
				return nil
			}
			fmt.Fprintf(out, "confirmed in block %d %s, %d confirmations (tip %d)\n",
				st.BlockHeight, st.BlockHash, st.Confirmations, tip)
			return nil
		},
	}
	rpc.register(cmd)
	return cmd
}
