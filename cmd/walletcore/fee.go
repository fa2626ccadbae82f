package main

import (
	"fmt"
	"math/big"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/walletcore-go/vechain"
	"github.com/bitfsorg/walletcore-go/wallet"
)

func newFeeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fee",
		Short: "Price a transfer at each fee tier",
	}
	cmd.AddCommand(newFeeVeChainCmd(), newFeeBitcoinCmd(a))
	return cmd
}

func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() <= 0 {
		return nil, fmt.Errorf("amount %q: must be a positive integer in the smallest unit", s)
	}
	return v, nil
}

func newFeeVeChainCmd() *cobra.Command {
	var to, amount, token string
	var extraGas uint64
	cmd := &cobra.Command{
		Use:   "vechain",
		Short: "Price a VET or token transfer (offline)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			value, err := parseAmount(amount)
			if err != nil {
				return err
			}
			kind := vechain.KindCoin
			if token != "" {
				kind = vechain.KindToken
				if strings.EqualFold(token, "VTHO") {
					token = wallet.VTHOContract
				}
			}
			clause, err := vechain.BuildClause(kind, to, value, token)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIER\tCOEF\tGAS\tVTHO")
			for _, f := range (vechain.FeeCalculator{}).Tiers([]vechain.Clause{clause}, extraGas) {
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", f.Priority, f.Coefficient(), f.Gas, f.Amount.String())
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "recipient address")
	cmd.Flags().StringVar(&amount, "amount", "", "amount in wei")
	cmd.Flags().StringVar(&token, "token", "", "token contract, or VTHO")
	cmd.Flags().Uint64Var(&extraGas, "extra-gas", 0, "gas added to the intrinsic gas")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newFeeBitcoinCmd(a *app) *cobra.Command {
	var to, amount string
	var rpc rpcFlags
	cmd := &cobra.Command{
		Use:   "bitcoin <pubkey-hex>",
		Short: "Price a transfer from a key's unspent outputs through a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseAmount(amount)
			if err != nil {
				return err
			}
			chain, err := a.bitcoinChain(args[0], rpc)
			if err != nil {
				return err
			}
			w, err := wallet.New(chain)
			if err != nil {
				return err
			}
			opts, err := w.Fees(cmd.Context(), value, to)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIER\tSAT/B\tFEE")
			for _, o := range opts {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", o.Tier, o.RatePerByte, o.Amount)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "recipient address")
	cmd.Flags().StringVar(&amount, "amount", "", "amount in satoshis")
	rpc.register(cmd)
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
