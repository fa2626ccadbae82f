package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/walletcore-go/address"
	"github.com/bitfsorg/walletcore-go/resolve"
)

func newResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <user@domain>",
		Short: "Resolve a BIP-353 payment handle to an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := address.GetNetwork(a.cfg.Network)
			if err != nil {
				return err
			}
			r := resolve.New(resolve.NewDNSSECResolver(a.cfg.DNSUpstream), params)
			in, err := r.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "uri:     %s\n", in.URI)
			if in.Address == "" {
				fmt.Fprintf(out, "address: none on %s\n", params.Name)
				return nil
			}
			fmt.Fprintf(out, "address: %s\n", in.Address)
			return nil
		},
	}
}
