package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/walletcore-go/address"
)

func newAddressCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Derive and validate addresses",
	}
	cmd.AddCommand(newAddressDeriveCmd(a), newAddressValidateCmd(a))
	return cmd
}

func codecFor(a *app, chain, scheme string) (address.Codec, error) {
	sc, err := address.ParseScheme(scheme)
	if err != nil {
		return nil, err
	}
	return address.NewCodec(address.Chain(chain), a.cfg.Network, sc)
}

func newAddressDeriveCmd(a *app) *cobra.Command {
	var chain, scheme string
	cmd := &cobra.Command{
		Use:   "derive <pubkey-hex>",
		Short: "Derive the address of a public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := hex.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("public key: %w", err)
			}
			codec, err := codecFor(a, chain, scheme)
			if err != nil {
				return err
			}
			addr, err := codec.FromPublicKey(pub)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), addr)
			return nil
		},
	}
	cmd.Flags().StringVar(&chain, "chain", string(address.Bitcoin), "chain: bitcoin or vechain")
	cmd.Flags().StringVar(&scheme, "scheme", address.SchemeLegacy.String(), "bitcoin scheme: legacy, nested-segwit or segwit")
	return cmd
}

func newAddressValidateCmd(a *app) *cobra.Command {
	var chain string
	cmd := &cobra.Command{
		Use:   "validate <address>",
		Short: "Check an address for the configured network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := codecFor(a, chain, address.SchemeLegacy.String())
			if err != nil {
				return err
			}
			if err := codec.Validate(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
	cmd.Flags().StringVar(&chain, "chain", string(address.Bitcoin), "chain: bitcoin or vechain")
	return cmd
}
