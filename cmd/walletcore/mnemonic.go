package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/walletcore-go/signer"
)

func newMnemonicCmd(_ *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mnemonic",
		Short: "Create mnemonics and derive public keys from them",
	}
	cmd.AddCommand(newMnemonicNewCmd(), newMnemonicPubKeyCmd())
	return cmd
}

func newMnemonicNewCmd() *cobra.Command {
	var words int
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a BIP39 mnemonic",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bits := signer.Mnemonic12Words
			switch words {
			case 12:
			case 24:
				bits = signer.Mnemonic24Words
			default:
				return fmt.Errorf("--words must be 12 or 24")
			}
			m, err := signer.GenerateMnemonic(bits)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), m)
			return nil
		},
	}
	cmd.Flags().IntVar(&words, "words", 24, "mnemonic length: 12 or 24")
	return cmd
}

func newMnemonicPubKeyCmd() *cobra.Command {
	var path, passphrase string
	cmd := &cobra.Command{
		Use:   "pubkey",
		Short: "Print the public key at a path for a mnemonic read from stdin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && strings.TrimSpace(line) == "" {
				return fmt.Errorf("read mnemonic: %w", err)
			}
			s, err := signer.FromMnemonic(line, passphrase, signer.WithDefaultPath(path))
			if err != nil {
				return err
			}
			pub, err := s.PublicKey(path)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(pub))
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", signer.BitcoinLegacyPath, "derivation path")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "BIP39 passphrase")
	return cmd
}
