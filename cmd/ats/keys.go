package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ats-go/internal/app"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage document encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the key pair protected by a passphrase",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.EncryptionEnabled() {
			return app.ErrEncryptionDisabled
		}

		passphrase, err := readPassphrase("New passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Repeat passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return errors.New("passphrases do not match")
		}

		if err := a.SetupKeys(passphrase); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}
		enc := a.Config().Encryption
		fmt.Printf("Public key:  %s\n", enc.PublicKeyPath)
		fmt.Printf("Private key: %s\n", enc.PrivateKeyPath)
		return nil
	},
}

func init() {
	keysCmd.AddCommand(keysInitCmd)
}
