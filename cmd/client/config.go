package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/emailforms/internal/crypto"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the client configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgFile); err == nil {
			return fmt.Errorf("%s already exists, refusing to overwrite", cfgFile)
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(cfgFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", cfgFile)
		return nil
	},
}

var keygenWrite bool

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a storage encryption key",
	Long: `Prints a random 256-bit key for storage.key_hex. With --write the key is
stored in the config file and storage encryption is switched on. Data saved
with a previous key can no longer be read.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := crypto.NewKeyHex()
		if err != nil {
			return fmt.Errorf("generating key: %w", err)
		}
		if !keygenWrite {
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cfg.Storage.Encrypt = true
		cfg.Storage.KeyHex = key
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(cfgFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Storage key written to %s\n", cfgFile)
		return nil
	},
}

func init() {
	keygenCmd.Flags().BoolVar(&keygenWrite, "write", false, "save the key to the config file")
	configCmd.AddCommand(configInitCmd, keygenCmd)
	rootCmd.AddCommand(configCmd)
}
