package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/freshxpress/dashboard/internal/crypto"
	"github.com/spf13/cobra"
)

// TODO(genmasterkey-rotate): archive the old key with a version tag instead of refusing to overwrite.

var keyFile string

var rootCmd = &cobra.Command{
	Use:   "genmasterkey",
	Short: "Write a new random master key",
	Long: `Writes a 32 byte random key, hex encoded, for the dashboard session
cookies (and the stub backend's token signing). An existing file is never
overwritten.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(keyFile); err == nil {
			return fmt.Errorf("%s already exists. Refusing to overwrite", keyFile)
		}
		key, err := crypto.GenerateMasterKey()
		if err != nil {
			return fmt.Errorf("generating random key: %w", err)
		}
		if err := os.WriteFile(keyFile, []byte(hex.EncodeToString(key)+"\n"), 0600); err != nil {
			return fmt.Errorf("writing %s: %w", keyFile, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Master key written to %s\n", keyFile)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&keyFile, "out", "o", "master.key", "where to write the hex encoded key")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
