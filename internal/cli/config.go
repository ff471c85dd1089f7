package cli

import (
	"fmt"

	"github.com/jrsteele09/go-rental-session/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "List the environment variables rentalctl reads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.Describe())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
