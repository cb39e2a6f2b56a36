package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fundsight/docintel/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "docintel",
	Short: "Investment fund document intelligence pipeline",
	Long:  "Classifies fund documents (capital calls, distributions, valuations, quarterly updates), extracts structured fields via Claude with regex fallbacks, and stores results.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
