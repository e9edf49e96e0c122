package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clearsight-health/riskscore/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "riskscore",
	Short: "Questionnaire-based risk assessment engine",
	Long:  "Scores questionnaire answers against a clinician-configurable catalog, resolves a risk tier and advice from administrator-defined score bands, and degrades gracefully when the configuration store is unreachable.",
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
