package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clearsight-health/riskscore/internal/store"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load questions and advice bands from a YAML file into the store",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "questionnaire.yaml", "path to the seed YAML file")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sf, err := store.LoadSeedFile(seedFile)
	if err != nil {
		return err
	}

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	questions, options, bands, err := sf.Apply(ctx, s)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d questions, %d options, %d advice bands\n", questions, options, bands)
	return nil
}
