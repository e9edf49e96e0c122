package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clearsight-health/riskscore/internal/model"
)

var (
	questionsJSON bool
	bandsJSON     bool
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List the active question catalog",
	RunE:  runQuestions,
}

var bandsCmd = &cobra.Command{
	Use:   "bands",
	Short: "List the configured advice bands",
	RunE:  runBands,
}

func init() {
	questionsCmd.Flags().BoolVar(&questionsJSON, "json", false, "emit the catalog as JSON")
	bandsCmd.Flags().BoolVar(&bandsJSON, "json", false, "emit the bands as JSON")
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(bandsCmd)
}

func runQuestions(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	eng, s, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	questions, err := eng.Catalog(ctx)
	if err != nil {
		return err
	}

	if questionsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(questions)
	}

	out := cmd.OutOrStdout()
	var category string
	for _, q := range questions {
		if q.Category != category {
			category = q.Category
			fmt.Fprintf(out, "\n[%s]\n", category)
		}
		fmt.Fprintf(out, "  %s  %s (%s)\n", q.ID, q.Text, q.Type)
		for _, o := range q.Options {
			score := 0
			if o.Score != nil {
				score = *o.Score
			}
			fmt.Fprintf(out, "      - %s (%d)\n", optionLabel(o), score)
		}
	}
	return nil
}

func optionLabel(o model.Option) string {
	if o.Label != "" && o.Label != o.Value {
		return fmt.Sprintf("%s: %s", o.Value, o.Label)
	}
	return o.Value
}

func runBands(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	eng, s, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	bands, err := eng.AdviceBands(ctx)
	if err != nil {
		return err
	}

	if bandsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(bands)
	}

	out := cmd.OutOrStdout()
	for _, b := range bands {
		fmt.Fprintf(out, "%-10s %3d - %3d  %s\n", b.Tier, b.MinScore, b.MaxScore, b.Advice)
	}
	return nil
}
