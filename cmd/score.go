package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scoreAnswersFile string
	scoreAnswers     []string
	scoreJSON        bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Calculate a risk score from a set of answers",
	Long: `Calculates a glaucoma risk score from submitted answers.

Answers can be supplied inline with repeated --answer key=value flags or as a
JSON object with --answers. Keys may be question IDs or legacy field names.`,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreAnswersFile, "answers", "", "path to a JSON file of answers keyed by question ID or field name")
	scoreCmd.Flags().StringArrayVar(&scoreAnswers, "answer", nil, "inline answer as key=value (repeatable)")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "emit the result as JSON")
	rootCmd.AddCommand(scoreCmd)
}

func collectAnswers() (map[string]string, error) {
	answers := make(map[string]string)

	if scoreAnswersFile != "" {
		raw, err := os.ReadFile(scoreAnswersFile)
		if err != nil {
			return nil, eris.Wrap(err, "score: read answers file")
		}
		if err := json.Unmarshal(raw, &answers); err != nil {
			return nil, eris.Wrap(err, "score: parse answers file")
		}
	}

	for _, kv := range scoreAnswers {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, eris.Errorf("score: malformed --answer %q, expected key=value", kv)
		}
		answers[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}

	if len(answers) == 0 {
		return nil, eris.New("score: no answers supplied, use --answers or --answer")
	}
	return answers, nil
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	answers, err := collectAnswers()
	if err != nil {
		return err
	}

	eng, s, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	result := eng.CalculateRiskScore(ctx, answers)
	zap.L().Info("score: calculated",
		zap.Int("total", result.TotalScore),
		zap.String("tier", string(result.RiskTier)),
		zap.Int("factors", len(result.ContributingFactors)))

	if scoreJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total score: %d\n", result.TotalScore)
	fmt.Fprintf(out, "Risk tier:   %s\n", result.RiskTier)
	fmt.Fprintf(out, "Advice:      %s\n", result.Advice)
	if len(result.ContributingFactors) > 0 {
		fmt.Fprintln(out, "\nContributing factors:")
		for _, f := range result.ContributingFactors {
			fmt.Fprintf(out, "  %-50s %-20s +%d\n", f.Question, f.Answer, f.Score)
		}
	}
	return nil
}
