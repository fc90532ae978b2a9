package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmallet/valuecheck/internal/scoring"
)

var (
	batchProfile string
	batchJSON    bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch TICKER...",
	Short: "Score up to 10 stocks in one run",
	Long: `Resolves and scores several tickers concurrently. One failing
ticker does not abort the others; its error is reported in place.

Example:
  valuecheck batch AAPL MSFT GOOG
  valuecheck batch CAP.PA SAN.PA --profile dividend`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchProfile, "profile", "value", "scoring profile (value|growth|dividend)")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "emit raw JSON instead of a table")
}

func runBatch(cmd *cobra.Command, args []string) error {
	profile, err := scoring.ParseProfileType(batchProfile)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	results, err := a.Resolver.ResolveBatch(ctx, args)
	if err != nil {
		return err
	}

	type row struct {
		Ticker  string  `json:"ticker"`
		Score   float64 `json:"score,omitempty"`
		Verdict string  `json:"verdict,omitempty"`
		Source  string  `json:"source,omitempty"`
		Stale   bool    `json:"stale,omitempty"`
		Error   string  `json:"error,omitempty"`
	}

	rows := make([]row, 0, len(results))
	for _, result := range results {
		if result.Err != nil {
			rows = append(rows, row{Ticker: result.Ticker, Error: result.Err.Error()})
			continue
		}

		score, scoreErr := a.Scorer.Score(result.Resolution.Data.Ratios, profile)
		if scoreErr != nil {
			rows = append(rows, row{Ticker: result.Ticker, Error: scoreErr.Error()})
			continue
		}

		rows = append(rows, row{
			Ticker:  result.Ticker,
			Score:   score.Score,
			Verdict: string(score.Verdict),
			Source:  string(result.Resolution.Source),
			Stale:   result.Resolution.Stale,
		})
	}

	if batchJSON {
		return json.NewEncoder(os.Stdout).Encode(rows)
	}

	fmt.Printf("%-10s %7s  %-28s %-14s\n", "TICKER", "SCORE", "VERDICT", "SOURCE")
	for _, r := range rows {
		if r.Error != "" {
			fmt.Printf("%-10s %7s  %s\n", r.Ticker, "-", "ERROR: "+r.Error)
			continue
		}
		source := r.Source
		if r.Stale {
			source += " [STALE]"
		}
		fmt.Printf("%-10s %7.1f  %-28s %-14s\n", r.Ticker, r.Score, r.Verdict, source)
	}

	return nil
}
