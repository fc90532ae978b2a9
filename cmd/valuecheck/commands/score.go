package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmallet/valuecheck/internal/models"
	"github.com/pmallet/valuecheck/internal/scoring"
)

var (
	scoreProfile string
	scoreJSON    bool
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score TICKER",
	Short: "Fetch ratios and score one stock",
	Long: `Resolves a ticker through the cache and data-source chain, then
scores it under the selected investment profile.

Example:
  valuecheck score CAP.PA
  valuecheck score AAPL --profile dividend
  valuecheck score MSFT --json`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&scoreProfile, "profile", "value", "scoring profile (value|growth|dividend)")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "emit raw JSON instead of a table")
}

func runScore(cmd *cobra.Command, args []string) error {
	profile, err := scoring.ParseProfileType(scoreProfile)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	res, err := a.Resolver.Resolve(ctx, args[0])
	if err != nil {
		return err
	}

	score, err := a.Scorer.Score(res.Data.Ratios, profile)
	if err != nil {
		return err
	}

	if scoreJSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"ticker":     res.Data.Ticker,
			"data":       res.Data,
			"source":     res.Source,
			"from_cache": res.FromCache,
			"stale":      res.Stale,
			"profile":    profile,
			"score":      score,
		})
	}

	printScore(res, score, profile)
	return nil
}

func printScore(res *models.Resolution, score *models.ScoreResult, profile scoring.ProfileType) {
	name := res.Data.Ticker
	if res.Data.Name != "" {
		name = fmt.Sprintf("%s (%s)", res.Data.Name, res.Data.Ticker)
	}

	origin := string(res.Source)
	if res.FromCache {
		origin += " (cached)"
	}
	if res.Stale {
		origin += " [STALE]"
	}

	fmt.Printf("%s\n", name)
	if res.Data.Price > 0 {
		fmt.Printf("Price:   %.2f %s\n", res.Data.Price, res.Data.Currency)
	}
	fmt.Printf("Source:  %s\n", origin)
	fmt.Printf("Profile: %s\n\n", profile)

	fmt.Printf("%-15s %10s %10s %8s %13s\n", "RATIO", "VALUE", "SUB-SCORE", "WEIGHT", "CONTRIBUTION")
	fmt.Println(strings.Repeat("-", 60))
	for _, b := range score.Breakdown {
		raw := "n/a"
		if b.RawValue != nil {
			raw = fmt.Sprintf("%.2f", *b.RawValue)
		}
		fmt.Printf("%-15s %10s %10.1f %8.2f %13.2f\n", b.Name, raw, b.SubScore, b.Weight, b.Contribution)
	}
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("\nScore:   %.1f / 100\n", score.Score)
	fmt.Printf("Verdict: %s\n", score.Verdict)
}
