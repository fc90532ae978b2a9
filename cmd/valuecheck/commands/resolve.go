package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmallet/valuecheck/internal/models"
)

var resolveJSON bool

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve TICKER...",
	Short: "Fetch raw ratios without scoring",
	Long: `Resolves tickers through the cache and data-source chain and prints
the raw ratio values, without applying any scoring profile.

Example:
  valuecheck resolve CAP.PA
  valuecheck resolve AAPL MSFT --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "emit raw JSON instead of a table")
}

func runResolve(cmd *cobra.Command, args []string) error {
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

	if resolveJSON {
		out := make([]map[string]interface{}, 0, len(results))
		for _, result := range results {
			if result.Err != nil {
				out = append(out, map[string]interface{}{
					"ticker": result.Ticker,
					"error":  result.Err.Error(),
				})
				continue
			}
			out = append(out, map[string]interface{}{
				"ticker":     result.Ticker,
				"data":       result.Resolution.Data,
				"source":     result.Resolution.Source,
				"from_cache": result.Resolution.FromCache,
				"stale":      result.Resolution.Stale,
			})
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	for i, result := range results {
		if i > 0 {
			fmt.Println()
		}
		if result.Err != nil {
			fmt.Printf("%s: ERROR: %v\n", result.Ticker, result.Err)
			continue
		}
		printResolution(result.Resolution)
	}

	return nil
}

func printResolution(res *models.Resolution) {
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
		fmt.Printf("Price:  %.2f %s\n", res.Data.Price, res.Data.Currency)
	}
	fmt.Printf("Source: %s\n", origin)
	fmt.Printf("As of:  %s\n", res.Data.AsOf.Format(time.RFC3339))

	names := make([]string, 0, len(res.Data.Ratios))
	for n := range res.Data.Ratios {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %-15s %10.2f\n", n, res.Data.Ratios[n])
	}
}
