package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmallet/valuecheck/internal/resolver"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local ratio cache",
}

// cacheInvalidateCmd removes one ticker from the cache
var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate TICKER",
	Short: "Drop the cached entry for one ticker",
	Long: `Removes the cached ratio snapshot for a ticker so the next lookup
goes back to the data sources.

Example:
  valuecheck cache invalidate CAP.PA`,
	Args: cobra.ExactArgs(1),
	RunE: runCacheInvalidate,
}

// cacheClearCmd empties the cache
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached entry",
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheInvalidate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ticker := resolver.NormalizeTicker(args[0])
	if err := a.Cache.Invalidate(ctx, ticker); err != nil {
		return err
	}

	fmt.Printf("Invalidated %s\n", ticker)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.Cache.Clear(ctx); err != nil {
		return err
	}

	fmt.Println("Cache cleared")
	return nil
}
