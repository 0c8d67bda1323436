package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchK int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search stored memories by semantic similarity",
	Long: `Search memories in the current scope, most similar first.

Examples:
  recall search "where does the user live?"
  recall search --user alice -k 10 "pets"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchK, "limit", "k", 5, "maximum number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	_, logger, engine, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		_ = engine.Close()
		_ = logger.Sync()
	}()

	results, err := engine.Search(cmd.Context(), query, searchK, scopeOpts()...)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No memories found.")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%.3f  %s  (%s)\n", r.Similarity, r.Content, r.CreatedAt.Format("2006-01-02"))
	}
	return nil
}
