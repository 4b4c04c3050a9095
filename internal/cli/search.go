package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/core-memory/internal/model"
	"github.com/rcliao/core-memory/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search entries by keyword",
		Long:  "Search entry texts and reasons for matching text, case-insensitively.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().StringP("slot", "s", "", "Filter by slot")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	slotFlag, _ := cmd.Flags().GetString("slot")
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	var slot model.Slot
	if slotFlag != "" {
		var err error
		if slot, err = model.ParseSlot(slotFlag); err != nil {
			exitErr("search", err)
		}
	}

	cfg := loadConfig()
	s := openStore(cfg, newLogger(cfg))

	results, err := s.Search(cmd.Context(), store.SearchParams{
		Query: query,
		Slot:  slot,
		Limit: limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	if results == nil {
		results = []store.SearchResult{}
	}
	output(results, func(w io.Writer) {
		for _, r := range results {
			fmt.Fprintf(w, "[%s] %s (%s)\n", r.Slot, r.Entry.Entry, r.Reason)
		}
	})
}
