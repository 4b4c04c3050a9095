package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-slot counts",
		Args:  cobra.NoArgs,
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	s := openStore(cfg, newLogger(cfg))

	stats, err := s.Stats(cmd.Context())
	if err != nil {
		exitErr("stats", err)
	}

	output(stats, func(w io.Writer) {
		fmt.Fprintf(w, "path: %s (%d bytes)\n", stats.Path, stats.SizeBytes)
		fmt.Fprintf(w, "entries: %d\n", stats.Total)
		for _, ss := range stats.Slots {
			fmt.Fprintf(w, "  %-12s %d\n", ss.Slot, ss.Count)
		}
		if stats.LastCreated != nil {
			fmt.Fprintf(w, "last created: %s\n", stats.LastCreated.Format(time.RFC3339))
		}
	})
}
