package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/core-memory/internal/convlog"
)

func init() {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "List recorded conversation turns",
		Long:  "List recorded conversation turns, newest first. With --days, list the days that have turns instead.",
		Args:  cobra.NoArgs,
		Run:   runLog,
	}

	cmd.Flags().String("session", "", "Filter by session ID")
	cmd.Flags().String("day", "", "Filter by day (YYYY-MM-DD, UTC)")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Bool("days", false, "List days with turn counts")

	RootCmd.AddCommand(cmd)
}

func runLog(cmd *cobra.Command, args []string) {
	session, _ := cmd.Flags().GetString("session")
	day, _ := cmd.Flags().GetString("day")
	limit, _ := cmd.Flags().GetInt("limit")
	days, _ := cmd.Flags().GetBool("days")

	cfg := loadConfig()
	if !cfg.ConversationLog.Enabled {
		exitErr("log", fmt.Errorf("conversation_log is disabled"))
	}

	l, err := convlog.Open(cfg.ConversationLog.Path)
	if err != nil {
		exitErr("open conversation log", err)
	}
	defer l.Close()

	if days {
		counts, err := l.Days(cmd.Context())
		if err != nil {
			exitErr("log", err)
		}
		if counts == nil {
			counts = []convlog.DayCount{}
		}
		output(counts, func(w io.Writer) {
			for _, d := range counts {
				fmt.Fprintf(w, "%s\t%d\n", d.Day, d.Count)
			}
		})
		return
	}

	turns, err := l.List(cmd.Context(), convlog.ListParams{SessionID: session, Day: day, Limit: limit})
	if err != nil {
		exitErr("log", err)
	}
	if turns == nil {
		turns = []convlog.Turn{}
	}
	output(turns, func(w io.Writer) {
		for _, t := range turns {
			fmt.Fprintf(w, "%s  %s\n  > %s\n  < %s\n", t.CreatedAt.Format(time.RFC3339), t.SessionID, t.User, t.Reply)
		}
	})
}
