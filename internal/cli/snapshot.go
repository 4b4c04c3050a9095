package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/core-memory/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print entry texts per slot",
		Long:  "Print the entry texts of every slot as compact JSON. A missing or unreadable document prints six empty slots.",
		Args:  cobra.NoArgs,
		Run:   runSnapshot,
	}

	RootCmd.AddCommand(cmd)
}

func runSnapshot(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	s := openStore(cfg, newLogger(cfg))

	snap := s.Snapshot(cmd.Context())
	if formatFlag != formatText {
		fmt.Println(snap.JSON())
		return
	}
	for _, slot := range model.Slots {
		fmt.Printf("%s:\n", slot)
		for _, e := range snap[slot] {
			fmt.Printf("  - %s\n", e)
		}
	}
}
