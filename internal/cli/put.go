package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/core-memory/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "put [entry]",
		Short: "Add an entry to a slot",
		Long:  "Add an entry to a slot. The entry can be a positional arg or piped via stdin. Entries already present in the slot are reported as duplicates.",
		Run:   runPut,
	}

	cmd.Flags().StringP("slot", "s", "", "Slot: identity, preferences, ethics, values, ideology, boundaries (required)")
	cmd.Flags().StringP("reason", "r", "", "Why this entry is worth remembering")

	cmd.MarkFlagRequired("slot")

	RootCmd.AddCommand(cmd)
}

func runPut(cmd *cobra.Command, args []string) {
	slotFlag, _ := cmd.Flags().GetString("slot")
	reason, _ := cmd.Flags().GetString("reason")

	slot, err := model.ParseSlot(slotFlag)
	if err != nil {
		exitErr("put", err)
	}

	entry := strings.TrimSpace(readInput(args))
	if entry == "" {
		exitErr("put", fmt.Errorf("entry is required (positional arg or stdin)"))
	}

	cfg := loadConfig()
	s := openStore(cfg, newLogger(cfg))

	res, err := s.Upsert(cmd.Context(), slot, entry, strings.TrimSpace(reason))
	if err != nil {
		exitErr("put", err)
	}

	id := model.Fingerprint(model.CleanText(entry))
	output(map[string]string{
		"slot":   string(slot),
		"id":     id,
		"result": res.String(),
	}, func(w io.Writer) {
		fmt.Fprintf(w, "%s %s %s\n", res, slot, id[:12])
	})
}
