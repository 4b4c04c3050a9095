package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the core memory document",
		Long:  "Create the core memory document with six empty slots. An existing document is left untouched.",
		Args:  cobra.NoArgs,
		Run:   runInit,
	}

	RootCmd.AddCommand(cmd)
}

func runInit(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	s := openStore(cfg, newLogger(cfg))

	if err := s.Initialize(cmd.Context()); err != nil {
		exitErr("init", err)
	}
	output(map[string]any{"ok": true, "path": s.Path()}, func(w io.Writer) {
		fmt.Fprintf(w, "initialized %s\n", s.Path())
	})
}
