package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/core-memory/internal/codec"
	"github.com/rcliao/core-memory/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the full document",
		Long:  "Print the full document with ids, reasons and timestamps. Unlike snapshot, a missing or corrupt document is an error.",
		Args:  cobra.NoArgs,
		Run:   runShow,
	}

	RootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	s := openStore(cfg, newLogger(cfg))

	doc, err := s.Load(cmd.Context())
	if errors.Is(err, store.ErrNotInitialized) {
		exitErr("show", fmt.Errorf("%w: run `core-memory init` first", err))
	}
	if err != nil {
		exitErr("show", err)
	}

	b, err := codec.Encode(doc)
	if err != nil {
		exitErr("encode", err)
	}
	os.Stdout.Write(b)
}
