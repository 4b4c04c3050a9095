package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/core-memory/internal/codec"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Merge a document into core memory",
		Long:  "Merge a document produced by export (file or stdin). Entries already present are skipped.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read input", err)
	}

	doc, err := codec.Decode(data)
	if err != nil {
		exitErr("parse document", err)
	}

	cfg := loadConfig()
	s := openStore(cfg, newLogger(cfg))

	res, err := s.Import(cmd.Context(), doc)
	if err != nil {
		exitErr("import", err)
	}

	output(map[string]any{"ok": true, "inserted": res.Inserted, "duplicates": res.Duplicates}, func(w io.Writer) {
		fmt.Fprintf(w, "inserted %d, duplicates %d\n", res.Inserted, res.Duplicates)
	})
}
