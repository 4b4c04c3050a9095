package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/core-memory/internal/codec"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the document as JSON",
		Long:  "Write the full document in its on-disk format to stdout or to --out.",
		Args:  cobra.NoArgs,
		Run:   runExport,
	}

	cmd.Flags().StringP("out", "o", "", "Output file (default: stdout)")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	out, _ := cmd.Flags().GetString("out")

	cfg := loadConfig()
	s := openStore(cfg, newLogger(cfg))

	doc, err := s.Load(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}

	b, err := codec.Encode(doc)
	if err != nil {
		exitErr("encode", err)
	}

	if out == "" {
		os.Stdout.Write(b)
		return
	}
	if err := os.WriteFile(out, b, 0o644); err != nil {
		exitErr("write export", err)
	}
}
