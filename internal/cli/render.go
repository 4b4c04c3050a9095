package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
)

const (
	formatJSON = "json"
	formatText = "text"
)

func checkFormat(format string) error {
	switch format {
	case formatJSON, formatText:
		return nil
	}
	return fmt.Errorf("invalid --format %q (use json or text)", format)
}

// render writes v as indented JSON, or through text when format is "text".
func render(w io.Writer, format string, v any, text func(io.Writer)) error {
	if format == formatText && text != nil {
		text(w)
		return nil
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// output renders to stdout using the --format flag.
func output(v any, text func(io.Writer)) {
	if err := render(os.Stdout, formatFlag, v, text); err != nil {
		exitErr("output", err)
	}
}
