// Package cli implements the core-memory CLI commands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/core-memory/internal/config"
	"github.com/rcliao/core-memory/internal/store"
)

var (
	configPath string
	storePath  string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "core-memory",
	Short: "Core memory for a conversational agent",
	Long:  "Six fixed slots of long-lived facts about the user, kept in one JSON document. Entries are deduplicated and never rewritten.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return checkFormat(formatFlag)
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (YAML)")
	RootCmd.PersistentFlags().StringVarP(&storePath, "path", "p", "", "Core memory path (default: $"+config.EnvStorePath+" or ~/.core-memory/core_memory.json)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", formatJSON, "Output format: json or text")
}

// loadConfig resolves configuration. The --path flag wins over everything else.
func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitErr("load config", err)
	}
	if storePath != "" {
		p, err := config.ExpandHome(storePath)
		if err != nil {
			exitErr("resolve path", err)
		}
		cfg.Store.Path = p
	}
	return cfg
}

func newLogger(cfg *config.Config) *slog.Logger {
	logger := config.NewLogger(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)
	return logger
}

func openStore(cfg *config.Config, logger *slog.Logger) *store.FileStore {
	s, err := store.NewFileStore(store.Options{
		Path:        cfg.Store.Path,
		LockTimeout: cfg.Store.LockTimeout,
		Logger:      logger,
	})
	if err != nil {
		exitErr("open store", err)
	}
	return s
}

// readInput returns the positional args joined, or stdin when it is piped.
func readInput(args []string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		return string(b)
	}
	return ""
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
