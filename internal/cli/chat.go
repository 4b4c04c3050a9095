package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/core-memory/internal/agent"
	"github.com/rcliao/core-memory/internal/classifier"
	"github.com/rcliao/core-memory/internal/config"
	"github.com/rcliao/core-memory/internal/convlog"
	"github.com/rcliao/core-memory/internal/metrics"
	"github.com/rcliao/core-memory/internal/prompt"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the agent",
		Long:  "Interactive chat. Each line you send is answered by the agent and classified in the background for core memory. Type /exit or send EOF to quit.",
		Args:  cobra.NoArgs,
		Run:   runChat,
	}

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	cfg := loadConfig()
	logger := newLogger(cfg)
	s := openStore(cfg, logger)

	if err := s.Initialize(ctx); err != nil {
		exitErr("init store", err)
	}

	asm, err := prompt.New(s, prompt.Options{
		Name:     cfg.Agent.Name,
		UserName: cfg.Agent.UserName,
		Template: cfg.Agent.SystemTemplate,
	})
	if err != nil {
		exitErr("prompt", err)
	}

	profiler := classifier.NewProfiler(newGenerator(cfg, cfg.LLM.ProfilerModel), s, logger)
	worker := classifier.NewWorker(profiler, cfg.Classifier.QueueSize, logger)
	// Background classification outlives a cancelled turn so queued lines still drain.
	go worker.Run(context.WithoutCancel(ctx))
	defer worker.Close()

	opts := agent.Options{
		Prompter:   asm,
		Generator:  newGenerator(cfg, cfg.LLM.ChatModel),
		Classifier: worker,
		Logger:     logger,
	}
	if cfg.ConversationLog.Enabled {
		log, err := convlog.Open(cfg.ConversationLog.Path)
		if err != nil {
			exitErr("open conversation log", err)
		}
		defer log.Close()
		opts.Recorder = log
	}

	if cfg.Metrics.Enabled {
		srv := serveMetrics(cfg.Metrics, logger)
		defer srv.Close()
	}

	a, err := agent.New(opts)
	if err != nil {
		exitErr("agent", err)
	}
	logger.Debug("chat session started", "session", a.Session())

	out := cmd.OutOrStdout()
	sc := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprintf(out, "%s> ", cfg.Agent.UserName)
		if !sc.Scan() {
			fmt.Fprintln(out)
			return
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == "/exit" || line == "/quit" {
			return
		}

		reply, err := a.Chat(ctx, line)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", cfg.Agent.Name, reply)
	}
}

func serveMetrics(c config.MetricsConfig, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: c.Address, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "addr", c.Address, "err", err)
		}
	}()
	return srv
}
