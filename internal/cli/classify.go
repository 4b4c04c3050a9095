package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rcliao/core-memory/internal/classifier"
	"github.com/rcliao/core-memory/internal/config"
	"github.com/rcliao/core-memory/internal/llm"
)

func init() {
	cmd := &cobra.Command{
		Use:   "classify [line]",
		Short: "Classify lines and store the proposals",
		Long:  "Ask the profiler model whether each line belongs in core memory and store what it proposes. Reads one line from args or one line per stdin line.",
		Run:   runClassify,
	}

	cmd.Flags().Bool("dry-run", false, "Print proposals without storing them")

	RootCmd.AddCommand(cmd)
}

type classifyResult struct {
	Line     string               `json:"line"`
	Outcome  classifier.Outcome   `json:"outcome"`
	Proposal *classifier.Proposal `json:"proposal,omitempty"`
	Error    string               `json:"error,omitempty"`
}

func newGenerator(cfg *config.Config, model string) *llm.Anthropic {
	if cfg.LLM.APIKey == "" {
		exitErr("llm", errors.New("llm.api_key is empty (set ANTHROPIC_API_KEY)"))
	}
	return llm.NewAnthropic(cfg.LLM.APIKey, model, cfg.LLM.MaxTokens)
}

func runClassify(cmd *cobra.Command, args []string) {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	var lines []string
	sc := bufio.NewScanner(strings.NewReader(readInput(args)))
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		exitErr("classify", fmt.Errorf("a line is required (positional arg or stdin)"))
	}

	cfg := loadConfig()
	logger := newLogger(cfg)
	s := openStore(cfg, logger)
	p := classifier.NewProfiler(newGenerator(cfg, cfg.LLM.ProfilerModel), s, logger)

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, line := range lines {
		r := classifyResult{Line: line}
		if dryRun {
			prop, ok, err := p.Classify(cmd.Context(), line)
			switch {
			case err != nil:
				r.Outcome, r.Error = classifier.OutcomeError, err.Error()
			case ok:
				r.Outcome, r.Proposal = classifier.OutcomeStored, &prop
			default:
				r.Outcome = classifier.OutcomeSkipped
			}
		} else {
			outcome, err := p.Process(cmd.Context(), line)
			r.Outcome = outcome
			if err != nil {
				r.Error = err.Error()
			}
		}
		if formatFlag == formatText {
			printClassifyText(cmd.OutOrStdout(), r)
			continue
		}
		if err := enc.Encode(r); err != nil {
			exitErr("output", err)
		}
	}
}

func printClassifyText(w io.Writer, r classifyResult) {
	fmt.Fprintf(w, "%-9s %s\n", r.Outcome, r.Line)
	if r.Proposal != nil {
		fmt.Fprintf(w, "          [%s] %s (%s)\n", r.Proposal.Slot, r.Proposal.Entry, r.Proposal.Reason)
	}
	if r.Error != "" {
		fmt.Fprintf(w, "          error: %s\n", r.Error)
	}
}
