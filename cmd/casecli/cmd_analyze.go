package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/agenthands/vynda/internal/config"
	"github.com/agenthands/vynda/internal/core/analysis"
	"github.com/agenthands/vynda/internal/core/model"
	"github.com/agenthands/vynda/internal/core/upload"
	"github.com/agenthands/vynda/internal/llm"
)

var analyzeFlags struct {
	denial   string
	policy   string
	text     string
	demo     bool
	noPolicy bool
	seed     int
	asJSON   bool
	verbose  bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a denial letter and print the case overview",
	Long: `Analyze a denial letter (and optionally the policy document) with the
configured model provider. Without a provider, or when the provider fails,
a simulated analysis is printed instead.

Usage:
  casecli analyze --denial letter.pdf --policy policy.pdf
  casecli analyze --text "Claim denied as experimental" --no-policy
  casecli analyze --demo`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.denial, "denial", "", "Path to the denial letter (PDF, image or text)")
	f.StringVar(&analyzeFlags.policy, "policy", "", "Path to the policy document")
	f.StringVar(&analyzeFlags.text, "text", "", "Denial text when no file is available")
	f.BoolVar(&analyzeFlags.demo, "demo", false, "Run the scripted demo case")
	f.BoolVar(&analyzeFlags.noPolicy, "no-policy", false, "Analyze without a policy document")
	f.IntVar(&analyzeFlags.seed, "seed", 0, "Seed for simulated results (default: config)")
	f.BoolVar(&analyzeFlags.asJSON, "json", false, "Print the raw analysis JSON")
	f.BoolVarP(&analyzeFlags.verbose, "verbose", "v", false, "Log provider activity to stderr")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	cfg, _, err := config.LoadOrDefault()
	if err != nil {
		return err
	}
	cfg.ApplyEnv()

	level := slog.LevelWarn
	if analyzeFlags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	req := analysis.Request{
		Text:     analyzeFlags.text,
		NoPolicy: analyzeFlags.noPolicy,
		Seed:     analyzeFlags.seed,
		Demo:     analyzeFlags.demo,
	}
	for _, f := range []struct {
		path  string
		label model.FileLabel
	}{
		{analyzeFlags.denial, model.LabelDenialLetter},
		{analyzeFlags.policy, model.LabelPolicyDoc},
	} {
		if f.path == "" {
			continue
		}
		file, err := readFile(f.path, f.label, cfg.Server.MaxUploadBytes)
		if err != nil {
			return err
		}
		req.Files = append(req.Files, file)
	}
	if !req.Demo && req.Text == "" && len(req.Files) == 0 {
		return fmt.Errorf("nothing to analyze\n\nUsage: casecli analyze --denial <file> | --text <text> | --demo")
	}
	if req.Text == "" {
		req.Text = "UPLOADED_FILE"
	}

	ctx := cmd.Context()
	var client llm.LLMClient
	if !req.Demo {
		client, err = llm.NewClient(ctx, cfg.LLM)
		if err != nil {
			return err
		}
	}

	analyzer := analysis.NewAnalyzer(client, cfg.Analysis, cfg.Prompts, clockwork.NewRealClock(), logger)
	out, err := analyzer.Analyze(ctx, req)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if analyzeFlags.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out.Result)
	}
	renderOverview(w, out, tableMode())
	return nil
}

func readFile(path string, label model.FileLabel, maxBytes int64) (model.UploadedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.UploadedFile{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return upload.FromBytes(path, data, label, maxBytes)
}
