package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/vynda/internal/config"
	"github.com/agenthands/vynda/internal/core/analysis"
	"github.com/agenthands/vynda/internal/core/probability"
	"github.com/agenthands/vynda/internal/core/schedule"
	"github.com/agenthands/vynda/internal/core/session"
)

var simulateFlags struct {
	seed     int
	baseline int
}

var simulateCmd = &cobra.Command{
	Use:   "simulate [item-id...]",
	Short: "Replay evidence toggles on the demo case",
	Long: `Flip checklist items of the demo case in the given order and print the
appeal probability after each flip.

Usage:
  casecli simulate doc_1 doc_2 doc_1
  casecli simulate --baseline 95 doc_3 doc_3`,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.IntVar(&simulateFlags.seed, "seed", config.Default().Analysis.Seed, "Seed for the demo case")
	f.IntVar(&simulateFlags.baseline, "baseline", -1, "Override the starting probability")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	result := analysis.Mock(simulateFlags.seed, analysis.DemoPatient)
	baseline := result.CaseSummary.WinProbabilityPercent
	if simulateFlags.baseline >= 0 {
		baseline = simulateFlags.baseline
	}

	cfg := config.Default()
	sched := schedule.NewManual()
	engine := probability.New(session.EvidenceSeeds(result.MissingEvidence.ChecklistItems), baseline, sched, probability.OptionsFromConfig(cfg.Probability))
	defer engine.Close()

	steps := make([]simulationStep, 0, len(args))
	for _, id := range args {
		if !engine.Has(id) {
			return fmt.Errorf("unknown evidence item %q", id)
		}
		engine.Flip(id)
		steps = append(steps, simulationStep{Item: id, Snapshot: engine.Snapshot()})
	}
	// let the last animation and delta badge settle
	sched.Advance(cfg.Probability.DeltaWindow())

	renderSimulation(cmd.OutOrStdout(), engine.Snapshot(), steps, tableMode())
	return nil
}
