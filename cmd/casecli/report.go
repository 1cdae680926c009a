package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/agenthands/vynda/internal/core/analysis"
	"github.com/agenthands/vynda/internal/core/probability"
)

type renderMode int

const (
	modeASCII renderMode = iota
	modeMarkdown
)

func tableMode() renderMode {
	if rootFlags.markdown {
		return modeMarkdown
	}
	return modeASCII
}

func newTable(m renderMode) table.Writer {
	w := table.NewWriter()
	if m == modeASCII {
		w.SetStyle(table.StyleLight)
	}
	return w
}

func render(out io.Writer, w table.Writer, m renderMode) {
	if m == modeMarkdown {
		fmt.Fprintln(out, w.RenderMarkdown())
	} else {
		fmt.Fprintln(out, w.Render())
	}
	fmt.Fprintln(out)
}

func renderOverview(out io.Writer, o *analysis.Outcome, m renderMode) {
	r := o.Result
	s := r.CaseSummary

	summary := newTable(m)
	summary.SetTitle("Case Overview")
	summary.AppendRows([]table.Row{
		{"Patient", s.PatientName},
		{"Payer", s.Payer},
		{"Procedure", s.Procedure},
		{"Denial reason", s.DenialReasonRaw},
		{"True cause", s.TrueDenialCause},
		{"Fairness", s.FairnessAssessment},
		{"Win probability", fmt.Sprintf("%d%% (%s)", s.WinProbabilityPercent, probability.Rating(s.WinProbabilityPercent))},
		{"Source", o.Source},
	})
	summary.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 80}})
	render(out, summary, m)

	if len(r.PolicyAnalysis.InsurerClaimVsPolicy) > 0 {
		gaps := newTable(m)
		gaps.SetTitle("Reality Gaps")
		gaps.AppendHeader(table.Row{"Severity", "Insurer claim", "Actual policy"})
		for _, g := range r.PolicyAnalysis.InsurerClaimVsPolicy {
			gaps.AppendRow(table.Row{g.Severity, g.InsurerClaim, g.ActualPolicy})
		}
		gaps.SetColumnConfigs([]table.ColumnConfig{
			{Number: 2, WidthMax: 40},
			{Number: 3, WidthMax: 40},
		})
		render(out, gaps, m)
	}

	evidence := newTable(m)
	evidence.SetTitle("Missing Evidence")
	evidence.AppendHeader(table.Row{"ID", "Item", "Importance", "Impact"})
	for _, it := range r.MissingEvidence.ChecklistItems {
		evidence.AppendRow(table.Row{it.ID, it.Label, it.Importance, it.ImpactIfAdded})
	}
	evidence.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 50},
		{Number: 4, Align: text.AlignRight},
	})
	render(out, evidence, m)

	if len(r.MemoryCases) > 0 {
		cases := newTable(m)
		cases.SetTitle("Similar Cases")
		cases.AppendHeader(table.Row{"ID", "Similarity", "Outcome", "Days", "Key lever"})
		for _, c := range r.MemoryCases {
			cases.AppendRow(table.Row{c.ID, fmt.Sprintf("%.0f%%", c.SimilarityScore*100), c.Outcome, c.ResolutionTimeDays, c.KeyLever})
		}
		st := r.CollectiveStats
		cases.AppendFooter(table.Row{"", "", fmt.Sprintf("%d%% won", st.WinRate), st.AvgResolutionDays, st.TotalRecovered})
		cases.SetColumnConfigs([]table.ColumnConfig{
			{Number: 2, Align: text.AlignRight},
			{Number: 4, Align: text.AlignRight},
		})
		render(out, cases, m)
	}
}

type simulationStep struct {
	Item     string
	Snapshot probability.Snapshot
}

func renderSimulation(out io.Writer, final probability.Snapshot, steps []simulationStep, m renderMode) {
	t := newTable(m)
	t.SetTitle("Evidence Simulation")
	t.AppendHeader(table.Row{"#", "Item", "Present", "Delta", "Target", "Rating"})
	t.AppendRow(table.Row{0, "baseline", "", "", final.Baseline, probability.Rating(final.Baseline)})
	for i, s := range steps {
		delta := ""
		if s.Snapshot.LastDelta != nil {
			delta = fmt.Sprintf("%+d", *s.Snapshot.LastDelta)
		}
		present := false
		for _, it := range s.Snapshot.Items {
			if it.ID == s.Item {
				present = it.Present
			}
		}
		t.AppendRow(table.Row{i + 1, s.Item, present, delta, s.Snapshot.Target, probability.Rating(s.Snapshot.Target)})
	}
	t.AppendFooter(table.Row{"", "", "", "", final.Displayed, final.Rating})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	render(out, t, m)
}
