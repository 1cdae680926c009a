package model

import (
	"encoding/json"
	"math"
)

type Fairness string

const (
	FairnessUnfair   Fairness = "Unfair"
	FairnessStandard Fairness = "Standard"
	FairnessGrayArea Fairness = "Gray Area"
)

type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityMajor    Severity = "Major"
	SeverityMinor    Severity = "Minor"
)

type Importance string

const (
	ImportanceCritical  Importance = "Critical"
	ImportanceImportant Importance = "Important"
	ImportanceHelpful   Importance = "Helpful"
)

type CaseSummary struct {
	PatientName           string   `json:"patient_name"`
	Payer                 string   `json:"payer"`
	Procedure             string   `json:"procedure"`
	DenialReasonRaw       string   `json:"denial_reason_raw"`
	TrueDenialCause       string   `json:"true_denial_cause"`
	FairnessAssessment    Fairness `json:"fairness_assessment"`
	WinProbabilityPercent int      `json:"win_probability_percent"`
	OverallRationale      string   `json:"overall_rationale"`
}

// UnmarshalJSON accepts a fractional win probability (models sometimes send
// 87.5) and rounds it to the nearest percent within [0, 100].
func (c *CaseSummary) UnmarshalJSON(data []byte) error {
	type plain CaseSummary
	aux := struct {
		*plain
		WinProbabilityPercent float64 `json:"win_probability_percent"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.WinProbabilityPercent = roundPercent(aux.WinProbabilityPercent)
	return nil
}

func roundPercent(v float64) int {
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

type PolicySection struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
	Relevance string `json:"relevance"`
}

// RealityGap contrasts what the insurer claimed with what the policy says.
type RealityGap struct {
	InsurerClaim string   `json:"insurer_claim"`
	ActualPolicy string   `json:"actual_policy"`
	Comment      string   `json:"vynda_comment"`
	Severity     Severity `json:"severity"`
}

type PolicyAnalysis struct {
	ReferencedSections   []PolicySection `json:"referenced_sections"`
	InsurerClaimVsPolicy []RealityGap    `json:"insurer_claim_vs_policy"`
}

// MemoryCase is a precedent returned by the analysis.
type MemoryCase struct {
	ID                 string  `json:"id"`
	SimilarityScore    float64 `json:"similarity_score"`
	Payer              string  `json:"payer"`
	ProcedureType      string  `json:"procedure_type"`
	Outcome            string  `json:"outcome"`
	ResolutionTimeDays int     `json:"resolution_time_days"`
	SimilarityReason   string  `json:"similarity_reason"`
	KeyLever           string  `json:"key_lever"`
	StrategyDetail     string  `json:"strategy_detail"`
}

// MissingEvidenceItem is one checklist entry. ImpactWeight, when present, wins
// over the free-text ImpactIfAdded.
type MissingEvidenceItem struct {
	ID            string     `json:"id"`
	Label         string     `json:"label"`
	Importance    Importance `json:"importance"`
	ImpactIfAdded string     `json:"impact_if_added"`
	ImpactWeight  *int       `json:"impact_weight,omitempty"`
	WhyItMatters  string     `json:"why_it_matters"`
}

// UnmarshalJSON rounds a fractional impact_weight; a negative one is dropped
// so the impact descriptor decides the weight.
func (m *MissingEvidenceItem) UnmarshalJSON(data []byte) error {
	type plain MissingEvidenceItem
	aux := struct {
		*plain
		ImpactWeight *float64 `json:"impact_weight,omitempty"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.ImpactWeight = nil
	if aux.ImpactWeight != nil && *aux.ImpactWeight >= 0 {
		w := roundPercent(*aux.ImpactWeight)
		m.ImpactWeight = &w
	}
	return nil
}

type MissingEvidence struct {
	ChecklistItems []MissingEvidenceItem `json:"checklist_items"`
	Summary        string                `json:"vynda_summary"`
}

type AppealLetter struct {
	Title                  string   `json:"title"`
	Body                   string   `json:"body"`
	KeyArguments           []string `json:"key_arguments"`
	RecommendedAttachments []string `json:"recommended_attachments"`
	StrategicNotes         string   `json:"strategic_notes"`
}

type PatientExplanation struct {
	Short     string   `json:"short"`
	Long      string   `json:"long"`
	NextSteps []string `json:"next_steps"`
}

type CollectiveStats struct {
	TotalCases        int    `json:"total_cases"`
	SimilarPatterns   int    `json:"similar_patterns"`
	WinRate           int    `json:"win_rate"`
	AvgResolutionDays int    `json:"avg_resolution_days"`
	PayerDenialRate   int    `json:"payer_denial_rate"`
	TotalRecovered    string `json:"total_recovered"`
}

// AnalysisResult is the structured output of the analysis provider.
type AnalysisResult struct {
	CaseSummary        CaseSummary        `json:"case_summary"`
	PolicyAnalysis     PolicyAnalysis     `json:"policy_analysis"`
	MemoryCases        []MemoryCase       `json:"memory_cases"`
	MissingEvidence    MissingEvidence    `json:"missing_evidence"`
	AppealLetter       *AppealLetter      `json:"appeal_letter,omitempty"`
	PatientExplanation PatientExplanation `json:"patient_explanation"`
	CollectiveStats    CollectiveStats    `json:"collective_stats"`
	ConsultantPrompt   string             `json:"consultant_prompt,omitempty"`
}
