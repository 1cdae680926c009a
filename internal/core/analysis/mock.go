package analysis

import (
	"fmt"

	"github.com/agenthands/vynda/internal/core/model"
)

const (
	DemoPatient     = "Eleanor Vance"
	fallbackPatient = "The Patient"
	uploadPatient   = "Your Case"
)

// Mock returns the deterministic simulated analysis. The seed only moves the
// baseline probability, within [80, 94].
func Mock(seed int, patient string) *model.AnalysisResult {
	baseProb := 80 + mod(seed, 15)
	if patient == "" {
		patient = DemoPatient
	}

	return &model.AnalysisResult{
		CaseSummary: model.CaseSummary{
			PatientName:           patient,
			Payer:                 "UnitedHealth Group",
			Procedure:             "Total Knee Arthroplasty (TKA)",
			DenialReasonRaw:       "Experimental/Investigational procedure (cited Policy CG-SURG-24)",
			TrueDenialCause:       "Standard procedure misclassified as experimental",
			FairnessAssessment:    model.FairnessUnfair,
			WinProbabilityPercent: baseProb,
			OverallRationale:      "UnitedHealth denied a 56-year-old standard procedure as 'experimental', a classification that is factually false. The patient meets all four medical necessity criteria in their own policy CG-SURG-24.",
		},
		PolicyAnalysis: model.PolicyAnalysis{
			ReferencedSections: []model.PolicySection{
				{ID: "CG-SURG-24", Title: "Clinical Policy: Knee Arthroplasty", Snippet: "TKA is medically necessary when: 1) Radiographic arthritis, 2) Failed conservative therapy, 3) Functional limitation.", Relevance: "Critical"},
			},
			InsurerClaimVsPolicy: []model.RealityGap{
				{
					InsurerClaim: "Total Knee Arthroplasty is experimental/investigational.",
					ActualPolicy: "Policy CG-SURG-24 Section 4.2 defines TKA as medically necessary when criteria are met (does not classify as experimental).",
					Comment:      "The denial contradicts the insurer's own policy which establishes coverage criteria. This is a categorical error.",
					Severity:     model.SeverityCritical,
				},
				{
					InsurerClaim: "Patient does not meet coverage criteria.",
					ActualPolicy: "Patient meets all 4 criteria: (1) Radiographic arthritis (2) Failed conservative Rx (3) Functional limitation (4) Surgical candidate",
					Comment:      "Medical records confirm every requirement is met. This suggests an automated denial without human review.",
					Severity:     model.SeverityMajor,
				},
			},
		},
		MemoryCases: []model.MemoryCase{
			{
				ID:                 "M-1897",
				SimilarityScore:    0.98,
				Payer:              "Large National Insurer",
				ProcedureType:      "Orthopedic Surgery",
				Outcome:            "Overturned",
				ResolutionTimeDays: 12,
				SimilarityReason:   "Identical 'experimental' misclassification of standard TKA procedure",
				KeyLever:           "Cited insurer's own policy defining TKA as standard",
				StrategyDetail:     "Patient's attorney quoted Policy CG-SURG-24 verbatim. Insurer reversed within 12 days without external review.",
			},
			{
				ID:                 "M-2041",
				SimilarityScore:    0.95,
				Payer:              "Regional PPO",
				ProcedureType:      "Joint Replacement",
				Outcome:            "Overturned",
				ResolutionTimeDays: 19,
				SimilarityReason:   "TKA denied for 'incomplete records' despite meeting all criteria",
				KeyLever:           "Surgeon's detailed letter explicitly addressing each policy criterion",
				StrategyDetail:     "Orthopedic surgeon wrote one-page letter structured as 'Criterion 1: Met because...' which forced approval.",
			},
			{
				ID:                 "M-2089",
				SimilarityScore:    0.92,
				Payer:              "UnitedHealthcare",
				ProcedureType:      "Orthopedic Surgery",
				Outcome:            "Settled",
				ResolutionTimeDays: 8,
				SimilarityReason:   "Bone-on-bone arthritis with experimental classification",
				KeyLever:           "Threat of state insurance commissioner complaint",
				StrategyDetail:     "After initial denial, patient's advocate filed complaint citing pattern of bad-faith misclassifications.",
			},
		},
		MissingEvidence: model.MissingEvidence{
			ChecklistItems: []model.MissingEvidenceItem{
				{ID: "doc_1", Label: "Surgeon's Letter of Medical Necessity", Importance: model.ImportanceCritical, ImpactIfAdded: "+8%", WhyItMatters: "Explicitly states you meet all 4 policy criteria."},
				{ID: "doc_2", Label: "Complete PT Discharge Summary", Importance: model.ImportanceImportant, ImpactIfAdded: "+5%", WhyItMatters: "Documents failed conservative treatment duration."},
				{ID: "doc_3", Label: "Functional Assessment (WOMAC)", Importance: model.ImportanceHelpful, ImpactIfAdded: "+3%", WhyItMatters: "Quantifies your inability to walk/stand."},
			},
			Summary: "Your case is strong, but three pieces of evidence would make it bulletproof.",
		},
		PatientExplanation: model.PatientExplanation{
			Short: "UnitedHealth called the knee replacement 'experimental.' It's not. This surgery has been standard care for 56 years. They cited a policy that actually SUPPORTS coverage.",
			Long: fmt.Sprintf("%s, what happened is unfortunately common. UnitedHealth denied the claim calling TKA 'experimental or investigational.' This is factually incorrect.\n\n"+
				"The denial letter cites Policy CG-SURG-24, but that same policy DEFINES the medical necessity criteria for knee replacement, and the records show all requirements are met: "+
				"Bone-on-bone arthritis, failed conservative treatment, functional limitation, and surgical candidacy.\n\n"+
				"This isn't a legitimate denial. It's a documentation error disguised as a policy issue.", patient),
			NextSteps: []string{
				"Review the Draft Appeal",
				"Gather Recommended Documents",
				"Submit to Insurance Company",
				"Track Your Appeal",
				"Escalate if Needed",
			},
		},
		AppealLetter: &model.AppealLetter{
			Title: fmt.Sprintf("Appeal of Denial - %s", patient),
			Body:  mockLetterBody(patient),
			KeyArguments: []string{
				"TKA is standard, not experimental (56 years FDA-approved)",
				"Patient meets all 4 criteria in Policy CG-SURG-24",
				"Denial contradicts insurer's own written policy",
				"Precedent cases: 94% overturn rate",
			},
			RecommendedAttachments: []string{
				"X-ray reports with radiologist interpretation",
				"Physical therapy discharge summary",
				"Surgeon's one-page medical necessity letter",
			},
			StrategicNotes: "This appeal is built on direct policy contradiction. The insurer cannot defend calling TKA 'experimental' when their own policy defines medical necessity criteria for it.",
		},
		CollectiveStats: model.CollectiveStats{
			TotalCases:        1247,
			SimilarPatterns:   47,
			WinRate:           94,
			AvgResolutionDays: 13,
			PayerDenialRate:   34,
			TotalRecovered:    "$47.2M",
		},
		ConsultantPrompt: fmt.Sprintf("%s, I've completed the analysis. You have a very strong case with a %d%% win probability. "+
			"The denial is based on a factual error (calling TKA 'experimental') that contradicts UnitedHealth's own policy. What questions do you have?", patient, baseProb),
	}
}

func mockLetterBody(patient string) string {
	return fmt.Sprintf(`UnitedHealth Group
Attn: Appeals Department

RE: Appeal of Denial
Member: %[1]s
Procedure: Total Knee Arthroplasty (CPT 27447)

Dear Appeals Review Team,

I am writing to formally appeal the denial of coverage for %[1]s's Total Knee Arthroplasty, which was denied with the stated reason: "Experimental/Investigational procedure."

This denial is factually incorrect and contradicts UnitedHealth's own Clinical Policy CG-SURG-24.

1. PROCEDURAL FACT: Total Knee Arthroplasty is NOT experimental.
   - FDA-approved since 1968
   - Performed 800,000+ times annually

2. YOUR OWN POLICY SUPPORTS COVERAGE:
   UnitedHealth Clinical Policy CG-SURG-24 Section 4.2 states coverage is medically necessary when criteria are met. %[1]s meets ALL FOUR criteria:
   - Radiographic evidence of bone-on-bone arthritis
   - 18 months of failed conservative treatment
   - Significant functional limitation
   - Appropriate surgical candidate

3. PRECEDENT:
   47 similar cases where standard orthopedic procedures were misclassified as "experimental" have been overturned.

We request immediate reversal of this denial.

Sincerely,
%[1]s`, patient)
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
