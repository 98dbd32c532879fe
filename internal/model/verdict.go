package model

// Verdict is the closed set of labels a finished report can be assigned
type Verdict string

const (
	VerdictTrue         Verdict = "TRUE"
	VerdictFalse        Verdict = "FALSE"
	VerdictMostlyTrue   Verdict = "MOSTLY_TRUE"
	VerdictMostlyFalse  Verdict = "MOSTLY_FALSE"
	VerdictMisleading   Verdict = "MISLEADING"
	VerdictInconclusive Verdict = "INCONCLUSIVE"
	VerdictNeedsReview  Verdict = "NEEDS_REVIEW"
)

// Verdicts lists every verdict in display order
var Verdicts = []Verdict{
	VerdictTrue,
	VerdictMostlyTrue,
	VerdictMisleading,
	VerdictMostlyFalse,
	VerdictFalse,
	VerdictInconclusive,
	VerdictNeedsReview,
}

// VerdictDisplay is presentation metadata attached to a verdict.
// It carries no semantics; renderers are free to ignore it.
type VerdictDisplay struct {
	Label      string `json:"label"`
	Color      string `json:"color"`
	Icon       string `json:"icon"`
	Assessment string `json:"assessment"`
	Confidence string `json:"confidence"`
}

var verdictDisplays = map[Verdict]VerdictDisplay{
	VerdictTrue: {
		Label:      "VERIFIED TRUE",
		Color:      "#10B981",
		Icon:       "✅",
		Assessment: "The provided information has been verified as factually accurate based on reliable sources and evidence.",
		Confidence: "High - Multiple authoritative sources confirm this information.",
	},
	VerdictFalse: {
		Label:      "VERIFIED FALSE",
		Color:      "#EF4444",
		Icon:       "❌",
		Assessment: "The claim has been fact-checked and found to be inaccurate or misleading based on available evidence.",
		Confidence: "High - Credible sources contradict this information.",
	},
	VerdictMostlyTrue: {
		Label:      "MOSTLY TRUE",
		Color:      "#84CC16",
		Icon:       "✅",
		Assessment: "The claim is primarily accurate but may contain minor inaccuracies or exaggerations that don't fundamentally change the message.",
		Confidence: "Medium - Generally accurate with minor qualifications.",
	},
	VerdictMostlyFalse: {
		Label:      "MOSTLY FALSE",
		Color:      "#F97316",
		Icon:       "❌",
		Assessment: "The claim contains some elements of truth but is largely inaccurate or misleading in its overall presentation.",
		Confidence: "Medium - Contains some truth but overall misleading.",
	},
	VerdictMisleading: {
		Label:      "MISLEADING",
		Color:      "#F59E0B",
		Icon:       "⚠️",
		Assessment: "The information contains some accurate elements but also includes misleading or incomplete details that distort the overall picture.",
		Confidence: "Medium - Requires careful interpretation of context.",
	},
	VerdictInconclusive: {
		Label:      "INCONCLUSIVE",
		Color:      "#6B7280",
		Icon:       "🔍",
		Assessment: "Insufficient evidence available for a definitive conclusion. Additional verification recommended from specialized sources.",
		Confidence: "Low - Requires additional verification.",
	},
	VerdictNeedsReview: {
		Label:      "NEEDS REVIEW",
		Color:      "#6B7280",
		Icon:       "🔎",
		Assessment: "Insufficient evidence available for a definitive conclusion. Additional verification recommended from specialized sources.",
		Confidence: "Low - Requires additional verification.",
	},
}

// Display returns the presentation metadata for the verdict
func (v Verdict) Display() VerdictDisplay {
	if d, ok := verdictDisplays[v]; ok {
		return d
	}
	return verdictDisplays[VerdictNeedsReview]
}

// Valid reports whether v is one of the known verdicts
func (v Verdict) Valid() bool {
	_, ok := verdictDisplays[v]
	return ok
}
