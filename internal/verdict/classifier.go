// Package verdict maps a free-text verification report onto the closed verdict set.
//
// Classification is deliberately plain case-insensitive substring matching,
// evaluated top to bottom with the first match winning:
//
//	"false"                           -> MOSTLY_FALSE if "mostly false" also matches, else FALSE
//	"true"                            -> MOSTLY_TRUE if "mostly true" also matches, else TRUE
//	"misleading" or "partially"       -> MISLEADING
//	"inconclusive" or "cannot verify" -> INCONCLUSIVE
//	otherwise                         -> NEEDS_REVIEW
//
// Negation is dominant: any "false" outranks "true".
package verdict

import (
	"strings"

	"github.com/ppiankov/verifact/internal/model"
)

// Classify returns the verdict for a report. It is pure and idempotent.
func Classify(report string) model.Verdict {
	text := strings.ToLower(report)

	switch {
	case strings.Contains(text, "false"):
		if strings.Contains(text, "mostly false") {
			return model.VerdictMostlyFalse
		}
		return model.VerdictFalse
	case strings.Contains(text, "true"):
		if strings.Contains(text, "mostly true") {
			return model.VerdictMostlyTrue
		}
		return model.VerdictTrue
	case strings.Contains(text, "misleading"), strings.Contains(text, "partially"):
		return model.VerdictMisleading
	case strings.Contains(text, "inconclusive"), strings.Contains(text, "cannot verify"):
		return model.VerdictInconclusive
	default:
		return model.VerdictNeedsReview
	}
}
