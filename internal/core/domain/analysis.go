package domain

import "strings"

// MaxAnalysisTags bounds how many tags a classifier verdict may contribute.
const MaxAnalysisTags = 5

// AnalysisResult is the structured output of one classification pass.
// Raw classifier payloads are normalized into this shape exactly once, at
// the orchestrator boundary; everything downstream trusts it.
type AnalysisResult struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Tags        []string    `json:"tags"`
	Summary     string      `json:"summary"`
	Sensitivity Sensitivity `json:"sensitivity"`
}

// Normalized caps tags, trims whitespace and coerces the sensitivity string
// to one of the three known values, defaulting to safe.
func (r AnalysisResult) Normalized() AnalysisResult {
	out := AnalysisResult{
		Title:       strings.TrimSpace(r.Title),
		Description: strings.TrimSpace(r.Description),
		Summary:     strings.TrimSpace(r.Summary),
		Sensitivity: NormalizeSensitivity(string(r.Sensitivity)),
	}

	tags := make([]string, 0, MaxAnalysisTags)
	for _, tag := range r.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if len(tag) > MaxTagLength {
			tag = tag[:MaxTagLength]
		}
		tags = append(tags, tag)
		if len(tags) == MaxAnalysisTags {
			break
		}
	}
	out.Tags = tags
	return out
}

// NormalizeSensitivity maps a free-form classifier string onto the fixed
// two-level classification. Unknown values count as safe; the prompt already
// instructs the model to lean toward maybe_sensitive on ambiguity.
func NormalizeSensitivity(raw string) Sensitivity {
	switch Sensitivity(strings.ToLower(strings.TrimSpace(raw))) {
	case SensitivitySafe:
		return SensitivitySafe
	case SensitivityMaybeSensitive:
		return SensitivityMaybeSensitive
	case SensitivitySensitive:
		return SensitivitySensitive
	default:
		return SensitivitySafe
	}
}
