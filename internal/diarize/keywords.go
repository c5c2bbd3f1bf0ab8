package diarize

import "strings"

// Keyword sets behind the default scorer. Each keyword contributes at most 1
// to a speaker's score, no matter how often it repeats.
var (
	professionalKeywords = []string{
		"medication",
		"diagnosis",
		"have you taken",
		"examination",
		"prescri", // prescribe / prescription
		"symptom",
		"blood pressure",
		"treatment",
		"let me check",
		"history of",
		"dosage",
		"lab results",
		"follow up",
		"any allergies",
	}

	patientKeywords = []string{
		"i feel",
		"my pain",
		"it hurts",
		"please help",
		"i've been",
		"i can't",
		"i'm worried",
		"my head",
		"getting worse",
		"since last",
	}
)

// KeywordScorer is the default Scorer: it counts how many keywords from each
// set appear as substrings of the speaker's combined lowercased text.
func KeywordScorer(text string) (professional, patient int) {
	for _, kw := range professionalKeywords {
		if strings.Contains(text, kw) {
			professional++
		}
	}
	for _, kw := range patientKeywords {
		if strings.Contains(text, kw) {
			patient++
		}
	}
	return professional, patient
}
