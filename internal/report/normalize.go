package report

import "regexp"

// Spoken medical abbreviations normalized in transcript text, e.g. a backend
// hearing "g c s 8" should render as "GCS 8". Substitutions are
// case-insensitive and applied once, left-to-right, non-overlapping.
var abbreviations = []struct {
	re     *regexp.Regexp
	formal string
}{
	{regexp.MustCompile(`(?i)\bg c s\b`), "GCS"},
	{regexp.MustCompile(`(?i)\bi c p\b`), "ICP"},
	{regexp.MustCompile(`(?i)\be v d\b`), "EVD"},
	{regexp.MustCompile(`(?i)\bm r i\b`), "MRI"},
	{regexp.MustCompile(`(?i)\bc t\b`), "CT"},
	{regexp.MustCompile(`(?i)\bb p\b`), "BP"},
	{regexp.MustCompile(`(?i)\bh r\b`), "HR"},
}

// normalizeAbbreviations applies the fixed substitution table to one
// utterance's text.
func normalizeAbbreviations(text string) string {
	for _, abbr := range abbreviations {
		text = abbr.re.ReplaceAllString(text, abbr.formal)
	}
	return text
}
