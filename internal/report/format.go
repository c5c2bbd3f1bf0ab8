// Package report renders a classified transcription result into the final
// clinical transcript text plus its summary metadata.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/clinscribe/clinscribe/internal/diarize"
	"github.com/clinscribe/clinscribe/internal/transcriber"
)

// Session-type threshold: recordings longer than this are labelled as an
// extended interview.
const extendedSessionSec = 600

// DefaultWidth is the wrap column for utterance text.
const DefaultWidth = 72

const bodyIndent = "    "

// Report is the final artifact handed to callers and external sinks.
type Report struct {
	Text             string
	Provider         string
	Fallback         bool
	DurationMinutes  int
	WordCount        int
	AvgConfidencePct int
	// Keyed by role label; when several speakers share a label the speaker
	// tag is appended, e.g. "PATIENT (B)", so their numbers stay separate.
	SpeakingTimePct map[string]int // % of session audio
	SpeakerWords    map[string]int // word count
}

// Formatter renders reports. Rendering is a pure function of its inputs:
// identical (result, profiles, fallback) always produce identical text. The
// header date is informational wall-clock time, injected via Now so callers
// and tests control it.
type Formatter struct {
	Width int
	Now   func() time.Time
}

// NewFormatter returns a formatter with the default wrap width and clock.
func NewFormatter() *Formatter {
	return &Formatter{Width: DefaultWidth, Now: time.Now}
}

// Format renders the transcript and computes the summary metadata. profiles
// may be nil when the backend supplied no speaker detail; the body then
// falls back to the raw text.
func (f *Formatter) Format(res *transcriber.Result, profiles []diarize.SpeakerProfile, fallback bool) *Report {
	width := f.Width
	if width <= 0 {
		width = DefaultWidth
	}
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}

	roles := diarize.Roles(profiles)

	var b strings.Builder
	f.writeHeader(&b, res, profiles, fallback, now())
	b.WriteString("\n")

	if len(res.Utterances) > 0 {
		f.writeUtterances(&b, res.Utterances, roles, width)
	} else if res.Text != "" {
		b.WriteString(wrapText(normalizeAbbreviations(res.Text), width, bodyIndent))
		b.WriteString("\n")
	}

	rep := &Report{
		Provider: res.Provider,
		Fallback: fallback,
	}
	f.summarize(rep, res, roles)

	b.WriteString("\n")
	f.writeSummary(&b, rep)

	rep.Text = b.String()
	return rep
}

func (f *Formatter) writeHeader(b *strings.Builder, res *transcriber.Result, profiles []diarize.SpeakerProfile, fallback bool, now time.Time) {
	b.WriteString("CLINICAL TRANSCRIPT\n")
	b.WriteString("===================\n")
	fmt.Fprintf(b, "Date: %s\n", now.Format("2006-01-02 15:04"))
	fmt.Fprintf(b, "Session type: %s\n", sessionType(res.DurationSec))

	if len(profiles) > 0 {
		labels := make([]string, 0, len(profiles))
		for _, p := range profiles {
			labels = append(labels, p.Role)
		}
		fmt.Fprintf(b, "Participants: %s\n", strings.Join(labels, ", "))
	}

	backend := res.Provider
	if fallback {
		backend += " (fallback)"
	}
	fmt.Fprintf(b, "Backend: %s\n", backend)
}

func (f *Formatter) writeUtterances(b *strings.Builder, utterances []transcriber.Utterance, roles map[string]string, width int) {
	prevSpeaker := ""
	for i, u := range utterances {
		if i > 0 && u.Speaker != prevSpeaker {
			b.WriteString("\n")
		}
		prevSpeaker = u.Speaker

		fmt.Fprintf(b, "[%s] %s (%s):\n", formatTimestamp(u.StartMS), roleFor(roles, u.Speaker), confidenceBucket(u.Confidence))
		b.WriteString(wrapText(normalizeAbbreviations(u.Text), width, bodyIndent))
		b.WriteString("\n")
	}
}

func (f *Formatter) summarize(rep *Report, res *transcriber.Result, roles map[string]string) {
	rep.DurationMinutes = int(math.Ceil(res.DurationSec / 60))

	if len(res.Utterances) == 0 {
		rep.WordCount = len(strings.Fields(res.Text))
		rep.AvgConfidencePct = roundPct(res.Confidence)
		return
	}

	// more than one speaker can carry the same role label (e.g. two
	// patients); qualify shared labels with the speaker tag so their
	// numbers do not merge
	speakersPerRole := make(map[string]map[string]bool)
	for _, u := range res.Utterances {
		role := roleFor(roles, u.Speaker)
		if speakersPerRole[role] == nil {
			speakersPerRole[role] = make(map[string]bool)
		}
		speakersPerRole[role][u.Speaker] = true
	}
	labelFor := func(speaker string) string {
		role := roleFor(roles, speaker)
		if len(speakersPerRole[role]) > 1 {
			return fmt.Sprintf("%s (%s)", role, speaker)
		}
		return role
	}

	var confidenceSum float64
	speakingMS := make(map[string]int)
	words := make(map[string]int)
	for _, u := range res.Utterances {
		n := len(strings.Fields(u.Text))
		rep.WordCount += n
		confidenceSum += u.Confidence

		label := labelFor(u.Speaker)
		words[label] += n
		speakingMS[label] += u.EndMS - u.StartMS
	}
	rep.AvgConfidencePct = roundPct(confidenceSum / float64(len(res.Utterances)))
	rep.SpeakerWords = words

	if res.DurationSec > 0 {
		rep.SpeakingTimePct = make(map[string]int, len(speakingMS))
		for role, ms := range speakingMS {
			rep.SpeakingTimePct[role] = roundPct(float64(ms) / 1000 / res.DurationSec)
		}
	}
}

func (f *Formatter) writeSummary(b *strings.Builder, rep *Report) {
	b.WriteString("SUMMARY\n")
	b.WriteString("-------\n")
	fmt.Fprintf(b, "Duration: %d min\n", rep.DurationMinutes)
	fmt.Fprintf(b, "Words: %d\n", rep.WordCount)
	fmt.Fprintf(b, "Average confidence: %d%%\n", rep.AvgConfidencePct)

	// deterministic ordering for the per-speaker lines
	rolesSorted := make([]string, 0, len(rep.SpeakerWords))
	for role := range rep.SpeakerWords {
		rolesSorted = append(rolesSorted, role)
	}
	sort.Strings(rolesSorted)
	for _, role := range rolesSorted {
		fmt.Fprintf(b, "%s: %d%% speaking time, %d words\n", role, rep.SpeakingTimePct[role], rep.SpeakerWords[role])
	}
}

func sessionType(durationSec float64) string {
	if durationSec > extendedSessionSec {
		return "Extended Clinical Interview"
	}
	return "Standard Patient Consultation"
}

// formatTimestamp renders a millisecond offset as mm:ss.
func formatTimestamp(ms int) string {
	totalSec := ms / 1000
	return fmt.Sprintf("%02d:%02d", totalSec/60, totalSec%60)
}

// confidenceBucket maps a 0..1 confidence to its coarse label.
func confidenceBucket(c float64) string {
	switch {
	case c >= 0.90:
		return "HIGH"
	case c >= 0.75:
		return "MED"
	default:
		return "LOW"
	}
}

func roleFor(roles map[string]string, speaker string) string {
	if role, ok := roles[speaker]; ok {
		return role
	}
	return "PARTICIPANT"
}

func roundPct(fraction float64) int {
	return int(math.Round(fraction * 100))
}

// wrapText greedily wraps text at width columns, prefixing every line with
// indent. The indent does not count against the width.
func wrapText(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return indent
	}

	var b strings.Builder
	lineLen := 0
	for i, word := range words {
		switch {
		case i == 0:
			b.WriteString(indent)
			b.WriteString(word)
			lineLen = len(word)
		case lineLen+1+len(word) > width:
			b.WriteString("\n")
			b.WriteString(indent)
			b.WriteString(word)
			lineLen = len(word)
		default:
			b.WriteString(" ")
			b.WriteString(word)
			lineLen += 1 + len(word)
		}
	}
	return b.String()
}
