// Package diarize infers which backend speaker tag belongs to the clinician
// and which to the patient, from utterance content alone.
//
// The inference is a keyword heuristic and is best-effort: with no clear
// signal every speaker falls back to a generic PARTICIPANT label. Treat the
// output as advisory metadata, never as a clinical assertion.
package diarize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clinscribe/clinscribe/internal/transcriber"
)

// Role labels assigned to speaker tags.
const (
	RoleProvider = "HEALTHCARE PROVIDER"
	RolePatient  = "PATIENT"
)

// SpeakerProfile is the per-speaker scoring summary. Profiles are derived
// per request and discarded after formatting; nothing here is persisted.
type SpeakerProfile struct {
	Speaker           string // backend tag, e.g. "A"
	ProfessionalScore int
	PatientScore      int
	Utterances        int
	Role              string
}

// Scorer counts role signals in a speaker's combined lowercased text.
// Replacing it swaps the classification heuristic without touching the
// assignment logic.
type Scorer func(text string) (professional, patient int)

// Classifier assigns role labels to speaker tags.
type Classifier struct {
	score Scorer
}

// NewClassifier returns a classifier using the default keyword scorer.
func NewClassifier() *Classifier {
	return &Classifier{score: KeywordScorer}
}

// NewClassifierWithScorer returns a classifier with a custom scoring
// function.
func NewClassifierWithScorer(s Scorer) *Classifier {
	return &Classifier{score: s}
}

// Classify groups utterances by speaker tag, scores each group, and assigns
// roles:
//
//   - speakers are ranked by professional score, descending, ties broken by
//     first-appearance order (stable)
//   - the top-ranked speaker with a professional score above zero becomes
//     HEALTHCARE PROVIDER
//   - among the rest, a speaker whose patient score exceeds its professional
//     score becomes PATIENT
//   - everyone else becomes PARTICIPANT N, numbered in rank order
//
// The returned profiles are in rank order.
func (c *Classifier) Classify(utterances []transcriber.Utterance) []SpeakerProfile {
	if len(utterances) == 0 {
		return nil
	}

	// group by tag, preserving first-appearance order
	var order []string
	texts := make(map[string][]string)
	counts := make(map[string]int)
	for _, u := range utterances {
		if _, seen := texts[u.Speaker]; !seen {
			order = append(order, u.Speaker)
		}
		texts[u.Speaker] = append(texts[u.Speaker], strings.ToLower(u.Text))
		counts[u.Speaker]++
	}

	profiles := make([]SpeakerProfile, 0, len(order))
	for _, tag := range order {
		prof, pat := c.score(strings.Join(texts[tag], " "))
		profiles = append(profiles, SpeakerProfile{
			Speaker:           tag,
			ProfessionalScore: prof,
			PatientScore:      pat,
			Utterances:        counts[tag],
		})
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].ProfessionalScore > profiles[j].ProfessionalScore
	})

	participantN := 0
	for i := range profiles {
		p := &profiles[i]
		switch {
		case i == 0 && p.ProfessionalScore > 0:
			p.Role = RoleProvider
		case p.PatientScore > p.ProfessionalScore:
			p.Role = RolePatient
		default:
			participantN++
			p.Role = fmt.Sprintf("PARTICIPANT %d", participantN)
		}
	}

	return profiles
}

// Roles returns a speaker-tag to role-label lookup for the given profiles.
func Roles(profiles []SpeakerProfile) map[string]string {
	roles := make(map[string]string, len(profiles))
	for _, p := range profiles {
		roles[p.Speaker] = p.Role
	}
	return roles
}
