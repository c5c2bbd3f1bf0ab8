package transcriber

import (
	"context"
)

// MaxAudioBytes is the largest audio payload accepted for transcription.
// Requests above this are rejected before any backend is contacted.
const MaxAudioBytes = 25 << 20 // 25 MB

// Adapter is the capability contract shared by every speech-to-text backend.
// Implementations normalize backend-specific failures into *Error before
// returning.
type Adapter interface {
	Name() string
	Transcribe(ctx context.Context, req *Request) (*Result, error)
}

// Request carries one audio payload plus the options passed to backends.
type Request struct {
	Audio    []byte
	MimeType string

	// Prompt is an optional domain-context hint for backends that accept one.
	Prompt string

	// Language is an ISO 639-1 code; empty lets backends auto-detect.
	Language string

	// ExpectedSpeakers and Diarize are forwarded to backends that support
	// speaker-labelled output.
	ExpectedSpeakers int
	Diarize          bool
}

// Utterance is one contiguous speech segment attributed to a single speaker
// tag by a backend. The tag is opaque (e.g. "A", "B"); ordering is
// backend-supplied and preserved.
type Utterance struct {
	Speaker    string
	Text       string
	StartMS    int
	EndMS      int
	Confidence float64 // 0..1
}

// Result is the raw outcome of one backend call. It is owned by the
// orchestrator for the duration of a single request and never shared.
type Result struct {
	Text        string
	Utterances  []Utterance // empty for backends without utterance detail
	Confidence  float64     // overall, 0..1
	DurationSec float64
	Provider    string
}
