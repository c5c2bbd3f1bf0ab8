package transcriber

import (
	"bytes"
	"context"
	"errors"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/clinscribe/clinscribe/internal/provider"
)

// WhisperAdapter implements Adapter for OpenAI-compatible Whisper APIs
// (OpenAI itself, and Groq via its OpenAI-compatible base URL). These are
// synchronous request/response backends: one call, full text back, no
// speaker-labelled utterances.
type WhisperAdapter struct {
	client *openai.Client
	name   string
	model  string
}

const groqBaseURL = "https://api.groq.com/openai/v1"

// NewOpenAIAdapter creates an adapter for the OpenAI Whisper API.
func NewOpenAIAdapter(apiKey, model string) *WhisperAdapter {
	return &WhisperAdapter{
		client: openai.NewClient(apiKey),
		name:   provider.ProviderOpenAI,
		model:  model,
	}
}

// NewGroqAdapter creates an adapter for Groq's Whisper API, reusing the
// OpenAI client against Groq's compatible endpoint.
func NewGroqAdapter(apiKey, model string) *WhisperAdapter {
	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = groqBaseURL
	return &WhisperAdapter{
		client: openai.NewClientWithConfig(clientConfig),
		name:   provider.ProviderGroq,
		model:  model,
	}
}

func (a *WhisperAdapter) Name() string {
	return a.name
}

func (a *WhisperAdapter) Transcribe(ctx context.Context, req *Request) (*Result, error) {
	audioReq := openai.AudioRequest{
		Model:    a.model,
		Reader:   bytes.NewReader(req.Audio),
		FilePath: "audio" + extensionForMime(req.MimeType),
		Prompt:   req.Prompt,
		Language: req.Language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}

	start := time.Now()
	resp, err := a.client.CreateTranscription(ctx, audioReq)
	elapsed := time.Since(start)

	if err != nil {
		log.Printf("%s-adapter: API call failed after %v: %v", a.name, elapsed, err)
		return nil, a.normalizeError(err)
	}

	log.Printf("%s-adapter: transcribed %d bytes in %v (%.0fs audio)",
		a.name, len(req.Audio), elapsed, resp.Duration)

	// Whisper reports per-segment average log-probabilities rather than a
	// confidence; use the mean of exp(avg_logprob), clamped to [0, 1].
	var confidence float64
	if n := len(resp.Segments); n > 0 {
		var sum float64
		for _, seg := range resp.Segments {
			p := math.Exp(seg.AvgLogprob)
			if p > 1 {
				p = 1
			}
			sum += p
		}
		confidence = sum / float64(n)
	}

	return &Result{
		Text:        resp.Text,
		Confidence:  confidence,
		DurationSec: resp.Duration,
		Provider:    a.name,
	}, nil
}

func (a *WhisperAdapter) normalizeError(err error) *Error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{Provider: a.name, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &Error{Provider: a.name, StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error(), Err: err}
	}
	return WrapError(a.name, http.StatusBadGateway, err)
}

// extensionForMime maps a declared audio mime type to the filename extension
// the upstream API uses to sniff the container format.
func extensionForMime(mime string) string {
	switch mime {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return ".m4a"
	case "audio/ogg":
		return ".ogg"
	case "audio/webm":
		return ".webm"
	case "audio/flac", "audio/x-flac":
		return ".flac"
	default:
		return ".wav"
	}
}
