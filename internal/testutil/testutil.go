// Package testutil provides shared mocks and fixtures for tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/clinscribe/clinscribe/internal/config"
	"github.com/clinscribe/clinscribe/internal/provider"
	"github.com/clinscribe/clinscribe/internal/transcriber"
)

// TestConfig returns a valid configuration for testing
func TestConfig() *config.Config {
	return &config.Config{
		Transcription: config.TranscriptionConfig{
			Providers:        []string{provider.ProviderAssemblyAI, provider.ProviderOpenAI},
			ExpectedSpeakers: 2,
			Diarize:          true,
		},
		Polling: config.PollingConfig{
			Interval: 10 * time.Millisecond,
			Timeout:  time.Second,
		},
		Report: config.ReportConfig{
			Width: 72,
		},
		Watch: config.WatchConfig{
			Extensions: []string{".wav"},
		},
		Providers: map[string]config.ProviderConfig{
			provider.ProviderAssemblyAI: {APIKey: "test-assemblyai-key-0123"},
			provider.ProviderOpenAI:     {APIKey: "sk-test-key"},
		},
	}
}

// MockAdapter implements transcriber.Adapter for testing
type MockAdapter struct {
	AdapterName    string
	TranscribeFunc func(ctx context.Context, req *transcriber.Request) (*transcriber.Result, error)

	mu    sync.Mutex
	calls int
}

func (m *MockAdapter) Name() string {
	if m.AdapterName != "" {
		return m.AdapterName
	}
	return "mock"
}

func (m *MockAdapter) Transcribe(ctx context.Context, req *transcriber.Request) (*transcriber.Result, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, req)
	}
	return &transcriber.Result{Text: "mock transcription", Provider: m.Name()}, nil
}

// Calls returns how many times Transcribe was invoked.
func (m *MockAdapter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// FixedClock returns a clock function pinned to a known instant, for
// deterministic report headers.
func FixedClock() func() time.Time {
	at := time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)
	return func() time.Time { return at }
}

// ConsultationUtterances is a two-speaker exchange with clear professional
// and patient signals.
func ConsultationUtterances() []transcriber.Utterance {
	return []transcriber.Utterance{
		{Speaker: "A", Text: "Good morning, have you taken your medication today?", StartMS: 0, EndMS: 4000, Confidence: 0.95},
		{Speaker: "B", Text: "I feel dizzy and my pain is getting worse.", StartMS: 4500, EndMS: 9000, Confidence: 0.88},
		{Speaker: "A", Text: "Let's start with an examination before we discuss the diagnosis.", StartMS: 9500, EndMS: 14000, Confidence: 0.92},
	}
}

// TestContext returns a context with timeout for testing
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
