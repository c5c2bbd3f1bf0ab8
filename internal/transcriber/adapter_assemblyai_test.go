package transcriber

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clinscribe/clinscribe/internal/provider"
)

// fakeAssemblyAI serves the upload/submit/status endpoints with a job that
// stays queued for a configurable number of status checks.
type fakeAssemblyAI struct {
	t            *testing.T
	queuedChecks int32
	statusChecks atomic.Int32
	failWith     string // job error message, empty = completes

	lastJobRequest aaiJobRequest
	authHeader     string
}

func (f *fakeAssemblyAI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v2/upload", func(w http.ResponseWriter, r *http.Request) {
		f.authHeader = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		if len(body) == 0 {
			http.Error(w, "empty body", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(aaiUploadResponse{UploadURL: "https://cdn.example/upload/abc"})
	})

	mux.HandleFunc("POST /v2/transcript", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&f.lastJobRequest); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(aaiJob{ID: "job-1", Status: "queued"})
	})

	mux.HandleFunc("GET /v2/transcript/job-1", func(w http.ResponseWriter, r *http.Request) {
		n := f.statusChecks.Add(1)
		if n <= f.queuedChecks {
			json.NewEncoder(w).Encode(aaiJob{ID: "job-1", Status: "processing"})
			return
		}
		if f.failWith != "" {
			json.NewEncoder(w).Encode(aaiJob{ID: "job-1", Status: "error", Error: f.failWith})
			return
		}
		json.NewEncoder(w).Encode(aaiJob{
			ID:            "job-1",
			Status:        "completed",
			Text:          "Good morning. I feel dizzy.",
			Confidence:    0.93,
			AudioDuration: 42,
			Utterances: []aaiUtterance{
				{Speaker: "A", Text: "Good morning.", Start: 0, End: 1500, Confidence: 0.95},
				{Speaker: "B", Text: "I feel dizzy.", Start: 2000, End: 4000, Confidence: 0.91},
			},
		})
	})

	return mux
}

func newTestAdapter(srv *httptest.Server) *AssemblyAIAdapter {
	endpoint := &provider.EndpointConfig{BaseURL: srv.URL, Path: "/v2"}
	return NewAssemblyAIAdapter(endpoint, "test-key", time.Millisecond, time.Second)
}

func TestAssemblyAIAdapter_Transcribe(t *testing.T) {
	fake := &fakeAssemblyAI{t: t, queuedChecks: 2}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	adapter := newTestAdapter(srv)
	req := &Request{
		Audio:            []byte("audio bytes"),
		MimeType:         "audio/wav",
		Diarize:          true,
		ExpectedSpeakers: 2,
		Language:         "en",
	}

	res, err := adapter.Transcribe(context.Background(), req)
	if err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}

	if fake.authHeader != "test-key" {
		t.Errorf("Authorization header = %q, want the API key", fake.authHeader)
	}
	if !fake.lastJobRequest.SpeakerLabels {
		t.Error("job request should set speaker_labels")
	}
	if fake.lastJobRequest.SpeakersExpected != 2 {
		t.Errorf("speakers_expected = %d, want 2", fake.lastJobRequest.SpeakersExpected)
	}
	if fake.lastJobRequest.AudioURL != "https://cdn.example/upload/abc" {
		t.Errorf("audio_url = %q, want the upload URL", fake.lastJobRequest.AudioURL)
	}
	if fake.lastJobRequest.LanguageCode != "en" {
		t.Errorf("language_code = %q, want en", fake.lastJobRequest.LanguageCode)
	}

	if res.Provider != provider.ProviderAssemblyAI {
		t.Errorf("Provider = %q, want %q", res.Provider, provider.ProviderAssemblyAI)
	}
	if res.DurationSec != 42 {
		t.Errorf("DurationSec = %v, want 42", res.DurationSec)
	}
	if len(res.Utterances) != 2 {
		t.Fatalf("len(Utterances) = %d, want 2", len(res.Utterances))
	}
	if res.Utterances[0].Speaker != "A" || res.Utterances[0].StartMS != 0 || res.Utterances[0].EndMS != 1500 {
		t.Errorf("first utterance = %+v, not mapped from backend fields", res.Utterances[0])
	}
	if fake.statusChecks.Load() != 3 {
		t.Errorf("status checks = %d, want 3 (two queued, one completed)", fake.statusChecks.Load())
	}
}

func TestAssemblyAIAdapter_JobError(t *testing.T) {
	fake := &fakeAssemblyAI{t: t, failWith: "audio could not be decoded"}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	adapter := newTestAdapter(srv)
	_, err := adapter.Transcribe(context.Background(), &Request{Audio: []byte("x"), Diarize: true})
	if err == nil {
		t.Fatal("Transcribe() should fail when the job errors")
	}

	var te *Error
	if !errors.As(err, &te) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if te.Provider != provider.ProviderAssemblyAI {
		t.Errorf("Provider = %q, want assemblyai", te.Provider)
	}
}

func TestAssemblyAIAdapter_UploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	adapter := newTestAdapter(srv)
	_, err := adapter.Transcribe(context.Background(), &Request{Audio: []byte("x")})

	var te *Error
	if !errors.As(err, &te) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if te.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", te.StatusCode)
	}
}

func TestAssemblyAIAdapter_PollTimeout(t *testing.T) {
	fake := &fakeAssemblyAI{t: t, queuedChecks: 1 << 30} // never completes
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	endpoint := &provider.EndpointConfig{BaseURL: srv.URL, Path: "/v2"}
	adapter := NewAssemblyAIAdapter(endpoint, "test-key", time.Millisecond, 30*time.Millisecond)

	_, err := adapter.Transcribe(context.Background(), &Request{Audio: []byte("x")})
	if !errors.Is(err, ErrJobTimeout) {
		t.Fatalf("Transcribe() = %v, want ErrJobTimeout in chain", err)
	}

	var te *Error
	if !errors.As(err, &te) {
		t.Fatalf("timeout should still be a normalized *Error, got %T", err)
	}
	if te.StatusCode != http.StatusGatewayTimeout {
		t.Errorf("StatusCode = %d, want 504", te.StatusCode)
	}
}

func TestAssemblyAIAdapter_CancellationStopsPolling(t *testing.T) {
	fake := &fakeAssemblyAI{t: t, queuedChecks: 1 << 30}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	adapter := newTestAdapter(srv)

	done := make(chan error, 1)
	go func() {
		_, err := adapter.Transcribe(ctx, &Request{Audio: []byte("x")})
		done <- err
	}()

	// let it get into the poll loop, then abandon the request
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Transcribe() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("adapter kept polling after cancellation")
	}

	checksAtCancel := fake.statusChecks.Load()
	time.Sleep(50 * time.Millisecond)
	if got := fake.statusChecks.Load(); got != checksAtCancel {
		t.Errorf("polling continued in background: %d checks after cancel, had %d", got, checksAtCancel)
	}
}
