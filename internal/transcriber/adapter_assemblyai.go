package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/clinscribe/clinscribe/internal/provider"
)

// AssemblyAIAdapter implements Adapter for AssemblyAI's asynchronous job API:
// upload the audio, submit a transcription job, then poll the job status
// until it reaches a terminal state.
type AssemblyAIAdapter struct {
	client       *http.Client
	endpoint     *provider.EndpointConfig
	apiKey       string
	pollInterval time.Duration
	pollTimeout  time.Duration
}

type aaiUploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type aaiJobRequest struct {
	AudioURL         string `json:"audio_url"`
	SpeakerLabels    bool   `json:"speaker_labels"`
	SpeakersExpected int    `json:"speakers_expected,omitempty"`
	LanguageCode     string `json:"language_code,omitempty"`
}

type aaiUtterance struct {
	Speaker    string  `json:"speaker"`
	Text       string  `json:"text"`
	Start      int     `json:"start"` // ms
	End        int     `json:"end"`   // ms
	Confidence float64 `json:"confidence"`
}

type aaiJob struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"` // queued | processing | completed | error
	Text          string         `json:"text"`
	Confidence    float64        `json:"confidence"`
	AudioDuration float64        `json:"audio_duration"` // seconds
	Utterances    []aaiUtterance `json:"utterances"`
	Error         string         `json:"error"`
}

// NewAssemblyAIAdapter creates an adapter for AssemblyAI.
// endpoint: the API endpoint config (BaseURL + versioned path prefix)
// apiKey: AssemblyAI API key
// pollInterval, pollTimeout: zero values select the package defaults
func NewAssemblyAIAdapter(endpoint *provider.EndpointConfig, apiKey string, pollInterval, pollTimeout time.Duration) *AssemblyAIAdapter {
	return &AssemblyAIAdapter{
		client:       &http.Client{Timeout: 30 * time.Second},
		endpoint:     endpoint,
		apiKey:       apiKey,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
	}
}

func (a *AssemblyAIAdapter) Name() string {
	return provider.ProviderAssemblyAI
}

// Transcribe runs the full upload -> submit -> poll sequence. Cancelling ctx
// aborts whichever phase is in flight, including the wait between polls.
func (a *AssemblyAIAdapter) Transcribe(ctx context.Context, req *Request) (*Result, error) {
	audioURL, err := a.upload(ctx, req.Audio)
	if err != nil {
		return nil, err
	}

	jobID, err := a.submitJob(ctx, audioURL, req)
	if err != nil {
		return nil, err
	}
	log.Printf("assemblyai-adapter: job %s submitted, polling every %v", jobID, a.interval())

	var job aaiJob
	err = pollJob(ctx, a.interval(), a.timeout(), func(ctx context.Context) (bool, error) {
		j, err := a.fetchJob(ctx, jobID)
		if err != nil {
			return false, err
		}
		switch j.Status {
		case "completed":
			job = *j
			return true, nil
		case "error":
			return false, NewError(a.Name(), http.StatusBadGateway, fmt.Sprintf("job %s failed: %s", jobID, j.Error))
		default:
			// queued, processing: keep polling
			return false, nil
		}
	})
	if err != nil {
		var te *Error
		if errors.As(err, &te) {
			return nil, te
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// poll timeout, distinct from a backend-reported failure
		return nil, WrapError(a.Name(), http.StatusGatewayTimeout, err)
	}

	result := &Result{
		Text:        job.Text,
		Confidence:  job.Confidence,
		DurationSec: job.AudioDuration,
		Provider:    a.Name(),
		Utterances:  make([]Utterance, 0, len(job.Utterances)),
	}
	for _, u := range job.Utterances {
		result.Utterances = append(result.Utterances, Utterance{
			Speaker:    u.Speaker,
			Text:       u.Text,
			StartMS:    u.Start,
			EndMS:      u.End,
			Confidence: u.Confidence,
		})
	}

	log.Printf("assemblyai-adapter: job %s completed, %d utterances, %.0fs audio",
		jobID, len(result.Utterances), result.DurationSec)
	return result, nil
}

// upload sends the raw audio bytes and returns the temporary resource URL.
func (a *AssemblyAIAdapter) upload(ctx context.Context, audio []byte) (string, error) {
	url := a.endpoint.BaseURL + a.endpoint.Path + "/upload"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(audio))
	if err != nil {
		return "", WrapError(a.Name(), http.StatusInternalServerError, err)
	}
	httpReq.Header.Set("Authorization", a.apiKey)
	httpReq.Header.Set("Content-Type", "application/octet-stream")

	start := time.Now()
	resp, err := a.client.Do(httpReq)
	if err != nil {
		log.Printf("assemblyai-adapter: upload failed after %v: %v", time.Since(start), err)
		return "", WrapError(a.Name(), http.StatusBadGateway, fmt.Errorf("upload: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", NewError(a.Name(), resp.StatusCode, fmt.Sprintf("upload rejected: %s", string(body)))
	}

	var uploadResp aaiUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return "", WrapError(a.Name(), http.StatusBadGateway, fmt.Errorf("decode upload response: %w", err))
	}
	if uploadResp.UploadURL == "" {
		return "", NewError(a.Name(), http.StatusBadGateway, "upload response missing upload_url")
	}

	log.Printf("assemblyai-adapter: uploaded %d bytes in %v", len(audio), time.Since(start))
	return uploadResp.UploadURL, nil
}

// submitJob creates a transcription job for the uploaded audio and returns
// its id.
func (a *AssemblyAIAdapter) submitJob(ctx context.Context, audioURL string, req *Request) (string, error) {
	jobReq := aaiJobRequest{
		AudioURL:         audioURL,
		SpeakerLabels:    req.Diarize,
		SpeakersExpected: req.ExpectedSpeakers,
		LanguageCode:     req.Language,
	}
	body, err := json.Marshal(jobReq)
	if err != nil {
		return "", WrapError(a.Name(), http.StatusInternalServerError, fmt.Errorf("marshal job request: %w", err))
	}

	url := a.endpoint.BaseURL + a.endpoint.Path + "/transcript"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", WrapError(a.Name(), http.StatusInternalServerError, err)
	}
	httpReq.Header.Set("Authorization", a.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", WrapError(a.Name(), http.StatusBadGateway, fmt.Errorf("submit job: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", NewError(a.Name(), resp.StatusCode, fmt.Sprintf("job submission rejected: %s", string(respBody)))
	}

	var job aaiJob
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return "", WrapError(a.Name(), http.StatusBadGateway, fmt.Errorf("decode job response: %w", err))
	}
	if job.ID == "" {
		return "", NewError(a.Name(), http.StatusBadGateway, "job response missing id")
	}
	return job.ID, nil
}

// fetchJob retrieves the current job status.
func (a *AssemblyAIAdapter) fetchJob(ctx context.Context, jobID string) (*aaiJob, error) {
	url := a.endpoint.BaseURL + a.endpoint.Path + "/transcript/" + jobID
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, WrapError(a.Name(), http.StatusInternalServerError, err)
	}
	httpReq.Header.Set("Authorization", a.apiKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, WrapError(a.Name(), http.StatusBadGateway, fmt.Errorf("fetch job status: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewError(a.Name(), resp.StatusCode, fmt.Sprintf("status check rejected: %s", string(body)))
	}

	var job aaiJob
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, WrapError(a.Name(), http.StatusBadGateway, fmt.Errorf("decode job status: %w", err))
	}
	return &job, nil
}

func (a *AssemblyAIAdapter) interval() time.Duration {
	if a.pollInterval > 0 {
		return a.pollInterval
	}
	return DefaultPollInterval
}

func (a *AssemblyAIAdapter) timeout() time.Duration {
	if a.pollTimeout > 0 {
		return a.pollTimeout
	}
	return DefaultPollTimeout
}
