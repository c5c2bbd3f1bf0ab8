// Package pipeline runs one transcription request end to end: orchestrated
// backend selection, speaker role classification, and transcript rendering.
package pipeline

import (
	"context"
	"fmt"

	"github.com/clinscribe/clinscribe/internal/config"
	"github.com/clinscribe/clinscribe/internal/diarize"
	"github.com/clinscribe/clinscribe/internal/provider"
	"github.com/clinscribe/clinscribe/internal/report"
	"github.com/clinscribe/clinscribe/internal/transcriber"
)

// Pipeline is safe for concurrent use: it holds only immutable configuration
// and stateless collaborators, so independent requests never share state.
type Pipeline struct {
	orchestrator *transcriber.Orchestrator
	classifier   *diarize.Classifier
	formatter    *report.Formatter
}

// New assembles a pipeline from explicit collaborators.
func New(o *transcriber.Orchestrator, c *diarize.Classifier, f *report.Formatter) *Pipeline {
	return &Pipeline{orchestrator: o, classifier: c, formatter: f}
}

// FromConfig builds the active adapter set from configuration, in the
// configured order, and assembles the pipeline around it.
func FromConfig(cfg *config.Config) (*Pipeline, error) {
	adapters := make([]transcriber.Adapter, 0, len(cfg.Transcription.Providers))
	for _, name := range cfg.Transcription.Providers {
		adapter, err := buildAdapter(cfg, name)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, adapter)
	}

	orchestrator, err := transcriber.NewOrchestrator(adapters...)
	if err != nil {
		return nil, err
	}

	formatter := report.NewFormatter()
	if cfg.Report.Width > 0 {
		formatter.Width = cfg.Report.Width
	}

	return New(orchestrator, diarize.NewClassifier(), formatter), nil
}

func buildAdapter(cfg *config.Config, name string) (transcriber.Adapter, error) {
	apiKey := cfg.APIKeyForProvider(name)
	if apiKey == "" {
		return nil, fmt.Errorf("%s API key required", name)
	}

	switch name {
	case provider.ProviderAssemblyAI:
		endpoint := provider.GetProvider(name).Endpoint()
		return transcriber.NewAssemblyAIAdapter(endpoint, apiKey, cfg.Polling.Interval, cfg.Polling.Timeout), nil
	case provider.ProviderOpenAI:
		return transcriber.NewOpenAIAdapter(apiKey, cfg.ModelForProvider(name)), nil
	case provider.ProviderGroq:
		return transcriber.NewGroqAdapter(apiKey, cfg.ModelForProvider(name)), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

// Run transcribes one request and renders its report. Roles are classified
// only when the backend returned more than one distinct speaker tag.
func (p *Pipeline) Run(ctx context.Context, req *transcriber.Request) (*report.Report, error) {
	outcome, err := p.orchestrator.Transcribe(ctx, req)
	if err != nil {
		return nil, err
	}

	var profiles []diarize.SpeakerProfile
	if distinctSpeakers(outcome.Result.Utterances) > 1 {
		profiles = p.classifier.Classify(outcome.Result.Utterances)
	}

	return p.formatter.Format(outcome.Result, profiles, outcome.Fallback), nil
}

// ConfigSource supplies the configuration current at call time.
// *config.Manager satisfies it.
type ConfigSource interface {
	GetConfig() *config.Config
}

// Reloading builds a fresh pipeline from the source's current configuration
// for every request, so hot-reloaded provider order, credentials, models,
// polling bounds and report width take effect on the next file picked up.
// Adapters are stateless, so the rebuild costs nothing beyond allocation.
type Reloading struct {
	source ConfigSource
}

func NewReloading(source ConfigSource) *Reloading {
	return &Reloading{source: source}
}

func (r *Reloading) Run(ctx context.Context, req *transcriber.Request) (*report.Report, error) {
	p, err := FromConfig(r.source.GetConfig())
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, req)
}

func distinctSpeakers(utterances []transcriber.Utterance) int {
	tags := make(map[string]bool)
	for _, u := range utterances {
		tags[u.Speaker] = true
	}
	return len(tags)
}
