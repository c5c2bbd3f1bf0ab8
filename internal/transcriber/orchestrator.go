package transcriber

import (
	"context"
	"fmt"
	"log"
)

// Orchestrator tries an ordered list of backends until one succeeds. The
// first adapter is the primary; every later one is a fallback. It holds no
// cross-request state: the adapter list is configuration, fixed at
// construction.
type Orchestrator struct {
	adapters []Adapter
}

// Outcome couples a provider result with fallback bookkeeping.
type Outcome struct {
	Result *Result
	// Fallback is true when the result came from any adapter other than the
	// primary.
	Fallback bool
}

// NewOrchestrator builds an orchestrator over an explicit provider order:
// one primary plus zero or more fallbacks.
func NewOrchestrator(adapters ...Adapter) (*Orchestrator, error) {
	if len(adapters) == 0 {
		return nil, fmt.Errorf("at least one transcription adapter required")
	}
	return &Orchestrator{adapters: adapters}, nil
}

// Transcribe validates the request once, then attempts each adapter strictly
// in sequence. The first success wins; later adapters are never invoked.
// Mid-chain failures are logged and swallowed. When every adapter fails the
// aggregated service-unavailable error is returned instead.
func (o *Orchestrator) Transcribe(ctx context.Context, req *Request) (*Outcome, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	for i, adapter := range o.adapters {
		res, err := adapter.Transcribe(ctx, req)
		if err != nil {
			log.Printf("orchestrator: provider %s failed: %v", adapter.Name(), err)
			if ctx.Err() != nil {
				// caller abandoned the request, stop the chain
				return nil, ctx.Err()
			}
			continue
		}

		if res.Provider == "" {
			res.Provider = adapter.Name()
		}
		if i > 0 {
			log.Printf("orchestrator: provider %s succeeded as fallback (attempt %d/%d)",
				adapter.Name(), i+1, len(o.adapters))
		}
		return &Outcome{Result: res, Fallback: i > 0}, nil
	}

	return nil, allProvidersFailed()
}

func validateRequest(req *Request) error {
	if req == nil || len(req.Audio) == 0 {
		return &ValidationError{Message: "audio payload is empty"}
	}
	if len(req.Audio) > MaxAudioBytes {
		return &ValidationError{
			Message: fmt.Sprintf("audio payload is %d bytes, limit is %d (25 MB)", len(req.Audio), MaxAudioBytes),
		}
	}
	return nil
}
