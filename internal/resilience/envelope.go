package resilience

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/toolspec-cli/internal/model"
)

// Resolver is one resolution call against a single record.
type Resolver func(ctx context.Context) (*model.SpecResult, error)

// EnvelopeConfig controls the retry/timeout envelope around a resolution.
type EnvelopeConfig struct {
	// MaxAttempts is the total attempt cap, including the first try.
	// Default: 3.
	MaxAttempts int

	// AttemptTimeout is the per-attempt deadline. Strategies that drive
	// page rendering request a longer one; this is the outer bound of a
	// single attempt, nested inside the job's cancellation. Default: 15s.
	AttemptTimeout time.Duration

	// RetryDelay is the base inter-attempt delay; the wait before retry n
	// is RetryDelay * n, so delays strictly increase. Default: 2s.
	RetryDelay time.Duration
}

func (c EnvelopeConfig) withDefaults() EnvelopeConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = 15 * time.Second
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 2 * time.Second
	}
	return c
}

// Envelope retries a Resolver under per-attempt deadlines. Nothing raises
// past this boundary: callers always receive a SpecResult.
type Envelope struct {
	cfg EnvelopeConfig
}

// NewEnvelope creates an Envelope with cfg defaults applied.
func NewEnvelope(cfg EnvelopeConfig) *Envelope {
	return &Envelope{cfg: cfg.withDefaults()}
}

// Resolve runs fn up to MaxAttempts times. attemptTimeout overrides the
// configured per-attempt deadline when > 0 (rendering strategies ask for
// more headroom). Deadline, network and other failures are all retried;
// unexpected ones are additionally logged. On exhaustion the last error is
// classified into a terminal failed SpecResult.
func (e *Envelope) Resolve(ctx context.Context, desc string, attemptTimeout time.Duration, fn Resolver) *model.SpecResult {
	cfg := e.cfg
	if attemptTimeout > 0 {
		cfg.AttemptTimeout = attemptTimeout
	}

	var lastErr error
	made := 0
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		made = attempt
		actx, cancel := context.WithTimeout(ctx, cfg.AttemptTimeout)
		res, err := fn(actx)
		cancel()

		if err == nil && res != nil {
			return res
		}
		if err == nil {
			err = context.DeadlineExceeded
		}
		lastErr = err

		// Job cancelled: stop immediately, no further attempts.
		if ctx.Err() != nil {
			break
		}

		if Classify(err) == FailureOther {
			zap.L().Warn("resolution attempt failed",
				zap.String("item", desc),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		} else {
			zap.L().Debug("resolution attempt failed",
				zap.String("item", desc),
				zap.Int("attempt", attempt),
				zap.String("class", string(Classify(err))),
			)
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		// Linear backoff: base * attempt index.
		timer := time.NewTimer(cfg.RetryDelay * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return model.FailedResult(Describe(lastErr, attempt))
		case <-timer.C:
		}
	}

	return model.FailedResult(Describe(lastErr, made))
}
