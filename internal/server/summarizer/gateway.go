package summarizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/semaphore"
)

// GatewayConfig tunes the resilience policy around the summarization calls.
type GatewayConfig struct {
	// CallTimeout bounds a single call to the capability.
	CallTimeout time.Duration

	// MaxAttempts is the total number of attempts, first call included.
	MaxAttempts uint64

	// BaseDelay and MaxDelay shape the exponential backoff between attempts.
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// MaxConcurrent caps simultaneous outstanding calls.
	MaxConcurrent int64

	// MinRequests and FailureRatio define the sliding-window trip condition;
	// Cooldown is how long the breaker stays open.
	MinRequests  uint32
	FailureRatio float64
	Cooldown     time.Duration
}

// DefaultGatewayConfig returns the design defaults.
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		CallTimeout:   30 * time.Second,
		MaxAttempts:   3,
		BaseDelay:     500 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		MaxConcurrent: 4,
		MinRequests:   5,
		FailureRatio:  0.6,
		Cooldown:      30 * time.Second,
	}
}

// Gateway wraps a Summarizer with per-call timeout, bounded retry with
// exponential backoff and jitter, a circuit breaker, and an admission
// semaphore. ErrPermanent is never retried and propagates immediately.
type Gateway struct {
	inner   Summarizer
	cfg     GatewayConfig
	breaker *gobreaker.CircuitBreaker
	sem     *semaphore.Weighted
}

func NewGateway(inner Summarizer, cfg GatewayConfig) *Gateway {
	// MaxAttempts-1 feeds WithMaxRetries as a uint64; zero would underflow
	// into unbounded retry. A non-positive MaxConcurrent would make the
	// semaphore refuse every acquisition. Floor both at one.
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "summarizer",
		Timeout: cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		// A permanent failure is a healthy answer from the capability's point
		// of view; only transport-level failures count against the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrPermanent)
		},
	})

	return &Gateway{
		inner:   inner,
		cfg:     cfg,
		breaker: breaker,
		sem:     semaphore.NewWeighted(cfg.MaxConcurrent),
	}
}

func (g *Gateway) Summarize(ctx context.Context, images []Image) (string, error) {

	if err := g.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer g.sem.Release(1)

	backoff := retry.NewExponential(g.cfg.BaseDelay)
	backoff = retry.WithJitter(g.cfg.BaseDelay/2, backoff)
	backoff = retry.WithCappedDuration(g.cfg.MaxDelay, backoff)
	backoff = retry.WithMaxRetries(g.cfg.MaxAttempts-1, backoff)

	var summary string

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		res, err := g.breaker.Execute(func() (any, error) {
			callCtx, cancel := context.WithTimeout(ctx, g.cfg.CallTimeout)
			defer cancel()
			return g.inner.Summarize(callCtx, images)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
			}
			if errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded) {
				return retry.RetryableError(err)
			}
			return err
		}
		summary = res.(string)
		return nil
	})
	if err != nil {
		return "", err
	}

	return summary, nil
}
