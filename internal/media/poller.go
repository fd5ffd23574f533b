package media

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"momentflow/internal/metrics"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultTimeout      = 60 * time.Second
)

// State of one readiness wait.
type State string

const (
	StateWaiting       State = "waiting"
	StateSucceeded     State = "succeeded"
	StateFailedInvalid State = "failed_invalid"
	StateFailedTimeout State = "failed_timeout"
	StateCanceled      State = "canceled"
)

// SleepFunc suspends for d or until ctx is done, whichever comes first.
type SleepFunc func(ctx context.Context, d time.Duration) error

type Poller struct {
	prober   StatusProber
	interval time.Duration
	timeout  time.Duration
	sleep    SleepFunc
	logger   zerolog.Logger
}

type PollerOption func(*Poller)

func WithPollInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithTimeout(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithSleep(fn SleepFunc) PollerOption {
	return func(p *Poller) {
		p.sleep = fn
	}
}

func WithLogger(logger zerolog.Logger) PollerOption {
	return func(p *Poller) {
		p.logger = logger
	}
}

func NewPoller(prober StatusProber, opts ...PollerOption) *Poller {
	p := &Poller{
		prober:   prober,
		interval: DefaultPollInterval,
		timeout:  DefaultTimeout,
		sleep:    sleepContext,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With().Str("component", "poller").Logger()
	return p
}

// MaxAttempts is floor(timeout / interval).
func (p *Poller) MaxAttempts() int {
	return int(p.timeout / p.interval)
}

// WaitUntilReady blocks until key reaches PROCESSED, the service marks it
// INVALID, or the attempt budget runs out. It returns the number of probes
// performed.
//
// One interval is slept before the first probe and after every non-terminal
// probe, so a timeout takes (MaxAttempts()+1) intervals in the worst case.
// Cancellation of ctx is observed at each sleep.
func (p *Poller) WaitUntilReady(ctx context.Context, key Key) (int, error) {
	maxAttempts := p.MaxAttempts()
	log := p.logger.With().Str("media_key", string(key)).Logger()
	log.Debug().
		Int("max_attempts", maxAttempts).
		Dur("poll_interval", p.interval).
		Msg("waiting for media readiness")

	if err := p.sleep(ctx, p.interval); err != nil {
		return 0, p.finish(log, StateCanceled, 0, err)
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		result := p.prober.Probe(ctx, key)

		switch result.Effective() {
		case StatusProcessed:
			return attempt + 1, p.finish(log, StateSucceeded, attempt+1, nil)
		case StatusInvalid:
			return attempt + 1, p.finish(log, StateFailedInvalid, attempt+1, &InvalidMediaError{Key: key, Attempts: attempt + 1})
		}

		log.Debug().
			Int("attempt", attempt+1).
			Str("status", string(result.Effective())).
			Bool("transient", result.IsTransient()).
			Msg("media not ready")

		if err := p.sleep(ctx, p.interval); err != nil {
			return attempt + 1, p.finish(log, StateCanceled, attempt+1, err)
		}
	}

	return maxAttempts, p.finish(log, StateFailedTimeout, maxAttempts, &TimeoutError{
		Key:          key,
		Attempts:     maxAttempts,
		PollInterval: p.interval,
		Timeout:      p.timeout,
	})
}

func (p *Poller) finish(log zerolog.Logger, state State, attempts int, err error) error {
	metrics.PollOutcomesTotal.WithLabelValues(string(state)).Inc()
	event := log.Info()
	if err != nil {
		event = log.Warn().Err(err)
	}
	event.Str("state", string(state)).Int("attempts", attempts).Msg("readiness wait finished")
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
