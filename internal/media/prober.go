package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"momentflow/internal/metrics"
	"momentflow/internal/transport"
)

type Prober struct {
	transport Transport
	logger    zerolog.Logger
}

func NewProber(t Transport, logger zerolog.Logger) *Prober {
	return &Prober{
		transport: t,
		logger:    logger.With().Str("component", "prober").Logger(),
	}
}

// Probe fetches the processing status of key. Any failure to observe a status
// (transport error, undecodable body, missing status field) is reported as a
// transient result instead of an error.
func (p *Prober) Probe(ctx context.Context, key Key) ProbeResult {
	body, err := p.transport.Do(ctx, &transport.Request{
		Method: http.MethodGet,
		URL:    "/media/" + url.PathEscape(string(key)),
	})
	if err != nil {
		return p.transient(key, err)
	}

	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return p.transient(key, fmt.Errorf("failed to decode status response: %w", err))
	}
	status := Status(strings.TrimSpace(string(resp.Status)))
	if status == "" {
		return p.transient(key, errors.New("status response has no status"))
	}

	metrics.ProbesTotal.WithLabelValues(probeOutcome(status)).Inc()
	if probeOutcome(status) == outcomeOther {
		p.logger.Debug().
			Str("media_key", string(key)).
			Str("status", string(status)).
			Msg("unrecognized media status")
	}
	return Observed(status)
}

const outcomeOther = "other"

// probeOutcome bounds the ProbesTotal label to the known statuses.
func probeOutcome(status Status) string {
	switch status {
	case StatusInProcess, StatusProcessed, StatusInvalid:
		return strings.ToLower(string(status))
	default:
		return outcomeOther
	}
}

// Status is Probe with the transient case folded into StatusInProcess.
func (p *Prober) Status(ctx context.Context, key Key) Status {
	return p.Probe(ctx, key).Effective()
}

func (p *Prober) transient(key Key, err error) ProbeResult {
	metrics.ProbesTotal.WithLabelValues("transient").Inc()
	p.logger.Debug().
		Err(err).
		Str("media_key", string(key)).
		Msg("status probe failed, treating as in process")
	return Transient(err)
}
