package media

import (
	"context"

	"momentflow/internal/transport"
)

// Transport interface for dependency injection and testing
type Transport interface {
	Do(ctx context.Context, req *transport.Request) ([]byte, error)
}

// StatusProber is what the Poller drives; *Prober satisfies it.
type StatusProber interface {
	Probe(ctx context.Context, key Key) ProbeResult
}
