package upload

import (
	"context"

	"momentflow/internal/transport"
)

// Transport interface for dependency injection and testing
type Transport interface {
	Do(ctx context.Context, req *transport.Request) ([]byte, error)
}
