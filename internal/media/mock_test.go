package media

import (
	"context"
	"sync"
	"time"

	"momentflow/internal/transport"
)

// MockTransport implements Transport for testing
type MockTransport struct {
	doFunc func(ctx context.Context, req *transport.Request) ([]byte, error)
	calls  []*transport.Request
}

func (m *MockTransport) Do(ctx context.Context, req *transport.Request) ([]byte, error) {
	m.calls = append(m.calls, req)
	if m.doFunc != nil {
		return m.doFunc(ctx, req)
	}
	return []byte(`{"status":"IN_PROCESS"}`), nil
}

// scriptedProber returns results in order and repeats the last one.
type scriptedProber struct {
	results []ProbeResult
	calls   int
}

func (s *scriptedProber) Probe(_ context.Context, _ Key) ProbeResult {
	i := s.calls
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	s.calls++
	return s.results[i]
}

// fakeSleeper records suspensions without waiting.
type fakeSleeper struct {
	mu    sync.Mutex
	calls []time.Duration
	// cancelAfter cancels via the returned error once this many sleeps happened; 0 disables.
	cancelAfter int
}

func (f *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, d)
	if f.cancelAfter > 0 && len(f.calls) >= f.cancelAfter {
		return context.Canceled
	}
	return ctx.Err()
}

func (f *fakeSleeper) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
