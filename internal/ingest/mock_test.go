package ingest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"momentflow/internal/notify"
	"momentflow/internal/transport"
)

// fakeService answers transport requests the way the media service would.
type fakeService struct {
	mu       sync.Mutex
	slotBody string
	slotErr  error
	putErr   error
	statuses []string // repeated last; "" means the probe fails
	moment   string
	calls    []*transport.Request
	probes   int
}

func (f *fakeService) Do(_ context.Context, req *transport.Request) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)

	switch {
	case req.Method == http.MethodPost && req.URL == "/moments/media-upload-url":
		if f.slotErr != nil {
			return nil, f.slotErr
		}
		return []byte(f.slotBody), nil
	case req.Method == http.MethodPut:
		return nil, f.putErr
	case req.Method == http.MethodGet && strings.HasPrefix(req.URL, "/media/"):
		i := f.probes
		if i >= len(f.statuses) {
			i = len(f.statuses) - 1
		}
		f.probes++
		if f.statuses[i] == "" {
			return nil, &transport.Error{Method: req.Method, URL: req.URL, Status: http.StatusBadGateway}
		}
		return []byte(`{"status":"` + f.statuses[i] + `"}`), nil
	case req.Method == http.MethodPost && req.URL == "/moments":
		return []byte(f.moment), nil
	}
	return nil, errors.New("unexpected request " + req.Method + " " + req.URL)
}

func (f *fakeService) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// MockPublisher implements notify.Publisher for testing
type MockPublisher struct {
	publishFunc func(ctx context.Context, event *notify.Event) error
	events      []*notify.Event
}

func (m *MockPublisher) Publish(ctx context.Context, event *notify.Event) error {
	m.events = append(m.events, event)
	if m.publishFunc != nil {
		return m.publishFunc(ctx, event)
	}
	return nil
}

func (m *MockPublisher) Close() error { return nil }

type countingSleep struct {
	calls int
}

func (c *countingSleep) Sleep(ctx context.Context, _ time.Duration) error {
	c.calls++
	return ctx.Err()
}
