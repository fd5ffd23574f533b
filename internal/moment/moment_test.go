package moment

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"momentflow/internal/media"
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
	return []byte(`{"id":"m_1","mediaKey":"k1","title":"Sunset","createdAt":"2026-10-19T10:00:00Z","likes":0}`), nil
}

func TestRegistrar_CreateMoment(t *testing.T) {
	mock := &MockTransport{}
	registrar := NewRegistrar(mock, zerolog.Nop())
	captured := time.Date(2026, 10, 18, 19, 30, 0, 0, time.UTC)

	input := &Input{
		MediaKey:   "k1",
		Title:      "Sunset",
		Tags:       []string{"beach"},
		CapturedAt: &captured,
	}
	record, err := registrar.CreateMoment(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "m_1", record.ID)
	assert.Equal(t, media.Key("k1"), record.MediaKey)
	assert.Equal(t, "Sunset", record.Title)
	assert.Equal(t, "2026-10-19T10:00:00Z", record.CreatedAt)
	assert.Contains(t, string(record.Raw), `"likes":0`)

	require.Len(t, mock.calls, 1)
	req := mock.calls[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/moments", req.URL)
	assert.Same(t, input, req.Body)
	assert.Equal(t, "application/json", req.Headers["Content-Type"])
	assert.False(t, req.Unsigned)
}

func TestRegistrar_CreateMoment_MissingKey(t *testing.T) {
	mock := &MockTransport{}
	registrar := NewRegistrar(mock, zerolog.Nop())

	for _, input := range []*Input{nil, {}, {MediaKey: " "}} {
		_, err := registrar.CreateMoment(context.Background(), input)
		assert.ErrorIs(t, err, ErrMissingMediaKey)
	}
	assert.Empty(t, mock.calls)
}

func TestRegistrar_CreateMoment_TransportError(t *testing.T) {
	want := &transport.Error{Method: "POST", URL: "/moments", Status: 409, Body: []byte("duplicate")}
	mock := &MockTransport{
		doFunc: func(ctx context.Context, req *transport.Request) ([]byte, error) {
			return nil, want
		},
	}
	registrar := NewRegistrar(mock, zerolog.Nop())

	_, err := registrar.CreateMoment(context.Background(), &Input{MediaKey: "k1"})

	assert.Same(t, want, err)
	assert.Len(t, mock.calls, 1)
}

func TestRegistrar_CreateMoment_EmptyBody(t *testing.T) {
	mock := &MockTransport{
		doFunc: func(ctx context.Context, req *transport.Request) ([]byte, error) {
			return nil, nil
		},
	}
	registrar := NewRegistrar(mock, zerolog.Nop())

	record, err := registrar.CreateMoment(context.Background(), &Input{MediaKey: "k1"})

	require.NoError(t, err)
	assert.Equal(t, media.Key("k1"), record.MediaKey)
}

func TestRegistrar_CreateMoment_ServiceDefinedShapes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		id        string
		mediaKey  media.Key
		createdAt string
	}{
		{
			name:     "Numeric id",
			body:     `{"id":12345,"mediaKey":"k1"}`,
			id:       "12345",
			mediaKey: "k1",
		},
		{
			name:      "Non RFC3339 createdAt",
			body:      `{"id":"m_2","createdAt":"2026-10-19 10:00:00"}`,
			id:        "m_2",
			mediaKey:  "k1",
			createdAt: "2026-10-19 10:00:00",
		},
		{
			name:      "Unix createdAt",
			body:      `{"id":"m_3","createdAt":1760868000}`,
			id:        "m_3",
			mediaKey:  "k1",
			createdAt: "1760868000",
		},
		{
			name:     "Object id",
			body:     `{"id":{"value":"m_4"},"title":["x"]}`,
			mediaKey: "k1",
		},
		{
			name:     "Not JSON",
			body:     "created",
			mediaKey: "k1",
		},
		{
			name:     "JSON array",
			body:     `[1,2]`,
			mediaKey: "k1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockTransport{
				doFunc: func(ctx context.Context, req *transport.Request) ([]byte, error) {
					return []byte(tt.body), nil
				},
			}
			registrar := NewRegistrar(mock, zerolog.Nop())

			record, err := registrar.CreateMoment(context.Background(), &Input{MediaKey: "k1"})

			require.NoError(t, err)
			assert.Equal(t, tt.id, record.ID)
			assert.Equal(t, tt.mediaKey, record.MediaKey)
			assert.Equal(t, tt.createdAt, record.CreatedAt)
			assert.Equal(t, tt.body, string(record.Raw))
			assert.Len(t, mock.calls, 1)
		})
	}
}
