package moment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"momentflow/internal/media"
	"momentflow/internal/transport"
)

const momentsPath = "/moments"

// ErrMissingMediaKey is returned before any request when Input has no key.
var ErrMissingMediaKey = errors.New("moment input has no media key")

// Input is the payload for POST /moments. The referenced media must already
// be PROCESSED; the registrar does not check.
type Input struct {
	MediaKey    media.Key      `json:"mediaKey"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	CapturedAt  *time.Time     `json:"capturedAt,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Record is the created moment as returned by the service. The service owns
// its shape: ID and CreatedAt hold whatever scalar it sent, as text. Raw keeps
// the full response for fields the client does not model.
type Record struct {
	ID        string
	MediaKey  media.Key
	Title     string
	CreatedAt string
	Raw       json.RawMessage
}

// recordFields picks the modeled fields out of a response without imposing
// types on them.
type recordFields struct {
	ID        json.RawMessage `json:"id"`
	MediaKey  json.RawMessage `json:"mediaKey"`
	Title     json.RawMessage `json:"title"`
	CreatedAt json.RawMessage `json:"createdAt"`
}

// Transport interface for dependency injection and testing
type Transport interface {
	Do(ctx context.Context, req *transport.Request) ([]byte, error)
}

type Registrar struct {
	transport Transport
	logger    zerolog.Logger
}

func NewRegistrar(t Transport, logger zerolog.Logger) *Registrar {
	return &Registrar{
		transport: t,
		logger:    logger.With().Str("component", "registrar").Logger(),
	}
}

// CreateMoment submits input once. Transport errors are returned unchanged.
// Once the service answered 2xx the moment exists, so a body that cannot be
// decoded still yields a Record with Raw set.
func (r *Registrar) CreateMoment(ctx context.Context, input *Input) (*Record, error) {
	if input == nil || strings.TrimSpace(string(input.MediaKey)) == "" {
		return nil, ErrMissingMediaKey
	}

	body, err := r.transport.Do(ctx, &transport.Request{
		Method:  http.MethodPost,
		URL:     momentsPath,
		Body:    input,
		Headers: map[string]string{"Content-Type": "application/json"},
	})
	if err != nil {
		return nil, err
	}

	record := r.decodeRecord(body)
	if record.MediaKey == "" {
		record.MediaKey = input.MediaKey
	}

	r.logger.Info().
		Str("moment_id", record.ID).
		Str("media_key", string(record.MediaKey)).
		Msg("moment created")
	return record, nil
}

func (r *Registrar) decodeRecord(body []byte) *Record {
	record := &Record{Raw: json.RawMessage(body)}
	if len(strings.TrimSpace(string(body))) == 0 {
		return record
	}

	var fields recordFields
	if err := json.Unmarshal(body, &fields); err != nil {
		r.logger.Debug().Err(err).Msg("created moment body is not a JSON object, keeping raw body")
		return record
	}
	record.ID = scalarText(fields.ID)
	record.MediaKey = media.Key(scalarText(fields.MediaKey))
	record.Title = scalarText(fields.Title)
	record.CreatedAt = scalarText(fields.CreatedAt)
	return record
}

// scalarText renders a JSON string or number as text; anything else is "".
func scalarText(raw json.RawMessage) string {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if len(raw) == 0 || dec.Decode(&v) != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return ""
	}
}
