package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"momentflow/internal/config"
	"momentflow/internal/transport"
)

type Service struct {
	transport Transport
	logger    zerolog.Logger
}

func NewService(t Transport, logger zerolog.Logger) *Service {
	return &Service{
		transport: t,
		logger:    logger.With().Str("component", "upload").Logger(),
	}
}

// GetUploadDestination requests a fresh upload slot. Both url and key must be
// present in the response.
func (s *Service) GetUploadDestination(ctx context.Context) (*Destination, error) {
	body, err := s.transport.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    slotPath,
		Body:   map[string]any{},
	})
	if err != nil {
		return nil, err
	}

	var dest Destination
	if err := json.Unmarshal(body, &dest); err != nil {
		return nil, &ProtocolError{Operation: "request upload slot", Reason: fmt.Sprintf("undecodable response: %v", err)}
	}
	if err := validateDestination(&dest); err != nil {
		return nil, err
	}

	s.logger.Debug().Str("media_key", string(dest.Key)).Msg("upload slot issued")
	return &dest, nil
}

// Upload transfers payload to dest in one PUT. The request is unsigned: the
// destination is a presigned storage URL.
func (s *Service) Upload(ctx context.Context, dest *Destination, payload []byte, contentType string) error {
	if err := validateDestination(dest); err != nil {
		return err
	}

	_, err := s.transport.Do(ctx, &transport.Request{
		Method:   http.MethodPut,
		URL:      dest.URL,
		RawBody:  payload,
		Headers:  map[string]string{"Content-Type": contentType},
		Unsigned: true,
	})
	if err != nil {
		return err
	}

	s.logger.Debug().
		Str("media_key", string(dest.Key)).
		Int("size_bytes", len(payload)).
		Str("content_type", contentType).
		Msg("payload uploaded")
	return nil
}

// ValidatePayload checks payload against profile limits.
func (s *Service) ValidatePayload(payload []byte, contentType string, profile *config.Profile) error {
	if len(payload) == 0 {
		return &ValidationError{Code: ErrEmptyPayload, Message: "payload is empty"}
	}
	if !s.isMimeAllowed(contentType, profile.AllowedMimes) {
		return &ValidationError{Code: ErrMimeNotAllowed, Message: fmt.Sprintf("mime type not allowed: %s", contentType)}
	}
	if profile.SizeMaxBytes > 0 && int64(len(payload)) > profile.SizeMaxBytes {
		return &ValidationError{Code: ErrSizeTooLarge, Message: fmt.Sprintf("file size exceeds maximum: %d > %d", len(payload), profile.SizeMaxBytes)}
	}
	return nil
}

// Helper methods

func (s *Service) isMimeAllowed(mime string, allowedMimes []string) bool {
	// Parameters such as "; charset=" do not take part in the match
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	for _, allowed := range allowedMimes {
		if mime == allowed {
			return true
		}
	}
	return false
}

func validateDestination(dest *Destination) error {
	const op = "request upload slot"
	switch {
	case dest == nil:
		return &ProtocolError{Operation: op, Reason: "no upload destination"}
	case strings.TrimSpace(dest.URL) == "":
		return &ProtocolError{Operation: op, Reason: "upload destination has no url"}
	case strings.TrimSpace(string(dest.Key)) == "":
		return &ProtocolError{Operation: op, Reason: "upload destination has no key"}
	}
	return nil
}
