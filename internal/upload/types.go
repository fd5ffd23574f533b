package upload

import (
	"fmt"

	"momentflow/internal/media"
)

const slotPath = "/moments/media-upload-url"

// Destination is a single-use target for one binary transfer.
type Destination struct {
	URL string    `json:"url"`
	Key media.Key `json:"key"`
}

// ProtocolError reports a response that violates the service contract.
type ProtocolError struct {
	Operation string
	Reason    string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: protocol violation: %s", e.Operation, e.Reason)
}

// ValidationError rejects a payload locally, before any network call.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Standard validation codes
const (
	ErrMimeNotAllowed = "mime_not_allowed"
	ErrSizeTooLarge   = "size_too_large"
	ErrEmptyPayload   = "empty_payload"
)
