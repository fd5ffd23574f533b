package ingest

import (
	"context"
	"errors"

	"momentflow/internal/media"
	"momentflow/internal/moment"
	"momentflow/internal/transport"
	"momentflow/internal/upload"
)

// Kind is the closed set of failure classes a pipeline run can end with.
type Kind string

const (
	KindNone         Kind = ""
	KindTransport    Kind = "transport"
	KindProtocol     Kind = "protocol"
	KindInvalidMedia Kind = "invalid_media"
	KindTimeout      Kind = "timeout"
	KindCanceled     Kind = "canceled"
	KindValidation   Kind = "validation"
	KindUnknown      Kind = "unknown"
)

// Classify maps err onto a Kind. Cancellation wins over the error that
// carried it, so an aborted request reads as canceled, not transport.
func Classify(err error) Kind {
	var (
		invalidErr    *media.InvalidMediaError
		timeoutErr    *media.TimeoutError
		protocolErr   *upload.ProtocolError
		validationErr *upload.ValidationError
		transportErr  *transport.Error
	)

	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.As(err, &invalidErr):
		return KindInvalidMedia
	case errors.As(err, &timeoutErr):
		return KindTimeout
	case errors.As(err, &protocolErr), errors.Is(err, moment.ErrMissingMediaKey):
		return KindProtocol
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &transportErr):
		return KindTransport
	default:
		return KindUnknown
	}
}
