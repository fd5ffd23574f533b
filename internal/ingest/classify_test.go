package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"momentflow/internal/media"
	"momentflow/internal/moment"
	"momentflow/internal/transport"
	"momentflow/internal/upload"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "Nil", err: nil, want: KindNone},
		{name: "Transport", err: &transport.Error{Status: 500}, want: KindTransport},
		{name: "Wrapped transport", err: fmt.Errorf("slot: %w", &transport.Error{}), want: KindTransport},
		{name: "Protocol", err: &upload.ProtocolError{Operation: "x", Reason: "y"}, want: KindProtocol},
		{name: "Missing media key", err: moment.ErrMissingMediaKey, want: KindProtocol},
		{name: "Invalid media", err: &media.InvalidMediaError{Key: "k"}, want: KindInvalidMedia},
		{name: "Timeout", err: &media.TimeoutError{Key: "k"}, want: KindTimeout},
		{name: "Canceled", err: context.Canceled, want: KindCanceled},
		{name: "Deadline", err: context.DeadlineExceeded, want: KindCanceled},
		{name: "Transport carrying cancel", err: &transport.Error{Err: context.Canceled}, want: KindCanceled},
		{name: "Validation", err: &upload.ValidationError{Code: upload.ErrEmptyPayload}, want: KindValidation},
		{name: "Unknown", err: errors.New("boom"), want: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
