package media

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidMedia matches any *InvalidMediaError.
	ErrInvalidMedia = errors.New("media rejected by processing")
	// ErrTimeout matches any *TimeoutError.
	ErrTimeout = errors.New("media readiness timed out")
)

// InvalidMediaError is permanent: the service marked the media unprocessable.
type InvalidMediaError struct {
	Key      Key
	Attempts int
}

func (e *InvalidMediaError) Error() string {
	return fmt.Sprintf("media %s: %v", e.Key, ErrInvalidMedia)
}

func (e *InvalidMediaError) Is(target error) bool {
	return target == ErrInvalidMedia
}

// TimeoutError means readiness could not be confirmed within the attempt
// budget. It says nothing about validity of the media.
type TimeoutError struct {
	Key          Key
	Attempts     int
	PollInterval time.Duration
	Timeout      time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("media %s: %v after %d attempts (timeout %s, interval %s)",
		e.Key, ErrTimeout, e.Attempts, e.Timeout, e.PollInterval)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
