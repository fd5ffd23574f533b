package transport

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/oklog/ulid/v2"
)

const requestIDHeader = "X-Request-ID"

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// NewRequestID returns a lowercase ULID.
func NewRequestID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String())
}

func requestIDMiddleware(_ *resty.Client, r *resty.Request) error {
	if r.Header.Get(requestIDHeader) == "" {
		r.Header.Set(requestIDHeader, NewRequestID())
	}
	return nil
}
