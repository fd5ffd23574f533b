package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// HeaderName is the header the media service reads the credential from.
const HeaderName = "x-api-key"

type Config struct {
	APIKey string
}

// Sign sets the credential header on an outgoing header set, dropping any
// existing value under a differently cased name.
func (c *Config) Sign(h http.Header) {
	for k := range h {
		if strings.EqualFold(k, HeaderName) {
			delete(h, k)
		}
	}
	h.Set(HeaderName, c.APIKey)
}

// RequestMiddleware signs every request that passes through a resty client
// unless the request opted out via Unsigned.
func RequestMiddleware(config *Config) resty.RequestMiddleware {
	return func(_ *resty.Client, r *resty.Request) error {
		if Unsigned(r) {
			return nil
		}
		config.Sign(r.Header)
		return nil
	}
}

type unsignedKey struct{}

// MarkUnsigned flags a request so RequestMiddleware leaves it untouched.
// Used for presigned storage URLs, which must never see the credential.
func MarkUnsigned(r *resty.Request) *resty.Request {
	r.SetContext(context.WithValue(r.Context(), unsignedKey{}, true))
	return r
}

// Unsigned reports whether the request was flagged with MarkUnsigned.
func Unsigned(r *resty.Request) bool {
	v, _ := r.Context().Value(unsignedKey{}).(bool)
	return v
}
