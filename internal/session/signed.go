package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"https-examples/internal/logger"

	"github.com/gorilla/securecookie"
)

var errNoKeys = errors.New("session: at least one signing key is required")

// signedCookie encodes values into an HMAC-signed cookie.
// The first key signs; every key is accepted when verifying, so keys can be
// rotated by prepending a new one.
type signedCookie struct {
	name   string
	maxAge time.Duration
	codecs []securecookie.Codec
	opts   CookieOptions
}

func newSignedCookie(name string, keys [][]byte, maxAge time.Duration, opts CookieOptions) (*signedCookie, error) {
	if len(keys) == 0 {
		return nil, errNoKeys
	}

	codecs := make([]securecookie.Codec, 0, len(keys))
	for i, key := range keys {
		if len(key) == 0 {
			return nil, fmt.Errorf("session: signing key %d is empty", i)
		}
		codec := securecookie.New(key, nil).
			MaxAge(int(maxAge.Seconds())).
			SetSerializer(securecookie.JSONEncoder{})
		codecs = append(codecs, codec)
	}

	return &signedCookie{
		name:   name,
		maxAge: maxAge,
		codecs: codecs,
		opts:   opts,
	}, nil
}

func (c *signedCookie) write(w http.ResponseWriter, value any) error {
	encoded, err := securecookie.EncodeMulti(c.name, value, c.codecs...)
	if err != nil {
		return fmt.Errorf("session: encode cookie: %w", err)
	}
	SetCookie(w, c.name, encoded, c.maxAge, c.opts)
	return nil
}

// read reports whether a valid signed value was decoded into dst.
func (c *signedCookie) read(r *http.Request, dst any) bool {
	raw, ok := ReadCookie(r, c.name)
	if !ok {
		return false
	}
	if err := securecookie.DecodeMulti(c.name, raw, dst, c.codecs...); err != nil {
		logger.Debug("session cookie rejected", map[string]any{
			"cookie": c.name,
			"error":  err.Error(),
		})
		return false
	}
	return true
}

func (c *signedCookie) clear(w http.ResponseWriter) {
	ClearCookie(w, c.name, c.opts)
}
