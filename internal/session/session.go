// Package session provides the "is a user session active" signal. It never
// authenticates anyone itself: cookies are minted by the identity front end
// that shares the codec keys.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const CookieName = "habits_session"

// Signal reports whether a user session is active.
type Signal interface {
	IsAuthenticated() bool
}

// Static is a fixed signal, used by local hosts such as the CLI.
type Static bool

func (s Static) IsAuthenticated() bool { return bool(s) }

// Claims is the payload of a session cookie.
type Claims struct {
	Profile string `json:"profile"`
	Expires int64  `json:"expires"`
}

// Session is the signal carried by one request.
type Session struct {
	Claims
	valid bool
}

func (s Session) IsAuthenticated() bool { return s.valid }

// Codec signs and verifies session cookies.
type Codec struct {
	sc  *securecookie.SecureCookie
	now func() time.Time
}

// ValidateKeys checks a shared key pair. The hash key is required; the block
// key is optional and must be an AES key length when set.
func ValidateKeys(hashKey, blockKey []byte) error {
	if len(hashKey) == 0 {
		return errors.New("session hash key is required")
	}
	switch len(blockKey) {
	case 0, 16, 24, 32:
		return nil
	}
	return fmt.Errorf("session block key must be 16, 24 or 32 bytes, got %d", len(blockKey))
}

// NewCodec builds a codec from the shared keys. Without a block key cookies
// are signed but not encrypted.
func NewCodec(hashKey, blockKey []byte) (*Codec, error) {
	if err := ValidateKeys(hashKey, blockKey); err != nil {
		return nil, err
	}
	if len(blockKey) == 0 {
		blockKey = nil
	}
	sc := securecookie.New(hashKey, blockKey)
	sc.SetSerializer(securecookie.JSONEncoder{})
	return &Codec{sc: sc, now: time.Now}, nil
}

// Cookie encodes claims into a session cookie.
func (c *Codec) Cookie(claims Claims) (*http.Cookie, error) {
	encoded, err := c.sc.Encode(CookieName, claims)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(claims.Expires, 0),
	}, nil
}

// FromRequest decodes the request's session cookie. A missing, tampered or
// expired cookie yields an unauthenticated session.
func (c *Codec) FromRequest(r *http.Request) Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Session{}
	}
	var claims Claims
	if err := c.sc.Decode(CookieName, cookie.Value, &claims); err != nil {
		return Session{}
	}
	if claims.Expires != 0 && c.now().Unix() >= claims.Expires {
		return Session{}
	}
	return Session{Claims: claims, valid: true}
}
