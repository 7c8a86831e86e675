package session

import (
	"net/http/httptest"
	"testing"
	"time"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec([]byte("0123456789abcdef0123456789abcdef"), []byte("abcdef0123456789abcdef0123456789"))
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	return c
}

func TestStatic(t *testing.T) {
	if !Static(true).IsAuthenticated() || Static(false).IsAuthenticated() {
		t.Fatal("Static signal does not reflect its value")
	}
}

func TestFromRequest_Valid(t *testing.T) {
	c := newTestCodec(t)
	cookie, err := c.Cookie(Claims{Profile: "alice", Expires: time.Now().Add(time.Hour).Unix()})
	if err != nil {
		t.Fatalf("Cookie failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/habits", nil)
	req.AddCookie(cookie)
	s := c.FromRequest(req)
	if !s.IsAuthenticated() || s.Profile != "alice" {
		t.Fatalf("got %+v", s)
	}
}

func TestFromRequest_Missing(t *testing.T) {
	c := newTestCodec(t)
	if c.FromRequest(httptest.NewRequest("GET", "/", nil)).IsAuthenticated() {
		t.Fatal("request without cookie is authenticated")
	}
}

func TestFromRequest_Expired(t *testing.T) {
	c := newTestCodec(t)
	cookie, _ := c.Cookie(Claims{Profile: "alice", Expires: time.Now().Add(-time.Minute).Unix()})

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)
	if c.FromRequest(req).IsAuthenticated() {
		t.Fatal("expired cookie is authenticated")
	}
}

func TestFromRequest_ForeignKeys(t *testing.T) {
	other, err := NewCodec([]byte("another-hash-key-another-hash-key"), nil)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	cookie, _ := other.Cookie(Claims{Profile: "mallory", Expires: time.Now().Add(time.Hour).Unix()})

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)
	if newTestCodec(t).FromRequest(req).IsAuthenticated() {
		t.Fatal("cookie signed with other keys is authenticated")
	}
}

func TestFromRequest_SharedHashKeyOnly(t *testing.T) {
	hash := []byte("shared-hash-key-shared-hash-key!")
	minter, err := NewCodec(hash, nil)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	verifier, err := NewCodec(hash, nil)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	cookie, err := minter.Cookie(Claims{Profile: "alice", Expires: time.Now().Add(time.Hour).Unix()})
	if err != nil {
		t.Fatalf("Cookie failed: %v", err)
	}
	req := httptest.NewRequest("GET", "/habits", nil)
	req.AddCookie(cookie)
	s := verifier.FromRequest(req)
	if !s.IsAuthenticated() || s.Profile != "alice" {
		t.Fatalf("cookie from a codec with the same hash key was rejected: %+v", s)
	}
}

func TestNewCodec_BadKeys(t *testing.T) {
	tests := []struct {
		name              string
		hashKey, blockKey []byte
	}{
		{"no hash key", nil, nil},
		{"block key without hash key", nil, []byte("0123456789abcdef")},
		{"short block key", []byte("hash"), []byte("short")},
		{"odd block key", []byte("hash"), make([]byte, 20)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewCodec(tc.hashKey, tc.blockKey); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
