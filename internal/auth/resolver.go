// Package auth decides which visitor credentials drive a backend call.
//
// A visitor is either signed in (access token), browsing with a guest cart (guest token)
// or anonymous. When both tokens exist the access token always wins.
package auth

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

// Header names understood by the storefront API.
const (
	HeaderAuthorization = "Authorization"
	HeaderGuestToken    = "X-Guest-Token"
	HeaderCSRF          = "X-CSRFToken"
)

// Mode classifies the visitor for endpoint selection.
type Mode int

const (
	// ModeAnonymous means neither token is present.
	ModeAnonymous Mode = iota
	// ModeGuest means only a guest token is present.
	ModeGuest
	// ModeUser means an access token is present.
	ModeUser
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeUser:
		return "user"
	case ModeGuest:
		return "guest"
	default:
		return "anonymous"
	}
}

// Credentials is the resolved view of the visitor's tokens for one request.
type Credentials struct {
	Access string
	Guest  string
	CSRF   string
}

// Resolve builds credentials from the stored tokens.
func Resolve(access, guest, csrf string) Credentials {
	return Credentials{
		Access: strings.TrimSpace(access),
		Guest:  strings.TrimSpace(guest),
		CSRF:   csrf,
	}
}

// Mode reports which token drives request headers.
func (c Credentials) Mode() Mode {
	switch {
	case c.Access != "":
		return ModeUser
	case c.Guest != "":
		return ModeGuest
	default:
		return ModeAnonymous
	}
}

// Authenticated reports whether an access token is present.
func (c Credentials) Authenticated() bool {
	return c.Mode() == ModeUser
}

// HasSession reports whether either token is present.
func (c Credentials) HasSession() bool {
	return c.Mode() != ModeAnonymous
}

// ResolveEndpoint picks the authenticated variant for signed-in visitors and the guest variant otherwise.
func (c Credentials) ResolveEndpoint(authenticated, guest string) string {
	if c.Authenticated() {
		return authenticated
	}
	return guest
}

// Headers returns the JSON, CSRF and identity headers for a backend call.
func (c Credentials) Headers() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if c.CSRF != "" {
		h.Set(HeaderCSRF, c.CSRF)
	}
	switch c.Mode() {
	case ModeUser:
		h.Set(HeaderAuthorization, "Bearer "+c.Access)
	case ModeGuest:
		h.Set(HeaderGuestToken, c.Guest)
	}
	return h
}

// Apply copies the identity and CSRF headers onto an outgoing request. The content type is left
// to the caller so multipart bodies keep their boundary.
func (c Credentials) Apply(req *http.Request) {
	if req == nil {
		return
	}
	for key, values := range c.Headers() {
		if key == "Content-Type" {
			continue
		}
		req.Header[key] = values
	}
}

// Subject extracts the user identifier from the access token for logging. The token is not
// verified here; the backend remains the authority.
func (c Credentials) Subject() string {
	if c.Access == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.Access, claims); err != nil {
		return ""
	}
	for _, key := range []string{"user_id", "sub", "uid"} {
		switch v := claims[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatInt(int64(v), 10)
		}
	}
	return ""
}
