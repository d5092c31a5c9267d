// Package accounts talks to the account endpoints: password login, Google OAuth initiation
// and promotion of a guest cart owner to a registered customer.
package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
)

// Fallback messages.
const (
	MessageLoginFailed     = "Login failed"
	MessageLoginSuccess    = "Login successful!"
	MessageGoogleFailed    = "Failed to initiate Google login"
	MessageAccountCreated  = "Account created successfully!"
	MessageAccountFailed   = "Failed to create account"
	MessageGuestMissing    = "Guest session not found. Please try again."
	MessageEmailRequired   = "Email is required for checkout."
	MessageCheckoutFailure = "Failed to process checkout. Please try again."
)

var (
	// ErrMissingTokens is returned when a successful response carries no access token.
	ErrMissingTokens = errors.New("accounts: response has no access token")
	// ErrMissingAuthURL is returned when OAuth initiation yields no redirect target.
	ErrMissingAuthURL = errors.New("accounts: response has no auth_url")
)

// Service authenticates visitors against the storefront API.
type Service interface {
	// Login exchanges a username and password for a token pair.
	Login(ctx context.Context, username, password string) (Tokens, error)
	// GoogleAuthURL asks the backend for the Google consent screen URL.
	GoogleAuthURL(ctx context.Context) (string, error)
	// PromoteGuest creates (or reuses) a customer account for a guest and returns its tokens.
	PromoteGuest(ctx context.Context, req Promotion, csrf string) (Tokens, error)
}

// Tokens is a JWT pair issued by the backend.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	Message string `json:"message,omitempty"`
}

// Valid reports whether an access token is present.
func (t Tokens) Valid() bool {
	return strings.TrimSpace(t.Access) != ""
}

// Promotion carries the checkout contact details used to register a guest.
type Promotion struct {
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	GuestToken string `json:"guest_token"`
}

// LoginErrorMessage picks the first meaningful message of a failed login response, in the
// order detail, non_field_errors, username, password, plain string body.
func LoginErrorMessage(err error) string {
	apiErr, ok := backend.AsError(err)
	if !ok {
		return MessageLoginFailed
	}
	if apiErr.Detail != "" {
		return apiErr.Detail
	}
	for _, field := range []string{"non_field_errors", "username", "password"} {
		if msg := apiErr.FirstField(field); msg != "" {
			return msg
		}
	}
	if apiErr.Message != "" && len(apiErr.Fields) == 0 {
		return apiErr.Message
	}
	return MessageLoginFailed
}

// PromotionErrorMessage returns the backend "error" text or the generic fallback.
func PromotionErrorMessage(err error) string {
	if backend.IsUnavailable(err) {
		return MessageCheckoutFailure
	}
	return backend.MessageOr(err, MessageAccountFailed)
}
