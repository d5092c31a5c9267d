package accounts

import (
	"context"
	"net/http"
	"strings"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/auth"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
)

// HTTPService implements Service against the account endpoints.
type HTTPService struct {
	client *backend.Client
}

// NewHTTPService constructs an account service using the shared backend client.
func NewHTTPService(client *backend.Client) *HTTPService {
	return &HTTPService{client: client}
}

// Login posts credentials to /accounts/login/.
func (s *HTTPService) Login(ctx context.Context, username, password string) (Tokens, error) {
	var out Tokens
	err := s.client.Do(ctx, backend.Request{
		Operation: "accounts.login",
		Method:    http.MethodPost,
		Path:      "/accounts/login/",
		JSON:      map[string]string{"username": strings.TrimSpace(username), "password": password},
	}, &out)
	if err != nil {
		return Tokens{}, err
	}
	if !out.Valid() {
		return Tokens{}, ErrMissingTokens
	}
	return out, nil
}

// GoogleAuthURL fetches the OAuth consent URL.
func (s *HTTPService) GoogleAuthURL(ctx context.Context) (string, error) {
	var out struct {
		AuthURL string `json:"auth_url"`
	}
	if err := s.client.Do(ctx, backend.Request{
		Operation: "accounts.google_initiate",
		Method:    http.MethodGet,
		Path:      "/accounts/google-oauth-initiate/",
	}, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.AuthURL) == "" {
		return "", ErrMissingAuthURL
	}
	return strings.TrimSpace(out.AuthURL), nil
}

// PromoteGuest registers the guest by email. The call carries only the CSRF header; the guest
// token travels in the body.
func (s *HTTPService) PromoteGuest(ctx context.Context, req Promotion, csrf string) (Tokens, error) {
	var out Tokens
	err := s.client.Do(ctx, backend.Request{
		Operation: "accounts.promote_guest",
		Method:    http.MethodPost,
		Path:      "/api/auth/create-user-from-email/",
		JSON:      req,
		Auth:      auth.Resolve("", "", csrf),
	}, &out)
	if err != nil {
		return Tokens{}, err
	}
	if !out.Valid() {
		return Tokens{}, ErrMissingTokens
	}
	return out, nil
}
