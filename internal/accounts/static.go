package accounts

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
)

// StaticService accepts a fixed set of users and promotes any guest.
type StaticService struct {
	mu         sync.Mutex
	users      map[string]string
	issued     int
	AuthURL    string
	Promoted   []Promotion
	PromoteErr error
}

// NewStaticService returns an in-memory account service with username/password pairs.
func NewStaticService(users map[string]string) *StaticService {
	copied := make(map[string]string, len(users))
	for k, v := range users {
		copied[k] = v
	}
	return &StaticService{users: copied, AuthURL: "https://accounts.google.com/o/oauth2/auth?client_id=demo"}
}

// Login implements Service.
func (s *StaticService) Login(_ context.Context, username, password string) (Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if username == "" {
		return Tokens{}, &backend.Error{Status: http.StatusBadRequest, Fields: map[string][]string{"username": {"This field may not be blank."}}}
	}
	if want, ok := s.users[username]; !ok || want != password {
		return Tokens{}, &backend.Error{Status: http.StatusUnauthorized, Detail: "No active account found with the given credentials"}
	}
	return s.issue(""), nil
}

// GoogleAuthURL implements Service.
func (s *StaticService) GoogleAuthURL(context.Context) (string, error) {
	if s.AuthURL == "" {
		return "", ErrMissingAuthURL
	}
	return s.AuthURL, nil
}

// PromoteGuest implements Service.
func (s *StaticService) PromoteGuest(_ context.Context, req Promotion, _ string) (Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PromoteErr != nil {
		return Tokens{}, s.PromoteErr
	}
	if req.GuestToken == "" {
		return Tokens{}, &backend.Error{Status: http.StatusBadRequest, Message: "Guest token is required"}
	}
	s.Promoted = append(s.Promoted, req)
	return s.issue("Account created successfully"), nil
}

func (s *StaticService) issue(message string) Tokens {
	s.issued++
	return Tokens{
		Access:  fmt.Sprintf("static-access-%d", s.issued),
		Refresh: fmt.Sprintf("static-refresh-%d", s.issued),
		Message: message,
	}
}
