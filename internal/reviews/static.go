package reviews

import (
	"context"
	"sync"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/auth"
)

// StaticService serves reviews from memory.
type StaticService struct {
	mu        sync.Mutex
	active    []Review
	byProduct map[int][]Review
	// SubmitErr, when set, is returned by Submit after local checks.
	SubmitErr error
}

// NewStaticService returns a review service seeded with active reviews.
func NewStaticService(active ...Review) *StaticService {
	return &StaticService{active: active, byProduct: map[int][]Review{}}
}

// Active implements Service.
func (s *StaticService) Active(context.Context) ([]Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Review(nil), s.active...), nil
}

// ForProduct implements Service.
func (s *StaticService) ForProduct(_ context.Context, productID int) ([]Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Review(nil), s.byProduct[productID]...), nil
}

// Submit implements Service.
func (s *StaticService) Submit(_ context.Context, creds auth.Credentials, productID int, draft Draft) error {
	if !creds.Authenticated() {
		return ErrLoginRequired
	}
	if err := draft.Validate(); err != nil {
		return err
	}
	if s.SubmitErr != nil {
		return s.SubmitErr
	}
	d := draft.Normalized()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byProduct[productID] = append(s.byProduct[productID], Review{
		ID:          len(s.byProduct[productID]) + 1,
		Name:        d.Name,
		Description: d.Description,
		Rating:      Rating(d.Rating),
	})
	return nil
}
