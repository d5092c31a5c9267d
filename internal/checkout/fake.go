package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/auth"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
)

// StaticService records orders in memory and issues sequential order numbers.
type StaticService struct {
	mu     sync.Mutex
	now    func() time.Time
	seq    int
	Orders []OrderRequest
	// Fail, when set, is returned by CreateOrder.
	Fail error
}

// NewStaticService returns an in-memory order service.
func NewStaticService() *StaticService {
	return &StaticService{now: time.Now}
}

// CreateOrder implements Service.
func (s *StaticService) CreateOrder(_ context.Context, _ auth.Credentials, req OrderRequest) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return Order{}, s.Fail
	}
	if len(req.Items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	s.seq++
	s.Orders = append(s.Orders, req)
	now := s.now().UTC()
	return Order{
		ID:          s.seq,
		OrderNumber: fmt.Sprintf("QNH-%s-%04d", now.Format("20060102"), s.seq),
		Status:      "pending",
		Total:       backend.Price(0),
		CreatedAt:   now.Format(time.RFC3339),
	}, nil
}

// Placed returns the number of orders stored so far.
func (s *StaticService) Placed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Orders)
}
