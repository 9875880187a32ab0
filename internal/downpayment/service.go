package downpayment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("a down payment needs a positive amount")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=downpayment
type Repository interface {
	ListDownPayments(ctx context.Context) ([]*DownPayment, error)
	AppendDownPayment(ctx context.Context, d *DownPayment) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Add records a fresh, unconsumed advance for the client. Amounts are
// rounded to cents at the point of storage.
func (s *Service) Add(ctx context.Context, clientID string, amount decimal.Decimal, description string) (*DownPayment, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	d := &DownPayment{
		ID:          "dp_" + uuid.NewString(),
		ClientID:    clientID,
		Amount:      amount.Round(2),
		Date:        time.Now().UTC(),
		Description: description,
	}

	if err := s.repo.AppendDownPayment(ctx, d); err != nil {
		return nil, err
	}

	return d, nil
}

func (s *Service) List(ctx context.Context) ([]*DownPayment, error) {
	return s.repo.ListDownPayments(ctx)
}
