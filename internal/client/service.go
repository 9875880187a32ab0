package client

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrMissingName is returned when a client is created without a legal name.
var ErrMissingName = errors.New("a client needs a legal name")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=client
type Repository interface {
	ListClients(ctx context.Context) ([]*Client, error)
	AppendClient(ctx context.Context, c *Client) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name    string
	TaxID   string
	Address *string
	Email   *string
	Phone   *string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Client, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrMissingName
	}

	c := &Client{
		ID:      "cli_" + uuid.NewString(),
		Name:    params.Name,
		TaxID:   params.TaxID,
		Address: params.Address,
		Email:   params.Email,
		Phone:   params.Phone,
	}

	if err := s.repo.AppendClient(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) List(ctx context.Context) ([]*Client, error) {
	return s.repo.ListClients(ctx)
}
