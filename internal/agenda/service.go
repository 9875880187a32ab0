package agenda

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrMissingTitle = errors.New("an agenda event needs a title")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=agenda
type Repository interface {
	ListEvents(ctx context.Context) ([]*Event, error)
	AppendEvent(ctx context.Context, e *Event) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	ClientID    *string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Event, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrMissingTitle
	}

	e := &Event{
		ID:          "evt_" + uuid.NewString(),
		Title:       params.Title,
		Description: params.Description,
		Start:       params.Start,
		End:         params.End,
		ClientID:    params.ClientID,
	}

	if err := s.repo.AppendEvent(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *Service) List(ctx context.Context) ([]*Event, error) {
	return s.repo.ListEvents(ctx)
}
