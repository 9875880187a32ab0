package profile

import "context"

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=profile
type Repository interface {
	GetProfile(ctx context.Context) (*Profile, error)
	SaveProfile(ctx context.Context, p *Profile) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the stored profile, or nil when none has been saved yet.
func (s *Service) Get(ctx context.Context) (*Profile, error) {
	return s.repo.GetProfile(ctx)
}

// Save overwrites the stored profile wholesale.
func (s *Service) Save(ctx context.Context, p *Profile) error {
	return s.repo.SaveProfile(ctx, p)
}
