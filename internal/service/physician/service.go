package physician

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/oppe-api/internal/model"
	"github.com/jwalitptl/oppe-api/internal/repository"
	"github.com/jwalitptl/oppe-api/pkg/security"
)

type Service struct {
	repo   repository.PhysicianRepository
	hasher security.PasswordHasher
}

func NewService(repo repository.PhysicianRepository, hasher security.PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// Register onboards a physician. Identity is immutable afterwards.
func (s *Service) Register(ctx context.Context, req *model.RegisterPhysicianRequest) (*model.Physician, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	physician := &model.Physician{
		Base:          model.Base{ID: uuid.New()},
		Email:         req.Email,
		PasswordHash:  hash,
		Name:          req.Name,
		Role:          req.Role,
		Specialty:     req.Specialty,
		NPI:           req.NPI,
		LicenseNumber: req.LicenseNumber,
	}

	if err := s.repo.Create(ctx, physician); err != nil {
		return nil, fmt.Errorf("failed to create physician: %w", err)
	}
	return physician, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Physician, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters *model.PhysicianFilters) ([]*model.Physician, error) {
	physicians, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list physicians: %w", err)
	}
	return physicians, nil
}
