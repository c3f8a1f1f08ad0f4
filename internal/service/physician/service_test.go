package physician

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/oppe-api/internal/model"
	apperrors "github.com/jwalitptl/oppe-api/pkg/errors"
	"github.com/jwalitptl/oppe-api/pkg/security"
)

type fakePhysicianRepo struct {
	physicians map[uuid.UUID]*model.Physician
}

func newFakePhysicianRepo() *fakePhysicianRepo {
	return &fakePhysicianRepo{physicians: make(map[uuid.UUID]*model.Physician)}
}

func (f *fakePhysicianRepo) Create(ctx context.Context, physician *model.Physician) error {
	f.physicians[physician.ID] = physician
	return nil
}

func (f *fakePhysicianRepo) Get(ctx context.Context, id uuid.UUID) (*model.Physician, error) {
	p, ok := f.physicians[id]
	if !ok {
		return nil, apperrors.ErrPhysicianNotFound
	}
	return p, nil
}

func (f *fakePhysicianRepo) GetByEmail(ctx context.Context, email string) (*model.Physician, error) {
	for _, p := range f.physicians {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, apperrors.ErrPhysicianNotFound
}

func (f *fakePhysicianRepo) List(ctx context.Context, filters *model.PhysicianFilters) ([]*model.Physician, error) {
	var out []*model.Physician
	for _, p := range f.physicians {
		if filters.Role != "" && p.Role != filters.Role {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePhysicianRepo) ListActiveSince(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	return nil, nil
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := newFakePhysicianRepo()
	svc := NewService(repo, security.NewBcryptHasher(bcrypt.MinCost))

	physician, err := svc.Register(context.Background(), &model.RegisterPhysicianRequest{
		Email:         "s.chen@example.org",
		Password:      "correct-horse",
		Name:          "Sarah Chen",
		Role:          model.RolePhysician,
		Specialty:     "Cardiothoracic Surgery",
		NPI:           "1234567890",
		LicenseNumber: "MD-44210",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, physician.ID)
	assert.NotEmpty(t, physician.PasswordHash)
	assert.NotEqual(t, "correct-horse", physician.PasswordHash)

	stored, err := repo.Get(context.Background(), physician.ID)
	require.NoError(t, err)
	assert.Equal(t, "s.chen@example.org", stored.Email)
	assert.Equal(t, model.RolePhysician, stored.Role)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := NewService(newFakePhysicianRepo(), security.NewBcryptHasher(bcrypt.MinCost))

	_, err := svc.Register(context.Background(), &model.RegisterPhysicianRequest{
		Email:    "s.chen@example.org",
		Password: "short",
		Name:     "Sarah Chen",
		Role:     model.RolePhysician,
	})
	assert.ErrorIs(t, err, security.ErrPasswordShort)
}

func TestGetUnknownPhysician(t *testing.T) {
	svc := NewService(newFakePhysicianRepo(), security.NewBcryptHasher(bcrypt.MinCost))

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrPhysicianNotFound)
}

func TestListFiltersByRole(t *testing.T) {
	repo := newFakePhysicianRepo()
	svc := NewService(repo, security.NewBcryptHasher(bcrypt.MinCost))

	for _, role := range []model.PhysicianRole{model.RolePhysician, model.RolePeerReviewer} {
		_, err := svc.Register(context.Background(), &model.RegisterPhysicianRequest{
			Email:    string(role) + "@example.org",
			Password: "correct-horse",
			Name:     "Test Physician",
			Role:     role,
		})
		require.NoError(t, err)
	}

	reviewers, err := svc.List(context.Background(), &model.PhysicianFilters{Role: model.RolePeerReviewer})
	require.NoError(t, err)
	require.Len(t, reviewers, 1)
	assert.Equal(t, model.RolePeerReviewer, reviewers[0].Role)
}
