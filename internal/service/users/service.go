package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ivislabs/taskboard/internal/models"
	"github.com/ivislabs/taskboard/internal/repository"
)

var ErrInvalidDomain = errors.New("invalid email domain")

type userRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetAll(ctx context.Context) ([]models.User, error)
}

type Service struct {
	repo          userRepository
	allowedDomain string
}

func NewService(r userRepository, allowedDomain string) *Service {
	return &Service{repo: r, allowedDomain: allowedDomain}
}

// Login resolves a user by email, creating one on first login. The
// role is derived from the email text once and never changes: emails
// containing "leader" become team leaders, everyone else a member.
// Repeated logins with the same email return the same user.
func (s *Service) Login(ctx context.Context, email string) (*models.User, error) {
	if !strings.HasSuffix(email, s.allowedDomain) {
		return nil, ErrInvalidDomain
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	role := models.RoleTeamMember
	if strings.Contains(email, "leader") {
		role = models.RoleTeamLeader
	}
	user = &models.User{
		Email:     email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		// lost the race against a concurrent first login for the
		// same email: the unique index rejected the insert
		if errors.Is(err, repository.ErrAlreadyExists) {
			return s.repo.GetByEmail(ctx, email)
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) GetAll(ctx context.Context) ([]models.User, error) {
	return s.repo.GetAll(ctx)
}
