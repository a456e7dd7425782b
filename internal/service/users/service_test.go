package users

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ivislabs/taskboard/internal/models"
	"github.com/ivislabs/taskboard/internal/repository"
)

type fakeUserRepo struct {
	mu      sync.RWMutex
	byEmail map[string]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]models.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.byEmail[u.Email]; ok {
		return repository.ErrAlreadyExists
	}
	u.ID = primitive.NewObjectID()
	f.byEmail[u.Email] = *u
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	u, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := u
	return &out, nil
}

func (f *fakeUserRepo) GetAll(_ context.Context) ([]models.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]models.User, 0, len(f.byEmail))
	for _, u := range f.byEmail {
		out = append(out, u)
	}
	return out, nil
}

// racingRepo simulates losing the insert race against a concurrent
// first login: the first lookup misses, the insert hits the unique
// index, and only then does the record become visible.
type racingRepo struct {
	*fakeUserRepo
	missedOnce bool
}

func (f *racingRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if !f.missedOnce {
		f.missedOnce = true
		return nil, repository.ErrNotFound
	}
	return f.fakeUserRepo.GetByEmail(ctx, email)
}

func (f *racingRepo) Create(context.Context, *models.User) error {
	return repository.ErrAlreadyExists
}

func TestLogin_RejectsForeignDomain(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewService(repo, "@ivislabs.com")

	_, err := svc.Login(context.Background(), "mallory@elsewhere.com")
	if !errors.Is(err, ErrInvalidDomain) {
		t.Fatalf("expected ErrInvalidDomain, got %v", err)
	}

	users, _ := repo.GetAll(context.Background())
	if len(users) != 0 {
		t.Fatalf("expected no user created, got %d", len(users))
	}
}

func TestLogin_DerivesRoleFromEmail(t *testing.T) {
	t.Parallel()

	cases := []struct {
		email string
		want  models.Role
	}{
		{"alice.leader@ivislabs.com", models.RoleTeamLeader},
		{"leader.bob@ivislabs.com", models.RoleTeamLeader},
		{"carol@ivislabs.com", models.RoleTeamMember},
		{"dave.dev@ivislabs.com", models.RoleTeamMember},
	}

	svc := NewService(newFakeUserRepo(), "@ivislabs.com")
	for _, tc := range cases {
		user, err := svc.Login(context.Background(), tc.email)
		if err != nil {
			t.Fatalf("Login(%q) returned error: %v", tc.email, err)
		}
		if user.Role != tc.want {
			t.Fatalf("Login(%q): expected role %q, got %q", tc.email, tc.want, user.Role)
		}
	}
}

func TestLogin_IdempotentForSameEmail(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewService(repo, "@ivislabs.com")

	first, err := svc.Login(context.Background(), "carol@ivislabs.com")
	if err != nil {
		t.Fatalf("first login returned error: %v", err)
	}
	second, err := svc.Login(context.Background(), "carol@ivislabs.com")
	if err != nil {
		t.Fatalf("second login returned error: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected same user id, got %s and %s", first.ID.Hex(), second.ID.Hex())
	}

	users, _ := repo.GetAll(context.Background())
	if len(users) != 1 {
		t.Fatalf("expected exactly one user record, got %d", len(users))
	}
}

func TestLogin_SetsCreatedAt(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeUserRepo(), "@ivislabs.com")

	user, err := svc.Login(context.Background(), "carol@ivislabs.com")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.CreatedAt.IsZero() {
		t.Fatal("expected createdAt to be set")
	}
}

func TestLogin_LostInsertRaceFallsBackToLookup(t *testing.T) {
	t.Parallel()

	inner := newFakeUserRepo()
	existing := models.User{
		ID:    primitive.NewObjectID(),
		Email: "carol@ivislabs.com",
		Role:  models.RoleTeamMember,
	}
	inner.byEmail[existing.Email] = existing

	svc := NewService(&racingRepo{fakeUserRepo: inner}, "@ivislabs.com")

	user, err := svc.Login(context.Background(), existing.Email)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.ID != existing.ID {
		t.Fatalf("expected winner's id %s, got %s", existing.ID.Hex(), user.ID.Hex())
	}
}
