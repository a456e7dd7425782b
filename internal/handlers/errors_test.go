package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ivislabs/taskboard/internal/models"
	"github.com/ivislabs/taskboard/internal/service/tasks"
	"github.com/ivislabs/taskboard/internal/service/users"
)

var errStoreDown = errors.New("store down")

// failingUsers behaves like the in-memory store except that listing
// fails, the way a lost store connection would surface.
type failingUsers struct {
	*memUsers
}

func (f *failingUsers) GetAll(context.Context) ([]models.User, error) {
	return nil, errStoreDown
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errStoreDown }

func TestListUsers_StoreFailureReturns500(t *testing.T) {
	t.Parallel()

	userRepo := &failingUsers{memUsers: newMemUsers()}
	userService := users.NewService(userRepo, "@ivislabs.com")
	taskService := tasks.NewService(newMemTasks(), userRepo)

	h := NewHandler(userService, taskService, okPinger{}, zerolog.Nop())
	router := h.Routes()

	rec := doRequest(t, router, http.MethodGet, "/api/users", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody[map[string]string](t, rec)
	if body["error"] == "" {
		t.Fatalf("expected error body, got %s", rec.Body.String())
	}
}

func TestHealth_StoreUnavailableReturns503(t *testing.T) {
	t.Parallel()

	userRepo := newMemUsers()
	userService := users.NewService(userRepo, "@ivislabs.com")
	taskService := tasks.NewService(newMemTasks(), userRepo)

	h := NewHandler(userService, taskService, failingPinger{}, zerolog.Nop())
	router := h.Routes()

	rec := doRequest(t, router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody[map[string]string](t, rec)
	if body["error"] == "" {
		t.Fatalf("expected error body, got %s", rec.Body.String())
	}
}
