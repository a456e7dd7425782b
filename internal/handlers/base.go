package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ivislabs/taskboard/internal/models"
)

type userService interface {
	Login(ctx context.Context, email string) (*models.User, error)
	GetAll(ctx context.Context) ([]models.User, error)
}

type taskService interface {
	Create(ctx context.Context, input models.Task) (*models.Task, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.TaskView, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.TaskView, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.TaskPatch) (*models.Task, error)
	AddComment(ctx context.Context, taskID primitive.ObjectID, text string, userID primitive.ObjectID) (*models.TaskView, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	UserService userService
	TaskService taskService
	Store       pinger
	log         zerolog.Logger
}

func NewHandler(us userService, ts taskService, store pinger, log zerolog.Logger) *Handler {
	return &Handler{
		UserService: us,
		TaskService: ts,
		Store:       store,
		log:         log,
	}
}

// Routes binds every endpoint to its handler.
func (h *Handler) Routes() *chi.Mux {
	router := chi.NewRouter()

	router.Get("/health", h.Health)

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Login)
		r.Get("/users", h.ListUsers)

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", h.CreateTask)
			r.Get("/", h.ListTasks)
			r.Get("/{id}", h.GetTask)
			r.Patch("/{id}", h.UpdateTask)
			r.Post("/{id}/comments", h.AddComment)
		})
	})

	return router
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, "invalid json", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.Login(r.Context(), input.Email)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"user": user}, http.StatusOK)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.GetAll(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, users, http.StatusOK)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var input models.Task
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, "invalid json", http.StatusBadRequest)
		return
	}

	task, err := h.TaskService.Create(r.Context(), input)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, task, http.StatusCreated)
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	views, err := h.TaskService.ListForUser(r.Context(), userID)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	if views == nil {
		views = []models.TaskView{}
	}
	writeJSON(w, views, http.StatusOK)
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "invalid task id", http.StatusBadRequest)
		return
	}

	view, err := h.TaskService.Get(r.Context(), id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, view, http.StatusOK)
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "invalid task id", http.StatusBadRequest)
		return
	}

	var patch models.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, "invalid json", http.StatusBadRequest)
		return
	}

	task, err := h.TaskService.Update(r.Context(), id, patch)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, task, http.StatusOK)
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "invalid task id", http.StatusBadRequest)
		return
	}

	var input models.AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, "invalid json", http.StatusBadRequest)
		return
	}

	view, err := h.TaskService.AddComment(r.Context(), id, input.Text, input.UserID)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, view, http.StatusOK)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("store ping failed")
		writeError(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
