package tasks

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ivislabs/taskboard/internal/models"
	"github.com/ivislabs/taskboard/internal/repository"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrTaskNotFound = errors.New("task not found")
)

type taskRepository interface {
	Create(ctx context.Context, t *models.Task) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	GetAll(ctx context.Context) ([]models.Task, error)
	GetByAssignee(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.TaskPatch, now time.Time) (*models.Task, error)
	PushComment(ctx context.Context, id primitive.ObjectID, c models.Comment, now time.Time) (*models.Task, error)
}

type userRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

type Service struct {
	tasks taskRepository
	users userRepository
}

func NewService(tasks taskRepository, users userRepository) *Service {
	return &Service{tasks: tasks, users: users}
}

func (s *Service) Create(ctx context.Context, input models.Task) (*models.Task, error) {
	now := time.Now().UTC()
	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		AssignedTo:  input.AssignedTo,
		CreatedBy:   input.CreatedBy,
		Status:      input.Status,
		Comments:    []models.Comment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Status == "" {
		task.Status = models.StatusPending
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ListForUser returns the tasks visible to the given user, newest
// first: everything for team leaders, only their own assignments for
// team members.
func (s *Service) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.TaskView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var items []models.Task
	if user.Role == models.RoleTeamLeader {
		items, err = s.tasks.GetAll(ctx)
	} else {
		items, err = s.tasks.GetByAssignee(ctx, user.ID)
	}
	if err != nil {
		return nil, err
	}

	return s.expand(ctx, items)
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.TaskView, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	views, err := s.expand(ctx, []models.Task{*task})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) Update(ctx context.Context, id primitive.ObjectID, patch models.TaskPatch) (*models.Task, error) {
	task, err := s.tasks.Update(ctx, id, patch, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *Service) AddComment(ctx context.Context, taskID primitive.ObjectID, text string, userID primitive.ObjectID) (*models.TaskView, error) {
	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		Text:      text,
		CreatedBy: userID,
		CreatedAt: time.Now().UTC(),
	}

	task, err := s.tasks.PushComment(ctx, taskID, comment, comment.CreatedAt)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	views, err := s.expand(ctx, []models.Task{*task})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// expand resolves assignedTo, createdBy and comment authors to full
// user records with one batched lookup. A dangling reference stays nil
// rather than failing the whole response.
func (s *Service) expand(ctx context.Context, items []models.Task) ([]models.TaskView, error) {
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	collect := func(id primitive.ObjectID) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, t := range items {
		if t.AssignedTo != nil {
			collect(*t.AssignedTo)
		}
		if t.CreatedBy != nil {
			collect(*t.CreatedBy)
		}
		for _, c := range t.Comments {
			collect(c.CreatedBy)
		}
	}

	resolved, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.User, len(resolved))
	for i := range resolved {
		byID[resolved[i].ID] = &resolved[i]
	}

	views := make([]models.TaskView, 0, len(items))
	for _, t := range items {
		view := models.TaskView{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Status:      t.Status,
			Comments:    make([]models.CommentView, 0, len(t.Comments)),
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		}
		if t.AssignedTo != nil {
			view.AssignedTo = byID[*t.AssignedTo]
		}
		if t.CreatedBy != nil {
			view.CreatedBy = byID[*t.CreatedBy]
		}
		for _, c := range t.Comments {
			view.Comments = append(view.Comments, models.CommentView{
				ID:        c.ID,
				Text:      c.Text,
				CreatedBy: byID[c.CreatedBy],
				CreatedAt: c.CreatedAt,
			})
		}
		views = append(views, view)
	}
	return views, nil
}
