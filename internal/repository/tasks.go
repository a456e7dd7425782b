package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ivislabs/taskboard/internal/models"
)

type TaskRepository struct {
	col *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection("tasks")}
}

func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	res, err := r.col.InsertOne(ctx, t)
	if err != nil {
		return err
	}
	t.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var t models.Task
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) GetAll(ctx context.Context) ([]models.Task, error) {
	return r.find(ctx, bson.M{})
}

func (r *TaskRepository) GetByAssignee(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	return r.find(ctx, bson.M{"assignedTo": userID})
}

func (r *TaskRepository) find(ctx context.Context, filter bson.M) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update merges the non-nil patch fields and refreshes updatedAt in a
// single document operation, returning the post-update task.
func (r *TaskRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.TaskPatch, now time.Time) (*models.Task, error) {
	set := bson.M{"updatedAt": now}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.AssignedTo != nil {
		set["assignedTo"] = *patch.AssignedTo
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var t models.Task
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// PushComment appends the comment and refreshes updatedAt atomically
// with respect to the task document.
func (r *TaskRepository) PushComment(ctx context.Context, id primitive.ObjectID, c models.Comment, now time.Time) (*models.Task, error) {
	update := bson.M{
		"$push": bson.M{"comments": c},
		"$set":  bson.M{"updatedAt": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var t models.Task
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
