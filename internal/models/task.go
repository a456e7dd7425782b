package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const StatusPending TaskStatus = "pending"

type Task struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description" json:"description"`
	AssignedTo  *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	CreatedBy   *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	Status      TaskStatus          `bson:"status" json:"status"`
	Comments    []Comment           `bson:"comments" json:"comments"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Comment is embedded in its task document and is append-only.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Text      string             `bson:"text" json:"text"`
	CreatedBy primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// TaskPatch carries the fields a PATCH request may merge into a task.
// Nil fields are left untouched.
type TaskPatch struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	AssignedTo  *primitive.ObjectID `json:"assignedTo"`
	Status      *TaskStatus         `json:"status"`
}

type AddCommentRequest struct {
	Text   string             `json:"text"`
	UserID primitive.ObjectID `json:"userId"`
}

// TaskView is a task with its user references expanded for responses.
type TaskView struct {
	ID          primitive.ObjectID `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	AssignedTo  *User              `json:"assignedTo"`
	CreatedBy   *User              `json:"createdBy"`
	Status      TaskStatus         `json:"status"`
	Comments    []CommentView      `json:"comments"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type CommentView struct {
	ID        primitive.ObjectID `json:"id"`
	Text      string             `json:"text"`
	CreatedBy *User              `json:"createdBy"`
	CreatedAt time.Time          `json:"createdAt"`
}
