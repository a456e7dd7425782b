package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/ivislabs/taskboard/internal/config"
)

var (
	ErrNotFound      = errors.New("not found in database")
	ErrAlreadyExists = errors.New("already exists in database")
)

func NewConnection(ctx context.Context, cfg config.MongoConfig) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	deadline := time.After(cfg.Timeout)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := client.Ping(ctx, readpref.Primary()); err != nil {
				continue
			}
			return client.Database(cfg.Database), nil

		case <-deadline:
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("unable to connect to database")
		}
	}
}

type Health struct {
	client *mongo.Client
}

func NewHealth(client *mongo.Client) *Health {
	return &Health{client: client}
}

func (h *Health) Ping(ctx context.Context) error {
	return h.client.Ping(ctx, readpref.Primary())
}
