// Package store persists scene documents.
package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("store: scene not found")

// Scene is a stored scene document. Document holds the JSON encoding.
type Scene struct {
	ID        string
	Name      string
	Document  []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Store interface {
	Create(ctx context.Context, s *Scene) error
	Get(ctx context.Context, id string) (*Scene, error)
	List(ctx context.Context) ([]Scene, error)
	Update(ctx context.Context, id, name string, doc []byte) (*Scene, error)
	Delete(ctx context.Context, id string) error
}
