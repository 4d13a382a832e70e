package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS scenes (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the scenes table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate scenes: %w", err)
	}
	return nil
}

func (p *Postgres) Create(ctx context.Context, s *Scene) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO scenes (id, name, document) VALUES ($1, $2, $3)
		 RETURNING created_at, updated_at`,
		s.ID, s.Name, s.Document,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert scene: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id string) (*Scene, error) {
	var s Scene
	err := p.pool.QueryRow(ctx,
		`SELECT id, name, document, created_at, updated_at FROM scenes WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.Document, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get scene: %w", err)
	}
	return &s, nil
}

func (p *Postgres) List(ctx context.Context) ([]Scene, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, name, document, created_at, updated_at FROM scenes ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	scenes, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Scene])
	if err != nil {
		return nil, fmt.Errorf("scan scenes: %w", err)
	}
	return scenes, nil
}

func (p *Postgres) Update(ctx context.Context, id, name string, doc []byte) (*Scene, error) {
	var s Scene
	err := p.pool.QueryRow(ctx,
		`UPDATE scenes SET name = $2, document = $3, updated_at = now() WHERE id = $1
		 RETURNING id, name, document, created_at, updated_at`,
		id, name, doc,
	).Scan(&s.ID, &s.Name, &s.Document, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update scene: %w", err)
	}
	return &s, nil
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM scenes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete scene: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
