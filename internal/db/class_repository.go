package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ClassRepository remembers the last class each player picked.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new class repository
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

// Get returns the player's stored class. ok is false when none is stored.
func (r *ClassRepository) Get(ctx context.Context, player string) (class string, ok bool, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT rule_set FROM class_assignments WHERE player = $1`, player,
	).Scan(&class)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("loading class of %q: %w", player, err)
	}
	return class, true, nil
}

// Set stores the player's class.
func (r *ClassRepository) Set(ctx context.Context, player, class string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO class_assignments (player, rule_set, assigned_at)
		VALUES ($1, $2, now())
		ON CONFLICT (player) DO UPDATE
		SET rule_set = EXCLUDED.rule_set, assigned_at = now()`,
		player, class,
	)
	if err != nil {
		return fmt.Errorf("saving class of %q: %w", player, err)
	}
	return nil
}
