package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/skirmish/internal/data"
)

// RuleSetRepository stores rule-set assets as JSONB keyed by name.
// Implements data.Store.
type RuleSetRepository struct {
	pool *pgxpool.Pool
}

var _ data.Store = (*RuleSetRepository)(nil)

// NewRuleSetRepository creates a new rule set repository
func NewRuleSetRepository(pool *pgxpool.Pool) *RuleSetRepository {
	return &RuleSetRepository{pool: pool}
}

// Load loads and validates the named rule set.
// Returns data.ErrNotFound if no row exists.
func (r *RuleSetRepository) Load(ctx context.Context, name string) (*data.RuleSet, error) {
	var body []byte
	err := r.pool.QueryRow(ctx,
		`SELECT body FROM rule_sets WHERE name = $1`, name,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("loading rule set %q: %w", name, data.ErrNotFound)
		}
		return nil, fmt.Errorf("loading rule set %q: %w", name, err)
	}

	var rs data.RuleSet
	if err := json.Unmarshal(body, &rs); err != nil {
		return nil, fmt.Errorf("decoding rule set %q: %w", name, err)
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Save upserts the rule set. The row is rewritten only when the content
// digest changed; changed reports whether anything was written.
func (r *RuleSetRepository) Save(ctx context.Context, rs *data.RuleSet) (changed bool, err error) {
	if err := rs.Validate(); err != nil {
		return false, err
	}
	body, err := json.Marshal(rs)
	if err != nil {
		return false, fmt.Errorf("encoding rule set %q: %w", rs.Name, err)
	}
	digest, err := data.Digest(rs)
	if err != nil {
		return false, err
	}

	tag, err := r.pool.Exec(ctx, `
		INSERT INTO rule_sets (name, description, body, digest, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (name) DO UPDATE
		SET description = EXCLUDED.description,
		    body        = EXCLUDED.body,
		    digest      = EXCLUDED.digest,
		    updated_at  = now()
		WHERE rule_sets.digest <> EXCLUDED.digest`,
		rs.Name, rs.Description, body, digest,
	)
	if err != nil {
		return false, fmt.Errorf("saving rule set %q: %w", rs.Name, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Digest returns the stored digest of a rule set.
func (r *RuleSetRepository) Digest(ctx context.Context, name string) (string, error) {
	var digest string
	err := r.pool.QueryRow(ctx,
		`SELECT digest FROM rule_sets WHERE name = $1`, name,
	).Scan(&digest)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("querying digest of %q: %w", name, data.ErrNotFound)
		}
		return "", fmt.Errorf("querying digest of %q: %w", name, err)
	}
	return digest, nil
}

// Names lists stored rule sets in name order.
func (r *RuleSetRepository) Names(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM rule_sets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing rule sets: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning rule set names: %w", err)
	}
	return names, nil
}

// Delete removes a rule set. Missing rows are not an error.
func (r *RuleSetRepository) Delete(ctx context.Context, name string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM rule_sets WHERE name = $1`, name); err != nil {
		return fmt.Errorf("deleting rule set %q: %w", name, err)
	}
	return nil
}

// Seed saves every rule set, skipping unchanged ones. Used to import the
// embedded defaults on startup.
func (r *RuleSetRepository) Seed(ctx context.Context, sets []*data.RuleSet) error {
	written := 0
	for _, rs := range sets {
		changed, err := r.Save(ctx, rs)
		if err != nil {
			return err
		}
		if changed {
			written++
		}
	}
	slog.Info("seeded rule sets", "total", len(sets), "written", written)
	return nil
}
