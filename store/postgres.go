package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/athenaeum/authgate"
	"github.com/athenaeum/authgate/label"
)

// Postgres reads accounts and label grants from PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE users (
//	    username TEXT PRIMARY KEY,
//	    password TEXT NOT NULL,        -- argon2id PHC string
//	    enabled  BOOLEAN NOT NULL DEFAULT TRUE
//	);
//	CREATE TABLE entitlements (
//	    username TEXT NOT NULL REFERENCES users (username) ON DELETE CASCADE,
//	    label    TEXT NOT NULL,
//	    PRIMARY KEY (username, label)
//	);
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing connection pool. The caller owns the pool's
// lifecycle.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// FindByUsername implements authgate.AccountStore. The match is exact and
// case-sensitive.
func (p *Postgres) FindByUsername(ctx context.Context, username string) (authgate.AccountRecord, bool, error) {
	var record authgate.AccountRecord

	row := p.pool.QueryRow(ctx, `
		SELECT username, password, enabled
		FROM users
		WHERE username = $1
	`, username)

	err := row.Scan(&record.Username, &record.PasswordHash, &record.Enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return authgate.AccountRecord{}, false, nil
	}
	if err != nil {
		return authgate.AccountRecord{}, false, fmt.Errorf("query account %q: %w", username, err)
	}

	return record, true, nil
}

// LabelsByUsername implements authgate.EntitlementStore. Rows whose label
// column does not name a known label are skipped; a row removed from the
// enumeration must not break every lookup for that user.
func (p *Postgres) LabelsByUsername(ctx context.Context, username string) ([]label.Label, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT label
		FROM entitlements
		WHERE username = $1
	`, username)
	if err != nil {
		return nil, fmt.Errorf("query entitlements for %q: %w", username, err)
	}
	defer rows.Close()

	var labels []label.Label
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan entitlement for %q: %w", username, err)
		}
		l, ok := label.Parse(name)
		if !ok {
			continue
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entitlements for %q: %w", username, err)
	}

	return labels, nil
}

// Ping verifies database reachability.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
