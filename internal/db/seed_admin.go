package db

import (
	"context"
	"errors"

	"github.com/contactly/contacthub/internal/config"
	"github.com/contactly/contacthub/internal/security"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminAccount creates the configured admin account if it does not
// exist yet. A no-op when ADMIN_USERNAME / ADMIN_PASSWORD are unset.
func EnsureAdminAccount(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT id FROM accounts WHERE username = $1`, cfg.AdminUsername).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO accounts (username, password_hash, created_at)
		VALUES ($1, $2, NOW())
		`,
		cfg.AdminUsername, hash,
	)

	return err
}
