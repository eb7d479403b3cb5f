package postgres

import (
	"context"
	"errors"

	"github.com/contactly/contacthub/internal/domain/account"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrUsernameTaken   = errors.New("username already taken")
)

type AccountsRepo struct {
	pool *pgxpool.Pool
}

func NewAccountsRepo(pool *pgxpool.Pool) *AccountsRepo {
	return &AccountsRepo{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

// Register inserts a new account with an already-hashed password.
func (r *AccountsRepo) Register(ctx context.Context, username, passwordHash string) (account.Account, error) {
	var a account.Account

	err := r.pool.QueryRow(
		ctx,
		`INSERT INTO accounts (username, password_hash, created_at)
		 VALUES ($1, $2, NOW())
		 RETURNING id, username, password_hash, created_at`,
		username, passwordHash,
	).Scan(
		&a.ID,
		&a.Username,
		&a.PasswordHash,
		&a.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return account.Account{}, ErrUsernameTaken
		}

		return account.Account{}, err
	}

	return a, nil
}

func (r *AccountsRepo) GetByUsername(ctx context.Context, username string) (account.Account, error) {
	var a account.Account

	err := r.pool.QueryRow(
		ctx,
		`SELECT id, username, password_hash, created_at
         FROM accounts
         WHERE username = $1`,
		username,
	).Scan(
		&a.ID,
		&a.Username,
		&a.PasswordHash,
		&a.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, ErrAccountNotFound
		}

		return account.Account{}, err
	}
	return a, nil
}
