package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neonchat/chat-server/internal/core/domain"
)

// AccountRepository stores login credentials in the accounts table.
type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	const q = `INSERT INTO accounts (username, password_hash) VALUES ($1, $2) RETURNING id, created_at`

	var id int64
	var createdAt time.Time
	err := r.pool.QueryRow(ctx, q, account.Username, account.PasswordHash).Scan(&id, &createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	created := *account
	created.ID = strconv.FormatInt(id, 10)
	created.CreatedAt = createdAt
	return &created, nil
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	const q = `SELECT id, username, password_hash, created_at FROM accounts WHERE username = $1`

	var id int64
	account := &domain.Account{}
	err := r.pool.QueryRow(ctx, q, username).Scan(&id, &account.Username, &account.PasswordHash, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	account.ID = strconv.FormatInt(id, 10)
	return account, nil
}
