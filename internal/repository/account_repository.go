package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"ticket-ledger/internal/utils"
)

// Account mirrors the 'accounts' table.  The username doubles as the
// ledger identity carried in JWT subjects: organizers and ticket
// owners are referenced by it everywhere.
type Account struct {
	ID           uint64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

// Create inserts an account and returns its ID.  Usernames are
// normalized to lower case before storage.
func (r *AccountRepo) Create(ctx context.Context, username, password string, cost int) (uint64, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (username, password_hash) VALUES (?,?)",
		username, hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches an account by normalized username.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (Account, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	var a Account
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,password_hash,created_at FROM accounts WHERE username=? LIMIT 1",
		username).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	return a, err
}
