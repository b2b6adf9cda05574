package pg

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"memberauth.org/internal/auth"
	"memberauth.org/internal/ids"
)

const pgErrUniqueViolation = "23505"

// Migrations holds the schema for the account store.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// Store persists accounts in PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ auth.AccountStore = (*Store)(nil)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{db: db}, nil
}

// New wraps an existing connection pool.
func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) FindByIdentifier(ctx context.Context, identifier string) (auth.Account, error) {
	if s.db == nil {
		return auth.Account{}, errors.New("database connection unavailable")
	}
	var (
		acc    auth.Account
		status string
	)
	err := s.db.QueryRowContext(ctx, `
		select id, email, full_name, password_hash, status, created_at, updated_at
		from accounts
		where email = $1
	`, identifier).Scan(&acc.ID, &acc.Identifier, &acc.FullName, &acc.PasswordHash, &status, &acc.CreatedAt, &acc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Account{}, fmt.Errorf("account %q: %w", identifier, auth.ErrNotFound)
	}
	if err != nil {
		return auth.Account{}, fmt.Errorf("load account: %w", err)
	}
	acc.Status = auth.AccountStatus(status)

	rows, err := s.db.QueryContext(ctx, `
		select role
		from account_roles
		where account_id = $1
		order by position
	`, acc.ID)
	if err != nil {
		return auth.Account{}, fmt.Errorf("load roles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return auth.Account{}, err
		}
		acc.Roles = append(acc.Roles, role)
	}
	if err := rows.Err(); err != nil {
		return auth.Account{}, err
	}
	return acc, nil
}

// Create inserts account and its roles in one transaction. It assigns ID and timestamps when
// they are unset.
func (s *Store) Create(ctx context.Context, account *auth.Account) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	if account == nil || account.Identifier == "" {
		return fmt.Errorf("%w: account identifier is required", auth.ErrInvalidInput)
	}
	if len(account.Roles) == 0 {
		return fmt.Errorf("%w: account needs at least one role", auth.ErrInvalidInput)
	}
	if account.ID == "" {
		account.ID = ids.New()
	}
	if account.Status == "" {
		account.Status = auth.StatusActive
	}
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = account.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		insert into accounts (id, email, full_name, password_hash, status, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7)
	`, account.ID, account.Identifier, account.FullName, account.PasswordHash, string(account.Status),
		account.CreatedAt, account.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return fmt.Errorf("account %q: %w", account.Identifier, auth.ErrAlreadyExists)
		}
		return err
	}
	seen := make(map[string]struct{}, len(account.Roles))
	position := 0
	for _, role := range account.Roles {
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		if _, err := tx.ExecContext(ctx, `
			insert into account_roles (account_id, role, position)
			values ($1, $2, $3)
		`, account.ID, role, position); err != nil {
			return err
		}
		position++
	}
	return tx.Commit()
}

// UpdateStatus moves the account to status. Roles are untouched.
func (s *Store) UpdateStatus(ctx context.Context, identifier string, status auth.AccountStatus) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", auth.ErrInvalidInput, status)
	}
	res, err := s.db.ExecContext(ctx, `
		update accounts set status = $1, updated_at = $2
		where email = $3
	`, string(status), time.Now().UTC(), identifier)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("account %q: %w", identifier, auth.ErrNotFound)
	}
	return nil
}

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}
