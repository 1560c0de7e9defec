package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
)

type userRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"passwordHash"`
	Role         string    `db:"role"`
	IsDeleted    bool      `db:"isDeleted"`
	CreatedAt    time.Time `db:"createdAt"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		IsDeleted:    r.IsDeleted,
		CreatedAt:    r.CreatedAt,
	}
}

const userColumns = `id, name, email, passwordHash, role, isDeleted, createdAt`

type MySQLUserRepository struct {
	db *sqlx.DB
}

func NewMySQLUserRepository(db *sqlx.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

// FindActiveByRole returns the oldest live user holding role.
func (r *MySQLUserRepository) FindActiveByRole(ctx context.Context, role string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM User WHERE role = ? AND isDeleted = 0 ORDER BY createdAt ASC LIMIT 1`
	return r.getOne(ctx, query, fmt.Sprintf("user with role %s not found", role), role)
}

func (r *MySQLUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM User WHERE email = ?`
	return r.getOne(ctx, query, fmt.Sprintf("user with email %s not found", email), email)
}

func (r *MySQLUserRepository) Insert(ctx context.Context, u domain.User) error {
	query := `
		INSERT INTO User (id, name, email, passwordHash, role, isDeleted, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.IsDeleted, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *MySQLUserRepository) getOne(ctx context.Context, query, notFound string, args ...interface{}) (*domain.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(notFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	user := row.toDomain()
	return &user, nil
}
