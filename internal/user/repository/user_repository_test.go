package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
	"stockledger/internal/testutil"
)

// Unit Tests

func TestNewMySQLUserRepository(t *testing.T) {
	db := &sqlx.DB{}
	repo := NewMySQLUserRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

// Integration Tests

func TestUserRepository_InsertAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLUserRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, repo.Insert(ctx, domain.User{
		ID: "u-2", Name: "Second Manager", Email: "manager2@example.com", PasswordHash: "h", Role: domain.RoleManager, CreatedAt: now,
	}))
	require.NoError(t, repo.Insert(ctx, domain.User{
		ID: "u-1", Name: "Manager", Email: "manager@example.com", PasswordHash: "h", Role: domain.RoleManager, CreatedAt: now.Add(-time.Hour),
	}))

	manager, err := repo.FindActiveByRole(ctx, domain.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, "u-1", manager.ID, "oldest user wins")

	byEmail, err := repo.FindByEmail(ctx, "manager2@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Second Manager", byEmail.Name)
}

func TestUserRepository_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLUserRepository(db)

	_, err := repo.FindActiveByRole(context.Background(), domain.RoleAdmin)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)

	_, err = repo.FindByEmail(context.Background(), "nobody@example.com")
	_, ok = apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}
