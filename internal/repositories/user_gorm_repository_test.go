package repositories_test

import (
	"context"
	"sync"
	"testing"

	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory(uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestGORMUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(newTestDB(t))

	user := &models.User{Email: "a@x.com", PasswordHash: "hash", FirstName: "Ada"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)

	byEmail, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", byID.FirstName)

	_, err = repo.GetByEmail(ctx, "A@x.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound, "email lookup is case-sensitive")

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, &models.User{Email: "dup@x.com", PasswordHash: "h"}))
	err := repo.Create(ctx, &models.User{Email: "dup@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)
}

func TestGORMUserRepository_ConcurrentDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(newTestDB(t))

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		dupes     int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, &models.User{Email: "race@x.com", PasswordHash: "h"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, repositories.ErrDuplicateEmail):
				dupes++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, dupes)
}

func TestGORMUserRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(newTestDB(t))

	first := &models.User{Email: "one@x.com", PasswordHash: "h"}
	second := &models.User{Email: "two@x.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	first.City = "Haifa"
	first.Role = models.RoleAdmin
	require.NoError(t, repo.Update(ctx, first))

	stored, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Haifa", stored.City)
	assert.Equal(t, models.RoleAdmin, stored.Role)

	second.Email = "one@x.com"
	assert.ErrorIs(t, repo.Update(ctx, second), repositories.ErrDuplicateEmail)

	ghost := &models.User{ID: "ghost", Email: "ghost@x.com"}
	assert.ErrorIs(t, repo.Update(ctx, ghost), repositories.ErrNotFound)
}
