package repositories_test

import (
	"context"
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGORMProductRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(newTestDB(t))

	serum := &models.Product{Name: "Serum", Description: "Night serum", Price: 49.99, ImageURL: "/img/1.jpg"}
	cream := &models.Product{Name: "Cream", Description: "Day cream", Price: 59.99, ImageURL: "/img/2.jpg"}
	require.NoError(t, repo.Create(ctx, serum))
	require.NoError(t, repo.Create(ctx, cream))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Cream", all[0].Name)

	serum.Price = 0
	require.NoError(t, repo.Update(ctx, serum))
	got, err := repo.GetByID(ctx, serum.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Price, "zero price is written, not skipped")

	require.NoError(t, repo.Delete(ctx, serum.ID))
	_, err = repo.GetByID(ctx, serum.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMProductRepository_MissingTargets(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(newTestDB(t))

	assert.ErrorIs(t, repo.Update(ctx, &models.Product{ID: "nope", Name: "x"}), repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "nope"), repositories.ErrNotFound)
}
