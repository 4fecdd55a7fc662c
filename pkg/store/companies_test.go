package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/empowrhq/leadflow/pkg/domain"
)

func TestCompanyRepositoryUpsert(t *testing.T) {
	client := openTestDB(t)
	repo := NewCompanyRepository(client.DB)
	ctx := context.Background()

	t.Run("inserts a new company", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, &domain.Company{
			ID:       "co-1",
			Name:     "Acme",
			Domain:   "acme.com",
			Industry: "SaaS",
		}))

		got, err := repo.GetByID(ctx, "co-1")
		require.NoError(t, err)
		assert.Equal(t, "Acme", got.Name)
		assert.Equal(t, "acme.com", got.Domain)
		assert.Equal(t, "SaaS", got.Industry)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("non-empty fields win on conflict", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, &domain.Company{
			ID:         "co-1",
			Domain:     "acme.io",
			HeadOffice: "Austin, TX",
		}))

		got, err := repo.GetByID(ctx, "co-1")
		require.NoError(t, err)
		assert.Equal(t, "acme.io", got.Domain)
		assert.Equal(t, "Austin, TX", got.HeadOffice)
	})

	t.Run("empty fields never overwrite enriched values", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, &domain.Company{ID: "co-1"}))

		got, err := repo.GetByID(ctx, "co-1")
		require.NoError(t, err)
		assert.Equal(t, "Acme", got.Name)
		assert.Equal(t, "acme.io", got.Domain)
		assert.Equal(t, "SaaS", got.Industry)
		assert.Equal(t, "Austin, TX", got.HeadOffice)
	})
}

func TestCompanyRepositoryGetByID(t *testing.T) {
	client := openTestDB(t)
	repo := NewCompanyRepository(client.DB)

	_, err := repo.GetByID(context.Background(), "ghost")
	assert.True(t, domain.IsNotFound(err))
}
