package repository

import (
	"context"
	"testing"
	"time"

	"vinoteca/internal/database/dbtest"
	"vinoteca/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wine(id, name string, price string, qty int) model.Product {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return model.Product{
		ID:               id,
		Name:             name,
		Category:         "tinto",
		Country:          "Spain",
		Region:           "Rioja",
		Price:            decimal.RequireFromString(price),
		QuantityOnHand:   qty,
		ReorderThreshold: 2,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// seedProducts inserts test products into the database.
func seedProducts(t *testing.T, pool *pgxpool.Pool, products []model.Product) {
	repo := NewProductRepository(pool, zerolog.Nop())
	for i := range products {
		require.NoError(t, repo.Create(context.Background(), &products[i]))
	}
}

func stockOf(t *testing.T, pool *pgxpool.Pool, id string) int {
	var qty int
	err := pool.QueryRow(context.Background(),
		`SELECT quantity_on_hand FROM products WHERE id = $1`, id).Scan(&qty)
	require.NoError(t, err)
	return qty
}

func TestProductRepository_ListActive(t *testing.T) {
	db := dbtest.Start(t)
	repo := NewProductRepository(db.Pool, zerolog.Nop())

	products := []model.Product{
		wine("W001", "Albariño", "18.00", 5),
		wine("W002", "Barolo", "55.00", 5),
		wine("W003", "Cava", "12.00", 5),
		wine("W004", "Douro", "22.00", 5),
		wine("W005", "Etna Rosso", "30.00", 5),
	}
	products[4].IsActive = false
	seedProducts(t, db.Pool, products)

	tests := []struct {
		name     string
		limit    int
		offset   int
		expected int
	}{
		{name: "All active products", limit: 10, offset: 0, expected: 4},
		{name: "First page", limit: 2, offset: 0, expected: 2},
		{name: "Last page", limit: 3, offset: 3, expected: 1},
		{name: "Offset beyond results", limit: 10, offset: 10, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListActive(context.Background(), tt.limit, tt.offset)

			require.NoError(t, err)
			assert.Len(t, got, tt.expected)

			for i := 1; i < len(got); i++ {
				assert.LessOrEqual(t, got[i-1].Name, got[i].Name)
			}
			for _, p := range got {
				assert.True(t, p.IsActive)
			}
		})
	}

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestProductRepository_GetByID(t *testing.T) {
	db := dbtest.Start(t)
	repo := NewProductRepository(db.Pool, zerolog.Nop())

	seeded := wine("W001", "Rioja Reserva", "24.50", 7)
	seedProducts(t, db.Pool, []model.Product{seeded})

	t.Run("Product exists", func(t *testing.T) {
		p, err := repo.GetByID(context.Background(), "W001")

		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, seeded.Name, p.Name)
		assert.True(t, seeded.Price.Equal(p.Price))
		assert.Equal(t, 7, p.QuantityOnHand)
		assert.Equal(t, "Rioja", p.Region)
	})

	t.Run("Product does not exist", func(t *testing.T) {
		p, err := repo.GetByID(context.Background(), "W999")

		require.NoError(t, err)
		assert.Nil(t, p)
	})
}

func TestProductRepository_SearchAndLowStock(t *testing.T) {
	db := dbtest.Start(t)
	repo := NewProductRepository(db.Pool, zerolog.Nop())

	malbec := wine("W001", "Malbec Reserva", "20.00", 1)
	malbec.Country = "Argentina"
	malbec.Region = "Mendoza"
	rioja := wine("W002", "Rioja Crianza", "15.00", 10)
	hidden := wine("W003", "Malbec Joven", "9.00", 0)
	hidden.IsActive = false
	seedProducts(t, db.Pool, []model.Product{malbec, rioja, hidden})

	ctx := context.Background()

	found, err := repo.Search(ctx, "malbec", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "W001", found[0].ID)

	found, err = repo.Search(ctx, "argentina", 10)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	low, err := repo.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "W001", low[0].ID)
}

func TestProductRepository_CreateUpdateDeactivate(t *testing.T) {
	db := dbtest.Start(t)
	repo := NewProductRepository(db.Pool, zerolog.Nop())
	ctx := context.Background()

	p := wine("W001", "Garnacha", "11.00", 3)
	require.NoError(t, repo.Create(ctx, &p))

	t.Run("Duplicate ID", func(t *testing.T) {
		dup := wine("W001", "Other", "1.00", 1)
		assert.ErrorIs(t, repo.Create(ctx, &dup), model.ErrProductExists)
	})

	t.Run("Update keeps stock", func(t *testing.T) {
		p.Name = "Garnacha Vieja"
		p.Price = decimal.RequireFromString("13.50")
		p.QuantityOnHand = 999
		require.NoError(t, repo.Update(ctx, &p))

		got, err := repo.GetByID(ctx, "W001")
		require.NoError(t, err)
		assert.Equal(t, "Garnacha Vieja", got.Name)
		assert.Equal(t, 3, got.QuantityOnHand)
	})

	t.Run("Update missing product", func(t *testing.T) {
		missing := wine("W404", "Ghost", "1.00", 1)
		assert.ErrorIs(t, repo.Update(ctx, &missing), model.ErrProductNotFound)
	})

	t.Run("Deactivate", func(t *testing.T) {
		require.NoError(t, repo.Deactivate(ctx, "W001"))

		got, err := repo.GetByID(ctx, "W001")
		require.NoError(t, err)
		assert.False(t, got.IsActive)

		assert.ErrorIs(t, repo.Deactivate(ctx, "W404"), model.ErrProductNotFound)
	})
}

func TestProductRepository_Upsert(t *testing.T) {
	db := dbtest.Start(t)
	repo := NewProductRepository(db.Pool, zerolog.Nop())
	ctx := context.Background()

	p := wine("W001", "Verdejo", "9.00", 4)
	require.NoError(t, repo.Upsert(ctx, &p))

	p.Price = decimal.RequireFromString("9.50")
	p.QuantityOnHand = 12
	require.NoError(t, repo.Upsert(ctx, &p))

	got, err := repo.GetByID(ctx, "W001")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("9.50").Equal(got.Price))
	assert.Equal(t, 12, got.QuantityOnHand)
}

func TestProductRepository_SetStock(t *testing.T) {
	db := dbtest.Start(t)
	repo := NewProductRepository(db.Pool, zerolog.Nop())
	ctx := context.Background()

	seedProducts(t, db.Pool, []model.Product{wine("W001", "Tempranillo", "10.00", 3)})

	require.NoError(t, repo.SetStock(ctx, "W001", 8))
	assert.Equal(t, 8, stockOf(t, db.Pool, "W001"))

	assert.ErrorIs(t, repo.SetStock(ctx, "W001", -1), model.ErrNegativeStock)
	assert.Equal(t, 8, stockOf(t, db.Pool, "W001"))

	assert.ErrorIs(t, repo.SetStock(ctx, "W404", 1), model.ErrProductNotFound)
}

func TestProductRepository_DecrementIncrementStock(t *testing.T) {
	db := dbtest.Start(t)
	repo := NewProductRepository(db.Pool, zerolog.Nop())
	ctx := context.Background()

	seedProducts(t, db.Pool, []model.Product{wine("W001", "Priorat", "40.00", 3)})

	t.Run("Exact exhaustion succeeds", func(t *testing.T) {
		tx, err := db.Pool.Begin(ctx)
		require.NoError(t, err)

		ok, err := repo.DecrementStock(ctx, tx, "W001", 3)
		require.NoError(t, err)
		assert.True(t, ok)
		require.NoError(t, tx.Rollback(ctx))

		assert.Equal(t, 3, stockOf(t, db.Pool, "W001"))
	})

	t.Run("Exceeding stock changes nothing", func(t *testing.T) {
		tx, err := db.Pool.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		ok, err := repo.DecrementStock(ctx, tx, "W001", 4)
		require.NoError(t, err)
		assert.False(t, ok)

		level, err := repo.StockLevel(ctx, tx, "W001")
		require.NoError(t, err)
		assert.Equal(t, 3, level)

		level, err = repo.StockLevel(ctx, tx, "W404")
		require.NoError(t, err)
		assert.Zero(t, level)
	})

	t.Run("Increment then commit", func(t *testing.T) {
		tx, err := db.Pool.Begin(ctx)
		require.NoError(t, err)

		require.NoError(t, repo.IncrementStock(ctx, tx, "W001", 2))
		require.NoError(t, tx.Commit(ctx))

		assert.Equal(t, 5, stockOf(t, db.Pool, "W001"))
	})
}

func TestProductRepository_ErrorPaths(t *testing.T) {
	db := dbtest.Start(t)
	repo := NewProductRepository(db.Pool, zerolog.Nop())

	seedProducts(t, db.Pool, []model.Product{wine("W001", "Mencía", "14.00", 2)})

	// Close the pool to simulate database errors
	db.Pool.Close()
	ctx := context.Background()

	t.Run("ListActive with closed pool", func(t *testing.T) {
		products, err := repo.ListActive(ctx, 10, 0)
		require.Error(t, err)
		assert.Nil(t, products)
	})

	t.Run("GetByID with closed pool", func(t *testing.T) {
		product, err := repo.GetByID(ctx, "W001")
		require.Error(t, err)
		assert.Nil(t, product)
	})

	t.Run("GetByIDs with closed pool", func(t *testing.T) {
		products, err := repo.GetByIDs(ctx, []string{"W001"})
		require.Error(t, err)
		assert.Nil(t, products)
	})

	t.Run("SetStock with closed pool", func(t *testing.T) {
		require.Error(t, repo.SetStock(ctx, "W001", 1))
	})
}
