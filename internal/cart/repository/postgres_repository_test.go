package repository

import (
	"context"
	"testing"
	"time"

	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) CartRepository {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "./migrations",
	}

	db, err := Connect(creds)
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db, creds))

	t.Cleanup(func() {
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	return NewPostgresRepository(db)
}

func TestCreateAndFindByUser(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "user-1", created.UserID)
	assert.Empty(t, created.Items)
	assert.Equal(t, int64(0), created.Version)

	fetched, err := repo.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, int64(0), fetched.Version)
	assert.Empty(t, fetched.Items)
}

func TestCreate_DuplicateUser(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "user-1")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "user-1")
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestFindByUser_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.FindByUser(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestReplace_BumpsVersionAndPersistsItems(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	cart, err := repo.Create(ctx, "user-1")
	require.NoError(t, err)

	cart.Items = []domain.CartItem{
		{ProductID: "p1", Quantity: 2, Name: "Widget", UnitPriceCents: 1000, ImageURL: "http://img/p1.png"},
	}
	updated, err := repo.Replace(ctx, cart)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.Version)

	fetched, err := repo.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), fetched.Version)
	require.Len(t, fetched.Items, 1)
	assert.Equal(t, "p1", fetched.Items[0].ProductID)
	assert.Equal(t, int64(1000), fetched.Items[0].UnitPriceCents)
}

func TestReplace_StaleVersionConflicts(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	cart, err := repo.Create(ctx, "user-1")
	require.NoError(t, err)

	// First writer wins and bumps the version.
	first := *cart
	first.Items = []domain.CartItem{{ProductID: "p1", Quantity: 1}}
	_, err = repo.Replace(ctx, &first)
	require.NoError(t, err)

	// Second writer still holds version 0.
	stale := *cart
	stale.Items = []domain.CartItem{{ProductID: "p2", Quantity: 1}}
	_, err = repo.Replace(ctx, &stale)
	assert.ErrorIs(t, err, ErrVersionConflict)

	// The stale write left no trace.
	fetched, err := repo.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, fetched.Items, 1)
	assert.Equal(t, "p1", fetched.Items[0].ProductID)
}

func TestReplace_MissingCartConflicts(t *testing.T) {
	repo := setupTestDB(t)

	cart := &domain.Cart{UserID: "nobody", Items: []domain.CartItem{}}
	_, err := repo.Replace(context.Background(), cart)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestDelete(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "user-1"))

	_, err = repo.FindByUser(ctx, "user-1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestDelete_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	err := repo.Delete(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrCartNotFound)
}
