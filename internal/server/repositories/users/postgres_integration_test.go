//go:build integration

package users_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/authdir/internal/common"
	"github.com/dmitrijs2005/authdir/internal/netx"
	"github.com/dmitrijs2005/authdir/internal/server/models"
	"github.com/dmitrijs2005/authdir/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestPostgresRepository_ConcurrentCreate(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("authdir_test"),
		postgres.WithUsername("authdir"),
		postgres.WithPassword("authdir"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := repomanager.OpenPostgres(ctx, dsn, repomanager.PoolConfig{MaxOpenConns: 10}, netx.DefaultReadyPolicy)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := repomanager.NewPostgresRepositoryManager()
	require.NoError(t, rm.RunMigrations(ctx, db))

	repo := rm.Users(db)

	const n = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		dup     int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(ctx, &models.User{
				UserName:     "racer",
				PasswordHash: fmt.Sprintf("hash-%d", i),
				Role:         common.RoleInsurance,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, common.ErrorAlreadyExists):
				dup++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, n-1, dup)

	got, err := repo.GetUserByLogin(ctx, "racer")
	require.NoError(t, err)
	assert.Equal(t, common.RoleInsurance, got.Role)

	_, err = repo.GetUserByLogin(ctx, "Racer")
	require.ErrorIs(t, err, common.ErrorNotFound)
}
