//go:build integration

package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	hrAuth "github.com/MrEthical07/hrAuth"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) *Directory {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dir, pool, err := Open(ctx, &Config{
		ConnString:  fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()),
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	// Second run is a no-op.
	require.NoError(t, Migrate(ctx, pool))

	return dir
}

func TestIntegration_Directory(t *testing.T) {
	ctx := context.Background()
	dir := setupPostgresContainer(t, ctx)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	tenant := hrAuth.Tenant{ID: "t1", DisplayName: "Acme", Code: "AC", CreatedAt: base}
	admin := hrAuth.AccountRecord{
		ID: "t1-admin", TenantID: "t1", Role: hrAuth.RoleAdmin, Email: "boss@acme.test",
		FirstName: "Admin", LastName: "User", PasswordHash: "hash", Active: true, CreatedAt: base,
	}

	t.Run("create tenant", func(t *testing.T) {
		require.NoError(t, dir.CreateTenant(ctx, tenant, admin))

		got, err := dir.FindTenantByCode(ctx, "AC")
		require.NoError(t, err)
		require.Equal(t, "t1", got.ID)
		require.True(t, got.CreatedAt.Equal(base))

		acc, err := dir.FindAccountByEmail(ctx, "boss@acme.test")
		require.NoError(t, err)
		require.Equal(t, hrAuth.RoleAdmin, acc.Role)
		require.Empty(t, acc.LoginID)
	})

	t.Run("signup conflicts roll back", func(t *testing.T) {
		dup := hrAuth.Tenant{ID: "t2", DisplayName: "Acorn", Code: "AC", CreatedAt: base}
		err := dir.CreateTenant(ctx, dup, hrAuth.AccountRecord{
			ID: "t2-admin", TenantID: "t2", Role: hrAuth.RoleAdmin, Email: "a@acorn.test", PasswordHash: "h", Active: true, CreatedAt: base,
		})
		var conflict *hrAuth.ConflictError
		require.ErrorAs(t, err, &conflict)
		require.Equal(t, hrAuth.FieldTenantCode, conflict.Field)

		other := hrAuth.Tenant{ID: "t3", DisplayName: "Beta", Code: "BE", CreatedAt: base}
		err = dir.CreateTenant(ctx, other, hrAuth.AccountRecord{
			ID: "t3-admin", TenantID: "t3", Role: hrAuth.RoleAdmin, Email: "boss@acme.test", PasswordHash: "h", Active: true, CreatedAt: base,
		})
		require.ErrorAs(t, err, &conflict)
		require.Equal(t, hrAuth.FieldEmail, conflict.Field)

		_, err = dir.GetTenant(ctx, "t3")
		require.ErrorIs(t, err, hrAuth.ErrNotFound)
	})

	t.Run("employees", func(t *testing.T) {
		for i, loginID := range []string{"ACJADO20240001", "ACJODO20240002"} {
			require.NoError(t, dir.InsertAccount(ctx, hrAuth.AccountRecord{
				ID: fmt.Sprintf("e%d", i+1), TenantID: "t1", Role: hrAuth.RoleEmployee, LoginID: loginID,
				YearOfJoining: 2024, PasswordHash: "h", PasswordState: hrAuth.StateMustResetPassword,
				Active: true, CreatedAt: base.Add(time.Duration(i+1) * time.Minute),
			}))
		}

		err := dir.InsertAccount(ctx, hrAuth.AccountRecord{
			ID: "e9", TenantID: "t1", Role: hrAuth.RoleEmployee, LoginID: "ACJADO20240001",
			PasswordHash: "h", Active: true, CreatedAt: base,
		})
		var conflict *hrAuth.ConflictError
		require.ErrorAs(t, err, &conflict)
		require.Equal(t, hrAuth.FieldLoginID, conflict.Field)

		list, err := dir.ListAccounts(ctx, "t1", hrAuth.RoleEmployee)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, "e2", list[0].ID)

		require.NoError(t, dir.UpdatePassword(ctx, "e1", "new", hrAuth.StateNormal))
		require.NoError(t, dir.SetActive(ctx, "e1", false))
		acc, err := dir.FindAccountByLoginID(ctx, "ACJADO20240001")
		require.NoError(t, err)
		require.Equal(t, hrAuth.StateNormal, acc.PasswordState)
		require.False(t, acc.Active)

		require.ErrorIs(t, dir.SetActive(ctx, "missing", true), hrAuth.ErrNotFound)

		swapped, err := dir.UpgradePasswordHash(ctx, "e1", "new", "upgraded")
		require.NoError(t, err)
		require.True(t, swapped)
		swapped, err = dir.UpgradePasswordHash(ctx, "e1", "new", "stale")
		require.NoError(t, err)
		require.False(t, swapped)
		acc, err = dir.GetAccount(ctx, "e1")
		require.NoError(t, err)
		require.Equal(t, "upgraded", acc.PasswordHash)
		require.Equal(t, hrAuth.StateNormal, acc.PasswordState)
		_, err = dir.UpgradePasswordHash(ctx, "missing", "a", "b")
		require.ErrorIs(t, err, hrAuth.ErrNotFound)
	})

	t.Run("tenant code override", func(t *testing.T) {
		require.NoError(t, dir.UpdateTenantCode(ctx, "t1", "AX"))
		_, err := dir.FindTenantByCode(ctx, "AC")
		require.ErrorIs(t, err, hrAuth.ErrNotFound)
		require.ErrorIs(t, dir.UpdateTenantCode(ctx, "nope", "ZZ"), hrAuth.ErrNotFound)
	})

	t.Run("counter is gap free under concurrency", func(t *testing.T) {
		const n = 25
		var wg sync.WaitGroup
		values := make(chan int64, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := dir.Increment(ctx, "t1", 2024)
				require.NoError(t, err)
				values <- v
			}()
		}
		wg.Wait()
		close(values)

		seen := make(map[int64]bool, n)
		for v := range values {
			require.False(t, seen[v], "duplicate serial %d", v)
			seen[v] = true
		}
		cur, err := dir.Current(ctx, "t1", 2024)
		require.NoError(t, err)
		require.EqualValues(t, n, cur)

		cur, err = dir.Current(ctx, "t1", 2031)
		require.NoError(t, err)
		require.Zero(t, cur)
	})
}
