//go:build integration

package testutil

import (
	"context"
	"fmt"
	"time"

	pgrepo "github.com/Gunvolt24/pos_terminal/internal/repo/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplyMigrationsGoose — применяет встроенные миграции (migrations/*.sql) к базе по DSN.
func ApplyMigrationsGoose(dsn string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("open pool: %w", err)
	}
	defer pool.Close()

	return pgrepo.Migrate(ctx, pool)
}
