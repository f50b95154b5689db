package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ConnectPostgres opens a sqlx handle on lib/pq, retrying while the database starts up
func ConnectPostgres(ctx context.Context, dsn string, attempts int) (*sqlx.DB, error) {
	var (
		conn *sqlx.DB
		err  error
	)

	for i := 0; i < attempts; i++ {
		conn, err = sqlx.ConnectContext(ctx, "postgres", dsn)
		if err == nil {
			return conn, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}

	return nil, fmt.Errorf("postgres not reachable after %d attempts: %w", attempts, err)
}
