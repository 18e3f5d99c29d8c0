//go:build integration

package containers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bowphp/framework-sub001/config"
)

// PostgreSQL starts a postgres:17-alpine container. The container is
// terminated when t finishes, and t is skipped without Docker.
func PostgreSQL(ctx context.Context, t *testing.T, opts *Options) *Database {
	t.Helper()
	skipWithoutDocker(ctx, t)
	o := opts.withDefaults("17-alpine", 60*time.Second)

	c, err := postgres.Run(ctx,
		fmt.Sprintf("postgres:%s", o.ImageTag),
		postgres.WithDatabase(o.Database),
		postgres.WithUsername(o.Username),
		postgres.WithPassword(o.Password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(o.StartupTimeout),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	db := (&Database{container: c, config: config.DatabaseConfig{Type: config.PostgreSQL}}).withCleanup(t)

	host, port, err := endpoint(ctx, c, "5432/tcp")
	if err != nil {
		t.Fatalf("Failed to resolve PostgreSQL endpoint: %v", err)
	}
	db.config.Host, db.config.Port = host, port
	db.config.Username, db.config.Password, db.config.Database = o.Username, o.Password, o.Database

	t.Logf("PostgreSQL container started at %s:%d", host, port)
	return db
}
