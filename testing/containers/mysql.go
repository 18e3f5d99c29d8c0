//go:build integration

package containers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/bowphp/framework-sub001/config"
)

// MySQL starts a mysql:8.4 container. The container is terminated when t
// finishes, and t is skipped without Docker.
func MySQL(ctx context.Context, t *testing.T, opts *Options) *Database {
	t.Helper()
	skipWithoutDocker(ctx, t)
	o := opts.withDefaults("8.4", 90*time.Second)

	runCtx, cancel := context.WithTimeout(ctx, o.StartupTimeout)
	defer cancel()

	c, err := mysql.Run(runCtx,
		fmt.Sprintf("mysql:%s", o.ImageTag),
		mysql.WithDatabase(o.Database),
		mysql.WithUsername(o.Username),
		mysql.WithPassword(o.Password),
	)
	if err != nil {
		t.Fatalf("Failed to start MySQL container: %v", err)
	}

	db := (&Database{container: c, config: config.DatabaseConfig{Type: config.MySQL}}).withCleanup(t)

	host, port, err := endpoint(ctx, c, "3306/tcp")
	if err != nil {
		t.Fatalf("Failed to resolve MySQL endpoint: %v", err)
	}
	db.config.Host, db.config.Port = host, port
	db.config.Username, db.config.Password, db.config.Database = o.Username, o.Password, o.Database

	t.Logf("MySQL container started at %s:%d", host, port)
	return db
}
