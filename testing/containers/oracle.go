//go:build integration

package containers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bowphp/framework-sub001/config"
)

// Oracle starts a gvenzl/oracle-free:23-slim container with an application
// user on the FREEPDB1 service. Startup takes a couple of minutes.
func Oracle(ctx context.Context, t *testing.T, opts *Options) *Database {
	t.Helper()
	skipWithoutDocker(ctx, t)
	o := opts.withDefaults("23-slim", 180*time.Second)
	if opts == nil || opts.Database == "" {
		o.Database = "FREEPDB1"
	}

	// The log line alone can precede the listener being ready.
	req := testcontainers.ContainerRequest{
		Image:        fmt.Sprintf("gvenzl/oracle-free:%s", o.ImageTag),
		ExposedPorts: []string{"1521/tcp"},
		Env: map[string]string{
			"ORACLE_PASSWORD":   o.Password,
			"APP_USER":          o.Username,
			"APP_USER_PASSWORD": o.Password,
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("DATABASE IS READY TO USE!"),
			wait.ForListeningPort("1521/tcp"),
		).WithStartupTimeout(o.StartupTimeout),
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Oracle container: %v", err)
	}

	db := (&Database{container: c, config: config.DatabaseConfig{Type: config.Oracle}}).withCleanup(t)

	host, port, err := endpoint(ctx, c, "1521/tcp")
	if err != nil {
		t.Fatalf("Failed to resolve Oracle endpoint: %v", err)
	}
	db.config.Host, db.config.Port = host, port
	db.config.Username, db.config.Password = o.Username, o.Password
	db.config.Oracle.Service.Name = o.Database

	t.Logf("Oracle container started at %s:%d (service %s)", host, port, o.Database)
	return db
}
