//go:build integration

// Package containers starts disposable database servers for integration
// tests and describes them as database configuration.
package containers

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"

	"github.com/bowphp/framework-sub001/config"
)

// Options override the image tag and credentials of a container. Empty
// fields keep the vendor defaults.
type Options struct {
	ImageTag       string
	Username       string
	Password       string
	Database       string
	StartupTimeout time.Duration
}

func (o *Options) withDefaults(tag string, timeout time.Duration) Options {
	out := Options{ImageTag: tag, Username: "testuser", Password: "testpass", Database: "testdb", StartupTimeout: timeout}
	if o == nil {
		return out
	}
	if o.ImageTag != "" {
		out.ImageTag = o.ImageTag
	}
	if o.Username != "" {
		out.Username = o.Username
	}
	if o.Password != "" {
		out.Password = o.Password
	}
	if o.Database != "" {
		out.Database = o.Database
	}
	if o.StartupTimeout > 0 {
		out.StartupTimeout = o.StartupTimeout
	}
	return out
}

// Database is a running container and the configuration that reaches it.
type Database struct {
	container testcontainers.Container
	config    config.DatabaseConfig
}

// Config returns a copy of the connection configuration.
func (d *Database) Config() *config.DatabaseConfig {
	cfg := d.config
	return &cfg
}

// Terminate stops and removes the container.
func (d *Database) Terminate(ctx context.Context) error {
	if d == nil || d.container == nil {
		return nil
	}
	return d.container.Terminate(ctx)
}

func (d *Database) withCleanup(t *testing.T) *Database {
	t.Helper()
	t.Cleanup(func() {
		if err := d.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate %s container: %v", d.config.Type, err)
		}
	})
	return d
}

// skipWithoutDocker skips t when the Docker daemon cannot be reached.
func skipWithoutDocker(ctx context.Context, t *testing.T) {
	t.Helper()
	provider, err := testcontainers.NewDockerProvider()
	if err == nil {
		defer provider.Close()
		_, err = provider.DaemonHost(ctx)
	}
	if err != nil {
		t.Skip("Docker is not available - skipping integration test. Install Docker Desktop or ensure Docker daemon is running.")
	}
}

func endpoint(ctx context.Context, c testcontainers.Container, port string) (string, int, error) {
	host, err := c.Host(ctx)
	if err != nil {
		return "", 0, err
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		return "", 0, err
	}
	return host, mapped.Int(), nil
}
