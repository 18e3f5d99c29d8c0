package database

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bowphp/framework-sub001/config"
	"github.com/bowphp/framework-sub001/logger"
)

// ConfigSource resolves the configuration of a named connection.
type ConfigSource interface {
	DBConfig(ctx context.Context, name string) (*config.DatabaseConfig, error)
}

// ConfigConnections serves named connections from the database and
// connections sections of the application config.
type ConfigConnections struct {
	Config *config.Config
}

// DBConfig returns the named connection. An empty name or "default" selects
// the primary database.
func (s ConfigConnections) DBConfig(_ context.Context, name string) (*config.DatabaseConfig, error) {
	if s.Config == nil {
		return nil, errors.New("no configuration loaded")
	}
	return s.Config.Connection(name)
}

// Connector opens a connection from its configuration.
type Connector func(*config.DatabaseConfig, logger.Logger) (Interface, error)

func connect(cfg *config.DatabaseConfig, log logger.Logger) (Interface, error) {
	conn, err := NewConnection(cfg, log)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// ManagerOptions bounds the set of open connections.
type ManagerOptions struct {
	MaxSize int           // connections kept open, 0 selects 16
	IdleTTL time.Duration // idle time before cleanup closes a connection, 0 selects 30m
}

// Manager opens named connections lazily and keeps them cached. The least
// recently used connection is closed when MaxSize is reached, and idle ones
// are closed by the cleanup loop. It is safe for concurrent use.
type Manager struct {
	log       logger.Logger
	source    ConfigSource
	connector Connector

	mu    sync.RWMutex
	conns map[string]*managedConn
	lru   *list.List

	maxSize int
	idleTTL time.Duration

	cleanupMu sync.Mutex
	cleanupCh chan struct{}

	sfg singleflight.Group
}

type managedConn struct {
	conn     Interface
	element  *list.Element
	lastUsed time.Time
	vendor   string
}

// NewManager creates a Manager. A nil connector opens tracked connections
// with NewConnection.
func NewManager(source ConfigSource, log logger.Logger, opts ManagerOptions, connector Connector) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = 16
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute
	}
	if connector == nil {
		connector = connect
	}

	return &Manager{
		log:       log,
		source:    source,
		connector: connector,
		conns:     make(map[string]*managedConn),
		lru:       list.New(),
		maxSize:   opts.MaxSize,
		idleTTL:   opts.IdleTTL,
	}
}

func normalizeName(name string) string {
	if name == "" {
		return config.DefaultConnection
	}
	return name
}

// Connection returns the named connection, opening it on first use.
// Concurrent first calls for one name open a single connection.
func (m *Manager) Connection(ctx context.Context, name string) (Interface, error) {
	name = normalizeName(name)
	if conn := m.cached(name); conn != nil {
		return conn, nil
	}

	result, err, _ := m.sfg.Do(name, func() (any, error) {
		if conn := m.cached(name); conn != nil {
			return conn, nil
		}
		return m.open(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return result.(Interface), nil
}

// Table starts a statement against table on the named connection.
func (m *Manager) Table(ctx context.Context, name, table string, opts ...BuilderOption) (*Builder, error) {
	conn, err := m.Connection(ctx, name)
	if err != nil {
		return nil, err
	}
	return Table(conn, table, append([]BuilderOption{WithLogger(m.log)}, opts...)...), nil
}

func (m *Manager) cached(name string) Interface {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.conns[name]
	if !ok {
		return nil
	}
	entry.lastUsed = time.Now()
	m.lru.MoveToFront(entry.element)
	return entry.conn
}

func (m *Manager) open(ctx context.Context, name string) (Interface, error) {
	cfg, err := m.source.DBConfig(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve connection %s: %w", name, err)
	}

	conn, err := m.connector(cfg, m.log)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection %s: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.conns[name]; ok {
		_ = conn.Close()
		existing.lastUsed = time.Now()
		m.lru.MoveToFront(existing.element)
		return existing.conn, nil
	}

	m.evictIfNeeded()
	m.conns[name] = &managedConn{
		conn:     conn,
		element:  m.lru.PushFront(name),
		lastUsed: time.Now(),
		vendor:   cfg.NormalizedType(),
	}

	m.log.Info().
		Str("connection", name).
		Str("db_type", cfg.Type).
		Msg("Opened database connection")

	return conn, nil
}

// evictIfNeeded closes the least recently used connection at capacity.
// Callers hold m.mu.
func (m *Manager) evictIfNeeded() {
	if len(m.conns) < m.maxSize {
		return
	}
	oldest := m.lru.Back()
	if oldest == nil {
		return
	}

	name := oldest.Value.(string)
	m.closeEntry(name, "Error closing evicted database connection")
	m.log.Debug().Str("connection", name).Msg("Evicted database connection due to LRU limit")
}

func (m *Manager) closeEntry(name, failure string) {
	entry := m.conns[name]
	if err := entry.conn.Close(); err != nil {
		m.log.Error().Err(err).Str("connection", name).Msg(failure)
	}
	delete(m.conns, name)
	m.lru.Remove(entry.element)
}

// Forget closes the named connection and drops it from the cache.
func (m *Manager) Forget(name string) {
	name = normalizeName(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.conns[name]; ok {
		m.closeEntry(name, "Error closing database connection")
	}
}

// StartCleanup closes idle connections every interval until StopCleanup or
// Close is called. Calling it twice has no effect.
func (m *Manager) StartCleanup(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	m.cleanupMu.Lock()
	if m.cleanupCh != nil {
		m.cleanupMu.Unlock()
		return
	}
	done := make(chan struct{})
	m.cleanupCh = done
	m.cleanupMu.Unlock()

	go m.cleanupLoop(interval, done)
}

// StopCleanup stops the cleanup loop.
func (m *Manager) StopCleanup() {
	m.cleanupMu.Lock()
	defer m.cleanupMu.Unlock()

	if m.cleanupCh != nil {
		close(m.cleanupCh)
		m.cleanupCh = nil
	}
}

func (m *Manager) cleanupLoop(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanupIdle()
		case <-done:
			return
		}
	}
}

func (m *Manager) cleanupIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for name, entry := range m.conns {
		idle := now.Sub(entry.lastUsed)
		if idle <= m.idleTTL {
			continue
		}
		m.closeEntry(name, "Error closing idle database connection")
		m.log.Debug().Str("connection", name).Dur("idle_time", idle).Msg("Closed idle database connection")
	}
}

// Close stops the cleanup loop and closes every cached connection.
func (m *Manager) Close() error {
	m.StopCleanup()

	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, entry := range m.conns {
		if err := entry.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection %s: %w", name, err))
		}
	}
	m.conns = make(map[string]*managedConn)
	m.lru.Init()

	return errors.Join(errs...)
}

// Size returns the number of open connections.
func (m *Manager) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// Stats describes the cached connections.
func (m *Manager) Stats() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	connections := make([]map[string]any, 0, len(m.conns))
	for name, entry := range m.conns {
		connections = append(connections, map[string]any{
			"name":          name,
			"vendor":        entry.vendor,
			"last_used":     entry.lastUsed.Format(time.RFC3339),
			"idle_duration": int(now.Sub(entry.lastUsed).Seconds()),
		})
	}

	return map[string]any{
		"active_connections": len(m.conns),
		"max_connections":    m.maxSize,
		"idle_ttl_seconds":   int(m.idleTTL.Seconds()),
		"connections":        connections,
	}
}
