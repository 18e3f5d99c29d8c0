// Package testing groups test helpers for code built on the SQL layer.
//
// The mocks subpackage holds testify mocks of the connection contracts in
// database/types. The fixtures subpackage builds pre-configured mocks and
// sqlmock-backed rows and results. The containers subpackage starts real
// PostgreSQL, MySQL and Oracle servers for integration tests:
//
//	db := containers.PostgreSQL(ctx, t, nil)
//	conn, err := database.NewConnection(db.Config(), nil)
package testing
