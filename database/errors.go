package database

import (
	"errors"

	driver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sijms/go-ora/v2/network"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Vendor error codes for integrity constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	mysqlDuplicateEntry   = 1062
	mysqlNoReferencedRow  = 1452
	mysqlRowIsReferenced  = 1451
	mysqlNoReferencedRow1 = 1216
	mysqlRowIsReferenced1 = 1217

	oraUniqueConstraint = 1
	oraParentNotFound   = 2291
	oraChildFound       = 2292
)

// IsUniqueViolation reports whether err was raised by a unique or primary key
// constraint on any supported vendor. err is inspected, never wrapped.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var myErr *driver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	var oraErr *network.OracleError
	if errors.As(err, &oraErr) {
		return oraErr.ErrCode == oraUniqueConstraint
	}
	return false
}

// IsForeignKeyViolation reports whether err was raised by a foreign key
// constraint on any supported vendor.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	var myErr *driver.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlNoReferencedRow, mysqlRowIsReferenced, mysqlNoReferencedRow1, mysqlRowIsReferenced1:
			return true
		}
		return false
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	var oraErr *network.OracleError
	if errors.As(err, &oraErr) {
		return oraErr.ErrCode == oraParentNotFound || oraErr.ErrCode == oraChildFound
	}
	return false
}
