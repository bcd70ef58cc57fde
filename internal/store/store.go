// Package store is the persistence layer. A Store wraps the database handle
// and is passed explicitly into every component that needs it; there is no
// package-level connection singleton, so tests can substitute a mock.
package store

import (
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Store provides access to the contact and client tables.
type Store struct {
	db *sqlx.DB
}

// New wraps an already opened database connection. The connection can be a
// real MySQL database for production use or a mock database within unit
// tests.
func New(sqlDB *sql.DB) *Store {
	return &Store{db: sqlx.NewDb(sqlDB, "mysql")}
}

// Open connects to MySQL with the given data source name.
func Open(dsn string) (*sql.DB, error) {
	return sql.Open("mysql", dsn)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListParams are the inputs of a paginated listing query.
type ListParams struct {
	Page      int
	PageSize  int
	Search    string
	SortField string
	SortOrder string
}

// Offset returns the row offset of the requested page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}
