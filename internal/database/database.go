package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	_ "github.com/godror/godror" // Oracle driver
)

// NewSQLXOracleDB opens the main Oracle connection used by the repositories.
func NewSQLXOracleDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("godror", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Oracle database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping Oracle database: %w", err)
	}

	return db, nil
}
