package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Execer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Schema returns the DDL statements for a database/sql driver name.
func Schema(driver string) ([]string, error) {
	var file string
	switch driver {
	case "sqlite3":
		file = "schema/sqlite.sql"
	case "pgx", "postgres":
		file = "schema/postgres.sql"
	case "mysql":
		file = "schema/mysql.sql"
	default:
		return nil, fmt.Errorf("no schema for driver %q", driver)
	}

	b, err := schemaFS.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var stmts []string
	for _, s := range strings.Split(string(b), ";") {
		if s = strings.TrimSpace(s); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts, nil
}

// ApplySchema creates the report tables if they do not exist.
// Only the dev tool and tests call it; the service never migrates.
func ApplySchema(ctx context.Context, db Execer, driver string) error {
	stmts, err := Schema(driver)
	if err != nil {
		return err
	}
	for i, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("schema stmt %d: %w", i+1, err)
		}
	}
	return nil
}
