package libsql

import (
	"database/sql"
	"fmt"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Struct is the reusable "database" section of a service config.
type Struct struct {
	// File is a path to a local sqlite file, ":memory:" works too.
	File string `json:"file"`
	// Url, if set, takes priority over File and connects to a remote
	// libsql/turso database.
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

// pragmas applied to every local database before use. busy_timeout
// matters because three long-lived activities share one file.
var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

func (config Struct) OpenDB(schema string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	if config.Url != "" {
		dsn := config.Url
		if config.AuthToken != "" {
			dsn = fmt.Sprintf("%s?authToken=%s", config.Url, config.AuthToken)
		}
		db, err = sql.Open("libsql", dsn)
	} else {
		db, err = sql.Open("sqlite", config.File)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if config.File == ":memory:" {
		// every new connection to ":memory:" is a brand new database
		db.SetMaxOpenConns(1)
	}

	if config.Url == "" {
		for _, p := range pragmas {
			if _, err := db.Exec(p); err != nil {
				db.Close()
				return nil, fmt.Errorf("%s: %w", p, err)
			}
		}
	}

	if schema != "" {
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec schema: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
