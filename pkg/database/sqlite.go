package database

import (
	"database/sql"
	"strings"

	"github.com/mattn/go-sqlite3"
)

func init() {
	sql.Register(DriverSQLite, &sqlite3.SQLiteDriver{
		ConnectHook: registerUnicodeFuncs,
	})
}

// registerUnicodeFuncs replaces SQLite's ASCII-only lower/upper so case
// folding in queries matches Postgres and Go's strings package.
func registerUnicodeFuncs(conn *sqlite3.SQLiteConn) error {
	if err := conn.RegisterFunc("lower", strings.ToLower, true); err != nil {
		return err
	}
	return conn.RegisterFunc("upper", strings.ToUpper, true)
}
