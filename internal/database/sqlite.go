package database

import (
	"database/sql"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// sqliteDriver is go-sqlite3 with LOWER and UPPER replaced by Go's Unicode
// case mapping.  The SQLite built-ins only fold ASCII, so "ÉCLAIR" would
// never match a search for "éclair".
const sqliteDriver = "sqlite3_fyyur"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			if err := conn.RegisterFunc("lower", foldCase(strings.ToLower), true); err != nil {
				return err
			}
			return conn.RegisterFunc("upper", foldCase(strings.ToUpper), true)
		},
	})
}

// foldCase applies fold to TEXT and BLOB values.  go-sqlite3 hands NULL
// over as a nil []byte, which goes back as NULL.
func foldCase(fold func(string) string) func(any) any {
	return func(v any) any {
		switch s := v.(type) {
		case string:
			return fold(s)
		case []byte:
			if s == nil {
				return nil
			}
			return fold(string(s))
		}
		return v
	}
}
