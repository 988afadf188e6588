package repositories

import (
	"database/sql/driver"
	"strings"

	"modernc.org/sqlite"
)

// SQLite's lower() and LIKE only fold ASCII, which misses accented content
// such as "Não". casefold lowers with Go's Unicode tables instead.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("casefold", 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			default:
				return v, nil
			}
		})
}
