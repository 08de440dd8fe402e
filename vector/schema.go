package vector

import (
	"database/sql"
)

const pointsSchema = `
CREATE TABLE IF NOT EXISTS points (
    id TEXT PRIMARY KEY,
    dims INTEGER NOT NULL,
    vector BLOB NOT NULL
);
`

// EnsureSchema creates the points table in the provided database if it does
// not already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(pointsSchema)
	return err
}
