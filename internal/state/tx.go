package state

import (
	"database/sql"
	"fmt"

	"github.com/llehouerou/nebula/internal/playlist"
)

// withTx executes fn within a transaction, rolling back on error.
func withTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// saveTrackList replaces the ordered contents of a track table.
func saveTrackList(db *sql.DB, table string, tracks []playlist.Track) error {
	return withTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return err
		}

		stmt, err := tx.Prepare(`INSERT INTO ` + table + ` (position, track_id, data) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, t := range tracks {
			data, err := t.MarshalJSON()
			if err != nil {
				return fmt.Errorf("encode %s: %w", t.ID, err)
			}
			if _, err := stmt.Exec(i, t.ID, string(data)); err != nil {
				return err
			}
		}
		return nil
	})
}

// loadTrackList reads a track table in order. A row that does not decode
// makes the whole list unusable; the caller treats that as empty.
func loadTrackList(db *sql.DB, table string) ([]playlist.Track, error) {
	rows, err := db.Query(`SELECT data FROM ` + table + ` ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []playlist.Track
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var t playlist.Track
		if err := t.UnmarshalJSON([]byte(data)); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, table, err)
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}
