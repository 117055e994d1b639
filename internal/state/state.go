// Package state persists the player's durable state in a local SQLite
// database: output settings, the queue, the current track, the anonymous
// play history and the last.fm link.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/llehouerou/nebula/internal/playlist"
)

const (
	appName      = "nebula"
	dbFileName   = "nebula.db"
	saveDebounce = 500 * time.Millisecond
)

type Manager struct {
	db *sql.DB

	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *[]playlist.Track
}

// Open opens the database at path, or at the default XDG data location when
// path is empty, creating the schema as needed.
func Open(path string) (*Manager, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps writes serialized and in-memory databases shared.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Manager{db: db}, nil
}

// DefaultPath returns $XDG_DATA_HOME/nebula/nebula.db.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

// Close flushes a pending queue save and closes the database.
func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	if pending != nil {
		if err := saveTrackList(m.db, queueTable, *pending); err != nil {
			log.Error().Err(err).Msg("state: flush queue")
		}
	}

	return m.db.Close()
}

// SaveQueue records the queue. Writes are debounced so bursts of queue edits
// (drag reordering) cost one transaction; Close flushes the last one.
func (m *Manager) SaveQueue(tracks []playlist.Track) error {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &tracks

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			if err := saveTrackList(m.db, queueTable, *pending); err != nil {
				log.Warn().Err(err).Msg("state: save queue")
			}
		}
	})
	return nil
}

// SaveHistory replaces the anonymous session's play history.
func (m *Manager) SaveHistory(tracks []playlist.Track) error {
	return saveTrackList(m.db, historyTable, tracks)
}

// LoadHistory returns the anonymous session's play history, most recent first.
func (m *Manager) LoadHistory() ([]playlist.Track, error) {
	return loadTrackList(m.db, historyTable)
}

// SaveCurrentTrack records the current track; nil clears it.
func (m *Manager) SaveCurrentTrack(t *playlist.Track) error {
	if t == nil {
		_, err := m.db.Exec(`DELETE FROM current_track WHERE id = 1`)
		return err
	}
	data, err := t.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = m.db.Exec(`
		INSERT INTO current_track (id, data) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data
	`, string(data))
	return err
}
