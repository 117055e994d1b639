package state

import (
	"database/sql"
	"errors"
	"strconv"

	"github.com/llehouerou/nebula/internal/playlist"
)

const (
	keyVolume   = "volume"
	keyMuted    = "muted"
	keyQuality  = "quality"
	keyRate     = "rate"
	keyPlayMode = "play_mode"
)

func (m *Manager) setSetting(key, value string) error {
	_, err := m.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// getSetting returns the stored value and whether it exists.
func (m *Manager) getSetting(key string) (string, bool, error) {
	var value string
	err := m.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SaveVolume persists the volume level.
func (m *Manager) SaveVolume(v float64) error {
	return m.setSetting(keyVolume, strconv.FormatFloat(v, 'f', -1, 64))
}

// SaveMuted persists the mute flag.
func (m *Manager) SaveMuted(muted bool) error {
	return m.setSetting(keyMuted, strconv.FormatBool(muted))
}

// SaveQuality persists the preferred stream quality.
func (m *Manager) SaveQuality(q playlist.Quality) error {
	return m.setSetting(keyQuality, string(q))
}

// SaveRate persists the playback rate.
func (m *Manager) SaveRate(r float64) error {
	return m.setSetting(keyRate, strconv.FormatFloat(r, 'f', -1, 64))
}

// SavePlayMode persists the play mode by name.
func (m *Manager) SavePlayMode(mode playlist.PlayMode) error {
	return m.setSetting(keyPlayMode, mode.String())
}
