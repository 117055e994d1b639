package state

import (
	"database/sql"
	"errors"
	"math"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/nebula/internal/playback"
	"github.com/llehouerou/nebula/internal/playlist"
)

// ErrMalformed marks stored data that cannot be decoded.
var ErrMalformed = errors.New("malformed stored data")

// Snapshot is everything read from the database at startup.
type Snapshot struct {
	Volume  float64
	Muted   bool
	Quality playlist.Quality
	Rate    float64
	Mode    playlist.PlayMode
	Queue   []playlist.Track
	Current *playlist.Track
	History []playlist.Track
}

// Restore converts the snapshot into the engine's starting state.
func (s *Snapshot) Restore() playback.Restore {
	return playback.Restore{
		Volume:  s.Volume,
		Muted:   s.Muted,
		Quality: s.Quality,
		Rate:    s.Rate,
		Mode:    s.Mode,
		Queue:   s.Queue,
		Current: s.Current,
		History: s.History,
	}
}

// Load reads the persisted state. Missing or malformed settings fall back to
// their defaults and malformed track data loads as empty; only database
// failures are returned.
func (m *Manager) Load() (*Snapshot, error) {
	d := playback.DefaultRestore()
	s := &Snapshot{
		Volume:  d.Volume,
		Muted:   d.Muted,
		Quality: d.Quality,
		Rate:    d.Rate,
		Mode:    d.Mode,
	}

	if v, ok, err := m.getSetting(keyVolume); err != nil {
		return nil, err
	} else if ok {
		if f, perr := strconv.ParseFloat(v, 64); perr == nil && f >= 0 && f <= 1 {
			s.Volume = f
		} else {
			log.Warn().Str("value", v).Msg("state: ignoring stored volume")
		}
	}

	if v, ok, err := m.getSetting(keyMuted); err != nil {
		return nil, err
	} else if ok {
		if b, perr := strconv.ParseBool(v); perr == nil {
			s.Muted = b
		}
	}

	if v, ok, err := m.getSetting(keyQuality); err != nil {
		return nil, err
	} else if ok {
		s.Quality, _ = playlist.ParseQuality(v)
	}

	if v, ok, err := m.getSetting(keyRate); err != nil {
		return nil, err
	} else if ok {
		if f, perr := strconv.ParseFloat(v, 64); perr == nil && f > 0 && !math.IsInf(f, 1) {
			s.Rate = f
		} else {
			log.Warn().Str("value", v).Msg("state: ignoring stored rate")
		}
	}

	if v, ok, err := m.getSetting(keyPlayMode); err != nil {
		return nil, err
	} else if ok {
		s.Mode, _ = playlist.ParsePlayMode(v)
	}

	var err error
	if s.Queue, err = m.tracksOrEmpty(queueTable); err != nil {
		return nil, err
	}
	if s.History, err = m.tracksOrEmpty(historyTable); err != nil {
		return nil, err
	}
	if s.Current, err = m.currentTrack(); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) tracksOrEmpty(table string) ([]playlist.Track, error) {
	tracks, err := loadTrackList(m.db, table)
	if errors.Is(err, ErrMalformed) {
		log.Warn().Err(err).Msg("state: discarding stored tracks")
		return nil, nil
	}
	return tracks, err
}

func (m *Manager) currentTrack() (*playlist.Track, error) {
	var data string
	err := m.db.QueryRow(`SELECT data FROM current_track WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no current track is not an error
	}
	if err != nil {
		return nil, err
	}
	var t playlist.Track
	if err := t.UnmarshalJSON([]byte(data)); err != nil {
		log.Warn().Err(err).Msg("state: discarding stored current track")
		return nil, nil //nolint:nilnil // malformed track restores as none
	}
	return &t, nil
}
