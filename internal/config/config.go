package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	defaultSleepPresets = []int{15, 30, 60}
	defaultRateOptions  = []float64{0.5, 0.75, 1.0, 1.25, 1.5, 2.0}
)

type Config struct {
	LogLevel       string    `koanf:"log_level"`       // zerolog level name (default: "info")
	LogFile        string    `koanf:"log_file"`        // empty means $XDG_STATE_HOME/nebula/nebula.log
	DBPath         string    `koanf:"db_path"`         // empty means $XDG_DATA_HOME/nebula/nebula.db
	LibrarySources []string  `koanf:"library_sources"` // paths scanned when no paths are given
	SleepPresets   []int     `koanf:"sleep_presets"`   // minutes offered by the sleep timer
	RateOptions    []float64 `koanf:"rate_options"`    // playback rates cycled by [ and ]
	Icons          string    `koanf:"icons"`           // "nerd", "unicode" or "none" (default: "unicode")

	Profile      ProfileConfig      `koanf:"profile"`
	Lastfm       LastfmConfig       `koanf:"lastfm"`
	MediaSession MediaSessionConfig `koanf:"media_session"`
	Lyrics       LyricsConfig       `koanf:"lyrics"`
}

// ProfileConfig points at the profile server used for logged-in users.
type ProfileConfig struct {
	URL string `koanf:"url"` // e.g., "http://localhost:3000"
}

// LastfmConfig holds Last.fm scrobbling configuration.
type LastfmConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
}

// MediaSessionConfig selects the OS media surfaces.
type MediaSessionConfig struct {
	MPRIS         *bool `koanf:"mpris"`         // default: true
	Notifications *bool `koanf:"notifications"` // default: true
}

// LyricsConfig controls online lyric lookups.
type LyricsConfig struct {
	Fetch     *bool  `koanf:"fetch"`      // query lrclib when a track has no lyrics (default: true)
	LrclibURL string `koanf:"lrclib_url"` // empty means the public API
}

// Load reads the default config files, then extra files, later files
// overriding earlier ones. Missing files are skipped.
func Load(extra ...string) (*Config, error) {
	return loadFiles(append(getConfigPaths(), extra...))
}

func loadFiles(paths []string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.LogFile = expandPath(cfg.LogFile)
	cfg.DBPath = expandPath(cfg.DBPath)
	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}
	cfg.Profile.URL = strings.TrimSuffix(cfg.Profile.URL, "/")

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/nebula/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "nebula", "config.toml"))
	}

	// 2. ./config.toml (pwd)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetLogLevel returns the configured log level, "info" when unset.
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// GetIcons returns the icon style, defaulting to "unicode".
func (c *Config) GetIcons() string {
	if c.Icons == "" {
		return "unicode"
	}
	return c.Icons
}

// GetSleepPresets returns the positive sleep presets, sorted, or the
// defaults when none are valid.
func (c *Config) GetSleepPresets() []int {
	presets := slices.DeleteFunc(slices.Clone(c.SleepPresets), func(m int) bool { return m <= 0 })
	if len(presets) == 0 {
		return slices.Clone(defaultSleepPresets)
	}
	slices.Sort(presets)
	return slices.Compact(presets)
}

// GetRateOptions returns the positive rate options, sorted, or the defaults
// when none are valid.
func (c *Config) GetRateOptions() []float64 {
	rates := slices.DeleteFunc(slices.Clone(c.RateOptions), func(r float64) bool { return r <= 0 })
	if len(rates) == 0 {
		return slices.Clone(defaultRateOptions)
	}
	slices.Sort(rates)
	return slices.Compact(rates)
}

// HasProfileConfig returns true if a profile server is configured.
func (c *Config) HasProfileConfig() bool {
	return c.Profile.URL != ""
}

// HasLastfmConfig returns true if Last.fm scrobbling is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}

// MPRISEnabled reports whether the MPRIS surface should run.
func (c *Config) MPRISEnabled() bool {
	return boolOr(c.MediaSession.MPRIS, true)
}

// NotificationsEnabled reports whether now-playing notifications are shown.
func (c *Config) NotificationsEnabled() bool {
	return boolOr(c.MediaSession.Notifications, true)
}

// FetchLyrics reports whether missing lyrics are looked up online.
func (c *Config) FetchLyrics() bool {
	return boolOr(c.Lyrics.Fetch, true)
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
