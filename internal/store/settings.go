package store

import (
	"database/sql"
	"fmt"
	"strconv"
)

// Themes accepted in Settings.Theme.
const (
	ThemeDefault    = "default"
	ThemeNebula     = "nebula"
	ThemeDarkMatter = "dark_matter"
)

// Bounds for Settings.GestureSensitivity.
const (
	MinSensitivity = 0.5
	MaxSensitivity = 2.0
)

// Setting keys.
const (
	keyPlayerName  = "player_name"
	keySoundOn     = "sound_on"
	keyHapticsOn   = "haptics_on"
	keyMusicOn     = "music_on"
	keyTheme       = "theme"
	keySensitivity = "gesture_sensitivity"
)

// Settings are the player preferences. GestureSensitivity doubles as the
// game difficulty.
type Settings struct {
	PlayerName         string  `json:"player_name"`
	SoundOn            bool    `json:"sound_on"`
	HapticsOn          bool    `json:"haptics_on"`
	MusicOn            bool    `json:"music_on"`
	Theme              string  `json:"theme"`
	GestureSensitivity float64 `json:"gesture_sensitivity"`
}

// DefaultSettings returns the settings used before anything is saved.
func DefaultSettings() Settings {
	return Settings{
		PlayerName:         "Player",
		SoundOn:            true,
		HapticsOn:          true,
		MusicOn:            true,
		Theme:              ThemeDefault,
		GestureSensitivity: 1.0,
	}
}

// Normalize clamps the sensitivity and replaces an empty name or unknown
// theme with the default.
func (s Settings) Normalize() Settings {
	d := DefaultSettings()
	if s.PlayerName == "" {
		s.PlayerName = d.PlayerName
	}
	switch s.Theme {
	case ThemeDefault, ThemeNebula, ThemeDarkMatter:
	default:
		s.Theme = d.Theme
	}
	if s.GestureSensitivity < MinSensitivity {
		s.GestureSensitivity = MinSensitivity
	}
	if s.GestureSensitivity > MaxSensitivity {
		s.GestureSensitivity = MaxSensitivity
	}
	return s
}

// SettingsRepository reads and writes the settings table.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Load returns the stored settings with defaults for missing or malformed
// keys.
func (r *SettingsRepository) Load() (Settings, error) {
	settings := DefaultSettings()

	rows, err := r.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return settings, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, err
		}
		switch key {
		case keyPlayerName:
			settings.PlayerName = value
		case keyTheme:
			settings.Theme = value
		case keySoundOn:
			settings.SoundOn = parseBool(value, settings.SoundOn)
		case keyHapticsOn:
			settings.HapticsOn = parseBool(value, settings.HapticsOn)
		case keyMusicOn:
			settings.MusicOn = parseBool(value, settings.MusicOn)
		case keySensitivity:
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				settings.GestureSensitivity = f
			}
		}
	}
	if err := rows.Err(); err != nil {
		return settings, err
	}
	return settings.Normalize(), nil
}

// Save normalizes and writes every setting in one transaction. It returns
// what was stored.
func (r *SettingsRepository) Save(settings Settings) (Settings, error) {
	settings = settings.Normalize()

	tx, err := r.db.Begin()
	if err != nil {
		return settings, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	values := map[string]string{
		keyPlayerName:  settings.PlayerName,
		keySoundOn:     strconv.FormatBool(settings.SoundOn),
		keyHapticsOn:   strconv.FormatBool(settings.HapticsOn),
		keyMusicOn:     strconv.FormatBool(settings.MusicOn),
		keyTheme:       settings.Theme,
		keySensitivity: strconv.FormatFloat(settings.GestureSensitivity, 'f', -1, 64),
	}
	for key, value := range values {
		if _, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		); err != nil {
			return settings, fmt.Errorf("failed to save %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return settings, fmt.Errorf("failed to commit settings: %w", err)
	}
	return settings, nil
}

func parseBool(value string, fallback bool) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}
