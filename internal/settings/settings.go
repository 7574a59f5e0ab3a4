// Package settings holds the user-facing application settings: which
// clipboard formats are stored, how long clips are kept, whether and what
// to sync, and the global shortcut.
package settings

import (
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/clips"
	"github.com/dmitrijs2005/clipkeeper/internal/timex"
)

const (
	DefaultOptimizeEvery = 24 * time.Hour
	DefaultThreshold     = 1 << 20
	DefaultShortcut      = "CommandOrControl+Shift+V"
)

type AppSettings struct {
	Storage Storage `json:"storage" toml:"storage"`
	Drive   Drive   `json:"drive" toml:"drive"`
	System  System  `json:"system" toml:"system"`
}

type Storage struct {
	Formats  clips.Formats `json:"formats" toml:"formats"`
	Optimize Optimize      `json:"optimize" toml:"optimize"`
}

// Optimize controls retention. Every <= 0 keeps clips forever.
type Optimize struct {
	Every timex.Duration `json:"every" toml:"every"`
}

// Drive controls remote sync. Threshold is a byte budget handed to the
// drive together with each clip; <= 0 means no limit.
type Drive struct {
	Sync      bool  `json:"sync" toml:"sync"`
	Threshold int64 `json:"threshold" toml:"threshold"`
}

type System struct {
	Shortcut string `json:"shortcut" toml:"shortcut"`
}

// Default returns the settings used on first run.
func Default() AppSettings {
	return AppSettings{
		Storage: Storage{
			Formats:  clips.AllFormats,
			Optimize: Optimize{Every: timex.Duration{Duration: DefaultOptimizeEvery}},
		},
		Drive:  Drive{Threshold: DefaultThreshold},
		System: System{Shortcut: DefaultShortcut},
	}
}
