package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// LoadSeed reads settings from a TOML file. A missing or unreadable file
// yields the defaults; keys the file omits keep their default values.
func LoadSeed(path string) AppSettings {
	s := Default()

	resolved, err := expandPath(path)
	if err != nil {
		return s
	}
	b, err := os.ReadFile(resolved)
	if err != nil {
		return s
	}
	if err := toml.Unmarshal(b, &s); err != nil {
		return Default()
	}
	if strings.TrimSpace(s.System.Shortcut) == "" {
		s.System.Shortcut = DefaultShortcut
	}
	return s
}

// SaveSeed writes s as TOML, creating parent directories as needed.
func SaveSeed(path string, s AppSettings) error {
	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	b, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(resolved, b, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
