package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/clipkeeper/internal/clips"
)

func TestLoadSeed_MissingFileUsesDefaults(t *testing.T) {
	s := LoadSeed(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Equal(t, Default(), s)
}

func TestLoadSeed_EmptyPathUsesDefaults(t *testing.T) {
	assert.Equal(t, Default(), LoadSeed("  "))
}

func TestLoadSeed_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipkeeper.toml")
	doc := `
[storage.formats]
rich_text = false

[storage.optimize]
every = "72h"

[drive]
sync = true
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s := LoadSeed(path)

	assert.Equal(t, clips.Formats{PlainText: true, RichText: false, HTMLText: true, DataURI: true}, s.Storage.Formats)
	assert.Equal(t, 72*time.Hour, s.Storage.Optimize.Every.Duration)
	assert.True(t, s.Drive.Sync)
	assert.Equal(t, int64(DefaultThreshold), s.Drive.Threshold)
	assert.Equal(t, DefaultShortcut, s.System.Shortcut)
}

func TestLoadSeed_MalformedFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[drive\nsync = ="), 0o644))

	assert.Equal(t, Default(), LoadSeed(path))
}

func TestLoadSeed_TildeExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, "ck.toml"), []byte("[system]\nshortcut = \"Alt+C\"\n"), 0o644))

	assert.Equal(t, "Alt+C", LoadSeed("~/ck.toml").System.Shortcut)
}

func TestSaveSeed_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "clipkeeper.toml")

	want := Default()
	want.Drive.Sync = true
	want.Drive.Threshold = 0
	want.Storage.Formats.DataURI = false

	require.NoError(t, SaveSeed(path, want))
	assert.Equal(t, want, LoadSeed(path))
}
