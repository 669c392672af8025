package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSound is unlikely to exist in any system sound theme.
const testSound = "notifyd-test-chime"

func writeSound(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o644))
}

func homeEnv(home string) Env {
	return mapEnv(map[string]string{"HOME": home})
}

func TestFindThemeSound_FreedesktopStereo(t *testing.T) {
	home := t.TempDir()
	want := filepath.Join(home, ".local/share/sounds/freedesktop/stereo", testSound+".oga")
	writeSound(t, want)

	got, err := FindThemeSound(homeEnv(home), testSound)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindThemeSound_ExtensionPriority(t *testing.T) {
	home := t.TempDir()
	dir := filepath.Join(home, ".local/share/sounds")
	writeSound(t, filepath.Join(dir, testSound+".mp3"))
	writeSound(t, filepath.Join(dir, testSound+".wav"))
	writeSound(t, filepath.Join(dir, testSound+".ogg"))

	got, err := FindThemeSound(homeEnv(home), testSound)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, testSound+".ogg"), got)
}

func TestFindThemeSound_ThemeBeforeGeneric(t *testing.T) {
	home := t.TempDir()
	generic := filepath.Join(home, ".local/share/sounds", testSound+".oga")
	themed := filepath.Join(home, ".local/share/sounds/freedesktop", testSound+".wav")
	writeSound(t, generic)
	writeSound(t, themed)

	got, err := FindThemeSound(homeEnv(home), testSound)
	require.NoError(t, err)
	assert.Equal(t, themed, got)
}

func TestFindThemeSound_XDGDataHome(t *testing.T) {
	home := t.TempDir()
	data := t.TempDir()
	want := filepath.Join(data, "sounds", testSound+".wav")
	writeSound(t, want)
	writeSound(t, filepath.Join(home, ".local/share/sounds", testSound+".wav"))

	env := mapEnv(map[string]string{"HOME": home, "XDG_DATA_HOME": data})
	got, err := FindThemeSound(env, testSound)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindThemeSound_SkipsDirectories(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".local/share/sounds", testSound+".oga"), 0o755))

	_, err := FindThemeSound(homeEnv(home), testSound)
	assert.ErrorIs(t, err, ErrSoundNotFound)
}

func TestFindThemeSound_NotFound(t *testing.T) {
	_, err := FindThemeSound(homeEnv(t.TempDir()), testSound)
	assert.ErrorIs(t, err, ErrSoundNotFound)
}

func TestFindThemeSound_InvalidNames(t *testing.T) {
	home := t.TempDir()
	writeSound(t, filepath.Join(home, ".local/share/sounds/.hidden.oga"))

	for _, name := range []string{"", ".hidden", "../../etc/passwd", "sub/name", "a\\b", "nul\x00byte"} {
		t.Run(name, func(t *testing.T) {
			_, err := FindThemeSound(homeEnv(home), name)
			assert.ErrorIs(t, err, ErrSoundNotFound)
		})
	}
}
