package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// themeExtensions lists the file extensions tried for a theme sound, in
// priority order.
var themeExtensions = []string{"oga", "ogg", "wav", "mp3"}

func validSoundName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}

// FindThemeSound searches the sound theme directories for name and
// returns the first regular file found. Within each directory the
// extensions are tried in order, first directly and then under stereo/.
func FindThemeSound(env Env, name string) (string, error) {
	if !validSoundName(name) {
		return "", fmt.Errorf("%w: invalid name %q", ErrSoundNotFound, name)
	}
	for _, dir := range themeDirs(env) {
		for _, ext := range themeExtensions {
			file := name + "." + ext
			for _, candidate := range []string{
				filepath.Join(dir, file),
				filepath.Join(dir, "stereo", file),
			} {
				if isRegularFile(candidate) {
					return candidate, nil
				}
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrSoundNotFound, name)
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
