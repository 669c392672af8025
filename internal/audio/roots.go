package audio

import (
	"os"
	"path/filepath"
	"strings"
)

// Env looks up an environment variable. os.LookupEnv satisfies it.
type Env func(key string) (string, bool)

var systemDataDirs = []string{"/usr/share", "/usr/local/share"}

// userDataDirs returns the per-user data directories in lookup order.
// XDG_DATA_HOME is honoured only when absolute.
func userDataDirs(env Env) []string {
	var dirs []string
	if d, ok := env("XDG_DATA_HOME"); ok && filepath.IsAbs(d) {
		dirs = append(dirs, filepath.Clean(d))
	}
	if home, ok := env("HOME"); ok && filepath.IsAbs(home) {
		d := filepath.Join(home, ".local", "share")
		if len(dirs) == 0 || dirs[0] != d {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// SoundRoots returns the directories a sound file must live under to be
// played. The list is recomputed from env on every call.
func SoundRoots(env Env) []string {
	var roots []string
	for _, d := range userDataDirs(env) {
		roots = append(roots, filepath.Join(d, "sounds"))
	}
	for _, d := range systemDataDirs {
		roots = append(roots, filepath.Join(d, "sounds"))
	}
	return roots
}

// themeDirs returns the directories searched for named theme sounds,
// freedesktop theme first within each data directory.
func themeDirs(env Env) []string {
	var dirs []string
	for _, root := range SoundRoots(env) {
		dirs = append(dirs, filepath.Join(root, "freedesktop"), root)
	}
	return dirs
}

// within reports whether path is root or lies below it. Both must be
// absolute and clean.
func within(path, root string) bool {
	if path == root {
		return true
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	return strings.HasPrefix(path, root)
}

func confined(path string, roots []string) bool {
	for _, root := range roots {
		if within(path, root) {
			return true
		}
	}
	return false
}

// realRoots resolves symlinks in roots that exist. Roots that cannot be
// resolved are kept as-is so lexical matches still succeed.
func realRoots(roots []string) []string {
	out := make([]string, 0, len(roots)*2)
	for _, root := range roots {
		out = append(out, root)
		if resolved, err := filepath.EvalSymlinks(root); err == nil && resolved != root {
			out = append(out, resolved)
		}
	}
	return out
}

// DefaultEnv reads the process environment.
func DefaultEnv() Env {
	return os.LookupEnv
}
