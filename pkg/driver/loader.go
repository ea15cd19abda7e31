package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SourceExtension is the file extension for interpreted sources.
const SourceExtension = ".wisp"

// homeEnv overrides the per-user home directory for libraries and
// installed tooling.
const homeEnv = "WISP_HOME"

// ErrManifestNotFound reports that no package.yml exists in the start
// directory or any parent.
var ErrManifestNotFound = errors.New("driver: no package.yml found")

// FindManifest walks from start upward to the filesystem root looking for
// package.yml.
func FindManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("driver: resolve %s: %w", start, err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrManifestNotFound
		}
		dir = parent
	}
}

// HomeDir is where per-user libraries live: $WISP_HOME if set, otherwise
// ~/.wisp.
func HomeDir() string {
	if dir := os.Getenv(homeEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".wisp")
}

// VendorDir is where installed dependencies land, next to the manifest.
func VendorDir(manifest *Manifest) string {
	if manifest == nil {
		return ""
	}
	return filepath.Join(manifest.Dir(), "vendor")
}

// Loader resolves source names against an ordered list of search roots:
// the package root first, then vendored dependencies, then the per-user
// library directory.
type Loader struct {
	roots []string
}

// NewLoader builds a loader for a package. A nil manifest yields a loader
// over the working directory and the home library only.
func NewLoader(manifest *Manifest) *Loader {
	var roots []string
	if manifest != nil {
		roots = append(roots, manifest.Dir())
		roots = append(roots, VendorDir(manifest))
	} else if wd, err := os.Getwd(); err == nil {
		roots = append(roots, wd)
	}
	if home := HomeDir(); home != "" {
		roots = append(roots, filepath.Join(home, "lib"))
	}
	return &Loader{roots: roots}
}

// Roots returns the search roots in priority order.
func (l *Loader) Roots() []string {
	out := make([]string, len(l.roots))
	copy(out, l.roots)
	return out
}

// Resolve maps a source name to an existing file. The name may be a
// direct path, a path without the extension, or a package directory
// holding a main entrypoint.
func (l *Loader) Resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("driver: empty source name")
	}
	if filepath.IsAbs(name) {
		if isFile(name) {
			return name, nil
		}
		return "", fmt.Errorf("driver: no such source %s", name)
	}

	relative := filepath.FromSlash(name)
	for _, root := range l.roots {
		for _, candidate := range []string{
			filepath.Join(root, relative),
			filepath.Join(root, relative+SourceExtension),
			filepath.Join(root, relative, "main"+SourceExtension),
		} {
			if isFile(candidate) {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("driver: cannot resolve %q (searched %s)", name, strings.Join(l.roots, ", "))
}

// ReadSource resolves name and returns the file contents.
func (l *Loader) ReadSource(name string) (string, error) {
	path, err := l.Resolve(name)
	if err != nil {
		return "", err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("driver: read %s: %w", path, err)
	}
	return string(raw), nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
