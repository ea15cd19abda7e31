package driver

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LockfileName is the pinned-dependency file written next to package.yml.
const LockfileName = "package.lock"

// LockfileVersion is the schema version this driver reads and writes.
const LockfileVersion = 1

// Lockfile pins every installed dependency to an exact revision and
// content checksum so installs reproduce.
type Lockfile struct {
	Version  int             `yaml:"version"`
	Packages []LockedPackage `yaml:"packages"`
}

// LockedPackage records where a dependency came from and exactly what was
// installed.
type LockedPackage struct {
	Name         string             `yaml:"name"`
	Version      string             `yaml:"version,omitempty"`
	Source       string             `yaml:"source,omitempty"`
	Rev          string             `yaml:"rev,omitempty"`
	Checksum     string             `yaml:"checksum,omitempty"`
	Dependencies []LockedDependency `yaml:"dependencies,omitempty"`
}

// LockedDependency is one edge of the resolved graph: a dependency the
// package itself declares, with the manifest constraint when one was
// given.
type LockedDependency struct {
	Name       string `yaml:"name"`
	Constraint string `yaml:"constraint,omitempty"`
}

// LoadLockfile reads path. A missing file is not an error: it yields an
// empty lockfile, so first installs and fresh checkouts behave the same.
func LoadLockfile(path string) (*Lockfile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Lockfile{Version: LockfileVersion}, nil
		}
		return nil, fmt.Errorf("lockfile: read %s: %w", path, err)
	}
	var lock Lockfile
	if err := yaml.Unmarshal(raw, &lock); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", path, err)
	}
	if lock.Version == 0 {
		lock.Version = LockfileVersion
	}
	if lock.Version != LockfileVersion {
		return nil, fmt.Errorf("lockfile: %s has unsupported version %d", path, lock.Version)
	}
	lock.normalize()
	return &lock, nil
}

// Save writes the lockfile with entries in a stable order.
func (l *Lockfile) Save(path string) error {
	l.normalize()
	out, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("lockfile: encode: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", path, err)
	}
	return nil
}

// Package finds the pinned entry for name.
func (l *Lockfile) Package(name string) (*LockedPackage, bool) {
	if l == nil {
		return nil, false
	}
	key := sanitizeSegment(name)
	for i := range l.Packages {
		if l.Packages[i].Name == key {
			return &l.Packages[i], true
		}
	}
	return nil, false
}

// Upsert replaces the entry with the same name or appends a new one.
func (l *Lockfile) Upsert(pkg LockedPackage) {
	pkg.Name = sanitizeSegment(pkg.Name)
	for i := range l.Packages {
		if l.Packages[i].Name == pkg.Name {
			l.Packages[i] = pkg
			return
		}
	}
	l.Packages = append(l.Packages, pkg)
}

// Remove drops the entry for name, reporting whether one existed.
func (l *Lockfile) Remove(name string) bool {
	key := sanitizeSegment(name)
	for i := range l.Packages {
		if l.Packages[i].Name == key {
			l.Packages = append(l.Packages[:i], l.Packages[i+1:]...)
			return true
		}
	}
	return false
}

// normalize sorts entries by name and drops duplicates, keeping the
// newest entry for each name.
func (l *Lockfile) normalize() {
	if len(l.Packages) == 0 {
		return
	}
	byName := make(map[string]LockedPackage, len(l.Packages))
	order := make([]string, 0, len(l.Packages))
	for _, pkg := range l.Packages {
		pkg.Name = sanitizeSegment(pkg.Name)
		if pkg.Name == "" {
			continue
		}
		for i := range pkg.Dependencies {
			pkg.Dependencies[i].Name = sanitizeSegment(pkg.Dependencies[i].Name)
		}
		sort.Slice(pkg.Dependencies, func(i, j int) bool {
			return pkg.Dependencies[i].Name < pkg.Dependencies[j].Name
		})
		if _, seen := byName[pkg.Name]; !seen {
			order = append(order, pkg.Name)
		}
		byName[pkg.Name] = pkg
	}
	sort.Strings(order)
	out := make([]LockedPackage, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	l.Packages = out
}

// Summary renders one line per pinned package for status output.
func (l *Lockfile) Summary() string {
	if l == nil || len(l.Packages) == 0 {
		return "no packages pinned"
	}
	var b strings.Builder
	for i, pkg := range l.Packages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(pkg.Name)
		switch {
		case pkg.Rev != "":
			fmt.Fprintf(&b, " %s", shortRev(pkg.Rev))
		case pkg.Version != "":
			fmt.Fprintf(&b, " %s", pkg.Version)
		}
		if pkg.Source != "" {
			fmt.Fprintf(&b, " (%s)", pkg.Source)
		}
	}
	return b.String()
}

func shortRev(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
