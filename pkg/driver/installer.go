package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Installer materializes manifest dependencies under the package's
// vendor/ directory and keeps package.lock in sync with what is on disk.
//
// Git sources are cloned into a staging directory, checked out at the
// requested revision, stripped of their .git metadata, and moved into
// vendor/<name>. Path sources are symlinked so local edits are picked up
// without reinstalling.
type Installer struct {
	manifest *Manifest
	lock     *Lockfile
	logf     func(format string, args ...any)

	installing map[string]bool
	installed  map[string]struct{}
}

// NewInstaller loads the package's lockfile and prepares an installer for
// its manifest. logf receives one line per installed package; nil
// silences it.
func NewInstaller(manifest *Manifest, logf func(format string, args ...any)) (*Installer, error) {
	if manifest == nil {
		return nil, errors.New("installer: manifest required")
	}
	lock, err := LoadLockfile(filepath.Join(manifest.Dir(), LockfileName))
	if err != nil {
		return nil, err
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Installer{manifest: manifest, lock: lock, logf: logf}, nil
}

// Lock exposes the lockfile state from the most recent load or run.
func (inst *Installer) Lock() *Lockfile {
	return inst.lock
}

// Install materializes every dependency, reusing lockfile revisions for
// git sources that the manifest leaves unpinned, then rewrites
// package.lock to match what was installed.
func (inst *Installer) Install() error {
	return inst.run(inst.lock)
}

// Update re-resolves every dependency from the manifest alone, ignoring
// lockfile pins, and rewrites package.lock.
func (inst *Installer) Update() error {
	return inst.run(&Lockfile{Version: LockfileVersion})
}

func (inst *Installer) run(prior *Lockfile) error {
	vendor := VendorDir(inst.manifest)
	if err := os.MkdirAll(vendor, 0o755); err != nil {
		return fmt.Errorf("installer: create %s: %w", vendor, err)
	}

	inst.installing = make(map[string]bool)
	inst.installed = make(map[string]struct{})

	next := &Lockfile{Version: LockfileVersion}
	if err := inst.installGroup(inst.manifest.Dependencies, inst.manifest.Dir(), prior, next); err != nil {
		return err
	}
	if err := inst.installGroup(inst.manifest.DevDependencies, inst.manifest.Dir(), prior, next); err != nil {
		return err
	}
	if err := inst.pruneVendor(); err != nil {
		return err
	}

	inst.lock = next
	return next.Save(filepath.Join(inst.manifest.Dir(), LockfileName))
}

func (inst *Installer) installGroup(deps map[string]*DependencySpec, baseDir string, prior, next *Lockfile) error {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := inst.installOne(name, deps[name], baseDir, prior, next); err != nil {
			return err
		}
	}
	return nil
}

func (inst *Installer) installOne(name string, spec *DependencySpec, baseDir string, prior, next *Lockfile) error {
	key := sanitizeSegment(name)
	if key == "" {
		return fmt.Errorf("installer: dependency name %q is empty after sanitization", name)
	}
	if _, done := inst.installed[key]; done {
		return nil
	}
	if inst.installing[key] {
		return fmt.Errorf("installer: dependency cycle detected at %s", key)
	}
	if spec == nil {
		return fmt.Errorf("installer: dependency %q has no source", name)
	}
	inst.installing[key] = true
	defer delete(inst.installing, key)

	var (
		child *Manifest
		err   error
	)
	switch {
	case spec.Path != "":
		child, err = inst.installPath(key, spec, baseDir, next)
	case spec.Git != "":
		child, err = inst.installGit(key, spec, prior, next)
	default:
		err = fmt.Errorf("installer: dependency %q: version-only dependencies require a package registry; give a git or path source", name)
	}
	if err != nil {
		return err
	}

	// Transitive dependencies declared by the installed package. A bare
	// source tree without a manifest is allowed and ends the walk here.
	if child != nil {
		if err := inst.installGroup(child.Dependencies, child.Dir(), prior, next); err != nil {
			return err
		}
	}
	inst.installed[key] = struct{}{}
	return nil
}

// installPath links vendor/<key> at the named directory. The lock entry
// carries no checksum: the tree is expected to change during development.
func (inst *Installer) installPath(key string, spec *DependencySpec, baseDir string, next *Lockfile) (*Manifest, error) {
	src := spec.Path
	if !filepath.IsAbs(src) {
		src = filepath.Join(baseDir, filepath.FromSlash(spec.Path))
	}
	abs, err := filepath.Abs(src)
	if err != nil {
		return nil, fmt.Errorf("installer: dependency %q: resolve %s: %w", key, spec.Path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("installer: dependency %q: %w", key, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("installer: dependency %q: %s is not a directory", key, abs)
	}

	link := filepath.Join(VendorDir(inst.manifest), key)
	if err := replaceWithSymlink(abs, link); err != nil {
		return nil, fmt.Errorf("installer: dependency %q: %w", key, err)
	}

	// The child manifest is read from the real directory, not through the
	// symlink, so its own relative path dependencies resolve correctly.
	child, err := loadOptionalManifest(abs)
	if err != nil {
		return nil, fmt.Errorf("installer: dependency %q: %w", key, err)
	}
	version := ""
	if child != nil {
		version = child.Version
	}

	next.Upsert(LockedPackage{
		Name:         key,
		Version:      version,
		Source:       "path:" + filepath.ToSlash(abs),
		Dependencies: lockDependencies(child),
	})
	inst.logf("linked %s (%s)", key, abs)
	return child, nil
}

func (inst *Installer) installGit(key string, spec *DependencySpec, prior, next *Lockfile) (*Manifest, error) {
	url := spec.Git
	revision := pickRevision(key, spec, prior)
	dest := filepath.Join(VendorDir(inst.manifest), key)

	// A prior install that still matches its lock entry is reused as is,
	// which keeps repeated installs offline.
	if pinned, ok := prior.Package(key); ok && pinned.Source == url && pinned.Rev != "" && string(revision) == pinned.Rev {
		if sum, err := dirChecksum(dest); err == nil && sum == pinned.Checksum {
			child, err := loadOptionalManifest(dest)
			if err != nil {
				return nil, fmt.Errorf("installer: dependency %q: %w", key, err)
			}
			next.Upsert(*pinned)
			inst.logf("kept %s %s", key, shortRev(pinned.Rev))
			return child, nil
		}
	}

	// MkdirTemp reserves a unique name next to the final destination so
	// the rename below stays on one filesystem; the clone needs the path
	// to not exist yet.
	staging, err := os.MkdirTemp(VendorDir(inst.manifest), ".fetch-*")
	if err != nil {
		return nil, fmt.Errorf("installer: dependency %q: staging: %w", key, err)
	}
	if err := os.RemoveAll(staging); err != nil {
		return nil, fmt.Errorf("installer: dependency %q: staging: %w", key, err)
	}

	repo, err := git.PlainClone(staging, false, &git.CloneOptions{
		URL:               url,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	})
	if err != nil {
		_ = os.RemoveAll(staging)
		return nil, fmt.Errorf("installer: dependency %q: clone %s: %w", key, url, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(staging)
		return nil, fmt.Errorf("installer: dependency %q: resolve revision %s: %w", key, revision, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(staging)
		return nil, fmt.Errorf("installer: dependency %q: %w", key, err)
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(staging)
		return nil, fmt.Errorf("installer: dependency %q: checkout %s: %w", key, revision, err)
	}

	// Vendored packages are plain source trees.
	if err := os.RemoveAll(filepath.Join(staging, ".git")); err != nil {
		_ = os.RemoveAll(staging)
		return nil, fmt.Errorf("installer: dependency %q: %w", key, err)
	}

	if err := os.RemoveAll(dest); err != nil {
		_ = os.RemoveAll(staging)
		return nil, fmt.Errorf("installer: dependency %q: %w", key, err)
	}
	if err := os.Rename(staging, dest); err != nil {
		_ = os.RemoveAll(staging)
		return nil, fmt.Errorf("installer: dependency %q: %w", key, err)
	}

	checksum, err := dirChecksum(dest)
	if err != nil {
		return nil, fmt.Errorf("installer: dependency %q: %w", key, err)
	}
	child, err := loadOptionalManifest(dest)
	if err != nil {
		return nil, fmt.Errorf("installer: dependency %q: %w", key, err)
	}
	version := ""
	if child != nil {
		version = child.Version
	}

	next.Upsert(LockedPackage{
		Name:         key,
		Version:      version,
		Source:       url,
		Rev:          hash.String(),
		Checksum:     checksum,
		Dependencies: lockDependencies(child),
	})
	inst.logf("installed %s %s (%s)", key, shortRev(hash.String()), url)
	return child, nil
}

// lockDependencies lists the dependency edges a package's manifest
// declares, for its lock entry. A bare source tree has none.
func lockDependencies(manifest *Manifest) []LockedDependency {
	if manifest == nil || len(manifest.Dependencies) == 0 {
		return nil
	}
	deps := make([]LockedDependency, 0, len(manifest.Dependencies))
	for name, spec := range manifest.Dependencies {
		dep := LockedDependency{Name: sanitizeSegment(name)}
		if spec != nil {
			dep.Constraint = spec.Version
		}
		deps = append(deps, dep)
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Name < deps[j].Name })
	return deps
}

// pickRevision chooses what to resolve for a git source: an explicit rev
// beats a tag, a tag beats a branch, and a source with no pin at all
// falls back to the lockfile's recorded revision before HEAD.
func pickRevision(key string, spec *DependencySpec, prior *Lockfile) plumbing.Revision {
	if spec.Rev != "" {
		return plumbing.Revision(spec.Rev)
	}
	if spec.Tag != "" {
		return plumbing.Revision("refs/tags/" + spec.Tag)
	}
	if spec.Branch != "" {
		return plumbing.Revision("refs/heads/" + spec.Branch)
	}
	if pinned, ok := prior.Package(key); ok && pinned.Rev != "" && pinned.Source == spec.Git {
		return plumbing.Revision(pinned.Rev)
	}
	return plumbing.Revision("HEAD")
}

// pruneVendor removes vendor entries that no longer correspond to a
// manifest dependency, including staging leftovers from interrupted runs.
func (inst *Installer) pruneVendor() error {
	vendor := VendorDir(inst.manifest)
	entries, err := os.ReadDir(vendor)
	if err != nil {
		return fmt.Errorf("installer: read %s: %w", vendor, err)
	}
	for _, entry := range entries {
		if _, keep := inst.installed[entry.Name()]; keep {
			continue
		}
		if err := os.RemoveAll(filepath.Join(vendor, entry.Name())); err != nil {
			return fmt.Errorf("installer: prune %s: %w", entry.Name(), err)
		}
		inst.logf("removed %s", entry.Name())
	}
	return nil
}

func loadOptionalManifest(dir string) (*Manifest, error) {
	manifest, err := LoadManifest(filepath.Join(dir, ManifestName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return manifest, nil
}

func replaceWithSymlink(target, link string) error {
	if existing, err := os.Readlink(link); err == nil && existing == target {
		return nil
	}
	if err := os.RemoveAll(link); err != nil {
		return err
	}
	return os.Symlink(target, link)
}

// dirChecksum hashes every file under root in lexical walk order, mixing
// in the slash-separated relative path so renames change the sum.
func dirChecksum(root string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write([]byte{0})
		h.Write(data)
		h.Write([]byte{0})
		return nil
	})
	if err != nil {
		return "", err
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}
