package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const demoManifest = `
name: demo-app
version: 0.1.0
license: MIT
authors:
  - Ada
  - Grace
targets:
  app:
    type: executable
    main: src/main.wisp
  lib:
    type: library
  checks:
    type: test
    main: test/all.wisp
dependencies:
  prelude: "1.2.0"
  pairs-extra:
    git: https://example.com/pairs-extra.git
    tag: v0.3.0
  local-utils:
    path: ../utils
dev_dependencies:
  bench: ">= 0.2"
`

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, demoManifest)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	if m.Name != "demo-app" {
		t.Errorf("Name = %q", m.Name)
	}
	if m.Version != "0.1.0" || m.License != "MIT" {
		t.Errorf("Version/License = %q/%q", m.Version, m.License)
	}
	if len(m.Authors) != 2 || m.Authors[0] != "Ada" {
		t.Errorf("Authors = %v", m.Authors)
	}
	if got := m.TargetOrder; len(got) != 3 || got[0] != "app" || got[1] != "lib" || got[2] != "checks" {
		t.Errorf("TargetOrder = %v", got)
	}
	if m.Dir() != dir {
		t.Errorf("Dir = %q, want %q", m.Dir(), dir)
	}

	app, ok := m.FindTarget("app")
	if !ok || app.Type != TargetTypeExecutable {
		t.Fatalf("FindTarget(app) = %+v, %v", app, ok)
	}
	if want := filepath.Join(dir, "src", "main.wisp"); m.EntrypointPath(app) != want {
		t.Errorf("EntrypointPath = %q, want %q", m.EntrypointPath(app), want)
	}
	if _, ok := m.FindTarget("APP"); !ok {
		t.Error("FindTarget is not case-insensitive")
	}

	def, err := m.DefaultExecutableTarget()
	if err != nil || def.Name != "app" {
		t.Errorf("DefaultExecutableTarget = %+v, %v", def, err)
	}

	prelude := m.Dependencies["prelude"]
	if prelude == nil || prelude.Version != "1.2.0" {
		t.Errorf("prelude = %+v", prelude)
	}
	pairs := m.Dependencies["pairs-extra"]
	if pairs == nil || pairs.Git != "https://example.com/pairs-extra.git" || pairs.Tag != "v0.3.0" {
		t.Errorf("pairs-extra = %+v", pairs)
	}
	local := m.Dependencies["local-utils"]
	if local == nil || local.Path != "../utils" {
		t.Errorf("local-utils = %+v", local)
	}
	if bench := m.DevDependencies["bench"]; bench == nil || bench.Version != ">= 0.2" {
		t.Errorf("bench = %+v", bench)
	}
}

func TestDefaultExecutableSkipsLibraries(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
name: lib-first
targets:
  core:
    type: library
  tool:
    type: executable
    main: tool.wisp
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	def, err := m.DefaultExecutableTarget()
	if err != nil || def.Name != "tool" {
		t.Errorf("DefaultExecutableTarget = %+v, %v", def, err)
	}
}

func TestManifestValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		contents  string
		wantIssue string
	}{
		{
			"missing name",
			"version: 1.0.0\n",
			"name must be provided",
		},
		{
			"executable without main",
			"name: x\ntargets:\n  app:\n    type: executable\n",
			"requires a main entrypoint",
		},
		{
			"entrypoint extension",
			"name: x\ntargets:\n  app:\n    type: executable\n    main: src/main.scm\n",
			"must be a .wisp file",
		},
		{
			"unsupported target type",
			"name: x\ntargets:\n  app:\n    type: plugin\n",
			`unsupported type "plugin"`,
		},
		{
			"git and version together",
			"name: x\ndependencies:\n  d:\n    git: https://example.com/d.git\n    version: 1.0.0\n",
			"git dependencies cannot also specify version",
		},
		{
			"pin without git",
			"name: x\ndependencies:\n  d:\n    version: 1.0.0\n    rev: abc123\n",
			"rev, tag, and branch require a git source",
		},
		{
			"conflicting pins",
			"name: x\ndependencies:\n  d:\n    git: https://example.com/d.git\n    tag: v1\n    branch: main\n",
			"rev, tag, and branch are mutually exclusive",
		},
		{
			"sourceless dependency",
			"name: x\ndependencies:\n  d: {}\n",
			"must specify version, git, or path",
		},
		{
			"invalid constraint",
			"name: x\ndependencies:\n  d: not-a-version\n",
			"invalid version constraint",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeManifest(t, dir, tt.contents)
			_, err := LoadManifest(path)
			if err == nil {
				t.Fatalf("LoadManifest succeeded, want issue %q", tt.wantIssue)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error type = %T: %v", err, err)
			}
			if !strings.Contains(err.Error(), tt.wantIssue) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantIssue)
			}
		})
	}
}

func TestManifestUnknownTopLevelKeyRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "name: x\nunexpected: 1\n")
	_, err := LoadManifest(path)
	if err == nil || !strings.Contains(err.Error(), "unexpected") {
		t.Fatalf("got %v, want unknown-field failure", err)
	}
}

func TestManifestEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "")
	_, err := LoadManifest(path)
	if err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("got %v, want empty-file failure", err)
	}
}

func TestSanitizeSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Demo App", "demo-app"},
		{"  pairs-extra  ", "pairs-extra"},
		{"A//B", "a-b"},
		{"std.core_v2", "std.core_v2"},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := sanitizeSegment(tt.in); got != tt.want {
			t.Errorf("sanitizeSegment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFindManifestWalksUpward(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "name: x\n")
	nested := filepath.Join(dir, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	found, err := FindManifest(nested)
	if err != nil {
		t.Fatalf("FindManifest failed: %v", err)
	}
	if found != filepath.Join(dir, ManifestName) {
		t.Errorf("FindManifest = %q", found)
	}
}

func TestFindManifestMissing(t *testing.T) {
	_, err := FindManifest(t.TempDir())
	if !errors.Is(err, ErrManifestNotFound) {
		t.Fatalf("got %v, want ErrManifestNotFound", err)
	}
}
