package interpreter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Script fixtures are plain programs under testdata. Expectations ride in
// comment directives the reader skips:
//
//	; result: <rendered final value>
//	; output: <exact display output>
func TestScriptFixtures(t *testing.T) {
	entries, err := os.ReadDir("testdata")
	if err != nil {
		t.Fatal(err)
	}
	ran := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".wisp") {
			continue
		}
		ran++
		name := entry.Name()
		t.Run(strings.TrimSuffix(name, ".wisp"), func(t *testing.T) {
			raw, err := os.ReadFile(filepath.Join("testdata", name))
			if err != nil {
				t.Fatal(err)
			}
			src := string(raw)
			wantResult, hasResult := directive(src, "; result: ")
			wantOutput, hasOutput := directive(src, "; output: ")
			if !hasResult && !hasOutput {
				t.Fatalf("%s declares no expectations", name)
			}

			interp := NewInterpreter()
			var out bytes.Buffer
			interp.SetOutput(&out)
			value, err := interp.EvalSource(src)
			if err != nil {
				t.Fatalf("%s failed: %v", name, err)
			}
			if hasResult {
				if got := Render(value); got != wantResult {
					t.Errorf("%s result = %s, want %s", name, got, wantResult)
				}
			}
			if hasOutput {
				if got := out.String(); got != wantOutput {
					t.Errorf("%s output = %q, want %q", name, got, wantOutput)
				}
			}
		})
	}
	if ran == 0 {
		t.Fatal("no fixtures found under testdata")
	}
}

func directive(src, prefix string) (string, bool) {
	for _, line := range strings.Split(src, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimPrefix(line, prefix), true
		}
	}
	return "", false
}
