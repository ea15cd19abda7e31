package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"wisp/interpreter-go/pkg/driver"
	"wisp/interpreter-go/pkg/interpreter"
	"wisp/interpreter-go/pkg/runtime"
	"wisp/interpreter-go/pkg/syntax"
)

const cliVersion = "wisp 0.1.0"

const historyFile = ".wisp_history"

const (
	promptMain = "> "
	promptCont = "... "
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "run":
		return cmdRun(args[1:])
	case "repl":
		return cmdRepl(args[1:])
	case "deps":
		return cmdDeps(args[1:])
	case "version", "--version", "-V":
		fmt.Fprintln(os.Stdout, cliVersion)
		return 0
	case "help", "--help", "-h":
		printUsage(os.Stdout)
		return 0
	default:
		if looksLikeSourcePath(args[0]) {
			return cmdRun(args)
		}
		fmt.Fprintf(os.Stderr, "wisp: unknown command %q\n", args[0])
		printUsage(os.Stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  wisp run [file.wisp]   run a source file, or the default executable target")
	fmt.Fprintln(w, "  wisp run <target>      run a named manifest target")
	fmt.Fprintln(w, "  wisp repl              start an interactive session")
	fmt.Fprintln(w, "  wisp deps install      materialize manifest dependencies into vendor/")
	fmt.Fprintln(w, "  wisp deps update       re-resolve dependencies, ignoring package.lock pins")
	fmt.Fprintln(w, "  wisp version           print the interpreter version")
	fmt.Fprintln(w, "  wisp help              show this help")
}

func cmdRun(args []string) int {
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "wisp run: unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return 2
	}

	manifest, err := loadNearestManifest()
	if err != nil && !errors.Is(err, driver.ErrManifestNotFound) {
		fmt.Fprintf(os.Stderr, "wisp run: %v\n", err)
		return 1
	}

	var entry string
	if len(args) == 0 {
		if manifest == nil {
			fmt.Fprintln(os.Stderr, "wisp run: no source file given and no package.yml found")
			return 2
		}
		target, err := manifest.DefaultExecutableTarget()
		if err != nil {
			fmt.Fprintf(os.Stderr, "wisp run: %v\n", err)
			return 1
		}
		entry = manifest.EntrypointPath(target)
	} else {
		entry = args[0]
		// A manifest target name wins over a path interpretation; paths
		// typed at the prompt resolve against the working directory, not
		// the package root.
		if manifest != nil {
			if target, ok := manifest.FindTarget(entry); ok {
				entry = manifest.EntrypointPath(target)
			} else {
				entry = resolveLocalPath(entry)
			}
		} else {
			entry = resolveLocalPath(entry)
		}
	}

	loader := driver.NewLoader(manifest)
	src, err := loader.ReadSource(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wisp run: %v\n", err)
		return 1
	}

	interp := interpreter.NewInterpreter()
	if _, err := interp.EvalSource(src); err != nil {
		fmt.Fprintf(os.Stderr, "wisp run: %v\n", err)
		return 1
	}
	return 0
}

// resolveLocalPath absolutizes an argument that names an existing file
// relative to the working directory, trying the bare name first and the
// source extension second. Anything else is left for the loader's search
// roots.
func resolveLocalPath(arg string) string {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return arg
	}
	for _, candidate := range []string{abs, abs + driver.SourceExtension} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return arg
}

func looksLikeSourcePath(arg string) bool {
	if arg == "" {
		return false
	}
	if strings.Contains(arg, "/") || strings.Contains(arg, "\\") {
		return true
	}
	if filepath.Ext(arg) == driver.SourceExtension {
		return true
	}
	return strings.HasPrefix(arg, ".")
}

func cmdRepl(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "wisp repl: unexpected arguments: %s\n", strings.Join(args, " "))
		return 2
	}

	fmt.Printf("%s (Ctrl-C clears the line, Ctrl-D exits)\n", cliVersion)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	interp := interpreter.NewInterpreter()
	for {
		src, ok := readForm(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		value, err := interp.EvalSource(src)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if value.Kind() == runtime.KindTerminate {
			return 0
		}
		if line, ok := echoLine(value); ok {
			fmt.Println(line)
		}
	}
}

// echoLine renders a REPL result, reporting whether anything prints.
// Void results stay silent so define/display forms do not echo.
func echoLine(value runtime.Value) (string, bool) {
	if value == nil || value.Kind() == runtime.KindVoid {
		return "", false
	}
	return "=> " + interpreter.Render(value), true
}

// readForm collects input lines until the reader stops reporting an
// incomplete form. Ctrl-C drops the partial form and returns to the main
// prompt; Ctrl-D ends the session.
func readForm(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// liner.ErrPromptAborted
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, err := syntax.ReadAll(src); errors.Is(err, syntax.ErrIncomplete) {
			continue
		}
		return src, true
	}
}

func cmdDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "wisp deps requires a subcommand (install, update)")
		return 2
	}
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "wisp deps %s: unexpected arguments: %s\n", args[0], strings.Join(args[1:], " "))
		return 2
	}
	var update bool
	switch args[0] {
	case "install":
	case "update":
		update = true
	default:
		fmt.Fprintf(os.Stderr, "wisp deps: unknown subcommand %q\n", args[0])
		return 2
	}

	manifest, err := loadNearestManifest()
	if err != nil {
		if errors.Is(err, driver.ErrManifestNotFound) {
			fmt.Fprintln(os.Stderr, "wisp deps: no package.yml found in this directory or any parent")
		} else {
			fmt.Fprintf(os.Stderr, "wisp deps: %v\n", err)
		}
		return 1
	}

	installer, err := driver.NewInstaller(manifest, func(format string, logArgs ...any) {
		fmt.Fprintf(os.Stdout, format+"\n", logArgs...)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "wisp deps: %v\n", err)
		return 1
	}

	if update {
		err = installer.Update()
	} else {
		err = installer.Install()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "wisp deps: %v\n", err)
		return 1
	}

	fmt.Fprintln(os.Stdout, installer.Lock().Summary())
	return 0
}

func loadNearestManifest() (*driver.Manifest, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	path, err := driver.FindManifest(wd)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(path)
}
