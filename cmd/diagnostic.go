// Copyright © 2024 The ELPS authors

package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/luthersystems/wphooks/diagnostic"
	lintpkg "github.com/luthersystems/wphooks/lint"
)

func colorMode() diagnostic.ColorMode {
	mode, ok := diagnostic.ParseColorMode(colorFlag)
	if !ok {
		return diagnostic.ColorAuto
	}
	return mode
}

func newRenderer() *diagnostic.Renderer {
	return &diagnostic.Renderer{Color: colorMode(), SourceReader: readSource}
}

// readSource reads the PHP source a diagnostic points at. Diagnostics
// carry the source path; when only the parser dump is present the line
// is simply left out of the snippet.
func readSource(path string) ([]byte, error) {
	return os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
}

// lintDiagToDiagnostic converts a lint.Diagnostic to a diagnostic.Diagnostic
// with a hint on how to silence it.
func lintDiagToDiagnostic(ld lintpkg.Diagnostic) diagnostic.Diagnostic {
	d := ld.Diagnostic()
	d.Notes = append(d.Notes, "to suppress: add \"// nolint:"+ld.Analyzer+"\" above the statement")
	return d
}

// renderLintDiagnostics renders lint diagnostics with diagnostic formatting to w.
func renderLintDiagnostics(w io.Writer, diags []lintpkg.Diagnostic) {
	ds := make([]diagnostic.Diagnostic, 0, len(diags))
	for _, ld := range diags {
		ds = append(ds, lintDiagToDiagnostic(ld))
	}
	r := newRenderer()
	_ = r.RenderAll(w, ds)
}

// sourcePath maps a parser dump to the PHP file it was produced from:
// plugin.php.json describes plugin.php.
func sourcePath(dump string) string {
	if src, ok := strings.CutSuffix(dump, ".json"); ok && strings.HasSuffix(src, ".php") {
		return src
	}
	return dump
}
