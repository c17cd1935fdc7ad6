// Copyright © 2024 The ELPS authors

// Package lint checks the WordPress hook usage of PHP source files.
//
// The linter is modeled after go vet: each check is an independent Analyzer
// that receives one file together with the hook call sites the analysis
// session checked in it, and reports diagnostics. The framework handles
// running the session, running analyzers, collecting results, and
// formatting output.
package lint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/luthersystems/wphooks/analysis"
	"github.com/luthersystems/wphooks/ast"
	"github.com/luthersystems/wphooks/astutil"
	"github.com/luthersystems/wphooks/diagnostic"
)

// Severity indicates the severity level of a lint diagnostic.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityError
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the severity as a JSON string.
// An unset severity (zero value) is marshaled as "warning".
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		return json.Marshal("warning")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity: %q", str)
	}
	return nil
}

// Analyzer defines a single lint check.
type Analyzer struct {
	// Name is a short identifier for this check (e.g. "hook-contract").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Severity is the default severity for diagnostics from this analyzer.
	Severity Severity

	// Run executes the check. It should call pass.Report() for each finding.
	Run func(pass *Pass) error
}

// Pass provides context to a running analyzer.
type Pass struct {
	// Analyzer is the currently running check.
	Analyzer *Analyzer

	// File is the syntax tree being analyzed.
	File *ast.File

	// Sites are the hook API calls of File checked by the session.
	Sites []analysis.Site

	// Issues are the issues the session reported while checking File.
	Issues []diagnostic.Issue

	// Oracle types the expressions of File.
	Oracle analysis.Oracle

	// diagnostics collects reported findings.
	diagnostics []Diagnostic
}

// Report records a diagnostic finding.
func (p *Pass) Report(d Diagnostic) {
	d.Analyzer = p.Analyzer.Name
	if d.Severity == severityUnset {
		d.Severity = p.Analyzer.Severity
	}
	p.diagnostics = append(p.diagnostics, d)
}

// ReportWithNotes records a diagnostic with additional hint text.
func (p *Pass) ReportWithNotes(d Diagnostic, notes ...string) {
	d.Notes = append(d.Notes, notes...)
	p.Report(d)
}

// Reportf is a convenience for reporting a diagnostic at a line of the
// file being analyzed.
func (p *Pass) Reportf(line int, format string, args ...interface{}) {
	p.Report(Diagnostic{
		Pos:     Position{File: p.File.Path, Line: line},
		Message: fmt.Sprintf(format, args...),
	})
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	// Pos is the source location of the problem.
	Pos Position `json:"pos"`

	// Message is a human-readable description of the problem.
	Message string `json:"message"`

	// Analyzer is the name of the check that found this problem.
	Analyzer string `json:"analyzer"`

	// Severity is the severity level of the diagnostic.
	Severity Severity `json:"severity"`

	// Code is the issue kind for diagnostics derived from hook issues.
	Code string `json:"code,omitempty"`

	// Notes are optional hint text lines for the user.
	Notes []string `json:"notes,omitempty"`
}

// Position identifies a location in source code.
type Position struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col,omitempty"`
}

// String returns the position in file:line format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// String returns the diagnostic in go vet style: file:line: message (analyzer)
// with optional note lines appended.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s (%s)", d.Pos, d.Message, d.Analyzer)
	for _, n := range d.Notes {
		s += "\n  = note: " + n
	}
	return s
}

// Diagnostic converts d for the annotated renderer.
func (d Diagnostic) Diagnostic() diagnostic.Diagnostic {
	sev := diagnostic.SeverityError
	switch d.Severity {
	case SeverityWarning, severityUnset:
		sev = diagnostic.SeverityWarning
	case SeverityInfo:
		sev = diagnostic.SeverityNote
	}
	code := d.Code
	if code == "" {
		code = d.Analyzer
	}
	out := diagnostic.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  d.Message,
		Notes:    d.Notes,
	}
	if d.Pos.File != "" {
		out.Spans = []diagnostic.Span{{File: d.Pos.File, Line: d.Pos.Line, Col: d.Pos.Col}}
	}
	return out
}

// Linter runs a set of analyzers over source files.
type Linter struct {
	Analyzers []*Analyzer
	Session   *analysis.Session
}

// LintFiles analyzes files together: the hooks declared in any of them
// are known when each is checked. Diagnostics are sorted by file and line.
func (l *Linter) LintFiles(ctx context.Context, files []*ast.File) ([]Diagnostic, error) {
	if err := l.Session.LoadCorpus(ctx); err != nil {
		return nil, err
	}
	for _, f := range files {
		l.Session.ScanFile(ctx, f)
	}

	var all []Diagnostic
	for _, f := range files {
		diags, err := l.lintFile(ctx, f)
		if err != nil {
			return nil, err
		}
		all = append(all, diags...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Pos.File != all[j].Pos.File {
			return all[i].Pos.File < all[j].Pos.File
		}
		return all[i].Pos.Line < all[j].Pos.Line
	})
	return all, nil
}

func (l *Linter) lintFile(ctx context.Context, f *ast.File) ([]Diagnostic, error) {
	l.Session.Issues.Reset()
	sites := l.Session.CheckFile(ctx, f)
	issues := append([]diagnostic.Issue(nil), l.Session.Issues.Issues...)

	var all []Diagnostic
	for _, analyzer := range l.Analyzers {
		pass := &Pass{
			Analyzer: analyzer,
			File:     f,
			Sites:    sites,
			Issues:   issues,
			Oracle:   l.Session.Oracle,
		}
		if err := analyzer.Run(pass); err != nil {
			return nil, fmt.Errorf("%s: analyzer %s: %w", f.Path, analyzer.Name, err)
		}
		// Set file on diagnostics that don't have one
		for i := range pass.diagnostics {
			if pass.diagnostics[i].Pos.File == "" {
				pass.diagnostics[i].Pos.File = f.Path
			}
		}
		all = append(all, pass.diagnostics...)
	}
	return filterSuppressed(all, f.Nodes), nil
}

// filterSuppressed removes diagnostics on lines with nolint comments.
func filterSuppressed(diags []Diagnostic, nodes []*ast.Node) []Diagnostic {
	// line -> "" (all) or "analyzer1,analyzer2"
	nolintLines := make(map[int]string)
	walkForNolint(nodes, nolintLines)

	var filtered []Diagnostic
	for _, d := range diags {
		directive, ok := nolintLines[d.Pos.Line]
		if !ok {
			filtered = append(filtered, d)
			continue
		}
		// Empty directive = suppress all
		if directive == "" {
			continue
		}
		suppressed := false
		for _, name := range strings.Split(directive, ",") {
			name = strings.TrimSpace(name)
			if name == d.Analyzer || (d.Code != "" && name == d.Code) {
				suppressed = true
				break
			}
		}
		if !suppressed {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// walkForNolint finds nolint directives in doc comments and maps them to
// the line of the commented node.
func walkForNolint(nodes []*ast.Node, lines map[int]string) {
	astutil.Walk(nodes, func(n, _ *ast.Node, _ int) {
		if n.Doc != "" && n.Line > 0 {
			checkNolintComment(n.Doc, n.Line, lines)
		}
	})
}

func checkNolintComment(doc string, line int, lines map[int]string) {
	for _, text := range strings.Split(doc, "\n") {
		text = strings.TrimSpace(text)
		text = strings.TrimLeft(text, "/*#")
		text = strings.TrimSuffix(text, "*/")
		text = strings.TrimSpace(text)

		if !strings.HasPrefix(text, "nolint") {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(text, "nolint"))
		if rest == "" {
			lines[line] = ""
			return
		}
		if strings.HasPrefix(rest, ":") {
			lines[line] = strings.TrimPrefix(rest, ":")
			return
		}
	}
}

// FormatText writes diagnostics in go vet text format.
func FormatText(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String()) //nolint:errcheck // best-effort output to writer
	}
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}

// DefaultAnalyzers returns the built-in set of lint checks.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerHookContract,
		AnalyzerCallArguments,
		AnalyzerCallbackSignature,
		AnalyzerUncheckedCall,
	}
}
