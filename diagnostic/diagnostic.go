// Copyright © 2024 The ELPS authors

// Package diagnostic defines the issues reported about analyzed code, the
// sink they are reported to, and a Rust-style renderer for CLI output.
// It depends on nothing else in the module so every package can report
// through it.
package diagnostic

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Span identifies a region of source code to highlight in the diagnostic.
type Span struct {
	File   string // path for reading source; display name if unreadable
	Line   int    // 1-based line number
	Col    int    // 1-based start column, 0 underlines the statement
	EndCol int    // 1-based end column (0 = auto-detect from source)
	Label  string // text shown under the underline
}

// Diagnostic is a rendered form of an Issue with optional source
// annotations and trailing notes.
type Diagnostic struct {
	Severity Severity
	Code     string // issue kind shown as "warning[Code]"
	Message  string
	Spans    []Span
	Notes    []string
}
