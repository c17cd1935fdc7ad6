// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"fmt"
	"strings"
)

// Kind is the category of an issue.
type Kind int

const (
	HookNotFound Kind = iota
	HookInvalidArgs
	DeprecatedHook
	InvalidDocblock
)

var kindNames = []string{
	HookNotFound:    "HookNotFound",
	HookInvalidArgs: "HookInvalidArgs",
	DeprecatedHook:  "DeprecatedHook",
	InvalidDocblock: "InvalidDocblock",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind returns the kind named s, compared case-insensitively.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if strings.EqualFold(name, s) {
			return Kind(i), true
		}
	}
	return 0, false
}

// Severity returns the severity issues of kind k are rendered with.
func (k Kind) Severity() Severity {
	if k == DeprecatedHook {
		return SeverityWarning
	}
	return SeverityError
}

// Issue is a finding about analyzed code.
type Issue struct {
	Kind         Kind
	Message      string
	File         string
	Line         int
	Suppressible bool
}

func (i Issue) String() string {
	if i.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", i.File, i.Line, i.Kind, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.File, i.Kind, i.Message)
}

// Diagnostic converts the issue for rendering.
func (i Issue) Diagnostic() Diagnostic {
	d := Diagnostic{
		Severity: i.Kind.Severity(),
		Code:     i.Kind.String(),
		Message:  i.Message,
	}
	if i.File != "" {
		d.Spans = []Span{{File: i.File, Line: i.Line}}
	}
	return d
}

// Sink receives issues.
type Sink interface {
	Report(Issue)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Issue)

func (f SinkFunc) Report(i Issue) { f(i) }

// Collector is a Sink that records issues, dropping suppressible issues
// of suppressed kinds.
type Collector struct {
	Issues     []Issue
	Suppressed int

	suppress map[Kind]bool
}

// NewCollector returns a collector suppressing the named kinds. Unknown
// names are returned as an error.
func NewCollector(suppress ...string) (*Collector, error) {
	c := &Collector{suppress: make(map[Kind]bool)}
	for _, name := range suppress {
		k, ok := ParseKind(name)
		if !ok {
			return nil, fmt.Errorf("unknown issue kind %q", name)
		}
		c.suppress[k] = true
	}
	return c, nil
}

// Report records i unless it is suppressed.
func (c *Collector) Report(i Issue) {
	if i.Suppressible && c.suppress[i.Kind] {
		c.Suppressed++
		return
	}
	c.Issues = append(c.Issues, i)
}

// Reset drops the recorded issues.
func (c *Collector) Reset() {
	c.Issues = nil
	c.Suppressed = 0
}

// Diagnostics converts the recorded issues for rendering.
func (c *Collector) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(c.Issues))
	for i, issue := range c.Issues {
		out[i] = issue.Diagnostic()
	}
	return out
}
