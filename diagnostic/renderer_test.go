// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRenderer returns a Renderer with colors disabled and a fake source reader.
func testRenderer(sources map[string]string) *Renderer {
	return &Renderer{
		Color: ColorNever,
		SourceReader: func(name string) ([]byte, error) {
			s, ok := sources[name]
			if !ok {
				return nil, errors.New("not found: " + name)
			}
			return []byte(s), nil
		},
	}
}

func render(t *testing.T, r *Renderer, d Diagnostic) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, d))
	return buf.String()
}

func TestRender_IssueWithoutColumn(t *testing.T) {
	r := testRenderer(map[string]string{
		"plugin.php": "<?php\n\tadd_action( 'old_hook', 'cb' );\n",
	})
	got := render(t, r, Issue{
		Kind:    DeprecatedHook,
		Message: `Hook "old_hook" is deprecated`,
		File:    "plugin.php",
		Line:    2,
	}.Diagnostic())

	assert.Contains(t, got, `warning[DeprecatedHook]: Hook "old_hook" is deprecated`)
	assert.Contains(t, got, "--> plugin.php:2\n")
	assert.Contains(t, got, "2 |      add_action( 'old_hook', 'cb' );")
	underline := strings.Repeat("^", len("add_action( 'old_hook', 'cb' );"))
	assert.Contains(t, got, "  |      "+underline+"\n")
}

func TestRender_SpanWithLabel(t *testing.T) {
	r := testRenderer(map[string]string{
		"a.php": "apply_filters( $name, $v );",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Code:     "HookNotFound",
		Message:  "Hook could not be resolved",
		Spans:    []Span{{File: "a.php", Line: 1, Col: 16, Label: "dynamic name"}},
	})
	assert.Contains(t, got, "error[HookNotFound]: Hook could not be resolved")
	assert.Contains(t, got, "--> a.php:1:16")
	assert.Contains(t, got, "^^^^^ dynamic name")
}

func TestRender_MissingSource(t *testing.T) {
	r := testRenderer(nil)
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "Invalid hook file hooks.json",
		Spans:    []Span{{File: "gone.php", Line: 3}},
	})
	assert.Equal(t, "error: Invalid hook file hooks.json\n  --> gone.php:3\n   |\n", got)
}

func TestRender_WrappedNotes(t *testing.T) {
	r := testRenderer(nil)
	r.NoteWidth = 20
	got := render(t, r, Diagnostic{
		Severity: SeverityNote,
		Message:  "m",
		Notes:    []string{"first words of a note that needs wrapping"},
	})
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	require.Greater(t, len(lines), 2)
	assert.Equal(t, "note: m", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "   = note: first words"))
	assert.True(t, strings.HasPrefix(lines[2], strings.Repeat(" ", 12)))
}

func TestRenderAll(t *testing.T) {
	r := testRenderer(nil)
	var buf bytes.Buffer
	require.NoError(t, r.RenderAll(&buf, []Diagnostic{
		{Severity: SeverityWarning, Message: "one"},
		{Severity: SeverityWarning, Message: "two"},
	}))
	assert.Equal(t, "warning: one\n\nwarning: two\n", buf.String())
}

func TestRender_Color(t *testing.T) {
	r := testRenderer(nil)
	r.Color = ColorAlways
	got := render(t, r, Diagnostic{Severity: SeverityError, Message: "x"})
	assert.Contains(t, got, "\033[")

	mode, ok := ParseColorMode("never")
	assert.True(t, ok)
	assert.Equal(t, ColorNever, mode)
	_, ok = ParseColorMode("sometimes")
	assert.False(t, ok)
}
