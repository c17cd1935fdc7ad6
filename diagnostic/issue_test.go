// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	for _, k := range []Kind{HookNotFound, HookInvalidArgs, DeprecatedHook, InvalidDocblock} {
		parsed, ok := ParseKind(k.String())
		require.True(t, ok)
		assert.Equal(t, k, parsed)
	}
	k, ok := ParseKind("hooknotfound")
	assert.True(t, ok)
	assert.Equal(t, HookNotFound, k)
	_, ok = ParseKind("Nope")
	assert.False(t, ok)
	assert.Equal(t, SeverityWarning, DeprecatedHook.Severity())
	assert.Equal(t, SeverityError, InvalidDocblock.Severity())
}

func TestCollector_Suppression(t *testing.T) {
	c, err := NewCollector("DeprecatedHook", "InvalidDocblock")
	require.NoError(t, err)

	c.Report(Issue{Kind: DeprecatedHook, Message: "dropped", Suppressible: true})
	c.Report(Issue{Kind: InvalidDocblock, Message: "kept, not suppressible"})
	c.Report(Issue{Kind: HookNotFound, Message: "kept", Suppressible: true})

	require.Len(t, c.Issues, 2)
	assert.Equal(t, 1, c.Suppressed)
	assert.Equal(t, "kept, not suppressible", c.Issues[0].Message)
	assert.Len(t, c.Diagnostics(), 2)

	c.Reset()
	assert.Empty(t, c.Issues)

	_, err = NewCollector("Bogus")
	assert.Error(t, err)
}

func TestIssueString(t *testing.T) {
	i := Issue{Kind: HookNotFound, Message: `Hook "x" not found`, File: "a.php", Line: 4}
	assert.Equal(t, `a.php:4: HookNotFound: Hook "x" not found`, i.String())
	i.Line = 0
	assert.Equal(t, `a.php: HookNotFound: Hook "x" not found`, i.String())

	var got []Issue
	var sink Sink = SinkFunc(func(i Issue) { got = append(got, i) })
	sink.Report(i)
	assert.Len(t, got, 1)
}
