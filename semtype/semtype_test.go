// Copyright © 2024 The ELPS authors

package semtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RoundTrip(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"string", "string"},
		{"  int|null ", "int|null"},
		{"?int", "int|null"},
		{"Boolean", "bool"},
		{"integer", "int"},
		{"non-empty-string", "non-empty-string"},
		{"array-key", "array-key"},
		{"string[]", "string[]"},
		{"string[][]", "string[][]"},
		{"(int|string)[]", "(int|string)[]"},
		{"array<int>", "int[]"},
		{"array<string, int>", "array<string, int>"},
		{"list<WP_Post>", "list<WP_Post>"},
		{"int<0, max>", "int<0, max>"},
		{"'publish'", "'publish'"},
		{"42", "42"},
		{"1.5", "1.5"},
		{`\WP_Query`, `\WP_Query`},
		{`WP_Post|false`, `WP_Post|false`},
		{"array{}", "array{}"},
		{"array{ID: int, name?: string}", "array{ID: int, name?: string}"},
		{"array{int, string,}", "array{int, string}"},
		{"array{'quoted key': bool}", "array{quoted key: bool}"},
		{"object{id: int}", "object{id: int}"},
		{"array{path: string, sub: array{a: int}}", "array{path: string, sub: array{a: int}}"},
		{"Countable&Traversable", "Countable&Traversable"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			u, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.String())
		})
	}
}

func TestParse_Kinds(t *testing.T) {
	u := MustParse("WP_Post|null")
	require.Len(t, u.Types, 2)
	assert.Equal(t, Named, u.Types[0].Kind)
	assert.Equal(t, "WP_Post", u.Types[0].Name)
	assert.Equal(t, Null, u.Types[1].Kind)

	u = MustParse("array{ID: int}")
	require.True(t, u.IsSingle())
	assert.Equal(t, Shape, u.Types[0].Kind)
	require.Len(t, u.Types[0].Fields, 1)
	assert.Equal(t, "ID", u.Types[0].Fields[0].Key)
	assert.True(t, u.Types[0].Fields[0].Type.Equal(IntType()))

	v, ok := MustParse("'save_post'").SingleStringLiteral()
	assert.True(t, ok)
	assert.Equal(t, "save_post", v)
}

func TestParse_Errors(t *testing.T) {
	for _, input := range []string{
		"",
		"   ",
		"int|",
		"array{",
		"array<int",
		"callable(int",
		"int string",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			assert.Error(t, err)
		})
	}
}

func TestUnion_Predicates(t *testing.T) {
	assert.True(t, MixedType().IsMixed())
	assert.True(t, MixedType().HasMixed())
	assert.False(t, MustParse("int|mixed").IsMixed())
	assert.True(t, MustParse("int|mixed").HasMixed())
	assert.True(t, VoidType().IsVoid())
	assert.True(t, MustParse("bool").IsBool())
	assert.True(t, MustParse("true|false").IsBool())
	assert.False(t, MustParse("bool|null").IsBool())
	assert.Equal(t, "mixed", (*Union)(nil).String())
	assert.True(t, (*Union)(nil).Equal(nil))
	assert.False(t, IntType().Equal(nil))
}

func TestUnion_Generalize(t *testing.T) {
	u := NewUnion(
		LiteralStringType("a").Types[0],
		LiteralStringType("b").Types[0],
		Atomic{Kind: True},
		Atomic{Kind: False},
		LiteralIntType("3").Types[0],
		LiteralFloatType("2.5").Types[0],
		Atomic{Kind: Null},
	)
	assert.Equal(t, "string|bool|int|float|null", u.Generalize().String())
	assert.Nil(t, (*Union)(nil).Generalize())
}

func TestContainedBy(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"int", "mixed", true},
		{"mixed", "int", false},
		{"int", "int|string", true},
		{"int|string", "int", false},
		{"int", "float", true},
		{"float", "int", false},
		{"'x'", "string", true},
		{"'x'", "'y'", false},
		{"true", "bool", true},
		{"bool", "true", false},
		{"non-empty-string", "string", true},
		{"string[]", "array", true},
		{"string[]", "array<int>", false},
		{"list<int>", "int[]", true},
		{"array{a: int}", "array", true},
		{"array{a: int}", "array{a: int, b?: string}", true},
		{"array{b: string}", "array{a: int}", false},
		{"array{a: int|null}", "array{a: int}", false},
		{"WP_Post", "wp_post", true},
		{`\WP_Post`, "WP_Post", true},
		{"WP_Post", "WP_Term", false},
		{"WP_Post", "object", true},
		{"Closure", "callable", true},
		{"void", "int", false},
		{"null", "int|null", true},
		{"null", "int", false},
		{"2", "int<0, 2>", true},
		{"3", "int<0, 2>", false},
		{"7", "int<1, max>", true},
		{"0", "int<1, max>", false},
	}
	for _, tt := range tests {
		t.Run(tt.a+" in "+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainedBy(MustParse(tt.a), MustParse(tt.b)))
		})
	}
	assert.True(t, ContainedBy(IntType(), nil))
	assert.False(t, ContainedBy(nil, IntType()))
}

func TestQualify(t *testing.T) {
	uses := map[string]string{
		"post":   `Acme\Model\Post`,
		"models": `Acme\Model`,
	}
	tests := []struct {
		input string
		ns    string
		want  string
	}{
		{"Post", `Acme\Plugin`, `Acme\Model\Post`},
		{`Models\Term`, `Acme\Plugin`, `Acme\Model\Term`},
		{"Widget", `Acme\Plugin`, `Acme\Plugin\Widget`},
		{`\WP_Post`, `Acme\Plugin`, "WP_Post"},
		{"WP_Post", "", "WP_Post"},
		{"self", `Acme\Plugin`, "self"},
		{"Widget[]|null", `Acme`, `Acme\Widget[]|null`},
		{"array{w: Widget}", `Acme`, `array{w: Acme\Widget}`},
		{"int<0, max>", `Acme`, "int<0, max>"},
		{"string", `Acme`, "string"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			u := MustParse(tt.input)
			before := u.String()
			assert.Equal(t, tt.want, Qualify(u, tt.ns, uses).String())
			assert.Equal(t, before, u.String(), "input must not be modified")
		})
	}
}
