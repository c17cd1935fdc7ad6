// Copyright © 2024 The ELPS authors

package dynname

import (
	"testing"

	"github.com/luthersystems/wphooks/ast"
	"github.com/luthersystems/wphooks/hooks"
	"github.com/luthersystems/wphooks/semtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func variable(name string) *ast.Node { return &ast.Node{Kind: ast.Variable, Name: name} }
func str(v string) *ast.Node         { return &ast.Node{Kind: ast.String, Value: v} }
func part(v string) *ast.Node        { return &ast.Node{Kind: ast.StringPart, Value: v} }
func num(v string) *ast.Node         { return &ast.Node{Kind: ast.Int, Value: v} }

func prop(v *ast.Node, name string) *ast.Node {
	return &ast.Node{Kind: ast.PropertyFetch, Var: v, Name: name}
}

func method(v *ast.Node, name string) *ast.Node {
	return &ast.Node{Kind: ast.MethodCall, Var: v, Name: name}
}

func dim(v, key *ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.ArrayDimFetch, Var: v, Dim: key}
}

func TestName(t *testing.T) {
	tests := []struct {
		name string
		expr *ast.Node
		want string
	}{
		{"variable", variable("tag"), "{$tag}"},
		{"string", str("init"), "init"},
		{"int", num("10"), "10"},
		{"interpolated", &ast.Node{Kind: ast.Interpolated, Parts: []*ast.Node{
			part("save_post_"), prop(variable("post"), "post_type"),
		}}, "save_post_{$post->post_type}"},
		{"concat", &ast.Node{Kind: ast.Concat, Left: str("wp_ajax_"), Right: variable("action")}, "wp_ajax_{$action}"},
		{"method chain", method(prop(variable("this"), "screen"), "get_id"), "{$this->screen->get_id()}"},
		{"string key", dim(variable("args"), str("type")), "{$args['type']}"},
		{"numeric key", dim(variable("args"), num("0")), "{$args[0]}"},
		{"variable key", dim(variable("args"), variable("k")), "{$args[$k]}"},
		{"static call on expression", &ast.Node{Kind: ast.StaticCall, Class: variable("cls"), Name: "slug"}, "{$cls::slug()}"},
		{"function call", &ast.Node{Kind: ast.Call, Name: "basename"}, "{$variable}"},
		{"constant", &ast.Node{Kind: ast.ConstFetch, Name: "MY_PREFIX"}, "{$variable}"},
		{"class constant", &ast.Node{Kind: ast.ClassConstFetch, ClassName: "Foo", Name: "BAR"}, "{$variable}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := Name(tt.expr)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestName_Skipped(t *testing.T) {
	for _, expr := range []*ast.Node{
		{Kind: ast.StaticPropertyFetch, ClassName: "self", Name: "tag"},
		{Kind: ast.StaticCall, ClassName: "Foo", Name: "bar"},
		{Kind: ast.Interpolated, Parts: []*ast.Node{part("x_"), {Kind: ast.StaticPropertyFetch, ClassName: "self", Name: "y"}}},
		nil,
	} {
		_, ok, err := Name(expr)
		assert.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestName_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		expr *ast.Node
		want string
	}{
		{"ternary", &ast.Node{Kind: ast.Other, Type: "Expr_Ternary", Line: 12},
			"unsupported dynamic hook name with type Expr_Ternary on line 12"},
		{"dynamic property name", &ast.Node{Kind: ast.PropertyFetch, Line: 3, Var: variable("o"),
			NameExpr: &ast.Node{Kind: ast.Variable, Type: "Expr_Variable", Name: "p"}},
			"unsupported dynamic hook name with name type Expr_Variable on line 3"},
		{"append dim", &ast.Node{Kind: ast.ArrayDimFetch, Line: 4, Var: variable("a")},
			"unsupported dynamic hook name with key type <nil> on line 4"},
		{"property of static property", &ast.Node{Kind: ast.PropertyFetch, Line: 5, Name: "x",
			Var: &ast.Node{Kind: ast.StaticPropertyFetch, Type: "Expr_StaticPropertyFetch", ClassName: "self", Name: "o"}},
			"unsupported dynamic hook name with var type Expr_StaticPropertyFetch on line 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := Name(tt.expr)
			assert.False(t, ok)
			var unsupported *UnsupportedError
			require.ErrorAs(t, err, &unsupported)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "save_post_{$abc}", Normalize("save_post_{$post->post_type}"))
	assert.Equal(t, "a_{$abc}_b", Normalize("a_{$x{$y}}_b"))
	assert.Equal(t, "plain", Normalize("plain"))
	assert.Equal(t, "{$abc}{$abc}", Normalize("{$a}{$b}"))
	assert.Equal(t, "x_{$open", Normalize("x_{$open"))
}

func newRegistry(t *testing.T) *hooks.Registry {
	t.Helper()
	r := hooks.NewRegistry()
	r.Register("a_{$x}_b", hooks.KindAction, []*semtype.Union{semtype.IntType()}, false)
	r.Register("a_{$x}_b_{$y}", hooks.KindAction, []*semtype.Union{semtype.StringType(), semtype.StringType()}, false)
	r.Register("pre_option_{$option}", hooks.KindFilter, []*semtype.Union{semtype.MixedType(), semtype.StringType()}, false)
	r.Register("{$tag}", hooks.KindAction, nil, false)
	r.Register("load-{$pagenow}", hooks.KindAction, nil, false)
	return r
}

func newResolver(t *testing.T, r *hooks.Registry) *Resolver {
	t.Helper()
	res, err := NewResolver(r, "")
	require.NoError(t, err)
	return res
}

func TestResolve_MostSpecificWins(t *testing.T) {
	r := newRegistry(t)
	h, err := newResolver(t, r).Resolve("a_1_b_2", true)
	require.NoError(t, err)
	require.Len(t, h.Types, 2)
	assert.Equal(t, "string", h.Types[0].String())

	memo, ok := r.Lookup("a_1_b_2")
	require.True(t, ok)
	assert.Same(t, h, memo)
}

func TestResolve_ExactShape(t *testing.T) {
	r := newRegistry(t)
	h, err := newResolver(t, r).Resolve("pre_option_{$name}", false)
	require.NoError(t, err)
	assert.Equal(t, "pre_option_{$name}", h.Name)
	assert.Equal(t, hooks.KindFilter, h.Kind)
}

func TestResolve_Polarity(t *testing.T) {
	r := newRegistry(t)
	res := newResolver(t, r)

	_, err := res.Resolve("pre_option_{$name}", true)
	assert.ErrorIs(t, err, ErrKindMismatch)

	_, err = res.Resolve("pre_option_siteurl", true)
	assert.ErrorIs(t, err, ErrNotFound)
	_, ok := r.Lookup("pre_option_siteurl")
	assert.False(t, ok)

	h, err := res.Resolve("pre_option_siteurl", false)
	require.NoError(t, err)
	assert.Equal(t, hooks.KindFilter, h.Kind)
}

func TestResolve_PropertySegments(t *testing.T) {
	r := newRegistry(t)
	res := newResolver(t, r)
	for _, name := range []string{
		"pre_option_{$this->opt}",
		"pre_option_{$args['key']}",
		"load-edit.php",
	} {
		isAction := name == "load-edit.php"
		_, err := res.Resolve(name, isAction)
		assert.NoError(t, err, name)
	}
}

func TestResolve_TooGeneric(t *testing.T) {
	r := newRegistry(t)
	res := newResolver(t, r)
	for _, name := range []string{"{$hook}", "_{$a}_{$b}", ""} {
		_, err := res.Resolve(name, true)
		assert.ErrorIs(t, err, ErrNotFound, name)
	}
	// The fully generic {$tag} pattern never swallows a concrete name.
	_, err := res.Resolve("something_else", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_CustomCharClass(t *testing.T) {
	r := newRegistry(t)
	res, err := NewResolver(r, `a-z`)
	require.NoError(t, err)
	_, err = res.Resolve("pre_option_siteurl", false)
	assert.NoError(t, err)
	_, err = res.Resolve("pre_option_SITE", false)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = NewResolver(r, `\`)
	assert.Error(t, err)
}
