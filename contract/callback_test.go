// Copyright © 2024 The ELPS authors

package contract

import (
	"testing"

	"github.com/luthersystems/wphooks/ast"
	"github.com/luthersystems/wphooks/hooks"
	"github.com/luthersystems/wphooks/semtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCallback(t *testing.T) {
	want := &Signature{
		Params: []Param{{Name: "post_id", Type: semtype.IntType()}, {Name: "post", Type: semtype.MustParse("WP_Post")}},
		Return: semtype.VoidType(),
	}
	tests := []struct {
		name     string
		sig      CallbackSignature
		problems int
	}{
		{"untyped", CallbackSignature{Params: []CallbackParam{{Name: "a"}, {Name: "b"}}}, 0},
		{"wider types", CallbackSignature{Params: []CallbackParam{
			{Name: "id", Type: semtype.MustParse("int|string")}, {Name: "post", Type: semtype.ObjectType()},
		}}, 0},
		{"too many required", CallbackSignature{Params: []CallbackParam{{Name: "a"}, {Name: "b"}, {Name: "c"}}}, 1},
		{"optional extra", CallbackSignature{Params: []CallbackParam{{Name: "a"}, {Name: "b"}, {Name: "c", Optional: true}}}, 0},
		{"incompatible", CallbackSignature{Params: []CallbackParam{{Name: "id", Type: semtype.StringType()}}}, 1},
		{"action return ignored", CallbackSignature{Return: semtype.StringType()}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, CheckCallback(want, tt.sig), tt.problems)
		})
	}
	assert.Nil(t, CheckCallback(nil, CallbackSignature{}))
}

func TestSignatureOf(t *testing.T) {
	n := &ast.Node{
		Kind: ast.Closure,
		Params: []ast.Param{
			{Name: "id", Type: "int"},
			{Name: "rest", Variadic: true},
			{Name: "bad", Type: "%%bad"},
		},
		ReturnType: "?string",
	}
	sig, ok := SignatureOf(n)
	require.True(t, ok)
	require.Len(t, sig.Params, 3)
	assert.Equal(t, "int", sig.Params[0].Type.String())
	assert.True(t, sig.Params[1].Variadic)
	assert.Nil(t, sig.Params[2].Type)
	assert.Equal(t, "string|null", sig.Return.String())

	_, ok = SignatureOf(str("callback_name"))
	assert.False(t, ok)
}

func requiredParams(names ...string) []CallbackParam {
	out := make([]CallbackParam, len(names))
	for i, n := range names {
		out[i] = CallbackParam{Name: n}
	}
	return out
}

func TestCheckCallback_OptionalHookParams(t *testing.T) {
	want := &Signature{
		Params: []Param{
			{Name: "id", Type: semtype.IntType()},
			{Name: "title", Type: semtype.StringType()},
			{Name: "param3", Type: semtype.MixedType(), Optional: true},
			{Name: "param4", Type: semtype.MixedType(), Optional: true},
		},
		Return: semtype.VoidType(),
	}
	problems := CheckCallback(want, CallbackSignature{Params: requiredParams("a", "b", "c")})
	require.Len(t, problems, 1)
	assert.Equal(t, "callback requires 3 parameters but only 2 are guaranteed", problems[0])

	sig := CallbackSignature{Params: requiredParams("a", "b")}
	sig.Params = append(sig.Params, CallbackParam{Name: "c", Optional: true}, CallbackParam{Name: "d", Optional: true})
	assert.Empty(t, CheckCallback(want, sig))
}

func TestCheckCallback_MinimumInvokeArgs(t *testing.T) {
	f := newFixture(t)
	f.registry.Register("h", hooks.KindAction, types(semtype.IntType(), semtype.StringType(),
		semtype.MixedType(), semtype.MixedType(), semtype.MixedType()), false)
	f.registry.Register("h", hooks.KindAction, types(semtype.IntType(), semtype.StringType()), false)

	ct := f.params(t, call("add_action", str("h"), variable("cb"), num("10"), num("5")))
	require.Equal(t, []string{"int", "string", "mixed?", "mixed?", "mixed?"}, paramStrings(ct.Callback.Params))

	problems := CheckCallback(ct.Callback, CallbackSignature{Params: requiredParams("a", "b", "c", "d", "e")})
	assert.Equal(t, []string{"callback requires 5 parameters but only 2 are guaranteed"}, problems)
	assert.Empty(t, CheckCallback(ct.Callback, CallbackSignature{Params: requiredParams("a", "b")}))
}

func TestCheckCallback_VoidReturn(t *testing.T) {
	f := newFixture(t)
	f.registry.Register("format_price", hooks.KindFilter, types(semtype.FloatType()), false)
	f.registry.Register("price_saved", hooks.KindAction, types(semtype.FloatType()), false)
	cb := CallbackSignature{
		Params: []CallbackParam{{Name: "p", Type: semtype.FloatType()}},
		Return: semtype.VoidType(),
	}

	filter := f.params(t, call("add_filter", str("format_price"), variable("cb")))
	assert.Equal(t, []string{"callback returns void but float is expected"}, CheckCallback(filter.Callback, cb))

	action := f.params(t, call("add_action", str("price_saved"), variable("cb")))
	assert.Empty(t, CheckCallback(action.Callback, cb))

	cb.Return = semtype.FloatType()
	assert.Empty(t, CheckCallback(filter.Callback, cb))
}
