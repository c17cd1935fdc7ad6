// Copyright © 2024 The ELPS authors

package contract

import (
	"fmt"

	"github.com/luthersystems/wphooks/ast"
	"github.com/luthersystems/wphooks/semtype"
)

// CallbackParam is a declared parameter of a callback.
type CallbackParam struct {
	Name     string
	Type     *semtype.Union // nil when undeclared
	Optional bool
	Variadic bool
}

// CallbackSignature is the declared signature of a callback.
type CallbackSignature struct {
	Params []CallbackParam
	Return *semtype.Union // nil when undeclared
}

// SignatureOf reads the declared signature of a closure or arrow
// function. Declared types that do not parse are treated as undeclared.
func SignatureOf(n *ast.Node) (CallbackSignature, bool) {
	if n == nil || (n.Kind != ast.Closure && n.Kind != ast.ArrowFunction) {
		return CallbackSignature{}, false
	}
	var sig CallbackSignature
	for _, p := range n.Params {
		sig.Params = append(sig.Params, CallbackParam{
			Name:     p.Name,
			Type:     parseDeclared(p.Type),
			Optional: p.Optional,
			Variadic: p.Variadic,
		})
	}
	sig.Return = parseDeclared(n.ReturnType)
	return sig, true
}

func parseDeclared(text string) *semtype.Union {
	if text == "" {
		return nil
	}
	u, err := semtype.Parse(text)
	if err != nil {
		return nil
	}
	return u
}

// CheckCallback compares a callback with the signature a hook invokes it
// with and describes each incompatibility.
//
// The callback may not require more parameters than the hook is
// guaranteed to pass (optional hook parameters do not count), each
// declared parameter type must accept the hook's type at that position,
// and for filters the declared return type must fit the filtered type.
// A filter callback declared void fails that check. Action callbacks may
// return anything.
func CheckCallback(want *Signature, got CallbackSignature) []string {
	if want == nil {
		return nil
	}
	var problems []string
	required := 0
	for _, p := range got.Params {
		if !p.Optional && !p.Variadic {
			required++
		}
	}
	guaranteed := 0
	for _, p := range want.Params {
		if !p.Optional {
			guaranteed++
		}
	}
	if required > guaranteed {
		problems = append(problems, fmt.Sprintf(
			"callback requires %d parameters but only %d are guaranteed", required, guaranteed))
	}
	for i, p := range got.Params {
		if p.Variadic || i >= len(want.Params) {
			break
		}
		if p.Type == nil {
			continue
		}
		if passed := want.Params[i].Type; !semtype.ContainedBy(passed, p.Type) {
			problems = append(problems, fmt.Sprintf(
				"parameter $%s of type %s cannot accept %s", p.Name, p.Type, passed))
		}
	}
	if got.Return != nil && !want.Return.IsVoid() && !semtype.ContainedBy(got.Return, want.Return) {
		problems = append(problems, fmt.Sprintf(
			"callback returns %s but %s is expected", got.Return, want.Return))
	}
	return problems
}
