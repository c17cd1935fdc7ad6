// Copyright © 2024 The ELPS authors

// Package contract computes what the host analyzer should check hook API
// call sites against: the parameter list of add_action, add_filter,
// do_action and apply_filters calls, the type of apply_filters
// expressions, and the signature callbacks subscribed to a hook must
// have. It also infers signatures for undocumented declarations.
package contract

import (
	"errors"

	"github.com/luthersystems/wphooks/ast"
	"github.com/luthersystems/wphooks/astutil"
	"github.com/luthersystems/wphooks/semtype"
)

// ErrImpossibleFilter is returned for add_filter on a hook that has no
// parameter types. Loading always gives filters at least one type, so
// this indicates a registry bug.
var ErrImpossibleFilter = errors.New("filter hook without parameter types")

// Param is one expected parameter.
type Param struct {
	Name     string
	Type     *semtype.Union
	Optional bool
}

// Signature is the shape of a callable.
type Signature struct {
	Params []Param
	Return *semtype.Union
}

// Contract is the parameter list a call site is checked against. Callback
// is set for registrations and describes the callback the hook invokes.
type Contract struct {
	Params   []Param
	Callback *Signature
}

// Oracle supplies the types of expressions. TypeOf returns nil when the
// type is unknown.
type Oracle interface {
	TypeOf(expr *ast.Node) *semtype.Union
}

// ErrorSource supplies soft errors to report at the next call site.
type ErrorSource interface {
	TakeErrors() []string
}

// Call is a call site of a hook API function.
type Call struct {
	Function string // lowercase function name
	Node     *ast.Node
	File     string
}

// NewCall describes the call expression n in file. ok is false for
// anything but a statically named function call.
func NewCall(file string, n *ast.Node) (Call, bool) {
	fn := astutil.CallName(n)
	if fn == "" {
		return Call{}, false
	}
	return Call{Function: fn, Node: n, File: file}, true
}

func (c Call) line() int {
	return astutil.LineOf(c.Node)
}

func (c Call) arg(i int, name string) *ast.Node {
	return astutil.ArgValue(c.Node, i, name)
}

const (
	fnAddAction = "add_action"
	fnAddFilter = "add_filter"
	fnDoAction  = "do_action"
	fnApply     = "apply_filters"
)

var declarationFunctions = map[string]bool{
	"do_action":                true,
	"do_action_ref_array":      true,
	"do_action_deprecated":     true,
	"apply_filters":            true,
	"apply_filters_ref_array":  true,
	"apply_filters_deprecated": true,
}

var actionUtilities = map[string]bool{
	"did_action":         true,
	"doing_action":       true,
	"has_action":         true,
	"remove_action":      true,
	"remove_all_actions": true,
}

var filterUtilities = map[string]bool{
	"did_filter":         true,
	"doing_filter":       true,
	"has_filter":         true,
	"remove_filter":      true,
	"remove_all_filters": true,
}

// unsupportedVariants leave their typing to the host.
var unsupportedVariants = map[string]bool{
	"do_action_ref_array":      true,
	"do_action_deprecated":     true,
	"apply_filters_ref_array":  true,
	"apply_filters_deprecated": true,
}

// FunctionIDs returns the functions whose call sites the provider
// handles, in a fixed order.
func FunctionIDs() []string {
	return []string{
		"add_action",
		"add_filter",
		"do_action",
		"do_action_ref_array",
		"do_action_deprecated",
		"apply_filters",
		"apply_filters_ref_array",
		"apply_filters_deprecated",
		"did_action",
		"did_filter",
		"doing_action",
		"doing_filter",
		"has_action",
		"has_filter",
		"remove_action",
		"remove_filter",
		"remove_all_actions",
		"remove_all_filters",
	}
}

// Claims reports whether fn is one of FunctionIDs.
func Claims(fn string) bool {
	return fn == fnAddAction || fn == fnAddFilter || declarationFunctions[fn] ||
		actionUtilities[fn] || filterUtilities[fn]
}
