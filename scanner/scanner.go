// Copyright © 2024 The ELPS authors

// Package scanner finds hook declarations in a file: do_action and
// apply_filters calls and their variants, events scheduled through
// WP-Cron or the Action Scheduler, and _deprecated_hook markers.
//
// Results are returned as a batch instead of being written to a registry
// so a traversal never observes its own registrations; the caller merges
// them afterwards.
package scanner

import (
	"strings"

	"github.com/luthersystems/wphooks/ast"
	"github.com/luthersystems/wphooks/astutil"
	"github.com/luthersystems/wphooks/docblock"
	"github.com/luthersystems/wphooks/dynname"
	"github.com/luthersystems/wphooks/hooks"
	"github.com/luthersystems/wphooks/semtype"
)

// Found is one hook declaration found in a file.
type Found struct {
	Name       string
	Kind       hooks.Kind
	Types      []*semtype.Union
	Deprecated bool
	Line       int
}

var filterFunctions = map[string]bool{
	"apply_filters":            true,
	"apply_filters_ref_array":  true,
	"apply_filters_deprecated": true,
}

var actionFunctions = map[string]bool{
	"do_action":            true,
	"do_action_ref_array":  true,
	"do_action_deprecated": true,
}

// DefaultSchedulers maps event scheduling functions to the position of
// their hook name argument. The event arguments array follows the name.
var DefaultSchedulers = map[string]int{
	"wp_schedule_event":            2,
	"as_schedule_recurring_action": 2,
	"as_schedule_cron_action":      2,
	"wp_schedule_single_event":     1,
	"as_schedule_single_action":    1,
	"as_enqueue_async_action":      0,
}

// Scanner extracts hook declarations from syntax trees.
type Scanner struct {
	// Schedulers overrides DefaultSchedulers when non-nil.
	Schedulers map[string]int
}

// New returns a scanner. extra scheduler functions are added to the
// defaults and may override their hook positions.
func New(extra map[string]int) *Scanner {
	s := make(map[string]int, len(DefaultSchedulers)+len(extra))
	for k, v := range DefaultSchedulers {
		s[k] = v
	}
	for k, v := range extra {
		s[strings.ToLower(k)] = v
	}
	return &Scanner{Schedulers: s}
}

type visit struct {
	s     *Scanner
	docs  DocState
	ctx   Context
	found []Found
}

// Scan walks file in pre-order and returns the hook declarations found.
// An *dynname.UnsupportedError stops the walk; the declarations found
// before it are returned along with the error.
func (s *Scanner) Scan(file *ast.File) ([]Found, error) {
	v := &visit{s: s}
	err := astutil.Inspect(file.Nodes, v.node)
	return v.found, err
}

func (v *visit) node(n *ast.Node) error {
	if v.ctx.Observe(n) {
		return nil
	}
	v.docs.Observe(n)
	name := astutil.CallName(n)
	if name == "" {
		return nil
	}
	return v.call(n, name)
}

func (v *visit) schedulers() map[string]int {
	if v.s.Schedulers != nil {
		return v.s.Schedulers
	}
	return DefaultSchedulers
}

func (v *visit) call(n *ast.Node, fn string) error {
	var kind hooks.Kind
	hookIndex := 0
	scheduled := false
	switch {
	case filterFunctions[fn]:
		kind = hooks.KindFilter
	case actionFunctions[fn]:
		kind = hooks.KindAction
	case strings.HasSuffix(fn, "_deprecated_hook"):
		name, ok, err := v.hookName(n, 0)
		if err != nil || !ok {
			return err
		}
		v.found = append(v.found, Found{Name: name, Kind: hooks.KindUnknown, Deprecated: true, Line: n.Line})
		return nil
	default:
		i, ok := v.schedulers()[fn]
		if !ok {
			return nil
		}
		kind, hookIndex, scheduled = hooks.KindAction, i, true
	}

	name, ok, err := v.hookName(n, hookIndex)
	if err != nil || !ok {
		return err
	}

	var types []*semtype.Union
	numArgs := 0
	deprecated := false
	docCountWins := false
	if scheduled {
		switch args := astutil.ArgValue(n, hookIndex+1, "args"); {
		case args == nil:
		case args.Kind == ast.Array:
			numArgs = len(args.Items)
			for _, item := range args.Items {
				types = append(types, coarseType(item.Expr))
			}
		case args.Kind == ast.Variable:
			// Any number of arguments; prefer the documented count.
			numArgs = 1
			types = []*semtype.Union{semtype.MixedType()}
			docCountWins = true
		}
	} else {
		numArgs = len(n.Args) - 1
		deprecated = strings.HasSuffix(fn, "_deprecated")
	}

	doc, hasDoc := v.docs.Take()
	var block *docblock.Block
	if hasDoc {
		if !deprecated && docblock.MarksDeprecated(doc) {
			deprecated = true
		}
		block, _ = docblock.Parse(doc)
	}
	if block == nil {
		if numArgs > 0 && len(types) == 0 {
			types = mixedList(numArgs)
		}
		v.found = append(v.found, Found{Name: name, Kind: kind, Types: types, Deprecated: deprecated, Line: n.Line})
		return nil
	}

	params := block.Params()
	if docCountWins && len(params) > numArgs {
		numArgs = len(params)
	}
	types = types[:0:0]
	for i, p := range params {
		if i >= numArgs {
			break
		}
		types = append(types, v.paramType(p))
	}
	for len(types) < numArgs {
		types = append(types, semtype.MixedType())
	}
	v.found = append(v.found, Found{Name: name, Kind: kind, Types: types, Deprecated: deprecated, Line: n.Line})
	return nil
}

// hookName resolves the hook name argument at position i. ok is false
// when the call should be skipped; the pending comment is dropped then.
func (v *visit) hookName(n *ast.Node, i int) (string, bool, error) {
	arg := astutil.ArgValue(n, i, "hook_name")
	if arg == nil {
		arg = astutil.ArgValue(n, i, "hook")
	}
	name, ok, err := dynname.Name(arg)
	if err != nil {
		return "", false, err
	}
	if !ok || name == "" {
		v.docs.Clear()
		return "", false, nil
	}
	return name, true, nil
}

func (v *visit) paramType(p docblock.Tag) *semtype.Union {
	if p.Invalid || p.Type == "" {
		return semtype.MixedType()
	}
	u, err := semtype.Parse(p.Type)
	if err != nil {
		return semtype.MixedType()
	}
	return v.ctx.Qualify(u)
}

func mixedList(n int) []*semtype.Union {
	out := make([]*semtype.Union, n)
	for i := range out {
		out[i] = semtype.MixedType()
	}
	return out
}

// coarseType is the type of a scheduled event argument. Keys are ignored;
// WP passes the values positionally.
func coarseType(n *ast.Node) *semtype.Union {
	if n == nil {
		return semtype.MixedType()
	}
	switch n.Kind {
	case ast.String:
		return semtype.StringType()
	case ast.Array:
		return semtype.ArrayType()
	case ast.Int:
		return semtype.IntType()
	case ast.Float:
		return semtype.FloatType()
	case ast.ConstFetch:
		switch strings.ToLower(n.Name) {
		case "true", "false":
			return semtype.BoolType()
		}
	case ast.Cast:
		switch n.CastTo {
		case "string":
			return semtype.StringType()
		case "array":
			return semtype.ArrayType()
		case "int":
			return semtype.IntType()
		case "float":
			return semtype.FloatType()
		case "bool":
			return semtype.BoolType()
		case "object":
			return semtype.ObjectType()
		}
	}
	return semtype.MixedType()
}
