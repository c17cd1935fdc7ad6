// Copyright © 2024 The ELPS authors

package contract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/luthersystems/wphooks/ast"
	"github.com/luthersystems/wphooks/diagnostic"
	"github.com/luthersystems/wphooks/dynname"
	"github.com/luthersystems/wphooks/hooks"
	"github.com/luthersystems/wphooks/semtype"
)

// Provider answers contract queries against a registry. It is not safe
// for concurrent use; the registry it writes to is shared by the run.
type Provider struct {
	Registry *hooks.Registry
	Resolver *dynname.Resolver
	Oracle   Oracle
	Sink     diagnostic.Sink

	// Errors are flushed as InvalidDocblock issues at the next call site.
	Errors ErrorSource

	// RequireAllParams makes every documented parameter of a declaration
	// required instead of only as many as the call passes.
	RequireAllParams bool

	// IgnoreUnknown drops the HookNotFound issue for registrations of
	// hooks that are not in the registry. Kind mismatches are still
	// reported.
	IgnoreUnknown bool

	// OnInfer is called after a signature was inferred for an
	// undocumented declaration and registered.
	OnInfer func(name string, kind hooks.Kind, types []*semtype.Union, deprecated bool)
}

func (p *Provider) report(c Call, kind diagnostic.Kind, msg string) {
	if p.Sink == nil {
		return
	}
	p.Sink.Report(diagnostic.Issue{
		Kind:         kind,
		Message:      msg,
		File:         c.File,
		Line:         c.line(),
		Suppressible: kind != diagnostic.InvalidDocblock,
	})
}

func (p *Provider) flushErrors(c Call) {
	if p.Errors == nil {
		return
	}
	for _, msg := range p.Errors.TakeErrors() {
		p.report(c, diagnostic.InvalidDocblock, msg)
	}
}

func (p *Provider) typeOf(n *ast.Node) *semtype.Union {
	if p.Oracle == nil || n == nil {
		return nil
	}
	return p.Oracle.TypeOf(n)
}

// hookName resolves the hook name argument of c. A literal string is used
// as is. Otherwise a single string literal type from the oracle is
// preferred when it names a known hook, then the templated name of the
// expression. When both exist and only the templated name is known, the
// literal name is backfilled with its data. ok is false when no name can
// be determined.
func (p *Provider) hookName(c Call) (string, bool, error) {
	arg := c.arg(0, "hook_name")
	if arg == nil {
		return "", false, nil
	}
	if arg.Kind == ast.String {
		return arg.Value, true, nil
	}
	literal, hasLiteral := p.typeOf(arg).SingleStringLiteral()
	if hasLiteral {
		if _, known := p.Registry.Lookup(literal); known {
			return literal, true, nil
		}
	}
	templated, ok, err := dynname.Name(arg)
	if err != nil {
		return "", false, err
	}
	if !hasLiteral {
		return templated, ok, nil
	}
	if ok {
		if h, known := p.Registry.Lookup(templated); known {
			p.Registry.Alias(literal, h)
		}
	}
	return literal, true, nil
}

// find looks name up, falling back to dynamic resolution. mismatch is set
// when a dynamic pattern of the same shape has the other polarity.
func (p *Provider) find(name string, isAction bool) (h *hooks.Hook, mismatch bool) {
	if h, ok := p.Registry.Lookup(name); ok {
		return h, false
	}
	if p.Resolver == nil {
		return nil, false
	}
	h, err := p.Resolver.Resolve(name, isAction)
	if errors.Is(err, dynname.ErrKindMismatch) {
		return nil, true
	}
	return h, false
}

func kindMismatchMessage(name string, isAction bool) string {
	if isAction {
		return fmt.Sprintf("Hook %q is a filter not an action", name)
	}
	return fmt.Sprintf("Hook %q is an action not a filter", name)
}

// Params returns the contract for call c. A nil contract with a nil error
// means the host should use its own signature for the function.
func (p *Provider) Params(c Call) (*Contract, error) {
	fn := c.Function
	if !Claims(fn) || unsupportedVariants[fn] {
		return nil, nil
	}
	p.flushErrors(c)

	isAction := fn == fnAddAction
	isInvoke := fn == fnDoAction || fn == fnApply
	isActionSide := isAction || fn == fnDoAction || actionUtilities[fn]
	isUtility := actionUtilities[fn] || filterUtilities[fn]

	name, ok, err := p.hookName(c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	hook, mismatch := p.find(name, isActionSide)
	if hook == nil {
		if isInvoke {
			// Declaring a hook creates it; nothing to check against.
			return &Contract{}, nil
		}
		if mismatch {
			p.report(c, diagnostic.HookNotFound, kindMismatchMessage(name, isActionSide))
		} else if !p.IgnoreUnknown {
			p.report(c, diagnostic.HookNotFound, fmt.Sprintf("Hook %q not found", name))
		}
		return &Contract{}, nil
	}

	if (isActionSide && !hook.Kind.IsAction()) || (!isActionSide && !hook.Kind.IsFilter()) {
		p.report(c, diagnostic.HookNotFound, kindMismatchMessage(name, isActionSide))
		return &Contract{}, nil
	}
	if !isInvoke && hook.Deprecated {
		p.report(c, diagnostic.DeprecatedHook, fmt.Sprintf("Hook %q is deprecated", name))
	}
	if isUtility {
		return nil, nil
	}

	numArgs, explicit := len(c.Node.Args)-1, false
	if !isInvoke {
		var known bool
		numArgs, explicit, known = p.acceptedArgs(c)
		if !known {
			// Offer every documented argument; required ones stay capped
			// at the hook's minimum below.
			numArgs = len(hook.Types)
		}
	}

	types := hook.Types
	if len(types) == 0 && numArgs != 0 {
		switch {
		case isInvoke:
			types = mixedList(numArgs)
		case isAction:
			if !explicit {
				p.report(c, diagnostic.HookInvalidArgs, fmt.Sprintf(
					"Hook %q does not accept any args, but the default number of args of add_action is 1. Please pass 0 as 4th argument", name))
			}
		default:
			return nil, fmt.Errorf("hook %q: %w", name, ErrImpossibleFilter)
		}
	}

	maxParams := len(types)
	required := numArgs
	if p.RequireAllParams && isInvoke {
		required = maxParams
	}
	if !isInvoke {
		if required < len(types) {
			types = types[:required]
		}
		if required > hook.MinimumInvokeArgs {
			required = hook.MinimumInvokeArgs
		}
	}
	hookParams := make([]Param, len(types))
	for i, t := range types {
		hookParams[i] = Param{Name: hook.ParamName(i), Type: t, Optional: i >= required}
	}

	nameParam := Param{Name: "hook_name", Type: semtype.NonEmptyString()}
	if isInvoke {
		return &Contract{Params: append([]Param{nameParam}, hookParams...)}, nil
	}

	cb := &Signature{Params: hookParams}
	minArgs := 0
	if isAction {
		// void accepts any returned value; actions discard it.
		cb.Return = semtype.VoidType()
	} else {
		minArgs = 1
		cb.Return = semtype.MixedType()
		if len(hook.Types) > 0 {
			cb.Return = hook.Types[0]
			if cb.Return.IsBool() {
				// __return_true and friends ignore the filtered value.
				minArgs = 0
			}
		}
	}
	argsType := semtype.IntRange(strconv.Itoa(minArgs), strconv.Itoa(maxParams))
	if maxParams == 0 || minArgs >= maxParams {
		argsType = semtype.LiteralIntType(strconv.Itoa(maxParams))
	}
	return &Contract{
		Params: []Param{
			nameParam,
			{Name: "callback", Type: semtype.CallableType()},
			{Name: "priority", Type: semtype.IntType(), Optional: true},
			{Name: "accepted_args", Type: argsType, Optional: true},
		},
		Callback: cb,
	}, nil
}

// acceptedArgs returns the accepted argument count of a registration and
// whether it was passed explicitly. known is false when the argument was
// passed but its value cannot be determined.
func (p *Provider) acceptedArgs(c Call) (count int, explicit, known bool) {
	var arg *ast.Node
	for _, a := range c.Node.Args {
		if a.Name == "accepted_args" {
			arg = a.Value
		}
	}
	if arg == nil && len(c.Node.Args) > 3 && c.Node.Args[3].Name == "" {
		arg = c.Node.Args[3].Value
	}
	if arg == nil {
		return 1, false, true
	}
	if n, ok := intLiteral(arg); ok {
		return n, true, true
	}
	if v, ok := p.typeOf(arg).SingleIntLiteral(); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n, true, true
		}
	}
	return 0, true, false
}

func intLiteral(n *ast.Node) (int, bool) {
	if n == nil || n.Kind != ast.Int {
		return 0, false
	}
	v, err := strconv.Atoi(strings.ReplaceAll(n.Value, "_", ""))
	if err != nil {
		return 0, false
	}
	return max(0, v), true
}

func mixedList(n int) []*semtype.Union {
	out := make([]*semtype.Union, n)
	for i := range out {
		out[i] = semtype.MixedType()
	}
	return out
}
