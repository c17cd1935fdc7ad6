// Copyright © 2024 The ELPS authors

package contract

import (
	"fmt"
	"strings"

	"github.com/luthersystems/wphooks/diagnostic"
	"github.com/luthersystems/wphooks/hooks"
	"github.com/luthersystems/wphooks/semtype"
)

// ReturnType returns the type of call c. ok is false when the host should
// infer the type itself.
func (p *Provider) ReturnType(c Call) (t *semtype.Union, ok bool, err error) {
	switch fn := c.Function; {
	case fn == fnAddAction || fn == fnAddFilter:
		return semtype.TrueType(), true, nil
	case strings.HasPrefix(fn, "do_action") && declarationFunctions[fn]:
		return semtype.VoidType(), true, nil
	case fn != fnApply:
		return nil, false, nil
	}

	value := c.arg(1, "value")
	name, found, err := p.hookName(c)
	if err != nil {
		return nil, false, err
	}
	if !found {
		t = p.typeOf(value)
		return t, t != nil, nil
	}
	hook, _ := p.find(name, false)
	if hook != nil && !hook.Kind.IsFilter() {
		// An action or a marker shares the name; apply_filters yields nothing.
		return semtype.NullType(), true, nil
	}
	if hook != nil && len(hook.Types) > 0 {
		return hook.Types[0], true, nil
	}
	t = p.typeOf(value)
	return t, t != nil, nil
}

// AfterCall learns from a declaration call after the host analyzed it.
// A _deprecated_hook marker marks the hook deprecated. A known deprecated
// hook fired through a non-deprecated function is reported. An unknown
// hook is registered with the generalized types of the passed values.
func (p *Provider) AfterCall(c Call) error {
	fn := c.Function
	var kind hooks.Kind
	switch {
	case declarationFunctions[fn] && strings.HasPrefix(fn, "apply_filters"):
		kind = hooks.KindFilter
	case declarationFunctions[fn]:
		kind = hooks.KindAction
	case strings.HasSuffix(fn, "_deprecated_hook"):
	default:
		return nil
	}
	if len(c.Node.Args) == 0 {
		return nil
	}
	name, ok, err := p.hookName(c)
	if err != nil || !ok {
		return err
	}

	if kind == hooks.KindUnknown {
		p.Registry.Register(name, hooks.KindUnknown, nil, true)
		return nil
	}

	deprecatedVariant := strings.HasSuffix(fn, "_deprecated")
	if hook, known := p.Registry.Lookup(name); known {
		if !deprecatedVariant && hook.Deprecated {
			base, suggestion := "action", "do_action_deprecated"
			if kind == hooks.KindFilter {
				base, suggestion = "filter", "apply_filters_deprecated"
			}
			p.report(c, diagnostic.DeprecatedHook, fmt.Sprintf(
				"Hook %q is deprecated. If you still need this, check if there is a replacement for it. "+
					"Otherwise, if this is a 3rd party %s, you can remove it. If it is your own/custom, "+
					"please use %q here instead and add an \"@deprecated new\" comment in the phpdoc",
				name, base, suggestion))
		}
		return nil
	}

	types := make([]*semtype.Union, 0, len(c.Node.Args)-1)
	for _, a := range c.Node.Args[1:] {
		t := p.typeOf(a.Value)
		if t == nil {
			types = append(types, semtype.MixedType())
			continue
		}
		types = append(types, t.Generalize())
	}
	p.Registry.Register(name, kind, types, deprecatedVariant)
	if p.OnInfer != nil {
		p.OnInfer(name, kind, types, deprecatedVariant)
	}
	return nil
}
