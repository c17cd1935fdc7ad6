// Copyright © 2024 The ELPS authors

// Package hooks holds the hook knowledge base: one merged signature
// record per hook name, built up from the bundled corpus, from scans of
// analyzed files and from inference at undocumented call sites.
package hooks

import (
	"sort"
	"strconv"
	"strings"

	"github.com/luthersystems/wphooks/semtype"
)

// Placeholder marks the start of an interpolated segment in a hook name.
const Placeholder = "{$"

// Hook is the merged signature of one hook name.
type Hook struct {
	Name string
	Kind Kind

	// Types holds one type per argument after the hook name. It never
	// has gaps; undocumented positions hold mixed.
	Types []*semtype.Union

	Deprecated bool

	// MinimumInvokeArgs is the smallest argument count the hook is known
	// to be fired with.
	MinimumInvokeArgs int

	// Aliases lists other names that share this record's data.
	Aliases []string

	// ParamNames holds the documented variable name of each argument,
	// without the leading $. Entries may be empty.
	ParamNames []string
}

// ParamName returns the documented name of argument i, or paramN (1-based)
// when it is undocumented.
func (h *Hook) ParamName(i int) string {
	if i < len(h.ParamNames) && h.ParamNames[i] != "" {
		return h.ParamNames[i]
	}
	return "param" + strconv.Itoa(i+1)
}

// IsDynamic reports whether the hook name contains a placeholder.
func (h *Hook) IsDynamic() bool {
	return strings.Contains(h.Name, Placeholder)
}

func (h *Hook) clone(name string) *Hook {
	c := *h
	c.Name = name
	c.Types = append([]*semtype.Union(nil), h.Types...)
	c.Aliases = append([]string(nil), h.Aliases...)
	return &c
}

// Registry maps hook names to their merged records. It is scoped to one
// analysis run and is not safe for concurrent use.
type Registry struct {
	hooks map[string]*Hook
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{hooks: make(map[string]*Hook)}
}

// Len returns the number of records, aliases included.
func (r *Registry) Len() int {
	return len(r.hooks)
}

// Lookup returns the record for name. The returned record must not be
// modified.
func (r *Registry) Lookup(name string) (*Hook, bool) {
	h, ok := r.hooks[name]
	return h, ok
}

// Names returns every registered name in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.hooks))
	for name := range r.hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DynamicNames returns the sorted names that contain a placeholder.
func (r *Registry) DynamicNames() []string {
	var names []string
	for name := range r.hooks {
		if strings.Contains(name, Placeholder) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Register merges a declaration of name into the registry. A nil entry in
// types stands for an unusable (missing or malformed) type; its position
// is kept and back-filled with mixed. Register never rejects input.
func (r *Registry) Register(name string, kind Kind, types []*semtype.Union, deprecated bool) {
	incoming := make(map[int]*semtype.Union, len(types))
	for i, t := range types {
		if t != nil {
			incoming[i] = t
		}
	}
	minArgs := len(incoming)

	existing, seen := r.hooks[name]
	if seen && minArgs == 0 {
		// A loosely typed late declaration, such as a deprecation marker.
		existing.Deprecated = existing.Deprecated || deprecated
		if kind != KindUnknown && kind != KindFilter && existing.MinimumInvokeArgs != 0 {
			existing.MinimumInvokeArgs = 0
		}
		return
	}

	if seen {
		if existing.Kind != KindUnknown {
			minArgs = min(existing.MinimumInvokeArgs, minArgs)
		}
		for i := 0; i < len(types); i++ {
			t, ok := incoming[i]
			if !ok {
				continue
			}
			if i >= len(existing.Types) {
				break
			}
			if t.IsSingle() && t.HasMixed() {
				incoming[i] = existing.Types[i]
			}
		}
		for i, t := range existing.Types {
			if _, ok := incoming[i]; !ok {
				incoming[i] = t
			}
		}
		deprecated = deprecated || existing.Deprecated
	}

	if minArgs == 0 && kind == KindFilter {
		minArgs = 1
	}

	h := &Hook{
		Name:              name,
		Kind:              kind,
		Types:             fill(incoming),
		Deprecated:        deprecated,
		MinimumInvokeArgs: minArgs,
	}
	if seen {
		h.Aliases = existing.Aliases
		h.ParamNames = existing.ParamNames
	}
	r.hooks[name] = h
}

// fill orders types by position and back-fills missing positions with
// mixed.
func fill(types map[int]*semtype.Union) []*semtype.Union {
	n := 0
	for i := range types {
		if i+1 > n {
			n = i + 1
		}
	}
	out := make([]*semtype.Union, n)
	for i := range out {
		if t, ok := types[i]; ok {
			out[i] = t
		} else {
			out[i] = semtype.MixedType()
		}
	}
	return out
}

// Alias stores a copy of hook under name so later lookups of name succeed
// directly. It is used to memoize dynamic name resolution. An existing
// record for name is replaced.
func (r *Registry) Alias(name string, hook *Hook) *Hook {
	if name == hook.Name {
		return hook
	}
	c := hook.clone(name)
	c.Aliases = nil
	r.hooks[name] = c
	if orig, ok := r.hooks[hook.Name]; ok && orig == hook {
		orig.Aliases = appendUnique(orig.Aliases, name)
	}
	return c
}

// SetAliases records names as aliases of the hook registered under name.
func (r *Registry) SetAliases(name string, aliases []string) {
	h, ok := r.hooks[name]
	if !ok {
		return
	}
	for _, a := range aliases {
		if a != name {
			h.Aliases = appendUnique(h.Aliases, a)
		}
	}
}

// SetParamNames records the documented argument names of the hook
// registered under name. Leading $, & and ... markers are removed. A list
// without any name leaves the record unchanged.
func (r *Registry) SetParamNames(name string, names []string) {
	h, ok := r.hooks[name]
	if !ok || strings.Join(names, "") == "" {
		return
	}
	h.ParamNames = make([]string, len(names))
	for i, n := range names {
		h.ParamNames[i] = strings.TrimLeft(n, ".&$")
	}
}

func appendUnique(list []string, s string) []string {
	for _, x := range list {
		if x == s {
			return list
		}
	}
	return append(list, s)
}
