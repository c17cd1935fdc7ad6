// Copyright © 2024 The ELPS authors

package scanner

import (
	"strings"

	"github.com/luthersystems/wphooks/ast"
	"github.com/luthersystems/wphooks/semtype"
)

// Context is the namespace and import-alias context documented types are
// resolved in.
type Context struct {
	Namespace string
	Uses      map[string]string // lowercase alias -> fully qualified name

	maxLine int
}

// Observe updates the context for node n and reports whether n was a
// namespace or use statement. The context is reset when the line number
// moves backwards, which happens when one traversal spans several files.
func (c *Context) Observe(n *ast.Node) bool {
	if n.Line > 0 {
		if n.Line < c.maxLine && (c.Namespace != "" || len(c.Uses) > 0) {
			c.reset("")
		}
		c.maxLine = n.Line
	}
	switch n.Kind {
	case ast.Namespace:
		c.reset(n.Name)
	case ast.Use:
		for _, u := range n.Uses {
			c.add(u, false)
		}
	case ast.GroupUse:
		for _, u := range n.Uses {
			c.add(u, true)
		}
	default:
		return false
	}
	return true
}

func (c *Context) reset(ns string) {
	c.Namespace = ns
	c.Uses = nil
}

func (c *Context) add(u ast.UseItem, override bool) {
	fqcn := strings.TrimPrefix(u.Name, `\`)
	if fqcn == "" {
		return
	}
	if rest, ok := strings.CutPrefix(fqcn, `namespace\`); ok {
		fqcn = c.Namespace + `\` + rest
	}
	alias := u.Alias
	if alias == "" {
		alias = fqcn
		if i := strings.LastIndexByte(fqcn, '\\'); i >= 0 {
			alias = fqcn[i+1:]
		}
	}
	alias = strings.ToLower(alias)
	if c.Uses == nil {
		c.Uses = make(map[string]string)
	}
	if _, exists := c.Uses[alias]; exists && !override {
		return
	}
	c.Uses[alias] = fqcn
}

// Qualify resolves the class names of u in this context.
func (c *Context) Qualify(u *semtype.Union) *semtype.Union {
	if c.Namespace == "" && len(c.Uses) == 0 {
		return u
	}
	return semtype.Qualify(u, c.Namespace, c.Uses)
}
