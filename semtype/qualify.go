// Copyright © 2024 The ELPS authors

package semtype

import "strings"

var unqualifiable = map[string]bool{
	"self":   true,
	"static": true,
	"parent": true,
	"$this":  true,
}

// Qualify resolves the class names in u against a namespace and a set of
// import aliases. Keys of uses are lowercase alias names and values are
// fully qualified names without a leading backslash. Names that are
// already fully qualified lose their leading backslash. Qualify returns a
// new union and leaves u unchanged.
func Qualify(u *Union, ns string, uses map[string]string) *Union {
	if u == nil {
		return nil
	}
	out := &Union{Types: make([]Atomic, len(u.Types))}
	for i, a := range u.Types {
		out.Types[i] = qualifyAtomic(a, ns, uses)
	}
	return out
}

func qualifyAtomic(a Atomic, ns string, uses map[string]string) Atomic {
	switch a.Kind {
	case Named:
		if !strings.Contains(a.Name, "&") {
			a.Name = QualifyName(a.Name, ns, uses)
		}
	case Shape:
		fields := make([]Field, len(a.Fields))
		for i, f := range a.Fields {
			f.Type = Qualify(f.Type, ns, uses)
			fields[i] = f
		}
		a.Fields = fields
	}
	a.Key = Qualify(a.Key, ns, uses)
	a.Value = Qualify(a.Value, ns, uses)
	if a.Kind == Named && len(a.Params) > 0 {
		params := make([]*Union, len(a.Params))
		for i, p := range a.Params {
			params[i] = Qualify(p, ns, uses)
		}
		a.Params = params
	}
	return a
}

// QualifyName resolves a single class name.
func QualifyName(name, ns string, uses map[string]string) string {
	if strings.HasPrefix(name, `\`) {
		return name[1:]
	}
	if unqualifiable[strings.ToLower(name)] {
		return name
	}
	head, rest, nested := strings.Cut(name, `\`)
	if full, ok := uses[strings.ToLower(head)]; ok {
		if nested {
			return full + `\` + rest
		}
		return full
	}
	if ns == "" {
		return name
	}
	return ns + `\` + name
}
