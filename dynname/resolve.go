// Copyright © 2024 The ELPS authors

package dynname

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/luthersystems/wphooks/hooks"
)

// Canonical is the placeholder every interpolated segment normalizes to.
const Canonical = "{$abc}"

// DefaultCharClass is the set of characters an interpolated segment of a
// concrete name may consist of. It covers property access, method calls,
// array indexing with quoted keys and the dots and slashes found in
// file-derived hook names such as load-edit.php.
const DefaultCharClass = `\w:>.\[\]'$/-`

// DefaultCacheSize bounds the compiled matcher cache.
const DefaultCacheSize = 512

var (
	// ErrNotFound is returned when no dynamic pattern matches.
	ErrNotFound = errors.New("no matching dynamic hook")

	// ErrKindMismatch is returned when the name has exactly the shape of
	// a pattern of the other polarity.
	ErrKindMismatch = errors.New("dynamic hook kind mismatch")
)

// Normalize replaces every balanced {...} group of name with Canonical.
func Normalize(name string) string {
	if !strings.Contains(name, "{") {
		return name
	}
	var b strings.Builder
	depth := 0
	start := 0
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				b.WriteByte('}')
				continue
			}
			depth--
			if depth == 0 {
				b.WriteString(Canonical)
			}
			continue
		}
		if depth == 0 {
			b.WriteByte(name[i])
		}
	}
	if depth > 0 {
		// Unbalanced tail; keep it verbatim.
		b.WriteString(name[start:])
	}
	return b.String()
}

// tooGeneric reports whether a normalized name carries no literal text
// besides placeholders and underscores.
func tooGeneric(normalized string) bool {
	return strings.Trim(strings.ReplaceAll(normalized, Canonical, ""), "_") == ""
}

// Resolver matches names against the dynamic patterns of a registry.
type Resolver struct {
	Registry *hooks.Registry

	// CharClass is the regexp character class body used for placeholder
	// segments. DefaultCharClass is used when empty.
	CharClass string

	cache *lru.Cache[string, *regexp.Regexp]
}

// NewResolver returns a resolver over r. charClass may be empty.
func NewResolver(r *hooks.Registry, charClass string) (*Resolver, error) {
	if charClass == "" {
		charClass = DefaultCharClass
	}
	if _, err := regexp.Compile("[" + charClass + "]"); err != nil {
		return nil, fmt.Errorf("invalid dynamic character class %q: %w", charClass, err)
	}
	cache, err := lru.New[string, *regexp.Regexp](DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	return &Resolver{Registry: r, CharClass: charClass, cache: cache}, nil
}

type candidate struct {
	name       string
	normalized string
}

// Resolve finds the registered dynamic pattern name stands for. On a
// match the name is memoized in the registry so later lookups succeed
// directly; the memoized record is returned.
func (r *Resolver) Resolve(name string, isAction bool) (*hooks.Hook, error) {
	normalized := Normalize(name)
	if tooGeneric(normalized) {
		return nil, ErrNotFound
	}

	var candidates []candidate
	for _, n := range r.Registry.DynamicNames() {
		candidates = append(candidates, candidate{name: n, normalized: Normalize(n)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i].normalized) > len(candidates[j].normalized)
	})

	for _, c := range candidates {
		if c.normalized != normalized {
			continue
		}
		h, _ := r.Registry.Lookup(c.name)
		if !polarityMatches(h.Kind, isAction) {
			return nil, ErrKindMismatch
		}
		return r.Registry.Alias(name, h), nil
	}

	for _, c := range candidates {
		h, _ := r.Registry.Lookup(c.name)
		if !polarityMatches(h.Kind, isAction) || tooGeneric(c.normalized) {
			continue
		}
		re, err := r.matcher(c.normalized)
		if err != nil {
			continue
		}
		if re.MatchString(name) {
			return r.Registry.Alias(name, h), nil
		}
	}
	return nil, ErrNotFound
}

func polarityMatches(k hooks.Kind, isAction bool) bool {
	if isAction {
		return k.IsAction()
	}
	return k.IsFilter()
}

// matcher compiles the anchored regexp for a normalized pattern. Each
// placeholder matches one segment of the character class, optionally
// wrapped in a placeholder of its own.
func (r *Resolver) matcher(normalized string) (*regexp.Regexp, error) {
	if r.cache != nil {
		if re, ok := r.cache.Get(normalized); ok {
			return re, nil
		}
	}
	charClass := r.CharClass
	if charClass == "" {
		charClass = DefaultCharClass
	}
	segment := `(\{\$)?[` + charClass + `]+\}?`
	expr := strings.ReplaceAll(regexp.QuoteMeta(normalized), regexp.QuoteMeta(Canonical), segment)
	re, err := regexp.Compile("^" + expr + "$")
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		r.cache.Add(normalized, re)
	}
	return re, nil
}
