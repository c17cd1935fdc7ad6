// Copyright © 2024 The ELPS authors

// Package docblock extracts tags from documentation comments attached to
// hook declarations.
package docblock

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrNotDocComment is returned when the text is not a /** */ comment.
var ErrNotDocComment = errors.New("not a doc comment")

// Tag is a single @tag of a doc comment.
type Tag struct {
	Name string // tag name without '@'

	// Type and Var are set for @param, @var and @type tags. Type is the
	// raw type string and may be empty; Var excludes the '$'.
	Type string
	Var  string

	// Content is the text following the tag name, continuation lines
	// included.
	Content string

	// Invalid marks a typed tag whose type string is malformed.
	Invalid bool
}

// Block is a parsed doc comment.
type Block struct {
	Summary    string
	Tags       []Tag
	Deprecated bool
}

var deprecatedPattern = regexp.MustCompile(`\* *@deprecated`)

// Parse parses the text of a doc comment, delimiters included.
func Parse(text string) (*Block, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/**") || !strings.HasSuffix(text, "*/") || len(text) < 5 {
		return nil, ErrNotDocComment
	}
	b := &Block{Deprecated: MarksDeprecated(text)}
	body := text[3 : len(text)-2]

	var summary []string
	var cur *Tag
	open := 0 // unclosed '{' in the current tag; nested @type lines belong to it
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "@") && open <= 0 {
			b.Tags = append(b.Tags, Tag{})
			cur = &b.Tags[len(b.Tags)-1]
			name, rest, _ := strings.Cut(line[1:], " ")
			cur.Name = strings.TrimSpace(name)
			cur.Content = strings.TrimSpace(rest)
			open = strings.Count(rest, "{") - strings.Count(rest, "}")
			continue
		}
		if cur != nil {
			cur.Content += "\n" + line
			open += strings.Count(line, "{") - strings.Count(line, "}")
			continue
		}
		if line != "" {
			summary = append(summary, line)
		}
	}
	b.Summary = strings.Join(summary, " ")
	for i := range b.Tags {
		t := &b.Tags[i]
		t.Content = strings.TrimRight(t.Content, "\n ")
		switch t.Name {
		case "param", "var", "type", "property":
			if err := splitTyped(t); err != nil {
				t.Invalid = true
			}
		}
	}
	return b, nil
}

// TagsByName returns the tags with the given name in source order.
func (b *Block) TagsByName(name string) []Tag {
	var tags []Tag
	for _, t := range b.Tags {
		if t.Name == name {
			tags = append(tags, t)
		}
	}
	return tags
}

// Params returns the @param tags in source order.
func (b *Block) Params() []Tag {
	return b.TagsByName("param")
}

// splitTyped separates "TYPE $var description" into its parts. The type
// may contain whitespace inside brackets.
func splitTyped(t *Tag) error {
	s := t.Content
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "...$") && !strings.HasPrefix(s, "&$") {
		end, err := typeEnd(s)
		if err != nil {
			return err
		}
		t.Type = s[:end]
		s = strings.TrimLeft(s[end:], " \t\n")
	}
	s = strings.TrimPrefix(s, "...")
	s = strings.TrimPrefix(s, "&")
	if strings.HasPrefix(s, "$") {
		v := s[1:]
		n := strings.IndexFunc(v, func(r rune) bool {
			return !(r == '_' || r >= '0' && r <= '9' ||
				r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= 0x80)
		})
		if n < 0 {
			n = len(v)
		}
		t.Var = v[:n]
	}
	return nil
}

// typeEnd returns the length of the type string at the start of s.
func typeEnd(s string) (int, error) {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '<', '{', '(':
			depth++
		case '>', '}', ')':
			depth--
			if depth < 0 {
				return 0, fmt.Errorf("unbalanced %q in type", c)
			}
		case ' ', '\t', '\n':
			if depth == 0 {
				return i, nil
			}
		}
	}
	if depth != 0 || quote != 0 {
		return 0, fmt.Errorf("unterminated type %q", s)
	}
	return len(s), nil
}

var nestedTypePattern = regexp.MustCompile(`@type\s+([^ ]+)\s+\$([\w-]+\??)`)

// NestedShape builds an array shape type from the @type lines nested in
// a @param description:
//
//	@param array $args {
//	    @type string $path Path.
//	    @type int    $size Optional.
//	}
//
// The content must contain exactly one '{'. Keys keep the position of
// their first occurrence and the type of their last one. The second
// return value is false when no shape can be built.
func NestedShape(content string) (string, bool) {
	if strings.Count(content, "{") != 1 {
		return "", false
	}
	matches := nestedTypePattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return "", false
	}
	types := make(map[string]string, len(matches))
	order := make(map[string]int, len(matches))
	for i, m := range matches {
		key := m[2]
		if _, ok := order[key]; !ok {
			order[key] = i
		}
		types[key] = m[1]
	}
	keys := make([]string, 0, len(types))
	for k := range types {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return order[keys[i]] < order[keys[j]] })
	entries := make([]string, len(keys))
	for i, k := range keys {
		entries[i] = k + ": " + types[k]
	}
	return "array{ " + strings.Join(entries, ", ") + " }", true
}

// MarksDeprecated reports whether the raw comment text carries a
// @deprecated tag. It does not require the comment to parse.
func MarksDeprecated(text string) bool {
	return deprecatedPattern.MatchString(text)
}
