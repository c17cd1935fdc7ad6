// Copyright © 2024 The ELPS authors

/*
The type grammar accepted by Parse:

	union   := inter ('|' inter)*
	inter   := atom ('&' atom)*
	atom    := '?' atom | base '[]'*
	base    := callsig | shape | generic | '(' union ')' | literal | name
	callsig := ('callable'|'Closure') '(' [param (',' param)*] ')' [':' atom]
	param   := union ('...' | '=' | '$' ident)*
	shape   := ('array'|'list'|'object') '{' [field (',' field)* ','*] '}'
	field   := key ':' union | key '?:' union | union
	generic := name '<' union (',' union)* '>'
	literal := float | int | quoted
	name    := '\'? ident ('\' ident)*
*/

package semtype

import (
	"fmt"
	"strings"

	parsec "github.com/prataprc/goparsec"
)

// Parse parses a docblock type string.
func Parse(text string) (*Union, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty type")
	}
	var s parsec.Scanner = parsec.NewScanner([]byte(text))
	root, s := typeParser(s)
	_, s = s.SkipWS()
	if root == nil || !s.Endof() {
		return nil, fmt.Errorf("invalid type %q at offset %d", text, s.GetCursor())
	}
	u, ok := root.(*Union)
	if !ok {
		return nil, fmt.Errorf("invalid type %q", text)
	}
	return u, nil
}

// MustParse is like Parse but panics on error. It is intended for
// package-level fixtures and tests.
func MustParse(text string) *Union {
	u, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return u
}

var typeParser = newTypeParser()

func newTypeParser() parsec.Parser {
	pipe := parsec.Atom("|", "PIPE")
	amp := parsec.Atom("&", "AMP")
	comma := parsec.Atom(",", "COMMA")
	openBrace := parsec.Atom("{", "OPENBRACE")
	closeBrace := parsec.Atom("}", "CLOSEBRACE")
	openAngle := parsec.Atom("<", "OPENANGLE")
	closeAngle := parsec.Atom(">", "CLOSEANGLE")
	openParen := parsec.Atom("(", "OPENPAREN")
	closeParen := parsec.Atom(")", "CLOSEPAREN")
	question := parsec.Atom("?", "QUESTION")
	brackets := parsec.Atom("[]", "BRACKETS")
	colon := parsec.Token(`(?:\?\s*:|:)`, "COLON")
	float := parsec.Token(`-?[0-9]+\.[0-9]+`, "FLOAT")
	integer := parsec.Token(`-?[0-9]+`, "INT")
	quoted := parsec.Token(`(?:'(?:[^'\\]|\\.)*'|"(?:[^"\\]|\\.)*")`, "QUOTED")
	shapeOf := parsec.Token(`(?i:(?:non-empty-)?(?:array|list)|object)`, "SHAPEOF")
	name := parsec.Token(`(?:\\?[A-Za-z_][A-Za-z0-9_\-]*(?:\\[A-Za-z_][A-Za-z0-9_\-]*)*|\$this)`, "NAME")
	key := parsec.Token(`[A-Za-z0-9_\-]+`, "KEY")
	callableOpen := parsec.Token(`(?i:callable|\\?closure)\s*\(`, "CALLABLEOPEN")
	paramTail := parsec.Token(`(?:&?\s*\.\.\.|=|&?\s*\$[A-Za-z_][A-Za-z0-9_]*)`, "PARAMTAIL")

	var union parsec.Parser
	var atom parsec.Parser

	// shapes
	fieldKey := parsec.OrdChoice(first, quoted, key)
	keyedField := parsec.And(keyedFieldNode, fieldKey, colon, &union)
	positionalField := parsec.And(positionalFieldNode, &union)
	field := parsec.OrdChoice(first, keyedField, positionalField)
	moreFields := parsec.Kleene(list, parsec.And(second, comma, field))
	trailing := parsec.Kleene(list, comma)
	fields := parsec.And(fieldsNode, field, moreFields, trailing)
	shape := parsec.OrdChoice(first,
		parsec.And(shapeNode, shapeOf, openBrace, fields, closeBrace),
		parsec.And(emptyShapeNode, shapeOf, openBrace, closeBrace),
	)

	// callable signatures are checked as plain callable
	callParam := parsec.And(first, &union, parsec.Kleene(list, paramTail))
	callParams := parsec.Maybe(nil, parsec.And(nil, callParam, parsec.Kleene(list, parsec.And(second, comma, callParam))))
	callReturn := parsec.Maybe(nil, parsec.And(nil, colon, &atom))
	callSig := parsec.And(callSigNode, callableOpen, callParams, closeParen, callReturn)

	moreParams := parsec.Kleene(list, parsec.And(second, comma, &union))
	generic := parsec.And(genericNode, name, openAngle, &union, moreParams, closeAngle)
	paren := parsec.And(second, openParen, &union, closeParen)
	literal := parsec.OrdChoice(literalNode, float, integer, quoted)
	plain := parsec.OrdChoice(nameNode, name)

	base := parsec.OrdChoice(first, callSig, shape, generic, paren, literal, plain)
	suffixed := parsec.And(suffixNode, base, parsec.Kleene(list, brackets))
	nullable := parsec.And(nullableNode, question, &atom)
	atom = parsec.OrdChoice(first, nullable, suffixed)

	inter := parsec.And(interNode, &atom, parsec.Kleene(list, parsec.And(second, amp, &atom)))
	union = parsec.And(unionNode, inter, parsec.Kleene(list, parsec.And(second, pipe, inter)))
	return union
}

func first(nodes []parsec.ParsecNode) parsec.ParsecNode {
	return nodes[0]
}

func second(nodes []parsec.ParsecNode) parsec.ParsecNode {
	return nodes[1]
}

func list(nodes []parsec.ParsecNode) parsec.ParsecNode {
	out := make([]parsec.ParsecNode, 0, len(nodes))
	return append(out, nodes...)
}

func terminal(node parsec.ParsecNode) *parsec.Terminal {
	t, _ := node.(*parsec.Terminal)
	return t
}

func unionNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	u := &Union{}
	u.Types = append(u.Types, nodes[0].(*Union).Types...)
	for _, n := range nodes[1].([]parsec.ParsecNode) {
		u.Types = append(u.Types, n.(*Union).Types...)
	}
	return u
}

// interNode keeps an intersection as a single named atomic; the members
// are not compared individually.
func interNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	rest := nodes[1].([]parsec.ParsecNode)
	if len(rest) == 0 {
		return nodes[0]
	}
	names := []string{nodes[0].(*Union).String()}
	for _, n := range rest {
		names = append(names, n.(*Union).String())
	}
	return NewUnion(Atomic{Kind: Named, Name: strings.Join(names, "&")})
}

func nullableNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	inner := nodes[1].(*Union)
	u := &Union{Types: append([]Atomic{}, inner.Types...)}
	u.Types = append(u.Types, Atomic{Kind: Null})
	return u
}

func suffixNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	u := nodes[0].(*Union)
	for range nodes[1].([]parsec.ParsecNode) {
		u = NewUnion(Atomic{Kind: Array, Value: u})
	}
	return u
}

func nameNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	return NewUnion(keyword(terminal(nodes[0]).Value))
}

func callSigNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	if strings.Contains(strings.ToLower(terminal(nodes[0]).Value), "closure") {
		return NewUnion(Atomic{Kind: Named, Name: "Closure"})
	}
	return CallableType()
}

func literalNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	t := terminal(nodes[0])
	switch t.Name {
	case "FLOAT":
		return LiteralFloatType(t.Value)
	case "INT":
		return LiteralIntType(t.Value)
	}
	return LiteralStringType(unquote(t.Value))
}

func genericNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	a := keyword(terminal(nodes[0]).Value)
	params := []*Union{nodes[2].(*Union)}
	for _, n := range nodes[3].([]parsec.ParsecNode) {
		params = append(params, n.(*Union))
	}
	switch a.Kind {
	case Array, Iterable:
		if len(params) == 1 {
			a.Value = params[0]
		} else {
			a.Key, a.Value = params[0], params[1]
		}
	case List:
		a.Value = params[0]
	default:
		a.Params = params
	}
	return NewUnion(a)
}

func keyedFieldNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	k := terminal(nodes[0])
	key := k.Value
	if k.Name == "QUOTED" {
		key = unquote(key)
	}
	return &Field{
		Key:      key,
		Optional: strings.HasPrefix(terminal(nodes[1]).Value, "?"),
		Type:     nodes[2].(*Union),
	}
}

func positionalFieldNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	return &Field{Type: nodes[0].(*Union)}
}

func fieldsNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	fields := []Field{*nodes[0].(*Field)}
	for _, n := range nodes[1].([]parsec.ParsecNode) {
		fields = append(fields, *n.(*Field))
	}
	return fields
}

func shapeNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	return NewUnion(Atomic{
		Kind:    Shape,
		ShapeOf: shapeKeyword(terminal(nodes[0]).Value),
		Fields:  nodes[2].([]Field),
	})
}

func emptyShapeNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	return NewUnion(Atomic{
		Kind:    Shape,
		ShapeOf: shapeKeyword(terminal(nodes[0]).Value),
		Fields:  []Field{},
	})
}

func shapeKeyword(s string) string {
	s = strings.ToLower(s)
	switch {
	case strings.HasSuffix(s, "list"):
		return "list"
	case s == "object":
		return "object"
	}
	return "array"
}

func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	q := s[0]
	s = s[1 : len(s)-1]
	return strings.ReplaceAll(s, `\`+string(q), string(q))
}
