// Copyright © 2024 The ELPS authors

// Package corpus loads documented hook signatures from wp-hooks style JSON
// files into a hooks.Registry.
//
// A corpus file has the shape
//
//	{"hooks": [{"name": "save_post", "type": "action", "file": "wp-includes/post.php",
//	            "args": 3, "aliases": [...],
//	            "doc": {"tags": [{"name": "param", "content": "...", "types": ["int"]}]}}]}
//
// Problems with individual files or records are soft errors: they are
// collected in Loader.Errors and loading continues.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/luthersystems/wphooks/docblock"
	"github.com/luthersystems/wphooks/hooks"
	"github.com/luthersystems/wphooks/logger"
	"github.com/luthersystems/wphooks/semtype"
)

// Loader registers corpus records into Registry.
type Loader struct {
	Registry *hooks.Registry
	Errors   []string
}

// NewLoader returns a loader writing to r.
func NewLoader(r *hooks.Registry) *Loader {
	return &Loader{Registry: r}
}

// TakeErrors returns the accumulated soft errors and clears them.
func (l *Loader) TakeErrors() []string {
	errs := l.Errors
	l.Errors = nil
	return errs
}

// LoadFile reads and loads the corpus file at path. Unreadable files are
// recorded as soft errors like malformed ones.
func (l *Loader) LoadFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("corpus file unreadable", "path", path, "error", err)
		l.Errors = append(l.Errors, "Invalid hook file "+path)
		return
	}
	l.LoadBytes(data, path)
}

// LoadBytes loads corpus data. path identifies the data in error messages
// and its parent directory name is used as the plugin slug.
func (l *Loader) LoadBytes(data []byte, path string) {
	if !gjson.ValidBytes(data) {
		l.Errors = append(l.Errors, "Invalid hook file "+path)
		return
	}
	list := gjson.GetBytes(data, "hooks")
	if !list.IsArray() {
		l.Errors = append(l.Errors, "Invalid hook file "+path)
		return
	}
	slug := filepath.Base(filepath.Dir(path))
	n := 0
	list.ForEach(func(_, rec gjson.Result) bool {
		if l.loadRecord(rec, path, slug) {
			n++
		}
		return true
	})
	logger.Debug("corpus file loaded", "path", path, "hooks", n)
}

func (l *Loader) loadRecord(rec gjson.Result, path, slug string) bool {
	name := rec.Get("name").String()
	if name == "" {
		return false
	}
	texts := recordTypes(rec)
	types := make([]*semtype.Union, len(texts))
	for i, text := range texts {
		if text == "" {
			continue
		}
		u, err := semtype.Parse(text)
		if err != nil {
			l.Errors = append(l.Errors, fmt.Sprintf("%v for hook %s of hook file %s in %s/%s",
				err, name, path, slug, rec.Get("file").String()))
			return false
		}
		types[i] = u
	}

	kind, _ := hooks.ParseKind(rec.Get("type").String())
	deprecated := kind.IsDeprecated()
	if deprecated {
		kind = kind.Base()
	} else {
		rec.Get("doc.tags").ForEach(func(_, tag gjson.Result) bool {
			if tag.Get("name").String() == "deprecated" {
				deprecated = true
				return false
			}
			return true
		})
	}

	names := recordParamNames(rec)
	l.Registry.Register(name, kind, types, deprecated)
	l.Registry.SetParamNames(name, names)
	aliases := rec.Get("aliases").Array()
	for _, alias := range aliases {
		l.Registry.Register(alias.String(), kind, types, deprecated)
		l.Registry.SetParamNames(alias.String(), names)
	}
	if len(aliases) > 0 {
		aliasNames := make([]string, len(aliases))
		for i, a := range aliases {
			aliasNames[i] = a.String()
		}
		l.Registry.SetAliases(name, aliasNames)
	}
	return true
}

// recordParamNames returns the variable name of each documented parameter
// in the order of the param tags.
func recordParamNames(rec gjson.Result) []string {
	var names []string
	rec.Get("doc.tags").ForEach(func(_, tag gjson.Result) bool {
		if tag.Get("name").String() == "param" {
			names = append(names, tag.Get("variable").String())
		}
		return true
	})
	return names
}

// recordTypes returns the type text of each documented parameter. Params
// without types leave an empty entry at their position. When fewer types
// than args are documented every empty position up to args is mixed.
func recordTypes(rec gjson.Result) []string {
	var texts []string
	documented := 0
	rec.Get("doc.tags").ForEach(func(_, tag gjson.Result) bool {
		if tag.Get("name").String() != "param" {
			return true
		}
		var types []string
		for _, t := range tag.Get("types").Array() {
			types = append(types, t.String())
		}
		if len(types) == 0 || (len(types) == 1 && types[0] == "array") {
			if shape, ok := docblock.NestedShape(tag.Get("content").String()); ok {
				types = []string{shape}
			}
		}
		text := ""
		if len(types) > 0 {
			sort.SliceStable(types, func(i, j int) bool { return naturalLess(types[i], types[j]) })
			text = strings.Join(types, "|")
			documented++
		}
		texts = append(texts, text)
		return true
	})

	args := int(rec.Get("args").Int())
	if documented < args {
		for len(texts) < args {
			texts = append(texts, "")
		}
		for i := 0; i < args; i++ {
			if texts[i] == "" {
				texts[i] = "mixed"
			}
		}
	}
	return texts
}

// naturalLess orders strings case-insensitively with digit runs compared
// by value, so "int2" sorts before "int10".
func naturalLess(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	for a != "" && b != "" {
		if isDigit(a[0]) && isDigit(b[0]) {
			da, db := digitRun(a), digitRun(b)
			na, nb := strings.TrimLeft(a[:da], "0"), strings.TrimLeft(b[:db], "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			a, b = a[da:], b[db:]
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func digitRun(s string) int {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}
