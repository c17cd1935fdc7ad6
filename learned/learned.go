// Copyright © 2024 The ELPS authors

// Package learned persists hook signatures inferred from undocumented
// declarations. The log is a file of JSON lines, one object per inferred
// hook:
//
//	{"name":"my_hook","kind":"filter","types":["string","int"],"deprecated":false}
//
// The log is read once when a session starts, seeding the registry, and
// appended to whenever a new signature is inferred.
package learned

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/luthersystems/wphooks/hooks"
	"github.com/luthersystems/wphooks/logger"
	"github.com/luthersystems/wphooks/semtype"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Entry is one inferred signature.
type Entry struct {
	Name       string
	Kind       hooks.Kind
	Types      []*semtype.Union
	Deprecated bool
}

// Encode renders e as a single JSON object without a trailing newline.
func Encode(e Entry) ([]byte, error) {
	types := make([]string, len(e.Types))
	for i, t := range e.Types {
		types[i] = t.String()
	}
	doc := []byte(`{}`)
	var err error
	for _, f := range []struct {
		path  string
		value any
	}{
		{"name", e.Name},
		{"kind", e.Kind.String()},
		{"types", types},
		{"deprecated", e.Deprecated},
	} {
		doc, err = sjson.SetBytes(doc, f.path, f.value)
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", e.Name, err)
		}
	}
	return doc, nil
}

// Decode parses one log line. Types that fail to parse are kept as nil
// entries so the registry back-fills them with mixed.
func Decode(line []byte) (Entry, error) {
	if !gjson.ValidBytes(line) {
		return Entry{}, errors.New("invalid JSON")
	}
	res := gjson.ParseBytes(line)
	name := res.Get("name").String()
	if name == "" {
		return Entry{}, errors.New("missing hook name")
	}
	kind, ok := hooks.ParseKind(res.Get("kind").String())
	if !ok {
		return Entry{}, fmt.Errorf("unknown kind %q", res.Get("kind").String())
	}
	e := Entry{Name: name, Kind: kind, Deprecated: res.Get("deprecated").Bool()}
	for _, t := range res.Get("types").Array() {
		u, err := semtype.Parse(t.String())
		if err != nil {
			u = nil
		}
		e.Types = append(e.Types, u)
	}
	return e, nil
}

// Read decodes every line of r. Malformed lines are skipped and logged;
// only I/O errors are returned.
func Read(r io.Reader) ([]Entry, error) {
	var entries []Entry
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	for s.Scan() {
		lineno++
		line := bytes.TrimSpace(s.Bytes())
		if len(line) == 0 {
			continue
		}
		e, err := Decode(line)
		if err != nil {
			logger.Warn("skipping learned signature", "line", lineno, "error", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, s.Err()
}

// Log is a learned-signature log file.
type Log struct {
	Path string
}

// Load registers every entry of the log in r and returns how many were
// read. A missing log file is not an error.
func (l *Log) Load(r *hooks.Registry) (int, error) {
	f, err := os.Open(l.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("learned log: %w", err)
	}
	defer f.Close()
	entries, err := Read(f)
	if err != nil {
		return 0, fmt.Errorf("learned log %s: %w", l.Path, err)
	}
	for _, e := range entries {
		r.Register(e.Name, e.Kind, e.Types, e.Deprecated)
	}
	logger.Debug("loaded learned signatures", "file", l.Path, "count", len(entries))
	return len(entries), nil
}

// Append writes e as a new line at the end of the log, creating the file
// if needed.
func (l *Log) Append(e Entry) error {
	line, err := Encode(e)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("learned log: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("learned log %s: %w", l.Path, err)
	}
	return f.Close()
}

// Recorder returns a callback suitable for contract.Provider.OnInfer.
// Write failures are logged and otherwise ignored.
func (l *Log) Recorder() func(name string, kind hooks.Kind, types []*semtype.Union, deprecated bool) {
	return func(name string, kind hooks.Kind, types []*semtype.Union, deprecated bool) {
		err := l.Append(Entry{Name: name, Kind: kind, Types: types, Deprecated: deprecated})
		if err != nil {
			logger.Warn("could not record learned signature", "hook", name, "error", err)
		}
	}
}
