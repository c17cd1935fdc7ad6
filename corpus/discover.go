// Copyright © 2024 The ELPS authors

package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// ErrMissingSource is returned by Discover for a configured file or
// directory that does not exist.
var ErrMissingSource = errors.New("hook source does not exist")

// FileNames are the corpus files looked for in a configured directory.
var FileNames = []string{"actions.json", "filters.json", "hooks.json"}

// Directory is a configured corpus directory.
type Directory struct {
	Name      string `mapstructure:"name"`
	Recursive bool   `mapstructure:"recursive"`
}

// Sources lists the user configured corpus locations.
type Sources struct {
	BaseDir     string      // relative paths resolve against it; "" means the working directory
	Files       []string    `mapstructure:"files"`
	Directories []Directory `mapstructure:"directories"`
	Exclude     []string    `mapstructure:"exclude"` // glob patterns matched against discovered paths
}

// Discover returns the corpus files named by src in load order without
// duplicates. Explicit files come first. A recursive directory contributes
// its immediate subdirectories before itself.
func Discover(src Sources) ([]string, error) {
	excludes, err := compileGlobs(src.Exclude)
	if err != nil {
		return nil, err
	}
	var out []string
	seen := make(map[string]bool)
	add := func(path string) {
		if seen[path] || excluded(excludes, path) {
			return
		}
		seen[path] = true
		out = append(out, path)
	}

	for _, f := range src.Files {
		path := src.resolve(f)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return nil, fmt.Errorf("hook file %q: %w", path, ErrMissingSource)
		}
		add(path)
	}
	for _, d := range src.Directories {
		dir := src.resolve(strings.TrimRight(d.Name, "/"))
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("hook directory %q: %w", dir, ErrMissingSource)
		}
		dirs := []string{dir}
		if d.Recursive {
			sub, err := subdirectories(dir)
			if err != nil {
				return nil, err
			}
			dirs = append(sub, dir)
		}
		for _, dir := range dirs {
			for _, name := range FileNames {
				path := filepath.Join(dir, name)
				if info, err := os.Stat(path); err == nil && !info.IsDir() {
					add(path)
				}
			}
		}
	}
	return out, nil
}

func (src Sources) resolve(path string) string {
	if filepath.IsAbs(path) || src.BaseDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(src.BaseDir, path)
}

func subdirectories(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("hook directory %q: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	matchers := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
		matchers = append(matchers, g)
	}
	return matchers, nil
}

func excluded(matchers []glob.Glob, path string) bool {
	slashed := filepath.ToSlash(path)
	for _, g := range matchers {
		if g.Match(slashed) {
			return true
		}
	}
	return false
}
