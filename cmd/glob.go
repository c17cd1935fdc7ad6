// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// dumpExt is the extension of the parser dumps the checker reads.
const dumpExt = ".json"

// expandArgs expands arguments, resolving patterns ending with "/..." to all
// parser dumps found recursively under the given directory. Non-pattern
// arguments pass through unchanged. Paths matching any exclude pattern are
// dropped.
func expandArgs(args []string, excludes []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if dir, ok := strings.CutSuffix(arg, "/..."); ok {
			if dir == "" {
				dir = "."
			}
			files, err := findDumps(dir)
			if err != nil {
				return nil, fmt.Errorf("expanding %s: %w", arg, err)
			}
			out = append(out, files...)
		} else {
			out = append(out, arg)
		}
	}
	if len(excludes) == 0 {
		return out, nil
	}
	for _, pattern := range excludes {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
	}
	return filterExcludes(out, excludes), nil
}

func findDumps(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && shouldSkipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == dumpExt {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// shouldSkipDir reports whether a directory is left out of "/..." walks:
// hidden directories such as .git, and node_modules.
func shouldSkipDir(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

// filterExcludes removes paths matching any of the patterns.
func filterExcludes(paths []string, patterns []string) []string {
	if len(patterns) == 0 {
		return paths
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !matchesAny(p, patterns) {
			out = append(out, p)
		}
	}
	return out
}

// matchesAny reports whether a pattern matches the full path, its base
// name, or any single directory component.
func matchesAny(path string, patterns []string) bool {
	slashed := filepath.ToSlash(path)
	components := splitPath(slashed)
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			continue
		}
		if g.Match(slashed) {
			return true
		}
		for _, c := range components {
			if g.Match(c) {
				return true
			}
		}
	}
	return false
}

// splitPath splits a slash separated path into its components.
func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(filepath.ToSlash(path), "/") {
		if p != "" && p != "." {
			parts = append(parts, p)
		}
	}
	return parts
}
