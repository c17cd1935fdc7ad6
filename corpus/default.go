// Copyright © 2024 The ELPS authors

package corpus

import (
	"embed"
	"path"
)

//go:embed data/*.json
var defaultData embed.FS

// DefaultFiles are the bundled WordPress core corpus files in load order.
var DefaultFiles = []string{"data/actions.json", "data/filters.json"}

// LoadDefault loads the bundled WordPress core corpus.
func (l *Loader) LoadDefault() {
	for _, name := range DefaultFiles {
		data, err := defaultData.ReadFile(name)
		if err != nil {
			l.Errors = append(l.Errors, "Invalid hook file "+name)
			continue
		}
		l.LoadBytes(data, path.Join("wordpress-core", path.Base(name)))
	}
}
