// Copyright © 2024 The ELPS authors

package analysis

import (
	"fmt"

	"github.com/luthersystems/wphooks/corpus"
	"github.com/luthersystems/wphooks/diagnostic"
)

// Values of Config.UnknownHooks.
const (
	// UnknownHooksAuto reports unknown hooks unless the bundled core
	// sample is the only corpus loaded.
	UnknownHooksAuto   = ""
	UnknownHooksReport = "report"
	UnknownHooksIgnore = "ignore"
)

// Config controls a Session. Field tags match the configuration file keys.
type Config struct {
	// UseDefaultHooks loads the bundled WordPress core corpus before the
	// configured sources.
	UseDefaultHooks bool `mapstructure:"use_default_hooks"`

	// RequireAllParams makes every documented parameter of a do_action or
	// apply_filters call required.
	RequireAllParams bool `mapstructure:"require_all_params"`

	// Hooks names the corpus files and directories to load.
	Hooks corpus.Sources `mapstructure:"hooks"`

	// LearnedLog is the path of the learned-signature log. Empty disables
	// it.
	LearnedLog string `mapstructure:"learned_log"`

	// UnknownHooks decides whether registering a hook missing from the
	// registry is reported as HookNotFound: "report", "ignore" or empty
	// for UnknownHooksAuto. The bundled core corpus is a sample of the
	// most used hooks, so relying on it alone would flag valid core hooks.
	UnknownHooks string `mapstructure:"unknown_hooks"`

	// Suppress lists issue kinds that are not reported.
	Suppress []string `mapstructure:"suppress"`

	// DynamicChars is the character class a dynamic name placeholder
	// matches. Empty uses the resolver default.
	DynamicChars string `mapstructure:"dynamic_chars"`

	// Constants maps constant names to string values for hook names built
	// from constants.
	Constants map[string]string `mapstructure:"constants"`

	// SchedulerFunctions adds event scheduling functions, mapped to the
	// position of their hook name argument.
	SchedulerFunctions map[string]int `mapstructure:"scheduler_functions"`
}

// DefaultConfig returns the configuration used when nothing is configured.
func DefaultConfig() Config {
	return Config{UseDefaultHooks: true}
}

// ReportsUnknownHooks reports whether registrations of hooks missing from
// the registry become HookNotFound issues.
func (c *Config) ReportsUnknownHooks() bool {
	switch c.UnknownHooks {
	case UnknownHooksReport:
		return true
	case UnknownHooksIgnore:
		return false
	}
	return !c.UseDefaultHooks || len(c.Hooks.Files) > 0 || len(c.Hooks.Directories) > 0
}

// Validate reports configuration values that can never work.
func (c *Config) Validate() error {
	switch c.UnknownHooks {
	case UnknownHooksAuto, UnknownHooksReport, UnknownHooksIgnore:
	default:
		return fmt.Errorf("unknown_hooks: %q is not one of report, ignore", c.UnknownHooks)
	}
	for _, name := range c.Suppress {
		if _, ok := diagnostic.ParseKind(name); !ok {
			return fmt.Errorf("suppress: unknown issue kind %q", name)
		}
	}
	for fn, pos := range c.SchedulerFunctions {
		if pos < 0 {
			return fmt.Errorf("scheduler_functions: %s: negative hook position %d", fn, pos)
		}
	}
	if unescapedBracket(c.DynamicChars) {
		return fmt.Errorf("dynamic_chars: %q must escape brackets", c.DynamicChars)
	}
	return nil
}

// unescapedBracket reports whether class contains a bracket that would
// end or nest the character class it is placed in.
func unescapedBracket(class string) bool {
	for i := 0; i < len(class); i++ {
		switch class[i] {
		case '\\':
			i++
		case '[', ']':
			return true
		}
	}
	return false
}
