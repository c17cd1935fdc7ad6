// Copyright © 2024 The ELPS authors

package cmd

import (
	"github.com/luthersystems/wphooks/analysis"
)

// Option configures an exported command factory (CheckCommand,
// HooksCommand, ResolveCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	session *analysis.Session
	config  *analysis.Config
}

// WithSession injects a prepared analysis session. Embedders use it to
// check code against a registry they populated themselves.
func WithSession(s *analysis.Session) Option {
	return func(c *cmdConfig) { c.session = s }
}

// WithConfig replaces the configuration read from .wphooks.yaml and the
// environment.
func WithConfig(cfg analysis.Config) Option {
	return func(c *cmdConfig) { c.config = &cfg }
}

func newCmdConfig(opts []Option) *cmdConfig {
	c := &cmdConfig{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// resolveSession returns the injected session, or a new one built from
// the injected config, falling back to the viper configuration.
func (c *cmdConfig) resolveSession() (*analysis.Session, error) {
	if c.session != nil {
		return c.session, nil
	}
	if c.config != nil {
		return analysis.NewSession(*c.config)
	}
	return newSession()
}
