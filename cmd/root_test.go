// Copyright © 2024 The ELPS authors

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(viper.New())
	require.NoError(t, err)
	assert.True(t, cfg.UseDefaultHooks)
	assert.False(t, cfg.RequireAllParams)
	assert.Empty(t, cfg.Hooks.BaseDir)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".wphooks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
use_default_hooks: false
require_all_params: true
hooks:
  files: [hooks/extra.json]
  directories:
    - {name: vendor/hooks, recursive: true}
  exclude: ["**/legacy/*"]
learned_log: learned.jsonl
suppress: [DeprecatedHook]
constants:
  MY_PREFIX: acme
scheduler_functions:
  my_schedule: 1
`), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg, err := loadConfig(v)
	require.NoError(t, err)

	assert.False(t, cfg.UseDefaultHooks)
	assert.True(t, cfg.RequireAllParams)
	assert.Equal(t, dir, cfg.Hooks.BaseDir)
	assert.Equal(t, []string{"hooks/extra.json"}, cfg.Hooks.Files)
	require.Len(t, cfg.Hooks.Directories, 1)
	assert.Equal(t, "vendor/hooks", cfg.Hooks.Directories[0].Name)
	assert.True(t, cfg.Hooks.Directories[0].Recursive)
	assert.Equal(t, []string{"**/legacy/*"}, cfg.Hooks.Exclude)
	assert.Equal(t, "learned.jsonl", cfg.LearnedLog)
	assert.Equal(t, []string{"DeprecatedHook"}, cfg.Suppress)
	// viper lowercases map keys.
	assert.Equal(t, "acme", cfg.Constants["my_prefix"])
	assert.Equal(t, 1, cfg.SchedulerFunctions["my_schedule"])
}

func TestLoadConfig_Invalid(t *testing.T) {
	v := viper.New()
	v.Set("suppress", []string{"NotAKind"})
	_, err := loadConfig(v)
	assert.ErrorContains(t, err, "config:")
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("WPHOOKS_REQUIRE_ALL_PARAMS", "true")
	v := viper.New()
	v.SetEnvPrefix("WPHOOKS")
	v.BindEnv("require_all_params") //nolint:errcheck // key is non-empty
	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.True(t, cfg.RequireAllParams)
}
