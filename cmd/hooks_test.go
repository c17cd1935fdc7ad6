// Copyright © 2024 The ELPS authors

package cmd

import (
	"strings"
	"testing"

	"github.com/luthersystems/wphooks/analysis"
	"github.com/luthersystems/wphooks/hooks"
	"github.com/luthersystems/wphooks/semtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooksCommand_List(t *testing.T) {
	stdout, _, code := execute(t, HooksCommand(WithConfig(analysis.DefaultConfig())), "")
	assert.Equal(t, 0, code)
	names := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Contains(t, names, "the_title")
	assert.Contains(t, names, "save_post_{$post->post_type}")

	stdout, _, code = execute(t, HooksCommand(WithConfig(analysis.DefaultConfig())), "", "--dynamic")
	assert.Equal(t, 0, code)
	for _, name := range strings.Split(strings.TrimSpace(stdout), "\n") {
		assert.Contains(t, name, hooks.Placeholder)
	}
}

func TestHooksCommand_Show(t *testing.T) {
	stdout, _, code := execute(t, HooksCommand(WithConfig(analysis.DefaultConfig())), "", "the_title")
	assert.Equal(t, 0, code)
	assert.Equal(t, "the_title (filter)\n  arguments: string, int\n  fired with at least 2 argument(s)\n", stdout)
}

func TestHooksCommand_Unknown(t *testing.T) {
	_, stderr, code := execute(t, HooksCommand(WithConfig(analysis.DefaultConfig())), "", "the_title", "no_such_hook")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown hook: no_such_hook")
}

func TestHooksCommand_JSONL(t *testing.T) {
	stdout, _, code := execute(t, HooksCommand(WithConfig(analysis.DefaultConfig())), "", "--jsonl", "the_title")
	assert.Equal(t, 0, code)
	assert.JSONEq(t, `{"name":"the_title","kind":"filter","types":["string","int"],"deprecated":false}`, stdout)
}

func TestHooksCommand_Scan(t *testing.T) {
	dir := t.TempDir()
	path := writeDump(t, dir, "plugin.php.json", callDump([2]string{"do_action", "my_plugin_loaded"}))
	stdout, _, code := execute(t, HooksCommand(WithConfig(analysis.Config{})), "", "--scan", path, "my_plugin_loaded")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "my_plugin_loaded (action)\n"), stdout)
}

func TestDescribeHook(t *testing.T) {
	h := &hooks.Hook{
		Name:       "old_hook",
		Kind:       hooks.KindActionDeprecated,
		Types:      []*semtype.Union{semtype.MustParse("WP_Post")},
		Deprecated: true,
		Aliases:    []string{"older_hook"},
	}
	assert.Equal(t, "old_hook (action_deprecated)\n"+
		"  arguments: WP_Post\n"+
		"  deprecated\n"+
		"  aliases: older_hook\n", describeHook(h))

	assert.Equal(t, "marker (unknown kind)\n  arguments: none\n",
		describeHook(&hooks.Hook{Name: "marker"}))
}

func TestResolveCommand(t *testing.T) {
	cfg := analysis.DefaultConfig()
	stdout, stderr, code := execute(t, ResolveCommand(WithConfig(cfg)), "", "--action", "save_post_product")
	require.Equal(t, 0, code, stderr)
	assert.True(t, strings.HasPrefix(stdout, "save_post_{$post->post_type} (action)\n"), stdout)
	assert.Contains(t, stdout, "aliases: save_post_product")

	stdout, _, code = execute(t, ResolveCommand(WithConfig(cfg)), "", "the_title")
	assert.Equal(t, 0, code)
	assert.Equal(t, "the_title is a static hook (filter)\n", stdout)

	_, stderr, code = execute(t, ResolveCommand(WithConfig(cfg)), "", "save_post_product")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no matching dynamic hook")

	_, _, code = execute(t, ResolveCommand(WithConfig(cfg)), "", "--action", "nothing")
	assert.Equal(t, 1, code)
}
