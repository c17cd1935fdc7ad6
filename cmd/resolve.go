// Copyright © 2024 The ELPS authors

package cmd

import (
	"errors"
	"fmt"

	"github.com/luthersystems/wphooks/dynname"
	"github.com/luthersystems/wphooks/hooks"
	"github.com/spf13/cobra"
)

// ResolveCommand returns the resolve command, which maps a concrete hook
// name to the dynamic hook it is an instance of.
func ResolveCommand(opts ...Option) *cobra.Command {
	conf := newCmdConfig(opts)
	var action bool
	cmd := &cobra.Command{
		Use:   "resolve [flags] name",
		Short: "Find the dynamic hook a concrete name belongs to",
		Long: `Find the dynamic hook a concrete name belongs to.

Hooks such as "save_post_{$post->post_type}" are fired under many concrete
names. resolve prints the dynamic hook a name like "save_post_product"
belongs to, and exits with status 1 when none matches.

Examples:
  wphooks resolve --action save_post_product
  wphooks resolve option_siteurl`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := conf.resolveSession()
			if err != nil {
				return usageError("%w", err)
			}
			if err := session.LoadCorpus(cmd.Context()); err != nil {
				return usageError("%w", err)
			}
			name := args[0]
			if h, ok := session.Registry.Lookup(name); ok && !h.IsDynamic() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is a static hook (%s)\n", name, h.Kind)
				return nil
			}
			h, err := session.Resolver.Resolve(name, action)
			switch {
			case errors.Is(err, dynname.ErrKindMismatch):
				kind := "a filter"
				if action {
					kind = "an action"
				}
				return &exitError{code: 1, err: fmt.Errorf("%s matches a dynamic hook that is not %s", name, kind)}
			case err != nil:
				return &exitError{code: 1, err: fmt.Errorf("%s: %w", name, err)}
			}
			if pattern, ok := dynamicSource(session.Registry, name); ok {
				fmt.Fprint(cmd.OutOrStdout(), describeHook(pattern))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), describeHook(h))
			return nil
		},
	}
	cmd.Flags().BoolVar(&action, "action", false,
		"Resolve against actions instead of filters.")
	return cmd
}

// dynamicSource finds the dynamic record name was memoized from.
func dynamicSource(r *hooks.Registry, name string) (*hooks.Hook, bool) {
	for _, dyn := range r.DynamicNames() {
		h, _ := r.Lookup(dyn)
		for _, alias := range h.Aliases {
			if alias == name {
				return h, true
			}
		}
	}
	return nil, false
}

func init() {
	rootCmd.AddCommand(ResolveCommand())
}
