// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/luthersystems/wphooks/analysis"
	"github.com/luthersystems/wphooks/hooks"
	"github.com/luthersystems/wphooks/learned"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
)

const hookDetailWidth = 76

// HooksCommand returns the hooks command, which prints what the registry
// knows about hooks.
func HooksCommand(opts ...Option) *cobra.Command {
	conf := newCmdConfig(opts)
	var (
		dynamic bool
		jsonl   bool
		scan    []string
	)
	cmd := &cobra.Command{
		Use:   "hooks [flags] [names...]",
		Short: "List known hooks or show their signatures",
		Long: `List known hooks or show their signatures.

With no names, prints the name of every known hook. With names, prints the
kind, argument types and aliases of each. Hooks declared by PHP files are
included when their parser dumps are given with --scan.

Examples:
  wphooks hooks                             # List every known hook
  wphooks hooks --dynamic                   # List hooks with {$...} segments
  wphooks hooks the_title save_post         # Show two signatures
  wphooks hooks --scan ./... my_plugin_init # Include hooks declared by a plugin
  wphooks hooks --jsonl > hooks.jsonl       # Export in the learned log format`,
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
			if len(scan) > 0 {
				files, err := readDumps(cmd.InOrStdin(), scan, nil)
				if err != nil {
					return usageError("%w", err)
				}
				for _, f := range files {
					session.ScanFile(cmd.Context(), f)
				}
			}
			return printHooks(cmd.OutOrStdout(), session, args, dynamic, jsonl)
		},
	}
	cmd.Flags().BoolVar(&dynamic, "dynamic", false,
		"Only list hooks whose names contain interpolated segments.")
	cmd.Flags().BoolVar(&jsonl, "jsonl", false,
		"Print records as JSON lines in the learned log format.")
	cmd.Flags().StringArrayVar(&scan, "scan", nil,
		"Parser dump (or dir/...) whose hook declarations are added first (may be repeated).")
	return cmd
}

func printHooks(w io.Writer, session *analysis.Session, names []string, dynamic, jsonl bool) error {
	r := session.Registry
	if len(names) == 0 {
		names = r.Names()
		if dynamic {
			names = r.DynamicNames()
		}
		if !jsonl {
			for _, name := range names {
				fmt.Fprintln(w, name)
			}
			return nil
		}
	}

	var missing []string
	for _, name := range names {
		h, ok := r.Lookup(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		if jsonl {
			line, err := learned.Encode(learned.Entry{
				Name:       h.Name,
				Kind:       h.Kind,
				Types:      h.Types,
				Deprecated: h.Deprecated,
			})
			if err != nil {
				return &exitError{code: 2, err: err}
			}
			fmt.Fprintf(w, "%s\n", line)
			continue
		}
		fmt.Fprint(w, describeHook(h))
	}
	if len(missing) > 0 {
		return &exitError{code: 1, err: fmt.Errorf("unknown hook: %s", strings.Join(missing, ", "))}
	}
	return nil
}

// describeHook renders a hook record as a short indented block.
func describeHook(h *hooks.Hook) string {
	var b strings.Builder
	kind := h.Kind.String()
	if kind == "" {
		kind = "unknown kind"
	}
	fmt.Fprintf(&b, "%s (%s)\n", h.Name, kind)

	var detail strings.Builder
	if len(h.Types) == 0 {
		detail.WriteString("arguments: none\n")
	} else {
		types := make([]string, len(h.Types))
		for i, t := range h.Types {
			types[i] = t.String()
		}
		detail.WriteString(wordwrap.String("arguments: "+strings.Join(types, ", "), hookDetailWidth))
		detail.WriteString("\n")
	}
	if h.MinimumInvokeArgs > 0 {
		fmt.Fprintf(&detail, "fired with at least %d argument(s)\n", h.MinimumInvokeArgs)
	}
	if h.Deprecated {
		detail.WriteString("deprecated\n")
	}
	if len(h.Aliases) > 0 {
		detail.WriteString(wordwrap.String("aliases: "+strings.Join(h.Aliases, ", "), hookDetailWidth))
		detail.WriteString("\n")
	}
	b.WriteString(indent.String(detail.String(), 2))
	return b.String()
}

func init() {
	rootCmd.AddCommand(HooksCommand())
}
