// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/luthersystems/wphooks/ast"
	"github.com/luthersystems/wphooks/lint"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// exitError carries a process exit code out of a command. A nil err means
// the command already reported everything it had to say.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func usageError(format string, args ...interface{}) error {
	return &exitError{code: 2, err: fmt.Errorf(format, args...)}
}

type checkOptions struct {
	json     bool
	plain    bool
	checks   string
	list     bool
	excludes []string
}

var checkCmd = CheckCommand()

// CheckCommand returns the check command. Options inject the analysis
// session or configuration; without them the command reads .wphooks.yaml,
// the WPHOOKS_ environment and its own flags.
func CheckCommand(opts ...Option) *cobra.Command {
	conf := newCmdConfig(opts)
	o := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check [flags] [files...]",
		Short: "Check the WordPress hook calls of PHP files",
		Long: `Check the WordPress hook calls of PHP files.

Each file is a nikic/php-parser JSON dump. The hooks declared by any of the
files are known while checking every one of them, so a plugin's own
do_action calls make its add_action calls valid. Diagnostics point at the
PHP source next to the dump: plugin.php.json is reported as plugin.php.

With no files, reads one dump from stdin.

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation (invalid flags, unreadable files, bad configuration)

To suppress a diagnostic, put a comment on the statement it belongs to:
  // nolint:unchecked-call
  do_action( $hooks[ $i ] );

The issue kind works as well as the check name, and a bare "nolint"
suppresses everything on the statement. Whole issue kinds are suppressed
with the suppress configuration key.

Available checks (use --checks to select specific ones):
` + lint.AnalyzerDoc() + `
Examples:
  wphooks check plugin.php.json                        # Check a single file
  wphooks check ./...                                  # Check every dump below .
  wphooks check --json ./...                           # Output diagnostics as JSON
  wphooks check --checks=hook-contract ./...           # Run only specific checks
  wphooks check --list                                 # List available checks
  wphooks check --exclude='vendor' ./...               # Exclude a directory
  wphooks check --hooks-file=hooks/filters.json ./...  # Add a hook corpus file`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := runCheck(cmd.Context(), cmd, conf, o, args)
			if err != nil {
				return err
			}
			if code != 0 {
				return &exitError{code: code}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&o.json, "json", false,
		"Output diagnostics as JSON.")
	cmd.Flags().BoolVar(&o.plain, "plain", false,
		"Output diagnostics one per line in go vet style.")
	cmd.Flags().StringVar(&o.checks, "checks", "",
		"Comma-separated list of checks to run (default: all).")
	cmd.Flags().BoolVar(&o.list, "list", false,
		"List available checks and exit.")
	cmd.Flags().StringArrayVar(&o.excludes, "exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")
	cmd.Flags().Bool("require-all-params", false,
		"Require do_action calls to pass every documented argument.")
	cmd.Flags().String("unknown-hooks", "",
		`Report hooks missing from the corpus: "report" or "ignore" (default: report unless only the bundled sample is loaded).`)
	cmd.Flags().StringSlice("suppress", nil,
		"Issue kinds to suppress, e.g. DeprecatedHook.")
	cmd.Flags().String("learned-log", "",
		"Append inferred hook signatures to this file and load them on later runs.")
	cmd.Flags().StringArray("hooks-file", nil,
		"Additional hook corpus file (may be repeated).")
	return cmd
}

// selectAnalyzers narrows the default analyzers to a comma separated list.
func selectAnalyzers(checks string) ([]*lint.Analyzer, error) {
	analyzers := lint.DefaultAnalyzers()
	if checks == "" {
		return analyzers, nil
	}
	selected := make(map[string]bool)
	for _, name := range strings.Split(checks, ",") {
		selected[strings.TrimSpace(name)] = true
	}
	var filtered []*lint.Analyzer
	for _, a := range analyzers {
		if selected[a.Name] {
			filtered = append(filtered, a)
			delete(selected, a.Name)
		}
	}
	for name := range selected {
		return nil, usageError("wphooks check: unknown check: %s", name)
	}
	return filtered, nil
}

// runCheck checks args and returns the exit code. Diagnostics go to the
// command's output for --json and to its error stream otherwise.
func runCheck(ctx context.Context, cmd *cobra.Command, conf *cmdConfig, o *checkOptions, args []string) (int, error) {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if o.list {
		for _, name := range lint.AnalyzerNames() {
			fmt.Fprintln(stdout, name)
		}
		return 0, nil
	}

	analyzers, err := selectAnalyzers(o.checks)
	if err != nil {
		return 2, err
	}

	files, err := readDumps(cmd.InOrStdin(), args, o.excludes)
	if err != nil {
		return 2, usageError("%w", err)
	}

	session, err := conf.resolveSession()
	if err != nil {
		return 2, usageError("%w", err)
	}
	l := &lint.Linter{Analyzers: analyzers, Session: session}
	diags, err := l.LintFiles(ctx, files)
	if err != nil {
		return 2, usageError("%w", err)
	}
	if len(diags) == 0 {
		return 0, nil
	}

	switch {
	case o.json:
		if err := lint.FormatJSON(stdout, diags); err != nil {
			return 2, usageError("%w", err)
		}
	case o.plain:
		lint.FormatText(stderr, diags)
	default:
		renderLintDiagnostics(stderr, diags)
	}
	return 1, nil
}

// readDumps decodes the parser dumps named by args, or one dump from stdin
// when args is empty.
func readDumps(stdin io.Reader, args []string, excludes []string) ([]*ast.File, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		f, err := ast.DecodeJSON("<stdin>", data)
		if err != nil {
			return nil, err
		}
		return []*ast.File{f}, nil
	}

	paths, err := expandArgs(args, excludes)
	if err != nil {
		return nil, err
	}
	files := make([]*ast.File, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		f, err := ast.DecodeJSON(sourcePath(path), data)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func init() {
	rootCmd.AddCommand(checkCmd)

	for key, flag := range map[string]string{
		"require_all_params": "require-all-params",
		"suppress":           "suppress",
		"unknown_hooks":      "unknown-hooks",
		"learned_log":        "learned-log",
		"hooks.files":        "hooks-file",
	} {
		viper.BindPFlag(key, checkCmd.Flags().Lookup(flag)) //nolint:errcheck // flag exists
	}
}
