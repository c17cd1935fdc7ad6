// Copyright © 2024 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/luthersystems/wphooks/analysis"
	"github.com/luthersystems/wphooks/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	colorFlag string
	verbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wphooks",
	Short: "WordPress hook checker",
	Long: `wphooks checks how PHP code uses WordPress hooks. It knows the actions
and filters of WordPress core, learns the hooks your own code declares, and
checks every add_action, add_filter, do_action and apply_filters call
against them.

Source files are read as nikic/php-parser JSON dumps:
  php-parse --json-dump plugin.php > plugin.php.json

Getting started:
  wphooks check plugin.php.json        Check the hook calls of a file
  wphooks check ./...                  Check every dump below a directory
  wphooks hooks the_content            Show what is known about a hook
  wphooks hooks --dynamic              List the dynamic hook names
  wphooks resolve save_post_product    Find the dynamic hook a name belongs to

Configuration is read from .wphooks.yaml in the working directory or the
home directory, or from the file named by --config. Every key can also be
set in the environment with the WPHOOKS_ prefix, e.g.
WPHOOKS_REQUIRE_ALL_PARAMS=true.

  use_default_hooks: true        # load the bundled sample of WordPress core hooks
  unknown_hooks: report          # report/ignore hooks missing from the corpus
  require_all_params: false      # require every documented do_action argument
  hooks:
    files: [hooks/filters.json]
    directories:
      - {name: vendor/wp-hooks, recursive: true}
    exclude: ["**/legacy/*"]
  learned_log: .wphooks-learned.jsonl
  suppress: [DeprecatedHook]
  dynamic_chars: '\w:>.\[\]$/-'
  constants: {MY_PLUGIN_PREFIX: my_plugin}
  scheduler_functions: {my_schedule_event: 1}`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			fmt.Fprintln(os.Stderr, exit.err)
		}
		os.Exit(exit.code)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(2)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .wphooks.yaml in . or $HOME)")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto",
		`Control colored output: "auto", "always", or "never".`)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log corpus loading and scanning details.")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")) //nolint:errcheck // flag exists

	viper.SetDefault("use_default_hooks", true)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".wphooks")
	}

	viper.SetEnvPrefix("WPHOOKS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	err := viper.ReadInConfig()
	logger.SetVerbose(viper.GetBool("verbose"))
	if err == nil {
		logger.Debug("using config file", "file", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

// loadConfig decodes the analysis configuration from v. Relative hook
// sources resolve against the directory of the config file.
func loadConfig(v *viper.Viper) (analysis.Config, error) {
	cfg := analysis.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if used := v.ConfigFileUsed(); used != "" && cfg.Hooks.BaseDir == "" {
		cfg.Hooks.BaseDir = filepath.Dir(used)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func newSession() (*analysis.Session, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return analysis.NewSession(cfg)
}
