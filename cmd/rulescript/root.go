package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/rulescript/pkg/cli"
	"mercator-hq/rulescript/pkg/config"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "rulescript",
	Short: "Rulescript - scoped business rule compiler",
	Long: `Rulescript compiles per-organization business rules written as
MODULE / RULESET / RULE scripts and merges organization, branch and user
scripts into one effective rule set.

A rule defined at a more specific scope replaces the rule with the same
(RULESET, RULE) name from a broader scope: USER over BRANCH over ORG.

Scripts are read from a directory laid out as
  <dir>/org/<id>.rules
  <dir>/branch/<id>.rules
  <dir>/user/<id>.rules`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a code derived from the
// returned error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultConfigPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}
