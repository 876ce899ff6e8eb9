package main

import (
	"github.com/spf13/cobra"

	"mercator-hq/rulescript/pkg/cli"
)

// scopeFlags select the evaluation context shared by resolve and eval.
type scopeFlags struct {
	dir    string
	org    string
	branch string
	user   string
}

func (f *scopeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.dir, "dir", "d", "", "script directory (default: store.dir from config)")
	cmd.Flags().StringVar(&f.org, "org", "", "organization id (required)")
	cmd.Flags().StringVar(&f.branch, "branch", "", "branch id")
	cmd.Flags().StringVar(&f.user, "user", "", "user id")
}

var resolveFlags struct {
	scopeFlags
	format string
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show the effective rules for an organization, branch and user",
	Long: `Compile every script in a directory and print the effective rule set
for the given scopes, with the scope and script that supplied each rule.

A BRANCH or USER script replaces whole rules: the broader rule with the same
(RULESET, RULE) name is not consulted. Scopes without a compiled script are
listed as missing and contribute nothing.

Examples:
  # Organization rules only
  rulescript resolve --dir rules --org acme

  # Effective rules for one user
  rulescript resolve --dir rules --org acme --branch north --user alice

  # JSON output
  rulescript resolve --dir rules --org acme --format json`,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveFlags.register(resolveCmd)
	resolveCmd.Flags().StringVar(&resolveFlags.format, "format", "text", "output format: text, json")
}

func runResolve(cmd *cobra.Command, args []string) error {
	if resolveFlags.org == "" {
		return cli.NewConfigError("org", "--org is required")
	}
	format, err := cli.ParseFormat(resolveFlags.format)
	if err != nil {
		return err
	}

	e, err := newEnv(setupOptions{quiet: true})
	if err != nil {
		return err
	}
	defer e.close()

	dir, err := e.storeDir(resolveFlags.dir)
	if err != nil {
		return err
	}
	if _, _, err := e.loadDir(cmd.Context(), dir); err != nil {
		return cli.NewCommandError("resolve", err)
	}

	eff, err := e.engine.Resolve(cmd.Context(), resolveFlags.org, resolveFlags.branch, resolveFlags.user)
	if err != nil {
		return cli.NewCommandError("resolve", err)
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), cli.NewResolveReport(eff))
}
