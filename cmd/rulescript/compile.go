package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/rulescript/pkg/cli"
	"mercator-hq/rulescript/pkg/policy/scope"
	"mercator-hq/rulescript/pkg/policy/store"
)

var compileFlags struct {
	file   string
	scope  string
	format string
}

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Test-compile a rule script",
	Long: `Compile a rule script and print every diagnostic with its source excerpt.

The script is lexed, parsed and validated without being stored. All problems
are reported at once: lexical errors, malformed names or IF/TIME calls,
unbalanced END lines, missing children and duplicate names.

The scope defaults to the file's place in a script directory
(<dir>/branch/north.rules compiles as branch:north) or org:<file name>.

Examples:
  # Compile a file
  rulescript compile --file rules/org/acme.rules

  # Compile from stdin as a user script
  cat draft.rules | rulescript compile --file - --scope user:alice

  # JSON output for editors and CI
  rulescript compile --file rules/org/acme.rules --format json`,
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileFlags.file, "file", "f", "", "script file to compile (- for stdin)")
	compileCmd.Flags().StringVarP(&compileFlags.scope, "scope", "s", "", "scope to compile as, e.g. org:acme")
	compileCmd.Flags().StringVar(&compileFlags.format, "format", "text", "output format: text, json")
}

func runCompile(cmd *cobra.Command, args []string) error {
	if compileFlags.file == "" {
		return cli.NewConfigError("file", "--file is required")
	}
	format, err := cli.ParseFormat(compileFlags.format)
	if err != nil {
		return err
	}

	text, err := readInput(cmd, compileFlags.file)
	if err != nil {
		return cli.NewCommandError("compile", err)
	}

	desc, err := compileScope(compileFlags.scope, compileFlags.file)
	if err != nil {
		return cli.NewConfigError("scope", err.Error())
	}

	e, err := newEnv(setupOptions{quiet: true})
	if err != nil {
		return err
	}
	defer e.close()

	res, err := e.engine.Compile(cmd.Context(), desc.Type, desc.ID, text)
	if err != nil {
		return cli.NewCommandError("compile", err)
	}

	source := compileFlags.file
	if source == "-" {
		source = desc.String()
	}
	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), cli.NewCompileReport(source, res)); err != nil {
		return err
	}

	if !res.OK {
		return cli.NewCommandError("compile", fmt.Errorf("%s has %d diagnostic(s)", source, len(res.Diagnostics)))
	}
	return nil
}

// compileScope picks the scope for a compile: the --scope flag, the
// script's position in a store directory, or org:<base name>.
func compileScope(flag, file string) (scope.Descriptor, error) {
	if flag != "" {
		return scope.ParseDescriptor(flag)
	}
	if file == "-" {
		return scope.New(scope.Org, "stdin"), nil
	}

	// <dir>/<type>/<id>.rules
	dir := filepath.Dir(filepath.Dir(file))
	if desc, ok := store.NewDirStore(dir, nil).Descriptor(file); ok {
		return desc, nil
	}
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return scope.New(scope.Org, base), nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
