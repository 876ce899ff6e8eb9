package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"mercator-hq/rulescript/pkg/cli"
	"mercator-hq/rulescript/pkg/policy/scope"
)

const testDir = "testdata/rules"

// newTestCommand returns a command carrying a context and capturing output.
func newTestCommand(t *testing.T, stdin string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetIn(strings.NewReader(stdin))

	cfgFile = "testdata/rulescript.yaml"
	t.Setenv("RULESCRIPT_STORE_DIR", "")
	return cmd, out
}

func TestCompileScope(t *testing.T) {
	tests := []struct {
		flag string
		file string
		want scope.Descriptor
	}{
		{"", "testdata/rules/branch/north.rules", scope.New(scope.Branch, "north")},
		{"", "testdata/broken.rules", scope.New(scope.Org, "broken")},
		{"user:alice", "testdata/broken.rules", scope.New(scope.User, "alice")},
		{"", "-", scope.New(scope.Org, "stdin")},
	}

	for _, tt := range tests {
		t.Run(tt.file+tt.flag, func(t *testing.T) {
			got, err := compileScope(tt.flag, tt.file)
			if err != nil {
				t.Fatalf("compileScope() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("compileScope() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := compileScope("team:x", "a.rules"); err == nil {
		t.Error("compileScope() with unknown scope type expected error")
	}
}

func TestRunCompile(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		format   string
		wantErr  bool
		contains []string
	}{
		{
			name:     "valid script",
			file:     "testdata/rules/org/acme.rules",
			format:   "text",
			contains: []string{"✓", "7 rule(s) for ORG:acme"},
		},
		{
			name:     "misspelled keyword",
			file:     "testdata/rules/user/bob.rules",
			format:   "text",
			wantErr:  true,
			contains: []string{"Did you mean 'RULESET'?"},
		},
		{
			name:     "missing END",
			file:     "testdata/broken.rules",
			format:   "text",
			wantErr:  true,
			contains: []string{"StructuralError", "MODULE [Scheduling] is never closed"},
		},
		{
			name:     "json output",
			file:     "testdata/broken.rules",
			format:   "json",
			wantErr:  true,
			contains: []string{`"diagnostics"`, `"kind": "StructuralError"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, out := newTestCommand(t, "")
			compileFlags.file = tt.file
			compileFlags.scope = ""
			compileFlags.format = tt.format

			err := runCompile(cmd, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("runCompile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && cli.ExitCode(err) != cli.ExitFailure {
				t.Errorf("ExitCode() = %d, want %d", cli.ExitCode(err), cli.ExitFailure)
			}
			for _, want := range tt.contains {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestRunCompile_Stdin(t *testing.T) {
	cmd, out := newTestCommand(t, "MODULE [M]\nRULESET [S]\nRULE [R]\n= 1\nEND\nEND\nEND\n")
	compileFlags.file = "-"
	compileFlags.scope = "branch:south"
	compileFlags.format = "text"

	if err := runCompile(cmd, nil); err != nil {
		t.Fatalf("runCompile() failed: %v", err)
	}
	if !strings.Contains(out.String(), "BRANCH:south") {
		t.Errorf("output = %q, want BRANCH:south", out.String())
	}
}

func TestRunCompile_UsageErrors(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		scope  string
		format string
	}{
		{"no file", "", "", "text"},
		{"bad format", "testdata/broken.rules", "", "yaml"},
		{"bad scope", "testdata/broken.rules", "org", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := newTestCommand(t, "")
			compileFlags.file = tt.file
			compileFlags.scope = tt.scope
			compileFlags.format = tt.format

			err := runCompile(cmd, nil)
			if cli.ExitCode(err) != cli.ExitUsage {
				t.Errorf("runCompile() = %v (exit %d), want exit %d", err, cli.ExitCode(err), cli.ExitUsage)
			}
		})
	}
}

func TestRunResolve(t *testing.T) {
	cmd, out := newTestCommand(t, "")
	resolveFlags.scopeFlags = scopeFlags{dir: testDir, org: "acme", branch: "north", user: "bob"}
	resolveFlags.format = "json"

	if err := runResolve(cmd, nil); err != nil {
		t.Fatalf("runResolve() failed: %v", err)
	}

	var report cli.ResolveReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("Unmarshal() failed: %v\n%s", err, out.String())
	}
	if len(report.Rules) != 7 {
		t.Errorf("len(Rules) = %d, want 7", len(report.Rules))
	}
	if report.Summary["BRANCH"] != 2 {
		t.Errorf("Summary = %v, want BRANCH:2", report.Summary)
	}
	// bob's script does not compile, so the user scope is missing
	if len(report.Missing) != 1 || report.Missing[0] != "USER:bob" {
		t.Errorf("Missing = %v, want [USER:bob]", report.Missing)
	}
}

func TestRunResolve_Errors(t *testing.T) {
	tests := []struct {
		name     string
		flags    scopeFlags
		wantExit int
	}{
		{"no org", scopeFlags{dir: testDir}, cli.ExitUsage},
		{"missing dir", scopeFlags{dir: "testdata/nope", org: "acme"}, cli.ExitUsage},
		{"dir is a file", scopeFlags{dir: "testdata/facts.yaml", org: "acme"}, cli.ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := newTestCommand(t, "")
			resolveFlags.scopeFlags = tt.flags
			resolveFlags.format = "text"

			err := runResolve(cmd, nil)
			if cli.ExitCode(err) != tt.wantExit {
				t.Errorf("runResolve() = %v (exit %d), want exit %d", err, cli.ExitCode(err), tt.wantExit)
			}
		})
	}
}

func TestRunEval(t *testing.T) {
	tests := []struct {
		name    string
		flags   scopeFlags
		ruleset string
		rule    string
		facts   string
		stdin   string
		want    string
	}{
		{
			name:    "branch override",
			flags:   scopeFlags{dir: testDir, org: "acme", branch: "north"},
			ruleset: "Service Territory",
			rule:    "Max Travel Time",
			facts:   "testdata/facts.yaml",
			want:    "= 1 hour (from BRANCH:north, line 4)",
		},
		{
			name:    "org rule",
			flags:   scopeFlags{dir: testDir, org: "acme", branch: "north"},
			ruleset: "Branch Type Specific",
			rule:    "Weekend Staffing",
			facts:   "testdata/facts.yaml",
			want:    "= 2 (from ORG:acme, line 21)",
		},
		{
			name:    "user override with no facts",
			flags:   scopeFlags{dir: testDir, org: "acme", user: "alice"},
			ruleset: "Personal Preferences",
			rule:    "Preferred Start",
			want:    "(from USER:alice, line 4)",
		},
		{
			name:    "facts from stdin",
			flags:   scopeFlags{dir: testDir, org: "acme"},
			ruleset: "Service Territory",
			rule:    "Max Travel Time",
			facts:   "-",
			stdin:   "branch_type: rural\n",
			want:    "(from ORG:acme, line 9)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, out := newTestCommand(t, tt.stdin)
			evalFlags.scopeFlags = tt.flags
			evalFlags.ruleset = tt.ruleset
			evalFlags.rule = tt.rule
			evalFlags.facts = tt.facts
			evalFlags.format = "text"

			if err := runEval(cmd, nil); err != nil {
				t.Fatalf("runEval() failed: %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output = %q, want to contain %q", out.String(), tt.want)
			}
		})
	}
}

func TestRunEval_MissingFact(t *testing.T) {
	cmd, out := newTestCommand(t, "branch_typ: urban\n")
	evalFlags.scopeFlags = scopeFlags{dir: testDir, org: "acme"}
	evalFlags.ruleset = "Service Territory"
	evalFlags.rule = "Max Travel Time"
	evalFlags.facts = "-"
	evalFlags.format = "text"

	err := runEval(cmd, nil)
	if err == nil {
		t.Fatal("runEval() expected error for a missing fact")
	}
	if cli.ExitCode(err) != cli.ExitFailure {
		t.Errorf("ExitCode() = %d, want %d", cli.ExitCode(err), cli.ExitFailure)
	}

	for _, want := range []string{"ReferenceError", `unknown fact "branch_type"`, "org/acme.rules", "->"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunEval_Errors(t *testing.T) {
	tests := []struct {
		name     string
		rule     string
		facts    string
		wantExit int
	}{
		{"no rule", "", "", cli.ExitUsage},
		{"unknown rule", "Nope", "", cli.ExitFailure},
		{"missing facts file", "Max Travel Time", "testdata/none.yaml", cli.ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := newTestCommand(t, "")
			evalFlags.scopeFlags = scopeFlags{dir: testDir, org: "acme"}
			evalFlags.ruleset = "Service Territory"
			evalFlags.rule = tt.rule
			evalFlags.facts = tt.facts
			evalFlags.format = "text"

			err := runEval(cmd, nil)
			if cli.ExitCode(err) != tt.wantExit {
				t.Errorf("runEval() = %v (exit %d), want exit %d", err, cli.ExitCode(err), tt.wantExit)
			}
			var cmdErr *cli.CommandError
			if tt.wantExit == cli.ExitFailure && !errors.As(err, &cmdErr) {
				t.Errorf("error = %T, want *cli.CommandError", err)
			}
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"compile": false, "resolve": false, "eval": false, "watch": false, "version": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out := &bytes.Buffer{}
	versionCmd.SetOut(out)
	versionCmd.Run(versionCmd, nil)

	if !strings.Contains(out.String(), "Rulescript "+Version) {
		t.Errorf("output = %q, want version line", out.String())
	}
}
