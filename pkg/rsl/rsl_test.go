package rsl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	rslErrors "mercator-hq/rulescript/pkg/rsl/errors"
)

func readScript(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) failed: %v", path, err)
	}
	return string(data)
}

// TestCompile_ValidScripts compiles every script under testdata/valid.
func TestCompile_ValidScripts(t *testing.T) {
	paths, err := filepath.Glob("testdata/valid/*.rules")
	if err != nil || len(paths) == 0 {
		t.Fatalf("no valid scripts found: %v", err)
	}

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			script, err := Compile(readScript(t, path), path)
			if err != nil {
				t.Fatalf("Compile() failed: %v", err)
			}
			if len(script.Rules()) == 0 {
				t.Error("Compile() produced no rules")
			}
		})
	}
}

func TestCompile_OrgScript(t *testing.T) {
	script, err := Compile(readScript(t, "testdata/valid/org.rules"), "org/acme")
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}

	if len(script.Modules) != 2 {
		t.Errorf("len(Modules) = %d, want 2", len(script.Modules))
	}
	if got := len(script.Rules()); got != 7 {
		t.Errorf("len(Rules()) = %d, want 7", got)
	}
	escalate := script.Module("Customer Handling").Child("Escalation").Child("Escalate Complaint")
	if escalate == nil || len(escalate.Lines) != 2 {
		t.Fatal("multi-line IF not parsed as a single line before the fallback")
	}
	if cond := escalate.Lines[0].Condition(); cond == nil {
		t.Error("multi-line IF does not govern its line")
	}
}

func TestCompile_InvalidScripts(t *testing.T) {
	tests := []struct {
		file      string
		wantTypes []rslErrors.ErrorType
		wantLines []int
	}{
		{
			file:      "missing-end.rules",
			wantTypes: []rslErrors.ErrorType{rslErrors.ErrorTypeStructural, rslErrors.ErrorTypeStructural},
			wantLines: []int{1, 1},
		},
		{
			file:      "no-module.rules",
			wantTypes: []rslErrors.ErrorType{rslErrors.ErrorTypeStructural},
			wantLines: []int{1},
		},
		{
			file: "many-errors.rules",
			wantTypes: []rslErrors.ErrorType{
				rslErrors.ErrorTypeSyntax,
				rslErrors.ErrorTypeSyntax,
				rslErrors.ErrorTypeStructural,
				rslErrors.ErrorTypeSyntax,
				rslErrors.ErrorTypeSyntax,
			},
			wantLines: []int{2, 4, 6, 7, 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join("testdata/invalid", tt.file)
			_, errs := NewCompiler().Compile(readScript(t, path), path)

			if errs.Count() != len(tt.wantTypes) {
				t.Fatalf("Count() = %d, want %d: %v", errs.Count(), len(tt.wantTypes), errs)
			}
			for i, e := range errs.Errors {
				if e.Type != tt.wantTypes[i] {
					t.Errorf("Errors[%d].Type = %q, want %q (%s)", i, e.Type, tt.wantTypes[i], e.Message)
				}
				if e.Location.Line != tt.wantLines[i] {
					t.Errorf("Errors[%d] line = %d, want %d (%s)", i, e.Location.Line, tt.wantLines[i], e.Message)
				}
				if e.Context == "" {
					t.Errorf("Errors[%d] has no source context", i)
				}
			}
		})
	}
}

func TestCompile_WellFormedNestingCompiles(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"minimal", "MODULE [M]\nRULESET [S]\nRULE [R]\n= 1\nEND\nEND\nEND"},
		{"no colons lowercase", "module [M]\nruleset [S]\nrule [R]\n= 1\nend\nend\nend\n"},
		{"many rules", "MODULE [M]\nRULESET [S]\nRULE [A]\n= 1\nEND\nRULE [B]\n= 2\nEND\nRULE [C]\n= 3\nEND\nEND\nEND\n"},
		{"bare expression lines", "MODULE [M]\nRULESET [S]\nRULE [R]\nIF(a, 1)\n2\nEND\nEND\nEND\n"},
		{"crlf line endings", "MODULE [M]\r\nRULESET [S]\r\nRULE [R]\r\n= 1\r\nEND\r\nEND\r\nEND\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile(tt.src, ""); err != nil {
				t.Errorf("Compile() failed: %v", err)
			}
		})
	}
}

func TestCompile_ExtraOpenerReportsCounts(t *testing.T) {
	src := "MODULE [M]\nRULESET [S]\nRULE [R]\n= 1\nEND\nRULE [Q]\n= 2\nEND\nEND\n"
	// One END is missing for MODULE [M]
	_, errs := NewCompiler().Compile(src, "")

	found := false
	for _, e := range errs.ByType(rslErrors.ErrorTypeStructural) {
		if strings.Contains(e.Message, "4 opening keyword(s)") && strings.Contains(e.Message, "3 END(s)") {
			found = true
		}
	}
	if !found {
		t.Errorf("no StructuralError reporting 4 openers and 3 ENDs: %v", errs)
	}
}

func TestCompile_ZeroModules(t *testing.T) {
	tests := []string{
		"",
		"RULESET [S]\nRULE [R]\n= 1\nEND\nEND\n",
		"= 1\n",
	}

	for _, src := range tests {
		_, errs := NewCompiler().Compile(src, "")
		found := false
		for _, e := range errs.ByType(rslErrors.ErrorTypeStructural) {
			if strings.Contains(e.Message, "no MODULE") {
				found = true
			}
		}
		if !found {
			t.Errorf("Compile(%q) missing 'no MODULE' StructuralError: %v", src, errs)
		}
	}
}

func TestCompiler_WithMaxScriptBytes(t *testing.T) {
	src := "MODULE [M]\nRULESET [S]\nRULE [R]\n= 1\nEND\nEND\nEND\n"

	script, errs := NewCompiler().WithMaxScriptBytes(10).Compile(src, "big")
	if script != nil {
		t.Error("Compile() returned a script for an oversized input")
	}
	if errs.Count() != 1 || !strings.Contains(errs.Errors[0].Message, "exceeding the limit of 10 bytes") {
		t.Errorf("errors = %v, want size limit error", errs)
	}
}

func BenchmarkCompile(b *testing.B) {
	src := readScript(b, "testdata/valid/org.rules")
	c := NewCompiler()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, errs := c.Compile(src, "bench"); errs.HasErrors() {
			b.Fatal(errs)
		}
	}
}
