package validator

import (
	"errors"
	"strings"
	"testing"

	"mercator-hq/rulescript/pkg/rsl/ast"
	rslErrors "mercator-hq/rulescript/pkg/rsl/errors"
	"mercator-hq/rulescript/pkg/rsl/parser"
)

func parse(t *testing.T, src string) *ast.Script {
	t.Helper()
	script, _ := parser.NewParser().Parse(src, "test")
	return script
}

func errorList(t *testing.T, err error) *rslErrors.ErrorList {
	t.Helper()
	var errList *rslErrors.ErrorList
	if !errors.As(err, &errList) {
		t.Fatalf("error is %T, want *errors.ErrorList", err)
	}
	return errList
}

func TestValidator_Validate_Valid(t *testing.T) {
	src := `MODULE [Scheduling]:
  RULESET [Service Territory]:
    RULE [Max Travel Time]:
      = IF(branch_type == "urban", 30 minutes)
      = 45 minutes
    END
    RULE [Closing]:
      = IF(now >= TIME(17, 30, 0), "closed", "open")
    END
  END
END
MODULE [Staffing]:
  RULESET [Coverage]:
    RULE [Minimum Staff]:
      = 3
    END
  END
END
`
	if err := NewValidator().Validate(parse(t, src)); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestStructuralValidator_Validate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
	}{
		{
			name:     "one extra opener",
			input:    "MODULE [M]\nRULESET [S]\nRULE [R]\n= 1\nEND\nEND\n",
			contains: []string{"MODULE [M] is never closed", "3 opening keyword(s)", "but 2 END(s)"},
		},
		{
			name:     "one extra END",
			input:    "MODULE [M]\nRULESET [S]\nRULE [R]\n= 1\nEND\nEND\nEND\nEND\n",
			contains: []string{"3 opening keyword(s)", "but 4 END(s)"},
		},
		{
			name:     "no module",
			input:    "===\nnothing here\n===\n",
			contains: []string{"script contains no MODULE"},
		},
		{
			name:     "module without ruleset",
			input:    "MODULE [M]\nEND\n",
			contains: []string{"MODULE [M] contains no RULESET"},
		},
		{
			name:     "rule without body",
			input:    "MODULE [M]\nRULESET [S]\nRULE [R]\nEND\nEND\nEND\n",
			contains: []string{"RULE [R] has no body lines"},
		},
		{
			name:     "duplicate module",
			input:    "MODULE [M]\nRULESET [S]\nRULE [R]\n= 1\nEND\nEND\nEND\nMODULE [M]\nRULESET [T]\nRULE [R]\n= 1\nEND\nEND\nEND\n",
			contains: []string{"duplicate MODULE name [M] at top level (first defined at line 1)"},
		},
		{
			name:     "duplicate ruleset",
			input:    "MODULE [M]\nRULESET [S]\nRULE [A]\n= 1\nEND\nEND\nRULESET [S]\nRULE [B]\n= 1\nEND\nEND\nEND\n",
			contains: []string{"duplicate RULESET name [S] in MODULE [M]"},
		},
		{
			name:     "duplicate rule",
			input:    "MODULE [M]\nRULESET [S]\nRULE [R]\n= 1\nEND\nRULE [R]\n= 2\nEND\nEND\nEND\n",
			contains: []string{"duplicate RULE name [R] in RULESET [S]"},
		},
		{
			name:     "same key across modules",
			input:    "MODULE [A]\nRULESET [S]\nRULE [R]\n= 1\nEND\nEND\nEND\nMODULE [B]\nRULESET [S]\nRULE [R]\n= 2\nEND\nEND\nEND\n",
			contains: []string{"RULE [R] in RULESET [S] is already defined in MODULE [A] at line 3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewStructuralValidator().Validate(parse(t, tt.input))
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			errList := errorList(t, err)
			for _, e := range errList.Errors {
				if e.Type != rslErrors.ErrorTypeStructural {
					t.Errorf("Type = %q, want %q", e.Type, rslErrors.ErrorTypeStructural)
				}
			}
			msg := errList.Error()
			for _, want := range tt.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("errors = %q, want to contain %q", msg, want)
				}
			}
		})
	}
}

func TestStructuralValidator_CollectsIndependentErrors(t *testing.T) {
	src := "MODULE [Empty]\nEND\nMODULE [M]\nRULESET [S]\nRULE [R]\nEND\nRULE [R]\n= 1\nEND\nEND\n"

	err := NewStructuralValidator().Validate(parse(t, src))
	errList := errorList(t, err)

	// MODULE [Empty] has no ruleset, RULE [R] has no body, duplicate RULE [R],
	// MODULE [M] never closed, and the open/END imbalance
	if errList.Count() != 5 {
		t.Errorf("Count() = %d, want 5: %v", errList.Count(), errList)
	}
}

func TestLiteralValidator_Validate(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantErr  bool
		contains string
	}{
		{"number ordering", "= a > 3", false, ""},
		{"duration ordering", "= wait <= 30 minutes", false, ""},
		{"time ordering", "= now < TIME(9, 0, 0)", false, ""},
		{"string equality", `= a == "x"`, false, ""},
		{"string ordering", `= a > "x"`, true, `operator > cannot be applied to string literal "x"`},
		{"boolean ordering", "= TRUE <= a", true, "boolean literal TRUE"},
		{"grouped string ordering", `= a < ("x")`, true, "string literal"},
		{"time two arguments", "= TIME(9, 0)", true, "expected 3 arguments, got 2"},
		{"time hour out of range", "= TIME(24, 0, 0)", true, "hour must be a whole number between 0 and 23"},
		{"time minute out of range", "= TIME(9, 60, 0)", true, "minute must be a whole number between 0 and 59"},
		{"time fractional second", "= TIME(9, 0, 1.5)", true, "second must be a whole number"},
		{"time identifier argument", "= TIME(h, 0, 0)", true, "hour must be a number literal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "MODULE [M]\nRULESET [S]\nRULE [R]\n" + tt.line + "\nEND\nEND\nEND\n"
			err := NewLiteralValidator().Validate(parse(t, src))

			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}

			errList := errorList(t, err)
			if errList.Errors[0].Type != rslErrors.ErrorTypeSyntax {
				t.Errorf("Type = %q, want %q", errList.Errors[0].Type, rslErrors.ErrorTypeSyntax)
			}
			if !strings.Contains(errList.Errors[0].Message, tt.contains) {
				t.Errorf("Message = %q, want to contain %q", errList.Errors[0].Message, tt.contains)
			}
		})
	}
}

func TestValidator_Validate_MergesPasses(t *testing.T) {
	src := "MODULE [M]\nEND\nMODULE [N]\nRULESET [S]\nRULE [R]\n= a > \"x\"\nEND\nEND\nEND\n"

	errList := errorList(t, NewValidator().Validate(parse(t, src)))
	if !errList.HasErrorType(rslErrors.ErrorTypeStructural) {
		t.Error("missing StructuralError")
	}
	if !errList.HasErrorType(rslErrors.ErrorTypeSyntax) {
		t.Error("missing SyntaxError")
	}
}
