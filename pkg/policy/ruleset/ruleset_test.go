package ruleset

import (
	"os"
	"testing"

	"mercator-hq/rulescript/pkg/policy/scope"
	"mercator-hq/rulescript/pkg/rsl"
)

func compileFile(t *testing.T, desc scope.Descriptor, path string) *CompiledRuleSet {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) failed: %v", path, err)
	}
	return compileText(t, desc, string(data))
}

func compileText(t *testing.T, desc scope.Descriptor, text string) *CompiledRuleSet {
	t.Helper()
	script, err := rsl.Compile(text, desc.String())
	if err != nil {
		t.Fatalf("Compile(%s) failed: %v", desc, err)
	}
	rs, err := New(desc, 0, script)
	if err != nil {
		t.Fatalf("New(%s) failed: %v", desc, err)
	}
	return rs
}

func fixtures(t *testing.T) (org, branch, user *CompiledRuleSet) {
	org = compileFile(t, scope.New(scope.Org, "acme"), "../../rsl/testdata/valid/org.rules")
	branch = compileFile(t, scope.New(scope.Branch, "north"), "../../rsl/testdata/valid/branch.rules")
	user = compileFile(t, scope.New(scope.User, "alice"), "../../rsl/testdata/valid/user.rules")
	return org, branch, user
}

func TestNew(t *testing.T) {
	org, _, _ := fixtures(t)

	if org.Len() != 7 {
		t.Errorf("Len() = %d, want 7", org.Len())
	}

	wantRulesets := []string{"Service Territory", "Branch Type Specific", "Personal Preferences", "Escalation"}
	got := org.Rulesets()
	if len(got) != len(wantRulesets) {
		t.Fatalf("Rulesets() = %v, want %v", got, wantRulesets)
	}
	for i := range wantRulesets {
		if got[i] != wantRulesets[i] {
			t.Errorf("Rulesets()[%d] = %q, want %q", i, got[i], wantRulesets[i])
		}
	}

	rule, ok := org.Get(RuleKey{Ruleset: "Escalation", Rule: "Escalate Complaint"})
	if !ok {
		t.Fatal("Get(Escalation/Escalate Complaint) not found")
	}
	if rule.Module != "Customer Handling" {
		t.Errorf("Module = %q, want %q", rule.Module, "Customer Handling")
	}
}

func TestResolve_OrgOnly(t *testing.T) {
	org, _, _ := fixtures(t)

	eff, err := Resolve(org, nil, nil)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	if eff.Len() != org.Len() {
		t.Fatalf("Len() = %d, want %d", eff.Len(), org.Len())
	}
	orgKeys := org.Keys()
	for i, entry := range eff.Entries() {
		if entry.Key != orgKeys[i] {
			t.Errorf("Entries()[%d].Key = %v, want %v", i, entry.Key, orgKeys[i])
		}
		if entry.ContributingScope != scope.Org {
			t.Errorf("%v ContributingScope = %s, want ORG", entry.Key, entry.ContributingScope)
		}
		want, _ := org.Get(entry.Key)
		if entry.Rule != want {
			t.Errorf("%v Rule is not the org rule", entry.Key)
		}
	}
}

func TestResolve_BranchOverridesRuleset(t *testing.T) {
	org, branch, _ := fixtures(t)

	eff, err := Resolve(org, branch)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	if eff.Len() != org.Len() {
		t.Errorf("Len() = %d, want %d", eff.Len(), org.Len())
	}

	for _, entry := range eff.Entries() {
		want := scope.Org
		if entry.Key.Ruleset == "Service Territory" {
			want = scope.Branch
		}
		if entry.ContributingScope != want {
			t.Errorf("%v ContributingScope = %s, want %s", entry.Key, entry.ContributingScope, want)
		}
	}

	// The whole rule is replaced, not merged line by line
	entry, _ := eff.Lookup("Service Territory", "Max Travel Time")
	branchRule, _ := branch.Get(RuleKey{Ruleset: "Service Territory", Rule: "Max Travel Time"})
	if entry.Rule != branchRule {
		t.Error("Max Travel Time is not the branch rule")
	}
	if entry.Source != branch.Scope {
		t.Errorf("Source = %v, want %v", entry.Source, branch.Scope)
	}
}

func TestResolve_UserOverridesOneRule(t *testing.T) {
	org, branch, user := fixtures(t)

	base, err := Resolve(org, branch)
	if err != nil {
		t.Fatalf("Resolve(org, branch) failed: %v", err)
	}
	eff, err := Resolve(org, branch, user)
	if err != nil {
		t.Fatalf("Resolve(org, branch, user) failed: %v", err)
	}

	target := RuleKey{Ruleset: "Personal Preferences", Rule: "Preferred Start"}
	for _, entry := range eff.Entries() {
		if entry.Key == target {
			if entry.ContributingScope != scope.User {
				t.Errorf("%v ContributingScope = %s, want USER", entry.Key, entry.ContributingScope)
			}
			continue
		}
		before, _ := base.Get(entry.Key)
		if entry.ContributingScope != before.ContributingScope {
			t.Errorf("%v ContributingScope = %s, want %s", entry.Key, entry.ContributingScope, before.ContributingScope)
		}
	}

	summary := eff.Summary()
	if summary[scope.User] != 1 || summary[scope.Branch] != 2 || summary[scope.Org] != 4 {
		t.Errorf("Summary() = %v, want USER:1 BRANCH:2 ORG:4", summary)
	}
}

func TestResolve_OrderIndependent(t *testing.T) {
	org, branch, user := fixtures(t)

	a, err := Resolve(org, branch, user)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	b, err := Resolve(user, org, branch)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	if a.Len() != b.Len() {
		t.Fatalf("Len() = %d vs %d", a.Len(), b.Len())
	}
	for _, key := range a.Keys() {
		ea, _ := a.Get(key)
		eb, ok := b.Get(key)
		if !ok || ea.ContributingScope != eb.ContributingScope || ea.Rule != eb.Rule {
			t.Errorf("%v differs between argument orders", key)
		}
	}
}

func TestResolve_FirstSeenOrder(t *testing.T) {
	org := compileText(t, scope.New(scope.Org, "o"),
		"MODULE [M]\nRULESET [S]\nRULE [A]\n= 1\nEND\nRULE [B]\n= 2\nEND\nEND\nEND\n")
	user := compileText(t, scope.New(scope.User, "u"),
		"MODULE [M]\nRULESET [T]\nRULE [C]\n= 3\nEND\nEND\nRULESET [S]\nRULE [A]\n= 4\nEND\nEND\nEND\n")

	eff, err := Resolve(org, user)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	want := []RuleKey{{"S", "A"}, {"S", "B"}, {"T", "C"}}
	got := eff.Keys()
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestResolve_Errors(t *testing.T) {
	org, _, _ := fixtures(t)
	other := compileText(t, scope.New(scope.Org, "other"), "MODULE [M]\nRULESET [S]\nRULE [R]\n= 1\nEND\nEND\nEND\n")

	if _, err := Resolve(org, other); err == nil {
		t.Error("Resolve() with two ORG sets: expected error")
	}

	eff, err := Resolve()
	if err != nil {
		t.Fatalf("Resolve() with no sets failed: %v", err)
	}
	if eff.Len() != 0 {
		t.Errorf("Len() = %d, want 0", eff.Len())
	}
}
