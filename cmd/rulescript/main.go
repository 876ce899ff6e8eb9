// Rulescript compiles and evaluates MODULE / RULESET / RULE scripts defined
// at organization, branch and user scope.
//
// Usage:
//
//	# Test-compile a script and print every diagnostic
//	rulescript compile --file rules/org/acme.rules
//
//	# Show the effective rules for a user in a branch
//	rulescript resolve --dir rules --org acme --branch north --user alice
//
//	# Evaluate one rule against a facts file
//	rulescript eval --dir rules --org acme --branch north \
//	    --ruleset "Service Territory" --rule "Max Travel Time" --facts facts.yaml
//
//	# Keep scripts compiled as files change and serve probes, metrics and the decision API
//	rulescript watch --dir rules
//
//	# Show version information
//	rulescript version
package main

func main() {
	Execute()
}
