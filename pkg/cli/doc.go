/*
Package cli provides command-line interface utilities for rulescript.

The cli package includes output formatters, result reports, and common CLI
helpers used by the rulescript command.

Output Formatting:

Reports render as text for people or JSON for tooling:

	format, err := cli.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	report := cli.NewCompileReport(path, result)
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, report); err != nil {
		return err
	}

Text output of diagnostics follows the compiler layout:

	org.rules:2:3: SyntaxError: unknown keyword "RULSET"
	  |
	   1 | MODULE [Scheduling]:
	-> 2 |   RULSET [Service Territory]:
	     |   ^
	   3 |     RULE [Max Travel Time]:
	  |
	  = suggestion: Did you mean 'RULESET'?

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
