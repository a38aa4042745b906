/*
Package cli provides command-line interface utilities for Clarion.

The cli package includes output formatters, progress reporters, and common CLI
helpers used by the clarion command.

Output Formatting:

The cli package supports multiple output formats (text, JSON, CSV) for
displaying command results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

CSV output is available for types that implement CSVRecorder, such as
report listings.

Progress Reporting:

For batch analysis over many files, use the progress reporter:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(int64(len(files)))
	for i, f := range files {
		// Analyze f
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown

Exit Semantics:

Commands that gate on trust return a ScoreThresholdError when an analyzed
file scores below the configured floor, so scripts can branch on the exit
code.
*/
package cli
