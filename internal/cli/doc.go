// Package cli implements the specfold command line interface.
//
// Commands follow a uniform shape: a New*Command constructor wiring
// cobra flags, a run* function doing the work, and an OutputFormatter
// that renders either human text or a JSON envelope. Domain failures
// (unresolved conflicts, invalid documents) exit 1; command errors
// (bad paths, missing histories) exit 2.
//
// Diagnostic logging goes to stderr through zap so JSON output on
// stdout stays parseable.
package cli
