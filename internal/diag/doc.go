// Package diag defines the diagnostic model shared by the linter, the fix
// engine, and the language server.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error).
//   - Rule – the stable rule code (see internal/rules) that produced it.
//   - Message – short, actionable text.
//   - Primary – the source.Span pointing to the issue.
//   - Fix – optional remediation.
//
// # Fixes
//
// A Fix carries an Applicability (Safe, Unsafe, DisplayOnly) and a list of
// TextEdit values in byte coordinates of one file. Edits inside one fix never
// overlap. Fixes are data only: internal/fix turns them into located edits
// and merges them into versioned edit sets.
//
// Package diag does no formatting or IO; rendering lives in internal/diagfmt.
package diag
