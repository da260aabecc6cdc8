// Package fuzztests houses Go fuzz harnesses for the linter and the fix
// pipeline. They feed arbitrary bytes through lint.Check and the fix engine
// and check that nothing panics, hangs, or produces edits that cannot be
// applied together.
package fuzztests
