// Package lint is the analysis engine: it runs the enabled rules over one
// file and returns diagnostics with their fixes.
package lint

import (
	"context"

	"fortio.org/safecast"

	"lintls/internal/diag"
	"lintls/internal/rules"
	"lintls/internal/source"
)

type ruleFunc func(c *checker)

var ruleFuncs = map[string]ruleFunc{
	rules.UnsortedImports:       checkUnsortedImports,
	rules.MissingRequiredImport: checkRequiredImports,
	rules.NoneComparison:        checkNoneComparison,
	rules.TrailingWhitespace:    checkTrailingWhitespace,
	rules.MissingNewlineAtEOF:   checkMissingNewline,
	rules.CommentedOutCode:      checkCommentedOutCode,
}

// Check runs every enabled rule in registry order. Diagnostics come back in
// discovery order: per rule in source order, rules in registry order.
func Check(ctx context.Context, file *source.File, settings rules.Settings) ([]diag.Diagnostic, error) {
	c := &checker{
		file:     file,
		settings: settings,
		bag:      diag.NewBag(0),
	}
	for _, r := range rules.All() {
		if !settings.Enabled(r.Code) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if fn := ruleFuncs[r.Code]; fn != nil {
			fn(c)
		}
	}
	return c.bag.Items(), nil
}

type checker struct {
	file     *source.File
	settings rules.Settings
	bag      *diag.Bag
	claimed  []source.Span
	imports  *importLayout
}

// Report implements diag.Reporter. A fix whose edits overlap a fix reported
// earlier in the run is detached; the diagnostic itself is kept.
func (c *checker) Report(d diag.Diagnostic) {
	if d.Fix != nil {
		if c.overlapsClaimed(d.Fix.Edits) {
			d.Fix = nil
		} else {
			for _, e := range d.Fix.Edits {
				c.claimed = append(c.claimed, e.Span)
			}
		}
	}
	c.bag.Add(d)
}

func (c *checker) overlapsClaimed(edits []diag.TextEdit) bool {
	for _, e := range edits {
		for _, sp := range c.claimed {
			if sp.Overlaps(e.Span) {
				return true
			}
		}
	}
	return false
}

func (c *checker) span(start, end uint32) source.Span {
	return source.Span{File: c.file.ID, Start: start, End: end}
}

// off converts an in-line byte index to a file offset delta.
func off(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return 0
	}
	return v
}
