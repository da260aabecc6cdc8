package fix

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"lintls/internal/diag"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// SkippedFix captures a fix left out of a selection with a reason.
type SkippedFix struct {
	Rule          string
	Title         string
	Applicability diag.Applicability
	Reason        string
}

// Selection is the outcome of Select.
type Selection struct {
	Applied []Fix
	Skipped []SkippedFix
}

// Select chooses fixes to write to disk. Unlike Merge it does not fail on
// conflicts: a fix overlapping an earlier selected one is skipped and can be
// picked up by a later run. Display-only fixes are never selected.
func Select(fixes []Fix, filter Filter) Selection {
	sel := Selection{
		Applied: make([]Fix, 0, len(fixes)),
		Skipped: make([]SkippedFix, 0),
	}
	var accepted []LocatedEdit
	for _, f := range fixes {
		skip := func(reason string) {
			sel.Skipped = append(sel.Skipped, SkippedFix{
				Rule:          f.Rule,
				Title:         f.Title,
				Applicability: f.Applicability,
				Reason:        reason,
			})
		}
		if f.Applicability == diag.DisplayOnly || (filter == FilterSafeOnly && !f.Applicability.IsSafe()) {
			skip(fmt.Sprintf("applicability is %s", f.Applicability))
			continue
		}
		if len(f.Edits) == 0 {
			skip("fix has no edits")
			continue
		}
		if err := checkConflicts(accepted, f); err != nil {
			skip("conflicts with previously selected edits")
			continue
		}
		accepted = append(accepted, f.Edits...)
		sel.Applied = append(sel.Applied, f)
	}
	return sel
}

// Edits flattens the selected fixes.
func (s Selection) Edits() []LocatedEdit {
	var out []LocatedEdit
	for _, f := range s.Applied {
		out = append(out, f.Edits...)
	}
	return out
}

// ApplyEdits applies non-overlapping edits to content and returns the new buffer.
// Edits are applied back to front so earlier offsets stay valid; inserts at
// the same offset keep their relative order.
func ApplyEdits(content []byte, edits []LocatedEdit) ([]byte, error) {
	order := make([]int, len(edits))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := edits[order[i]], edits[order[j]]
		if a.Span.Start != b.Span.Start {
			return a.Span.Start > b.Span.Start
		}
		return order[i] > order[j]
	})

	working := append([]byte(nil), content...)
	for n, idx := range order {
		edit := edits[idx]
		start, end := int(edit.Span.Start), int(edit.Span.End)
		if start < 0 || end < start || end > len(working) {
			return nil, fmt.Errorf("%w: %s", ErrEditOutOfRange, edit.Span)
		}
		if n > 0 {
			// the previous edit lies to the right and must not start inside this one
			prev := edits[order[n-1]]
			if prev.Span.Overlaps(edit.Span) {
				return nil, fmt.Errorf("%w: %s and %s", ErrOverlappingEdits, edit.Span, prev.Span)
			}
		}
		if edit.OldText != "" && string(working[start:end]) != edit.OldText {
			return nil, fmt.Errorf("existing text at %s does not match expected content", edit.Span)
		}
		suffix := append([]byte(nil), working[end:]...)
		working = append(append(working[:start], edit.NewText...), suffix...)
	}
	return working, nil
}

// WriteFile atomically replaces path with content, keeping the file mode.
func WriteFile(path string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".lintls-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
