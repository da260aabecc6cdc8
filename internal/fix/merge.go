package fix

import (
	"fmt"
)

// Filter selects which fixes take part in a merge.
type Filter uint8

const (
	// FilterSafeOnly keeps only fixes classified diag.Safe.
	FilterSafeOnly Filter = iota
	// FilterAll keeps every fix.
	FilterAll
)

func (f Filter) String() string {
	if f == FilterAll {
		return "all"
	}
	return "safe-only"
}

// EditSet is the merged, version-stamped list of edits for one document.
type EditSet struct {
	URI     string
	Version int32
	Edits   []LocatedEdit
}

// Merge flattens the fixes that pass filter into one edit set.
//
// Edits keep fix order. A nil set with a nil error means there is nothing to
// apply. Surviving edits from different fixes must not overlap and all
// surviving fixes must belong to the same document version; otherwise the
// merge fails and no edits are returned.
func Merge(fixes []Fix, filter Filter) (*EditSet, error) {
	var set *EditSet
	for _, f := range fixes {
		if filter == FilterSafeOnly && !f.Applicability.IsSafe() {
			continue
		}
		if len(f.Edits) == 0 {
			continue
		}
		if set == nil {
			set = &EditSet{URI: f.URI, Version: f.Version}
		} else if f.URI != set.URI || f.Version != set.Version {
			return nil, fmt.Errorf("%w: %s@%d and %s@%d", ErrVersionMismatch, set.URI, set.Version, f.URI, f.Version)
		}
		if err := checkConflicts(set.Edits, f); err != nil {
			return nil, err
		}
		set.Edits = append(set.Edits, f.Edits...)
	}
	return set, nil
}

func checkConflicts(accepted []LocatedEdit, f Fix) error {
	for _, prev := range accepted {
		for _, e := range f.Edits {
			if prev.Span.Overlaps(e.Span) {
				return fmt.Errorf("%w: %s fix at %s conflicts with %s", ErrOverlappingEdits, f.Rule, e.Span, prev.Span)
			}
		}
	}
	return nil
}
