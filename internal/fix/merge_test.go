package fix

import (
	"errors"
	"testing"

	"lintls/internal/diag"
)

func mixedFixes() []Fix {
	return []Fix{
		testFix("W291", diag.Safe, 3, located(10, 11, "")),
		testFix("E711", diag.Unsafe, 3, located(20, 24, "is")),
		testFix("ERA001", diag.DisplayOnly, 3, located(30, 40, "")),
		testFix("I001", diag.Safe, 3, located(0, 5, "import a\n"), located(5, 9, "")),
	}
}

func TestMergeSafeOnlyDropsUnsafeAndDisplayOnly(t *testing.T) {
	set, err := Merge(mixedFixes(), FilterSafeOnly)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if set == nil {
		t.Fatal("expected an edit set")
	}
	if set.URI != testURI || set.Version != 3 {
		t.Fatalf("unexpected identity %s@%d", set.URI, set.Version)
	}
	want := []LocatedEdit{located(10, 11, ""), located(0, 5, "import a\n"), located(5, 9, "")}
	if len(set.Edits) != len(want) {
		t.Fatalf("expected %d edits, got %d", len(want), len(set.Edits))
	}
	for i := range want {
		if set.Edits[i] != want[i] {
			t.Fatalf("edit %d: got %+v, want %+v", i, set.Edits[i], want[i])
		}
	}
}

func TestMergeAllIsSupersetOfSafeOnly(t *testing.T) {
	fixes := mixedFixes()
	safe, err := Merge(fixes, FilterSafeOnly)
	if err != nil {
		t.Fatalf("merge safe: %v", err)
	}
	all, err := Merge(fixes, FilterAll)
	if err != nil {
		t.Fatalf("merge all: %v", err)
	}
	if len(all.Edits) != 5 {
		t.Fatalf("expected every edit with FilterAll, got %d", len(all.Edits))
	}
	for _, e := range safe.Edits {
		found := false
		for _, a := range all.Edits {
			if a == e {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("safe edit %+v missing from FilterAll result", e)
		}
	}
}

func TestMergeEmptyYieldsNoEdit(t *testing.T) {
	cases := []struct {
		name  string
		fixes []Fix
	}{
		{name: "no fixes"},
		{
			name:  "all filtered out",
			fixes: []Fix{
				testFix("E711", diag.Unsafe, 1, located(0, 1, "x")),
				testFix("ERA001", diag.DisplayOnly, 1, located(2, 3, "")),
			},
		},
		{
			name:  "fixes without edits",
			fixes: []Fix{testFix("W291", diag.Safe, 1)},
		},
	}
	for _, tc := range cases {
		set, err := Merge(tc.fixes, FilterSafeOnly)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if set != nil {
			t.Fatalf("%s: expected no edit, got %+v", tc.name, set)
		}
	}
}

func TestMergeRejectsOverlapAcrossFixes(t *testing.T) {
	fixes := []Fix{
		testFix("I001", diag.Safe, 1, located(0, 10, "import a\n")),
		testFix("W291", diag.Safe, 1, located(8, 9, "")),
	}
	set, err := Merge(fixes, FilterSafeOnly)
	if !errors.Is(err, ErrOverlappingEdits) {
		t.Fatalf("expected ErrOverlappingEdits, got %v", err)
	}
	if set != nil {
		t.Fatal("a failed merge must not return partial edits")
	}

	// the unsafe fix is filtered out first, so SafeOnly has no conflict
	fixes[1].Applicability = diag.Unsafe
	if _, err := Merge(fixes, FilterSafeOnly); err != nil {
		t.Fatalf("unexpected error after filtering: %v", err)
	}
}

func TestMergeRejectsVersionMismatch(t *testing.T) {
	fixes := []Fix{
		testFix("W291", diag.Safe, 1, located(0, 1, "")),
		testFix("W291", diag.Safe, 2, located(5, 6, "")),
	}
	if _, err := Merge(fixes, FilterAll); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestMergeAllowsInsertsAtSameOffset(t *testing.T) {
	fixes := []Fix{
		testFix("I002", diag.Safe, 1, located(0, 0, "import os\n")),
		testFix("I002", diag.Safe, 1, located(0, 0, "import sys\n")),
	}
	set, err := Merge(fixes, FilterAll)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(set.Edits) != 2 || set.Edits[0].NewText != "import os\n" {
		t.Fatalf("unexpected edits %+v", set.Edits)
	}
}
