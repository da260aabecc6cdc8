package fuzztests

import (
	"bytes"
	"context"
	"testing"
	"time"

	"lintls/internal/fix"
	"lintls/internal/lint"
	"lintls/internal/rules"
	"lintls/internal/source"
	"lintls/internal/testkit"
)

const (
	maxFuzzInput = 16 << 10
	checkTimeout = 5 * time.Second
)

func allRules() rules.Settings {
	return rules.DefaultSettings().
		WithRules(rules.NewRuleSet(rules.All()...)).
		WithRequiredImports([]string{"from __future__ import annotations"})
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}

// FuzzCheckInvariants runs every rule and applies every fix at once.
func FuzzCheckInvariants(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		file := source.NewFile("/fuzz/main.py", clampInput(input), source.FileVirtual)
		diagnostics, err := lint.Check(context.Background(), file, allRules())
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if err := testkit.CheckDiagnosticInvariants(file, diagnostics); err != nil {
			t.Fatalf("invariants: %v\ninput: %q", err, input)
		}
		doc := fix.Document{URI: "file:///fuzz/main.py", Version: 1, File: file}
		fixes, err := fix.ForDiagnostics(doc, diagnostics)
		if err != nil {
			t.Fatalf("ForDiagnostics: %v", err)
		}
		set, err := fix.Merge(fixes, fix.FilterAll)
		if err != nil {
			t.Fatalf("Merge: %v", err)
		}
		if set == nil {
			return
		}
		if _, err := fix.ApplyEdits(file.Content, set.Edits); err != nil {
			t.Fatalf("ApplyEdits: %v\ninput: %q", err, input)
		}
	})
}

// FuzzOrganizeImportsIsStable checks that sorting imports twice changes nothing
// the second time.
func FuzzOrganizeImportsIsStable(f *testing.F) {
	addCorpusSeeds(f)
	settings := rules.ForImports(allRules(), nil)
	f.Fuzz(func(t *testing.T, input []byte) {
		content := clampInput(input)
		for pass := 0; pass < 2; pass++ {
			file := source.NewFile("/fuzz/main.py", content, source.FileVirtual)
			diagnostics, err := lint.Check(context.Background(), file, settings)
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			doc := fix.Document{URI: "file:///fuzz/main.py", Version: 1, File: file}
			fixes, err := fix.ForDiagnostics(doc, diagnostics)
			if err != nil {
				t.Fatalf("ForDiagnostics: %v", err)
			}
			set, err := fix.Merge(fixes, fix.FilterAll)
			if err != nil {
				t.Fatalf("Merge: %v", err)
			}
			if set == nil {
				return
			}
			if pass == 1 {
				t.Fatalf("second pass still changes the file: %q", content)
			}
			if content, err = fix.ApplyEdits(file.Content, set.Edits); err != nil {
				t.Fatalf("ApplyEdits: %v", err)
			}
		}
	})
}

// FuzzFixesKeepCRLF checks that fixing a CRLF-only file never introduces a
// bare "\n".
func FuzzFixesKeepCRLF(f *testing.F) {
	addCorpusSeeds(f)
	settings := allRules()
	f.Fuzz(func(t *testing.T, input []byte) {
		content := clampInput(input)
		if !bytes.Contains(content, []byte("\r\n")) || hasBareLF(content) {
			return
		}
		file := source.NewFile("/fuzz/main.py", content, source.FileVirtual)
		diagnostics, err := lint.Check(context.Background(), file, settings)
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		doc := fix.Document{URI: "file:///fuzz/main.py", Version: 1, File: file}
		fixes, err := fix.ForDiagnostics(doc, diagnostics)
		if err != nil {
			t.Fatalf("ForDiagnostics: %v", err)
		}
		set, err := fix.Merge(fixes, fix.FilterAll)
		if err != nil {
			t.Fatalf("Merge: %v", err)
		}
		if set == nil {
			return
		}
		out, err := fix.ApplyEdits(file.Content, set.Edits)
		if err != nil {
			t.Fatalf("ApplyEdits: %v", err)
		}
		if hasBareLF(out) {
			t.Fatalf("fixes introduced a bare LF:\n%q\n->\n%q", content, out)
		}
	})
}

func hasBareLF(content []byte) bool {
	for i, b := range content {
		if b == '\n' && (i == 0 || content[i-1] != '\r') {
			return true
		}
	}
	return false
}

// FuzzCheckNoHang guards against runaway loops in the scanners.
func FuzzCheckNoHang(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		file := source.NewFile("/fuzz/main.py", clampInput(input), source.FileVirtual)
		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = lint.Check(context.Background(), file, allRules())
		}()
		select {
		case <-done:
		case <-time.After(checkTimeout):
			t.Fatalf("Check did not finish within %v on input %q", checkTimeout, input)
		}
	})
}
