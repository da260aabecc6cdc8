package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lintls/internal/diag"
	"lintls/internal/fix"
	"lintls/internal/lint"
	"lintls/internal/rules"
	"lintls/internal/session"
	"lintls/internal/source"
	"lintls/internal/trace"
)

// maxFixPasses bounds re-linting after applying fixes; fixes skipped for
// conflicts in one pass are retried in the next.
const maxFixPasses = 10

var fixCmd = &cobra.Command{
	Use:          "fix [flags] [paths...]",
	Short:        "Apply available fixes to Python files",
	Long:         "Apply the safe fixes of every enabled rule, all fixes with --unsafe, or only the import rules with --organize-imports.",
	SilenceUsage: true,
	RunE:         runFix,
}

func init() {
	fixCmd.Flags().Bool("unsafe", false, "also apply unsafe fixes")
	fixCmd.Flags().Bool("organize-imports", false, "only sort and complete imports")
	fixCmd.Flags().Bool("dry-run", false, "report fixes without writing files")
	fixCmd.Flags().StringSlice("select", nil, "rule codes or prefixes to enable, overriding configuration")
	fixCmd.Flags().String("config", "", "use this lintls.toml instead of discovering one per file")
	fixCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
}

type fixOptions struct {
	settings        *settingsSource
	filter          fix.Filter
	organizeImports bool
	dryRun          bool
	jobs            int
}

type fixResult struct {
	path    string
	applied []fix.Fix
	skipped []fix.SkippedFix
	content []byte
}

func runFix(cmd *cobra.Command, args []string) error {
	unsafe, err := cmd.Flags().GetBool("unsafe")
	if err != nil {
		return err
	}
	organize, err := cmd.Flags().GetBool("organize-imports")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	selectors, err := cmd.Flags().GetStringSlice("select")
	if err != nil {
		return err
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	if organize && len(selectors) > 0 {
		return fmt.Errorf("--organize-imports cannot be combined with --select")
	}

	settings, err := newSettingsSource(configPath, selectors)
	if err != nil {
		return err
	}
	opts := fixOptions{
		settings:        settings,
		filter:          fix.FilterSafeOnly,
		organizeImports: organize,
		dryRun:          dryRun,
		jobs:            jobs,
	}
	if unsafe || organize {
		opts.filter = fix.FilterAll
	}

	timer, err := phaseTimer(cmd)
	if err != nil {
		return err
	}
	defer writeTimings(cmd, timer)

	done := timer.Start("discover")
	paths, err := collectFiles(args)
	if err != nil {
		return err
	}
	done(strconv.Itoa(len(paths)) + " files")
	done = timer.Start("fix")
	results, err := fixFiles(cmd.Context(), paths, opts)
	if err != nil {
		return err
	}
	done("")
	return writeFixReport(cmd.OutOrStdout(), results, opts)
}

func fixFiles(ctx context.Context, paths []string, opts fixOptions) ([]fixResult, error) {
	results := make([]fixResult, len(paths))
	if len(paths) == 0 {
		return results, nil
	}
	ctx, span := trace.Start(ctx, trace.ScopeRequest, "fix")
	defer span.End(strconv.Itoa(len(paths)) + " files")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobCount(opts.jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			res, err := fixOne(gctx, path, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.Fail(err)
		return nil, err
	}
	return results, nil
}

// fixOne lints and fixes path until no selected fix is left or the pass
// limit is reached, then writes the result unless running dry.
func fixOne(ctx context.Context, path string, opts fixOptions) (fixResult, error) {
	ctx, span := trace.Start(ctx, trace.ScopeAnalysis, "file")
	defer span.End(path)

	file, err := loadFile(path)
	if err != nil {
		return fixResult{}, err
	}
	original := file.Content
	settings, codes, err := opts.settings.forFile(path)
	if err != nil {
		return fixResult{}, err
	}
	if opts.organizeImports {
		settings = rules.ForImports(settings, codes)
	}

	res := fixResult{path: path}
	uri := session.PathToURI(path)
	var version int32
	for pass := 0; pass < maxFixPasses; pass++ {
		version++
		doc := fix.Document{URI: uri, Version: version, File: file, Encoding: source.EncodingUTF8}
		fixes, err := fix.Extract(ctx, doc, settings, lint.Check)
		if err != nil {
			return fixResult{}, err
		}
		sel := fix.Select(fixes, opts.filter)
		res.skipped = sel.Skipped
		if len(sel.Applied) == 0 {
			break
		}
		next, err := fix.ApplyEdits(file.Content, sel.Edits())
		if err != nil {
			return fixResult{}, err
		}
		res.applied = append(res.applied, sel.Applied...)
		file = source.NewFile(path, next, file.Flags&source.FileHadBOM)
	}
	res.content = file.Content
	span.WithExtra("applied", strconv.Itoa(len(res.applied)))
	if opts.dryRun || bytes.Equal(original, file.Content) {
		return res, nil
	}
	if err := fix.WriteFile(path, file.Encode()); err != nil {
		return fixResult{}, err
	}
	return res, nil
}

func writeFixReport(w io.Writer, results []fixResult, opts fixOptions) error {
	verb := "Fixed"
	if opts.dryRun {
		verb = "Would fix"
	}
	total, files, unsafeSkipped := 0, 0, 0
	for _, r := range results {
		for _, s := range r.skipped {
			if s.Applicability == diag.Unsafe {
				unsafeSkipped++
			}
		}
		if len(r.applied) == 0 {
			continue
		}
		total += len(r.applied)
		files++
		if _, err := fmt.Fprintf(w, "%s: %d fix(es)\n", r.path, len(r.applied)); err != nil {
			return err
		}
		for _, f := range r.applied {
			if _, err := fmt.Fprintf(w, "  %s %s (%s)\n", f.Rule, f.Title, f.Applicability); err != nil {
				return err
			}
		}
	}
	if total == 0 {
		if _, err := fmt.Fprintln(w, "No fixes applied."); err != nil {
			return err
		}
	} else if _, err := fmt.Fprintf(w, "%s %d error(s) in %d file(s).\n", verb, total, files); err != nil {
		return err
	}
	if unsafeSkipped > 0 && opts.filter == fix.FilterSafeOnly {
		if _, err := fmt.Fprintf(w, "%d unsafe fix(es) available with `lintls fix --unsafe`.\n", unsafeSkipped); err != nil {
			return err
		}
	}
	return nil
}
