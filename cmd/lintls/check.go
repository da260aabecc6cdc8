package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lintls/internal/cache"
	"lintls/internal/diag"
	"lintls/internal/diagfmt"
	"lintls/internal/lint"
	"lintls/internal/source"
	"lintls/internal/trace"
)

var checkCmd = &cobra.Command{
	Use:          "check [flags] [paths...]",
	Short:        "Lint Python files and report diagnostics",
	Long:         "Lint the given files or every Python file below the given directories. Exits with status 1 when anything is reported.",
	SilenceUsage: true,
	RunE:         runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().StringSlice("select", nil, "rule codes or prefixes to enable, overriding configuration")
	checkCmd.Flags().String("config", "", "use this lintls.toml instead of discovering one per file")
	checkCmd.Flags().Bool("no-cache", false, "do not read or write the diagnostic cache")
	checkCmd.Flags().Bool("clear-cache", false, "drop every cached entry before checking")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Bool("no-source", false, "do not print source snippets")
	checkCmd.Flags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
}

type checkOptions struct {
	settings *settingsSource
	cache    *cache.DiskCache
	jobs     int
}

type checkResult struct {
	file        *source.File
	diagnostics []diag.Diagnostic
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	selectors, err := cmd.Flags().GetStringSlice("select")
	if err != nil {
		return fmt.Errorf("failed to get select flag: %w", err)
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	clearCache, err := cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	noSource, err := cmd.Flags().GetBool("no-source")
	if err != nil {
		return fmt.Errorf("failed to get no-source flag: %w", err)
	}
	pathModeStr, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	pathMode, ok := diagfmt.ParsePathMode(pathModeStr)
	if !ok {
		return fmt.Errorf("unsupported path mode %q", pathModeStr)
	}

	settings, err := newSettingsSource(configPath, selectors)
	if err != nil {
		return err
	}
	opts := checkOptions{settings: settings, jobs: jobs}
	if !noCache || clearCache {
		dc, err := cache.Open("lintls")
		switch {
		case err != nil:
			fmt.Fprintf(cmd.ErrOrStderr(), "lintls: cache disabled: %v\n", err)
		case clearCache:
			if err := dc.DropAll(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
		}
		if err == nil && !noCache {
			opts.cache = dc
		}
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
	done = timer.Start("check")
	results, err := checkFiles(cmd.Context(), paths, opts)
	if err != nil {
		return err
	}
	done("")
	defer timer.Start("report")("")

	baseDir, _ := os.Getwd()
	out := cmd.OutOrStdout()
	var summary diagfmt.Summary
	for _, r := range results {
		summary.Add(r.diagnostics)
	}
	if format == "json" {
		files := make([]diagfmt.FileDiagnostics, 0, len(results))
		for _, r := range results {
			files = append(files, diagfmt.FileDiagnostics{File: r.file, Diagnostics: r.diagnostics})
		}
		if err := diagfmt.JSON(out, files, diagfmt.JSONOpts{PathMode: pathMode, BaseDir: baseDir, IncludeFixes: true}); err != nil {
			return err
		}
	} else {
		useColor, err := stdoutColor(cmd)
		if err != nil {
			return err
		}
		prettyOpts := diagfmt.PrettyOpts{
			Color:     useColor,
			PathMode:  pathMode,
			BaseDir:   baseDir,
			ShowFixes: true,
			Source:    !noSource,
		}
		for _, r := range results {
			if err := diagfmt.Pretty(out, r.file, r.diagnostics, prettyOpts); err != nil {
				return err
			}
		}
		if err := diagfmt.WriteSummary(out, summary); err != nil {
			return err
		}
	}
	if summary.Diagnostics > 0 {
		return errDiagnosticsFound
	}
	return nil
}

// checkFiles lints paths in parallel. Results keep the order of paths.
func checkFiles(ctx context.Context, paths []string, opts checkOptions) ([]checkResult, error) {
	results := make([]checkResult, len(paths))
	if len(paths) == 0 {
		return results, nil
	}
	ctx, span := trace.Start(ctx, trace.ScopeRequest, "check")
	defer span.End(strconv.Itoa(len(paths)) + " files")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobCount(opts.jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			res, err := checkOne(gctx, path, opts)
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

func checkOne(ctx context.Context, path string, opts checkOptions) (checkResult, error) {
	ctx, span := trace.Start(ctx, trace.ScopeAnalysis, "file")
	defer span.End(path)

	file, err := loadFile(path)
	if err != nil {
		return checkResult{}, err
	}
	settings, _, err := opts.settings.forFile(path)
	if err != nil {
		return checkResult{}, err
	}
	var key cache.Key
	if opts.cache != nil {
		key = cache.KeyFor(file, settings)
		diagnostics, ok, err := opts.cache.Get(key, file)
		if err != nil {
			span.WithExtra("cache", err.Error())
		} else if ok {
			span.WithExtra("cache", "hit")
			return checkResult{file: file, diagnostics: diagnostics}, nil
		}
	}
	diagnostics, err := lint.Check(ctx, file, settings)
	if err != nil {
		return checkResult{}, err
	}
	if opts.cache != nil {
		if err := opts.cache.Put(key, path, diagnostics); err != nil {
			span.WithExtra("cache", err.Error())
		}
	}
	return checkResult{file: file, diagnostics: diagnostics}, nil
}
