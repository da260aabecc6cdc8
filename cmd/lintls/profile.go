package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lintls/internal/observ"
	"lintls/internal/prof"
)

// setupProfiling starts the profilers requested by persistent flags and
// returns a cleanup that stops them.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()
	cpuProfile, err := root.PersistentFlags().GetString("cpu-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memProfile, err := root.PersistentFlags().GetString("mem-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	session, err := prof.Start(prof.Config{CPUPath: cpuProfile, MemPath: memProfile})
	if err != nil {
		return nil, err
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "lintls: %v\n", err)
		}
	}, nil
}

// phaseTimer returns a timer when --timings is set, nil otherwise.
func phaseTimer(cmd *cobra.Command) (*observ.Timer, error) {
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if !timings {
		return nil, nil
	}
	return &observ.Timer{}, nil
}

func writeTimings(cmd *cobra.Command, timer *observ.Timer) {
	if timer == nil {
		return
	}
	if err := timer.WriteSummary(cmd.ErrOrStderr()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "lintls: %v\n", err)
	}
}
