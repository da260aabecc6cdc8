package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"lintls/internal/config"
	"lintls/internal/lsp"
	"lintls/internal/trace"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the lintls language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func init() {
	lspCmd.Flags().Duration("debounce", 200*time.Millisecond, "delay before diagnostics are recomputed after an edit")
	lspCmd.Flags().Bool("no-config", false, "ignore lintls.toml files")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	noConfig, err := cmd.Flags().GetBool("no-config")
	if err != nil {
		return err
	}
	opts := lsp.ServerOptions{
		Debounce: debounce,
		Tracer:   trace.FromContext(cmd.Context()),
	}
	if !noConfig {
		opts.Configs = config.NewStore()
	}
	server := lsp.NewServer(os.Stdin, os.Stdout, opts)
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
