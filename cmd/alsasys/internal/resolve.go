package internal

import (
	"fmt"

	"github.com/goplus/alsasys/internal/declare"
	"github.com/goplus/alsasys/internal/env"
	"github.com/goplus/alsasys/internal/lock"
	"github.com/goplus/alsasys/internal/logging"
	"github.com/goplus/alsasys/internal/pipeline"
	"github.com/goplus/alsasys/internal/pkgconfig"
	"github.com/goplus/alsasys/internal/resolve"
	"github.com/goplus/alsasys/internal/runner"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Link against system alsa or build the vendored copy",
	Long: `Resolve probes pkg-config for alsa >= 1.2 when host and target match. If it is
missing, or when cross compiling, the vendored alsa-lib is regenerated,
configured, compiled and installed under the scratch root. The resulting
search path and libraries are printed on stdout.`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	c, err := env.Load(cfg)
	if err != nil {
		return err
	}
	stderr := cmd.ErrOrStderr()
	logger := logging.New(stderr, c.Verbose)

	release, err := lock.Acquire(c.OutDir)
	if err != nil {
		return err
	}
	defer release()

	bc, err := pipeline.NewContext(c.ManifestDir, c.OutDir, c.SourceSubdir)
	if err != nil {
		return err
	}
	bc.Jobs = c.Jobs

	declarer, err := declare.New(c.Format, cmd.OutOrStdout(), logger)
	if err != nil {
		return err
	}

	// stdout carries the declarations only; tool output goes to stderr.
	r := runner.New(logger)
	r.Stdout = stderr
	r.Stderr = stderr
	r.Echo = stderr

	resolver := &resolve.Resolver{
		Prober:   &pkgconfig.Tool{Path: c.PkgConfig},
		Runner:   r,
		Declarer: declarer,
		Logger:   logger,
	}
	res, err := resolver.Resolve(cmd.Context(), c.Host, c.Target, bc)
	if err != nil {
		return err
	}
	if err := declarer.Flush(); err != nil {
		return fmt.Errorf("failed to write declarations: %w", err)
	}
	logger.Debug("resolved", "source", res.Source, "paths", res.SearchPaths, "libs", res.Libs)
	return nil
}
