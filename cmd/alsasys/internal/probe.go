package internal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goplus/alsasys/internal/env"
	"github.com/goplus/alsasys/internal/pkgconfig"
	"github.com/goplus/alsasys/internal/resolve"
	"github.com/spf13/cobra"
)

var (
	probeMinVersion string
	probeDynamic    bool
)

var errUnusable = errors.New("no usable system package")

var probeCmd = &cobra.Command{
	Use:   "probe [package]",
	Short: "Ask pkg-config for a system package",
	Long:  `Probe runs only the pkg-config lookup used on native builds and prints what it found.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProbe,
}

func init() {
	probeCmd.Flags().StringVar(&probeMinVersion, "min-version", resolve.Package.MinVersion, "Minimum accepted version")
	probeCmd.Flags().BoolVar(&probeDynamic, "dynamic", false, "Ask for the dynamic instead of the static link line")
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	req := resolve.Package
	if len(args) == 1 {
		req.Name = args[0]
	}
	req.MinVersion = probeMinVersion
	req.Static = !probeDynamic

	tool := &pkgconfig.Tool{Path: cfg.GetString(env.KeyPkgConfig)}
	out := tool.Probe(cmd.Context(), req)

	w := cmd.OutOrStdout()
	switch out.Kind {
	case pkgconfig.Found:
		fmt.Fprintf(w, "%s %s: found\n", req.Name, out.Library.Version)
		fmt.Fprintf(w, "  search: %s\n", strings.Join(out.Library.LinkPaths, " "))
		fmt.Fprintf(w, "  libs:   %s\n", strings.Join(out.Library.Libs, " "))
		return nil
	case pkgconfig.OtherError:
		return fmt.Errorf("%w: %w", resolve.ErrProbe, out.Err)
	}
	fmt.Fprintf(w, "%s: %s\n", req.Name, out.Kind)
	return fmt.Errorf("%w: %w", errUnusable, out.Err)
}
