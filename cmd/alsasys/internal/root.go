package internal

import (
	"log"

	"github.com/goplus/alsasys/internal/env"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cfg merges command-line flags over the environment of the enclosing build.
var cfg = viper.New()

var rootCmd = &cobra.Command{
	Use:   "alsasys",
	Short: "alsasys links alsa-lib into a native build",
	Long: `alsasys finds a system alsa-lib with pkg-config or builds the vendored copy
with autotools, then declares the link search path and libraries to the
enclosing build. Without a subcommand it runs "resolve".`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runResolve,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolP(env.KeyVerbose, "v", false, "Enable debug logging")
	flags.String(env.KeyFormat, env.DefaultFormat, "Declaration format (cargo, flags)")
	flags.String(env.KeyManifestDir, "", "Package root holding the vendored source (CARGO_MANIFEST_DIR)")
	flags.String(env.KeyOutDir, "", "Private scratch root (OUT_DIR)")
	flags.String(env.KeyHost, "", "Build host triple (HOST)")
	flags.String(env.KeyTarget, "", "Build target triple (TARGET)")
	flags.String(env.KeySourceSubdir, env.DefaultSourceSubdir, "Vendored source directory under the package root")
	flags.String(env.KeyPkgConfig, env.DefaultPkgConfig, "pkg-config program (PKG_CONFIG)")
	flags.IntP(env.KeyJobs, "j", 0, "Parallel make jobs, 0 for make's default (NUM_JOBS)")

	if err := env.Bind(cfg); err != nil {
		log.Fatal(err)
	}
	if err := cfg.BindPFlags(flags); err != nil {
		log.Fatal(err)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}
