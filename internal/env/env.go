// Package env reads the invocation inputs supplied by the enclosing build.
package env

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/goplus/alsasys/internal/declare"
	"github.com/spf13/viper"
)

// ErrMissing matches a required value that was not supplied.
var ErrMissing = errors.New("required value not set")

// ErrInvalid matches a value that was supplied but cannot be used.
var ErrInvalid = errors.New("invalid value")

// Configuration keys. Each is also the name of the matching command-line flag.
const (
	KeyManifestDir  = "manifest-dir"
	KeyOutDir       = "out-dir"
	KeyHost         = "host"
	KeyTarget       = "target"
	KeySourceSubdir = "source-subdir"
	KeyPkgConfig    = "pkg-config"
	KeyJobs         = "jobs"
	KeyFormat       = "format"
	KeyVerbose      = "verbose"
)

type binding struct {
	key      string
	envVar   string
	required bool
}

var bindings = []binding{
	{KeyManifestDir, "CARGO_MANIFEST_DIR", true},
	{KeyOutDir, "OUT_DIR", true},
	{KeyHost, "HOST", true},
	{KeyTarget, "TARGET", true},
	{KeySourceSubdir, "ALSASYS_SOURCE_SUBDIR", false},
	{KeyPkgConfig, "PKG_CONFIG", false},
	{KeyJobs, "NUM_JOBS", false},
	{KeyFormat, "ALSASYS_FORMAT", false},
	{KeyVerbose, "ALSASYS_VERBOSE", false},
}

// Defaults for the optional keys.
const (
	DefaultSourceSubdir = "alsa-lib"
	DefaultPkgConfig    = "pkg-config"
	DefaultFormat       = "cargo"
)

// Config holds one invocation's inputs.
type Config struct {
	ManifestDir  string
	OutDir       string
	Host         string
	Target       string
	SourceSubdir string
	PkgConfig    string
	Jobs         int
	Format       string
	Verbose      bool
}

// Bind attaches the environment variables and defaults to v.
// Flags are bound separately by the command that owns them.
func Bind(v *viper.Viper) error {
	for _, b := range bindings {
		if err := v.BindEnv(b.key, b.envVar); err != nil {
			return fmt.Errorf("bind %s: %w", b.envVar, err)
		}
	}
	v.SetDefault(KeySourceSubdir, DefaultSourceSubdir)
	v.SetDefault(KeyPkgConfig, DefaultPkgConfig)
	v.SetDefault(KeyFormat, DefaultFormat)
	return nil
}

// EnvVar returns the environment variable bound to key.
func EnvVar(key string) string {
	for _, b := range bindings {
		if b.key == key {
			return b.envVar
		}
	}
	return ""
}

// Load reads and validates the configuration. Every problem is reported in
// the returned error, so a caller sees all missing values at once.
func Load(v *viper.Viper) (Config, error) {
	c := Config{
		ManifestDir:  strings.TrimSpace(v.GetString(KeyManifestDir)),
		OutDir:       strings.TrimSpace(v.GetString(KeyOutDir)),
		Host:         strings.TrimSpace(v.GetString(KeyHost)),
		Target:       strings.TrimSpace(v.GetString(KeyTarget)),
		SourceSubdir: v.GetString(KeySourceSubdir),
		PkgConfig:    v.GetString(KeyPkgConfig),
		Format:       v.GetString(KeyFormat),
		Verbose:      v.GetBool(KeyVerbose),
	}

	var errs []error
	for _, b := range bindings {
		if b.required && strings.TrimSpace(v.GetString(b.key)) == "" {
			errs = append(errs, fmt.Errorf("%w: %s (or --%s)", ErrMissing, b.envVar, b.key))
		}
	}

	if s := strings.TrimSpace(v.GetString(KeyJobs)); s != "" {
		n, err := strconv.Atoi(s)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, EnvVar(KeyJobs), s))
		case n < 0:
			errs = append(errs, fmt.Errorf("%w: %s=%d is negative", ErrInvalid, EnvVar(KeyJobs), n))
		default:
			c.Jobs = n
		}
	}
	if !slices.Contains(declare.Formats(), c.Format) {
		errs = append(errs, fmt.Errorf("%w: format %q (want one of %s)", ErrInvalid, c.Format, strings.Join(declare.Formats(), ", ")))
	}
	if c.SourceSubdir == "" {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissing, EnvVar(KeySourceSubdir)))
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return c, nil
}
