// Package autotools drives the libtoolize/autoconf/configure/make workflow
// for an out-of-tree build.
package autotools

import (
	"context"
	"maps"
	"path/filepath"

	"github.com/goplus/alsasys/internal/runner"
	"github.com/goplus/alsasys/pkgs/buildsys"
)

// DefaultPrefix is the configure --prefix. Installs are staged under the
// install dir through DESTDIR, so files land in <install>/usr/...
const DefaultPrefix = "/usr"

// AutoTools runs Autotools steps through a runner.Runner.
type AutoTools struct {
	runner     runner.Runner
	sourceDir  string
	buildDir   string
	installDir string
	prefix     string
	host       string
	env        map[string]string
}

var _ buildsys.BuildSystem = (*AutoTools)(nil)

// New returns an AutoTools building sourceDir inside buildDir and staging
// "make install" into installDir.
func New(r runner.Runner, sourceDir, buildDir, installDir string) *AutoTools {
	return &AutoTools{
		runner:     r,
		sourceDir:  sourceDir,
		buildDir:   buildDir,
		installDir: installDir,
		prefix:     DefaultPrefix,
		env:        make(map[string]string),
	}
}

func (a *AutoTools) Source(dir string) { a.sourceDir = dir }

func (a *AutoTools) InstallDir(dir string) { a.installDir = dir }

// Prefix overrides the configure --prefix.
func (a *AutoTools) Prefix(prefix string) { a.prefix = prefix }

// Host sets the configure --host triple. An empty triple means a native build.
func (a *AutoTools) Host(triple string) { a.host = triple }

// Env sets key=value for every command spawned later.
func (a *AutoTools) Env(key, value string) { a.env[key] = value }

// Bootstrap regenerates the build scripts inside the source tree.
func (a *AutoTools) Bootstrap(ctx context.Context) error {
	steps := [][]string{
		{"libtoolize", "--force", "--copy", "--automake"},
		{"aclocal"},
		{"autoheader"},
		{"automake", "--foreign", "--copy", "--add-missing"},
		{"autoconf"},
	}
	for _, step := range steps {
		if err := a.run(ctx, a.sourceDir, nil, step[0], step[1:]...); err != nil {
			return err
		}
	}
	return nil
}

// Configure runs <sourceDir>/configure from inside buildDir.
// --prefix comes first, then args, then --host when cross compiling.
func (a *AutoTools) Configure(ctx context.Context, args ...string) error {
	flags := make([]string, 0, 3+len(args))
	flags = append(flags, filepath.Join(a.sourceDir, "configure"))
	if a.prefix != "" {
		flags = append(flags, "--prefix="+a.prefix)
	}
	flags = append(flags, args...)
	if a.host != "" {
		flags = append(flags, "--host="+a.host)
	}
	return a.run(ctx, a.buildDir, nil, "sh", flags...)
}

// Build runs "make" with optional extra arguments.
func (a *AutoTools) Build(ctx context.Context, args ...string) error {
	return a.run(ctx, a.buildDir, nil, "make", args...)
}

// Install runs "make install" with DESTDIR pointing at the install dir.
func (a *AutoTools) Install(ctx context.Context, args ...string) error {
	var env map[string]string
	if a.installDir != "" {
		env = map[string]string{"DESTDIR": a.installDir}
	}
	return a.run(ctx, a.buildDir, env, "make", append([]string{"install"}, args...)...)
}

// OutputDir returns the staged prefix, <installDir>/<prefix>.
func (a *AutoTools) OutputDir() string {
	return filepath.Join(a.installDir, a.prefix)
}

func (a *AutoTools) run(ctx context.Context, dir string, extra map[string]string, name string, args ...string) error {
	var env map[string]string
	if len(a.env) > 0 || len(extra) > 0 {
		env = maps.Clone(a.env)
		if env == nil {
			env = make(map[string]string, len(extra))
		}
		maps.Copy(env, extra)
	}
	return a.runner.Run(ctx, runner.Command{
		Name: name,
		Args: args,
		Dir:  dir,
		Env:  env,
	})
}
