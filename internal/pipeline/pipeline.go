// Package pipeline builds the vendored alsa-lib tree with autotools into a
// private staging root.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goplus/alsasys/internal/runner"
	"github.com/goplus/alsasys/pkgs/buildsys"
	"github.com/goplus/alsasys/pkgs/buildsys/autotools"
)

// Stage names, in execution order.
const (
	StageRegenerate = "regenerate"
	StageConfigure  = "configure"
	StageCompile    = "compile"
	StageInstall    = "install"
)

// Context is the per-invocation input of Run.
type Context struct {
	SourceDir  string
	BuildDir   string
	InstallDir string

	// CrossHost is the configure --host triple; empty for native builds.
	CrossHost string

	// Jobs is passed to make as -j when positive.
	Jobs int
}

// NewContext derives the directory layout from the manifest root and the
// private output root, creating the build and install directories.
// Nothing is ever removed from outDir.
func NewContext(manifestDir, outDir, sourceSubdir string) (Context, error) {
	c := Context{
		SourceDir:  filepath.Join(manifestDir, sourceSubdir),
		BuildDir:   filepath.Join(outDir, "build"),
		InstallDir: filepath.Join(outDir, "install"),
	}
	for _, dir := range []string{c.BuildDir, c.InstallDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Context{}, fmt.Errorf("could not create %s: %w", dir, err)
		}
	}
	return c, nil
}

// StageError reports the stage whose command failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage + " stage failed: " + e.Err.Error()
}

func (e *StageError) Unwrap() error { return e.Err }

// Run executes regenerate, configure, compile and install in order.
// A stage starts only after the previous one succeeded; the first failure
// is returned as a *StageError and the scratch directories are left as they
// are for inspection.
func Run(ctx context.Context, r runner.Runner, c Context) error {
	a := autotools.New(r, c.SourceDir, c.BuildDir, c.InstallDir)
	a.Host(c.CrossHost)
	return run(ctx, a, c.Jobs)
}

func run(ctx context.Context, bs buildsys.BuildSystem, jobs int) error {
	var makeArgs []string
	if jobs > 0 {
		makeArgs = append(makeArgs, "-j"+strconv.Itoa(jobs))
	}
	stages := []struct {
		name string
		fn   func() error
	}{
		{StageRegenerate, func() error { return bs.Bootstrap(ctx) }},
		{StageConfigure, func() error { return bs.Configure(ctx, "--enable-shared=no", "--enable-static=yes") }},
		{StageCompile, func() error { return bs.Build(ctx, makeArgs...) }},
		{StageInstall, func() error { return bs.Install(ctx) }},
	}
	for _, s := range stages {
		if err := s.fn(); err != nil {
			return &StageError{Stage: s.name, Err: err}
		}
	}
	return nil
}
