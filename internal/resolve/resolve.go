// Package resolve decides between the system alsa and a vendored build.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goplus/alsasys/internal/declare"
	"github.com/goplus/alsasys/internal/pipeline"
	"github.com/goplus/alsasys/internal/pkgconfig"
	"github.com/goplus/alsasys/internal/runner"
	"github.com/goplus/alsasys/internal/triple"
)

var (
	// ErrEnv reports a missing or unusable input value.
	ErrEnv = errors.New("invalid environment")
	// ErrProbe reports a pkg-config failure other than absence.
	ErrProbe = errors.New("pkg-config probe failed")
	// ErrPath reports a path that cannot be declared to the build.
	ErrPath = errors.New("undeclarable path")
)

// Package is the pkg-config request made on native builds.
var Package = pkgconfig.Request{Name: "alsa", MinVersion: "1.2", Static: true}

const fallbackWarning = "Could not find alsa at least v1.2 with pkg-config. " +
	"Falling back on built-in version. If you wanted to link to the system alsa-lib, " +
	"you might need to install pkg-config and alsa-lib-devel or libasound2-dev."

// Source tells where the linked library comes from.
type Source int

const (
	System Source = iota
	Vendored
)

func (s Source) String() string {
	if s == System {
		return "system"
	}
	return "vendored"
}

// LinkResult is what gets declared to the enclosing build.
type LinkResult struct {
	Source      Source
	SearchPaths []string
	Libs        []string
}

// Resolver picks and runs a strategy. All fields except Logger are required.
type Resolver struct {
	Prober   pkgconfig.Prober
	Runner   runner.Runner
	Declarer declare.Declarer
	Logger   *slog.Logger
}

// Resolve links against the system alsa when host equals target and
// pkg-config has a recent enough one; otherwise it builds the vendored copy
// described by bc. Every error is fatal to the invocation and nothing is
// declared after one.
func (r *Resolver) Resolve(ctx context.Context, host, target string, bc pipeline.Context) (*LinkResult, error) {
	if host == "" || target == "" {
		return nil, fmt.Errorf("%w: host and target must be set (host=%q, target=%q)", ErrEnv, host, target)
	}
	log := r.logger().With("host", host, "target", target)

	if host == target {
		out := r.Prober.Probe(ctx, Package)
		switch {
		case out.Kind == pkgconfig.Found:
			res := &LinkResult{Source: System}
			if out.Library != nil {
				res.SearchPaths = out.Library.LinkPaths
				res.Libs = out.Library.Libs
			}
			log.Info("using system alsa", "paths", res.SearchPaths)
			declare.Emit(r.Declarer, res.SearchPaths, res.Libs)
			return res, nil
		case out.Missing():
			log.Warn("system alsa unusable, building vendored copy", "reason", out.Kind, "err", out.Err)
			r.Declarer.Warning(fallbackWarning)
		default:
			err := out.Err
			if err == nil {
				err = fmt.Errorf("unexpected outcome %s", out.Kind)
			}
			return nil, fmt.Errorf("%w: %w", ErrProbe, err)
		}
	}

	bc.CrossHost, _ = triple.CrossHost(host, target)
	log.Info("building vendored alsa", "source", bc.SourceDir, "cross", bc.CrossHost)
	if err := pipeline.Run(ctx, r.Runner, bc); err != nil {
		return nil, err
	}

	res, err := Report(bc.InstallDir)
	if err != nil {
		return nil, err
	}
	declare.Emit(r.Declarer, res.SearchPaths, res.Libs)
	return res, nil
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}
