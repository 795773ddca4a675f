package resolve

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goplus/alsasys/internal/pipeline"
	"github.com/goplus/alsasys/internal/pkgconfig"
	"github.com/goplus/alsasys/internal/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	linuxX64 = "x86_64-unknown-linux-gnu"
	armv7    = "armv7-unknown-linux-gnueabihf"
)

type fakeProber struct {
	out   pkgconfig.Outcome
	calls []pkgconfig.Request
}

func (p *fakeProber) Probe(_ context.Context, req pkgconfig.Request) pkgconfig.Outcome {
	p.calls = append(p.calls, req)
	return p.out
}

type recordDeclarer struct {
	warnings []string
	paths    []string
	libs     []string
}

func (d *recordDeclarer) Warning(msg string)    { d.warnings = append(d.warnings, msg) }
func (d *recordDeclarer) LinkSearch(dir string) { d.paths = append(d.paths, dir) }
func (d *recordDeclarer) LinkLib(name string)   { d.libs = append(d.libs, name) }
func (d *recordDeclarer) Flush() error          { return nil }

type fixture struct {
	prober   *fakeProber
	runner   *runner.Recorder
	declarer *recordDeclarer
	resolver *Resolver
	ctx      pipeline.Context
}

func newFixture(out pkgconfig.Outcome) *fixture {
	f := &fixture{
		prober:   &fakeProber{out: out},
		runner:   &runner.Recorder{},
		declarer: &recordDeclarer{},
		ctx: pipeline.Context{
			SourceDir:  "/manifest/alsa-lib",
			BuildDir:   "/out/build",
			InstallDir: "/out/install",
		},
	}
	f.resolver = &Resolver{Prober: f.prober, Runner: f.runner, Declarer: f.declarer}
	return f
}

func (f *fixture) configureArgs(t *testing.T) []string {
	t.Helper()
	c, ok := f.runner.Find("sh")
	require.True(t, ok, "configure did not run")
	return c.Args
}

func found(dir string) pkgconfig.Outcome {
	return pkgconfig.Outcome{
		Kind:    pkgconfig.Found,
		Library: &pkgconfig.Library{Version: "1.2.10", LinkPaths: []string{dir}, Libs: []string{"asound"}},
	}
}

func TestNativeFound(t *testing.T) {
	f := newFixture(found("/usr/lib"))

	res, err := f.resolver.Resolve(context.Background(), linuxX64, linuxX64, f.ctx)
	require.NoError(t, err)

	assert.Equal(t, System, res.Source)
	assert.Equal(t, []string{"/usr/lib"}, res.SearchPaths)
	assert.Equal(t, []string{"asound"}, res.Libs)
	assert.Empty(t, f.runner.Commands, "no build process may run on the fast path")
	assert.Equal(t, []string{"/usr/lib"}, f.declarer.paths)
	assert.Equal(t, []string{"asound"}, f.declarer.libs)
	assert.Empty(t, f.declarer.warnings)

	require.Len(t, f.prober.calls, 1)
	assert.Equal(t, pkgconfig.Request{Name: "alsa", MinVersion: "1.2", Static: true}, f.prober.calls[0])
}

func TestNativeFallback(t *testing.T) {
	for _, kind := range []pkgconfig.Kind{pkgconfig.NotFound, pkgconfig.VersionTooLow} {
		t.Run(kind.String(), func(t *testing.T) {
			f := newFixture(pkgconfig.Outcome{Kind: kind, Err: errors.New("nope")})

			res, err := f.resolver.Resolve(context.Background(), linuxX64, linuxX64, f.ctx)
			require.NoError(t, err)

			assert.Equal(t, Vendored, res.Source)
			require.Len(t, f.declarer.warnings, 1)
			assert.Contains(t, f.declarer.warnings[0], "Falling back on built-in version")
			for _, arg := range f.configureArgs(t) {
				assert.False(t, strings.HasPrefix(arg, "--host="), "native fallback must not pass %s", arg)
			}
			assert.Len(t, f.runner.Commands, 8)
		})
	}
}

func TestNativeProbeError(t *testing.T) {
	diag := errors.New("pkg-config: alsa.pc: Requires field malformed")
	f := newFixture(pkgconfig.Outcome{Kind: pkgconfig.OtherError, Err: diag})

	res, err := f.resolver.Resolve(context.Background(), linuxX64, linuxX64, f.ctx)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrProbe)
	assert.ErrorIs(t, err, diag)
	assert.Contains(t, err.Error(), diag.Error())
	assert.Empty(t, f.runner.Commands)
	assert.Empty(t, f.declarer.paths)
	assert.Empty(t, f.declarer.libs)
	assert.Empty(t, f.declarer.warnings)
}

func TestProbeErrorWithoutDiagnostic(t *testing.T) {
	f := newFixture(pkgconfig.Outcome{Kind: pkgconfig.OtherError})

	_, err := f.resolver.Resolve(context.Background(), linuxX64, linuxX64, f.ctx)
	assert.ErrorIs(t, err, ErrProbe)
	assert.Contains(t, err.Error(), "unexpected outcome error")
}

func TestCrossSkipsProbe(t *testing.T) {
	f := newFixture(found("/usr/lib"))

	res, err := f.resolver.Resolve(context.Background(), linuxX64, armv7, f.ctx)
	require.NoError(t, err)

	assert.Empty(t, f.prober.calls)
	assert.Contains(t, f.configureArgs(t), "--host=arm-linux-gnueabihf")
	assert.Equal(t, Vendored, res.Source)
	assert.Equal(t, []string{filepath.Join("/out/install", "usr", "lib")}, res.SearchPaths)
	assert.Equal(t, []string{"asound", "atopology"}, res.Libs)
	assert.Equal(t, res.SearchPaths, f.declarer.paths)
	assert.Equal(t, res.Libs, f.declarer.libs)
	assert.Empty(t, f.declarer.warnings)
}

func TestCrossUntranslatedTarget(t *testing.T) {
	f := newFixture(pkgconfig.Outcome{})

	_, err := f.resolver.Resolve(context.Background(), linuxX64, "aarch64-unknown-linux-gnu", f.ctx)
	require.NoError(t, err)
	assert.Contains(t, f.configureArgs(t), "--host=aarch64-unknown-linux-gnu")
}

func TestStageFailureSkipsReport(t *testing.T) {
	f := newFixture(pkgconfig.Outcome{Kind: pkgconfig.NotFound})
	f.runner.FailOn("make", 2)

	res, err := f.resolver.Resolve(context.Background(), linuxX64, linuxX64, f.ctx)
	require.Error(t, err)
	assert.Nil(t, res)

	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, pipeline.StageCompile, stageErr.Stage)
	assert.NotContains(t, f.runner.Lines(), "make install")
	assert.Empty(t, f.declarer.paths)
	assert.Empty(t, f.declarer.libs)
}

func TestEmptyPlatform(t *testing.T) {
	f := newFixture(found("/usr/lib"))

	for _, tc := range [][2]string{{"", linuxX64}, {linuxX64, ""}, {"", ""}} {
		_, err := f.resolver.Resolve(context.Background(), tc[0], tc[1], f.ctx)
		assert.ErrorIs(t, err, ErrEnv)
	}
	assert.Empty(t, f.prober.calls)
	assert.Empty(t, f.runner.Commands)
}

func TestReport(t *testing.T) {
	res, err := Report("/out/install")
	require.NoError(t, err)
	assert.Equal(t, Vendored, res.Source)
	assert.Equal(t, []string{filepath.Join("/out/install", "usr", "lib")}, res.SearchPaths)
	assert.Equal(t, []string{"asound", "atopology"}, res.Libs)

	res.Libs[0] = "changed"
	assert.Equal(t, "asound", Libraries[0], "callers must not alias the package list")
}

func TestReportUndeclarablePath(t *testing.T) {
	for _, dir := range []string{"/out/\xff\xfe", "/out/a\nb", "/out/a\x00b"} {
		_, err := Report(dir)
		assert.ErrorIs(t, err, ErrPath, "%q", dir)
	}
}

func TestSourceString(t *testing.T) {
	assert.Equal(t, "system", System.String())
	assert.Equal(t, "vendored", Vendored.String())
}
