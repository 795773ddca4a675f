package buildsys

import "context"

// BuildSystem captures the lifecycle shared by build helpers.
// Every step blocks until its external tools exit; the first failure is
// returned and nothing is rolled back.
type BuildSystem interface {
	// Basic paths.
	Source(dir string)
	InstallDir(dir string)

	// Environment helper.
	Env(key, val string)

	// Lifecycle.
	Bootstrap(ctx context.Context) error
	Configure(ctx context.Context, args ...string) error
	Build(ctx context.Context, args ...string) error
	Install(ctx context.Context, args ...string) error

	// Where artifacts land.
	OutputDir() string
}
