// Package runner executes external build tools one at a time.
//
// A Runner blocks until the spawned process exits. There is no timeout and no
// retry: a non-zero exit is reported as an *ExitError carrying the command
// line and status, and callers treat it as fatal.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/qiniu/x/gsh"
	"golang.org/x/sys/execabs"
)

// ErrCommand matches every error produced for a command that could not be
// run or exited unsuccessfully.
var ErrCommand = errors.New("command failed")

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string            // working directory; empty means the current one
	Env  map[string]string // merged over the inherited environment
}

// String renders the command line with shell-style quoting for echoing.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Env)+1+len(c.Args))
	for _, k := range sortedKeys(c.Env) {
		parts = append(parts, k+"="+quote(c.Env[k]))
	}
	parts = append(parts, quote(c.Name))
	for _, a := range c.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

// Runner runs a command to completion.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExitError reports a command that exited with a non-zero status.
type ExitError struct {
	Command Command
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s (in %s): exit status %d", e.Command, e.Command.Dir, e.Code)
}

// Is makes ExitError match ErrCommand.
func (e *ExitError) Is(target error) bool {
	return target == ErrCommand
}

// Exec spawns real processes.
type Exec struct {
	// Stdout and Stderr receive the child's output.
	Stdout io.Writer
	Stderr io.Writer

	// Echo receives "$ <command>" before each run. Nil disables echoing.
	Echo io.Writer

	// OS is the process facility used to run commands.
	OS gsh.OS

	Logger *slog.Logger
}

var _ Runner = (*Exec)(nil)

// New returns an Exec that passes output through to the current process and
// echoes commands to stderr.
func New(logger *slog.Logger) *Exec {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exec{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Echo:   os.Stderr,
		OS:     gsh.Sys,
		Logger: logger,
	}
}

// Run spawns c and waits for it. No stdin is attached.
func (e *Exec) Run(ctx context.Context, c Command) error {
	if e.Echo != nil {
		fmt.Fprintf(e.Echo, "$ cd %s && %s\n", quote(displayDir(c.Dir)), c)
	}
	e.logger().Debug("run", "dir", c.Dir, "command", c.String())

	cmd := execabs.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if len(c.Env) > 0 {
		cmd.Env = mergeEnv(e.OS.Environ(), c.Env)
	}

	err := e.OS.Run(cmd)
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Command: c, Code: exitErr.ExitCode()}
	}
	return fmt.Errorf("%w: %s: %w", ErrCommand, c, err)
}

func (e *Exec) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// mergeEnv returns a copy of base with every key in overrides replaced or
// appended. Appended keys are sorted so the child environment is stable.
func mergeEnv(base []string, overrides map[string]string) []string {
	out := make([]string, len(base), len(base)+len(overrides))
	copy(out, base)
	idx := make(map[string]int, len(out))
	for i, kv := range out {
		if k, _, ok := strings.Cut(kv, "="); ok {
			idx[k] = i
		}
	}
	for _, k := range sortedKeys(overrides) {
		kv := k + "=" + overrides[k]
		if i, ok := idx[k]; ok {
			out[i] = kv
		} else {
			out = append(out, kv)
		}
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"'\\$") {
		return strconv.Quote(s)
	}
	return s
}

func displayDir(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
