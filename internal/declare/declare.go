// Package declare tells the enclosing build where to find the libraries.
package declare

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ErrFormat is returned by New for an unknown output format.
var ErrFormat = errors.New("unknown declaration format")

// Declarer receives the facts reported to the enclosing build.
type Declarer interface {
	Warning(msg string)
	LinkSearch(dir string)
	LinkLib(name string)
	// Flush writes anything buffered and returns the first write error.
	Flush() error
}

// Emit declares every search path, then every library.
func Emit(d Declarer, searchPaths, libs []string) {
	for _, dir := range searchPaths {
		d.LinkSearch(dir)
	}
	for _, lib := range libs {
		d.LinkLib(lib)
	}
}

// Formats lists the names accepted by New.
func Formats() []string {
	return []string{"cargo", "flags"}
}

// New returns the declarer for format writing to w.
func New(format string, w io.Writer, logger *slog.Logger) (Declarer, error) {
	switch format {
	case "cargo":
		return NewCargo(w), nil
	case "flags":
		return NewFlags(w, logger), nil
	}
	return nil, fmt.Errorf("%w %q (want one of %s)", ErrFormat, format, strings.Join(Formats(), ", "))
}

// Cargo prints cargo build-script directives, one per line, as they arrive.
type Cargo struct {
	w   io.Writer
	err error
}

func NewCargo(w io.Writer) *Cargo {
	return &Cargo{w: w}
}

func (c *Cargo) Warning(msg string) {
	c.printf("cargo:warning=%s\n", oneLine(msg))
}

func (c *Cargo) LinkSearch(dir string) {
	c.printf("cargo:rustc-link-search=%s\n", dir)
}

func (c *Cargo) LinkLib(name string) {
	c.printf("cargo:rustc-link-lib=%s\n", name)
}

func (c *Cargo) Flush() error {
	return c.err
}

func (c *Cargo) printf(format string, args ...any) {
	if c.err != nil {
		return
	}
	_, c.err = fmt.Fprintf(c.w, format, args...)
}

// Flags collects linker flags and prints them on a single line at Flush,
// suitable for CGO_LDFLAGS. Warnings go to the logger so the output stays
// machine readable.
type Flags struct {
	w      io.Writer
	logger *slog.Logger
	flags  []string
}

func NewFlags(w io.Writer, logger *slog.Logger) *Flags {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flags{w: w, logger: logger}
}

func (f *Flags) Warning(msg string) {
	f.logger.Warn(msg)
}

func (f *Flags) LinkSearch(dir string) {
	f.flags = append(f.flags, "-L"+dir)
}

func (f *Flags) LinkLib(name string) {
	f.flags = append(f.flags, "-l"+name)
}

func (f *Flags) Flush() error {
	if len(f.flags) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(f.w, strings.Join(f.flags, " "))
	f.flags = nil
	return err
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
