// Package pkgconfig asks the system pkg-config for an installed library.
package pkgconfig

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
	"golang.org/x/sys/execabs"
)

// Kind classifies the result of a probe.
type Kind int

const (
	Found Kind = iota
	NotFound
	VersionTooLow
	OtherError
)

func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case NotFound:
		return "not found"
	case VersionTooLow:
		return "version too low"
	case OtherError:
		return "error"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Request names the library to look for.
type Request struct {
	Name       string
	MinVersion string // empty accepts any version
	Static     bool   // ask for the static link line
}

// Library is what pkg-config knows about an installed package.
type Library struct {
	Version   string
	LinkPaths []string // libdir first, then every -L from the link line
	Libs      []string // -l names, in link order
}

// Outcome is the result of a probe. Library is set for Found and, with only
// Version filled in, for VersionTooLow. Err carries the diagnostic for every
// kind but Found.
type Outcome struct {
	Kind    Kind
	Library *Library
	Err     error
}

// Missing reports whether the library is absent or too old, the only
// outcomes that allow falling back to a vendored build.
func (o Outcome) Missing() bool {
	return o.Kind == NotFound || o.Kind == VersionTooLow
}

// Prober looks up installed libraries.
type Prober interface {
	Probe(ctx context.Context, req Request) Outcome
}

// Tool probes by running the pkg-config binary.
type Tool struct {
	// Path is the pkg-config program; "pkg-config" when empty.
	Path string
}

var _ Prober = (*Tool)(nil)

func (t *Tool) program() string {
	if t.Path == "" {
		return "pkg-config"
	}
	return t.Path
}

// Probe checks existence, then version, then collects the link line.
func (t *Tool) Probe(ctx context.Context, req Request) Outcome {
	bin, err := execabs.LookPath(t.program())
	if err != nil {
		return otherError(fmt.Errorf("could not run %s: %w", t.program(), err))
	}

	if res, err := query(ctx, bin, "--exists", req.Name); err != nil {
		return otherError(err)
	} else if res.code != 0 {
		return Outcome{Kind: NotFound, Err: fmt.Errorf("package %s was not found by %s", req.Name, t.program())}
	}

	version, err := queryOK(ctx, bin, "--modversion", req.Name)
	if err != nil {
		return otherError(err)
	}
	if req.MinVersion != "" {
		ok, err := AtLeast(version, req.MinVersion)
		if err != nil {
			return otherError(fmt.Errorf("%s: %w", req.Name, err))
		}
		if !ok {
			return Outcome{
				Kind:    VersionTooLow,
				Library: &Library{Version: version},
				Err:     fmt.Errorf("%s %s is older than the required %s", req.Name, version, req.MinVersion),
			}
		}
	}

	libdir, err := queryOK(ctx, bin, "--variable=libdir", req.Name)
	if err != nil {
		return otherError(err)
	}
	args := []string{"--libs"}
	if req.Static {
		args = append(args, "--static")
	}
	linkLine, err := queryOK(ctx, bin, append(args, req.Name)...)
	if err != nil {
		return otherError(err)
	}

	lib := parseLinkLine(linkLine)
	lib.Version = version
	if libdir != "" {
		lib.LinkPaths = appendUnique([]string{libdir}, lib.LinkPaths...)
	}
	return Outcome{Kind: Found, Library: lib}
}

func otherError(err error) Outcome {
	return Outcome{Kind: OtherError, Err: err}
}

type result struct {
	stdout string
	stderr string
	code   int
}

// query runs pkg-config. A non-zero exit is reported through result.code;
// err is set only when the program could not be run at all.
func query(ctx context.Context, bin string, args ...string) (result, error) {
	var stdout, stderr bytes.Buffer
	cmd := execabs.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	res := result{stdout: strings.TrimSpace(stdout.String()), stderr: strings.TrimSpace(stderr.String())}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return res, fmt.Errorf("could not run %s %s: %w", bin, strings.Join(args, " "), err)
		}
		res.code = exitErr.ExitCode()
	}
	return res, nil
}

// queryOK is query where a non-zero exit is an error carrying stderr.
func queryOK(ctx context.Context, bin string, args ...string) (string, error) {
	res, err := query(ctx, bin, args...)
	if err != nil {
		return "", err
	}
	if res.code != 0 {
		msg := res.stderr
		if msg == "" {
			msg = "no output"
		}
		return "", fmt.Errorf("%s %s: exit status %d: %s", bin, strings.Join(args, " "), res.code, msg)
	}
	return res.stdout, nil
}

// parseLinkLine picks -L and -l tokens out of a pkg-config --libs line.
func parseLinkLine(line string) *Library {
	lib := &Library{}
	for _, tok := range strings.Fields(line) {
		switch {
		case strings.HasPrefix(tok, "-L") && len(tok) > 2:
			lib.LinkPaths = appendUnique(lib.LinkPaths, tok[2:])
		case strings.HasPrefix(tok, "-l") && len(tok) > 2:
			lib.Libs = appendUnique(lib.Libs, tok[2:])
		}
	}
	return lib
}

func appendUnique(list []string, items ...string) []string {
	for _, it := range items {
		dup := false
		for _, have := range list {
			if have == it {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, it)
		}
	}
	return list
}

// AtLeast reports whether version >= minVersion. Both are dotted numeric versions
// as printed by pkg-config; components past the third are ignored and
// missing ones count as zero.
func AtLeast(version, minVersion string) (bool, error) {
	v, ok := canonical(version)
	if !ok {
		return false, fmt.Errorf("unparsable version %q", version)
	}
	m, ok := canonical(minVersion)
	if !ok {
		return false, fmt.Errorf("unparsable version %q", minVersion)
	}
	return semver.Compare(v, m) >= 0, nil
}

// canonical turns "1.2.6.1" or "1.2rc3" into a semver "v1.2.6" / "v1.2.0".
func canonical(version string) (string, bool) {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	nums := make([]string, 0, 3)
	for _, part := range strings.Split(version, ".") {
		i := 0
		for i < len(part) && part[i] >= '0' && part[i] <= '9' {
			i++
		}
		if i == 0 {
			break
		}
		n, err := strconv.Atoi(part[:i])
		if err != nil {
			return "", false
		}
		nums = append(nums, strconv.Itoa(n))
		if len(nums) == 3 || i < len(part) {
			break
		}
	}
	if len(nums) == 0 {
		return "", false
	}
	for len(nums) < 3 {
		nums = append(nums, "0")
	}
	v := "v" + strings.Join(nums, ".")
	return v, semver.IsValid(v)
}
