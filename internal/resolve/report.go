package resolve

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/goplus/alsasys/pkgs/buildsys/autotools"
)

// Libraries are the link names installed by the vendored build.
var Libraries = []string{"asound", "atopology"}

// Report computes the linkage of a finished vendored build staged under
// installDir: <installDir>/usr/lib plus the asound and atopology libraries.
func Report(installDir string) (*LinkResult, error) {
	libDir := filepath.Join(installDir, autotools.DefaultPrefix, "lib")
	if err := checkDeclarable(libDir); err != nil {
		return nil, err
	}
	return &LinkResult{
		Source:      Vendored,
		SearchPaths: []string{libDir},
		Libs:        append([]string(nil), Libraries...),
	}, nil
}

// checkDeclarable rejects paths that cannot be written on a declaration line.
func checkDeclarable(path string) error {
	switch {
	case !utf8.ValidString(path):
		return fmt.Errorf("%w: %q is not valid UTF-8", ErrPath, path)
	case strings.ContainsAny(path, "\x00\r\n"):
		return fmt.Errorf("%w: %q contains a control character", ErrPath, path)
	}
	return nil
}
