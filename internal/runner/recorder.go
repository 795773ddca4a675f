package runner

import (
	"context"
	"slices"
	"strings"
)

// Recorder is a Runner that records commands instead of spawning them.
// Commands registered with FailOn exit with the given status.
type Recorder struct {
	Commands []Command

	fail map[string]int
}

var _ Runner = (*Recorder)(nil)

// FailOn makes every command whose program name or full command line equals
// match exit with code.
func (r *Recorder) FailOn(match string, code int) *Recorder {
	if r.fail == nil {
		r.fail = make(map[string]int)
	}
	r.fail[match] = code
	return r
}

func (r *Recorder) Run(_ context.Context, c Command) error {
	c.Args = slices.Clone(c.Args)
	r.Commands = append(r.Commands, c)
	code, ok := r.fail[c.Name]
	if !ok {
		code, ok = r.fail[c.Name+" "+strings.Join(c.Args, " ")]
	}
	if ok && code != 0 {
		return &ExitError{Command: c, Code: code}
	}
	return nil
}

// Lines returns "name args..." for every recorded command.
func (r *Recorder) Lines() []string {
	lines := make([]string, 0, len(r.Commands))
	for _, c := range r.Commands {
		lines = append(lines, strings.TrimSpace(c.Name+" "+strings.Join(c.Args, " ")))
	}
	return lines
}

// Find returns the first recorded command named name.
func (r *Recorder) Find(name string) (Command, bool) {
	for _, c := range r.Commands {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}
