package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// outputTail is how much of the command output is kept for error reports
const outputTail = 4096

// Runner executes commands with an in-process POSIX shell interpreter
type Runner struct {
	output  io.Writer
	inherit bool
}

var _ interfaces.CommandRunner = (*Runner)(nil)

// Option configures Runner
type Option func(*Runner)

// WithOutput copies command stdout and stderr to w
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.output = w
	}
}

// WithoutInheritedEnv starts commands with only the given variables
func WithoutInheritedEnv() Option {
	return func(r *Runner) {
		r.inherit = false
	}
}

// New creates a shell runner. Commands inherit the process environment by default.
func New(opts ...Option) *Runner {
	r := &Runner{inherit: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run parses and executes command in dir. env entries override inherited ones.
func (r *Runner) Run(ctx context.Context, dir, command string, env []string) error {
	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "command")
	if err != nil {
		return goerr.Wrap(err, "failed to parse command", goerr.V("command", command))
	}

	var vars []string
	if r.inherit {
		vars = append(vars, os.Environ()...)
	}
	vars = append(vars, env...)

	tail := &tailBuffer{limit: outputTail}
	var out io.Writer = tail
	if r.output != nil {
		out = io.MultiWriter(tail, r.output)
	}

	runner, err := interp.New(
		interp.Dir(dir),
		interp.Env(expand.ListEnviron(vars...)),
		interp.StdIO(nil, out, out),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to create interpreter", goerr.V("dir", dir))
	}

	ctxlog.From(ctx).Debug("Executing command", "command", command, "dir", dir)

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return goerr.New("command exited with nonzero status",
				goerr.V("command", command),
				goerr.V("exit_code", int(exitStatus)),
				goerr.V("output", tail.String()),
			)
		}
		return goerr.Wrap(err, "command execution failed",
			goerr.V("command", command),
			goerr.V("output", tail.String()),
		)
	}

	return nil
}

// tailBuffer keeps the last limit bytes written to it
type tailBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf.Write(p)
	if over := t.buf.Len() - t.limit; over > 0 {
		t.buf.Next(over)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}
