package extractor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/msgbox/pkg/domain/types"
	"github.com/m-mizutani/msgbox/pkg/utils/logging"
)

const (
	DefaultCommand = "python3"
	DefaultTimeout = 5 * time.Minute

	// waitDelay bounds how long output pipes may stay open after the tool is killed
	waitDelay = 2 * time.Second
)

// DefaultFlags keeps original attachment names and the nested folder layout
var DefaultFlags = []string{"-m", "extract_msg", "--use-filename"}

// Command runs an external extraction tool as
//
//	<name> <flags...> --out <outDir> <input>
type Command struct {
	name    string
	flags   []string
	timeout time.Duration
	env     []string
}

// Option configures a Command
type Option func(*Command)

// WithFlags replaces the flags placed before --out
func WithFlags(flags ...string) Option {
	return func(c *Command) {
		c.flags = slices.Clone(flags)
	}
}

// WithTimeout bounds a single run. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Command) {
		c.timeout = d
	}
}

// WithEnv appends KEY=VALUE pairs to the inherited environment
func WithEnv(env ...string) Option {
	return func(c *Command) {
		c.env = append(c.env, env...)
	}
}

// New creates a Command. An empty name selects DefaultCommand.
func New(name string, opts ...Option) *Command {
	if name == "" {
		name = DefaultCommand
	}
	c := &Command{
		name:    name,
		flags:   slices.Clone(DefaultFlags),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Args returns the argument list passed for input and outDir
func (c *Command) Args(input, outDir string) []string {
	args := slices.Clone(c.flags)
	return append(args, "--out", outDir, input)
}

// Extract runs the tool and blocks until it exits. A non-zero exit, a failure
// to start or a timeout is returned as an extraction error whose message is the
// tool's stderr.
func (c *Command) Extract(ctx context.Context, input, outDir string) error {
	logger := logging.From(ctx)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := c.Args(input, outDir)
	cmd := exec.CommandContext(ctx, c.name, args...)
	cmd.WaitDelay = waitDelay
	if len(c.env) > 0 {
		cmd.Env = append(os.Environ(), c.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	logger.Debug("Running extraction tool",
		"command", c.name,
		"args", args,
		"extractor_env", c.env,
	)

	err := cmd.Run()
	duration := time.Since(started)

	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			msg = "extraction tool timed out"
		} else if msg == "" {
			msg = "extraction tool failed"
		}

		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		return goerr.Wrap(err, msg,
			goerr.T(types.ErrTagExtraction),
			goerr.V("command", c.name),
			goerr.V("exit_code", exitCode),
			goerr.V("stdout", strings.TrimSpace(stdout.String())),
			goerr.V("duration_ms", duration.Milliseconds()),
		)
	}

	logger.Debug("Extraction tool finished",
		"command", c.name,
		"duration_ms", duration.Milliseconds(),
	)
	return nil
}
