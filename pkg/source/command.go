package source

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/phinze/sockwatch/pkg/snapshot"
)

// Runner executes a command and returns its stdout and stderr
type Runner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// CommandOptions configures a CommandSource
type CommandOptions struct {
	Path    string
	Args    []string
	Sudo    bool
	Timeout time.Duration
	// Runner overrides command execution, mainly for tests
	Runner Runner
}

// CommandSource shells out to a socket-statistics utility such as ss
type CommandSource struct {
	name    string
	args    []string
	timeout time.Duration
	run     Runner
}

// NewCommandSource creates a CommandSource. With Sudo set and an effective
// UID other than root, the command runs through "sudo -n" so a missing
// credential fails the query instead of waiting on a password prompt.
func NewCommandSource(opts CommandOptions) *CommandSource {
	name := opts.Path
	args := append([]string(nil), opts.Args...)

	if opts.Sudo && os.Geteuid() != 0 {
		args = append([]string{"-n", name}, args...)
		name = "sudo"
	}

	run := opts.Runner
	if run == nil {
		run = execRunner
	}

	return &CommandSource{
		name:    name,
		args:    args,
		timeout: opts.Timeout,
		run:     run,
	}
}

// Command returns the full command line that will be executed
func (s *CommandSource) Command() string {
	return commandLine(s.name, s.args)
}

// Query runs the command once and parses its output
func (s *CommandSource) Query(ctx context.Context) (snapshot.Snapshot, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	takenAt := time.Now()
	stdout, stderr, err := s.run(ctx, s.name, s.args...)
	if err != nil {
		qe := &QueryError{
			Command: s.Command(),
			Stderr:  strings.TrimSpace(string(stderr)),
			Err:     err,
		}
		switch {
		case errors.Is(err, exec.ErrNotFound):
			qe.Err = errors.Join(ErrNotFound, err)
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			qe.Err = errors.Join(ErrTimeout, err)
		}
		return snapshot.Snapshot{}, qe
	}

	snap := snapshot.Parse(string(stdout))
	snap.TakenAt = takenAt
	return snap, nil
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
