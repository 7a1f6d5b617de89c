package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/phinze/sockwatch/pkg/config"
	"github.com/phinze/sockwatch/pkg/snapshot"
)

// Source produces one snapshot of the system's sockets per call
type Source interface {
	Query(ctx context.Context) (snapshot.Snapshot, error)
}

var (
	// ErrQueryFailed matches every *QueryError
	ErrQueryFailed = errors.New("socket query failed")
	// ErrNotFound means the socket utility is not installed or not on PATH
	ErrNotFound = errors.New("socket utility not found")
	// ErrTimeout means the query did not finish within its timeout
	ErrTimeout = errors.New("socket query timed out")
)

// QueryError describes a failed query. It is always recoverable.
type QueryError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *QueryError) Error() string {
	msg := fmt.Sprintf("%s: %s: %v", ErrQueryFailed, e.Command, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrQueryFailed) match any QueryError
func (e *QueryError) Is(target error) bool {
	return target == ErrQueryFailed
}

// New returns the Source selected by the configuration.
// cfg must have been validated.
func New(cfg *config.Config) (Source, error) {
	switch cfg.Source {
	case config.SourceSS:
		return NewCommandSource(CommandOptions{
			Path:    cfg.Command.Path,
			Args:    cfg.Command.Args,
			Sudo:    cfg.Command.Sudo,
			Timeout: cfg.QueryTimeoutDuration(),
		}), nil
	case config.SourceProcNet:
		return NewProcNetSource("")
	default:
		return nil, fmt.Errorf("unknown source: %s", cfg.Source)
	}
}

func commandLine(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}
