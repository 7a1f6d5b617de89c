package monitor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phinze/sockwatch/pkg/snapshot"
	"github.com/phinze/sockwatch/pkg/source"
)

// EventType represents the type of socket event
type EventType string

const (
	// EventHeader carries the query's header line, emitted once
	EventHeader EventType = "header"
	// SocketOpened is emitted for a record not seen in the previous poll
	SocketOpened EventType = "opened"
	// SocketClosed is emitted for a record missing from the latest poll
	SocketClosed EventType = "closed"
)

// Event represents a change observed between two polls
type Event struct {
	ID        string
	Type      EventType
	Header    string
	Record    snapshot.Record
	Timestamp time.Time
}

// DefaultPollInterval is used when Config.PollInterval is unset
const DefaultPollInterval = 100 * time.Millisecond

// Config holds configuration for the monitor
type Config struct {
	Source       source.Source
	PollInterval time.Duration
	ReportClosed bool
	Logger       *slog.Logger
}

// Monitor polls a Source and reports sockets that appear (and optionally
// disappear) between polls.
type Monitor struct {
	source       source.Source
	differ       *snapshot.Differ
	pollInterval time.Duration
	reportClosed bool
	logger       *slog.Logger
	events       chan Event

	failures int
}

// New creates a new socket monitor
func New(cfg Config) *Monitor {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Monitor{
		source:       cfg.Source,
		differ:       snapshot.NewDiffer(),
		pollInterval: interval,
		reportClosed: cfg.ReportClosed,
		logger:       logger,
		events:       make(chan Event, 50),
	}
}

var errNoSource = errors.New("monitor has no source")

// Start begins polling in the background. The events channel is closed
// once ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) error {
	if m.source == nil {
		return errNoSource
	}

	go func() {
		_ = m.Run(ctx)
	}()

	return nil
}

// Run polls until ctx is cancelled. The events channel is closed when
// Run returns, including on error.
func (m *Monitor) Run(ctx context.Context) error {
	defer close(m.events)

	if m.source == nil {
		return errNoSource
	}

	m.logger.Debug("starting socket monitor", "interval", m.pollInterval, "reportClosed", m.reportClosed)
	m.monitorLoop(ctx)

	return nil
}

// Events returns the channel of socket events
func (m *Monitor) Events() <-chan Event {
	return m.events
}

// Retained returns the records currently considered active.
// Not safe to call while the monitor loop is running.
func (m *Monitor) Retained() []snapshot.Record {
	return m.differ.Retained()
}

// monitorLoop polls immediately, then on every tick
func (m *Monitor) monitorLoop(ctx context.Context) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		if !m.checkSockets(ctx) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// checkSockets runs one poll and delivers its events. It returns false
// when ctx was cancelled during delivery.
func (m *Monitor) checkSockets(ctx context.Context) bool {
	events, err := m.Poll(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		m.failures++
		m.logger.Warn("socket query failed, will retry",
			"error", err,
			"consecutiveFailures", m.failures)
		return true
	}

	if m.failures > 0 {
		m.logger.Info("socket query recovered", "failedPolls", m.failures)
		m.failures = 0
	}

	for _, event := range events {
		select {
		case m.events <- event:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

// Poll runs a single query and folds it into the retained set. A failed
// query leaves the retained set untouched. Events are stamped with the
// time the query started.
func (m *Monitor) Poll(ctx context.Context) ([]Event, error) {
	started := time.Now()
	snap, err := m.source.Query(ctx)
	if err != nil {
		var qe *source.QueryError
		if errors.As(err, &qe) && qe.Stderr != "" {
			m.logger.Debug("socket query stderr", "command", qe.Command, "stderr", qe.Stderr)
		}
		return nil, err
	}

	diff := m.differ.Apply(snap)
	now := snap.TakenAt
	if now.IsZero() {
		now = started
	}

	var events []Event
	if diff.Header != "" {
		events = append(events, Event{
			ID:        uuid.New().String(),
			Type:      EventHeader,
			Header:    diff.Header,
			Timestamp: now,
		})
	}

	for _, rec := range diff.Added {
		m.logger.Debug("socket opened", socketAttrs(rec)...)
		events = append(events, Event{
			ID:        uuid.New().String(),
			Type:      SocketOpened,
			Record:    rec,
			Timestamp: now,
		})
	}

	for _, rec := range diff.Removed {
		m.logger.Debug("socket closed", socketAttrs(rec)...)
		if !m.reportClosed {
			continue
		}
		events = append(events, Event{
			ID:        uuid.New().String(),
			Type:      SocketClosed,
			Record:    rec,
			Timestamp: now,
		})
	}

	return events, nil
}

func socketAttrs(rec snapshot.Record) []any {
	sock, ok := snapshot.ParseSocket(rec)
	if !ok {
		return []any{"line", rec.Line}
	}
	attrs := []any{
		"netid", sock.Netid,
		"state", sock.State,
		"local", sock.Local,
	}
	if sock.Peer != "" {
		attrs = append(attrs, "peer", sock.Peer)
	}
	if sock.PID != 0 {
		attrs = append(attrs, "pid", sock.PID)
	}
	if sock.ProcName != "" {
		attrs = append(attrs, "process", sock.ProcName)
	}
	return attrs
}
