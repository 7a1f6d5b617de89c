// Package output renders socket events for humans or machines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/phinze/sockwatch/pkg/config"
	"github.com/phinze/sockwatch/pkg/monitor"
)

// TimestampLayout renders HH:MM:SS.mmm
const TimestampLayout = "15:04:05.000"

// Printer writes events to w in text or JSON form
type Printer struct {
	w      io.Writer
	format string

	stamp  lipgloss.Style
	closed lipgloss.Style
}

// New creates a printer. Styling is applied only when w is a terminal
// that supports color.
func New(w io.Writer, format string) (*Printer, error) {
	switch format {
	case config.OutputText, config.OutputJSON:
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}

	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:      w,
		format: format,
		stamp:  r.NewStyle().Faint(true),
		closed: r.NewStyle().Foreground(lipgloss.Color("#D93025")),
	}, nil
}

// Print writes a single event
func (p *Printer) Print(e monitor.Event) error {
	if p.format == config.OutputJSON {
		return p.printJSON(e)
	}
	return p.printText(e)
}

func (p *Printer) printText(e monitor.Event) error {
	var err error
	switch e.Type {
	case monitor.EventHeader:
		_, err = fmt.Fprintln(p.w, e.Header)
	case monitor.SocketOpened:
		_, err = fmt.Fprintf(p.w, "%s %s\n", p.stamp.Render(stamp(e.Timestamp)), e.Record.Line)
	case monitor.SocketClosed:
		_, err = fmt.Fprintf(p.w, "%s %s %s\n", p.stamp.Render(stamp(e.Timestamp)), p.closed.Render("(closed)"), e.Record.Line)
	default:
		return fmt.Errorf("unknown event type: %s", e.Type)
	}
	return err
}

type jsonEvent struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Timestamp string   `json:"timestamp"`
	Header    string   `json:"header,omitempty"`
	Line      string   `json:"line,omitempty"`
	Tokens    []string `json:"tokens,omitempty"`
}

func (p *Printer) printJSON(e monitor.Event) error {
	data, err := json.Marshal(jsonEvent{
		ID:        e.ID,
		Type:      string(e.Type),
		Timestamp: e.Timestamp.Format(time.RFC3339Nano),
		Header:    e.Header,
		Line:      e.Record.Line,
		Tokens:    e.Record.Tokens,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	data = append(data, '\n')
	if _, err := p.w.Write(data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

func stamp(t time.Time) string {
	return "[" + t.Format(TimestampLayout) + "]"
}
