package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/phinze/sockwatch/pkg/monitor"
	"github.com/phinze/sockwatch/pkg/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2024, 3, 9, 7, 5, 3, 42_000_000, time.Local)

func event(t *testing.T, typ monitor.EventType, line string) monitor.Event {
	t.Helper()
	e := monitor.Event{ID: "id-" + string(typ), Type: typ, Timestamp: at}
	if typ == monitor.EventHeader {
		e.Header = line
		return e
	}
	rec, ok := snapshot.NewRecord(line)
	require.True(t, ok)
	e.Record = rec
	return e
}

func TestPrintText(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(&buf, "text")
	require.NoError(t, err)

	require.NoError(t, p.Print(event(t, monitor.EventHeader, "Netid State Recv-Q")))
	require.NoError(t, p.Print(event(t, monitor.SocketOpened, "tcp  LISTEN 0 0 127.0.0.1:22")))
	require.NoError(t, p.Print(event(t, monitor.SocketClosed, "tcp  LISTEN 0 0 127.0.0.1:22")))

	assert.Equal(t,
		"Netid State Recv-Q\n"+
			"[07:05:03.042] tcp  LISTEN 0 0 127.0.0.1:22\n"+
			"[07:05:03.042] (closed) tcp  LISTEN 0 0 127.0.0.1:22\n",
		buf.String())
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(&buf, "json")
	require.NoError(t, err)

	require.NoError(t, p.Print(event(t, monitor.EventHeader, "Netid State")))
	require.NoError(t, p.Print(event(t, monitor.SocketOpened, "udp UNCONN 0 0 0.0.0.0:68")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var header, opened map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &header))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &opened))

	assert.Equal(t, "header", header["type"])
	assert.Equal(t, "Netid State", header["header"])
	assert.NotContains(t, header, "tokens")

	assert.Equal(t, "opened", opened["type"])
	assert.Equal(t, "id-opened", opened["id"])
	assert.Equal(t, "udp UNCONN 0 0 0.0.0.0:68", opened["line"])
	assert.Equal(t, []any{"udp", "UNCONN", "0", "0", "0.0.0.0:68"}, opened["tokens"])
	assert.Equal(t, at.Format(time.RFC3339Nano), opened["timestamp"])
}

func TestNewUnknownFormat(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "xml")
	assert.Error(t, err)
}

func TestPrintUnknownEventType(t *testing.T) {
	p, err := New(&bytes.Buffer{}, "text")
	require.NoError(t, err)
	assert.Error(t, p.Print(monitor.Event{Type: "bogus"}))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestPrintWriteError(t *testing.T) {
	for _, format := range []string{"text", "json"} {
		p, err := New(failingWriter{}, format)
		require.NoError(t, err)
		assert.Error(t, p.Print(event(t, monitor.SocketOpened, "tcp LISTEN 0 0 *:22")), format)
	}
}
