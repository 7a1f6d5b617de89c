package snapshot

import (
	"strings"
	"time"
)

// keySep joins tokens into a map key. It cannot appear inside a token
// produced by strings.Fields.
const keySep = "\x1f"

// Record is one line of socket query output. Identity is the token
// sequence only; Line is kept for display.
type Record struct {
	Line   string
	Tokens []string
}

// NewRecord tokenizes a line. It reports false for lines with no tokens.
// Line is kept exactly as given.
func NewRecord(line string) (Record, bool) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Record{}, false
	}
	return Record{
		Line:   line,
		Tokens: tokens,
	}, true
}

// Key returns the equality key of the record
func (r Record) Key() string {
	return strings.Join(r.Tokens, keySep)
}

// Snapshot is the result of one socket query
type Snapshot struct {
	Header  string
	Records []Record
	TakenAt time.Time
}

// Parse splits raw query output into a header and records.
// The first line is always the header; blank lines are skipped.
// CRLF line endings are accepted.
func Parse(output string) Snapshot {
	lines := strings.Split(output, "\n")

	snap := Snapshot{TakenAt: time.Now()}
	if len(lines) == 0 {
		return snap
	}

	snap.Header = strings.TrimSuffix(lines[0], "\r")
	for _, line := range lines[1:] {
		rec, ok := NewRecord(strings.TrimSuffix(line, "\r"))
		if !ok {
			continue
		}
		snap.Records = append(snap.Records, rec)
	}

	return snap
}
