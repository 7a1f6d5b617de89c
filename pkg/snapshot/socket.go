package snapshot

import (
	"regexp"
	"strconv"
	"strings"
)

// Socket is a best-effort structured view of a record. It is used for
// log attributes only and never for equality.
type Socket struct {
	Netid    string
	State    string
	Local    string
	Peer     string
	ProcName string
	PID      int
}

// users:(("sshd",pid=812,fd=3))
var (
	reUsersPid  = regexp.MustCompile(`pid=(\d+)`)
	reUsersProc = regexp.MustCompile(`\(\("([^"]+)"`)
)

// ParseSocket reads the ss column layout:
// Netid State Recv-Q Send-Q Local Peer [Process...]
func ParseSocket(r Record) (Socket, bool) {
	t := r.Tokens
	if len(t) < 5 {
		return Socket{}, false
	}
	if _, err := strconv.Atoi(t[2]); err != nil {
		return Socket{}, false
	}
	if _, err := strconv.Atoi(t[3]); err != nil {
		return Socket{}, false
	}

	s := Socket{
		Netid: t[0],
		State: t[1],
		Local: t[4],
	}
	if len(t) > 5 && strings.Contains(t[5], ":") {
		s.Peer = t[5]
	}

	rest := strings.Join(t[5:], " ")
	if m := reUsersPid.FindStringSubmatch(rest); m != nil {
		s.PID, _ = strconv.Atoi(m[1])
	}
	if m := reUsersProc.FindStringSubmatch(rest); m != nil {
		s.ProcName = m[1]
	}

	return s, true
}
