package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"time"

	"github.com/phinze/sockwatch/pkg/snapshot"
	"github.com/prometheus/procfs"
)

// ProcNetHeader mirrors the ss column layout used by ProcNetSource lines
const ProcNetHeader = "Netid State      Recv-Q Send-Q Local Address:Port Peer Address:Port Details"

// ProcNetSource reads /proc/net/{tcp,tcp6,udp,udp6} directly. It needs no
// elevated privilege and no external utility, but cannot see process names.
type ProcNetSource struct {
	fs procfs.FS
}

// NewProcNetSource opens procfs at mountPoint, or /proc when empty
func NewProcNetSource(mountPoint string) (*ProcNetSource, error) {
	if mountPoint == "" {
		mountPoint = procfs.DefaultMountPoint
	}
	pfs, err := procfs.NewFS(mountPoint)
	if err != nil {
		return nil, fmt.Errorf("failed to open procfs at %s: %w", mountPoint, err)
	}
	return &ProcNetSource{fs: pfs}, nil
}

type procTable struct {
	netid string
	file  string
	load  func() (procfs.NetTCP, error)
}

func (s *ProcNetSource) tables() []procTable {
	udp := func(load func() (procfs.NetUDP, error)) func() (procfs.NetTCP, error) {
		return func() (procfs.NetTCP, error) {
			lines, err := load()
			return procfs.NetTCP(lines), err
		}
	}
	return []procTable{
		{netid: "tcp", file: "net/tcp", load: s.fs.NetTCP},
		{netid: "tcp", file: "net/tcp6", load: s.fs.NetTCP6},
		{netid: "udp", file: "net/udp", load: udp(s.fs.NetUDP)},
		{netid: "udp", file: "net/udp6", load: udp(s.fs.NetUDP6)},
	}
}

// Query reads all socket tables. A missing table (e.g. IPv6 disabled) is
// skipped; any other read error fails the whole query.
func (s *ProcNetSource) Query(ctx context.Context) (snapshot.Snapshot, error) {
	snap := snapshot.Snapshot{
		Header:  ProcNetHeader,
		TakenAt: time.Now(),
	}

	for _, t := range s.tables() {
		if err := ctx.Err(); err != nil {
			return snapshot.Snapshot{}, &QueryError{Command: "procfs " + t.file, Err: err}
		}

		lines, err := t.load()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return snapshot.Snapshot{}, &QueryError{Command: "procfs " + t.file, Err: err}
		}

		for _, l := range lines {
			rec, ok := snapshot.NewRecord(formatProcLine(t.netid, l.St, l.RxQueue, l.TxQueue,
				l.LocalAddr, l.LocalPort, l.RemAddr, l.RemPort, l.UID, l.Inode))
			if !ok {
				continue
			}
			snap.Records = append(snap.Records, rec)
		}
	}

	return snap, nil
}

func formatProcLine(netid string, st, rx, tx uint64, laddr net.IP, lport uint64, raddr net.IP, rport, uid, inode uint64) string {
	return fmt.Sprintf("%-5s %-10s %-6d %-6d %s %s uid:%d ino:%d",
		netid, parseState(st), rx, tx,
		hostPort(laddr, lport), hostPort(raddr, rport), uid, inode)
}

// parseState converts a kernel socket state to its ss name. UDP sockets
// only ever report 01 (connected) or 07 (unconnected).
func parseState(st uint64) string {
	states := map[uint64]string{
		0x01: "ESTAB",
		0x02: "SYN-SENT",
		0x03: "SYN-RECV",
		0x04: "FIN-WAIT-1",
		0x05: "FIN-WAIT-2",
		0x06: "TIME-WAIT",
		0x07: "UNCONN",
		0x08: "CLOSE-WAIT",
		0x09: "LAST-ACK",
		0x0A: "LISTEN",
		0x0B: "CLOSING",
	}

	if state, ok := states[st]; ok {
		return state
	}
	return "UNKNOWN"
}

func hostPort(ip net.IP, port uint64) string {
	host := "*"
	if ip != nil {
		host = ip.String()
	}
	p := "*"
	if port != 0 {
		p = strconv.FormatUint(port, 10)
	}
	return net.JoinHostPort(host, p)
}
