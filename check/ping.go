package check

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

const (
	timeSliceLength  = 8
	trackerLength    = len(uuid.UUID{})
	protocolICMP     = 1
	protocolIPv6ICMP = 58
)

// SocketType selects how the ICMP transport is opened.
type SocketType int

const (
	// Raw opens an ip4:icmp/ip6:ipv6-icmp socket. Requires elevated
	// privileges on most systems.
	Raw SocketType = iota
	// Datagram opens an unprivileged udp4/udp6 ICMP socket.
	Datagram
)

func (s SocketType) String() string {
	switch s {
	case Datagram:
		return "Datagram"
	default:
		return "Raw"
	}
}

var (
	ipv4Proto = map[SocketType]string{Raw: "ip4:icmp", Datagram: "udp4"}
	ipv6Proto = map[SocketType]string{Raw: "ip6:ipv6-icmp", Datagram: "udp6"}
)

// Pinger is a Prober that sends one echo request at a time over a single
// ICMP socket and waits for the matching reply before returning. Probes are
// never in flight concurrently.
type Pinger struct {
	Timeout time.Duration
	TTL     int

	conn       *icmp.PacketConn
	ipaddr     *net.IPAddr
	ipv4       bool
	socketType SocketType
	id         int
	tracker    uuid.UUID
}

// NewPinger opens the ICMP socket for ip and prepares the echo framing.
// Callers own the returned Pinger and must Close it.
func NewPinger(ip net.IP, socketType SocketType, timeout time.Duration) (*Pinger, error) {
	p := &Pinger{
		Timeout:    timeout,
		TTL:        64,
		ipaddr:     &net.IPAddr{IP: ip},
		ipv4:       isIPv4(ip),
		socketType: socketType,
		id:         rand.Intn(math.MaxUint16),
		tracker:    uuid.New(),
	}

	proto := ipv6Proto[socketType]
	if p.ipv4 {
		proto = ipv4Proto[socketType]
	}

	logrus.Debugf("Opening %v socket (%v) for %v", socketType, proto, ip)

	conn, err := icmp.ListenPacket(proto, "")
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, ErrPermissionDenied
		}
		return nil, &IOError{Err: err}
	}

	if p.ipv4 {
		if err := conn.IPv4PacketConn().SetTTL(p.TTL); err != nil {
			conn.Close()
			return nil, &IOError{Err: err}
		}
	} else {
		if err := conn.IPv6PacketConn().SetHopLimit(p.TTL); err != nil {
			conn.Close()
			return nil, &IOError{Err: err}
		}
	}

	p.conn = conn

	return p, nil
}

// Close releases the underlying socket.
func (p *Pinger) Close() error {
	return p.conn.Close()
}

// Probe sends a single echo request and blocks until the matching reply
// arrives or the per-probe timeout elapses. The returned duration is the
// wall clock time between send and reply arrival, measured on the monotonic
// clock.
func (p *Pinger) Probe(seq int) (time.Duration, error) {
	var dst net.Addr = p.ipaddr
	if p.socketType == Datagram {
		dst = &net.UDPAddr{IP: p.ipaddr.IP, Zone: p.ipaddr.Zone}
	}

	trackerBytes, err := p.tracker.MarshalBinary()
	if err != nil {
		return 0, &ProbeError{Err: fmt.Errorf("unable to marshal UUID binary: %w", err)}
	}

	msg := &icmp.Message{
		Type: p.requestType(),
		Code: 0,
		Body: &icmp.Echo{
			ID:   p.id,
			Seq:  seq,
			Data: append(timeToBytes(time.Now()), trackerBytes...),
		},
	}

	wire, err := msg.Marshal(nil)
	if err != nil {
		return 0, &ProbeError{Err: err}
	}

	start := time.Now()
	if _, err := p.conn.WriteTo(wire, dst); err != nil {
		return 0, p.transportError(err)
	}

	deadline := start.Add(p.Timeout)
	buf := make([]byte, 512)
	for {
		if err := p.conn.SetReadDeadline(deadline); err != nil {
			return 0, &IOError{Err: err}
		}
		n, _, err := p.conn.ReadFrom(buf)
		if err != nil {
			return 0, p.transportError(err)
		}
		rtt := time.Since(start)

		ok, err := p.matchReply(buf[:n], seq)
		if err != nil {
			return 0, err
		}
		if ok {
			return rtt, nil
		}
		// Reply belonged to another echo exchange, keep reading until the
		// deadline fires.
	}
}

// matchReply reports whether pkt is the echo reply for the probe with the
// given sequence number.
func (p *Pinger) matchReply(pkt []byte, seq int) (bool, error) {
	proto := protocolIPv6ICMP
	if p.ipv4 {
		proto = protocolICMP
	}

	m, err := icmp.ParseMessage(proto, pkt)
	if err != nil {
		return false, &ProbeError{Err: fmt.Errorf("error parsing icmp message: %w", err)}
	}

	if m.Type != ipv4.ICMPTypeEchoReply && m.Type != ipv6.ICMPTypeEchoReply {
		return false, nil
	}

	echo, ok := m.Body.(*icmp.Echo)
	if !ok {
		return false, &ProbeError{Err: fmt.Errorf("invalid ICMP echo reply body: %T", m.Body)}
	}

	if !p.matchID(echo.ID) || echo.Seq != seq {
		return false, nil
	}

	if len(echo.Data) < timeSliceLength+trackerLength {
		return false, nil
	}

	var replyUUID uuid.UUID
	if err := replyUUID.UnmarshalBinary(echo.Data[timeSliceLength : timeSliceLength+trackerLength]); err != nil {
		return false, nil
	}

	return replyUUID == p.tracker, nil
}

// matchID checks the echo identifier. Datagram sockets have the identifier
// rewritten by the kernel, so it cannot be compared there.
func (p *Pinger) matchID(id int) bool {
	if p.socketType == Datagram {
		return true
	}
	return id == p.id
}

func (p *Pinger) requestType() icmp.Type {
	if p.ipv4 {
		return ipv4.ICMPTypeEcho
	}
	return ipv6.ICMPTypeEchoRequest
}

// transportError maps a raw socket error onto the probe failure taxonomy.
func (p *Pinger) transportError(err error) error {
	if errors.Is(err, os.ErrPermission) {
		return ErrPermissionDenied
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return &TimeoutError{Timeout: p.Timeout}
		}
		return &IOError{Err: err}
	}

	return &ProbeError{Err: err}
}

func isIPv4(ip net.IP) bool {
	return len(ip.To4()) == net.IPv4len
}

func timeToBytes(t time.Time) []byte {
	nsec := t.UnixNano()
	b := make([]byte, 8)
	for i := uint8(0); i < 8; i++ {
		b[i] = byte((nsec >> ((7 - i) * 8)) & 0xff)
	}
	return b
}
