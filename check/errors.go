package check

import (
	"errors"
	"fmt"
	"time"
)

// ErrPermissionDenied is returned when the ICMP socket cannot be opened due
// to missing privileges. Raw sockets typically require root or CAP_NET_RAW.
var ErrPermissionDenied = errors.New("Ping failed because of insufficient permissions")

// DNSLookupError reports a hostname that resolved to zero records.
type DNSLookupError struct {
	Host string
}

func (e *DNSLookupError) Error() string {
	return fmt.Sprintf("DNS Lookup failed for: %s", e.Host)
}

// DNSResolutionError reports a failure of the resolution mechanism itself,
// as opposed to a name that simply has no records.
type DNSResolutionError struct {
	Host string
	Err  error
}

func (e *DNSResolutionError) Error() string {
	return fmt.Sprintf("DNS resolution error for '%s': %s", e.Host, e.Err)
}

func (e *DNSResolutionError) Unwrap() error { return e.Err }

// TimeoutError reports a probe whose reply did not arrive within the
// per-probe timeout.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Ping timed out after: %dms", e.Timeout.Milliseconds())
}

// IOError wraps a transport level I/O failure.
type IOError struct {
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("Ping failed with IO error: %s", e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ProbeError wraps any other transport error that is neither a timeout, a
// permission failure nor a plain I/O fault.
type ProbeError struct {
	Err error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("Ping failed with error: %s", e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }
