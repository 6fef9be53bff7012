package check

import (
	"errors"
	"net"

	"github.com/sirupsen/logrus"
)

// LookupFunc resolves a hostname to its IP addresses. The production
// implementation is net.LookupIP; tests substitute their own.
type LookupFunc func(host string) ([]net.IP, error)

// Resolve turns a host string into the single address that will be probed.
// Literal IPv4/IPv6 addresses are returned as-is without touching DNS. When
// a name resolves to several records only the first one is used; each
// address should be monitored by a separate invocation instead of being
// fanned out here.
func Resolve(host string) (net.IP, error) {
	return ResolveWith(host, net.LookupIP)
}

// ResolveWith is Resolve with an injectable lookup function.
func ResolveWith(host string, lookup LookupFunc) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		logrus.Debug("Host is a literal IP address, skipping DNS lookup: ", ip)
		return ip, nil
	}

	ips, err := lookup(host)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, &DNSLookupError{Host: host}
		}
		return nil, &DNSResolutionError{Host: host, Err: err}
	}
	if len(ips) == 0 {
		return nil, &DNSLookupError{Host: host}
	}

	if len(ips) > 1 {
		logrus.Debugf("Host %v resolved to %d addresses, using the first: %v", host, len(ips), ips[0])
	}

	return ips[0], nil
}
