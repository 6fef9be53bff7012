package check

import (
	"errors"
	"net"
	"testing"
)

func mockLookup(t *testing.T) LookupFunc {
	return func(host string) ([]net.IP, error) {
		switch host {
		case "localhost":
			return []net.IP{net.ParseIP("127.0.0.1")}, nil
		case "multi.example.com":
			return []net.IP{
				net.ParseIP("192.0.2.1"),
				net.ParseIP("192.0.2.2"),
				net.ParseIP("192.0.2.3"),
			}, nil
		case "empty.example.com":
			return nil, nil
		case "unresolved.example.com":
			return nil, &net.DNSError{Name: host, Err: "no such host", IsNotFound: true}
		case "error.example.com":
			return nil, &net.DNSError{Name: host, Err: "server misbehaving"}
		default:
			t.Fatalf("unexpected lookup for %q", host)
			return nil, nil
		}
	}
}

func TestResolveLiteralIPv4SkipsLookup(t *testing.T) {
	noLookup := func(host string) ([]net.IP, error) {
		t.Fatalf("lookup should not be called for %q", host)
		return nil, nil
	}

	ip, err := ResolveWith("192.168.1.1", noLookup)
	if err != nil {
		t.Fatalf("ResolveWith: %v", err)
	}
	if !ip.Equal(net.ParseIP("192.168.1.1")) {
		t.Fatalf("expected 192.168.1.1 got %v", ip)
	}
}

func TestResolveLiteralIPv6SkipsLookup(t *testing.T) {
	noLookup := func(host string) ([]net.IP, error) {
		t.Fatalf("lookup should not be called for %q", host)
		return nil, nil
	}

	ip, err := ResolveWith("::1", noLookup)
	if err != nil {
		t.Fatalf("ResolveWith: %v", err)
	}
	if !ip.Equal(net.IPv6loopback) {
		t.Fatalf("expected ::1 got %v", ip)
	}
}

func TestResolveHostname(t *testing.T) {
	ip, err := ResolveWith("localhost", mockLookup(t))
	if err != nil {
		t.Fatalf("ResolveWith: %v", err)
	}
	if !ip.Equal(net.ParseIP("127.0.0.1")) {
		t.Fatalf("expected 127.0.0.1 got %v", ip)
	}
}

func TestResolveUsesFirstOfMultipleRecords(t *testing.T) {
	ip, err := ResolveWith("multi.example.com", mockLookup(t))
	if err != nil {
		t.Fatalf("ResolveWith: %v", err)
	}
	if !ip.Equal(net.ParseIP("192.0.2.1")) {
		t.Fatalf("expected first record 192.0.2.1 got %v", ip)
	}
}

func TestResolveNoRecords(t *testing.T) {
	for _, host := range []string{"empty.example.com", "unresolved.example.com"} {
		_, err := ResolveWith(host, mockLookup(t))
		var lookupErr *DNSLookupError
		if !errors.As(err, &lookupErr) {
			t.Fatalf("%s: expected DNSLookupError got %v", host, err)
		}
		if lookupErr.Host != host {
			t.Fatalf("expected host %q got %q", host, lookupErr.Host)
		}
	}
}

func TestResolveMechanismFailure(t *testing.T) {
	_, err := ResolveWith("error.example.com", mockLookup(t))
	var resolutionErr *DNSResolutionError
	if !errors.As(err, &resolutionErr) {
		t.Fatalf("expected DNSResolutionError got %v", err)
	}
	if resolutionErr.Host != "error.example.com" {
		t.Fatalf("unexpected host %q", resolutionErr.Host)
	}
}
