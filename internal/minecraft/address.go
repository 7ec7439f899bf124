package minecraft

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// DefaultPort is the Minecraft Java Edition game port.
const DefaultPort = 25565

// SRVLookup matches net.Resolver.LookupSRV.
type SRVLookup func(ctx context.Context, service, proto, name string) (string, []*net.SRV, error)

// Address is a resolved host and port.
type Address struct {
	Host string
	Port int
}

func (a Address) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// ParseAddress splits "host[:port]". The returned bool is false when no
// port was given.
func ParseAddress(raw string) (Address, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Address{}, false, fmt.Errorf("empty server address")
	}

	host, portStr, err := net.SplitHostPort(raw)
	if err != nil {
		// no port (or bare IPv6 literal)
		return Address{Host: strings.Trim(raw, "[]"), Port: DefaultPort}, false, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return Address{}, false, fmt.Errorf("invalid port in address %q", raw)
	}
	if host == "" {
		return Address{}, false, fmt.Errorf("missing host in address %q", raw)
	}
	return Address{Host: host, Port: port}, true, nil
}

// Resolve parses raw and, when it has no explicit port, follows the
// _minecraft._tcp SRV record if one exists.
func Resolve(ctx context.Context, raw string, lookup SRVLookup) (Address, error) {
	addr, hasPort, err := ParseAddress(raw)
	if err != nil {
		return Address{}, err
	}
	if hasPort || lookup == nil || net.ParseIP(addr.Host) != nil {
		return addr, nil
	}

	_, records, err := lookup(ctx, "minecraft", "tcp", addr.Host)
	if err != nil || len(records) == 0 {
		return addr, nil
	}
	target := strings.TrimSuffix(records[0].Target, ".")
	if target == "" {
		return addr, nil
	}
	return Address{Host: target, Port: int(records[0].Port)}, nil
}
