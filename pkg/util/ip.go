package util

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ParseIPWithMask parses an IP address with CIDR notation
// Returns the IP, mask length, and any error
func ParseIPWithMask(cidr string) (net.IP, int, error) {
	ip, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid CIDR notation: %s", cidr)
	}
	ones, _ := ipNet.Mask.Size()
	return ip, ones, nil
}

// IsValidIPv4 checks if a string is a valid IPv4 address
func IsValidIPv4(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	return ip != nil && ip.To4() != nil
}

// CanonicalIP returns the canonical text form of an IPv4 or IPv6 address
// ("010.0.0.1" is rejected, "::0001" becomes "::1"). ok is false when s
// is not an address.
func CanonicalIP(s string) (string, bool) {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return "", false
	}
	return ip.String(), true
}

// ParsePrefixLen parses a prefix length given as "24", "/24" or as a
// dotted-decimal netmask ("255.255.255.0"). Non-contiguous masks and
// lengths above 128 are rejected.
func ParsePrefixLen(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty prefix length")
	}

	if strings.Contains(s, ".") {
		ip := net.ParseIP(s).To4()
		if ip == nil {
			return 0, fmt.Errorf("invalid netmask: %s", s)
		}
		ones, bits := net.IPMask(ip).Size()
		if bits == 0 {
			return 0, fmt.Errorf("non-contiguous netmask: %s", s)
		}
		return ones, nil
	}

	n, err := strconv.Atoi(strings.TrimPrefix(s, "/"))
	if err != nil {
		return 0, fmt.Errorf("invalid prefix length: %s", s)
	}
	if n < 0 || n > 128 {
		return 0, fmt.Errorf("prefix length out of range: %d", n)
	}
	return n, nil
}

// NetworkOf returns the network an address and prefix length describe,
// with host bits cleared: ("10.0.0.5", "24") -> "10.0.0.0/24". ok is false
// when either part does not parse or the length exceeds the address family.
func NetworkOf(addr, prefixLen string) (string, bool) {
	ip := net.ParseIP(strings.TrimSpace(addr))
	if ip == nil {
		return "", false
	}
	n, err := ParsePrefixLen(prefixLen)
	if err != nil {
		return "", false
	}
	bits := 128
	if v4 := ip.To4(); v4 != nil {
		ip, bits = v4, 32
	}
	if n > bits {
		return "", false
	}
	ipNet := net.IPNet{IP: ip.Mask(net.CIDRMask(n, bits)), Mask: net.CIDRMask(n, bits)}
	return ipNet.String(), true
}

// ValidateVLANID checks that id is a usable 802.1Q VLAN id.
func ValidateVLANID(id int) error {
	if id < 1 || id > 4094 {
		return fmt.Errorf("VLAN ID must be between 1 and 4094, got %d", id)
	}
	return nil
}

// ParseVLANID parses and validates a VLAN id given as text.
func ParseVLANID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid VLAN ID: %q", s)
	}
	if err := ValidateVLANID(id); err != nil {
		return 0, err
	}
	return id, nil
}
