// Package compare checks declared intents against device-reported state,
// field by field, with one comparator per configuration domain.
package compare

import (
	"strconv"
	"strings"

	"github.com/newtron-network/newtverify/pkg/util"
)

// Kind selects how a field value is coerced to canonical form before two
// values are compared. A value that cannot be coerced is compared as its
// trimmed raw text.
type Kind int

const (
	// KindString compares trimmed text, case-sensitively.
	KindString Kind = iota
	// KindNumber compares integers numerically ("024" == "24", "/24" == "24").
	KindNumber
	// KindPrefixLen compares prefix lengths given as "24", "/24" or a netmask.
	KindPrefixLen
	// KindIP compares IPv4/IPv6 addresses by canonical text.
	KindIP
	// KindVLANSet compares comma-separated VLAN lists with ranges as sets.
	KindVLANSet
	// KindFold compares trimmed text case-insensitively, for keywords such
	// as routing protocol names.
	KindFold
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindPrefixLen:
		return "prefixlen"
	case KindIP:
		return "ip"
	case KindVLANSet:
		return "vlanset"
	case KindFold:
		return "fold"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Canonical returns the comparison key for v.
func (k Kind) Canonical(v string) string {
	v = strings.TrimSpace(v)
	switch k {
	case KindNumber:
		n, err := strconv.Atoi(strings.TrimPrefix(v, "/"))
		if err != nil {
			return v
		}
		return strconv.Itoa(n)
	case KindPrefixLen:
		n, err := util.ParsePrefixLen(v)
		if err != nil {
			return v
		}
		return strconv.Itoa(n)
	case KindIP:
		if ip, ok := util.CanonicalIP(v); ok {
			return ip
		}
		return v
	case KindVLANSet:
		vlans, err := util.ExpandVLANRange(v)
		if err != nil {
			return v
		}
		return util.CompactRange(vlans)
	case KindFold:
		return strings.ToLower(v)
	}
	return v
}

// Equal reports whether a and b have the same canonical form. It is
// symmetric.
func (k Kind) Equal(a, b string) bool {
	return k.Canonical(a) == k.Canonical(b)
}
