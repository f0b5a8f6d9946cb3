// Package intent models the operator's declared configuration for one
// configuration link, as a closed set of domain-specific variants.
package intent

import "fmt"

// Domain identifies the kind of configuration an intent declares.
type Domain string

const (
	DomainVLAN           Domain = "vlan"
	DomainBridgePriority Domain = "bridge_priority"
	DomainConfigIP       Domain = "config_ip_router"
	DomainStaticRoute    Domain = "static_route"
	DomainLoopback       Domain = "loopback"
	DomainTrunk          Domain = "trunk"
	DomainInterVLAN      Domain = "inter_vlan"
	DomainSwitchHost     Domain = "switch_host"
)

// Domains lists every supported domain in display order.
var Domains = []Domain{
	DomainVLAN,
	DomainBridgePriority,
	DomainConfigIP,
	DomainStaticRoute,
	DomainLoopback,
	DomainTrunk,
	DomainInterVLAN,
	DomainSwitchHost,
}

// Valid reports whether d is one of the supported domains.
func (d Domain) Valid() bool {
	for _, known := range Domains {
		if d == known {
			return true
		}
	}
	return false
}

// ParseDomain converts a domain name to a Domain.
func ParseDomain(s string) (Domain, error) {
	d := Domain(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown domain %q", s)
	}
	return d, nil
}
