package intent

import (
	"fmt"
	"strings"
)

// Intent is the declared configuration for one link. The set of
// implementations is closed: VLAN, BridgePriority, ConfigIP, StaticRoute,
// Loopback, TrunkLink, InterVLANLink and SwitchHostLink.
//
// Field values are kept as the operator entered them; comparison code
// coerces them to canonical form.
type Intent interface {
	Domain() Domain
	// LinkID is the explicit ID when set, otherwise a label derived from
	// the targeted hosts and objects.
	LinkID() string
	// Hosts returns the targeted device hostnames, in declaration order.
	Hosts() []string
	// Validate rejects intents with absent or unusable required fields.
	Validate() error

	sealed()
}

// VLAN declares a VLAN on a switch and the access/trunk port carrying it.
type VLAN struct {
	ID        string `yaml:"id,omitempty" json:"id,omitempty"`
	Hostname  string `yaml:"hostname" json:"hostname"`
	VLANID    string `yaml:"vlan_id" json:"vlan_id"`
	VLANName  string `yaml:"vlan_name,omitempty" json:"vlan_name,omitempty"`
	IPAddress string `yaml:"ip_address,omitempty" json:"ip_address,omitempty"`
	CIDR      string `yaml:"cidr,omitempty" json:"cidr,omitempty"`
	Interface string `yaml:"interface" json:"interface"`
	Mode      string `yaml:"mode" json:"mode"`
}

func (VLAN) Domain() Domain { return DomainVLAN }
func (v VLAN) LinkID() string {
	return linkID(v.ID, DomainVLAN, v.Hostname, "vlan"+v.VLANID)
}
func (v VLAN) Hosts() []string { return []string{v.Hostname} }
func (VLAN) sealed()           {}

// BridgePriority declares the spanning-tree bridge priority of a VLAN.
type BridgePriority struct {
	ID       string `yaml:"id,omitempty" json:"id,omitempty"`
	Hostname string `yaml:"hostname" json:"hostname"`
	VLAN     string `yaml:"vlan" json:"vlan"`
	Priority string `yaml:"priority" json:"priority"`
}

func (BridgePriority) Domain() Domain { return DomainBridgePriority }
func (b BridgePriority) LinkID() string {
	return linkID(b.ID, DomainBridgePriority, b.Hostname, "vlan"+b.VLAN)
}
func (b BridgePriority) Hosts() []string { return []string{b.Hostname} }
func (BridgePriority) sealed()           {}

// ConfigIP declares an IPv4 address on a router interface.
type ConfigIP struct {
	ID        string `yaml:"id,omitempty" json:"id,omitempty"`
	Hostname  string `yaml:"hostname" json:"hostname"`
	Interface string `yaml:"interface" json:"interface"`
	IPAddress string `yaml:"ip_address" json:"ip_address"`
	CIDR      string `yaml:"cidr" json:"cidr"`
}

func (ConfigIP) Domain() Domain { return DomainConfigIP }
func (c ConfigIP) LinkID() string {
	return linkID(c.ID, DomainConfigIP, c.Hostname, c.Interface)
}
func (c ConfigIP) Hosts() []string { return []string{c.Hostname} }
func (ConfigIP) sealed()           {}

// StaticRoute declares a static route on a router.
type StaticRoute struct {
	ID       string `yaml:"id,omitempty" json:"id,omitempty"`
	Hostname string `yaml:"hostname" json:"hostname"`
	Prefix   string `yaml:"prefix" json:"prefix"`
	CIDR     string `yaml:"cidr" json:"cidr"`
	NextHop  string `yaml:"next_hop" json:"next_hop"`
}

func (StaticRoute) Domain() Domain { return DomainStaticRoute }
func (s StaticRoute) LinkID() string {
	return linkID(s.ID, DomainStaticRoute, s.Hostname, s.Prefix+"/"+s.CIDR)
}
func (s StaticRoute) Hosts() []string { return []string{s.Hostname} }
func (StaticRoute) sealed()           {}

// Loopback routing protocols a loopback can be advertised into.
const (
	ProtocolNone  = "none"
	ProtocolRIPv2 = "ripv2"
	ProtocolOSPF  = "ospf"
)

// Loopback declares a loopback interface and, optionally, the routing
// protocol it is advertised into.
type Loopback struct {
	ID        string `yaml:"id,omitempty" json:"id,omitempty"`
	Hostname  string `yaml:"hostname" json:"hostname"`
	Number    string `yaml:"number" json:"number"`
	IPAddress string `yaml:"ip_address" json:"ip_address"`
	CIDR      string `yaml:"cidr,omitempty" json:"cidr,omitempty"`
	Protocol  string `yaml:"protocol,omitempty" json:"protocol,omitempty"`
}

func (Loopback) Domain() Domain { return DomainLoopback }
func (l Loopback) LinkID() string {
	return linkID(l.ID, DomainLoopback, l.Hostname, l.InterfaceName())
}
func (l Loopback) Hosts() []string { return []string{l.Hostname} }
func (Loopback) sealed()           {}

// InterfaceName is the device interface the loopback number maps to.
func (l Loopback) InterfaceName() string {
	return "Loopback" + strings.TrimSpace(l.Number)
}

// AdvertisedProtocol returns the lower-cased protocol, or "" when the
// loopback is not advertised.
func (l Loopback) AdvertisedProtocol() string {
	p := strings.ToLower(strings.TrimSpace(l.Protocol))
	if p == ProtocolNone {
		return ""
	}
	return p
}

// TrunkLink declares a trunk between two switches carrying a set of VLANs.
type TrunkLink struct {
	ID         string   `yaml:"id,omitempty" json:"id,omitempty"`
	Hostname1  string   `yaml:"hostname1" json:"hostname1"`
	Hostname2  string   `yaml:"hostname2" json:"hostname2"`
	Interface1 string   `yaml:"interface1" json:"interface1"`
	Interface2 string   `yaml:"interface2" json:"interface2"`
	VLANs      []string `yaml:"vlans" json:"vlans"`
}

func (TrunkLink) Domain() Domain { return DomainTrunk }
func (t TrunkLink) LinkID() string {
	return linkID(t.ID, DomainTrunk, t.Hostname1+":"+t.Interface1, t.Hostname2+":"+t.Interface2)
}
func (t TrunkLink) Hosts() []string { return []string{t.Hostname1, t.Hostname2} }
func (TrunkLink) sealed()           {}

// VLANBinding is one routed VLAN of an inter-VLAN link: the router
// sub-interface for VLANID answers on Gateway/CIDR.
type VLANBinding struct {
	VLANID  string `yaml:"vlan_id" json:"vlan_id"`
	Gateway string `yaml:"gateway" json:"gateway"`
	CIDR    string `yaml:"cidr" json:"cidr"`
}

// InterVLANLink declares router-on-a-stick routing between a switch trunk
// port and router sub-interfaces, one per VLAN binding.
type InterVLANLink struct {
	ID              string        `yaml:"id,omitempty" json:"id,omitempty"`
	SwitchHost      string        `yaml:"switch_host" json:"switch_host"`
	RouterHost      string        `yaml:"router_host" json:"router_host"`
	SwitchInterface string        `yaml:"switch_interface" json:"switch_interface"`
	RouterInterface string        `yaml:"router_interface" json:"router_interface"`
	Bindings        []VLANBinding `yaml:"bindings" json:"bindings"`
}

func (InterVLANLink) Domain() Domain { return DomainInterVLAN }
func (l InterVLANLink) LinkID() string {
	return linkID(l.ID, DomainInterVLAN, l.SwitchHost+":"+l.SwitchInterface, l.RouterHost+":"+l.RouterInterface)
}
func (l InterVLANLink) Hosts() []string { return []string{l.SwitchHost, l.RouterHost} }
func (InterVLANLink) sealed()           {}

// SubInterface is the router sub-interface name serving a binding.
func (l InterVLANLink) SubInterface(b VLANBinding) string {
	return strings.TrimSpace(l.RouterInterface) + "." + strings.TrimSpace(b.VLANID)
}

// HostPort is one switch access port facing a host, with the VLAN it is
// placed in and the address the host is reached at.
type HostPort struct {
	Interface string `yaml:"interface" json:"interface"`
	VLANID    string `yaml:"vlan_id" json:"vlan_id"`
	IPAddress string `yaml:"ip_address" json:"ip_address"`
	CIDR      string `yaml:"cidr" json:"cidr"`
}

// SwitchHostLink declares the host-facing access ports of one switch.
type SwitchHostLink struct {
	ID         string     `yaml:"id,omitempty" json:"id,omitempty"`
	Hostname   string     `yaml:"hostname" json:"hostname"`
	Interfaces []HostPort `yaml:"interfaces" json:"interfaces"`
}

func (SwitchHostLink) Domain() Domain { return DomainSwitchHost }
func (s SwitchHostLink) LinkID() string {
	return linkID(s.ID, DomainSwitchHost, s.Hostname)
}
func (s SwitchHostLink) Hosts() []string { return []string{s.Hostname} }
func (SwitchHostLink) sealed()           {}

func linkID(explicit string, d Domain, parts ...string) string {
	if explicit != "" {
		return explicit
	}
	return fmt.Sprintf("%s:%s", d, strings.Join(parts, "-"))
}
