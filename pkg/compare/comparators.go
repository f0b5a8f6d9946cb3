package compare

import (
	"strings"

	"github.com/newtron-network/newtverify/pkg/intent"
	"github.com/newtron-network/newtverify/pkg/state"
	"github.com/newtron-network/newtverify/pkg/util"
)

// Comparator expands an intent of one domain into the per-device objects
// it declares.
type Comparator interface {
	Objects(in intent.Intent) []Object
}

// ComparatorFunc adapts a function to Comparator.
type ComparatorFunc func(in intent.Intent) []Object

func (f ComparatorFunc) Objects(in intent.Intent) []Object { return f(in) }

var comparators = map[intent.Domain]Comparator{
	intent.DomainVLAN:           typed(vlanObjects),
	intent.DomainBridgePriority: typed(bridgePriorityObjects),
	intent.DomainConfigIP:       typed(configIPObjects),
	intent.DomainStaticRoute:    typed(staticRouteObjects),
	intent.DomainLoopback:       typed(loopbackObjects),
	intent.DomainTrunk:          typed(trunkObjects),
	intent.DomainInterVLAN:      typed(interVLANObjects),
	intent.DomainSwitchHost:     typed(switchHostObjects),
}

// For returns the comparator for domain d, or nil if d is unknown.
func For(d intent.Domain) Comparator {
	return comparators[d]
}

// Compare checks every object in declares against the state its device
// reported for the intent's domain, in declaration order.
func Compare(in intent.Intent, ix state.Index) []DeviceVerdict {
	if in == nil {
		return nil
	}
	c := For(in.Domain())
	if c == nil {
		return nil
	}
	objs := c.Objects(in)
	verdicts := make([]DeviceVerdict, 0, len(objs))
	for _, o := range objs {
		verdicts = append(verdicts, o.Check(ix.Lookup(o.Hostname, in.Domain())))
	}
	return verdicts
}

func typed[T intent.Intent](f func(T) []Object) Comparator {
	return ComparatorFunc(func(in intent.Intent) []Object {
		v, ok := in.(T)
		if !ok {
			return nil
		}
		return f(v)
	})
}

func vlanObjects(v intent.VLAN) []Object {
	return []Object{{
		Hostname: v.Hostname,
		Label:    "vlan " + strings.TrimSpace(v.VLANID),
		Keys:     []Field{{Path: "vlan_details.vlanId", Kind: KindNumber, Want: v.VLANID}},
		Fields: []Field{
			{Path: "interface_config.interface", Kind: KindString, Want: v.Interface},
			{Path: "interface_config.mode", Kind: KindString, Want: v.Mode},
			{Path: "vlans.vlanName", Kind: KindString, Want: v.VLANName, Optional: true},
			{Path: "vlan_details.ipAddress", Kind: KindIP, Want: v.IPAddress, Optional: true},
			{Path: "vlan_details.cidr", Kind: KindPrefixLen, Want: v.CIDR, Optional: true},
		},
	}}
}

func bridgePriorityObjects(b intent.BridgePriority) []Object {
	return []Object{{
		Hostname: b.Hostname,
		Label:    "vlan " + strings.TrimSpace(b.VLAN),
		Keys:     []Field{{Path: "vlan", Kind: KindNumber, Want: b.VLAN}},
		Fields: []Field{
			{Path: "priority", Kind: KindNumber, Want: b.Priority},
		},
	}}
}

func configIPObjects(c intent.ConfigIP) []Object {
	return []Object{{
		Hostname: c.Hostname,
		Label:    strings.TrimSpace(c.Interface),
		Keys:     []Field{{Path: "interface", Kind: KindString, Want: c.Interface}},
		Fields: []Field{
			{Path: "ipaddress", Kind: KindIP, Want: c.IPAddress},
			{Path: "cidr", Kind: KindPrefixLen, Want: c.CIDR},
		},
	}}
}

// staticRouteObjects selects the reported route by the network its prefix
// and length form. Host bits are cleared on both sides before comparing.
func staticRouteObjects(s intent.StaticRoute) []Object {
	o := Object{
		Hostname: s.Hostname,
		Label:    strings.TrimSpace(s.Prefix) + "/" + strings.TrimPrefix(strings.TrimSpace(s.CIDR), "/"),
		Keys: []Field{
			{Path: "prefix", Kind: KindIP, Want: s.Prefix},
			{Path: "cidr", Kind: KindPrefixLen, Want: s.CIDR},
		},
		Fields: []Field{
			{Path: "nexthop", Kind: KindIP, Want: s.NextHop},
		},
	}
	if network, ok := util.NetworkOf(s.Prefix, s.CIDR); ok {
		o.Keys[0].Want, _, _ = strings.Cut(network, "/")
		o.Match = func(r state.Record) bool {
			got, ok := util.NetworkOf(r["prefix"], r["cidr"])
			return ok && got == network
		}
	}
	return []Object{o}
}

func loopbackObjects(l intent.Loopback) []Object {
	return []Object{{
		Hostname: l.Hostname,
		Label:    l.InterfaceName(),
		Keys:     []Field{{Path: "interface", Kind: KindString, Want: l.InterfaceName()}},
		Fields: []Field{
			{Path: "ipaddress", Kind: KindIP, Want: l.IPAddress},
			{Path: "cidr", Kind: KindPrefixLen, Want: l.CIDR, Optional: true},
			{Path: "activateProtocol", Kind: KindFold, Want: l.AdvertisedProtocol(), Optional: true},
		},
	}}
}

func trunkObjects(t intent.TrunkLink) []Object {
	vlans := strings.Join(t.VLANs, ",")
	return []Object{
		trunkPort(t.Hostname1, t.Interface1, vlans),
		trunkPort(t.Hostname2, t.Interface2, vlans),
	}
}

func trunkPort(host, iface, vlans string) Object {
	return Object{
		Hostname: host,
		Label:    strings.TrimSpace(iface),
		Keys:     []Field{{Path: "interface", Kind: KindString, Want: iface}},
		Fields: []Field{
			{Path: "mode", Kind: KindString, Want: intent.ModeTrunk},
			{Path: "allowed_vlans", Kind: KindVLANSet, Want: vlans},
		},
	}
}

// interVLANObjects yields the switch trunk port followed by one router
// sub-interface per binding. A sub-interface is selected by VLAN id among
// the sub-interfaces of the declared router interface.
func interVLANObjects(l intent.InterVLANLink) []Object {
	ids := make([]string, len(l.Bindings))
	for i, b := range l.Bindings {
		ids[i] = strings.TrimSpace(b.VLANID)
	}

	parent := strings.TrimSpace(l.RouterInterface)
	objs := []Object{trunkPort(l.SwitchHost, l.SwitchInterface, strings.Join(ids, ","))}
	for _, b := range l.Bindings {
		sub := l.SubInterface(b)
		vlan := Field{Path: "vlan_id", Kind: KindNumber, Want: b.VLANID}
		objs = append(objs, Object{
			Hostname: l.RouterHost,
			Label:    sub,
			Keys:     []Field{vlan},
			Fields: []Field{
				{Path: "interface", Kind: KindString, Want: sub},
				{Path: "ipaddress", Kind: KindIP, Want: b.Gateway},
				{Path: "cidr", Kind: KindPrefixLen, Want: b.CIDR},
			},
			Match: func(r state.Record) bool {
				got, ok := r.Get(vlan.Path)
				return ok && vlan.Kind.Equal(vlan.Want, got) && onParent(r, parent)
			},
		})
	}
	return objs
}

// onParent reports whether r is a sub-interface of parent. The router may
// carry the same VLAN on several parents.
func onParent(r state.Record, parent string) bool {
	iface, _ := r.Get("interface")
	return strings.HasPrefix(iface, parent+".")
}

func switchHostObjects(s intent.SwitchHostLink) []Object {
	objs := make([]Object, 0, len(s.Interfaces))
	for _, p := range s.Interfaces {
		objs = append(objs, Object{
			Hostname: s.Hostname,
			Label:    strings.TrimSpace(p.Interface),
			Keys:     []Field{{Path: "interface", Kind: KindString, Want: p.Interface}},
			Fields: []Field{
				{Path: "mode", Kind: KindString, Want: intent.ModeAccess},
				{Path: "vlan_id", Kind: KindNumber, Want: p.VLANID},
				{Path: "ipaddress", Kind: KindIP, Want: p.IPAddress},
				{Path: "cidr", Kind: KindPrefixLen, Want: p.CIDR},
			},
		})
	}
	return objs
}
