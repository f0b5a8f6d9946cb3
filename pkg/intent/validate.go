package intent

import (
	"strconv"
	"strings"

	"github.com/newtron-network/newtverify/pkg/util"
)

// KeySeparator joins the parts of a published state key. Hostnames may not
// contain it.
const KeySeparator = "|"

// Port modes accepted for switch interfaces.
const (
	ModeAccess = "access"
	ModeTrunk  = "trunk"
)

func (v VLAN) Validate() error {
	b := &util.ValidationBuilder{}
	requireHost(b, "hostname", v.Hostname)
	requireVLAN(b, "vlan_id", v.VLANID)
	require(b, "interface", v.Interface)
	requireMode(b, v.Mode)
	if v.IPAddress != "" {
		checkIP(b, "ip_address", v.IPAddress)
		requirePrefixLen(b, "cidr", v.CIDR)
	} else if v.CIDR != "" {
		requirePrefixLen(b, "cidr", v.CIDR)
	}
	return b.BuildAs(util.ErrMalformedIntent)
}

func (bp BridgePriority) Validate() error {
	b := &util.ValidationBuilder{}
	requireHost(b, "hostname", bp.Hostname)
	requireVLAN(b, "vlan", bp.VLAN)
	if strings.TrimSpace(bp.Priority) == "" {
		b.AddError("priority is required")
	} else if p, err := strconv.Atoi(strings.TrimSpace(bp.Priority)); err != nil || p < 0 || p > 61440 || p%4096 != 0 {
		b.AddErrorf("priority must be a multiple of 4096 between 0 and 61440, got %q", bp.Priority)
	}
	return b.BuildAs(util.ErrMalformedIntent)
}

func (c ConfigIP) Validate() error {
	b := &util.ValidationBuilder{}
	requireHost(b, "hostname", c.Hostname)
	require(b, "interface", c.Interface)
	requireIP(b, "ip_address", c.IPAddress)
	requirePrefixLen(b, "cidr", c.CIDR)
	return b.BuildAs(util.ErrMalformedIntent)
}

func (s StaticRoute) Validate() error {
	b := &util.ValidationBuilder{}
	requireHost(b, "hostname", s.Hostname)
	requireIP(b, "prefix", s.Prefix)
	requirePrefixLen(b, "cidr", s.CIDR)
	requireIP(b, "next_hop", s.NextHop)
	return b.BuildAs(util.ErrMalformedIntent)
}

func (l Loopback) Validate() error {
	b := &util.ValidationBuilder{}
	requireHost(b, "hostname", l.Hostname)
	if strings.TrimSpace(l.Number) == "" {
		b.AddError("number is required")
	} else if n, err := strconv.Atoi(strings.TrimSpace(l.Number)); err != nil || n < 0 {
		b.AddErrorf("number must be a non-negative integer, got %q", l.Number)
	}
	requireIP(b, "ip_address", l.IPAddress)
	if l.CIDR != "" {
		requirePrefixLen(b, "cidr", l.CIDR)
	}
	switch l.AdvertisedProtocol() {
	case "", ProtocolRIPv2, ProtocolOSPF:
	default:
		b.AddErrorf("protocol must be one of none, ripv2, ospf, got %q", l.Protocol)
	}
	return b.BuildAs(util.ErrMalformedIntent)
}

func (t TrunkLink) Validate() error {
	b := &util.ValidationBuilder{}
	requireHost(b, "hostname1", t.Hostname1)
	requireHost(b, "hostname2", t.Hostname2)
	if t.Hostname1 != "" && t.Hostname1 == t.Hostname2 {
		b.AddErrorf("hostname1 and hostname2 must differ, both are %q", t.Hostname1)
	}
	require(b, "interface1", t.Interface1)
	require(b, "interface2", t.Interface2)
	if len(t.VLANs) == 0 {
		b.AddError("vlans must list at least one VLAN")
	}
	for _, v := range t.VLANs {
		if _, err := util.ExpandVLANRange(v); err != nil || strings.TrimSpace(v) == "" {
			b.AddErrorf("vlans: invalid VLAN %q", v)
		}
	}
	return b.BuildAs(util.ErrMalformedIntent)
}

func (l InterVLANLink) Validate() error {
	b := &util.ValidationBuilder{}
	requireHost(b, "switch_host", l.SwitchHost)
	requireHost(b, "router_host", l.RouterHost)
	require(b, "switch_interface", l.SwitchInterface)
	require(b, "router_interface", l.RouterInterface)
	if len(l.Bindings) == 0 {
		b.AddError("bindings must list at least one VLAN")
	}
	seen := make(map[string]bool)
	for i, bind := range l.Bindings {
		prefix := "bindings[" + strconv.Itoa(i) + "]."
		requireVLAN(b, prefix+"vlan_id", bind.VLANID)
		requireIP(b, prefix+"gateway", bind.Gateway)
		requirePrefixLen(b, prefix+"cidr", bind.CIDR)
		id := strings.TrimSpace(bind.VLANID)
		if id != "" && seen[id] {
			b.AddErrorf("%svlan_id %s is bound twice", prefix, id)
		}
		seen[id] = true
	}
	return b.BuildAs(util.ErrMalformedIntent)
}

func (s SwitchHostLink) Validate() error {
	b := &util.ValidationBuilder{}
	requireHost(b, "hostname", s.Hostname)
	if len(s.Interfaces) == 0 {
		b.AddError("interfaces must list at least one port")
	}
	seen := make(map[string]bool)
	for i, p := range s.Interfaces {
		prefix := "interfaces[" + strconv.Itoa(i) + "]."
		require(b, prefix+"interface", p.Interface)
		requireVLAN(b, prefix+"vlan_id", p.VLANID)
		requireIP(b, prefix+"ip_address", p.IPAddress)
		requirePrefixLen(b, prefix+"cidr", p.CIDR)
		name := strings.TrimSpace(p.Interface)
		if name != "" && seen[name] {
			b.AddErrorf("%sinterface %s is listed twice", prefix, name)
		}
		seen[name] = true
	}
	return b.BuildAs(util.ErrMalformedIntent)
}

// ValidateBatch validates every intent of a submission batch. An empty
// batch, or two intents sharing a link ID, is also malformed.
func ValidateBatch(intents []Intent) error {
	b := &util.ValidationBuilder{}
	if len(intents) == 0 {
		b.AddError("batch contains no links")
	}
	seen := make(map[string]bool)
	for i, in := range intents {
		if in == nil {
			b.AddErrorf("link %d: nil intent", i)
			continue
		}
		id := in.LinkID()
		b.Merge("link "+id+": ", in.Validate())
		if seen[id] {
			b.AddErrorf("link %s: duplicate link ID", id)
		}
		seen[id] = true
	}
	return b.BuildAs(util.ErrMalformedIntent)
}

func require(b *util.ValidationBuilder, field, value string) {
	b.Add(strings.TrimSpace(value) != "", field+" is required")
}

func requireHost(b *util.ValidationBuilder, field, value string) {
	b.Add(strings.TrimSpace(value) != "", field+" is required (no device selected)")
	b.Add(!strings.Contains(value, KeySeparator), field+" must not contain \""+KeySeparator+"\"")
}

func requireMode(b *util.ValidationBuilder, mode string) {
	switch strings.TrimSpace(mode) {
	case "":
		b.AddError("mode is required")
	case ModeAccess, ModeTrunk:
	default:
		b.AddErrorf("mode must be access or trunk, got %q", mode)
	}
}

func requireVLAN(b *util.ValidationBuilder, field, value string) {
	if strings.TrimSpace(value) == "" {
		b.AddError(field + " is required")
		return
	}
	if _, err := util.ParseVLANID(value); err != nil {
		b.AddErrorf("%s: %v", field, err)
	}
}

func requireIP(b *util.ValidationBuilder, field, value string) {
	if strings.TrimSpace(value) == "" {
		b.AddError(field + " is required")
		return
	}
	checkIP(b, field, value)
}

func checkIP(b *util.ValidationBuilder, field, value string) {
	b.Add(util.IsValidIPv4(strings.TrimSpace(value)), field+": invalid IPv4 address "+strconv.Quote(value))
}

func requirePrefixLen(b *util.ValidationBuilder, field, value string) {
	if strings.TrimSpace(value) == "" {
		b.AddError(field + " is required")
		return
	}
	n, err := util.ParsePrefixLen(value)
	if err != nil {
		b.AddErrorf("%s: %v", field, err)
		return
	}
	b.Add(n <= 32, field+": IPv4 prefix length must be at most 32")
}
