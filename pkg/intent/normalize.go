package intent

import (
	"strconv"
	"strings"

	"github.com/newtron-network/newtverify/pkg/util"
)

// Batch files may write an address with its prefix length ("10.0.0.1/24")
// and leave cidr out, and may put several VLANs in one trunk list entry
// ("10,20-22"). The loader rewrites both into the canonical field layout
// before validation.

func splitCIDR(addr, cidr *string) {
	if !strings.Contains(*addr, "/") || strings.TrimSpace(*cidr) != "" {
		return
	}
	ip, n, err := util.ParseIPWithMask(strings.TrimSpace(*addr))
	if err != nil {
		return
	}
	*addr, *cidr = ip.String(), strconv.Itoa(n)
}

func (v *VLAN) normalize()        { splitCIDR(&v.IPAddress, &v.CIDR) }
func (c *ConfigIP) normalize()    { splitCIDR(&c.IPAddress, &c.CIDR) }
func (s *StaticRoute) normalize() { splitCIDR(&s.Prefix, &s.CIDR) }
func (l *Loopback) normalize()    { splitCIDR(&l.IPAddress, &l.CIDR) }

func (t *TrunkLink) normalize() {
	var vlans []string
	for _, v := range t.VLANs {
		if parts := util.SplitCommaSeparated(v); len(parts) > 0 {
			vlans = append(vlans, parts...)
			continue
		}
		vlans = append(vlans, v)
	}
	t.VLANs = vlans
}

func (l *InterVLANLink) normalize() {
	for i := range l.Bindings {
		splitCIDR(&l.Bindings[i].Gateway, &l.Bindings[i].CIDR)
	}
}

func (s *SwitchHostLink) normalize() {
	for i := range s.Interfaces {
		splitCIDR(&s.Interfaces[i].IPAddress, &s.Interfaces[i].CIDR)
	}
}
