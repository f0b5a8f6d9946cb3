package verify

import (
	"testing"

	"github.com/newtron-network/newtverify/pkg/intent"
	"github.com/newtron-network/newtverify/pkg/state"
)

func trunkState(host, iface, vlans string) *state.ActualState {
	return &state.ActualState{Hostname: host, Domain: intent.DomainTrunk, Records: []state.Record{
		{"interface": iface, "mode": "trunk", "allowed_vlans": vlans},
	}}
}

var trunk = intent.TrunkLink{
	Hostname1: "SW1", Hostname2: "SW2",
	Interface1: "Gi0/1", Interface2: "Gi0/2",
	VLANs: []string{"10", "20"},
}

func TestVerifyLink_Trunk(t *testing.T) {
	v := VerifyLink(trunk, []*state.ActualState{
		trunkState("SW2", "Gi0/2", "20,10"),
		trunkState("SW1", "Gi0/1", "10-20"),
	})
	if v.OverallMatched {
		t.Fatal("SW1 allows 10-20, link should not match")
	}
	if !v.PerDevice[1].Matched {
		t.Errorf("SW2 = %+v, want matched", v.PerDevice[1])
	}
	if len(v.Mismatched()) != 1 || v.Mismatched()[0].Hostname != "SW1" {
		t.Errorf("Mismatched() = %+v", v.Mismatched())
	}

	v = VerifyLink(trunk, []*state.ActualState{
		trunkState("SW2", "Gi0/2", "20,10"),
		trunkState("SW1", "Gi0/1", "10,20"),
	})
	if !v.OverallMatched {
		t.Errorf("verdict = %+v, want matched", v)
	}
	if v.LinkID != "trunk:SW1:Gi0/1-SW2:Gi0/2" || v.Domain != intent.DomainTrunk {
		t.Errorf("LinkID/Domain = %q/%q", v.LinkID, v.Domain)
	}
}

// A trunk whose second switch reported nothing never matches, and every
// field of that side is shown as mismatched.
func TestVerifyLink_MissingSide(t *testing.T) {
	v := VerifyLink(trunk, []*state.ActualState{trunkState("SW1", "Gi0/1", "10,20")})

	if v.OverallMatched {
		t.Fatal("OverallMatched = true with SW2 absent")
	}
	if len(v.PerDevice) != 2 {
		t.Fatalf("got %d device verdicts, want 2", len(v.PerDevice))
	}
	sw2 := v.PerDevice[1]
	if sw2.Hostname != "SW2" || sw2.Matched || !sw2.Missing {
		t.Fatalf("SW2 verdict = %+v", sw2)
	}
	if len(sw2.Fields) == 0 {
		t.Fatal("SW2 verdict has no fields")
	}
	for _, f := range sw2.Fields {
		if f.Matched {
			t.Errorf("SW2 field %s matched", f.Field)
		}
	}
}

func TestVerifyLink_AnyRequiredDeviceAbsent(t *testing.T) {
	links := []intent.Intent{
		intent.VLAN{Hostname: "SW1", VLANID: "10", Interface: "Gi0/1", Mode: "access"},
		intent.ConfigIP{Hostname: "R1", Interface: "Gi0/0", IPAddress: "10.0.0.1", CIDR: "24"},
		intent.StaticRoute{Hostname: "R1", Prefix: "10.1.0.0", CIDR: "16", NextHop: "10.0.0.2"},
		intent.Loopback{Hostname: "R1", Number: "0", IPAddress: "1.1.1.1"},
		intent.BridgePriority{Hostname: "SW1", VLAN: "10", Priority: "4096"},
		intent.SwitchHostLink{Hostname: "SW1", Interfaces: []intent.HostPort{{Interface: "Fa0/1", VLANID: "10", IPAddress: "10.0.10.5", CIDR: "24"}}},
		intent.InterVLANLink{SwitchHost: "SW1", RouterHost: "R1", SwitchInterface: "Gi0/24", RouterInterface: "Gi0/0",
			Bindings: []intent.VLANBinding{{VLANID: "10", Gateway: "10.0.10.1", CIDR: "24"}}},
		trunk,
	}
	for _, in := range links {
		if v := VerifyLink(in, nil); v.OverallMatched {
			t.Errorf("%s: matched with no actual state", in.LinkID())
		}
	}
}

func TestVerifyLink_InterVLANReportsEveryBinding(t *testing.T) {
	in := intent.InterVLANLink{
		SwitchHost: "SW1", RouterHost: "R1", SwitchInterface: "Gi0/24", RouterInterface: "Gi0/0",
		Bindings: []intent.VLANBinding{
			{VLANID: "10", Gateway: "10.0.10.1", CIDR: "24"},
			{VLANID: "20", Gateway: "10.0.20.1", CIDR: "24"},
			{VLANID: "30", Gateway: "10.0.30.1", CIDR: "24"},
		},
	}
	actuals := []*state.ActualState{
		{Hostname: "R1", Domain: intent.DomainInterVLAN, Records: []state.Record{
			{"vlan_id": "10", "interface": "Gi0/0.10", "ipaddress": "10.0.10.1", "cidr": "24"},
			{"vlan_id": "20", "interface": "Gi0/0.20", "ipaddress": "10.0.20.1", "cidr": "25"},
			{"vlan_id": "30", "interface": "Gi0/0.30", "ipaddress": "10.0.30.1", "cidr": "24"},
		}},
		{Hostname: "SW1", Domain: intent.DomainInterVLAN, Records: []state.Record{
			{"interface": "Gi0/24", "mode": "trunk", "allowed_vlans": "10,20,30"},
		}},
	}

	v := VerifyLink(in, actuals)
	if v.OverallMatched {
		t.Fatal("binding 20 has the wrong prefix length, link should not match")
	}
	if len(v.PerDevice) != 4 {
		t.Fatalf("got %d device verdicts, want 4", len(v.PerDevice))
	}
	want := []bool{true, true, false, true}
	for i, w := range want {
		if v.PerDevice[i].Matched != w {
			t.Errorf("PerDevice[%d] (%s) matched = %v, want %v", i, v.PerDevice[i].Object, v.PerDevice[i].Matched, w)
		}
	}
}

func TestVerifyLinks(t *testing.T) {
	intents := []intent.Intent{
		trunk,
		intent.VLAN{Hostname: "SW1", VLANID: "10", Interface: "Gi0/1", Mode: "trunk"},
	}
	actuals := []*state.ActualState{
		{Hostname: "SW1", Domain: intent.DomainVLAN, Records: []state.Record{
			{"vlan_details.vlanId": "10", "interface_config.interface": "Gi0/1", "interface_config.mode": "trunk"},
		}},
		trunkState("SW1", "Gi0/1", "10,20"),
		trunkState("SW2", "Gi0/2", "10,20"),
	}

	verdicts := VerifyLinks(intents, actuals)
	if len(verdicts) != 2 {
		t.Fatalf("got %d verdicts", len(verdicts))
	}
	if !AllMatched(verdicts) {
		t.Errorf("verdicts = %+v, want all matched", verdicts)
	}
	if verdicts[1].LinkID != "vlan:SW1-vlan10" {
		t.Errorf("verdicts[1].LinkID = %q", verdicts[1].LinkID)
	}
}

func TestVerifyLink_NoDeviceVerdicts(t *testing.T) {
	v := VerifyLink(intent.SwitchHostLink{Hostname: "SW1"}, nil)
	if v.OverallMatched {
		t.Error("a link with no device verdicts must not match")
	}
}
