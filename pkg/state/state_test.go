package state

import (
	"strings"
	"testing"

	"github.com/newtron-network/newtverify/pkg/intent"
)

func TestIndex_Lookup(t *testing.T) {
	sw1 := &ActualState{Hostname: "SW1", Domain: intent.DomainVLAN, Records: []Record{{"vlan_details.vlanId": "10"}}}
	sw1Trunk := &ActualState{Hostname: "SW1", Domain: intent.DomainTrunk}
	sw2 := &ActualState{Hostname: " SW2 ", Domain: intent.DomainVLAN}

	ix := NewIndex([]*ActualState{sw1, nil, sw1Trunk, sw2, {Hostname: ""}})

	if got := ix.Lookup("SW1", intent.DomainVLAN); got != sw1 {
		t.Errorf("Lookup(SW1, vlan) = %v", got)
	}
	if got := ix.Lookup("SW1", intent.DomainTrunk); got != sw1Trunk {
		t.Errorf("Lookup(SW1, trunk) = %v", got)
	}
	if got := ix.Lookup("SW2", intent.DomainVLAN); got != sw2 {
		t.Errorf("Lookup(SW2, vlan) = %v", got)
	}
	if got := ix.Lookup("SW3", intent.DomainVLAN); got != nil {
		t.Errorf("Lookup(SW3) = %v, want nil", got)
	}
	if len(ix) != 3 {
		t.Errorf("len(ix) = %d, want 3", len(ix))
	}
}

func TestIndex_MergesSameKey(t *testing.T) {
	a := &ActualState{Hostname: "R1", Domain: intent.DomainConfigIP, Records: []Record{{"interface": "Gi0/0"}}}
	b := &ActualState{Hostname: "R1", Domain: intent.DomainConfigIP, Records: []Record{{"interface": "Gi0/1"}}}

	ix := NewIndex([]*ActualState{a, b})
	got := ix.Lookup("R1", intent.DomainConfigIP)
	if got == nil || len(got.Records) != 2 {
		t.Fatalf("merged state = %+v", got)
	}
	if len(a.Records) != 1 {
		t.Error("merging must not modify the reported state")
	}
}

func TestActualState_Find(t *testing.T) {
	s := &ActualState{Records: []Record{
		{"interface": "Gi0/0", "ipaddress": "10.0.0.1"},
		{"interface": " Gi0/1 ", "ipaddress": "10.0.1.1"},
	}}

	r, ok := s.Find("interface", func(v string) bool { return v == "Gi0/1" })
	if !ok || r["ipaddress"] != "10.0.1.1" {
		t.Errorf("Find(Gi0/1) = %v, %v", r, ok)
	}
	if _, ok := s.Find("interface", func(v string) bool { return v == "Gi0/2" }); ok {
		t.Error("Find(Gi0/2) should not match")
	}

	var nilState *ActualState
	if _, ok := nilState.Find("interface", func(string) bool { return true }); ok {
		t.Error("Find on nil state should not match")
	}
}

func TestActualState_Select(t *testing.T) {
	s := &ActualState{Records: []Record{
		{"vlan_id": "10", "interface": "Gi0/0.10"},
		{"vlan_id": "10", "interface": "Gi0/1.10"},
	}}

	r, ok := s.Select(func(r Record) bool { return r["vlan_id"] == "10" && r["interface"] == "Gi0/1.10" })
	if !ok || r["interface"] != "Gi0/1.10" {
		t.Errorf("Select = %v, %v", r, ok)
	}
	if _, ok := s.Select(func(Record) bool { return false }); ok {
		t.Error("Select should not match")
	}
}

const report = `{
  "devices": [
    {
      "hostname": "SW1",
      "domain": "vlan",
      "records": [
        {
          "vlan_details": {"vlanId": 10, "cidr": "24", "ipAddress": null},
          "vlans": {"vlanName": "sales"},
          "interface_config": {"interface": "Gi0/1", "mode": "access"}
        }
      ]
    },
    {
      "hostname": "SW2",
      "domain": "trunk",
      "records": [
        {"interface": "Gi0/24", "mode": "trunk", "allowed_vlans": [10, 20, "30-32"], "up": true,
         "members": [{"name": "Gi0/1"}, {"name": "Gi0/2"}]}
      ]
    }
  ]
}`

func TestDecodeReport(t *testing.T) {
	states, err := DecodeReport([]byte(report))
	if err != nil {
		t.Fatalf("DecodeReport: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("got %d states, want 2", len(states))
	}

	vlan := states[0]
	if vlan.Hostname != "SW1" || vlan.Domain != intent.DomainVLAN || len(vlan.Records) != 1 {
		t.Fatalf("states[0] = %+v", vlan)
	}
	want := Record{
		"vlan_details.vlanId":        "10",
		"vlan_details.cidr":          "24",
		"vlan_details.ipAddress":     "",
		"vlans.vlanName":             "sales",
		"interface_config.interface": "Gi0/1",
		"interface_config.mode":      "access",
	}
	for k, v := range want {
		if got, ok := vlan.Records[0][k]; !ok || got != v {
			t.Errorf("record[%q] = %q (present %v), want %q", k, got, ok, v)
		}
	}

	trunk := states[1].Records[0]
	if trunk["allowed_vlans"] != "10,20,30-32" {
		t.Errorf("allowed_vlans = %q", trunk["allowed_vlans"])
	}
	if trunk["up"] != "true" {
		t.Errorf("up = %q", trunk["up"])
	}
	if trunk["members.1.name"] != "Gi0/2" {
		t.Errorf("members.1.name = %q", trunk["members.1.name"])
	}
}

func TestDecodeReport_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", ``, "empty"},
		{"invalid json", `{"devices": [`, "not valid JSON"},
		{"no devices", `{"hosts": []}`, "no devices array"},
		{"no hostname", `{"devices": [{"domain": "vlan"}]}`, "devices[0]: hostname is required"},
		{"unknown domain", `{"devices": [{"hostname": "R1", "domain": "bgp"}]}`, `unknown domain "bgp"`},
		{"scalar record", `{"devices": [{"hostname": "R1", "domain": "loopback", "records": [1]}]}`, "records[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeReport([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want substring %q", err, tt.want)
			}
		})
	}
}

func TestDecodeReport_NoRecords(t *testing.T) {
	states, err := DecodeReport([]byte(`{"devices": [{"hostname": "R1", "domain": "static_route"}]}`))
	if err != nil {
		t.Fatalf("DecodeReport: %v", err)
	}
	if len(states) != 1 || len(states[0].Records) != 0 {
		t.Errorf("states = %+v", states)
	}
}
