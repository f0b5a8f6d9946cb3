package state

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/newtron-network/newtverify/pkg/intent"
)

// DecodeReport decodes a collaborator state report:
//
//	{"devices": [
//	  {"hostname": "SW1", "domain": "vlan",
//	   "records": [{"vlan_details": {"vlanId": 10}, "interface_config": {...}}]}
//	]}
//
// Nested objects are flattened into dotted paths. Numbers and booleans keep
// their JSON text, null becomes "", arrays of scalars are joined with ","
// and arrays of objects are indexed ("ports.0.name").
func DecodeReport(data []byte) ([]*ActualState, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("state report is empty")
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("state report is not valid JSON")
	}

	res := gjson.ParseBytes(data)
	devices := res.Get("devices")
	if !devices.IsArray() {
		return nil, fmt.Errorf("state report has no devices array")
	}

	var states []*ActualState
	for i, dev := range devices.Array() {
		st, err := decodeDevice(dev)
		if err != nil {
			return nil, fmt.Errorf("devices[%d]: %w", i, err)
		}
		states = append(states, st)
	}
	return states, nil
}

func decodeDevice(dev gjson.Result) (*ActualState, error) {
	host := strings.TrimSpace(dev.Get("hostname").String())
	if host == "" {
		return nil, fmt.Errorf("hostname is required")
	}
	d, err := intent.ParseDomain(dev.Get("domain").String())
	if err != nil {
		return nil, err
	}

	st := &ActualState{Hostname: host, Domain: d}
	for j, rec := range dev.Get("records").Array() {
		if !rec.IsObject() {
			return nil, fmt.Errorf("records[%d]: expected an object", j)
		}
		r := make(Record)
		flatten("", rec, r)
		st.Records = append(st.Records, r)
	}
	return st, nil
}

func flatten(prefix string, v gjson.Result, into Record) {
	switch {
	case v.IsObject():
		v.ForEach(func(k, child gjson.Result) bool {
			flatten(joinPath(prefix, k.String()), child, into)
			return true
		})
	case v.IsArray():
		items := v.Array()
		if allScalar(items) {
			parts := make([]string, len(items))
			for i, it := range items {
				parts[i] = it.String()
			}
			into[prefix] = strings.Join(parts, ",")
			return
		}
		for i, it := range items {
			flatten(joinPath(prefix, strconv.Itoa(i)), it, into)
		}
	case v.Type == gjson.Null:
		into[prefix] = ""
	default:
		into[prefix] = v.String()
	}
}

func allScalar(items []gjson.Result) bool {
	for _, it := range items {
		if it.IsObject() || it.IsArray() {
			return false
		}
	}
	return true
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
