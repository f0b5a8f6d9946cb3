package compare

import (
	"strings"

	"github.com/newtron-network/newtverify/pkg/state"
)

// FieldVerdict is the outcome of comparing one field.
type FieldVerdict struct {
	Field   string `json:"field"`
	Intent  string `json:"intent"`
	Actual  string `json:"actual"`
	Matched bool   `json:"matched"`
}

// DeviceVerdict is the outcome of comparing one declared object against
// what its device reported. Missing is set when the device reported no
// state for the domain, or no record for the object; every field is then
// mismatched with an empty actual value.
type DeviceVerdict struct {
	Hostname string         `json:"hostname"`
	Object   string         `json:"object"`
	Fields   []FieldVerdict `json:"fields"`
	Matched  bool           `json:"matched"`
	Missing  bool           `json:"missing,omitempty"`
}

// Mismatched returns the fields that did not match.
func (v DeviceVerdict) Mismatched() []FieldVerdict {
	var out []FieldVerdict
	for _, f := range v.Fields {
		if !f.Matched {
			out = append(out, f)
		}
	}
	return out
}

// Field is one declared value and the record path it is compared against.
type Field struct {
	Path     string
	Kind     Kind
	Want     string
	Optional bool
}

// included reports whether the field takes part in the comparison: an
// optional field the intent leaves empty is skipped.
func (f Field) included() bool {
	return !f.Optional || strings.TrimSpace(f.Want) != ""
}

// Object is one thing an intent declares on one device: a VLAN, an
// interface, a route. Keys identify the reported record to compare against
// and are compared ahead of Fields. Match, when set, selects the record
// instead of Keys, for identities no single field carries.
type Object struct {
	Hostname string
	Label    string
	Keys     []Field
	Fields   []Field
	Match    func(state.Record) bool
}

func (o Object) selects(r state.Record) bool {
	if o.Match != nil {
		return o.Match(r)
	}
	if len(o.Keys) == 0 {
		return false
	}
	for _, k := range o.Keys {
		got, ok := r.Get(k.Path)
		if !ok || !k.Kind.Equal(k.Want, got) {
			return false
		}
	}
	return true
}

// Check compares o against the state its device reported for the domain.
// A nil actual, or one with no record o selects, yields a Missing verdict.
func (o Object) Check(actual *state.ActualState) DeviceVerdict {
	v := DeviceVerdict{Hostname: o.Hostname, Object: o.Label}

	rec, found := actual.Select(o.selects)
	fields := append(append([]Field{}, o.Keys...), o.Fields...)
	if !found {
		v.Missing = true
		for _, f := range fields {
			if !f.included() {
				continue
			}
			v.Fields = append(v.Fields, FieldVerdict{Field: f.Path, Intent: f.Want})
		}
		return v
	}

	v.Matched = true
	for _, f := range fields {
		if !f.included() {
			continue
		}
		got, _ := rec.Get(f.Path)
		fv := FieldVerdict{
			Field:   f.Path,
			Intent:  f.Want,
			Actual:  got,
			Matched: f.Kind.Equal(f.Want, got),
		}
		v.Matched = v.Matched && fv.Matched
		v.Fields = append(v.Fields, fv)
	}
	return v
}
