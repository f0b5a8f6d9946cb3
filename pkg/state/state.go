// Package state models device-reported actual state as produced by a state
// collaborator, and resolves it by hostname and domain.
package state

import (
	"strings"

	"github.com/newtron-network/newtverify/pkg/intent"
)

// Record is one device-reported object flattened into dotted field paths,
// e.g. "interface_config.interface" or "vlan_details.vlanId". All values are
// text; comparison code coerces them.
type Record map[string]string

// Get returns the trimmed value of field and whether it was reported.
func (r Record) Get(field string) (string, bool) {
	v, ok := r[field]
	return strings.TrimSpace(v), ok
}

// ActualState is what one device reported for one domain. It is read-only
// once produced.
type ActualState struct {
	Hostname string        `json:"hostname"`
	Domain   intent.Domain `json:"domain"`
	Records  []Record      `json:"records"`
}

// Find returns the first record whose field value satisfies match.
func (s *ActualState) Find(field string, match func(value string) bool) (Record, bool) {
	return s.Select(func(r Record) bool {
		v, ok := r.Get(field)
		return ok && match(v)
	})
}

// Select returns the first record satisfying match.
func (s *ActualState) Select(match func(Record) bool) (Record, bool) {
	if s == nil {
		return nil, false
	}
	for _, r := range s.Records {
		if match(r) {
			return r, true
		}
	}
	return nil, false
}

// Key identifies the actual state of one device for one domain.
type Key struct {
	Hostname string
	Domain   intent.Domain
}

// Index resolves actual states by (hostname, domain). Reports for the same
// key are merged in arrival order.
type Index map[Key]*ActualState

// NewIndex builds an index over states. Nil entries and entries without a
// hostname are skipped.
func NewIndex(states []*ActualState) Index {
	ix := make(Index, len(states))
	for _, s := range states {
		if s == nil {
			continue
		}
		host := strings.TrimSpace(s.Hostname)
		if host == "" {
			continue
		}
		k := Key{Hostname: host, Domain: s.Domain}
		if prev, ok := ix[k]; ok {
			merged := &ActualState{Hostname: host, Domain: s.Domain}
			merged.Records = append(append(merged.Records, prev.Records...), s.Records...)
			ix[k] = merged
			continue
		}
		ix[k] = s
	}
	return ix
}

// Lookup returns the state reported by hostname for domain, or nil.
func (ix Index) Lookup(hostname string, d intent.Domain) *ActualState {
	return ix[Key{Hostname: strings.TrimSpace(hostname), Domain: d}]
}
