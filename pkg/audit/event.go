// Package audit records verification rounds as JSON lines so operators can
// review when a link batch or lab was last verified, and against what.
package audit

import (
	"sort"
	"strconv"
	"time"

	"github.com/newtron-network/newtverify/pkg/verify"
)

// Kind is the kind of verification round an event records.
type Kind string

const (
	KindLinks Kind = "links"
	KindLab   Kind = "lab"
)

// Event records one verification round.
type Event struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	User      string        `json:"user"`
	Kind      Kind          `json:"kind"`
	Target    string        `json:"target"` // intent file or lab id
	Source    string        `json:"source,omitempty"`
	Policy    string        `json:"policy,omitempty"`
	Hosts     []string      `json:"hosts,omitempty"`
	Total     int           `json:"total"`
	Matched   int           `json:"matched"`
	Verified  bool          `json:"verified"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Filter defines criteria for querying audit events
type Filter struct {
	Kind         Kind
	User         string
	Target       string
	Host         string
	StartTime    time.Time
	EndTime      time.Time
	SuccessOnly  bool
	FailureOnly  bool
	MismatchOnly bool
	Limit        int
	Offset       int
}

// NewEvent creates a new audit event
func NewEvent(user string, kind Kind, target string) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		User:      user,
		Kind:      kind,
		Target:    target,
	}
}

// WithSource names the state or output source the round read from.
func (e *Event) WithSource(source string) *Event {
	e.Source = source
	return e
}

// WithPolicy records the lab match policy.
func (e *Event) WithPolicy(policy string) *Event {
	e.Policy = policy
	return e
}

// WithLinkVerdicts summarizes a link verification round and marks it
// successful.
func (e *Event) WithLinkVerdicts(verdicts []verify.LinkVerdict) *Event {
	hosts := make(map[string]bool)
	e.Total, e.Matched = len(verdicts), 0
	for _, v := range verdicts {
		if v.OverallMatched {
			e.Matched++
		}
		for _, d := range v.PerDevice {
			hosts[d.Hostname] = true
		}
	}
	e.Hosts = sortedKeys(hosts)
	e.Verified = e.Total > 0 && e.Matched == e.Total
	e.Success = true
	return e
}

// WithLabResult summarizes a lab check round and marks it successful.
// Total and Matched count (host, command) pairs.
func (e *Event) WithLabResult(res *verify.LabCheckResult) *Event {
	e.Total, e.Matched = 0, 0
	e.Hosts = res.Hosts()
	for _, hr := range res.PerHost {
		e.Matched += len(hr.Matched)
		e.Total += len(hr.Matched) + len(hr.Unmatched)
	}
	e.Verified = res.Verified()
	e.Success = true
	return e
}

// WithError marks the round as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	e.Verified = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the round duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func generateID() string {
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}
