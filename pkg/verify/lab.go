package verify

import (
	"sort"
	"strings"

	"github.com/newtron-network/newtverify/pkg/lab"
	"github.com/newtron-network/newtverify/pkg/textdiff"
)

// Policy decides whether captured output satisfies expected text.
type Policy int

const (
	// PolicyStrict requires a positional, whitespace-insensitive match of
	// every line.
	PolicyStrict Policy = iota
	// PolicyContains accepts output that contains the expected text once
	// whitespace is normalized.
	PolicyContains
)

func (p Policy) String() string {
	if p == PolicyContains {
		return "contains"
	}
	return "strict"
}

// MatchedCommand is a command whose output satisfied its expectation.
type MatchedCommand struct {
	Command     string   `json:"command"`
	ActualLines []string `json:"actual_lines"`
}

// UnmatchedCommand is a command whose output did not satisfy its
// expectation. Diffs is the positional line diff.
type UnmatchedCommand struct {
	Command      string           `json:"command"`
	ActualLines  []string         `json:"actual_lines"`
	ExpectedText string           `json:"expected_text"`
	Diffs        []textdiff.Entry `json:"diffs"`
}

// HostResult partitions one host's commands into matched and unmatched.
type HostResult struct {
	Matched   []MatchedCommand   `json:"matched"`
	Unmatched []UnmatchedCommand `json:"unmatched"`
}

// Verified reports whether the host has no unmatched commands.
func (h *HostResult) Verified() bool {
	return len(h.Unmatched) == 0
}

// LabCheckResult is the outcome of checking one lab.
type LabCheckResult struct {
	LabID   string                 `json:"lab_id"`
	PerHost map[string]*HostResult `json:"per_host"`
}

// Hosts returns the checked hostnames, sorted.
func (r *LabCheckResult) Hosts() []string {
	hosts := make([]string, 0, len(r.PerHost))
	for h := range r.PerHost {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

// Verified reports whether every host is verified.
func (r *LabCheckResult) Verified() bool {
	for _, h := range r.PerHost {
		if !h.Verified() {
			return false
		}
	}
	return true
}

// LabOption configures CheckLab.
type LabOption func(*labConfig)

type labConfig struct {
	policy Policy
}

// WithPolicy selects the match policy. The default is PolicyStrict.
func WithPolicy(p Policy) LabOption {
	return func(c *labConfig) { c.policy = p }
}

// CheckLab checks every (command, expectation) pair of def against outputs,
// keyed by hostname and trimmed command text. Output missing for a pair is
// treated as no lines. Commands are visited in execution order.
func CheckLab(def *lab.Definition, outputs map[lab.OutputKey][]string, opts ...LabOption) *LabCheckResult {
	cfg := labConfig{policy: PolicyStrict}
	for _, o := range opts {
		o(&cfg)
	}

	res := &LabCheckResult{LabID: def.ID, PerHost: make(map[string]*HostResult)}
	for _, cmd := range def.Ordered() {
		text := strings.TrimSpace(cmd.Command)
		for _, exp := range cmd.Expectations {
			host := strings.TrimSpace(exp.Hostname)
			hr := res.PerHost[host]
			if hr == nil {
				hr = &HostResult{}
				res.PerHost[host] = hr
			}

			actual := outputs[lab.Key(host, text)]
			diffs := textdiff.Diff(actual, exp.ExpectedOutput)

			ok := len(diffs) == 0
			if cfg.policy == PolicyContains {
				ok = ok || textdiff.Contains(actual, exp.ExpectedOutput)
			}
			if ok {
				hr.Matched = append(hr.Matched, MatchedCommand{Command: text, ActualLines: actual})
				continue
			}
			hr.Unmatched = append(hr.Unmatched, UnmatchedCommand{
				Command:      text,
				ActualLines:  actual,
				ExpectedText: exp.ExpectedOutput,
				Diffs:        diffs,
			})
		}
	}
	return res
}
