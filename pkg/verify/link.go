// Package verify decides whether devices match what was declared: link
// intents against reported state, and lab expectations against captured
// command output.
package verify

import (
	"github.com/newtron-network/newtverify/pkg/compare"
	"github.com/newtron-network/newtverify/pkg/intent"
	"github.com/newtron-network/newtverify/pkg/state"
)

// LinkVerdict is the outcome of verifying one link intent.
type LinkVerdict struct {
	LinkID         string                  `json:"link_id"`
	Domain         intent.Domain           `json:"domain"`
	PerDevice      []compare.DeviceVerdict `json:"per_device"`
	OverallMatched bool                    `json:"overall_matched"`
}

// Mismatched returns the device verdicts that did not match.
func (v LinkVerdict) Mismatched() []compare.DeviceVerdict {
	var out []compare.DeviceVerdict
	for _, d := range v.PerDevice {
		if !d.Matched {
			out = append(out, d)
		}
	}
	return out
}

// VerifyLink compares in against actuals, resolved by hostname and domain.
// A device with no reported state gets an all-mismatched verdict; the link
// matches only if every device verdict matches, and a link that yields no
// device verdicts does not match.
func VerifyLink(in intent.Intent, actuals []*state.ActualState) LinkVerdict {
	return verifyIndexed(in, state.NewIndex(actuals))
}

// VerifyLinks verifies each intent against the same set of actual states.
func VerifyLinks(intents []intent.Intent, actuals []*state.ActualState) []LinkVerdict {
	ix := state.NewIndex(actuals)
	verdicts := make([]LinkVerdict, 0, len(intents))
	for _, in := range intents {
		verdicts = append(verdicts, verifyIndexed(in, ix))
	}
	return verdicts
}

func verifyIndexed(in intent.Intent, ix state.Index) LinkVerdict {
	if in == nil {
		return LinkVerdict{}
	}
	v := LinkVerdict{
		LinkID:    in.LinkID(),
		Domain:    in.Domain(),
		PerDevice: compare.Compare(in, ix),
	}
	v.OverallMatched = len(v.PerDevice) > 0
	for _, d := range v.PerDevice {
		v.OverallMatched = v.OverallMatched && d.Matched
	}
	return v
}

// AllMatched reports whether every verdict matched.
func AllMatched(verdicts []LinkVerdict) bool {
	for _, v := range verdicts {
		if !v.OverallMatched {
			return false
		}
	}
	return true
}
