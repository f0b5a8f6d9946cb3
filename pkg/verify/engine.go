package verify

import (
	"context"
	"fmt"
	"slices"

	"github.com/newtron-network/newtverify/pkg/intent"
	"github.com/newtron-network/newtverify/pkg/lab"
	"github.com/newtron-network/newtverify/pkg/state"
	"github.com/newtron-network/newtverify/pkg/textdiff"
	"github.com/newtron-network/newtverify/pkg/util"
)

// StateSource fetches the actual state of every device a batch of intents
// targets, in one request.
type StateSource interface {
	FetchState(ctx context.Context, intents []intent.Intent) ([]*state.ActualState, error)
}

// OutputSource fetches the raw output of every command of a lab on every
// host that has an expectation for it, in one request.
type OutputSource interface {
	FetchOutput(ctx context.Context, def *lab.Definition) (map[lab.OutputKey]string, error)
}

// TransportError is a failure of a state or output source. It is reported
// as is and never retried.
type TransportError struct {
	Op  string // "fetch state", "fetch output"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("verify: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Engine runs verification rounds against its sources. It performs no
// internal parallelism and imposes no timeouts; callers bound rounds with
// the context.
type Engine struct {
	States  StateSource
	Outputs OutputSource
	Policy  Policy
}

// VerifyLinks validates the batch, fetches actual state once for all of
// it and verifies each intent. A malformed batch is rejected before any
// fetch.
func (e *Engine) VerifyLinks(ctx context.Context, intents []intent.Intent) ([]LinkVerdict, error) {
	if err := intent.ValidateBatch(intents); err != nil {
		return nil, err
	}
	batch := slices.Clone(intents)

	log := util.WithOperation("verify-links").WithField("links", len(batch))
	if e.States == nil {
		return nil, &TransportError{Op: "fetch state", Err: util.ErrNotConnected}
	}

	log.Debug("Fetching actual state")
	actuals, err := e.States.FetchState(ctx, batch)
	if err != nil {
		log.WithError(err).Warn("State fetch failed")
		return nil, &TransportError{Op: "fetch state", Err: err}
	}
	log.Debugf("Received %d device states", len(actuals))

	verdicts := VerifyLinks(batch, actuals)
	matched := 0
	for _, v := range verdicts {
		if v.OverallMatched {
			matched++
		} else {
			util.WithLink(v.LinkID, string(v.Domain)).Debugf("Link mismatched on %d device objects", len(v.Mismatched()))
		}
	}
	log.Infof("Verified %d links: %d matched, %d mismatched", len(verdicts), matched, len(verdicts)-matched)
	return verdicts, nil
}

// CheckLab validates def, fetches the output of all its commands once and
// checks it with the engine's policy.
func (e *Engine) CheckLab(ctx context.Context, def *lab.Definition) (*LabCheckResult, error) {
	if def == nil {
		verr := util.NewValidationError("no lab definition")
		verr.Kind = util.ErrInvalidLab
		return nil, verr
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	log := util.WithLab(def.ID).WithField("policy", e.Policy.String())
	if e.Outputs == nil {
		return nil, &TransportError{Op: "fetch output", Err: util.ErrNotConnected}
	}

	log.Debug("Fetching command output")
	raw, err := e.Outputs.FetchOutput(ctx, def)
	if err != nil {
		log.WithError(err).Warn("Output fetch failed")
		return nil, &TransportError{Op: "fetch output", Err: err}
	}

	outputs := make(map[lab.OutputKey][]string, len(raw))
	for k, text := range raw {
		outputs[lab.Key(k.Hostname, k.Command)] = textdiff.SplitLines(text)
	}

	res := CheckLab(def, outputs, WithPolicy(e.Policy))
	for _, host := range res.Hosts() {
		hr := res.PerHost[host]
		util.WithHost(host).WithField("lab", def.ID).Debugf("%d matched, %d unmatched", len(hr.Matched), len(hr.Unmatched))
	}
	log.Infof("Checked lab on %d hosts, verified=%v", len(res.PerHost), res.Verified())
	return res, nil
}
