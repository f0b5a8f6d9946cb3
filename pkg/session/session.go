// Package session drives verification rounds for a presentation layer: it
// holds at most one in-flight request and discards responses that arrive
// after the request was abandoned.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/newtron-network/newtverify/pkg/intent"
	"github.com/newtron-network/newtverify/pkg/lab"
	"github.com/newtron-network/newtverify/pkg/util"
	"github.com/newtron-network/newtverify/pkg/verify"
)

// State is the observable state of a session.
type State int

const (
	Idle State = iota
	Submitting
	Checking
	Verified
	Checked
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Checking:
		return "checking"
	case Verified:
		return "verified"
	case Checked:
		return "checked"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// InFlight reports whether a request is outstanding.
func (s State) InFlight() bool {
	return s == Submitting || s == Checking
}

// Terminal reports whether s holds a result to display.
func (s State) Terminal() bool {
	return s == Verified || s == Checked || s == Failed
}

// ErrBusy is returned when a round is started while another is in flight.
var ErrBusy = errors.New("a verification request is already in flight")

// Token identifies one request. Responses carrying an older token are
// stale.
type Token uint64

// Snapshot is a consistent view of the session.
type Snapshot struct {
	State    State
	Token    Token
	Verdicts []verify.LinkVerdict
	Result   *verify.LabCheckResult
	Err      error
}

// Session is safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	state     State
	gen       Token
	verdicts  []verify.LinkVerdict
	result    *verify.LabCheckResult
	err       error
	observers []func(Snapshot)
}

// New returns an idle session.
func New() *Session {
	return &Session{}
}

// OnChange registers fn to be called with a snapshot after every state
// change. fn runs outside the session lock.
func (s *Session) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Snapshot returns the current state and payload.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{State: s.state, Token: s.gen, Verdicts: s.verdicts, Result: s.result, Err: s.err}
}

// BeginVerify starts a link verification round. A malformed batch is
// rejected and the session stays Idle.
func (s *Session) BeginVerify(intents []intent.Intent) (Token, error) {
	return s.begin(Submitting, func() error { return intent.ValidateBatch(intents) })
}

// BeginCheck starts a lab check round. An invalid definition is rejected
// and the session stays Idle.
func (s *Session) BeginCheck(def *lab.Definition) (Token, error) {
	return s.begin(Checking, func() error {
		if def == nil {
			return &util.ValidationError{Errors: []string{"no lab definition"}, Kind: util.ErrInvalidLab}
		}
		return def.Validate()
	})
}

func (s *Session) begin(next State, validate func() error) (Token, error) {
	s.mu.Lock()
	if s.state.InFlight() {
		s.mu.Unlock()
		return 0, ErrBusy
	}

	var changes []Snapshot
	if s.state.Terminal() {
		s.resetLocked()
		changes = append(changes, s.snapshotLocked())
	}
	if err := validate(); err != nil {
		s.mu.Unlock()
		s.notify(changes)
		return 0, err
	}

	s.gen++
	s.state = next
	tok := s.gen
	changes = append(changes, s.snapshotLocked())
	s.mu.Unlock()

	s.notify(changes)
	return tok, nil
}

// CompleteVerify delivers the response of a verification round. It
// returns false, and changes nothing, if tok is stale or the session is
// not submitting.
func (s *Session) CompleteVerify(tok Token, verdicts []verify.LinkVerdict, err error) bool {
	return s.complete(tok, Submitting, func() {
		if err != nil {
			s.state, s.err = Failed, err
			return
		}
		s.state, s.verdicts = Verified, verdicts
	})
}

// CompleteCheck delivers the response of a lab check round, with the same
// staleness rules as CompleteVerify.
func (s *Session) CompleteCheck(tok Token, res *verify.LabCheckResult, err error) bool {
	return s.complete(tok, Checking, func() {
		if err != nil {
			s.state, s.err = Failed, err
			return
		}
		s.state, s.result = Checked, res
	})
}

func (s *Session) complete(tok Token, want State, apply func()) bool {
	s.mu.Lock()
	if tok != s.gen || s.state != want {
		s.mu.Unlock()
		util.WithField("token", tok).Debug("Discarding stale verification response")
		return false
	}
	apply()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify([]Snapshot{snap})
	return true
}

// Cancel abandons the in-flight request, if any. The session returns to
// Idle and the abandoned request's response will be discarded.
func (s *Session) Cancel() {
	s.mu.Lock()
	if !s.state.InFlight() {
		s.mu.Unlock()
		return
	}
	s.gen++
	s.resetLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify([]Snapshot{snap})
}

// Dismiss discards a displayed result and returns to Idle.
func (s *Session) Dismiss() {
	s.mu.Lock()
	if !s.state.Terminal() {
		s.mu.Unlock()
		return
	}
	s.resetLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify([]Snapshot{snap})
}

func (s *Session) resetLocked() {
	s.state = Idle
	s.verdicts = nil
	s.result = nil
	s.err = nil
}

func (s *Session) notify(changes []Snapshot) {
	if len(changes) == 0 {
		return
	}
	s.mu.Lock()
	observers := append([]func(Snapshot){}, s.observers...)
	s.mu.Unlock()
	for _, snap := range changes {
		for _, fn := range observers {
			fn(snap)
		}
	}
}

// VerifyLinks runs one verification round through engine and blocks until
// it resolves. If the round was cancelled meanwhile, the verdicts are
// still returned but the session is left untouched.
func (s *Session) VerifyLinks(ctx context.Context, engine *verify.Engine, intents []intent.Intent) ([]verify.LinkVerdict, error) {
	tok, err := s.BeginVerify(intents)
	if err != nil {
		return nil, err
	}
	verdicts, err := engine.VerifyLinks(ctx, intents)
	s.CompleteVerify(tok, verdicts, err)
	return verdicts, err
}

// CheckLab runs one lab check round through engine and blocks until it
// resolves.
func (s *Session) CheckLab(ctx context.Context, engine *verify.Engine, def *lab.Definition) (*verify.LabCheckResult, error) {
	tok, err := s.BeginCheck(def)
	if err != nil {
		return nil, err
	}
	res, err := engine.CheckLab(ctx, def)
	s.CompleteCheck(tok, res, err)
	return res, err
}
