package service

import "sync"

// phase is the tagged request state of one dashboard pane. A pane is
// always in exactly one phase, which rules out impossible combinations
// like "loading with an error showing".
type phase int

const (
	phaseIdle phase = iota
	phaseInFlight
	phaseSucceeded
	phaseFailed
)

func (p phase) String() string {
	switch p {
	case phaseInFlight:
		return "in_flight"
	case phaseSucceeded:
		return "succeeded"
	case phaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// pane guards one controller's request lifecycle. Every attempt gets a
// generation number; an outcome is only committed when its generation
// is still the latest, so a slow superseded response can never
// overwrite newer state. The pane mutex doubles as the lock for the
// data the commit closure mutates.
type pane struct {
	mu         sync.Mutex
	phase      phase
	err        error
	generation uint64
}

// tryBegin starts an attempt only when nothing is in flight. Used by
// strictly non-re-entrant panes (ingestion, ask).
func (p *pane) tryBegin() (uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase == phaseInFlight {
		return 0, false
	}
	p.generation++
	p.phase = phaseInFlight
	p.err = nil
	return p.generation, true
}

// begin always starts a new attempt, superseding any outstanding one.
// Used by last-write-wins panes (search).
func (p *pane) begin() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	p.phase = phaseInFlight
	p.err = nil
	return p.generation
}

// finish commits the outcome of attempt gen. Stale attempts are
// discarded wholesale: no phase change, no commit. The commit closure
// runs under the pane lock and sees whether the attempt failed via the
// error it captured.
func (p *pane) finish(gen uint64, err error, commit func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return false
	}
	if err != nil {
		p.phase = phaseFailed
		p.err = err
	} else {
		p.phase = phaseSucceeded
		p.err = nil
	}
	if commit != nil {
		commit()
	}
	return true
}

// do runs fn under the pane lock; reads of committed data go through here.
func (p *pane) do(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn()
}

func (p *pane) inFlight() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase == phaseInFlight
}

// status reports the phase name and the failure message, empty unless failed.
func (p *pane) status() (string, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	msg := ""
	if p.err != nil {
		msg = p.err.Error()
	}
	return p.phase.String(), msg
}
