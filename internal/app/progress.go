package syncer

import (
	"sync"
	"time"
)

// Phase is the externally visible stage of the sync cycle.
type Phase string

const (
	// PhaseInitial means no cycle is running.
	PhaseInitial Phase = "initial"
	// PhaseFetchingSource means the cycle is pulling events from the
	// source calendar.
	PhaseFetchingSource Phase = "fetchingSource"
	// PhaseSyncingTarget means fetched events are being written to the
	// target calendar one at a time.
	PhaseSyncingTarget Phase = "syncingTarget"
)

// Result is the outcome of the most recent phase or cycle.
type Result string

const (
	ResultUnknown Result = "unknown"
	ResultSuccess Result = "success"
	ResultFailed  Result = "failed"
)

// Progress is a completion ratio for the current phase. Den is never
// zero; an idle tracker reports 0/1.
type Progress struct {
	Num int `json:"num"`
	Den int `json:"den"`
}

// State is a snapshot of the tracker. LastSyncTime is nil until a cycle
// has fully succeeded.
type State struct {
	Phase        Phase      `json:"phase"`
	Result       Result     `json:"result"`
	Progress     Progress   `json:"progress"`
	LastSyncTime *time.Time `json:"lastSyncTime,omitempty"`
}

// Observer receives a state snapshot after every transition.
type Observer func(State)

// Tracker publishes sync cycle progress to subscribers. All mutators
// are driven by the Synchronizer; everything else only reads.
type Tracker struct {
	mu        sync.Mutex
	state     State
	observers []Observer
}

// NewTracker returns an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{
		state: State{
			Phase:    PhaseInitial,
			Result:   ResultUnknown,
			Progress: Progress{Num: 0, Den: 1},
		},
	}
}

// Subscribe registers an observer for every future transition.
// Observers run synchronously under the tracker lock, in registration
// order, and must not call back into the tracker.
func (t *Tracker) Subscribe(fn Observer) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, fn)
}

// State returns the current snapshot.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Tracker) update(mutate func(*State)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	mutate(&t.state)
	snapshot := t.state
	for _, fn := range t.observers {
		fn(snapshot)
	}
}

func (t *Tracker) startFetch() {
	t.update(func(s *State) {
		s.Phase = PhaseFetchingSource
		s.Result = ResultUnknown
		s.Progress = Progress{Num: 0, Den: 1}
	})
}

func (t *Tracker) startTarget(total int) {
	if total < 1 {
		total = 1
	}
	t.update(func(s *State) {
		s.Phase = PhaseSyncingTarget
		s.Result = ResultUnknown
		s.Progress = Progress{Num: 0, Den: total}
	})
}

func (t *Tracker) setProgress(num, den int) {
	if den < 1 {
		den = 1
	}
	t.update(func(s *State) {
		s.Progress = Progress{Num: num, Den: den}
	})
}

// endCycle returns the tracker to idle. lastSync is recorded only on a
// successful cycle; a failed cycle keeps the previous value.
func (t *Tracker) endCycle(result Result, lastSync *time.Time) {
	t.update(func(s *State) {
		s.Phase = PhaseInitial
		s.Result = result
		s.Progress = Progress{Num: 0, Den: 1}
		if result == ResultSuccess && lastSync != nil {
			s.LastSyncTime = lastSync
		}
	})
}
