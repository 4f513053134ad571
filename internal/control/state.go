package control

import "sync"

// State is the playback state of one interactive session. It is shared by
// pointer between the input layer and the rollout loop driving it. Sharing
// one State between two loops makes them consume each other's single steps.
type State struct {
	mu sync.Mutex

	paused   bool
	stepOnce bool
	stepHold bool
	trails   bool
	radials  bool
	replay   bool
	done     bool
}

// Snapshot is a consistent copy of State taken under its lock.
type Snapshot struct {
	Paused   bool
	StepOnce bool
	StepHold bool
	Trails   bool
	Radials  bool
	Replay   bool
	Done     bool
}

// Stepping reports whether a paused session has a step pending.
func (s Snapshot) Stepping() bool { return s.StepOnce || s.StepHold }

func NewState() *State {
	return &State{}
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Paused:   s.paused,
		StepOnce: s.stepOnce,
		StepHold: s.stepHold,
		Trails:   s.trails,
		Radials:  s.radials,
		Replay:   s.replay,
		Done:     s.done,
	}
}

// TakeReplay reports a pending replay request and clears it together with
// done and any step state.
func (s *State) TakeReplay() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.replay {
		return false
	}
	s.replay = false
	s.done = false
	s.stepOnce = false
	s.stepHold = false
	return true
}

// ConsumeStepOnce clears a pending single step and leaves the session
// paused. It reports whether a step was pending.
func (s *State) ConsumeStepOnce() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stepOnce {
		return false
	}
	s.stepOnce = false
	s.paused = true
	return true
}

func (s *State) SetDone(done bool) {
	s.mu.Lock()
	s.done = done
	s.mu.Unlock()
}

func (s *State) SetPaused(paused bool) {
	s.mu.Lock()
	s.paused = paused
	s.mu.Unlock()
}

func (s *State) SetTrails(on bool) {
	s.mu.Lock()
	s.trails = on
	s.mu.Unlock()
}

func (s *State) update(f func(s *State)) {
	s.mu.Lock()
	f(s)
	s.mu.Unlock()
}
