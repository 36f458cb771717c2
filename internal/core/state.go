package core

import "fmt"

// State is the position of a run in the pipeline.
type State int

const (
	StateIdle State = iota
	StateExtracting
	StateMapping
	StateGenerating
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExtracting:
		return "extracting"
	case StateMapping:
		return "mapping"
	case StateGenerating:
		return "generating"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition is allowed from s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

var transitions = map[State][]State{
	StateIdle:       {StateExtracting},
	StateExtracting: {StateMapping, StateFailed},
	StateMapping:    {StateGenerating, StateFailed},
	StateGenerating: {StateDone, StateFailed},
}

// CanTransition reports whether the pipeline may move from s to next.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Stage names the pipeline step an error came from.
type Stage string

const (
	StageExtract  Stage = "extract"
	StageMap      Stage = "map"
	StageGenerate Stage = "generate"
)

// StateObserver is told about every state change of a run. During RunBatch it
// is called from several goroutines.
type StateObserver func(runID string, from, to State)
