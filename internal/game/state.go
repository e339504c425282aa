// Package game drives grid generation sessions and the interactive viewer.
package game

// State represents the viewer's generation state.
type State int

const (
	// StateGrowing means a run is still expanding cells.
	StateGrowing State = iota
	// StateComplete means the current grid is finished and accepted.
	StateComplete
	// StateFailed means every attempt was rejected.
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateGrowing:
		return "growing"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
