package game

import "github.com/alexanderi96/rsnake/game/types"

// Arbiter holds at most one pending direction between ticks. A newer accepted
// proposal overwrites the older one; proposals are not queued.
type Arbiter struct {
	pending types.Direction
}

// Propose accepts requested unless it reverses current, the direction applied
// on the last tick. Rejected proposals leave the pending slot untouched.
func (a *Arbiter) Propose(requested, current types.Direction) bool {
	if !requested.Valid() {
		return false
	}
	// Prevent 180-degree turns
	if requested == current.Opposite() {
		return false
	}
	a.pending = requested
	return true
}

// Resolve returns the direction to apply on this tick
func (a *Arbiter) Resolve(current types.Direction) types.Direction {
	if a.pending != types.NONE {
		return a.pending
	}
	return current
}

// Pending returns the held proposal, or NONE
func (a *Arbiter) Pending() types.Direction {
	return a.pending
}

func (a *Arbiter) Clear() {
	a.pending = types.NONE
}
