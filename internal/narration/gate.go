package narration

import "sync/atomic"

// Gate is the single "narrating" flag. While it is held every other Speak
// is dropped. One Gate is shared by every Service in the process.
type Gate struct {
	busy atomic.Bool
}

// NewGate returns an open gate.
func NewGate() *Gate { return &Gate{} }

// TryAcquire takes the gate if it is free.
func (g *Gate) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

// Release frees the gate.
func (g *Gate) Release() {
	g.busy.Store(false)
}

// Busy reports whether a narration is in flight.
func (g *Gate) Busy() bool {
	return g.busy.Load()
}
