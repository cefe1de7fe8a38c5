package chatview

import "sync/atomic"

// gate admits one request/stream sequence at a time. Unlike a mutex it never blocks: a caller
// that cannot acquire it is turned away.
type gate struct {
	held atomic.Bool
}

func (g *gate) TryAcquire() bool {
	return g.held.CompareAndSwap(false, true)
}

func (g *gate) Release() {
	g.held.Store(false)
}

func (g *gate) Held() bool {
	return g.held.Load()
}
