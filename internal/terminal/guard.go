package terminal

import "sync"

// Guard scopes one captured terminal state. Release restores it exactly once,
// however many times it is called, so it is safe to defer and to call early.
type Guard struct {
	ctrl  Controller
	state State

	once sync.Once
	err  error
}

// Acquire captures the current state of ctrl. Nothing has been changed when
// Acquire fails, so there is nothing to release.
func Acquire(ctrl Controller) (*Guard, error) {
	st, err := ctrl.CaptureState()
	if err != nil {
		return nil, err
	}
	return &Guard{ctrl: ctrl, state: st}, nil
}

// EnterRaw switches the guarded terminal to raw mode.
func (g *Guard) EnterRaw() error {
	return g.ctrl.EnterRawMode()
}

// Release restores the captured state. Later calls return the first result.
func (g *Guard) Release() error {
	g.once.Do(func() {
		g.err = g.ctrl.RestoreState(g.state)
	})
	return g.err
}
