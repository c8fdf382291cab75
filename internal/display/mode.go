package display

import "sync"

// StaticMode is a mode source that never changes.
type StaticMode string

func (m StaticMode) Mode() string { return string(m) }

// ModeVar is a settable mode source, the equivalent of a selection control
// whose value can change between invocations.
type ModeVar struct {
	mu   sync.RWMutex
	mode string
}

func NewModeVar(initial string) *ModeVar {
	return &ModeVar{mode: initial}
}

func (v *ModeVar) Set(mode string) {
	v.mu.Lock()
	v.mode = mode
	v.mu.Unlock()
}

func (v *ModeVar) Mode() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.mode
}
