package canvas

import (
	"errors"
	"sync"
)

// ErrScratchBusy is returned when the shared scratch canvas is already held.
var ErrScratchBusy = errors.New("canvas: scratch canvas busy")

var scratch struct {
	mu   sync.Mutex
	c    *Canvas
	busy bool
}

// AcquireScratch returns the process-wide scratch canvas resized to w×h and
// a release func. The scratch canvas is not reentrant.
func AcquireScratch(w, h int) (*Canvas, func(), error) {
	scratch.mu.Lock()
	defer scratch.mu.Unlock()
	if scratch.busy {
		return nil, nil, ErrScratchBusy
	}
	if scratch.c == nil {
		scratch.c = New(w, h)
	} else {
		scratch.c.Resize(w, h)
	}
	scratch.busy = true
	release := func() {
		scratch.mu.Lock()
		scratch.busy = false
		scratch.mu.Unlock()
	}
	return scratch.c, release, nil
}

// Tile draws fn on the scratch canvas and returns the result as a pattern.
func Tile(w, h int, fn func(c *Canvas)) (*Pattern, error) {
	c, release, err := AcquireScratch(w, h)
	if err != nil {
		return nil, err
	}
	defer release()
	fn(c)
	return c.Pattern(), nil
}

// ResetScratch drops the scratch canvas.
func ResetScratch() {
	scratch.mu.Lock()
	scratch.c, scratch.busy = nil, false
	scratch.mu.Unlock()
}
