// The read-handle pool: a small cache of independent read-only file
// handles to the currently-active log (spec §4.4). Readers acquire a
// handle, perform a positioned read, and release it. reset is invoked only
// by compaction, under the writer mutex, to redirect the pool at the new
// log file and drain the old handles.
package caskdb

import (
	"fmt"
	"os"
	"sync"
)

// pooledHandle is a read-only file handle tagged with the pool generation
// it was opened against, so a handle released after a reset (compaction
// swap) is recognised as stale and closed rather than pooled.
type pooledHandle struct {
	f   *os.File
	gen int
}

// handlePool hands out up to capacity independent read handles to a single
// path, opening them lazily and blocking acquire() once capacity
// outstanding handles are in use.
type handlePool struct {
	mu       sync.Mutex
	path     string
	gen      int
	capacity int
	free     []*pooledHandle
	created  int
	waiters  chan struct{}
}

// newHandlePool returns a pool bound to path with the given capacity. No
// handles are opened until the first acquire.
func newHandlePool(path string, capacity int) *handlePool {
	if capacity < 1 {
		capacity = 1
	}
	return &handlePool{path: path, capacity: capacity}
}

// acquire returns a read handle, opening a new one if the pool has spare
// capacity, or blocking until a handle is released otherwise.
func (p *handlePool) acquire() (*pooledHandle, error) {
	for {
		p.mu.Lock()
		if n := len(p.free); n > 0 {
			h := p.free[n-1]
			p.free = p.free[:n-1]
			p.mu.Unlock()
			return h, nil
		}
		if p.created < p.capacity {
			p.created++
			path, gen := p.path, p.gen
			p.mu.Unlock()
			f, err := os.OpenFile(path, os.O_RDONLY, 0o644)
			if err != nil {
				p.mu.Lock()
				p.created--
				p.mu.Unlock()
				return nil, fmt.Errorf("caskdb: open read handle: %w", err)
			}
			return &pooledHandle{f: f, gen: gen}, nil
		}
		if p.waiters == nil {
			p.waiters = make(chan struct{})
		}
		wait := p.waiters
		p.mu.Unlock()
		<-wait
	}
}

// release returns h to the pool for reuse, unless a compaction swap has
// since retired h's generation — in that case h is simply closed.
func (p *handlePool) release(h *pooledHandle) {
	p.mu.Lock()
	if h.gen != p.gen {
		p.mu.Unlock()
		h.f.Close()
		return
	}
	p.free = append(p.free, h)
	waiter := p.waiters
	p.waiters = nil
	p.mu.Unlock()
	if waiter != nil {
		close(waiter)
	}
}

// reset discards all currently-free handles, bumps the generation so any
// handle still checked out by an in-flight reader is closed (not pooled)
// on release, and redirects subsequent acquire calls to newPath.
func (p *handlePool) reset(newPath string) {
	p.mu.Lock()
	stale := p.free
	p.free = nil
	// Handles still checked out by in-flight readers aren't reflected here;
	// created briefly undercounts until they release (and get closed, not
	// pooled, since their generation is now stale). Capacity can overshoot
	// by that amount for the duration of the swap.
	p.created = 0
	p.gen++
	p.path = newPath
	p.mu.Unlock()

	for _, h := range stale {
		h.f.Close()
	}
}

// closeAll closes every free handle. Used by Engine.Close.
func (p *handlePool) closeAll() {
	p.mu.Lock()
	stale := p.free
	p.free = nil
	p.mu.Unlock()
	for _, h := range stale {
		h.f.Close()
	}
}
