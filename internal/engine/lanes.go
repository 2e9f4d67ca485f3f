package engine

import (
	"context"
	"sync"
)

// lanes serializes work per identity. Waiters are served in arrival order
// and an idle identity holds no memory.
type lanes struct {
	mu    sync.Mutex
	lanes map[string]*lane
}

type lane struct {
	busy    bool
	waiters []chan struct{}
}

func newLanes() *lanes {
	return &lanes{lanes: make(map[string]*lane)}
}

// acquire blocks until the identity's lane is free or ctx is done. The
// returned release func must be called exactly once.
func (l *lanes) acquire(ctx context.Context, identity string) (func(), error) {
	l.mu.Lock()
	ln, ok := l.lanes[identity]
	if !ok {
		ln = &lane{}
		l.lanes[identity] = ln
	}
	if !ln.busy {
		ln.busy = true
		l.mu.Unlock()
		return l.releaser(identity), nil
	}
	ch := make(chan struct{})
	ln.waiters = append(ln.waiters, ch)
	l.mu.Unlock()

	select {
	case <-ch:
		return l.releaser(identity), nil
	case <-ctx.Done():
		l.mu.Lock()
		for i, w := range ln.waiters {
			if w == ch {
				ln.waiters = append(ln.waiters[:i], ln.waiters[i+1:]...)
				l.mu.Unlock()
				return nil, ctx.Err()
			}
		}
		l.mu.Unlock()
		// The lane was handed over while we gave up; pass it on.
		l.release(identity)
		return nil, ctx.Err()
	}
}

func (l *lanes) releaser(identity string) func() {
	var once sync.Once
	return func() { once.Do(func() { l.release(identity) }) }
}

func (l *lanes) release(identity string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ln := l.lanes[identity]
	if ln == nil {
		return
	}
	if len(ln.waiters) > 0 {
		next := ln.waiters[0]
		ln.waiters = ln.waiters[1:]
		close(next)
		return
	}
	delete(l.lanes, identity)
}

// size returns the number of identities with a held lane.
func (l *lanes) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lanes)
}
