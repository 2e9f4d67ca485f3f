package engine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrSweepUnsupported is returned by SweepExpired when the session store
// cannot list its identities.
var ErrSweepUnsupported = errors.New("session store cannot list sessions")

// SweepExpired finalizes every session whose deadline has passed and
// returns their summaries. Sessions that fail to finalize are logged and
// left for the next sweep or the owner's next interaction.
func (e *Engine) SweepExpired(ctx context.Context, now time.Time) ([]*Summary, error) {
	lister, ok := e.sessions.(SessionLister)
	if !ok {
		return nil, ErrSweepUnsupported
	}
	ids, err := lister.Identities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	var out []*Summary
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		sum, err := e.expireOne(ctx, id, now)
		if err != nil {
			e.logger.Printf("sweep %s: %v", id, err)
			continue
		}
		if sum != nil {
			out = append(out, sum)
		}
	}
	return out, nil
}

func (e *Engine) expireOne(ctx context.Context, identity string, now time.Time) (*Summary, error) {
	release, err := e.lanes.acquire(ctx, identity)
	if err != nil {
		return nil, err
	}
	defer release()

	s, err := e.sessions.Get(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s == nil {
		return nil, nil
	}
	if _, recorded := settled(s); !recorded && !IsExpired(s, now) {
		return nil, nil
	}
	return e.finalize(ctx, s, OutcomeExpired, now)
}
