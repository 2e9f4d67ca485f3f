package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/lingoquiz/internal/quiz"
)

// SessionRepo persists in-flight quiz sessions in SQLite, one row per
// identity. It implements engine.SessionStore and engine.SessionLister.
type SessionRepo struct {
	s *Store
}

// Get returns identity's session, or nil if there is none.
func (r *SessionRepo) Get(ctx context.Context, identity string) (*quiz.Session, error) {
	sel := sqlite().Select("payload").
		From(sqlite().Table(sessionsTable)).
		Where(entsql.EQ("identity", identity))
	var rows []struct {
		Payload []byte `sql:"payload"`
	}
	if err := r.s.scan(ctx, sel, &rows); err != nil {
		return nil, fmt.Errorf("load session %s: %w", identity, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	sess, err := quiz.DecodeSession(rows[0].Payload)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", identity, err)
	}
	return sess, nil
}

// Put writes the session, replacing any previous one for the same owner.
func (r *SessionRepo) Put(ctx context.Context, sess *quiz.Session) error {
	payload, err := quiz.EncodeSession(sess)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.Owner, err)
	}
	ins := sqlite().Insert(sessionsTable).
		Columns("identity", "payload", "deadline", "updated_at").
		Values(sess.Owner, payload, millis(sess.Deadline), millis(time.Now())).
		OnConflict(entsql.ConflictColumns("identity"), entsql.ResolveWithNewValues())
	if _, err := r.s.exec(ctx, ins); err != nil {
		return fmt.Errorf("save session %s: %w", sess.Owner, err)
	}
	return nil
}

// Delete removes identity's session. Deleting a missing session is not an
// error.
func (r *SessionRepo) Delete(ctx context.Context, identity string) error {
	if _, err := r.s.exec(ctx, sqlite().Delete(sessionsTable).Where(entsql.EQ("identity", identity))); err != nil {
		return fmt.Errorf("delete session %s: %w", identity, err)
	}
	return nil
}

// Identities lists every identity with a stored session.
func (r *SessionRepo) Identities(ctx context.Context) ([]string, error) {
	sel := sqlite().Select("identity").
		From(sqlite().Table(sessionsTable)).
		OrderBy(entsql.Asc("identity"))
	var ids []string
	if err := r.s.scan(ctx, sel, &ids); err != nil {
		return nil, fmt.Errorf("list session identities: %w", err)
	}
	return ids, nil
}
