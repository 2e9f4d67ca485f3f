package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// UserRepo manages known identities and their premium status. It
// implements engine.PremiumChecker.
type UserRepo struct {
	s *Store
}

type userRow struct {
	Identity     string `sql:"identity"`
	DisplayName  string `sql:"display_name"`
	JoinedAt     int64  `sql:"joined_at"`
	PremiumUntil *int64 `sql:"premium_until"`
}

func (r userRow) user() User {
	u := User{
		Identity:    r.Identity,
		DisplayName: r.DisplayName,
		JoinedAt:    fromMillis(r.JoinedAt),
	}
	if r.PremiumUntil != nil {
		u.PremiumUntil = fromMillis(*r.PremiumUntil)
	}
	return u
}

var userSelect = []string{"identity", "display_name", "joined_at", "premium_until"}

// Ensure records identity if it is new. A non-empty displayName replaces
// the stored one.
func (r *UserRepo) Ensure(ctx context.Context, identity, displayName string, now time.Time) error {
	resolve := entsql.DoNothing()
	if displayName != "" {
		resolve = entsql.ResolveWith(func(u *entsql.UpdateSet) {
			u.SetExcluded("display_name")
		})
	}
	ins := sqlite().Insert(usersTable).
		Columns("identity", "display_name", "joined_at").
		Values(identity, displayName, millis(now)).
		OnConflict(entsql.ConflictColumns("identity"), resolve)
	if _, err := r.s.exec(ctx, ins); err != nil {
		return fmt.Errorf("ensure user %s: %w", identity, err)
	}
	return nil
}

// Get returns the user, or nil if identity is unknown.
func (r *UserRepo) Get(ctx context.Context, identity string) (*User, error) {
	sel := sqlite().Select(userSelect...).
		From(sqlite().Table(usersTable)).
		Where(entsql.EQ("identity", identity))
	var rows []userRow
	if err := r.s.scan(ctx, sel, &rows); err != nil {
		return nil, fmt.Errorf("get user %s: %w", identity, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	u := rows[0].user()
	return &u, nil
}

// List returns every user, newest first.
func (r *UserRepo) List(ctx context.Context) ([]User, error) {
	sel := sqlite().Select(userSelect...).
		From(sqlite().Table(usersTable)).
		OrderBy(entsql.Desc("joined_at"), entsql.Asc("identity"))
	var rows []userRow
	if err := r.s.scan(ctx, sel, &rows); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]User, len(rows))
	for i, row := range rows {
		out[i] = row.user()
	}
	return out, nil
}

// Count returns the number of known users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	n, err := r.s.count(ctx, sqlite().Select().Count().From(sqlite().Table(usersTable)))
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// SetPremium extends identity's premium period by days, starting from the
// later of now and the current expiry. days <= 0 revokes premium. It
// returns the new expiry (zero when revoked).
func (r *UserRepo) SetPremium(ctx context.Context, identity string, days int, now time.Time) (time.Time, error) {
	if err := r.Ensure(ctx, identity, "", now); err != nil {
		return time.Time{}, err
	}

	upd := sqlite().Update(usersTable).Where(entsql.EQ("identity", identity))
	var until time.Time
	if days <= 0 {
		upd.SetNull("premium_until")
	} else {
		base := now
		if cur, ok, err := r.PremiumExpiry(ctx, identity); err != nil {
			return time.Time{}, err
		} else if ok && cur.After(now) {
			base = cur
		}
		until = base.Add(time.Duration(days) * 24 * time.Hour)
		upd.Set("premium_until", millis(until))
	}

	if _, err := r.s.exec(ctx, upd); err != nil {
		return time.Time{}, fmt.Errorf("set premium for %s: %w", identity, err)
	}
	return until, nil
}

// PremiumExpiry returns the stored premium expiry, if any.
func (r *UserRepo) PremiumExpiry(ctx context.Context, identity string) (time.Time, bool, error) {
	u, err := r.Get(ctx, identity)
	if err != nil {
		return time.Time{}, false, err
	}
	if u == nil || u.PremiumUntil.IsZero() {
		return time.Time{}, false, nil
	}
	return u.PremiumUntil, true, nil
}

// IsPremium reports whether identity's premium period extends past now.
func (r *UserRepo) IsPremium(ctx context.Context, identity string, now time.Time) (bool, error) {
	until, ok, err := r.PremiumExpiry(ctx, identity)
	if err != nil {
		return false, err
	}
	return ok && until.After(now), nil
}
