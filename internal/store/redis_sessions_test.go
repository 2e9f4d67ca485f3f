package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lingoquiz/internal/engine"
	"github.com/abhisek/lingoquiz/internal/quiz"
)

func newRedisStore(t *testing.T, grace time.Duration) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := OpenRedis(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewRedisSessionStore(client, grace), mr
}

func TestRedisSessionStore_RoundTrip(t *testing.T) {
	store, mr := newRedisStore(t, 0)
	ctx := context.Background()

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	sess := sampleSession("u1")
	require.NoError(t, store.Put(ctx, sess))
	assert.True(t, mr.Exists("lingoquiz:session:u1"))

	got, err = store.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sess.ID, got.ID)
	assert.Len(t, got.Questions, 2)
	assert.True(t, got.Deadline.Equal(sess.Deadline))

	ids, err := store.Identities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids)

	require.NoError(t, store.Delete(ctx, "u1"))
	got, err = store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	ids, err = store.Identities(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisSessionStore_TTLAndPrune(t *testing.T) {
	store, mr := newRedisStore(t, time.Hour)
	ctx := context.Background()

	sess := sampleSession("u1")
	sess.Deadline = time.Now().Add(-time.Minute)
	require.NoError(t, store.Put(ctx, sess))

	ttl := mr.TTL("lingoquiz:session:u1")
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Hour)

	mr.FastForward(2 * time.Hour)
	ids, err := store.Identities(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	members, err := mr.Members("lingoquiz:session_ids")
	if err != nil {
		// miniredis reports a missing key once the set is emptied.
		assert.ErrorIs(t, err, miniredis.ErrKeyNotFound)
	} else {
		assert.Empty(t, members)
	}
}

func TestRedisSessionStore_CorruptPayload(t *testing.T) {
	store, mr := newRedisStore(t, 0)
	require.NoError(t, mr.Set("lingoquiz:session:u1", "{not json"))

	_, err := store.Get(context.Background(), "u1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, redis.Nil)
}

type discardNotifier struct{}

func (discardNotifier) DeliverQuestion(context.Context, string, engine.Prompt) (string, error) {
	return "m", nil
}

func (discardNotifier) DeliverSummary(context.Context, string, string) error { return nil }

// A session abandoned in Redis must be swept and recorded before its key
// outlives the grace period and is evicted.
func TestRedisSessionStore_SweepRecordsBeforeEviction(t *testing.T) {
	s := openTestStore(t)
	seedQuestions(t, s.Questions(), KindComprehensive, quiz.SkillGrammar, quiz.LevelMedium, 5)
	sessions, mr := newRedisStore(t, time.Hour)
	ctx := context.Background()

	eng, err := engine.New(engine.Deps{
		Questions: s.Questions(),
		Sessions:  sessions,
		Results:   s.Results(),
		Notifier:  discardNotifier{},
		Premium:   s.Users(),
	}, engine.DefaultPolicy())
	require.NoError(t, err)

	now := time.Now()
	started, err := eng.StartSession(ctx, "u1", quiz.ModeComprehensive, nil, now)
	require.NoError(t, err)
	budget := started.Session.Deadline.Sub(now)

	mr.FastForward(budget + time.Minute)
	sums, err := eng.SweepExpired(ctx, now.Add(budget+time.Minute))
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(t, engine.OutcomeExpired, sums[0].Outcome)

	mr.FastForward(2 * time.Hour)
	assert.False(t, mr.Exists("lingoquiz:session:u1"))

	_, ok, err := s.Results().LastResultTime(ctx, "u1", quiz.ModeComprehensive)
	require.NoError(t, err)
	assert.True(t, ok, "expired session left no result")

	decision, err := eng.CanStart(ctx, "u1", quiz.ModeComprehensive, now.Add(3*time.Hour))
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}
