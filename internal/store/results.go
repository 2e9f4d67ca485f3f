package store

import (
	"context"
	"fmt"
	"math"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/lingoquiz/internal/quiz"
)

// ResultRepo is the historical result store. It implements
// engine.ResultStore.
type ResultRepo struct {
	s *Store
}

// AppendResult records a finished quiz.
func (r *ResultRepo) AppendResult(ctx context.Context, res quiz.HistoricalResult) error {
	ins := sqlite().Insert(resultsTable).
		Columns("identity", "mode", "score", "total", "level", "finished_at").
		Values(res.Owner, string(res.Mode), res.Score, res.Total, res.Level, millis(res.FinishedAt))
	if _, err := r.s.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

type resultRow struct {
	Identity   string `sql:"identity"`
	Mode       string `sql:"mode"`
	Score      int    `sql:"score"`
	Total      int    `sql:"total"`
	Level      string `sql:"level"`
	FinishedAt int64  `sql:"finished_at"`
}

func (row resultRow) result() quiz.HistoricalResult {
	return quiz.HistoricalResult{
		Owner:      row.Identity,
		Mode:       quiz.Mode(row.Mode),
		Score:      row.Score,
		Total:      row.Total,
		Level:      row.Level,
		FinishedAt: fromMillis(row.FinishedAt),
	}
}

var resultSelect = []string{"identity", "mode", "score", "total", "level", "finished_at"}

// LastResultTime returns when identity last finished a quiz in mode.
func (r *ResultRepo) LastResultTime(ctx context.Context, identity string, mode quiz.Mode) (time.Time, bool, error) {
	sel := sqlite().Select(resultSelect...).
		From(sqlite().Table(resultsTable)).
		Where(entsql.And(entsql.EQ("identity", identity), entsql.EQ("mode", string(mode)))).
		OrderBy(entsql.Desc("finished_at")).
		Limit(1)
	var rows []resultRow
	if err := r.s.scan(ctx, sel, &rows); err != nil {
		return time.Time{}, false, fmt.Errorf("last result time: %w", err)
	}
	if len(rows) == 0 {
		return time.Time{}, false, nil
	}
	return fromMillis(rows[0].FinishedAt), true, nil
}

// History returns identity's results, most recent first.
func (r *ResultRepo) History(ctx context.Context, identity string, limit int) ([]quiz.HistoricalResult, error) {
	sel := sqlite().Select(resultSelect...).
		From(sqlite().Table(resultsTable)).
		Where(entsql.EQ("identity", identity)).
		OrderBy(entsql.Desc("finished_at"), entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	var rows []resultRow
	if err := r.s.scan(ctx, sel, &rows); err != nil {
		return nil, fmt.Errorf("result history: %w", err)
	}
	out := make([]quiz.HistoricalResult, len(rows))
	for i, row := range rows {
		out[i] = row.result()
	}
	return out, nil
}

// Stats aggregates identity's results.
func (r *ResultRepo) Stats(ctx context.Context, identity string) (UserStats, error) {
	sel := sqlite().Select(
		entsql.As(entsql.Count("*"), "tests"),
		entsql.As(entsql.Sum("score"), "total_score"),
		entsql.As(entsql.Max("score"), "best"),
	).
		From(sqlite().Table(resultsTable)).
		Where(entsql.EQ("identity", identity))

	var agg []struct {
		Tests int `sql:"tests"`
		Total int `sql:"total_score"`
		Best  int `sql:"best"`
	}
	if err := r.s.scan(ctx, sel, &agg); err != nil {
		return UserStats{}, fmt.Errorf("user stats: %w", err)
	}

	var stats UserStats
	if len(agg) == 0 || agg[0].Tests == 0 {
		return stats, nil
	}
	stats.TestsTaken = agg[0].Tests
	stats.TotalScore = agg[0].Total
	stats.HighestScore = agg[0].Best
	stats.AverageScore = math.Round(float64(stats.TotalScore)/float64(stats.TestsTaken)*100) / 100

	last, err := r.History(ctx, identity, 1)
	if err != nil {
		return UserStats{}, err
	}
	if len(last) > 0 {
		stats.LastLevel = last[0].Level
		stats.LastFinished = last[0].FinishedAt
	}
	return stats, nil
}

// Leaderboard ranks identities by their summed score.
func (r *ResultRepo) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	res := sqlite().Table(resultsTable)
	users := sqlite().Table(usersTable)
	sel := sqlite().Select(
		res.C("identity"),
		users.C("display_name"),
		entsql.As(entsql.Sum(res.C("score")), "total_score"),
		entsql.As(entsql.Count("*"), "tests"),
	).
		From(res).
		LeftJoin(users).On(res.C("identity"), users.C("identity")).
		GroupBy(res.C("identity")).
		OrderBy(entsql.Desc("total_score"), entsql.Asc(res.C("identity")))
	if limit > 0 {
		sel.Limit(limit)
	}

	var rows []struct {
		Identity    string `sql:"identity"`
		DisplayName string `sql:"display_name"`
		TotalScore  int    `sql:"total_score"`
		Tests       int    `sql:"tests"`
	}
	if err := r.s.scan(ctx, sel, &rows); err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	out := make([]LeaderboardEntry, len(rows))
	for i, row := range rows {
		out[i] = LeaderboardEntry(row)
	}
	return out, nil
}

// RecentCount returns how many quizzes finished within window before now.
func (r *ResultRepo) RecentCount(ctx context.Context, window time.Duration, now time.Time) (int, error) {
	n, err := r.s.count(ctx, sqlite().Select().Count().
		From(sqlite().Table(resultsTable)).
		Where(entsql.GTE("finished_at", millis(now.Add(-window)))))
	if err != nil {
		return 0, fmt.Errorf("recent result count: %w", err)
	}
	return n, nil
}

// DeleteFor removes every result of identity and returns how many were
// removed.
func (r *ResultRepo) DeleteFor(ctx context.Context, identity string) (int, error) {
	res, err := r.s.exec(ctx, sqlite().Delete(resultsTable).Where(entsql.EQ("identity", identity)))
	if err != nil {
		return 0, fmt.Errorf("delete results: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete results: %w", err)
	}
	return int(n), nil
}
