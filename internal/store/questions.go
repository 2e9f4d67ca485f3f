package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/lingoquiz/internal/quiz"
)

// QuestionRepo is the question bank. It implements engine.QuestionSupplier.
type QuestionRepo struct {
	s *Store
}

type questionRow struct {
	ID           int    `sql:"id"`
	Kind         string `sql:"kind"`
	Skill        string `sql:"skill"`
	Level        string `sql:"level"`
	Text         string `sql:"text"`
	Options      string `sql:"options"`
	CorrectIndex int    `sql:"correct_index"`
	MediaPath    string `sql:"media_path"`
	MediaKind    string `sql:"media_kind"`
	CreatedAt    int64  `sql:"created_at"`
}

var questionSelect = []string{
	"id", "kind", "skill", "level", "text", "options",
	"correct_index", "media_path", "media_kind", "created_at",
}

func (r questionRow) entry() (BankEntry, error) {
	var opts []string
	if err := json.Unmarshal([]byte(r.Options), &opts); err != nil {
		return BankEntry{}, fmt.Errorf("decode options of question %d: %w", r.ID, err)
	}
	q := quiz.Question{
		ID:           strconv.Itoa(r.ID),
		Text:         r.Text,
		Options:      opts,
		CorrectIndex: r.CorrectIndex,
		Skill:        quiz.Skill(r.Skill),
		Level:        quiz.Level(r.Level),
	}
	if r.MediaPath != "" {
		q.Media = &quiz.Media{Path: r.MediaPath, Kind: quiz.MediaKind(r.MediaKind)}
	}
	return BankEntry{
		ID:        r.ID,
		Kind:      r.Kind,
		Question:  q,
		CreatedAt: fromMillis(r.CreatedAt),
	}, nil
}

func (q *QuestionRepo) selectRows(ctx context.Context, sel *entsql.Selector) ([]BankEntry, error) {
	var rows []questionRow
	if err := q.s.scan(ctx, sel, &rows); err != nil {
		return nil, err
	}
	out := make([]BankEntry, 0, len(rows))
	for _, r := range rows {
		e, err := r.entry()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func questionsOf(entries []BankEntry) []quiz.Question {
	qs := make([]quiz.Question, len(entries))
	for i, e := range entries {
		qs[i] = e.Question
	}
	return qs
}

// FetchComprehensive returns up to limit comprehensive questions in bank
// order.
func (q *QuestionRepo) FetchComprehensive(ctx context.Context, limit int) ([]quiz.Question, error) {
	sel := sqlite().Select(questionSelect...).
		From(sqlite().Table(questionsTable)).
		Where(entsql.EQ("kind", KindComprehensive)).
		OrderBy(entsql.Asc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	entries, err := q.selectRows(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("fetch comprehensive questions: %w", err)
	}
	return questionsOf(entries), nil
}

// FetchBySkillAndLevel returns up to limit skill questions for the skill
// and level, in random order.
func (q *QuestionRepo) FetchBySkillAndLevel(ctx context.Context, skill quiz.Skill, level quiz.Level, limit int) ([]quiz.Question, error) {
	sel := sqlite().Select(questionSelect...).
		From(sqlite().Table(questionsTable)).
		Where(entsql.And(
			entsql.EQ("kind", KindSkill),
			entsql.EQ("skill", string(skill)),
			entsql.EQ("level", string(level)),
		)).
		OrderExpr(entsql.Expr("RANDOM()"))
	if limit > 0 {
		sel.Limit(limit)
	}
	entries, err := q.selectRows(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("fetch %s/%s questions: %w", skill, level, err)
	}
	return questionsOf(entries), nil
}

// Add validates and stores a question under kind, returning its bank id.
func (q *QuestionRepo) Add(ctx context.Context, kind string, question quiz.Question, now time.Time) (int, error) {
	if kind != KindComprehensive && kind != KindSkill {
		return 0, fmt.Errorf("unknown question kind %q", kind)
	}
	if err := question.Validate(); err != nil {
		return 0, err
	}
	skill, err := quiz.ParseSkill(string(question.Skill))
	if err != nil {
		return 0, err
	}
	level, err := quiz.ParseLevel(string(question.Level))
	if err != nil {
		return 0, err
	}
	opts, err := json.Marshal(question.Options)
	if err != nil {
		return 0, fmt.Errorf("encode options: %w", err)
	}
	var mediaPath, mediaKind string
	if question.Media != nil {
		mediaPath, mediaKind = question.Media.Path, string(question.Media.Kind)
	}

	ins := sqlite().Insert(questionsTable).
		Columns("kind", "skill", "level", "text", "options", "correct_index", "media_path", "media_kind", "created_at").
		Values(kind, string(skill), string(level), question.Text, string(opts),
			question.CorrectIndex, mediaPath, mediaKind, millis(now))
	res, err := q.s.exec(ctx, ins)
	if err != nil {
		return 0, fmt.Errorf("insert question: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert question: %w", err)
	}
	return int(id), nil
}

// Get returns the bank entry with id, or nil if there is none.
func (q *QuestionRepo) Get(ctx context.Context, id int) (*BankEntry, error) {
	sel := sqlite().Select(questionSelect...).
		From(sqlite().Table(questionsTable)).
		Where(entsql.EQ("id", id))
	entries, err := q.selectRows(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("get question %d: %w", id, err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// List returns bank entries matching f, newest first.
func (q *QuestionRepo) List(ctx context.Context, f QuestionFilter) ([]BankEntry, error) {
	sel := sqlite().Select(questionSelect...).
		From(sqlite().Table(questionsTable)).
		OrderBy(entsql.Desc("id"))

	var preds []*entsql.Predicate
	if f.Kind != "" {
		preds = append(preds, entsql.EQ("kind", f.Kind))
	}
	if f.Skill != "" {
		preds = append(preds, entsql.EQ("skill", string(f.Skill)))
	}
	if f.Level != "" {
		preds = append(preds, entsql.EQ("level", string(f.Level)))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}

	entries, err := q.selectRows(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return entries, nil
}

// Delete removes the question with id and reports whether it existed.
func (q *QuestionRepo) Delete(ctx context.Context, id int) (bool, error) {
	res, err := q.s.exec(ctx, sqlite().Delete(questionsTable).Where(entsql.EQ("id", id)))
	if err != nil {
		return false, fmt.Errorf("delete question %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete question %d: %w", id, err)
	}
	return n > 0, nil
}

// Count returns the number of questions in the bank.
func (q *QuestionRepo) Count(ctx context.Context) (int, error) {
	n, err := q.s.count(ctx, sqlite().Select().Count().From(sqlite().Table(questionsTable)))
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}
