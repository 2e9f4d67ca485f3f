package store

import (
	"context"
	"testing"
	"time"

	"github.com/abhisek/lingoquiz/internal/quiz"
)

func sampleSession(owner string) *quiz.Session {
	qs := []quiz.Question{sampleQuestion("one"), sampleQuestion("two")}
	qs[0].ID, qs[1].ID = "1", "2"
	return &quiz.Session{
		ID:         "sess-" + owner,
		Owner:      owner,
		Mode:       quiz.ModeComprehensive,
		LevelLabel: quiz.ComprehensiveLabel,
		Questions:  qs,
		StartedAt:  t0,
		Deadline:   t0.Add(80 * time.Second),
		Answers:    []quiz.AnswerRecord{},
		Status:     quiz.StatusActive,
	}
}

func TestSessionRepoRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.Sessions()
	ctx := context.Background()

	got, err := repo.Get(ctx, "u1")
	if err != nil || got != nil {
		t.Fatalf("get before put = %+v, %v", got, err)
	}

	sess := sampleSession("u1")
	if err := repo.Put(ctx, sess); err != nil {
		t.Fatalf("put: %v", err)
	}

	sess.Index = 1
	sess.Score = 1
	sess.Answers = append(sess.Answers, quiz.AnswerRecord{QuestionID: "1", Skill: quiz.SkillGrammar, Correct: true, ChosenIndex: 2})
	sess.MessageHandle = "msg-2"
	if err := repo.Put(ctx, sess); err != nil {
		t.Fatalf("second put: %v", err)
	}

	got, err = repo.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Index != 1 || got.Score != 1 || len(got.Answers) != 1 || got.MessageHandle != "msg-2" {
		t.Errorf("session = %+v", got)
	}
	if !got.Deadline.Equal(sess.Deadline) {
		t.Errorf("deadline = %v, want %v", got.Deadline, sess.Deadline)
	}

	if err := repo.Put(ctx, sampleSession("u0")); err != nil {
		t.Fatalf("put: %v", err)
	}
	ids, err := repo.Identities(ctx)
	if err != nil {
		t.Fatalf("identities: %v", err)
	}
	if len(ids) != 2 || ids[0] != "u0" || ids[1] != "u1" {
		t.Errorf("identities = %v", ids)
	}

	if err := repo.Delete(ctx, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "u1"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	got, err = repo.Get(ctx, "u1")
	if err != nil || got != nil {
		t.Errorf("get after delete = %+v, %v", got, err)
	}
}
