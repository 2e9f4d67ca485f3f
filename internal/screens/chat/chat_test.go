package chat

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lingoquiz/internal/engine"
	"github.com/abhisek/lingoquiz/internal/notify"
	"github.com/abhisek/lingoquiz/internal/quiz"
	"github.com/abhisek/lingoquiz/internal/router"
	"github.com/abhisek/lingoquiz/internal/screen"
	"github.com/abhisek/lingoquiz/internal/screens/summary"
	"github.com/abhisek/lingoquiz/internal/store"
)

var t0 = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *screen.Services
	store *store.Store
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open("file:chat_" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	for i := range 2 {
		_, err := st.Questions().Add(ctx, store.KindComprehensive, quiz.Question{
			Text:         fmt.Sprintf("Choose the second option (%d)", i),
			Options:      []string{"first", "second", "third"},
			CorrectIndex: 1,
			Skill:        quiz.SkillGrammar,
			Level:        quiz.LevelEasy,
		}, t0)
		if err != nil {
			t.Fatal(err)
		}
	}

	f := &fixture{store: st, now: t0}
	transcript := notify.NewTranscript()
	eng, err := engine.New(engine.Deps{
		Questions: st.Questions(),
		Sessions:  st.Sessions(),
		Results:   st.Results(),
		Notifier:  transcript,
		Premium:   st.Users(),
		Logger:    log.New(io.Discard, "", 0),
	}, engine.DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}
	f.svc = &screen.Services{
		Engine:      eng,
		Transcript:  transcript,
		Results:     st.Results(),
		Users:       st.Users(),
		Identity:    "tui:ana",
		DisplayName: "Ana",
		Now:         func() time.Time { return f.now },
	}
	return f
}

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// press sends a key and feeds the resulting engine round trip back in.
func press(t *testing.T, c *ChatScreen, k tea.KeyPressMsg) {
	t.Helper()
	_, cmd := c.Update(k)
	if cmd == nil {
		t.Fatalf("key %q produced no command", k.String())
	}
	c.Update(cmd())
}

func started(t *testing.T, f *fixture) *ChatScreen {
	t.Helper()
	c := New(f.svc, quiz.ModeComprehensive, nil)
	c.Update(c.start()())
	if c.prompt == nil {
		t.Fatalf("no question after start; entries: %v", c.entries)
	}
	return c
}

func TestChat_FullQuiz(t *testing.T) {
	f := newFixture(t)
	c := started(t, f)

	if c.prompt.Number != 1 || c.prompt.Total != 2 {
		t.Fatalf("prompt = %d/%d, want 1/2", c.prompt.Number, c.prompt.Total)
	}
	if c.window != 80*time.Second {
		t.Errorf("window = %v, want 80s", c.window)
	}

	press(t, c, key('2'))
	if c.prompt.Number != 2 {
		t.Fatalf("expected question 2, got %d", c.prompt.Number)
	}

	f.now = f.now.Add(10 * time.Second)
	press(t, c, key('1'))
	if c.summary == nil {
		t.Fatal("expected the quiz to end")
	}
	if c.summary.Score != 1 || c.summary.Outcome != engine.OutcomeCompleted {
		t.Errorf("summary = %d %s, want 1 completed", c.summary.Score, c.summary.Outcome)
	}

	var answers []string
	for _, e := range c.entries {
		if e.fromUser {
			answers = append(answers, e.text)
		}
	}
	want := []string{"2) second  ✓", "1) first  ✗"}
	if fmt.Sprint(answers) != fmt.Sprint(want) {
		t.Errorf("answers = %q, want %q", answers, want)
	}

	last := c.entries[len(c.entries)-1]
	if last.kind != notify.KindSummary || !strings.Contains(last.text, "Score: 1/2") {
		t.Errorf("last entry = %v", last)
	}

	_, cmd := c.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if _, ok := msg.Screen.(*summary.SummaryScreen); !ok {
		t.Errorf("expected summary screen, got %T", msg.Screen)
	}
}

func TestChat_IgnoresKeysWhileBusy(t *testing.T) {
	f := newFixture(t)
	c := started(t, f)

	_, cmd := c.Update(key('2'))
	if cmd == nil {
		t.Fatal("expected submit command")
	}
	if _, cmd := c.Update(key('3')); cmd != nil {
		t.Error("second key while busy should be ignored")
	}
}

func TestChat_ExpiresOnTick(t *testing.T) {
	f := newFixture(t)
	c := started(t, f)

	f.now = f.now.Add(30 * time.Second)
	c.Update(tickMsg(f.now))
	if c.busy {
		t.Fatal("should not expire before the deadline")
	}

	f.now = f.now.Add(51 * time.Second)
	c.Update(tickMsg(f.now))
	if !c.busy {
		t.Fatal("expected the screen to ask the engine to finalize")
	}
	c.Update(c.resume()())

	if c.summary == nil || c.summary.Outcome != engine.OutcomeExpired {
		t.Fatalf("expected expired summary, got %+v", c.summary)
	}
	if c.prompt != nil {
		t.Error("question should be cleared after the quiz ends")
	}
}

func TestChat_CooldownIsExplained(t *testing.T) {
	f := newFixture(t)
	err := f.store.Results().AppendResult(context.Background(), quiz.HistoricalResult{
		Owner: "tui:ana", Mode: quiz.ModeComprehensive, Total: 2, Level: "A1", FinishedAt: t0.Add(-time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}

	c := New(f.svc, quiz.ModeComprehensive, nil)
	c.Update(c.start()())

	if c.prompt != nil {
		t.Fatal("cooldown should block the quiz")
	}
	if len(c.entries) != 1 || c.entries[0].kind != kindError {
		t.Fatalf("entries = %v", c.entries)
	}
	if !strings.Contains(c.entries[0].text, "23h00m") {
		t.Errorf("cooldown text = %q", c.entries[0].text)
	}
}

func TestChat_PicksUpRunningQuiz(t *testing.T) {
	f := newFixture(t)
	first := started(t, f)
	press(t, first, key('2'))

	c := New(f.svc, quiz.ModeComprehensive, nil)
	c.Update(c.start()())

	if c.prompt == nil || c.prompt.Number != 2 {
		t.Fatalf("expected to resume at question 2, got %+v", c.prompt)
	}
	if c.entries[0].kind != notify.KindNotice {
		t.Errorf("expected a notice first, got %v", c.entries[0])
	}
}

func TestChat_EscReturnsHome(t *testing.T) {
	f := newFixture(t)
	c := New(f.svc, quiz.ModeComprehensive, nil)
	_, cmd := c.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected a command on Esc")
	}
	if _, ok := cmd().(router.PopToRootMsg); !ok {
		t.Errorf("expected PopToRootMsg, got %T", cmd())
	}
}

func TestChat_View(t *testing.T) {
	f := newFixture(t)
	c := started(t, f)
	view := c.View(100, 30)
	for _, want := range []string{"Question 1/2", "Choose the second option", "1)  first", "01:20"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
