package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abhisek/lingoquiz/internal/quiz"
)

// memSessions is an in-memory SessionStore that round-trips through the
// session codec, so tests see exactly what a real store would return.
type memSessions struct {
	mu      sync.Mutex
	data    map[string][]byte
	puts       int
	failPut    error
	failDelete error
}

func newMemSessions() *memSessions {
	return &memSessions{data: make(map[string][]byte)}
}

func (m *memSessions) Get(_ context.Context, identity string) (*quiz.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[identity]
	if !ok {
		return nil, nil
	}
	return quiz.DecodeSession(b)
}

func (m *memSessions) Put(_ context.Context, s *quiz.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut != nil {
		return m.failPut
	}
	b, err := quiz.EncodeSession(s)
	if err != nil {
		return err
	}
	m.data[s.Owner] = b
	m.puts++
	return nil
}

func (m *memSessions) Delete(_ context.Context, identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete != nil {
		return m.failDelete
	}
	delete(m.data, identity)
	return nil
}

func (m *memSessions) Identities(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memSessions) setFailPut(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPut = err
}

func (m *memSessions) setFailDelete(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failDelete = err
}

// memResults is an in-memory ResultStore.
type memResults struct {
	mu      sync.Mutex
	results []quiz.HistoricalResult
}

func (m *memResults) AppendResult(_ context.Context, r quiz.HistoricalResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
	return nil
}

func (m *memResults) LastResultTime(_ context.Context, identity string, mode quiz.Mode) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var last time.Time
	found := false
	for _, r := range m.results {
		if r.Owner == identity && r.Mode == mode && (!found || r.FinishedAt.After(last)) {
			last, found = r.FinishedAt, true
		}
	}
	return last, found, nil
}

func (m *memResults) all() []quiz.HistoricalResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]quiz.HistoricalResult(nil), m.results...)
}

// fakeSupplier serves a fixed question list, truncated to maxCount.
type fakeSupplier struct {
	comprehensive []quiz.Question
	bySkill       map[quiz.Skill][]quiz.Question
}

func (f *fakeSupplier) FetchComprehensive(_ context.Context, maxCount int) ([]quiz.Question, error) {
	return clip(f.comprehensive, maxCount), nil
}

func (f *fakeSupplier) FetchBySkillAndLevel(_ context.Context, skill quiz.Skill, _ quiz.Level, maxCount int) ([]quiz.Question, error) {
	return clip(f.bySkill[skill], maxCount), nil
}

func clip(qs []quiz.Question, n int) []quiz.Question {
	out := make([]quiz.Question, 0, len(qs))
	out = append(out, qs...)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

type fakePremium map[string]bool

func (f fakePremium) IsPremium(_ context.Context, identity string, _ time.Time) (bool, error) {
	return f[identity], nil
}

// recordingNotifier records every delivery.
type recordingNotifier struct {
	mu             sync.Mutex
	questions      []Prompt
	summaries      []string
	failQuestion   error
	failSummary    error
	handleSequence int
}

func (r *recordingNotifier) DeliverQuestion(_ context.Context, _ string, p Prompt) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failQuestion != nil {
		return "", r.failQuestion
	}
	r.questions = append(r.questions, p)
	r.handleSequence++
	return fmt.Sprintf("msg-%d", r.handleSequence), nil
}

func (r *recordingNotifier) DeliverSummary(_ context.Context, _ string, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSummary != nil {
		return r.failSummary
	}
	r.summaries = append(r.summaries, text)
	return nil
}

func (r *recordingNotifier) questionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.questions)
}

func (r *recordingNotifier) lastPrompt() Prompt {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.questions[len(r.questions)-1]
}

func (r *recordingNotifier) summaryCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.summaries)
}

var errBoom = errors.New("boom")

// makeQuestions builds n questions cycling through the skills. The correct
// option is always index 1.
func makeQuestions(prefix string, n int) []quiz.Question {
	skills := quiz.AllSkills()
	qs := make([]quiz.Question, n)
	for i := range qs {
		qs[i] = quiz.Question{
			ID:           fmt.Sprintf("%s%d", prefix, i),
			Text:         fmt.Sprintf("Question %d", i),
			Options:      []string{"wrong", "right", "also wrong"},
			CorrectIndex: 1,
			Skill:        skills[i%len(skills)],
			Level:        quiz.LevelEasy,
		}
	}
	return qs
}

type harness struct {
	engine   *Engine
	sessions *memSessions
	results  *memResults
	supplier *fakeSupplier
	notifier *recordingNotifier
	premium  fakePremium
}

func newHarness(policy Policy) *harness {
	h := &harness{
		sessions: newMemSessions(),
		results:  &memResults{},
		supplier: &fakeSupplier{
			comprehensive: makeQuestions("c", 5),
			bySkill: map[quiz.Skill][]quiz.Question{
				quiz.SkillGrammar: makeQuestions("g", 3),
			},
		},
		notifier: &recordingNotifier{},
		premium:  fakePremium{},
	}
	var ids atomic.Int64
	e, err := New(Deps{
		Questions: h.supplier,
		Sessions:  h.sessions,
		Results:   h.results,
		Notifier:  h.notifier,
		Premium:   h.premium,
		Logger:    log.New(io.Discard, "", 0),
		NewID: func() string {
			return fmt.Sprintf("session-%d", ids.Add(1))
		},
	}, policy)
	if err != nil {
		panic(err)
	}
	h.engine = e
	return h
}
