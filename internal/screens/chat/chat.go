// Package chat is the quiz conversation. The engine delivers questions
// into the shared transcript and this screen renders them as chat bubbles
// and sends the player's choices back as answers.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lingoquiz/internal/engine"
	"github.com/abhisek/lingoquiz/internal/notify"
	"github.com/abhisek/lingoquiz/internal/quiz"
	"github.com/abhisek/lingoquiz/internal/router"
	"github.com/abhisek/lingoquiz/internal/screen"
	"github.com/abhisek/lingoquiz/internal/screens/summary"
	"github.com/abhisek/lingoquiz/internal/ui/components"
	"github.com/abhisek/lingoquiz/internal/ui/layout"
)

const (
	tickInterval   = time.Second
	requestTimeout = 10 * time.Second
)

const (
	kindAnswer = "answer"
	kindError  = "error"
)

type startedMsg struct {
	started *engine.Started
	err     error
}

type answeredMsg struct {
	res *engine.AnswerResult
	err error

	// resumed is set when the answer came from Resume rather than a
	// submitted choice.
	resumed bool
}

type tickMsg time.Time

// entry is one line of the conversation.
type entry struct {
	fromUser bool
	kind     string
	text     string
}

// ChatScreen runs one quiz session as a conversation.
type ChatScreen struct {
	svc  *screen.Services
	mode quiz.Mode
	sel  *engine.Selection

	entries []entry
	seen    int

	prompt   *engine.Prompt
	deadline time.Time
	window   time.Duration
	choice   components.MultiChoice

	busy      bool
	retryable bool
	summary   *engine.Summary
}

var (
	_ screen.Screen          = (*ChatScreen)(nil)
	_ screen.KeyHintProvider = (*ChatScreen)(nil)
	_ screen.EscapeHandler   = (*ChatScreen)(nil)
)

// New creates a ChatScreen that starts a quiz of mode. sel is required
// for skill quizzes.
func New(svc *screen.Services, mode quiz.Mode, sel *engine.Selection) *ChatScreen {
	return &ChatScreen{
		svc:  svc,
		mode: mode,
		sel:  sel,
		seen: len(svc.Transcript.Messages(svc.Identity)),
	}
}

func (c *ChatScreen) Title() string {
	if c.prompt != nil {
		return c.prompt.LevelLabel
	}
	if c.mode == quiz.ModeSkill && c.sel != nil {
		return quiz.LevelLabel(c.mode, c.sel.Skill, c.sel.Level)
	}
	return quiz.ComprehensiveLabel
}

func (c *ChatScreen) KeyHints() []layout.KeyHint {
	switch {
	case c.summary != nil:
		return []layout.KeyHint{{Key: "Enter", Description: "See results"}}
	case c.retryable:
		return []layout.KeyHint{
			{Key: "r", Description: "Retry"},
			{Key: "Esc", Description: "Leave"},
		}
	}
	return []layout.KeyHint{
		{Key: "1-9", Description: "Answer"},
		{Key: "↑↓ Enter", Description: "Choose"},
		{Key: "Esc", Description: "Leave (timer keeps running)"},
	}
}

// HandlesEscape is always true. Leaving returns to the home screen so it
// can show the quiz that is still running.
func (c *ChatScreen) HandlesEscape() bool {
	return true
}

func (c *ChatScreen) Init() tea.Cmd {
	c.busy = true
	return tea.Batch(c.start(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// start begins a session. A session that is already running is picked
// up where it left off.
func (c *ChatScreen) start() tea.Cmd {
	svc, mode, sel := c.svc, c.mode, c.sel
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		started, err := svc.Engine.StartSession(ctx, svc.Identity, mode, sel, svc.Clock())
		if errors.Is(err, engine.ErrSessionAlreadyActive) {
			res, err := svc.Engine.Resume(ctx, svc.Identity, svc.Clock())
			return answeredMsg{res: res, err: err, resumed: true}
		}
		return startedMsg{started: started, err: err}
	}
}

func (c *ChatScreen) resume() tea.Cmd {
	svc := c.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := svc.Engine.Resume(ctx, svc.Identity, svc.Clock())
		return answeredMsg{res: res, err: err, resumed: true}
	}
}

func (c *ChatScreen) submit(questionID string, chosen int) tea.Cmd {
	svc := c.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := svc.Engine.SubmitAnswer(ctx, svc.Identity, questionID, chosen, svc.Clock())
		return answeredMsg{res: res, err: err}
	}
}

func (c *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		c.busy = false
		if msg.err != nil {
			c.addError(startError(msg.err))
			return c, nil
		}
		c.sync()
		return c, nil

	case answeredMsg:
		return c, c.handleAnswer(msg)

	case tickMsg:
		if c.summary != nil {
			return c, nil
		}
		if c.prompt != nil && !c.busy && c.svc.Clock().After(c.deadline) {
			// Time is up: let the engine finalize the session.
			c.busy = true
			return c, tea.Batch(c.resume(), tick())
		}
		return c, tick()

	case tea.KeyPressMsg:
		return c, c.handleKey(msg)
	}
	return c, nil
}

func (c *ChatScreen) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if msg.String() == "esc" {
		return func() tea.Msg { return router.PopToRootMsg{} }
	}
	if c.summary != nil {
		if msg.String() == "enter" {
			sum := c.summary
			return func() tea.Msg {
				return router.ReplaceScreenMsg{Screen: summary.New(sum)}
			}
		}
		return nil
	}
	if c.busy {
		return nil
	}
	if c.retryable && msg.String() == "r" {
		c.retryable = false
		c.busy = true
		return c.resume()
	}
	if c.prompt == nil || c.choice.Submitted {
		return nil
	}

	c.choice, _ = c.choice.Update(msg)
	if !c.choice.Submitted {
		return nil
	}
	chosen := c.choice.ChosenIndex
	c.entries = append(c.entries, entry{
		fromUser: true,
		kind:     kindAnswer,
		text:     fmt.Sprintf("%d) %s", chosen+1, c.choice.Options[chosen]),
	})
	c.busy = true
	return c.submit(c.prompt.Question.ID, chosen)
}

func (c *ChatScreen) handleAnswer(msg answeredMsg) tea.Cmd {
	c.busy = false
	if msg.res == nil {
		c.addError("Something went wrong: " + msg.err.Error())
		c.retryable = true
		return nil
	}

	res := msg.res
	switch res.Outcome {
	case engine.AnswerRejected:
		if errors.Is(res.Reason, engine.ErrNoActiveSession) {
			c.addError("There is no quiz running any more.")
			c.prompt = nil
			return nil
		}
		c.addError("That answer was not accepted. Try again.")
		c.dropPendingAnswer()
		return nil

	case engine.AnswerAck:
		switch {
		case !msg.resumed:
			c.markLastAnswer(res.Correct)
		case c.prompt == nil:
			c.entries = append(c.entries, entry{kind: notify.KindNotice, text: "Picking up your quiz where you left off."})
		default:
			c.dropPendingAnswer()
		}

	case engine.AnswerSessionEnded:
		if !msg.resumed && res.Summary.Outcome == engine.OutcomeCompleted {
			c.markLastAnswer(res.Correct)
		}
		c.summary = res.Summary
		c.prompt = nil
	}

	c.sync()
	if msg.err != nil {
		c.addError("Your answer was saved but the next message did not arrive.")
		c.retryable = true
	}
	return nil
}

// sync appends transcript messages delivered since the last sync. The
// latest question becomes the one on screen.
func (c *ChatScreen) sync() {
	msgs := c.svc.Transcript.Since(c.svc.Identity, c.seen)
	c.seen += len(msgs)
	for _, m := range msgs {
		c.entries = append(c.entries, entry{kind: m.Kind, text: m.Text})
		if m.Prompt != nil && c.summary == nil {
			c.setPrompt(m.Prompt)
		}
	}
}

func (c *ChatScreen) setPrompt(p *engine.Prompt) {
	c.prompt = p
	c.deadline = c.svc.Clock().Add(p.Remaining)
	c.choice = components.NewMultiChoice(p.Question.Options)

	c.window = p.Remaining
	if mp, err := c.svc.Engine.Policy().Mode(c.mode); err == nil {
		c.window = max(mp.PerQuestion*time.Duration(p.Total), p.Remaining)
	}
}

func (c *ChatScreen) markLastAnswer(correct bool) {
	for i := len(c.entries) - 1; i >= 0; i-- {
		if c.entries[i].kind == kindAnswer {
			if correct {
				c.entries[i].text += "  ✓"
			} else {
				c.entries[i].text += "  ✗"
			}
			return
		}
	}
}

// dropPendingAnswer reopens the current question for input.
func (c *ChatScreen) dropPendingAnswer() {
	if c.prompt != nil {
		c.choice = components.NewMultiChoice(c.prompt.Question.Options)
	}
}

func (c *ChatScreen) addError(text string) {
	c.entries = append(c.entries, entry{kind: kindError, text: text})
}

// startError turns a StartSession failure into a chat line.
func startError(err error) string {
	var ce *engine.CooldownError
	switch {
	case errors.As(err, &ce):
		return fmt.Sprintf("You have already taken today's test. The next one opens in %s. Premium members can test any time.",
			notify.FormatWait(ce.Remaining))
	case errors.Is(err, engine.ErrNoQuestionsAvailable):
		return "There are no questions for this quiz yet. Try another skill or level."
	}
	return "Could not start the quiz: " + err.Error()
}
