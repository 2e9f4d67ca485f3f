// Package router keeps the stack of screens the terminal client shows.
// Screens navigate by returning one of the *Msg commands below.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lingoquiz/internal/screen"
)

type (
	// PushScreenMsg opens Screen on top of the current one.
	PushScreenMsg struct{ Screen screen.Screen }

	// ReplaceScreenMsg swaps the current screen, e.g. chat for summary.
	ReplaceScreenMsg struct{ Screen screen.Screen }

	PopScreenMsg struct{}

	// PopToRootMsg returns to the root screen and re-initializes it so it
	// can refresh cooldowns and scores.
	PopToRootMsg struct{}
)

// Router is a screen stack whose root is never removed.
type Router struct {
	stack []screen.Screen
}

func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

func (r *Router) top() int { return len(r.stack) - 1 }

func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

func (r *Router) Pop() {
	if r.top() > 0 {
		r.stack = r.stack[:r.top()]
	}
}

func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[r.top()]
}

func (r *Router) Depth() int { return len(r.stack) }

// Update applies navigation messages; any other message goes to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case ReplaceScreenMsg:
		r.stack[r.top()] = msg.Screen
		return msg.Screen.Init()
	case PopScreenMsg:
		r.Pop()
		return nil
	case PopToRootMsg:
		r.stack = r.stack[:1]
		return r.stack[0].Init()
	}

	if len(r.stack) == 0 {
		return nil
	}
	next, cmd := r.stack[r.top()].Update(msg)
	r.stack[r.top()] = next
	return cmd
}

func (r *Router) View(width, height int) string {
	if s := r.Active(); s != nil {
		return s.View(width, height)
	}
	return ""
}
