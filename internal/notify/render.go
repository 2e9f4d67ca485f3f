// Package notify delivers quiz messages to a conversation: a chat-gateway
// webhook for production and an in-memory transcript for local play.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/lingoquiz/internal/engine"
	"github.com/abhisek/lingoquiz/internal/quiz"
)

// QuestionText renders a prompt as a plain chat message.
func QuestionText(p engine.Prompt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s · Question %d/%d\n", p.LevelLabel, p.Number, p.Total)
	fmt.Fprintf(&b, "⏳ %s left\n\n", FormatRemaining(p.Remaining))
	b.WriteString(p.Question.Text)
	b.WriteString("\n")
	if m := p.Question.Media; m != nil {
		fmt.Fprintf(&b, "📎 %s: %s\n", mediaLabel(m.Kind), m.Path)
	}
	b.WriteString("\n")
	for i, opt := range p.Question.Options {
		fmt.Fprintf(&b, "%d) %s\n", i+1, opt)
	}
	return strings.TrimRight(b.String(), "\n")
}

func mediaLabel(k quiz.MediaKind) string {
	switch k {
	case quiz.MediaImage:
		return "Image"
	case quiz.MediaAudio:
		return "Audio"
	case quiz.MediaVideo:
		return "Video"
	}
	return "Attachment"
}

// FormatRemaining renders a countdown as "1m05s", "42s" or "0s".
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	d = d.Round(time.Second)
	m := int(d / time.Minute)
	s := int((d % time.Minute) / time.Second)
	if m == 0 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// FormatWait renders a longer wait such as a cooldown as "5h12m" or
// "12m". Waits under a minute use FormatRemaining.
func FormatWait(d time.Duration) string {
	if d < time.Minute {
		return FormatRemaining(d)
	}
	d = d.Round(time.Minute)
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}
