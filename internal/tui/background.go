package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const frameInterval = 150 * time.Millisecond

type frameMsg time.Time

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// starfield draws one row of drifting stars. The pattern scrolls one column
// per frame and every other frame the faint stars twinkle.
func starfield(width, frame int) string {
	if width <= 0 {
		return ""
	}
	var b strings.Builder
	for x := 0; x < width; x++ {
		h := (uint32(x+frame) * 2654435761) >> 27 // 0..31
		switch {
		case h == 0:
			b.WriteString("✦")
		case h == 1:
			b.WriteString("·")
		case h == 2 && frame%2 == 0:
			b.WriteString("⋆")
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
}
