package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/obsview/internal/control"
	"github.com/san-kum/obsview/internal/dynamo"
)

type styles struct {
	title   lipgloss.Style
	pane    lipgloss.Style
	label   lipgloss.Style
	status  lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
	done    lipgloss.Style
	hint    lipgloss.Style
	err     lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border),
		label:   lipgloss.NewStyle().Foreground(t.Muted),
		status:  lipgloss.NewStyle().Foreground(t.Text),
		running: lipgloss.NewStyle().Bold(true).Foreground(t.Running),
		paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Paused),
		done:    lipgloss.NewStyle().Bold(true).Foreground(t.Done),
		hint:    lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		err:     lipgloss.NewStyle().Bold(true).Foreground(t.Done),
	}
}

// badge is the short run-state marker shown before the status line.
func (s styles) badge(snap control.Snapshot, done dynamo.Done) string {
	switch {
	case done.Terminal:
		return s.done.Render("DONE")
	case snap.StepHold:
		return s.paused.Render("STEP>>")
	case snap.Paused:
		return s.paused.Render("PAUSED")
	default:
		return s.running.Render("RUNNING")
	}
}

// flags renders the overlay toggles, lit when on.
func (s styles) flags(snap control.Snapshot) string {
	mark := func(name string, on bool) string {
		if on {
			return s.running.Render(name)
		}
		return s.label.Render(name)
	}
	return mark("trails", snap.Trails) + " " + mark("radials", snap.Radials)
}
