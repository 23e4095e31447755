package panels

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/pricegen/tui/styles"
)

// LogLine is one entry in the event log.
type LogLine struct {
	Time    int64
	Message string
	Alert   bool
}

// EventsPanel displays generator lifecycle events and tick errors.
type EventsPanel struct {
	lines         []LogLine
	selectedIndex int
	scrollOffset  int
	follow        bool
	focused       bool
	width         int
	height        int
	maxItems      int
}

// NewEventsPanel creates a new events panel.
func NewEventsPanel() *EventsPanel {
	return &EventsPanel{
		maxItems: 200,
		follow:   true,
	}
}

// Init initializes the panel.
func (p *EventsPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *EventsPanel) Update(msg tea.Msg) (*EventsPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if p.selectedIndex > 0 {
				p.selectedIndex--
				p.follow = false
				if p.selectedIndex < p.scrollOffset {
					p.scrollOffset = p.selectedIndex
				}
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if p.selectedIndex < len(p.lines)-1 {
				p.selectedIndex++
				p.follow = p.selectedIndex == len(p.lines)-1
				visible := p.visibleItems()
				if p.selectedIndex >= p.scrollOffset+visible {
					p.scrollOffset = p.selectedIndex - visible + 1
				}
			}
		}
	}
	return p, nil
}

// View renders the panel.
func (p *EventsPanel) View() string {
	var content strings.Builder

	if len(p.lines) == 0 {
		content.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("No events yet, press s to start"))
	} else {
		visible := p.visibleItems()
		start := p.scrollOffset
		end := start + visible
		if end > len(p.lines) {
			end = len(p.lines)
		}

		for i := start; i < end; i++ {
			item := p.lines[i]
			timeStr := time.Unix(0, item.Time).Format("15:04:05")

			msg := item.Message
			if limit := p.width - 15; limit > 3 && len(msg) > limit {
				msg = msg[:limit-3] + "..."
			}

			msgStyle := styles.EventNormalStyle
			if item.Alert {
				msgStyle = styles.EventAlertStyle
			}

			line := fmt.Sprintf("%s %s", styles.TimeStyle.Render(timeStr), msgStyle.Render(msg))
			if i == p.selectedIndex && p.focused {
				line = styles.SelectedRowStyle.Render(line)
			}

			content.WriteString(line)
			if i < end-1 {
				content.WriteString("\n")
			}
		}

		if len(p.lines) > visible {
			content.WriteString("\n")
			content.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).
				Render(fmt.Sprintf(" (%d/%d)", p.selectedIndex+1, len(p.lines))))
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("📰 Events", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *EventsPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *EventsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Add appends a line, keeping at most maxItems. While following, the
// selection tracks the newest line.
func (p *EventsPanel) Add(line LogLine) {
	p.lines = append(p.lines, line)
	if len(p.lines) > p.maxItems {
		drop := len(p.lines) - p.maxItems
		p.lines = p.lines[drop:]
		p.selectedIndex = max(0, p.selectedIndex-drop)
		p.scrollOffset = max(0, p.scrollOffset-drop)
	}
	if p.follow {
		p.selectedIndex = len(p.lines) - 1
		if visible := p.visibleItems(); p.selectedIndex >= p.scrollOffset+visible {
			p.scrollOffset = p.selectedIndex - visible + 1
		}
	}
}

// Lines returns the logged lines, oldest first.
func (p *EventsPanel) Lines() []LogLine {
	return p.lines
}

func (p *EventsPanel) visibleItems() int {
	return max(1, p.height-4)
}
