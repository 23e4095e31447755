package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/pricegen"
	"github.com/zappabad/pricegen/tui/panels"
	"github.com/zappabad/pricegen/tui/styles"
)

// PanelFocus represents which panel is currently focused.
type PanelFocus int

const (
	FocusPrice  PanelFocus = 0
	FocusChart  PanelFocus = 1
	FocusEvents PanelFocus = 2

	panelCount = 3
)

// Model is the live viewer. It drives one generator and renders what the
// generator reports through a Feed.
type Model struct {
	live  *pricegen.Live
	feed  *Feed
	start float64

	// Session statistics
	ticks  int
	errors int
	low    float64
	high   float64

	// Panels
	pricePanel  *panels.PricePanel
	chartPanel  *panels.CandlestickPanel
	eventsPanel *panels.EventsPanel

	keys keyMap
	help help.Model

	focusedPanel PanelFocus

	width  int
	height int

	statusMsg string
	ready     bool
}

// NewModel creates a viewer for live. feed must be the Feed whose Options
// were passed to pricegen.NewLive for live.
func NewModel(live *pricegen.Live, feed *Feed, label string, ticksPerCandle int) *Model {
	chart := panels.NewCandlestickPanel(ticksPerCandle)
	chart.SetLabel(label)

	m := &Model{
		live:         live,
		feed:         feed,
		start:        live.CurrentPrice(),
		pricePanel:   panels.NewPricePanel(),
		chartPanel:   chart,
		eventsPanel:  panels.NewEventsPanel(),
		keys:         defaultKeyMap(),
		help:         help.New(),
		focusedPanel: FocusChart,
	}
	m.low, m.high = m.start, m.start
	m.help.Styles.ShortKey = styles.StatusBarKeyStyle
	m.help.Styles.ShortDesc = styles.StatusBarDescStyle
	m.refreshQuote()
	return m
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.pricePanel.Init(),
		m.chartPanel.Init(),
		m.eventsPanel.Init(),
		m.listenFeed(),
	)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.live.Stop()
			m.feed.Close()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Start):
			m.report(m.live.Start())

		case key.Matches(msg, m.keys.Pause):
			m.live.Pause()
			m.eventsPanel.Add(panels.LogLine{Time: now(), Message: "paused"})

		case key.Matches(msg, m.keys.Continue):
			if err := m.live.Continue(); err == nil {
				m.eventsPanel.Add(panels.LogLine{Time: now(), Message: "continued"})
			} else {
				m.report(err)
			}

		case key.Matches(msg, m.keys.Stop):
			m.live.Stop()

		case msg.String() == "tab":
			m.focusedPanel = (m.focusedPanel + 1) % panelCount

		case msg.String() == "shift+tab":
			m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
		}
		m.refreshQuote()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case feedMsg:
		m.handleEvent(Event(msg))
		m.refreshQuote()
		cmds = append(cmds, m.listenFeed())
	}

	m.updateFocusedPanel(msg, &cmds)

	return m, tea.Batch(cmds...)
}

func (m *Model) updateFocusedPanel(msg tea.Msg, cmds *[]tea.Cmd) {
	var cmd tea.Cmd

	switch m.focusedPanel {
	case FocusPrice:
		m.pricePanel, cmd = m.pricePanel.Update(msg)
	case FocusChart:
		m.chartPanel, cmd = m.chartPanel.Update(msg)
	case FocusEvents:
		m.eventsPanel, cmd = m.eventsPanel.Update(msg)
	}

	if cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

// View renders the UI.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	m.pricePanel.SetFocus(m.focusedPanel == FocusPrice)
	m.chartPanel.SetFocus(m.focusedPanel == FocusChart)
	m.eventsPanel.SetFocus(m.focusedPanel == FocusEvents)

	// Layout:
	// ┌──────────┬─────────────────────────┐
	// │  Price   │          Chart          │
	// ├──────────┴─────────────────────────┤
	// │               Events               │
	// └────────────────────────────────────┘
	leftWidth := m.width / 3
	rightWidth := m.width - leftWidth

	topHeight := (m.height - 1) * 2 / 3
	bottomHeight := m.height - topHeight - 1

	m.pricePanel.SetSize(leftWidth, topHeight)
	m.chartPanel.SetSize(rightWidth, topHeight)
	topRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.pricePanel.View(),
		m.chartPanel.View(),
	)

	m.eventsPanel.SetSize(m.width, bottomHeight)

	return lipgloss.JoinVertical(lipgloss.Left, topRow, m.eventsPanel.View(), m.renderStatusBar())
}

func (m *Model) renderStatusBar() string {
	status := ""
	if m.statusMsg != "" {
		status = " │ " + m.statusMsg
	}
	if d := m.feed.Dropped(); d > 0 {
		status += fmt.Sprintf(" │ %d events dropped", d)
	}
	return styles.StatusBarStyle.Width(m.width).Render(m.help.View(m.keys) + status)
}

func (m *Model) handleEvent(ev Event) {
	switch ev.Kind {
	case EventStarted:
		m.statusMsg = ""
		m.eventsPanel.Add(panels.LogLine{Time: ev.Time, Message: fmt.Sprintf("started at %.2f", m.live.CurrentPrice())})

	case EventPrice:
		m.ticks++
		m.low = min(m.low, ev.Price)
		m.high = max(m.high, ev.Price)
		m.chartPanel.AddPrice(ev.Price)

	case EventStopped:
		m.eventsPanel.Add(panels.LogLine{Time: ev.Time, Message: fmt.Sprintf("stopped at %.2f after %d ticks", m.live.CurrentPrice(), m.ticks)})

	case EventCompleted:
		m.eventsPanel.Add(panels.LogLine{Time: ev.Time, Message: "session complete"})

	case EventError:
		m.errors++
		m.eventsPanel.Add(panels.LogLine{Time: ev.Time, Message: "tick failed: " + ev.Err.Error(), Alert: true})
	}
}

func (m *Model) report(err error) {
	if err != nil {
		m.statusMsg = "❌ " + err.Error()
	}
}

func (m *Model) refreshQuote() {
	p := m.live.Params()
	prev, ok := m.live.PreviousPrice()
	m.pricePanel.SetQuote(panels.Quote{
		SessionID:  m.live.ID(),
		Status:     m.live.Status().String(),
		Algorithm:  string(p.Algorithm),
		Volatility: p.Volatility,
		Drift:      p.Drift,
		Start:      m.start,
		Current:    m.live.CurrentPrice(),
		Previous:   prev,
		HasPrev:    ok,
		Ticks:      m.ticks,
		Errors:     m.errors,
		Low:        m.low,
		High:       m.high,
	})
}

// feedMsg carries one generator event into the update loop.
type feedMsg Event

func (m *Model) listenFeed() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-m.feed.Events():
			return feedMsg(ev)
		case <-m.feed.Closed():
			return nil
		}
	}
}
