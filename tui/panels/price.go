package panels

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/pricegen/tui/styles"
)

// Quote is the generator state shown by the price panel.
type Quote struct {
	SessionID  string
	Status     string
	Algorithm  string
	Volatility float64
	Drift      float64
	Start      float64
	Current    float64
	Previous   float64
	HasPrev    bool
	Ticks      int
	Errors     int
	Low        float64
	High       float64
}

// PricePanel displays the current quote of a live generator.
type PricePanel struct {
	quote   Quote
	focused bool
	width   int
	height  int
}

// NewPricePanel creates a new price panel.
func NewPricePanel() *PricePanel {
	return &PricePanel{}
}

// Init initializes the panel.
func (p *PricePanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *PricePanel) Update(msg tea.Msg) (*PricePanel, tea.Cmd) {
	return p, nil
}

// View renders the panel.
func (p *PricePanel) View() string {
	q := p.quote
	var content strings.Builder

	row := func(label, value string) {
		content.WriteString(styles.LabelStyle.Render(fmt.Sprintf("%-11s", label)))
		content.WriteString(value)
		content.WriteString("\n")
	}

	row("Status", styles.StatusStyle(q.Status).Render(strings.ToUpper(q.Status)))
	row("Price", styles.PriceStyle.Bold(true).Render(formatPrice(q.Current)))

	change := "-"
	if q.HasPrev {
		diff := q.Current - q.Previous
		style := styles.PriceUpStyle
		if diff < 0 {
			style = styles.PriceDownStyle
		}
		change = style.Render(fmt.Sprintf("%+.2f", diff))
	}
	row("Change", change)

	total := "-"
	if q.Start != 0 {
		pct := (q.Current - q.Start) / q.Start * 100
		style := styles.PriceUpStyle
		if pct < 0 {
			style = styles.PriceDownStyle
		}
		total = style.Render(fmt.Sprintf("%+.2f%%", pct))
	}
	row("Session", total)

	if q.Ticks > 0 {
		row("Range", styles.SizeStyle.Render(fmt.Sprintf("%s - %s", formatPrice(q.Low), formatPrice(q.High))))
	}
	row("Ticks", styles.SizeStyle.Render(fmt.Sprintf("%d", q.Ticks)))
	row("Errors", styles.SizeStyle.Render(fmt.Sprintf("%d", q.Errors)))
	row("Model", styles.RowStyle.Render(q.Algorithm))
	row("Vol/Drift", styles.RowStyle.Render(fmt.Sprintf("%.4g / %.4g", q.Volatility, q.Drift)))

	id := q.SessionID
	if len(id) > 8 {
		id = id[:8]
	}
	content.WriteString(styles.TimeStyle.Render("session " + id))

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("📈 Price", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *PricePanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *PricePanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetQuote replaces the displayed quote.
func (p *PricePanel) SetQuote(q Quote) {
	p.quote = q
}

// Quote returns the displayed quote.
func (p *PricePanel) Quote() Quote {
	return p.quote
}

func formatPrice(price float64) string {
	return fmt.Sprintf("%.2f", price)
}
