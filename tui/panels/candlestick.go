package panels

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/pricegen/tui/styles"
)

// Candle aggregates a fixed number of consecutive ticks.
type Candle struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
	Ticks int
	Index int
}

// CandlestickPanel displays a candlestick chart of the live price.
type CandlestickPanel struct {
	label   string
	candles []Candle

	// Current candle being built
	currentCandle *Candle
	ticksPer      int
	count         int

	focused bool
	width   int
	height  int

	maxCandles int
}

// NewCandlestickPanel creates a chart that closes a candle every ticksPer prices.
func NewCandlestickPanel(ticksPer int) *CandlestickPanel {
	if ticksPer < 1 {
		ticksPer = 1
	}
	return &CandlestickPanel{
		ticksPer:   ticksPer,
		maxCandles: 50,
	}
}

// Init initializes the panel.
func (p *CandlestickPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *CandlestickPanel) Update(msg tea.Msg) (*CandlestickPanel, tea.Cmd) {
	return p, nil
}

// View renders the panel.
func (p *CandlestickPanel) View() string {
	var content strings.Builder

	chartWidth := p.width - 12
	chartHeight := p.height - 6
	if chartHeight < 5 {
		chartHeight = 5
	}

	allCandles := p.Candles()
	if len(allCandles) == 0 {
		content.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("No prices yet..."))
	} else {
		content.WriteString(p.renderChart(chartWidth, chartHeight, allCandles))
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := fmt.Sprintf("📉 Chart - %d ticks/candle", p.ticksPer)
	if p.label != "" {
		title = fmt.Sprintf("📉 Chart - %s - %d ticks/candle", p.label, p.ticksPer)
	}
	panel := lipgloss.JoinVertical(lipgloss.Left, styles.RenderTitle(title, p.focused), content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// Candles returns closed candles followed by the one being built.
func (p *CandlestickPanel) Candles() []Candle {
	out := make([]Candle, 0, len(p.candles)+1)
	out = append(out, p.candles...)
	if p.currentCandle != nil {
		out = append(out, *p.currentCandle)
	}
	return out
}

func (p *CandlestickPanel) renderChart(width, height int, candles []Candle) string {
	// Reserve space: 9 chars for price axis, 1 for separator
	chartWidth := width - 10
	if chartWidth < 10 {
		chartWidth = 10
	}

	// Each candle needs 2 chars: candle, space
	candlesToShow := chartWidth / 2
	if candlesToShow < 1 {
		candlesToShow = 1
	}
	display := candles
	if len(candles) > candlesToShow {
		display = candles[len(candles)-candlesToShow:]
	}

	minPrice, maxPrice := display[0].Low, display[0].High
	for _, c := range display {
		minPrice = min(minPrice, c.Low)
		maxPrice = max(maxPrice, c.High)
	}

	// Pad the range by 10%, with a floor for flat series.
	padding := (maxPrice - minPrice) * 0.1
	if padding == 0 {
		padding = max(0.01, maxPrice*0.001)
	}
	minPrice -= padding
	maxPrice += padding

	rows := height - 3
	if rows < 5 {
		rows = 5
	}

	var result strings.Builder
	for row := 0; row < rows; row++ {
		price := yToPrice(row, minPrice, maxPrice, rows)
		result.WriteString(styles.ChartAxisStyle.Render(fmt.Sprintf("%8s │", formatPrice(price))))

		for _, candle := range display {
			style := styles.CandleUpStyle
			if candle.Close < candle.Open {
				style = styles.CandleDownStyle
			}
			result.WriteString(style.Render(string(candleChar(candle, row, minPrice, maxPrice, rows))))
			result.WriteString(" ")
		}
		result.WriteString("\n")
	}

	result.WriteString(styles.ChartAxisStyle.Render("─────────┴"))
	for range display {
		result.WriteString(styles.ChartAxisStyle.Render("──"))
	}
	result.WriteString("\n")

	// Candle numbers, two digits every fifth column.
	result.WriteString(styles.ChartAxisStyle.Render("          "))
	for i, candle := range display {
		if i%5 == 0 {
			result.WriteString(styles.ChartLabelStyle.Render(fmt.Sprintf("%02d", candle.Index%100)))
		} else {
			result.WriteString("  ")
		}
	}

	return result.String()
}

// candleChar returns the glyph for candle at row.
func candleChar(candle Candle, row int, minPrice, maxPrice float64, height int) rune {
	rowPrice := yToPrice(row, minPrice, maxPrice, height)

	bodyTop := max(candle.Open, candle.Close)
	bodyBottom := min(candle.Open, candle.Close)

	// Half a row of tolerance maps continuous prices onto discrete rows.
	tolerance := (maxPrice - minPrice) / float64(height*2)

	switch {
	case rowPrice <= bodyTop+tolerance && rowPrice >= bodyBottom-tolerance:
		return '┃'
	case rowPrice <= candle.High+tolerance && rowPrice > bodyTop:
		return '│'
	case rowPrice >= candle.Low-tolerance && rowPrice < bodyBottom:
		return '│'
	}
	return ' '
}

func yToPrice(y int, minPrice, maxPrice float64, height int) float64 {
	if height <= 1 {
		return minPrice
	}
	ratio := float64(y) / float64(height-1)
	return maxPrice - ratio*(maxPrice-minPrice)
}

// SetFocus sets the focus state of the panel.
func (p *CandlestickPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *CandlestickPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetLabel sets the chart caption.
func (p *CandlestickPanel) SetLabel(label string) {
	p.label = label
}

// Reset clears all candles.
func (p *CandlestickPanel) Reset() {
	p.candles = nil
	p.currentCandle = nil
	p.count = 0
}

// AddPrice folds one tick into the current candle.
func (p *CandlestickPanel) AddPrice(price float64) {
	if p.currentCandle == nil || p.currentCandle.Ticks >= p.ticksPer {
		if p.currentCandle != nil {
			p.candles = append(p.candles, *p.currentCandle)
			if len(p.candles) > p.maxCandles {
				p.candles = p.candles[len(p.candles)-p.maxCandles:]
			}
		}
		p.currentCandle = &Candle{
			Open:  price,
			High:  price,
			Low:   price,
			Close: price,
			Ticks: 1,
			Index: p.count,
		}
		p.count++
		return
	}

	c := p.currentCandle
	c.High = max(c.High, price)
	c.Low = min(c.Low, price)
	c.Close = price
	c.Ticks++
}
