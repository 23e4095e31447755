package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/pricegen"
	"github.com/zappabad/pricegen/internal/stream/streamtest"
)

func newTestModel(t *testing.T, opts ...pricegen.Option) (*Model, *streamtest.Clock) {
	t.Helper()
	clock := streamtest.NewClock()
	feed := NewFeed(64)

	opts = append(opts, pricegen.WithInterval(time.Second), pricegen.WithScheduler(clock), pricegen.WithSeed(1))
	live, err := pricegen.NewLive(100, append(opts, feed.Options()...)...)
	require.NoError(t, err)

	m := NewModel(live, feed, "TEST", 2)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, clock
}

func press(m *Model, k string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
}

// drain feeds every pending event through Update.
func drain(m *Model) {
	for {
		select {
		case ev := <-m.feed.Events():
			m.Update(feedMsg(ev))
		default:
			return
		}
	}
}

func TestKeysDriveGenerator(t *testing.T) {
	m, clock := newTestModel(t)

	press(m, "s")
	assert.Equal(t, pricegen.Running, m.live.Status())

	clock.Advance(3 * time.Second)
	drain(m)
	assert.Equal(t, 3, m.ticks)
	assert.Len(t, m.chartPanel.Candles(), 2)

	press(m, "p")
	assert.Equal(t, pricegen.Paused, m.live.Status())
	assert.Equal(t, "paused", m.pricePanel.Quote().Status)

	press(m, "c")
	assert.Equal(t, pricegen.Running, m.live.Status())

	press(m, "x")
	assert.Equal(t, pricegen.Stopped, m.live.Status())
	drain(m)

	lines := m.eventsPanel.Lines()
	require.NotEmpty(t, lines)
	assert.Equal(t, "session complete", lines[len(lines)-1].Message)
}

func TestStartAfterStopReportsError(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, "x")
	press(m, "s")
	assert.Contains(t, m.statusMsg, pricegen.ErrStopped.Error())
}

func TestQuitStopsGenerator(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "s")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, pricegen.Stopped, m.live.Status())

	select {
	case <-m.feed.Closed():
	default:
		t.Fatal("feed not closed")
	}
}

func TestTickErrorsAreLogged(t *testing.T) {
	m, clock := newTestModel(t, pricegen.WithVolatility(-1))

	press(m, "s")
	clock.Advance(2 * time.Second)
	drain(m)

	assert.Equal(t, 2, m.errors)
	assert.Equal(t, 0, m.ticks)
	assert.Equal(t, "running", m.pricePanel.Quote().Status)

	var alerts int
	for _, l := range m.eventsPanel.Lines() {
		if l.Alert {
			alerts++
		}
	}
	assert.Equal(t, 2, alerts)
}

func TestFocusCycles(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, FocusChart, m.focusedPanel)

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, FocusEvents, m.focusedPanel)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, FocusPrice, m.focusedPanel)
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, FocusEvents, m.focusedPanel)
}

func TestViewRenders(t *testing.T) {
	m, clock := newTestModel(t)
	press(m, "s")
	clock.Advance(5 * time.Second)
	drain(m)

	out := m.View()
	assert.Contains(t, out, "Price")
	assert.Contains(t, out, "Chart - TEST")
	assert.Contains(t, out, "RUNNING")
}

func TestFeedDropsWhenFull(t *testing.T) {
	f := NewFeed(1)
	opts := f.Options()
	require.Len(t, opts, 5)

	var o pricegen.Options
	for _, opt := range opts {
		opt(&o)
	}
	o.OnPrice(1, 0)
	o.OnPrice(2, 1)
	o.OnError(errors.New("boom"))

	assert.Equal(t, int64(2), f.Dropped())
	ev := <-f.Events()
	assert.Equal(t, EventPrice, ev.Kind)
	assert.Equal(t, 1.0, ev.Price)
	assert.NotZero(t, ev.Time)

	f.Close()
	f.Close()
	o.OnStop()
	assert.Equal(t, int64(2), f.Dropped(), "closed feed ignores events")
}
