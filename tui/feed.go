package tui

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/zappabad/pricegen"
)

// EventKind classifies generator output.
type EventKind int

const (
	EventStarted EventKind = iota
	EventPrice
	EventStopped
	EventCompleted
	EventError
)

// Event is one generator callback, timestamped when it fired.
type Event struct {
	Kind     EventKind
	Price    float64
	Previous float64
	Err      error
	Time     int64
}

// Feed turns generator callbacks into a channel the UI can poll. Callbacks
// never block: when the buffer is full the event is dropped and counted.
type Feed struct {
	events  chan Event
	dropped atomic.Int64

	closed    chan struct{}
	closeOnce sync.Once
}

// NewFeed creates a Feed with the given buffer size.
func NewFeed(buffer int) *Feed {
	if buffer <= 0 {
		buffer = 256
	}
	return &Feed{
		events: make(chan Event, buffer),
		closed: make(chan struct{}),
	}
}

// Options returns the callback options that publish into the feed.
func (f *Feed) Options() []pricegen.Option {
	return []pricegen.Option{
		pricegen.OnStart(func() { f.publish(Event{Kind: EventStarted}) }),
		pricegen.OnPrice(func(price, previous float64) {
			f.publish(Event{Kind: EventPrice, Price: price, Previous: previous})
		}),
		pricegen.OnStop(func() { f.publish(Event{Kind: EventStopped}) }),
		pricegen.OnComplete(func() { f.publish(Event{Kind: EventCompleted}) }),
		pricegen.OnError(func(err error) { f.publish(Event{Kind: EventError, Err: err}) }),
	}
}

func (f *Feed) publish(ev Event) {
	if ev.Time == 0 {
		ev.Time = now()
	}
	select {
	case <-f.closed:
		return
	default:
	}
	select {
	case f.events <- ev:
	default:
		f.dropped.Add(1)
	}
}

// Events returns the subscriber channel.
func (f *Feed) Events() <-chan Event {
	return f.events
}

// Closed is closed once Close has been called.
func (f *Feed) Closed() <-chan struct{} {
	return f.closed
}

// Dropped returns the number of events lost to a full buffer.
func (f *Feed) Dropped() int64 {
	return f.dropped.Load()
}

// Close stops accepting events. Pending events stay readable.
func (f *Feed) Close() {
	f.closeOnce.Do(func() {
		close(f.closed)
	})
}

func now() int64 {
	return time.Now().UnixNano()
}
