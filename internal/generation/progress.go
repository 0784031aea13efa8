package generation

import "sync"

// EventType enumerates progress event kinds.
type EventType string

const (
	EventRowProgress   EventType = "row-progress"
	EventTableComplete EventType = "table-complete"
	EventAllComplete   EventType = "all-complete"
	EventError         EventType = "error"
)

// Event is a progress notification. Only the fields relevant to Type are set.
type Event struct {
	Type         EventType `json:"type"`
	TableName    string    `json:"tableName,omitempty"`
	Progress     int       `json:"progress,omitempty"` // percent, row-progress only
	SuccessCount int       `json:"successCount,omitempty"`
	FailCount    int       `json:"failCount,omitempty"`
	Message      string    `json:"message,omitempty"`
}

// Observer receives events from concurrently running jobs. Notify must not
// block.
type Observer interface {
	Notify(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) Notify(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) Notify(Event) {}

// ChannelObserver buffers events on a channel and drops them when the
// buffer is full, so a slow reader never stalls generation.
type ChannelObserver struct {
	mu      sync.Mutex
	ch      chan Event
	closed  bool
	dropped int
}

func NewChannelObserver(buffer int) *ChannelObserver {
	return &ChannelObserver{ch: make(chan Event, buffer)}
}

func (o *ChannelObserver) Events() <-chan Event {
	return o.ch
}

func (o *ChannelObserver) Notify(e Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	select {
	case o.ch <- e:
	default:
		o.dropped++
	}
}

// Dropped reports how many events did not fit in the buffer.
func (o *ChannelObserver) Dropped() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dropped
}

// Close ends the event channel. Later events are discarded.
func (o *ChannelObserver) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.closed {
		o.closed = true
		close(o.ch)
	}
}
