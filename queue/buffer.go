// Package queue holds collected events in memory until a transport drains them.
package queue

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/eapache/queue"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultCapacity is used when NewBuffer is given a non-positive capacity.
const DefaultCapacity = 1000

// Event is one queued payload together with its kind, e.g. "metricset".
type Event struct {
	Kind    string
	Payload interface{}
}

// Buffer is a bounded FIFO of events. When full, the oldest event is
// dropped to make room. Buffer is safe for concurrent use and its Enqueue
// method can be passed as a metrics.QueueFunc.
type Buffer struct {
	mu       sync.Mutex
	events   *queue.Queue
	capacity int
	dropped  uint64
	skipped  uint64
}

// NewBuffer returns a Buffer holding at most capacity events.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{events: queue.New(), capacity: capacity}
}

// Enqueue appends an event.
func (b *Buffer) Enqueue(kind string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.events.Length() >= b.capacity {
		b.events.Remove()
		b.dropped++
	}
	b.events.Add(Event{Kind: kind, Payload: payload})
}

// Drain removes and returns every queued event in arrival order.
func (b *Buffer) Drain() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, 0, b.events.Length())
	for b.events.Length() > 0 {
		out = append(out, b.events.Remove().(Event))
	}
	return out
}

// Len returns the number of queued events.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.events.Length()
}

// Dropped returns how many events were discarded because the buffer was full.
func (b *Buffer) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Skipped returns how many drained events could not be encoded by Flush.
func (b *Buffer) Skipped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.skipped
}

// Flush drains the buffer into w as NDJSON. Events that cannot be encoded
// are skipped and counted, see Skipped.
func (b *Buffer) Flush(w io.Writer) error {
	skipped, err := WriteNDJSON(w, b.Drain())
	if skipped > 0 {
		b.mu.Lock()
		b.skipped += uint64(skipped)
		b.mu.Unlock()
	}
	return err
}

// WriteNDJSON writes events one per line as {"<kind>": <payload>}.
// An event that cannot be encoded, e.g. one holding NaN, is logged and
// skipped; the number of skipped events is returned. Only a failing writer
// aborts the batch.
func WriteNDJSON(w io.Writer, events []Event) (int, error) {
	skipped := 0
	for _, e := range events {
		line, err := json.Marshal(map[string]interface{}{e.Kind: e.Payload})
		if err != nil {
			skipped++
			log.WithError(err).Warnf("skipping %s event that cannot be encoded", e.Kind)
			continue
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return skipped, errors.Wrapf(err, "writing %s event", e.Kind)
		}
	}
	return skipped, nil
}
