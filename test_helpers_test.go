package metrics

import (
	"fmt"
	"sync"
)

// recordingLogger keeps warnings and errors so tests can assert on them.
type recordingLogger struct {
	mu     sync.Mutex
	warns  []string
	errors []string
}

func (l *recordingLogger) Debugf(string, ...interface{}) {}
func (l *recordingLogger) Infof(string, ...interface{})  {}

func (l *recordingLogger) Warnf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warns...)
}

func (l *recordingLogger) Errors() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.errors...)
}

// event is one call to a QueueFunc.
type event struct {
	kind    string
	payload interface{}
}

// recordingQueue is a concurrency-safe QueueFunc sink.
type recordingQueue struct {
	mu     sync.Mutex
	events []event
}

func (q *recordingQueue) Enqueue(kind string, payload interface{}) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, event{kind: kind, payload: payload})
}

func (q *recordingQueue) Events() []event {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]event(nil), q.events...)
}

func (q *recordingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// collectAll drains a set's sample sequence into a slice.
func collectAll(s MetricSet) []Sample {
	var out []Sample
	for sample := range s.Collect() {
		out = append(out, sample)
	}
	return out
}

func ptr(v float64) *float64 { return &v }

// newSetFactory returns a factory building plain Sets and remembering them.
func newSetFactory(built *[]*Set) Factory {
	return func(r *Registry) MetricSet {
		s := NewSet(r)
		if built != nil {
			*built = append(*built, s)
		}
		return s
	}
}
