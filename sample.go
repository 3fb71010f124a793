package metrics

// EventKindMetricSet is the event kind samples are queued under.
const EventKindMetricSet = "metricset"

// QueueFunc receives collected samples. It is called from the collection
// goroutine and must not block for long.
type QueueFunc func(kind string, payload interface{})

// Sample is one timestamped group of metric values sharing a label set.
type Sample struct {
	Samples   map[string]SampleValue `json:"samples"`
	Timestamp int64                  `json:"timestamp"` // microseconds since the Unix epoch
	Tags      map[string]string      `json:"tags,omitempty"`
}

// SampleValue wraps a single metric value. A nil Value encodes as null.
type SampleValue struct {
	Value *float64 `json:"value"`
}

func valueOf(v float64, ok bool) SampleValue {
	if !ok {
		return SampleValue{}
	}
	return SampleValue{Value: &v}
}
