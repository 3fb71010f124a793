package metrics

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"
)

func TestSet_SameLabelsInAnyOrderResolveToSameMetric(t *testing.T) {
	s := NewSet(nil)

	c1 := s.Counter("requests", Labels{"method": "GET", "status": 200, "zone": "eu"})
	c2 := s.Counter("requests", Labels{"zone": "eu", "status": "200", "method": "GET"})
	assert.Same(t, c1, c2)

	g1 := s.Gauge("inflight", Labels{"a": 1, "b": 2})
	g2 := s.Gauge("inflight", Labels{"b": 2, "a": 1})
	assert.Same(t, g1, g2)

	assert.NotSame(t, c1, s.Counter("requests", Labels{"method": "POST", "status": 200, "zone": "eu"}))
	assert.NotSame(t, c1, s.Counter("requests", nil))
}

func TestSet_CounterAndGaugeWithSameNameAreDistinct(t *testing.T) {
	s := NewSet(nil)
	c := s.Counter("x", nil)
	g := s.Gauge("x", nil)
	assert.IsType(t, &BasicCounter{}, c)
	assert.IsType(t, &BasicGauge{}, g)
}

func TestSet_IgnoredNamesGetNoopMetric(t *testing.T) {
	r := NewRegistry(
		WithLogger(NewNoopLogger()),
		WithIgnorePatterns(regexp.MustCompile(`system\.`), regexp.MustCompile(`debug$`)),
	)
	s := NewSet(r)

	cases := []struct {
		name    string
		ignored bool
	}{
		{name: "system.cpu.total", ignored: true},
		{name: "app.system.cpu", ignored: false}, // patterns match at the start only
		{name: "debug", ignored: true},
		{name: "requests.count", ignored: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := s.Counter(tc.name, nil)
			g := s.Gauge(tc.name, Labels{"k": "v"})
			if tc.ignored {
				assert.Equal(t, noop, c)
				assert.Equal(t, noop, g)
			} else {
				assert.IsType(t, &BasicCounter{}, c)
				assert.IsType(t, &BasicGauge{}, g)
			}
		})
	}
}

func TestSet_IgnoredCounterStaysAbsentUnderConcurrentWrites(t *testing.T) {
	r := NewRegistry(WithLogger(NewNoopLogger()), WithIgnorePatterns(regexp.MustCompile(`ignored`)))
	s := NewSet(r)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Counter("ignored.counter", Labels{"n": j % 3}).Inc()
				s.Gauge("ignored.gauge", nil).Set(float64(j))
			}
		}()
	}
	wg.Wait()

	_, ok := s.Counter("ignored.counter", Labels{"n": 1}).Value()
	assert.False(t, ok)
	_, ok = s.Gauge("ignored.gauge", nil).Value()
	assert.False(t, ok)
	assert.Empty(t, collectAll(s))
}

func TestSet_ConcurrentCreationReturnsOneInstance(t *testing.T) {
	s := NewSet(nil)
	const n = 100

	counters := make([]Counter, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			counters[i] = s.Counter("shared", Labels{"a": "1", "b": "2"})
			counters[i].Inc()
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		require.Same(t, counters[0], counters[i])
	}
	v, _ := counters[0].Value()
	assert.Equal(t, float64(n), v)
}

func TestSet_CollectGroupsByLabels(t *testing.T) {
	fakeClock := clocktesting.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	r := NewRegistry(WithLogger(NewNoopLogger()), WithClock(fakeClock))
	s := NewSet(r)

	labelsA := Labels{"service": "api"}
	labelsB := Labels{"pool": "db"}
	s.Counter("requests.count", labelsA).Add(3)
	s.Counter("errors.count", labelsA).Inc()
	s.Gauge("pool.size", labelsB).Set(8)

	samples := collectAll(s)
	require.Len(t, samples, 2)

	wantTimestamp := fakeClock.Now().UnixMicro()
	byTag := map[string]Sample{}
	for _, sample := range samples {
		assert.Equal(t, wantTimestamp, sample.Timestamp)
		require.Len(t, sample.Tags, 1)
		for k := range sample.Tags {
			byTag[k] = sample
		}
	}

	assert.Equal(t, map[string]string{"service": "api"}, byTag["service"].Tags)
	assert.Equal(t, map[string]SampleValue{
		"requests.count": {Value: ptr(3)},
		"errors.count":   {Value: ptr(1)},
	}, byTag["service"].Samples)

	assert.Equal(t, map[string]string{"pool": "db"}, byTag["pool"].Tags)
	assert.Equal(t, map[string]SampleValue{"pool.size": {Value: ptr(8)}}, byTag["pool"].Samples)
}

func TestSet_CollectEmpty(t *testing.T) {
	assert.Empty(t, collectAll(NewSet(nil)))
}

func TestSet_CollectWithoutLabelsHasNoTags(t *testing.T) {
	s := NewSet(nil)
	s.Counter("c", nil).Inc()
	s.Gauge("g", Labels{}).Set(2)

	samples := collectAll(s)
	require.Len(t, samples, 1)
	assert.Nil(t, samples[0].Tags)
	assert.Equal(t, map[string]SampleValue{
		"c": {Value: ptr(1)},
		"g": {Value: ptr(2)},
	}, samples[0].Samples)
}

func TestSet_CollectUnsetGaugeHasNullValue(t *testing.T) {
	s := NewSet(nil)
	s.Gauge("g", nil)

	samples := collectAll(s)
	require.Len(t, samples, 1)
	assert.Equal(t, map[string]SampleValue{"g": {}}, samples[0].Samples)
}

func TestSet_BeforeCollectRunsEveryCollection(t *testing.T) {
	var s *Set
	calls := 0
	s = NewSet(nil, WithBeforeCollect(func() {
		calls++
		s.Gauge("calls", nil).Set(float64(calls))
	}))

	samples := collectAll(s)
	require.Len(t, samples, 1)
	assert.Equal(t, ptr(1), samples[0].Samples["calls"].Value)

	samples = collectAll(s)
	require.Len(t, samples, 1)
	assert.Equal(t, ptr(2), samples[0].Samples["calls"].Value)
}

func TestSet_CollectIsLazy(t *testing.T) {
	calls := 0
	s := NewSet(nil, WithBeforeCollect(func() { calls++ }))
	s.Counter("a", Labels{"k": "1"}).Inc()
	s.Counter("a", Labels{"k": "2"}).Inc()

	seq := s.Collect()
	assert.Equal(t, 0, calls, "nothing happens until the sequence is ranged over")

	n := 0
	for range seq {
		n++
		break
	}
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, calls)
}

func TestSet_CollectTimestampIsWallClockMicroseconds(t *testing.T) {
	s := NewSet(nil)
	s.Counter("c", nil).Inc()

	before := time.Now().UnixMicro()
	samples := collectAll(s)
	after := time.Now().UnixMicro()

	require.Len(t, samples, 1)
	assert.GreaterOrEqual(t, samples[0].Timestamp, before)
	assert.LessOrEqual(t, samples[0].Timestamp, after)
}
