package metrics

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Labels are the dimensions of a metric. Values are stringified with fmt.Sprint.
type Labels map[string]interface{}

// Label is one stringified label pair.
type Label struct {
	Name  string
	Value string
}

// labelKey is the canonical form of a Labels map: pairs sorted by name.
// id is an unambiguous string encoding of pairs, used as a map key.
type labelKey struct {
	id    string
	pairs []Label
}

func newLabelKey(labels Labels) labelKey {
	if len(labels) == 0 {
		return labelKey{}
	}
	names := maps.Keys(labels)
	slices.Sort(names)

	pairs := make([]Label, 0, len(names))
	var b strings.Builder
	for i, name := range names {
		value := fmt.Sprint(labels[name])
		pairs = append(pairs, Label{Name: name, Value: value})
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(name))
		b.WriteByte('=')
		b.WriteString(strconv.Quote(value))
	}
	return labelKey{id: b.String(), pairs: pairs}
}

func (k labelKey) empty() bool { return len(k.pairs) == 0 }

// tags returns the pairs as a fresh map, or nil for an empty key.
func (k labelKey) tags() map[string]string {
	if k.empty() {
		return nil
	}
	out := make(map[string]string, len(k.pairs))
	for _, p := range k.pairs {
		out[p.Name] = p.Value
	}
	return out
}

// metricKey identifies one metric within a set.
type metricKey struct {
	name   string
	labels string
}
