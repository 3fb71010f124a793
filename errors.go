package metrics

import (
	"github.com/pkg/errors"
)

var (
	// ErrUnknownMetricSet is reported when Register is called with an identifier
	// that has no factory.
	ErrUnknownMetricSet = errors.New("unknown metric set")

	// ErrCollectPanic wraps a panic recovered while collecting a metric set.
	ErrCollectPanic = errors.New("metric set collection panicked")
)
