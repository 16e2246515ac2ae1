// Package validation collects non-fatal validation events during a pipeline
// run. An event marks a skipped entity or a defaulted value; it never stops
// the run.
package validation

import (
	"log/slog"
	"sync"

	"github.com/mapforge/osmscene/pkg/scene"
)

// Event kinds recorded by the pipeline stages.
const (
	KindMissingPoints    = "missing_points"
	KindUnknownClass     = "unknown_class"
	KindBadAttribute     = "bad_attribute"
	KindDanglingStopRef  = "dangling_stop_ref"
	KindMissingElevation = "missing_elevation"
	KindDegenerate       = "degenerate_geometry"
)

// Recorder accumulates validation events for one pipeline run and mirrors
// each event to a structured logger at Warn level. Safe for concurrent use;
// elevation batches record from multiple goroutines.
type Recorder struct {
	mu     sync.Mutex
	events []scene.ValidationEvent
	logger *slog.Logger
}

// NewRecorder returns a recorder logging to logger. A nil logger disables
// log output; events are still collected.
func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

// Record appends an event.
func (r *Recorder) Record(kind string, featureID int64, detail string) {
	r.mu.Lock()
	r.events = append(r.events, scene.ValidationEvent{
		Kind:      kind,
		FeatureID: featureID,
		Detail:    detail,
	})
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.Warn("validation event",
			slog.String("kind", kind),
			slog.Int64("feature_id", featureID),
			slog.String("detail", detail),
		)
	}
}

// Events returns a copy of all recorded events in record order.
func (r *Recorder) Events() []scene.ValidationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]scene.ValidationEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns the number of recorded events.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
