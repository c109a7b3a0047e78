// Package vitals supplies wearable metric data for monitored subjects.
// The engine consumes the Source interface only; the simulated
// implementation stands in for a real telemetry backend.
package vitals

import (
	"context"
	"errors"
	"time"

	"github.com/tidemark/vigil/internal/domain"
)

// ErrNoData signals that a subject has no recent sensor data for the
// requested metric. It is a valid outcome, not a failure, and the source
// must never fabricate values to avoid it.
var ErrNoData = errors.New("no recent sensor data")

// ErrUnknownSubject signals that the subject id is not on the roster.
var ErrUnknownSubject = errors.New("unknown subject")

// Source provides metric data for subjects.
type Source interface {
	// Subjects returns the roster in display order.
	Subjects(ctx context.Context) ([]domain.Subject, error)

	// Snapshot returns the latest reading of every metric for a subject.
	// Returns ErrNoData when the subject's wearable has not reported.
	Snapshot(ctx context.Context, subjectID string) (domain.Snapshot, error)

	// Series returns time-ordered samples for one metric over the trailing
	// window. Returns ErrNoData when the subject has no data for it.
	Series(ctx context.Context, subjectID string, metric domain.Metric, window time.Duration) ([]domain.Sample, error)
}
