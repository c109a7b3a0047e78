package vitals

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/tidemark/vigil/internal/domain"
	"github.com/tidemark/vigil/internal/risk"
)

const sampleStep = 10 * time.Minute

// SimSource is a deterministic simulated telemetry backend: a fixed roster
// plus a seeded series generator. The same subject, metric, and window
// always produce the same samples, so behavior is reproducible in tests
// and demos.
type SimSource struct {
	now     func() time.Time
	entries []simEntry
}

type simEntry struct {
	subject  domain.Subject
	readings map[domain.Metric]float64 // nil when the subject has no data
}

// NewSimSource creates the simulated source with the default demo roster.
// now may be nil, in which case time.Now is used.
func NewSimSource(now func() time.Time) *SimSource {
	if now == nil {
		now = time.Now
	}
	return &SimSource{now: now, entries: defaultRoster(now)}
}

func defaultRoster(now func() time.Time) []simEntry {
	t := now()
	return []simEntry{
		{
			subject: domain.Subject{ID: "mike", Name: "Mike Chen", Dept: "Factory A / Line 2", LastSyncAt: t.Add(-8 * time.Minute)},
			readings: map[domain.Metric]float64{
				domain.MetricHeatScore: 82, domain.MetricFatigueScore: 76,
				domain.MetricHeartRate: 98, domain.MetricSpO2: 97,
				domain.MetricTemperature: 37.6, domain.MetricHRV: 32,
				domain.MetricSteps: 6420, domain.MetricCalories: 380,
			},
		},
		{
			subject: domain.Subject{ID: "amy", Name: "Amy Lin", Dept: "Factory A / Line 1", LastSyncAt: t.Add(-22 * time.Minute)},
			readings: map[domain.Metric]float64{
				domain.MetricHeatScore: 24, domain.MetricFatigueScore: 88,
				domain.MetricHeartRate: 72, domain.MetricSpO2: 99,
				domain.MetricTemperature: 36.8, domain.MetricHRV: 58,
				domain.MetricSteps: 8120, domain.MetricCalories: 460,
			},
		},
		{
			subject: domain.Subject{ID: "lisa", Name: "Lisa Huang", Dept: "Factory B / Line 3", LastSyncAt: t.Add(-40 * time.Minute)},
			readings: map[domain.Metric]float64{
				domain.MetricHeatScore: 61, domain.MetricFatigueScore: 64,
				domain.MetricHeartRate: 92, domain.MetricSpO2: 96,
				domain.MetricTemperature: 37.4, domain.MetricHRV: 24,
				domain.MetricSteps: 3200, domain.MetricCalories: 210,
			},
		},
		{
			subject: domain.Subject{ID: "jack", Name: "Jack Wu", Dept: "Warehouse / Night", LastSyncAt: t.Add(-3 * time.Hour), NoData: true},
		},
	}
}

func (s *SimSource) Subjects(_ context.Context) ([]domain.Subject, error) {
	out := make([]domain.Subject, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.subject
	}
	return out, nil
}

func (s *SimSource) Snapshot(_ context.Context, subjectID string) (domain.Snapshot, error) {
	e, ok := s.lookup(subjectID)
	if !ok {
		return nil, ErrUnknownSubject
	}
	if e.readings == nil {
		return nil, ErrNoData
	}

	snap := make(domain.Snapshot, len(domain.Metrics))
	for _, m := range domain.Metrics {
		v := e.readings[m]
		vv := v
		snap[m] = domain.MetricReading{Level: risk.LevelFor(m, &vv), Value: &vv}
	}
	return snap, nil
}

func (s *SimSource) Series(_ context.Context, subjectID string, metric domain.Metric, window time.Duration) ([]domain.Sample, error) {
	e, ok := s.lookup(subjectID)
	if !ok {
		return nil, ErrUnknownSubject
	}
	if e.readings == nil {
		return nil, ErrNoData
	}
	base, ok := e.readings[metric]
	if !ok {
		return nil, ErrNoData
	}

	end := s.now().Truncate(sampleStep)
	n := int(window / sampleStep)
	if n < 1 {
		n = 1
	}

	amp, lo, hi := shape(metric)
	rng := rand.New(rand.NewSource(seed(subjectID, metric)))

	samples := make([]domain.Sample, 0, n+1)
	for i := n; i >= 0; i-- {
		at := end.Add(-time.Duration(i) * sampleStep)

		// 24h diurnal wave plus seeded noise around the roster baseline.
		wave := math.Sin(float64(at.Unix()) / 3600 * (math.Pi / 12))
		noise := (rng.Float64() - 0.5) * amp
		v := clamp(base+wave*amp/2+noise, lo, hi)

		if i == 0 {
			// The most recent sample is the live reading itself.
			v = base
		}
		samples = append(samples, domain.Sample{At: at, Value: round1(v)})
	}
	return samples, nil
}

func (s *SimSource) lookup(subjectID string) (simEntry, bool) {
	for _, e := range s.entries {
		if e.subject.ID == subjectID {
			return e, true
		}
	}
	return simEntry{}, false
}

// shape returns the noise amplitude and clamp range for a metric.
func shape(metric domain.Metric) (amp, lo, hi float64) {
	switch metric {
	case domain.MetricHeartRate:
		return 8, 50, 135
	case domain.MetricHRV:
		return 6, 10, 120
	case domain.MetricSpO2:
		return 1.5, 90, 100
	case domain.MetricTemperature:
		return 0.4, 35.5, 39
	case domain.MetricSteps:
		return 800, 0, 20000
	case domain.MetricCalories:
		return 60, 0, 1200
	default: // composite scores
		return 6, 0, 100
	}
}

func seed(subjectID string, metric domain.Metric) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(subjectID))
	_, _ = h.Write([]byte(metric))
	return int64(h.Sum64())
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

var _ Source = (*SimSource)(nil)
