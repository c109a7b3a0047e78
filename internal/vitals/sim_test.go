package vitals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tidemark/vigil/internal/domain"
)

func fixedNow() time.Time {
	return time.Date(2026, 8, 14, 10, 30, 0, 0, time.UTC)
}

func TestSimSource_Roster(t *testing.T) {
	src := NewSimSource(fixedNow)
	subjects, err := src.Subjects(context.Background())
	if err != nil {
		t.Fatalf("Subjects: %v", err)
	}
	if len(subjects) != 4 {
		t.Fatalf("got %d subjects, want 4", len(subjects))
	}
	if subjects[0].ID != "mike" || !subjects[3].NoData {
		t.Errorf("roster shape unexpected: %+v", subjects)
	}
}

func TestSimSource_Snapshot(t *testing.T) {
	src := NewSimSource(fixedNow)
	snap, err := src.Snapshot(context.Background(), "mike")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	hs := snap[domain.MetricHeatScore]
	if hs.Value == nil || *hs.Value != 82 {
		t.Errorf("mike HS = %v, want 82", hs.Value)
	}
	if hs.Level != domain.LevelRed {
		t.Errorf("mike HS level = %s, want RED", hs.Level)
	}

	ftg := snap[domain.MetricFatigueScore]
	if ftg.Level != domain.LevelYellow {
		t.Errorf("mike FTG level = %s, want YELLOW", ftg.Level)
	}
}

func TestSimSource_NoDataSubject(t *testing.T) {
	src := NewSimSource(fixedNow)
	ctx := context.Background()

	if _, err := src.Snapshot(ctx, "jack"); !errors.Is(err, ErrNoData) {
		t.Errorf("Snapshot(jack) err = %v, want ErrNoData", err)
	}
	if _, err := src.Series(ctx, "jack", domain.MetricHeartRate, 24*time.Hour); !errors.Is(err, ErrNoData) {
		t.Errorf("Series(jack) err = %v, want ErrNoData", err)
	}
}

func TestSimSource_UnknownSubject(t *testing.T) {
	src := NewSimSource(fixedNow)
	if _, err := src.Snapshot(context.Background(), "nobody"); !errors.Is(err, ErrUnknownSubject) {
		t.Errorf("err = %v, want ErrUnknownSubject", err)
	}
}

func TestSimSource_SeriesShape(t *testing.T) {
	src := NewSimSource(fixedNow)
	samples, err := src.Series(context.Background(), "mike", domain.MetricHeartRate, 24*time.Hour)
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	// 24h at a 10-minute step, inclusive of both ends.
	if len(samples) != 145 {
		t.Fatalf("got %d samples, want 145", len(samples))
	}
	for i := 1; i < len(samples); i++ {
		if !samples[i].At.After(samples[i-1].At) {
			t.Fatalf("samples not time-ordered at %d", i)
		}
	}
	// The newest sample is the live roster reading.
	if last := samples[len(samples)-1]; last.Value != 98 {
		t.Errorf("last HR = %v, want 98", last.Value)
	}
}

func TestSimSource_SeriesDeterministic(t *testing.T) {
	src := NewSimSource(fixedNow)
	ctx := context.Background()

	a, _ := src.Series(ctx, "lisa", domain.MetricHRV, 6*time.Hour)
	b, _ := src.Series(ctx, "lisa", domain.MetricHRV, 6*time.Hour)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
