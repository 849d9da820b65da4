package domain

import (
	"testing"
	"time"
)

func TestPeriodForHour(t *testing.T) {
	tests := []struct {
		hour int
		want Period
	}{
		{0, Period00},
		{5, Period00},
		{6, Period06},
		{11, Period06},
		{12, Period12},
		{17, Period12},
		{18, Period18},
		{23, Period18},
		{24, Period00},
		{-1, Period18},
	}

	for _, tt := range tests {
		if got := PeriodForHour(tt.hour); got != tt.want {
			t.Errorf("PeriodForHour(%d) = %s, want %s", tt.hour, got, tt.want)
		}
	}
}

func TestPeriodOf_UsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	// 08:00 in UTC+9 is 23:00 UTC the previous day.
	ts := time.Date(2024, 5, 2, 8, 0, 0, 0, loc)
	if got := PeriodOf(ts); got != Period18 {
		t.Errorf("PeriodOf = %s, want 18", got)
	}
	if got := PartitionOf(ts).CreationDate; got != "2024-05-01" {
		t.Errorf("CreationDate = %s, want 2024-05-01", got)
	}
}

func TestNewPartition(t *testing.T) {
	now := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)

	p, err := NewPartition(now, "", "")
	if err != nil {
		t.Fatalf("NewPartition failed: %v", err)
	}
	if p.CreationDate != "2024-05-01" || p.Period != Period12 {
		t.Errorf("defaults = %+v", p)
	}

	p, err = NewPartition(now, "2023-12-31", "18")
	if err != nil {
		t.Fatalf("NewPartition failed: %v", err)
	}
	if p.CreationDate != "2023-12-31" || p.Period != Period18 {
		t.Errorf("overrides = %+v", p)
	}

	if _, err := NewPartition(now, "31-12-2023", ""); err == nil {
		t.Error("expected error for malformed date")
	}
	if _, err := NewPartition(now, "", "07"); err == nil {
		t.Error("expected error for unknown period")
	}
}

func TestPartitionKey(t *testing.T) {
	p := Partition{CreationDate: "2024-05-01", Period: Period06}
	got := p.Key("most_popular", "orc")
	want := "most_popular/creation_date=2024-05-01/period=06/most_popular.orc"
	if got != want {
		t.Errorf("Key = %s, want %s", got, want)
	}
}
