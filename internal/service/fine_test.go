package service

import (
	"testing"

	"challan-service/internal/config"
)

func testFineConfig() config.FineConfig {
	return config.FineConfig{
		BaseAmount:    1000,
		MidThreshold:  60,
		MidAmount:     1500,
		HighThreshold: 80,
		HighAmount:    2000,
	}
}

func TestComputeFineTiers(t *testing.T) {
	fines := testFineConfig()

	cases := []struct {
		intensity int
		want      float64
	}{
		{50, 1000},
		{59, 1000},
		{60, 1000},
		{61, 1500},
		{80, 1500},
		{81, 2000},
		{100, 2000},
	}
	for _, tc := range cases {
		if got := ComputeFine(fines, tc.intensity); got != tc.want {
			t.Errorf("ComputeFine(%d) = %v, want %v", tc.intensity, got, tc.want)
		}
	}
}

func TestComputeFineDeterministic(t *testing.T) {
	fines := testFineConfig()
	for i := 0; i < 10; i++ {
		if got := ComputeFine(fines, 85); got != 2000 {
			t.Fatalf("ComputeFine(85) = %v on run %d, want 2000", got, i)
		}
	}
}

func TestComputeFineMonotonic(t *testing.T) {
	fines := testFineConfig()
	prev := ComputeFine(fines, 0)
	for i := 1; i <= 100; i++ {
		cur := ComputeFine(fines, i)
		if cur < prev {
			t.Fatalf("fine decreased from %v to %v at intensity %d", prev, cur, i)
		}
		prev = cur
	}
}
