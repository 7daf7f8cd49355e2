package gpu

import "testing"

func TestPixelsPerDispatch(t *testing.T) {
	tests := []struct {
		name     string
		samples  int
		bounces  int
		budget   int
		expected int
	}{
		{"typical", 100, 50, DefaultDispatchBudget, 2048},
		{"heavy", 1000, 1000, DefaultDispatchBudget, 10},
		{"over budget still dispatches", 1000000, 50, DefaultDispatchBudget, 1},
		{"zero bounces counts as one", 10, 0, 1000, 100},
		{"zero samples counts as one", 0, 10, 1000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PixelsPerDispatch(tt.samples, tt.bounces, tt.budget); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestPlanBatches(t *testing.T) {
	batches := PlanBatches(10, 1, 1, 3)
	expected := []Batch{{0, 3}, {3, 3}, {6, 3}, {9, 1}}

	if len(batches) != len(expected) {
		t.Fatalf("Expected %d batches, got %d: %v", len(expected), len(batches), batches)
	}
	for i := range expected {
		if batches[i] != expected[i] {
			t.Errorf("Batch %d: expected %+v, got %+v", i, expected[i], batches[i])
		}
	}

	if got := PlanBatches(0, 1, 1, 3); len(got) != 0 {
		t.Errorf("Expected no batches for an empty image, got %v", got)
	}
}

func TestPlanBatchesCoverage(t *testing.T) {
	tests := []struct {
		total, samples, bounces, budget int
	}{
		{400 * 225, 100, 50, DefaultDispatchBudget},
		{1920 * 1080, 500, 50, DefaultDispatchBudget},
		{7, 3, 2, 5},
		{1, 1, 1, 1},
	}

	for _, tt := range tests {
		batches := PlanBatches(tt.total, tt.samples, tt.bounces, tt.budget)
		perDispatch := PixelsPerDispatch(tt.samples, tt.bounces, tt.budget)

		next := 0
		for i, b := range batches {
			if b.StartPixel != next {
				t.Errorf("%+v: batch %d starts at %d, want %d", tt, i, b.StartPixel, next)
			}
			if b.NumPixels <= 0 || b.NumPixels > perDispatch {
				t.Errorf("%+v: batch %d has %d pixels", tt, i, b.NumPixels)
			}
			if b.NumPixels*max(tt.samples, 1)*max(tt.bounces, 1) > tt.budget && b.NumPixels > 1 {
				t.Errorf("%+v: batch %d exceeds budget", tt, i)
			}
			next += b.NumPixels
		}
		if next != tt.total {
			t.Errorf("%+v: batches cover %d pixels, want %d", tt, next, tt.total)
		}
	}
}
