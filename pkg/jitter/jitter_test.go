package jitter

import (
	"testing"
	"time"
)

func TestBackoffBounds(t *testing.T) {
	tests := []struct {
		attempt int
		min     time.Duration
	}{
		{attempt: 0, min: 100 * time.Millisecond},
		{attempt: 1, min: 200 * time.Millisecond},
		{attempt: 3, min: 800 * time.Millisecond},
		{attempt: 10, min: time.Second},
	}

	for _, tt := range tests {
		for range 50 {
			got := Backoff(100*time.Millisecond, time.Second, tt.attempt)
			if got < tt.min || got > time.Duration(float64(tt.min)*(1+DefaultFactor)) {
				t.Fatalf("attempt %d: backoff %v out of [%v, %v]", tt.attempt, got, tt.min, time.Duration(float64(tt.min)*(1+DefaultFactor)))
			}
		}
	}
}
