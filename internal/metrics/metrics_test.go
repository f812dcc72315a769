package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCacheLookup(t *testing.T) {
	tests := []struct {
		cache  string
		hit    bool
		result string
	}{
		{"narration", true, "hit"},
		{"narration", false, "miss"},
		{"visual", true, "hit"},
		{"visual", false, "miss"},
	}

	for _, tt := range tests {
		t.Run(tt.cache+"/"+tt.result, func(t *testing.T) {
			c := cacheLookups.WithLabelValues(tt.cache, tt.result)
			before := testutil.ToFloat64(c)

			RecordCacheLookup(tt.cache, tt.hit)
			RecordCacheLookup(tt.cache, tt.hit)

			if got := testutil.ToFloat64(c) - before; got != 2 {
				t.Fatalf("%s/%s grew by %v, want 2", tt.cache, tt.result, got)
			}
		})
	}
}

func TestRecordNarration(t *testing.T) {
	outcomes := []string{"played", "dropped", "absent", "failed"}

	for _, outcome := range outcomes {
		t.Run(outcome, func(t *testing.T) {
			before := make(map[string]float64, len(outcomes))
			for _, o := range outcomes {
				before[o] = testutil.ToFloat64(narrations.WithLabelValues(o))
			}

			RecordNarration(outcome)

			for _, o := range outcomes {
				want := 0.0
				if o == outcome {
					want = 1
				}
				if got := testutil.ToFloat64(narrations.WithLabelValues(o)) - before[o]; got != want {
					t.Fatalf("RecordNarration(%q): %s grew by %v, want %v", outcome, o, got, want)
				}
			}
		})
	}
}
