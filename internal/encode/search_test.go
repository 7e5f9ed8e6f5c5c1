package encode

import "testing"

func TestOutcomesAreDistinct(t *testing.T) {
	outcomes := map[Outcome]string{
		Accepted:  "Accepted",
		Skipped:   "Skipped",
		Exhausted: "Exhausted",
	}
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 distinct outcomes, got %d", len(outcomes))
	}
}
