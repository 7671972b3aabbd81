package postgres

import "testing"

func TestTimeRangeBounds(t *testing.T) {
	from, to := TimeRange{}.bounds()
	if from != 0 {
		t.Fatalf("open lower bound should be 0, got %d", from)
	}
	if to <= 0 {
		t.Fatalf("open upper bound should be far future, got %d", to)
	}

	from, to = TimeRange{From: 1000, To: 2000}.bounds()
	if from != 1000 || to != 2000 {
		t.Fatalf("bounds = (%d, %d), want (1000, 2000)", from, to)
	}
}
