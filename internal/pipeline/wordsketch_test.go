package pipeline

import "testing"

func TestObserveWordSketchCountsEveryOccurrence(t *testing.T) {
	s := NewSketch(64, 1)
	// unlike the vocabulary pass, repeats within one line each count.
	ObserveWordSketch(s, nil, []string{"eth0", "eth0", "down"})

	if got := s.Count([]byte("eth0")); got < 2 {
		t.Fatalf("eth0 count = %d, want >= 2", got)
	}
	if got := s.Count([]byte("down")); got < 1 {
		t.Fatalf("down count = %d, want >= 1", got)
	}
}

func TestObserveWordSketchCountsSyntheticFormIndependently(t *testing.T) {
	s := NewSketch(64, 1)
	tr, err := NewTransform(`^eth\d+$`, `\d+`, "N")
	if err != nil {
		t.Fatalf("NewTransform: %v", err)
	}
	ObserveWordSketch(s, tr, []string{"eth0"})

	if got := s.Count([]byte("eth0")); got < 1 {
		t.Fatalf("eth0 literal count = %d, want >= 1", got)
	}
	if got := s.Count([]byte("ethN")); got < 1 {
		t.Fatalf("ethN synthetic count = %d, want >= 1", got)
	}
}
