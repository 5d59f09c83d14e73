package pipeline

import "testing"

func TestSketchNeverUnderestimates(t *testing.T) {
	s := NewSketch(8, 1)
	for i := 0; i < 5; i++ {
		s.Increment([]byte("eth0"))
	}
	if got := s.Count([]byte("eth0")); got < 5 {
		t.Fatalf("sketch undercounted: got %d, want >= 5", got)
	}
}

func TestSketchPossiblyFrequentGate(t *testing.T) {
	s := NewSketch(8, 1)
	if s.PossiblyFrequent([]byte("x"), 1) {
		t.Fatal("unseen key should not be possibly frequent at support 1")
	}
	s.Increment([]byte("x"))
	if !s.PossiblyFrequent([]byte("x"), 1) {
		t.Fatal("key seen once should be possibly frequent at support 1")
	}
	if s.PossiblyFrequent([]byte("x"), 2) {
		t.Fatal("key seen once should not be possibly frequent at support 2")
	}
}

func TestSketchCollisionOnlyInflates(t *testing.T) {
	// A size-1 sketch folds every key into the same slot; the count for any
	// key must be >= its own true occurrences.
	s := NewSketch(1, 1)
	s.Increment([]byte("a"))
	s.Increment([]byte("b"))
	s.Increment([]byte("a"))
	if got := s.Count([]byte("a")); got < 2 {
		t.Fatalf("got %d, want >= 2 (collisions only inflate)", got)
	}
}
