package pipeline

import "testing"

func TestObserveClusterSketchKeysByConstantIdentity(t *testing.T) {
	v := buildTestVocab(t, "eth0", "down")
	s := NewClusterSketch(64, 1)

	ObserveClusterSketch(s, v, nil, []string{"eth0", "randomvalue", "down"})
	ObserveClusterSketch(s, v, nil, []string{"eth0", "othervalue", "down"})

	ids := ConstantIDs(v, nil, []string{"eth0", "down"})
	key := IdentityKey(ids)
	if got := s.Count(key); got < 2 {
		t.Fatalf("cluster sketch count for eth0/down = %d, want >= 2 (both lines share constants)", got)
	}
}

func TestObserveClusterSketchIgnoresAllVariableLines(t *testing.T) {
	v := buildTestVocab(t, "eth0")
	s := NewClusterSketch(64, 1)
	before := s.Count(IdentityKey(nil))
	ObserveClusterSketch(s, v, nil, []string{"purelyvariable", "stuff"})
	after := s.Count(IdentityKey(nil))
	if before != after {
		t.Fatal("a line with no constants must not increment any sketch slot")
	}
}
