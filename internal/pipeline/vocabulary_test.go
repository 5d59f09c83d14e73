package pipeline

import "testing"

func TestVocabularyCountLineDedupesWithinLine(t *testing.T) {
	v := NewVocabulary(1024, 1)
	v.CountLine([]string{"eth0", "eth0", "down"})
	v.CountLine([]string{"eth0"})

	f := v.Finalize(1, 0)
	if f != 2 {
		t.Fatalf("expected 2 frequent words, got %d", f)
	}
	eth0, ok := v.Lookup("eth0")
	if !ok {
		t.Fatal("expected eth0 to survive")
	}
	if eth0.Count != 2 {
		t.Fatalf("expected eth0 count 2 (one per line), got %d", eth0.Count)
	}
}

func TestVocabularyFinalizeSupportCutoff(t *testing.T) {
	v := NewVocabulary(1024, 1)
	v.CountLine([]string{"common"})
	v.CountLine([]string{"common"})
	v.CountLine([]string{"rare"})

	f := v.Finalize(2, 0)
	if f != 1 {
		t.Fatalf("expected 1 frequent word at support=2, got %d", f)
	}
	if _, ok := v.Lookup("rare"); ok {
		t.Fatal("rare should not have survived support cutoff")
	}
	if _, ok := v.Lookup("common"); !ok {
		t.Fatal("common should have survived support cutoff")
	}
}

func TestVocabularyFinalizeRelativeSupport(t *testing.T) {
	v := NewVocabulary(1024, 1)
	for i := 0; i < 10; i++ {
		v.CountLine([]string{"frequent"})
	}
	v.CountLine([]string{"once"})

	// rsupport 50% of 11 lines -> ceil(5.5) = 6
	f := v.Finalize(0, 50)
	if v.Support() != 6 {
		t.Fatalf("expected resolved support 6, got %d", v.Support())
	}
	if f != 1 {
		t.Fatalf("expected 1 frequent word, got %d", f)
	}
}

func TestVocabularyDenseIDsStable(t *testing.T) {
	v := NewVocabulary(1024, 1)
	v.CountLine([]string{"a", "b", "c"})
	v.Finalize(1, 0)

	seen := map[WordID]bool{}
	for _, w := range v.Frequent() {
		if w.ID == 0 {
			t.Fatal("id 0 is reserved and must never be assigned")
		}
		if seen[w.ID] {
			t.Fatalf("duplicate id %d", w.ID)
		}
		seen[w.ID] = true
		if v.ByID(w.ID) != w {
			t.Fatalf("ByID(%d) did not round-trip to the same Word", w.ID)
		}
	}
	if v.F() != 3 {
		t.Fatalf("expected F=3, got %d", v.F())
	}
}
