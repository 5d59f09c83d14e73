package pipeline

import "testing"

func buildTestVocab(t *testing.T, words ...string) *Vocabulary {
	t.Helper()
	v := NewVocabulary(1024, 1)
	for _, w := range words {
		v.CountLine([]string{w})
		v.CountLine([]string{w}) // twice, so support=2 keeps it
	}
	v.Finalize(2, 0)
	return v
}

func TestResolveConstantDirectHit(t *testing.T) {
	v := buildTestVocab(t, "eth0")
	word, ok := resolveConstant(v, nil, "eth0")
	if !ok || word.Key != "eth0" {
		t.Fatalf("expected direct hit on eth0, got %+v ok=%v", word, ok)
	}
}

func TestResolveConstantViaTransform(t *testing.T) {
	v := buildTestVocab(t, "ethN")
	tr, err := NewTransform(`^eth\d+$`, `\d+`, "N")
	if err != nil {
		t.Fatalf("NewTransform: %v", err)
	}
	word, ok := resolveConstant(v, tr, "eth7")
	if !ok || word.Key != "ethN" {
		t.Fatalf("expected eth7 to resolve via transform to ethN, got %+v ok=%v", word, ok)
	}
}

func TestResolveConstantMissWhenNeitherFormFrequent(t *testing.T) {
	v := buildTestVocab(t, "eth0")
	if _, ok := resolveConstant(v, nil, "wlan0"); ok {
		t.Fatal("wlan0 was never counted and must not resolve")
	}
}

func TestConstantIDsSkipsVariables(t *testing.T) {
	v := buildTestVocab(t, "eth0", "down")
	ids := ConstantIDs(v, nil, []string{"eth0", "randomvalue", "down"})
	if len(ids) != 2 {
		t.Fatalf("expected 2 constant ids, got %d", len(ids))
	}
}
