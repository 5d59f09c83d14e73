package pipeline

import (
	"strings"
	"testing"
)

func TestRenderCandidateOmitsZeroGaps(t *testing.T) {
	v := buildTestVocab(t, "eth0", "down")
	e := NewEmitter(v, OrderBySupport, false)

	eth0ID, _ := v.Lookup("eth0")
	downID, _ := v.Lookup("down")
	c := &Candidate{
		Constants: []WordID{eth0ID.ID, downID.ID},
		Wildcards: []WildcardBound{{0, 0}, {1, 2}, {0, 0}},
		Count:     7,
	}

	got := e.RenderCandidate(c)
	want := "eth0 *{1,2} down"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderCandidateWithTrailingGap(t *testing.T) {
	v := buildTestVocab(t, "eth0")
	e := NewEmitter(v, OrderBySupport, false)
	eth0ID, _ := v.Lookup("eth0")
	c := &Candidate{
		Constants: []WordID{eth0ID.ID},
		Wildcards: []WildcardBound{{0, 0}, {3, 3}},
		Count:     1,
	}
	got := e.RenderCandidate(c)
	if got != "eth0 *{3,3}" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderJoinedTokenSet(t *testing.T) {
	v := buildTestVocab(t, "GET", "POST", "page1")
	getID, _ := v.Lookup("GET")
	postID, _ := v.Lookup("POST")
	page1ID, _ := v.Lookup("page1")

	jc := &JoinedCandidate{
		K:         2,
		IsToken:   []bool{true, false},
		Words:     []WordID{0, page1ID.ID},
		Wildcards: []WildcardBound{{0, 0}, {0, 0}, {0, 0}},
		Tokens:    [][]WordID{{getID.ID, postID.ID}, nil},
		Count:     8,
	}

	e := NewEmitter(v, OrderBySupport, false)
	got := e.RenderJoined(jc)
	want := "(GET|POST) page1"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderJoinedSingleWordTokenBareUnlessDetailed(t *testing.T) {
	v := buildTestVocab(t, "GET", "page1")
	getID, _ := v.Lookup("GET")
	page1ID, _ := v.Lookup("page1")
	jc := &JoinedCandidate{
		K:         2,
		IsToken:   []bool{true, false},
		Words:     []WordID{0, page1ID.ID},
		Wildcards: []WildcardBound{{0, 0}, {0, 0}, {0, 0}},
		Tokens:    [][]WordID{{getID.ID}, nil},
		Count:     1,
	}

	bare := NewEmitter(v, OrderBySupport, false)
	if got := bare.RenderJoined(jc); got != "GET page1" {
		t.Fatalf("got %q, want bare GET page1", got)
	}

	detailed := NewEmitter(v, OrderBySupport, true)
	if got := detailed.RenderJoined(jc); got != "(GET) page1" {
		t.Fatalf("got %q, want parenthesized (GET) page1", got)
	}
}

func TestEmitOrderBySupportDescending(t *testing.T) {
	v := buildTestVocab(t, "a", "b")
	aID, _ := v.Lookup("a")
	bID, _ := v.Lookup("b")

	var family Family
	family.Add(&Candidate{Constants: []WordID{aID.ID}, Wildcards: make([]WildcardBound, 2), Count: 3})
	family.Add(&Candidate{Constants: []WordID{bID.ID}, Wildcards: make([]WildcardBound, 2), Count: 9})

	e := NewEmitter(v, OrderBySupport, false)
	var buf strings.Builder
	if err := e.Emit(&buf, &family, nil); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	out := buf.String()
	nine := strings.Index(out, "Support : 9")
	three := strings.Index(out, "Support : 3")
	if nine == -1 || three == -1 || nine > three {
		t.Fatalf("expected support-9 line before support-3 line, got:\n%s", out)
	}
}
