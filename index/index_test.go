package index

import (
	"testing"

	"github.com/llqtool/llq/query"
)

func rec(t *testing.T, line string) *query.Record {
	t.Helper()
	r, err := query.ParseRecord([]byte(line))
	if err != nil {
		t.Fatalf("ParseRecord(%q): %v", line, err)
	}
	return r
}

func buildIndex(t *testing.T, startIdx int, lines ...string) *Index {
	t.Helper()
	idx := New(startIdx)
	for _, l := range lines {
		idx.Append(rec(t, l))
	}
	return idx
}

func TestAppendSetsPresenceBits(t *testing.T) {
	idx := buildIndex(t, 0, `{"a":1}`, `{"b":2}`)
	aHash := query.ParsePath("a").FrontHash()
	bHash := query.ParsePath("b").FrontHash()

	if !idx.Bitsets[aHash].Get(0) {
		t.Fatal("line 0 should have key a set")
	}
	if idx.Bitsets[bHash].Size() > 0 && idx.Bitsets[bHash].Get(0) {
		t.Fatal("line 0 does not have key b")
	}
	if !idx.Bitsets[bHash].Get(1) {
		t.Fatal("line 1 should have key b set")
	}
}

func TestMergeContiguousAppends(t *testing.T) {
	a := buildIndex(t, 0, `{"a":1}`, `{"a":2}`)
	b := buildIndex(t, 2, `{"a":3}`)

	if err := Merge(a, b); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(a.Lines) != 3 {
		t.Fatalf("len(a.Lines) = %d, want 3", len(a.Lines))
	}
	if a.StartIdx != 0 {
		t.Fatalf("a.StartIdx changed: %d", a.StartIdx)
	}
	hash := query.ParsePath("a").FrontHash()
	for i := 0; i < 3; i++ {
		if !a.Bitsets[hash].Get(i) {
			t.Fatalf("line %d should have key a set after merge", i)
		}
	}
}

func TestMergeOverlappingRangeSkipsDuplicateLines(t *testing.T) {
	a := buildIndex(t, 0, `{"a":1}`, `{"a":2}`)
	// b restates line 1 and adds line 2.
	b := buildIndex(t, 1, `{"a":2}`, `{"a":3}`)

	if err := Merge(a, b); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(a.Lines) != 3 {
		t.Fatalf("len(a.Lines) = %d, want 3 (overlap at idx 1 must not duplicate)", len(a.Lines))
	}
}

func TestMergeIdempotentWhenContained(t *testing.T) {
	a := buildIndex(t, 0, `{"a":1}`, `{"a":2}`, `{"a":3}`)
	b := buildIndex(t, 1, `{"a":2}`)

	before := len(a.Lines)
	if err := Merge(a, b); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(a.Lines) != before {
		t.Fatalf("merging an already-contained partial must not change line count: got %d, want %d", len(a.Lines), before)
	}
}

func TestMergeGapFails(t *testing.T) {
	a := buildIndex(t, 0, `{"a":1}`, `{"a":2}`)
	b := New(3)
	b.Append(rec(t, `{"a":1}`))

	if err := Merge(a, b); err == nil {
		t.Fatal("expected IndexGap error when b.StartIdx leaves a gap")
	}
}
