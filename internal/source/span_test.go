package source

import "testing"

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 20}
	b := Span{File: 1, Start: 5, End: 15}
	got := a.Cover(b)
	if got.Start != 5 || got.End != 20 {
		t.Fatalf("Cover = %v, want 1:5-20", got)
	}

	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Fatalf("Cover across files must be a no-op, got %v", got)
	}
}

func TestSpanEmptyLen(t *testing.T) {
	s := Span{File: 0, Start: 7, End: 7}
	if !s.Empty() {
		t.Fatalf("zero-length span not Empty")
	}
	s.End = 12
	if s.Empty() || s.Len() != 5 {
		t.Fatalf("span Len = %d, want 5", s.Len())
	}
}
