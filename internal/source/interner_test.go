package source

import "testing"

func TestInternerDedup(t *testing.T) {
	in := NewInterner()
	a := in.Intern("toString")
	b := in.Intern("toString")
	if a != b {
		t.Fatalf("same string interned twice: %d != %d", a, b)
	}
	c := in.Intern("valueOf")
	if c == a {
		t.Fatalf("distinct strings share an ID")
	}
	if got := in.MustLookup(a); got != "toString" {
		t.Fatalf("lookup = %q, want %q", got, "toString")
	}
}

func TestInternerEmptyString(t *testing.T) {
	in := NewInterner()
	if id := in.Intern(""); id != NoStringID {
		t.Fatalf("empty string ID = %d, want NoStringID", id)
	}
	if in.Len() != 1 {
		t.Fatalf("fresh interner Len = %d, want 1", in.Len())
	}
}

func TestInternerNFCNormalization(t *testing.T) {
	in := NewInterner()
	// U+00E9 vs e + U+0301 combining acute: same identifier after NFC.
	composed := in.Intern("café")
	decomposed := in.Intern("café")
	if composed != decomposed {
		t.Fatalf("NFC-equivalent identifiers got distinct IDs: %d != %d", composed, decomposed)
	}
}

func TestInternerLookupInvalid(t *testing.T) {
	in := NewInterner()
	if _, ok := in.Lookup(StringID(42)); ok {
		t.Fatalf("lookup of unknown ID succeeded")
	}
}
