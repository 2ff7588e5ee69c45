package idgen

import (
	"sort"
	"strings"
	"testing"
	"time"
)

func TestULIDGeneratorUnique(t *testing.T) {
	gen := NewULIDGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := gen.Generate()
		if len(id) != 26 {
			t.Fatalf("expected 26-character ULID, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestULIDGeneratorSortable(t *testing.T) {
	gen := NewULIDGenerator()

	first := gen.Generate()
	time.Sleep(2 * time.Millisecond)
	second := gen.Generate()

	ids := []string{second, first}
	sort.Strings(ids)
	if ids[0] != first {
		t.Fatalf("expected %s to sort before %s", first, second)
	}
}

func TestReferenceGeneratorFormat(t *testing.T) {
	gen := NewReferenceGenerator()

	ref := gen.Generate("TRF")
	if !strings.HasPrefix(ref, "TRF-") {
		t.Fatalf("expected TRF- prefix, got %s", ref)
	}
	if len(ref) != len("TRF-")+26 {
		t.Fatalf("unexpected reference length: %s", ref)
	}

	if gen.Generate("TRF") == ref {
		t.Fatal("expected distinct references")
	}
}
