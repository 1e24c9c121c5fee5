package tile

import (
	"testing"

	"github.com/StanfordLegion/prof-viewer-go/internal/interval"
)

func TestIDLess(t *testing.T) {
	a := NewID(interval.New(0, 10))
	b := NewID(interval.New(10, 20))
	if !a.Less(b) {
		t.Fatal("expected a < b")
	}
	if b.Less(a) {
		t.Fatal("expected b to not be < a")
	}
}

func TestSetEmptyAndFinestLevel(t *testing.T) {
	var s Set
	if !s.Empty() {
		t.Fatal("zero-value Set must be empty")
	}

	s = Set{Levels: [][]ID{
		{NewID(interval.New(0, 100))},
		{NewID(interval.New(0, 50)), NewID(interval.New(50, 100))},
	}}
	if s.Empty() {
		t.Fatal("non-empty Set reported empty")
	}
	finest := s.FinestLevel()
	if len(finest) != 2 {
		t.Fatalf("FinestLevel() len = %d, want 2", len(finest))
	}
}

func TestFinestLevelPanicsOnEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic calling FinestLevel on empty Set")
		}
	}()
	var s Set
	s.FinestLevel()
}
