package symtab

import (
	"strings"
	"testing"
)

func TestOffsetsAdvanceBySlot(t *testing.T) {
	tab := New()
	tab.CreateScope("main")

	for i, name := range []string{"a", "b", "c"} {
		if err := tab.Add(Variable, name, &Entity{}); err != nil {
			t.Fatalf("unexpected error adding %s: %s", name, err)
		}
		want := BaseOffset + SlotSize*(i+1)
		if tab.CurrentScope().Offset != want {
			t.Fatalf("after adding %s, expected offset %d, got %d", name, want, tab.CurrentScope().Offset)
		}
	}
}

func TestAlreadyDeclared(t *testing.T) {
	tab := New()
	tab.CreateScope("main")

	if err := tab.Add(Variable, "a", &Entity{}); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	err := tab.Add(Function, "a", &Entity{})
	if err == nil || !strings.Contains(err.Error(), "already declared") {
		t.Fatalf("expected AlreadyDeclared error, got %v", err)
	}
}

func TestShadowingAcrossScopesIsAccepted(t *testing.T) {
	tab := New()
	tab.CreateScope("main")
	if err := tab.Add(Variable, "a", &Entity{}); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	tab.CreateScope("f1")
	if err := tab.Add(Variable, "a", &Entity{}); err != nil {
		t.Fatalf("expected shadowing to be accepted, got %s", err)
	}
}

func TestFindWalksOuterScopes(t *testing.T) {
	tab := New()
	tab.CreateScope("main")
	tab.Add(Variable, "outer", &Entity{})
	tab.CreateScope("inner")

	e := tab.Find("outer", []Category{Variable}, 0)
	if e == nil {
		t.Fatalf("expected to find 'outer' from an inner scope")
	}

	// max_depth=1 restricts the search to the current scope only.
	if tab.Find("outer", []Category{Variable}, 1) != nil {
		t.Fatalf("expected 'outer' to be invisible at max_depth=1")
	}
}

func TestAssertDeclared(t *testing.T) {
	tab := New()
	tab.CreateScope("main")

	err := tab.AssertDeclared("missing", []Category{Variable, Parameter})
	if err == nil || !strings.Contains(err.Error(), "Symbol 'missing' does not belong to variable or parameter") {
		t.Fatalf("unexpected error message: %v", err)
	}

	tab.Add(Procedure, "p", &Entity{})
	if err := tab.AssertDeclared("p", []Category{Procedure}); err != nil {
		t.Fatalf("expected 'p' to be found as a procedure: %s", err)
	}
	err = tab.AssertDeclared("p", []Category{Function})
	if err == nil {
		t.Fatalf("expected a procedure used as a function to be rejected")
	}
}

func TestPopScopeRemovesEntities(t *testing.T) {
	tab := New()
	tab.CreateScope("main")
	tab.CreateScope("f1")
	tab.Add(Variable, "local", &Entity{})
	tab.PopScope()

	if tab.Find("local", []Category{Variable}, 0) != nil {
		t.Fatalf("expected 'local' to be unreachable after its scope was popped")
	}
}
