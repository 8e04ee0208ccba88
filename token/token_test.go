package token

import (
	"testing"
)

// Test looking up every reserved word succeeds, then that a plain
// identifier is reported as IDENT.
func TestLookup(t *testing.T) {

	for key, val := range keywords {

		// Obviously this will pass.
		if LookupIdentifier(string(key)) != val {
			t.Errorf("Lookup of %s failed", key)
		}
	}

	if LookupIdentifier("total") != IDENT {
		t.Errorf("expected 'total' to be an identifier")
	}
}

func TestIsReserved(t *testing.T) {
	if !IsReserved("while") {
		t.Errorf("expected 'while' to be reserved")
	}
	if IsReserved("counter") {
		t.Errorf("did not expect 'counter' to be reserved")
	}
}

func TestOperatorClasses(t *testing.T) {
	for _, op := range []Type{EQ, NEQ, LT, LE, GT, GE} {
		if !RelOps[op] {
			t.Errorf("expected %s to be a relational operator", op)
		}
	}
	for _, op := range []Type{PLUS, MINUS} {
		if !AddOps[op] {
			t.Errorf("expected %s to be an additive operator", op)
		}
	}
	for _, op := range []Type{ASTERISK, SLASH} {
		if !MulOps[op] {
			t.Errorf("expected %s to be a multiplicative operator", op)
		}
	}
}
