package ir

import "testing"

func TestLabelsAreDenseAndOrdered(t *testing.T) {
	p := &Program{}
	for i := 0; i < 5; i++ {
		p.New(OpHalt, "", "", "")
	}
	for i, q := range p.Quads {
		want := "L_" + string(rune('1'+i))
		if q.Label != want {
			t.Fatalf("quad %d: expected label %s, got %s", i, want, q.Label)
		}
	}
}

func TestNextLabelPredictsEmission(t *testing.T) {
	p := &Program{}
	before := p.NextLabel()
	q := p.New(OpHalt, "", "", "")
	if q.Label != before {
		t.Fatalf("NextLabel() %s did not match the emitted quad's label %s", before, q.Label)
	}
}

func TestBackpatchOnlyTouchesEmptyZ(t *testing.T) {
	p := &Program{}
	a := p.New(OpJump, "", "", "")
	b := p.New(OpJump, "", "", "L_99")

	Backpatch([]*Quad{a, b}, "L_7")

	if a.Z != "L_7" {
		t.Fatalf("expected a.Z to be patched to L_7, got %s", a.Z)
	}
	if b.Z != "L_99" {
		t.Fatalf("expected b.Z to be left alone, got %s", b.Z)
	}
}

func TestBackpatchIsIdempotentOnceSet(t *testing.T) {
	p := &Program{}
	a := p.New(OpJump, "", "", "")

	Backpatch([]*Quad{a}, "L_1")
	Backpatch([]*Quad{a}, "L_2")

	if a.Z != "L_1" {
		t.Fatalf("expected a second backpatch to be a no-op, got %s", a.Z)
	}
}

func TestTrueFalseListAppend(t *testing.T) {
	p := &Program{}
	q1 := p.New(OpEq, "a", "b", "")
	q2 := p.New(OpJump, "", "", "")

	tf := TrueFalseList{T: []*Quad{q1}}
	tf.Append(TrueFalseList{F: []*Quad{q2}})

	if len(tf.T) != 1 || len(tf.F) != 1 {
		t.Fatalf("expected one T and one F entry, got T=%d F=%d", len(tf.T), len(tf.F))
	}
}
