package plume

import "testing"

func TestShimmerKeepsString(t *testing.T) {
	i := New()
	defer i.Close()

	o := i.String("007")
	n, err := AsInt(o)
	if err != nil {
		t.Fatalf("AsInt failed: %v", err)
	}
	if n != 7 {
		t.Errorf("expected 7, got %d", n)
	}
	// the canonical string must survive the typed read
	if o.String() != "007" {
		t.Errorf("string rep changed to %q", o.String())
	}
	if o.Type() != "int" {
		t.Errorf("expected cached int rep, got %q", o.Type())
	}
}

func TestShimmerFailureLeavesObjectUntouched(t *testing.T) {
	i := New()
	defer i.Close()

	o := i.String("not-a-number")
	if _, err := AsInt(o); err == nil {
		t.Fatal("expected conversion error")
	}
	if o.Type() != "string" {
		t.Errorf("failed conversion must not change the rep, got %q", o.Type())
	}
	if o.String() != "not-a-number" {
		t.Errorf("string rep changed to %q", o.String())
	}
}

func TestShimmerListElementBoundaries(t *testing.T) {
	i := New()
	defer i.Close()

	o := i.String(`a {b c} d`)
	items, err := AsList(o)
	if err != nil {
		t.Fatalf("AsList failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(items))
	}
	if items[1].String() != "b c" {
		t.Errorf("expected 'b c', got %q", items[1].String())
	}
	// round trip through the cached rep keeps boundaries
	if o.String() != `a {b c} d` {
		t.Errorf("string rep changed to %q", o.String())
	}
}

func TestListStringRegeneration(t *testing.T) {
	i := New()
	defer i.Close()

	l := i.List(i.String("a"), i.String("b c"), i.String(""))
	if got := l.String(); got != "a {b c} {}" {
		t.Errorf("expected 'a {b c} {}', got %q", got)
	}
}

func TestDoubleStringKeepsPoint(t *testing.T) {
	i := New()
	defer i.Close()

	d := i.Double(4)
	if d.String() != "4.0" {
		t.Errorf("expected '4.0', got %q", d.String())
	}
	d = i.Double(3.14)
	if d.String() != "3.14" {
		t.Errorf("expected '3.14', got %q", d.String())
	}
}

func TestEmptyStringIsValid(t *testing.T) {
	i := New()
	defer i.Close()

	o := i.String("")
	if o.String() != "" {
		t.Errorf("expected empty string, got %q", o.String())
	}
	if o.Type() != "string" {
		t.Errorf("expected string type, got %q", o.Type())
	}
}

func TestCopyIsIndependent(t *testing.T) {
	i := New()
	defer i.Close()

	orig := i.List(i.Int(1), i.Int(2))
	cp := orig.Copy()
	items, err := AsList(cp)
	if err != nil {
		t.Fatalf("AsList failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	// mutating the copy's rep must not disturb the original
	cp.intrep = append(cp.intrep.(ListType), i.Int(3))
	cp.hasBytes = false
	origItems, _ := AsList(orig)
	if len(origItems) != 2 {
		t.Errorf("original list changed, now %d items", len(origItems))
	}
}

func TestDictShimmerOddLength(t *testing.T) {
	i := New()
	defer i.Close()

	if _, err := AsDict(i.String("a 1 b")); err == nil {
		t.Fatal("expected missing value error")
	}
}

func TestDictDuplicateKeyKeepsFirstPosition(t *testing.T) {
	i := New()
	defer i.Close()

	d, err := AsDict(i.String("a 1 b 2 a 3"))
	if err != nil {
		t.Fatalf("AsDict failed: %v", err)
	}
	if v, _ := d.Get("a"); v.String() != "3" {
		t.Errorf("later value should win, got %q", v.String())
	}
	if len(d.Order) != 2 || d.Order[0] != "a" || d.Order[1] != "b" {
		t.Errorf("expected order [a b], got %v", d.Order)
	}
}

func TestBoolRules(t *testing.T) {
	i := New()
	defer i.Close()

	tests := []struct {
		in   string
		want bool
	}{
		{"1", true}, {"0", false},
		{"true", true}, {"false", false},
		{"yes", true}, {"no", false},
		{"on", true}, {"off", false},
		{"42", true}, {"0.0", false}, {"0.5", true},
	}
	for _, tt := range tests {
		got, err := AsBool(i.String(tt.in))
		if err != nil {
			t.Errorf("AsBool(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("AsBool(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := AsBool(i.String("maybe")); err == nil {
		t.Error("expected error for non-boolean")
	}
}
