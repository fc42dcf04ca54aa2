package plume

import "testing"

func TestScanList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"a b c", []string{"a", "b", "c"}},
		{"a {b c} d", []string{"a", "b c", "d"}},
		{"{a {b c}} d", []string{"a {b c}", "d"}},
		{`a "b c" d`, []string{"a", "b c", "d"}},
		{`a\ b c`, []string{"a b", "c"}},
		{"{} {}", []string{"", ""}},
		{"  a\tb\nc  ", []string{"a", "b", "c"}},
		{`{a\}b}`, []string{`a\}b`}},
	}
	for _, tt := range tests {
		got, err := scanList(tt.in)
		if err != nil {
			t.Errorf("scanList(%q) failed: %v", tt.in, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("scanList(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for j := range got {
			if got[j] != tt.want[j] {
				t.Errorf("scanList(%q)[%d] = %q, want %q", tt.in, j, got[j], tt.want[j])
			}
		}
	}
}

func TestScanListErrors(t *testing.T) {
	for _, in := range []string{"{a b", `"a b`, "{a}junk", `"x"y`} {
		if _, err := scanList(in); err == nil {
			t.Errorf("scanList(%q): expected error", in)
		}
	}
}

func TestQuoteListElementRoundTrip(t *testing.T) {
	// quoting then scanning must reproduce every element verbatim
	elems := []string{
		"plain",
		"",
		"two words",
		"has{brace",
		"has}brace",
		"balanced {inner} braces",
		`trailing backslash\`,
		"$var",
		"[cmd]",
		"semi;colon",
		`"quoted"`,
		"line\nbreak",
		"#comment",
	}
	for _, e := range elems {
		quoted := quoteListElement(e)
		got, err := scanList(quoted)
		if err != nil {
			t.Errorf("scanList(quote(%q)=%q) failed: %v", e, quoted, err)
			continue
		}
		if len(got) != 1 || got[0] != e {
			t.Errorf("round trip of %q via %q gave %v", e, quoted, got)
		}
	}
}

func TestFormatList(t *testing.T) {
	got := formatList([]string{"a", "b c", ""})
	if got != "a {b c} {}" {
		t.Errorf("expected 'a {b c} {}', got %q", got)
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		spec   string
		length int
		want   int
	}{
		{"0", 5, 0},
		{"4", 5, 4},
		{"-1", 5, -1},
		{"end", 5, 4},
		{"end-1", 5, 3},
		{"end+2", 5, 6},
		{"1+2", 5, 3},
		{"5-2", 5, 3},
	}
	for _, tt := range tests {
		got, err := parseIndex(tt.spec, tt.length)
		if err != nil {
			t.Errorf("parseIndex(%q) failed: %v", tt.spec, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseIndex(%q, %d) = %d, want %d", tt.spec, tt.length, got, tt.want)
		}
	}
	for _, spec := range []string{"end-", "endx", "abc", "1.5"} {
		if _, err := parseIndex(spec, 5); err == nil {
			t.Errorf("parseIndex(%q): expected error", spec)
		}
	}
}
