package plume

import (
	"errors"
	"testing"
)

func TestParseScriptCommands(t *testing.T) {
	cmds, err := parseScript("set x 1\nset y 2; set z 3")
	if err != nil {
		t.Fatalf("parseScript failed: %v", err)
	}
	if len(cmds) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(cmds))
	}
	if len(cmds[0].words) != 3 {
		t.Errorf("expected 3 words, got %d", len(cmds[0].words))
	}
	if cmds[0].line != 1 || cmds[1].line != 2 || cmds[2].line != 2 {
		t.Errorf("line numbers wrong: %d %d %d", cmds[0].line, cmds[1].line, cmds[2].line)
	}
}

func TestParseComments(t *testing.T) {
	cmds, err := parseScript("# a comment\nset x 1\n  # another\nset y 2")
	if err != nil {
		t.Fatalf("parseScript failed: %v", err)
	}
	if len(cmds) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(cmds))
	}
	if cmds[0].line != 2 || cmds[1].line != 4 {
		t.Errorf("line numbers wrong: %d %d", cmds[0].line, cmds[1].line)
	}
}

func TestParseBackslashNewline(t *testing.T) {
	cmds, err := parseScript("set x \\\n  1")
	if err != nil {
		t.Fatalf("parseScript failed: %v", err)
	}
	if len(cmds) != 1 {
		t.Fatalf("expected 1 command, got %d", len(cmds))
	}
	if len(cmds[0].words) != 3 {
		t.Errorf("continuation should join the command, got %d words", len(cmds[0].words))
	}
}

func TestParseBracedVerbatim(t *testing.T) {
	cmds, err := parseScript(`set x {a $b [c]}`)
	if err != nil {
		t.Fatalf("parseScript failed: %v", err)
	}
	w := cmds[0].words[2]
	if !w.braced {
		t.Fatal("expected braced word")
	}
	if len(w.segs) != 1 || w.segs[0].kind != segLiteral || w.segs[0].text != "a $b [c]" {
		t.Errorf("braced content wrong: %+v", w.segs)
	}
}

func TestParseQuotedSegments(t *testing.T) {
	cmds, err := parseScript(`set x "pre $name [cmd arg] post"`)
	if err != nil {
		t.Fatalf("parseScript failed: %v", err)
	}
	segs := cmds[0].words[2].segs
	if len(segs) != 4 {
		t.Fatalf("expected 4 segments, got %d: %+v", len(segs), segs)
	}
	if segs[0].kind != segLiteral || segs[0].text != "pre " {
		t.Errorf("seg 0 wrong: %+v", segs[0])
	}
	if segs[1].kind != segVar || segs[1].text != "name" {
		t.Errorf("seg 1 wrong: %+v", segs[1])
	}
	if segs[2].kind != segCommand || segs[2].text != "cmd arg" {
		t.Errorf("seg 2 wrong: %+v", segs[2])
	}
	if segs[3].kind != segLiteral || segs[3].text != " post" {
		t.Errorf("seg 3 wrong: %+v", segs[3])
	}
}

func TestParseVarForms(t *testing.T) {
	tests := []struct {
		src  string
		name string
	}{
		{"$abc", "abc"},
		{"${a b}", "a b"},
		{"$a::b", "a::b"},
		{"$::g", "::g"},
	}
	for _, tt := range tests {
		cmds, err := parseScript("x " + tt.src)
		if err != nil {
			t.Fatalf("parseScript(%q) failed: %v", tt.src, err)
		}
		segs := cmds[0].words[1].segs
		if len(segs) == 0 || segs[0].kind != segVar || segs[0].text != tt.name {
			t.Errorf("%q: expected var %q, got %+v", tt.src, tt.name, segs)
		}
	}

	// a bare dollar with no name stays literal
	cmds, err := parseScript("x a$ b")
	if err != nil {
		t.Fatalf("parseScript failed: %v", err)
	}
	segs := cmds[0].words[1].segs
	if len(segs) != 1 || segs[0].kind != segLiteral || segs[0].text != "a$" {
		t.Errorf("bare dollar mishandled: %+v", segs)
	}
}

func TestParseIncompleteDetection(t *testing.T) {
	tests := []struct {
		src        string
		incomplete bool
	}{
		{"set x {", true},
		{`set x "abc`, true},
		{"set x [llength", true},
		{"set x {a}b", false},
	}
	for _, tt := range tests {
		_, err := parseScript(tt.src)
		if err == nil {
			t.Errorf("parseScript(%q): expected error", tt.src)
			continue
		}
		var pe *parseErr
		if !errors.As(err, &pe) {
			t.Errorf("parseScript(%q): expected *parseErr, got %T", tt.src, err)
			continue
		}
		if pe.incomplete != tt.incomplete {
			t.Errorf("parseScript(%q): incomplete = %v, want %v", tt.src, pe.incomplete, tt.incomplete)
		}
	}
}

func TestParseBracketSkipsBracedText(t *testing.T) {
	cmds, err := parseScript(`set x [list {]} a]`)
	if err != nil {
		t.Fatalf("parseScript failed: %v", err)
	}
	segs := cmds[0].words[2].segs
	if len(segs) != 1 || segs[0].kind != segCommand || segs[0].text != "list {]} a" {
		t.Errorf("bracket content wrong: %+v", segs)
	}
}
