package plume

import (
	"strings"
	"testing"
)

func TestUplevelRestoresFrameOnError(t *testing.T) {
	i := New()
	defer i.Close()

	script := `
		proc p {} {
			set local before
			catch {uplevel 1 {error boom}}
			set local
		}
		p
	`
	result, err := i.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "before" {
		t.Errorf("frame not restored after uplevel error, got %q", result.String())
	}
}

func TestUplevelHashZero(t *testing.T) {
	i := New()
	defer i.Close()

	script := `
		proc inner {} { uplevel #0 {set gtop set-from-inner} }
		proc outer {} { inner }
		outer
		set gtop
	`
	result, err := i.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "set-from-inner" {
		t.Errorf("expected global write, got %q", result.String())
	}
}

func TestTailcallConstantStack(t *testing.T) {
	i := New()
	defer i.Close()

	script := `
		proc countdown {n} {
			if {$n == 0} { return done }
			tailcall countdown [expr {$n - 1}]
		}
		countdown 500
	`
	result, err := i.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "done" {
		t.Errorf("expected 'done', got %q", result.String())
	}
	// 500 replacements must not have grown the frame stack
	if i.frameHighWater > 2 {
		t.Errorf("frame high water %d, want 2", i.frameHighWater)
	}
}

func TestTailcallOutsideProc(t *testing.T) {
	i := New()
	defer i.Close()

	_, err := i.Eval("tailcall foo")
	if err == nil || !strings.Contains(err.Error(), "tailcall can only be called from a proc or lambda") {
		t.Errorf("expected tailcall context error, got %v", err)
	}
}

func TestRecursionLimit(t *testing.T) {
	i := New()
	defer i.Close()

	i.SetRecursionLimit(20)
	if _, err := i.Eval("proc boom {} { boom }"); err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	_, err := i.Eval("boom")
	if err == nil || !strings.Contains(err.Error(), "too many nested evaluations") {
		t.Errorf("expected recursion limit error, got %v", err)
	}

	// the stack unwinds fully; the interpreter stays usable
	result, err := i.Eval("expr {1 + 1}")
	if err != nil {
		t.Fatalf("Eval after overflow failed: %v", err)
	}
	if result.String() != "2" {
		t.Errorf("expected '2', got %q", result.String())
	}
	if len(i.frames) != 1 {
		t.Errorf("frame stack not unwound, %d frames", len(i.frames))
	}
}

func TestInfoLevelCountsProcFrames(t *testing.T) {
	i := New()
	defer i.Close()

	script := `
		proc a {} { b }
		proc b {} { info level }
		a
	`
	result, err := i.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "2" {
		t.Errorf("expected level 2, got %q", result.String())
	}
}

func TestInfoLevelCommandWords(t *testing.T) {
	i := New()
	defer i.Close()

	script := `
		proc a {x y} { info level 1 }
		a hello world
	`
	result, err := i.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "a hello world" {
		t.Errorf("expected invocation words, got %q", result.String())
	}
}
