package plume_test

import (
	"strings"
	"testing"

	"github.com/plume-lang/plume"
)

func TestCatchCodes(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	tests := []struct {
		script string
		want   string
	}{
		{"set x 1", "0"},
		{"error boom", "1"},
		{"return foo", "2"},
		{"break", "3"},
		{"continue", "4"},
		{"return -code 5 x", "2"},
	}
	for _, tt := range tests {
		result, err := interp.Eval("catch {" + tt.script + "}")
		if err != nil {
			t.Errorf("catch {%s} failed: %v", tt.script, err)
			continue
		}
		if result.String() != tt.want {
			t.Errorf("catch {%s} = %q, want %q", tt.script, result.String(), tt.want)
		}
	}
}

func TestCatchOptionsRecord(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	if _, err := interp.Eval("catch {error boom} msg opts"); err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got := interp.Var("msg").String(); got != "boom" {
		t.Errorf("msg = %q, want boom", got)
	}
	opts, err := interp.Var("opts").Dict()
	if err != nil {
		t.Fatalf("opts not a dict: %v", err)
	}
	checks := map[string]string{
		"-code":      "1",
		"-level":     "0",
		"-errorcode": "NONE",
	}
	for k, want := range checks {
		v, ok := opts.Get(k)
		if !ok {
			t.Errorf("missing option %s", k)
			continue
		}
		if v.String() != want {
			t.Errorf("%s = %q, want %q", k, v.String(), want)
		}
	}
	if v, ok := opts.Get("-errorinfo"); !ok || !strings.Contains(v.String(), "boom") {
		t.Errorf("-errorinfo missing or wrong: %v", v)
	}
	if v, ok := opts.Get("-errorstack"); !ok || v.String() != "INNER {error boom}" {
		t.Errorf("-errorstack = %v, want INNER {error boom}", v)
	}
	if _, ok := opts.Get("-errorline"); !ok {
		t.Error("missing -errorline")
	}
}

func TestErrorInfoTraceThroughProc(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	script := `
		proc f {} { error boom }
		catch {f} msg opts
		dict get $opts -errorinfo
	`
	result, err := interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	info := result.String()
	for _, want := range []string{"boom", "while executing", `"error boom"`, `(procedure "f" line`} {
		if !strings.Contains(info, want) {
			t.Errorf("-errorinfo missing %q:\n%s", want, info)
		}
	}
}

func TestErrorWithInfoAndCode(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	script := `
		catch {error oops customInfo {MY CODE}} msg opts
		list [dict get $opts -errorinfo] [dict get $opts -errorcode] $::errorCode
	`
	result, err := interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	items, err := result.List()
	if err != nil || len(items) != 3 {
		t.Fatalf("bad result %q: %v", result.String(), err)
	}
	if items[0].String() != "customInfo" {
		t.Errorf("-errorinfo = %q, want customInfo", items[0].String())
	}
	if items[1].String() != "MY CODE" {
		t.Errorf("-errorcode = %q, want MY CODE", items[1].String())
	}
	if items[2].String() != "MY CODE" {
		t.Errorf("::errorCode = %q, want MY CODE", items[2].String())
	}
}

func TestErrorInfoMirrorUsesVariableStore(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	// write traces on ::errorInfo fire when catch updates the mirror
	script := `
		set log {}
		proc note {name elem op} { lappend ::log $op }
		trace add variable ::errorInfo write note
		catch {error boom}
		trace remove variable ::errorInfo write note
		set log
	`
	result, err := interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "write" {
		t.Errorf("expected 'write', got %q", result.String())
	}

	// the mirror write clears an unset tombstone, so global aliases work again
	script = `
		catch {error first}
		unset ::errorInfo
		catch {error second}
		proc touch {} { global errorInfo; set errorInfo manual }
		touch
		set ::errorInfo
	`
	result, err = interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "manual" {
		t.Errorf("expected 'manual', got %q", result.String())
	}
}

func TestReturnLevelTwo(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	script := `
		proc b {} { return -level 2 fromB; return afterB }
		proc a {} { b; return afterA }
		a
	`
	result, err := interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "fromB" {
		t.Errorf("expected 'fromB', got %q", result.String())
	}
}

func TestReturnCodeError(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	script := `
		proc f {} { return -code error oops }
		list [catch {f} msg] $msg
	`
	result, err := interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "1 oops" {
		t.Errorf("expected '1 oops', got %q", result.String())
	}
}

func TestCustomCodeThroughProc(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	script := `
		proc f {} { return -code 5 payload }
		list [catch {f} msg] $msg
	`
	result, err := interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "5 payload" {
		t.Errorf("expected '5 payload', got %q", result.String())
	}
}

func TestReturnCustomOptionSurvives(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	script := `
		proc f {} { return -code error -mykey myval boom }
		catch {f} msg opts
		dict get $opts -mykey
	`
	result, err := interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "myval" {
		t.Errorf("expected 'myval', got %q", result.String())
	}
}

func TestThrow(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	script := `
		catch {throw {A B} oops} msg opts
		list $msg [dict get $opts -errorcode]
	`
	result, err := interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "oops {A B}" {
		t.Errorf("expected 'oops {A B}', got %q", result.String())
	}

	if _, err := interp.Eval("throw {} empty"); err == nil {
		t.Error("expected error for empty type list")
	}
}

func TestTryOnHandlers(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	result, err := interp.Eval("try { set x 5 } on ok {v} { expr {$v * 2} }")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "10" {
		t.Errorf("on ok handler: expected '10', got %q", result.String())
	}

	result, err = interp.Eval("try { break } on break {} { set r handled }")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "handled" {
		t.Errorf("on break handler: expected 'handled', got %q", result.String())
	}
}

func TestTryTrapMatchesPrefix(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	script := `
		try { error boom {} {POSIX ENOENT} } trap {POSIX} {msg opts} {
			set r "trapped:$msg"
		}
	`
	result, err := interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "trapped:boom" {
		t.Errorf("expected 'trapped:boom', got %q", result.String())
	}
}

func TestTryTrapArithCode(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	script := `
		try { expr {1 / 0} } trap {ARITH DIVZERO} {msg} { set r "div:$msg" }
	`
	result, err := interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "div:divide by zero" {
		t.Errorf("expected 'div:divide by zero', got %q", result.String())
	}
}

func TestTryHandlerDashFallsThrough(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	// the matched clause's variables stay bound while the borrowed body runs
	script := `
		try { error boom {} {A B} } trap {A} {m o} - trap {X} {m2 o2} { set r "next:$m" }
	`
	result, err := interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "next:boom" {
		t.Errorf("expected 'next:boom', got %q", result.String())
	}

	// a chain of dashes keeps borrowing until a real body appears
	script = `
		try { error boom {} {A} } trap {A} {m} - trap {B} {n} - on error {} { set r chained }
	`
	result, err = interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "chained" {
		t.Errorf("expected 'chained', got %q", result.String())
	}
}

func TestTryLastHandlerDashRejected(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	_, err := interp.Eval("try { set x 1 } on ok {} -")
	if err == nil || !strings.Contains(err.Error(), `must not have a body of "-"`) {
		t.Errorf("expected dash-body error, got %v", err)
	}
}

func TestTryTrapNoMatchRethrows(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	script := `
		list [catch {
			try { error boom {} {OTHER} } trap {POSIX} {m} { set x never }
		} msg] $msg
	`
	result, err := interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "1 boom" {
		t.Errorf("expected '1 boom', got %q", result.String())
	}
}

func TestTryFinally(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	// finally runs on the error path
	script := `
		set log {}
		catch {try { error boom } finally { lappend ::log fin }}
		set log
	`
	result, err := interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "fin" {
		t.Errorf("finally did not run, log %q", result.String())
	}

	// a failing finally replaces the body's outcome
	result, err = interp.Eval("list [catch {try { set x ok } finally { error fin }} msg] $msg")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "1 fin" {
		t.Errorf("expected '1 fin', got %q", result.String())
	}
}

func TestTryFinallyErrorRecordsDuring(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	script := `
		catch {try { error body } finally { error fin }} msg opts
		list $msg [dict get [dict get $opts -during] -code]
	`
	result, err := interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "fin 1" {
		t.Errorf("expected 'fin 1', got %q", result.String())
	}
}

func TestTryHandlerErrorRecordsDuring(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	script := `
		catch {
			try { error inner } trap {} {m o} { error outer }
		} msg opts
		list $msg [dict exists $opts -during]
	`
	result, err := interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "outer 1" {
		t.Errorf("expected 'outer 1', got %q", result.String())
	}
}

func TestLooseBreakIsError(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	_, err := interp.Eval("break")
	if err == nil || !strings.Contains(err.Error(), `invoked "break" outside of a loop`) {
		t.Errorf("expected loose break error, got %v", err)
	}

	// break must not escape a procedure either
	_, err = interp.Eval("proc p {} { break }; p")
	if err == nil || !strings.Contains(err.Error(), `invoked "break" outside of a loop`) {
		t.Errorf("expected break-through-proc error, got %v", err)
	}
}

func TestHostResultConstructors(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	interp.RegisterCommand("mybreak", func(i *plume.Interp, cmd *plume.Obj, args []*plume.Obj) plume.Result {
		return plume.Break()
	})
	interp.RegisterCommand("myreturn", func(i *plume.Interp, cmd *plume.Obj, args []*plume.Obj) plume.Result {
		return plume.ReturnTo("early")
	})
	interp.RegisterCommand("mycustom", func(i *plume.Interp, cmd *plume.Obj, args []*plume.Obj) plume.Result {
		return plume.Custom(7, "seven")
	})

	result, err := interp.Eval(`
		set out {}
		foreach x {a b c} { if {$x eq "b"} { mybreak }; lappend out $x }
		set out
	`)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "a" {
		t.Errorf("host break: expected 'a', got %q", result.String())
	}

	result, err = interp.Eval(`
		proc p {} { myreturn; set never reached }
		p
	`)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "early" {
		t.Errorf("host return: expected 'early', got %q", result.String())
	}

	result, err = interp.Eval("list [catch {mycustom} msg] $msg")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "7 seven" {
		t.Errorf("host custom code: expected '7 seven', got %q", result.String())
	}
}
