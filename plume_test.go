package plume_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/plume-lang/plume"
)

func TestNew(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	result, err := interp.Eval("expr {2 + 2}")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "4" {
		t.Errorf("expected '4', got %q", result.String())
	}
}

func TestSetVar(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	interp.SetVar("name", "World")
	result, err := interp.Eval(`set greeting "Hello, $name!"`)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "Hello, World!" {
		t.Errorf("expected 'Hello, World!', got %q", result.String())
	}
}

func TestVar(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	interp.SetVar("x", "42")
	v := interp.Var("x")
	if v.String() != "42" {
		t.Errorf("expected '42', got %q", v.String())
	}

	n, err := v.Int()
	if err != nil {
		t.Fatalf("Int() failed: %v", err)
	}
	if n != 42 {
		t.Errorf("expected 42, got %d", n)
	}
}

func TestRegisterSimple(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	interp.Register("double", func(x int) int {
		return x * 2
	})

	result, err := interp.Eval("double 21")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "42" {
		t.Errorf("expected '42', got %q", result.String())
	}
}

func TestRegisterWithError(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	interp.Register("divide", func(a, b int) (int, error) {
		if b == 0 {
			return 0, errors.New("division by zero")
		}
		return a / b, nil
	})

	result, err := interp.Eval("divide 10 2")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "5" {
		t.Errorf("expected '5', got %q", result.String())
	}

	_, err = interp.Eval("divide 10 0")
	if err == nil {
		t.Fatal("expected error for division by zero")
	}
	if err.Error() != "division by zero" {
		t.Errorf("expected 'division by zero', got %q", err.Error())
	}
}

func TestRegisterCommandRaw(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	interp.RegisterCommand("sum", func(i *plume.Interp, cmd *plume.Obj, args []*plume.Obj) plume.Result {
		if len(args) < 2 {
			return plume.Errorf("wrong # args: should be \"%s a b\"", cmd.String())
		}
		a, err := args[0].Int()
		if err != nil {
			return plume.Error(err.Error())
		}
		b, err := args[1].Int()
		if err != nil {
			return plume.Error(err.Error())
		}
		return plume.OK(a + b)
	})

	result, err := interp.Eval("sum 19 23")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "42" {
		t.Errorf("expected '42', got %q", result.String())
	}

	_, err = interp.Eval("sum 1")
	if err == nil {
		t.Fatal("expected wrong # args error")
	}
}

func TestValueList(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	result, err := interp.Eval("list 1 2 3")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	items, err := result.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for j, want := range []int64{1, 2, 3} {
		n, err := items[j].Int()
		if err != nil {
			t.Fatalf("item %d Int() failed: %v", j, err)
		}
		if n != want {
			t.Errorf("item %d: expected %d, got %d", j, want, n)
		}
	}
}

func TestValueDict(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	result, err := interp.Eval("dict create name Alice age 30")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	d, err := result.Dict()
	if err != nil {
		t.Fatalf("Dict() failed: %v", err)
	}
	if v, ok := d.Get("name"); !ok || v.String() != "Alice" {
		t.Errorf("expected name=Alice, got %v", v)
	}
	if v, ok := d.Get("age"); !ok || v.String() != "30" {
		t.Errorf("expected age=30, got %v", v)
	}
	if len(d.Order) != 2 || d.Order[0] != "name" || d.Order[1] != "age" {
		t.Errorf("expected insertion order [name age], got %v", d.Order)
	}
}

type Counter struct {
	value int
}

func TestForeignType(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	err := plume.RegisterType[*Counter](interp, "Counter", plume.TypeDef[*Counter]{
		New: func() *Counter { return &Counter{} },
		Methods: map[string]any{
			"get":  func(c *Counter) int { return c.value },
			"set":  func(c *Counter, v int) { c.value = v },
			"incr": func(c *Counter) int { c.value++; return c.value },
		},
	})
	if err != nil {
		t.Fatalf("RegisterType failed: %v", err)
	}

	result, err := interp.Eval("set c [Counter new]")
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}
	handle := result.String()
	if !strings.HasPrefix(handle, "counter") {
		t.Errorf("expected counterN handle, got %q", handle)
	}

	if _, err := interp.Eval("$c set 10"); err != nil {
		t.Fatalf("method call failed: %v", err)
	}
	result, err = interp.Eval("$c incr")
	if err != nil {
		t.Fatalf("incr failed: %v", err)
	}
	if result.String() != "11" {
		t.Errorf("expected '11', got %q", result.String())
	}

	if _, err := interp.Eval("$c destroy"); err != nil {
		t.Fatalf("destroy failed: %v", err)
	}
	if _, err := interp.Eval("$c get"); err == nil {
		t.Fatal("expected error calling method on destroyed object")
	}
}

func TestForeignTypeDestructor(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	destroyed := false
	err := plume.RegisterType[*Counter](interp, "Counter", plume.TypeDef[*Counter]{
		New:     func() *Counter { return &Counter{} },
		Destroy: func(c *Counter) { destroyed = true },
	})
	if err != nil {
		t.Fatalf("RegisterType failed: %v", err)
	}

	if _, err := interp.Eval("set c [Counter new]; $c destroy"); err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if !destroyed {
		t.Error("Destroy hook was not called")
	}
}

func TestCall(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	result, err := interp.Call("expr", "2 + 2")
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if result.String() != "4" {
		t.Errorf("expected '4', got %q", result.String())
	}
}

func TestCallUnbalancedBrace(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	// arguments bypass the parser, so unbalanced braces are safe
	if err := interp.SetVar("v", "before"); err != nil {
		t.Fatalf("SetVar failed: %v", err)
	}
	result, err := interp.Call("set", "v", "hello { world")
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if result.String() != "hello { world" {
		t.Errorf("expected raw string, got %q", result.String())
	}
	if got := interp.Var("v").String(); got != "hello { world" {
		t.Errorf("variable not updated: %q", got)
	}
}

func TestParse(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	tests := []struct {
		script string
		status plume.ParseStatus
	}{
		{"set x 1", plume.ParseOK},
		{"set x {1 2 3}", plume.ParseOK},
		{"set x {", plume.ParseIncomplete},
		{`set x "unterminated`, plume.ParseIncomplete},
		{"set x [llength", plume.ParseIncomplete},
		{"set x }extra", plume.ParseOK},
	}
	for _, tt := range tests {
		pr := interp.Parse(tt.script)
		if pr.Status != tt.status {
			t.Errorf("Parse(%q): expected status %d, got %d (%s)", tt.script, tt.status, pr.Status, pr.Message)
		}
	}
}

func TestGetVars(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	if err := interp.SetVars(map[string]any{"x": 1, "y": "two"}); err != nil {
		t.Fatalf("SetVars failed: %v", err)
	}
	vars := interp.GetVars("x", "y", "missing")
	if vars["x"].String() != "1" || vars["y"].String() != "two" {
		t.Errorf("unexpected values: %v", vars)
	}
	if vars["missing"].String() != "" {
		t.Errorf("missing variable should read as empty, got %q", vars["missing"].String())
	}
}

func TestUnknownHandler(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	interp.SetUnknownHandler(func(i *plume.Interp, cmd *plume.Obj, args []*plume.Obj) plume.Result {
		return plume.OK("handled:" + cmd.String())
	})
	result, err := interp.Eval("no-such-command a b")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "handled:no-such-command" {
		t.Errorf("unexpected result %q", result.String())
	}

	interp.SetUnknownHandler(nil)
	if _, err := interp.Eval("no-such-command"); err == nil {
		t.Fatal("expected invalid command error")
	}
}

func TestPanicBecomesInternalError(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	interp.RegisterCommand("kaboom", func(i *plume.Interp, cmd *plume.Obj, args []*plume.Obj) plume.Result {
		panic("wires crossed")
	})

	_, err := interp.Eval("kaboom")
	if err == nil || !strings.Contains(err.Error(), "internal error: wires crossed") {
		t.Fatalf("expected internal error, got %v", err)
	}
	var ee *plume.EvalError
	if !errors.As(err, &ee) || ee.Code != "PLUME INTERNAL" {
		t.Errorf("expected PLUME INTERNAL error code, got %v", err)
	}

	// the interpreter survives
	result, err := interp.Eval("set x ok")
	if err != nil {
		t.Fatalf("Eval after panic failed: %v", err)
	}
	if result.String() != "ok" {
		t.Errorf("expected 'ok', got %q", result.String())
	}
}
