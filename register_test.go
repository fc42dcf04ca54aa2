package plume_test

import (
	"strings"
	"testing"

	"github.com/plume-lang/plume"
)

func TestRegisterVariadic(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	interp.Register("sum", func(nums ...int) int {
		total := 0
		for _, n := range nums {
			total += n
		}
		return total
	})

	result, err := interp.Eval("sum 1 2 3 4")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "10" {
		t.Errorf("expected '10', got %q", result.String())
	}

	result, err = interp.Eval("sum")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "0" {
		t.Errorf("expected '0', got %q", result.String())
	}
}

func TestRegisterSliceArg(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	interp.Register("join2", func(parts []string, sep string) string {
		return strings.Join(parts, sep)
	})

	result, err := interp.Eval(`join2 {a b c} -`)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "a-b-c" {
		t.Errorf("expected 'a-b-c', got %q", result.String())
	}
}

func TestRegisterSliceResult(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	interp.Register("pair", func(a, b string) []string {
		return []string{a, b}
	})

	result, err := interp.Eval(`llength [pair x "y z"]`)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "2" {
		t.Errorf("expected '2', got %q", result.String())
	}
}

func TestRegisterMapResultSortedKeys(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	interp.Register("config", func() map[string]int {
		return map[string]int{"zeta": 3, "alpha": 1, "mid": 2}
	})

	result, err := interp.Eval("dict keys [config]")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "alpha mid zeta" {
		t.Errorf("expected sorted keys, got %q", result.String())
	}
}

func TestRegisterBoolAndFloat(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	interp.Register("gate", func(open bool, factor float64) string {
		if !open {
			return "closed"
		}
		if factor > 1.5 {
			return "wide"
		}
		return "open"
	})

	tests := []struct {
		script string
		want   string
	}{
		{"gate yes 2.0", "wide"},
		{"gate on 1.0", "open"},
		{"gate false 9.9", "closed"},
	}
	for _, tt := range tests {
		result, err := interp.Eval(tt.script)
		if err != nil {
			t.Errorf("%q failed: %v", tt.script, err)
			continue
		}
		if result.String() != tt.want {
			t.Errorf("%q = %q, want %q", tt.script, result.String(), tt.want)
		}
	}

	_, err := interp.Eval("gate maybe 1.0")
	if err == nil || !strings.Contains(err.Error(), "argument 1") {
		t.Errorf("expected conversion error for argument 1, got %v", err)
	}
}

func TestRegisterObjPassthrough(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	interp.Register("second", func(l *plume.Obj) (*plume.Obj, error) {
		items, err := l.List()
		if err != nil {
			return nil, err
		}
		if len(items) < 2 {
			return nil, nil
		}
		return items[1], nil
	})

	result, err := interp.Eval("second [list 1 22 333]")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	n, err := result.Int()
	if err != nil {
		t.Fatalf("result lost its int rep: %v", err)
	}
	if n != 22 {
		t.Errorf("expected 22, got %d", n)
	}
}

func TestRegisterWrongArgCount(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	interp.Register("two", func(a, b string) string { return a + b })

	_, err := interp.Eval("two onlyone")
	if err == nil || !strings.Contains(err.Error(), "wrong # args") {
		t.Errorf("expected wrong # args error, got %v", err)
	}
}

type store struct {
	items map[string]string
}

func TestRegisterForeignPointerArg(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	err := plume.RegisterType[*store](interp, "Store", plume.TypeDef[*store]{
		New: func() *store { return &store{items: make(map[string]string)} },
		Methods: map[string]any{
			"put": func(s *store, k, v string) { s.items[k] = v },
		},
	})
	if err != nil {
		t.Fatalf("RegisterType failed: %v", err)
	}

	// a registered function can take the foreign object by handle
	interp.Register("storesize", func(s *store) int { return len(s.items) })

	script := `
		set s [Store new]
		$s put a 1
		$s put b 2
		storesize $s
	`
	result, err := interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "2" {
		t.Errorf("expected '2', got %q", result.String())
	}

	_, err = interp.Eval("storesize nosuchhandle")
	if err == nil || !strings.Contains(err.Error(), "unknown foreign object") {
		t.Errorf("expected foreign lookup error, got %v", err)
	}
}
