package plume_test

import (
	"strings"
	"testing"

	"github.com/plume-lang/plume"
)

func TestExprArithmetic(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	tests := []struct {
		expr string
		want string
	}{
		{"1 + 2", "3"},
		{"2 + 3 * 4", "14"},
		{"(2 + 3) * 4", "20"},
		{"10 - 4 - 3", "3"},

		// integer division floors; modulo takes the divisor's sign
		{"7 / 2", "3"},
		{"-7 / 2", "-4"},
		{"7 % 2", "1"},
		{"-7 % 2", "1"},
		{"7 % -2", "-1"},

		// a double operand switches to float arithmetic
		{"1 / 2.0", "0.5"},
		{"10.0 / 4", "2.5"},
		{"4.0", "4.0"},
		{"1 + 2.5", "3.5"},

		{"1 << 4", "16"},
		{"255 >> 4", "15"},
		{"6 & 3", "2"},
		{"6 | 3", "7"},
		{"6 ^ 3", "5"},
		{"~0", "-1"},
		{"-(3 + 4)", "-7"},

		{"0xff", "255"},
		{"0o17", "15"},
		{"0b101", "5"},
		{"1e2", "100.0"},
	}
	for _, tt := range tests {
		result, err := interp.Eval("expr {" + tt.expr + "}")
		if err != nil {
			t.Errorf("expr {%s} failed: %v", tt.expr, err)
			continue
		}
		if result.String() != tt.want {
			t.Errorf("expr {%s} = %q, want %q", tt.expr, result.String(), tt.want)
		}
	}
}

func TestExprComparison(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	tests := []struct {
		expr string
		want string
	}{
		{"1 == 1.0", "1"},
		{"1 != 2", "1"},
		{"1 < 2", "1"},
		{"2 <= 2", "1"},
		{"3 > 2", "1"},
		{"2 >= 3", "0"},
		{`"abc" < "abd"`, "1"},

		// eq/ne compare the string forms, == compares numerically
		{`"1" eq "1.0"`, "0"},
		{`"1" == "1.0"`, "1"},
		{`"abc" eq "abc"`, "1"},
		{`"abc" ne "abd"`, "1"},

		{"!0", "1"},
		{"!5", "0"},
		{"0 && 1", "0"},
		{"1 && 1", "1"},
		{"1 || 0", "1"},
		{"0 || 0", "0"},
		{`1 || "not a bool"`, "1"},
		{`0 && "not a bool"`, "0"},
		{"true", "1"},
		{"!false", "1"},

		{"1 ? 10 : 20", "10"},
		{"0 ? 10 : 20", "20"},
		{"2 > 1 ? 2 > 3 ? 100 : 200 : 300", "200"},
	}
	for _, tt := range tests {
		result, err := interp.Eval("expr {" + tt.expr + "}")
		if err != nil {
			t.Errorf("expr {%s} failed: %v", tt.expr, err)
			continue
		}
		if result.String() != tt.want {
			t.Errorf("expr {%s} = %q, want %q", tt.expr, result.String(), tt.want)
		}
	}
}

func TestExprMathFunctions(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	tests := []struct {
		expr string
		want string
	}{
		{"abs(-5)", "5"},
		{"abs(-5.5)", "5.5"},
		{"int(3.9)", "3"},
		{"int(-3.9)", "-3"},
		{"double(2)", "2.0"},
		{"round(2.6)", "3"},
		{"round(-2.6)", "-3"},
		{"sqrt(9)", "3.0"},
		{"pow(2, 10)", "1024.0"},
		{"fmod(7.5, 2)", "1.5"},
		{"max(1, 2.5, 2)", "2.5"},
		{"min(3, 1, 2)", "1"},
	}
	for _, tt := range tests {
		result, err := interp.Eval("expr {" + tt.expr + "}")
		if err != nil {
			t.Errorf("expr {%s} failed: %v", tt.expr, err)
			continue
		}
		if result.String() != tt.want {
			t.Errorf("expr {%s} = %q, want %q", tt.expr, result.String(), tt.want)
		}
	}
}

func TestExprVariablesAndCommands(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	interp.SetVar("x", 5)
	result, err := interp.Eval("expr {$x * 2 + [llength {a b c}]}")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "13" {
		t.Errorf("expected '13', got %q", result.String())
	}
}

func TestExprJoinsArguments(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	result, err := interp.Eval("expr 1 + 2")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "3" {
		t.Errorf("expected '3', got %q", result.String())
	}
}

func TestExprErrors(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	tests := []struct {
		expr string
		msg  string
	}{
		{"1 / 0", "divide by zero"},
		{"1 % 0", "divide by zero"},
		{"1.0 / 0", "divide by zero"},
		{"fmod(1, 0)", "domain error"},
		{`"abc" + 1`, "non-numeric"},
		{"1 +", "missing operand"},
		{"(1 + 2", "missing close parenthesis"},
		{"nosuchfunc(1)", "unknown math function"},
	}
	for _, tt := range tests {
		_, err := interp.Eval("expr {" + tt.expr + "}")
		if err == nil {
			t.Errorf("expr {%s}: expected error", tt.expr)
			continue
		}
		if !strings.Contains(err.Error(), tt.msg) {
			t.Errorf("expr {%s}: error %q does not mention %q", tt.expr, err.Error(), tt.msg)
		}
	}
}

func TestExprDivideByZeroErrorCode(t *testing.T) {
	interp := plume.New()
	defer interp.Close()

	script := `
		catch {expr {1 / 0}} msg opts
		dict get $opts -errorcode
	`
	result, err := interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "ARITH DIVZERO {divide by zero}" {
		t.Errorf("unexpected error code %q", result.String())
	}
}
