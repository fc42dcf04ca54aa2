package plume

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
)

// Interp is a TCL interpreter instance.
//
// Create a new interpreter with [New] and call [Interp.Close] when done.
// An interpreter is not safe for concurrent use from multiple goroutines;
// the one exception is [Interp.Cancel], which may be called from any
// goroutine to stop a running evaluation.
//
//	interp := plume.New()
//	defer interp.Close()
//	result, err := interp.Eval("expr 2 + 2")
type Interp struct {
	namespaces      map[string]*Namespace
	globalNamespace *Namespace
	frames          []*CallFrame
	active          int // currently active frame index
	recursionLimit  int // maximum call stack depth (0 means use default)
	evalDepth       int
	frameHighWater  int // deepest frame stack seen, for stack growth checks
	cmdLine         int // line of the command being dispatched
	errTrace        errorTrace
	tailcall        *tailcallReq
	cancelled       atomic.Bool

	// Commands holds registered Go command implementations.
	// Low-level API. May change between versions.
	Commands map[string]CommandFunc

	// ForeignRegistry stores foreign type definitions for the high-level API.
	ForeignRegistry *ForeignRegistry

	unknownHandler CommandFunc
}

// CommandFunc is the signature for custom commands registered with
// [Interp.RegisterCommand].
//
// The function receives:
//   - i: the interpreter (for creating objects, accessing variables, etc.)
//   - cmd: the command name as invoked
//   - args: the arguments passed to the command
//
// Return [OK] for success or [Error]/[Errorf] for failure.
type CommandFunc func(i *Interp, cmd *Obj, args []*Obj) Result

// New creates a new TCL interpreter with all standard commands registered.
//
//	interp := plume.New()
//	defer interp.Close()
func New() *Interp {
	interp := &Interp{
		namespaces: make(map[string]*Namespace),
		Commands:   make(map[string]CommandFunc),
	}
	globalNS := newNamespace("", "::", nil)
	interp.globalNamespace = globalNS
	interp.namespaces["::"] = globalNS
	// The global frame's locals ARE the global namespace's variables.
	globalFrame := &CallFrame{
		locals: globalNS,
		links:  make(map[string]varLink),
		level:  0,
		caller: -1,
		ns:     globalNS,
	}
	interp.frames = []*CallFrame{globalFrame}
	interp.active = 0
	interp.frameHighWater = 1
	interp.ForeignRegistry = newForeignRegistry()
	registerBuiltins(interp)
	return interp
}

// Close releases resources associated with the interpreter.
//
// After Close is called the interpreter must not be used again.
func (i *Interp) Close() {
	i.namespaces = nil
	i.frames = nil
	i.Commands = nil
	i.ForeignRegistry = nil
}

// Cancel requests that the running evaluation stop at the next command
// boundary. Safe to call from any goroutine. The interrupted evaluation
// fails with error code CANCEL; the interpreter remains usable afterwards.
func (i *Interp) Cancel() {
	i.cancelled.Store(true)
}

// -----------------------------------------------------------------------------
// Object Creation
// -----------------------------------------------------------------------------

// String creates a string object.
//
//	s := interp.String("hello world")
//	s.Type()   // "string"
//	s.String() // "hello world"
func (i *Interp) String(s string) *Obj {
	return &Obj{bytes: s, hasBytes: true, interp: i}
}

// Int creates an integer object.
//
//	n := interp.Int(42)
//	n.Type()   // "int"
//	n.String() // "42"
func (i *Interp) Int(v int64) *Obj {
	return &Obj{intrep: IntType(v), interp: i}
}

// Double creates a floating-point object.
//
//	d := interp.Double(3.14)
//	d.Type()   // "double"
//	d.String() // "3.14"
func (i *Interp) Double(v float64) *Obj {
	return &Obj{intrep: DoubleType(v), interp: i}
}

// Bool creates a boolean object, stored as int 1 (true) or 0 (false).
//
// TCL has no native boolean type; booleans are represented as integers.
func (i *Interp) Bool(v bool) *Obj {
	if v {
		return &Obj{intrep: IntType(1), interp: i}
	}
	return &Obj{intrep: IntType(0), interp: i}
}

// List creates a list object from the given items.
//
//	list := interp.List(interp.String("a"), interp.Int(1))
//	list.Type()   // "list"
//	list.String() // "a 1"
func (i *Interp) List(items ...*Obj) *Obj {
	return &Obj{intrep: ListType(items), interp: i}
}

// ListFrom creates a list object from a Go slice.
//
// Supported slice types:
//   - []string  - each element becomes a string object
//   - []int     - each element becomes an int object
//   - []int64   - each element becomes an int object
//   - []float64 - each element becomes a double object
//   - []any     - each element is auto-converted based on its type
//
//	list := interp.ListFrom([]string{"a", "b", "c"})
//	list.String() // "a b c"
func (i *Interp) ListFrom(slice any) *Obj {
	var items []*Obj
	switch s := slice.(type) {
	case []string:
		items = make([]*Obj, len(s))
		for j, v := range s {
			items[j] = i.String(v)
		}
	case []int:
		items = make([]*Obj, len(s))
		for j, v := range s {
			items[j] = i.Int(int64(v))
		}
	case []int64:
		items = make([]*Obj, len(s))
		for j, v := range s {
			items[j] = i.Int(v)
		}
	case []float64:
		items = make([]*Obj, len(s))
		for j, v := range s {
			items[j] = i.Double(v)
		}
	case []any:
		items = make([]*Obj, len(s))
		for j, v := range s {
			items[j] = i.anyToObj(v)
		}
	}
	return i.List(items...)
}

// Dict creates an empty dict object.
//
// For populated dicts, use [Interp.DictKV] or [Interp.DictFrom]:
//
//	dict := interp.DictKV("name", "Alice", "age", 30)
func (i *Interp) Dict() *Obj {
	return &Obj{intrep: &DictType{Items: make(map[string]*Obj)}, interp: i}
}

// DictKV creates a dict object from alternating key-value pairs.
//
// Keys should be strings (non-strings are converted via fmt.Sprintf).
// Values are auto-converted based on their Go type.
//
//	dict := interp.DictKV("name", "Alice", "age", 30, "active", true)
//	dict.String() // "name Alice age 30 active 1"
func (i *Interp) DictKV(kvs ...any) *Obj {
	items := make(map[string]*Obj)
	order := make([]string, 0, len(kvs)/2)
	for j := 0; j+1 < len(kvs); j += 2 {
		key, ok := kvs[j].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvs[j])
		}
		if _, exists := items[key]; !exists {
			order = append(order, key)
		}
		items[key] = i.anyToObj(kvs[j+1])
	}
	return &Obj{intrep: &DictType{Items: items, Order: order}, interp: i}
}

// DictFrom creates a dict object from a Go map.
//
// Values are auto-converted based on their Go type.
// Note: Go maps have undefined iteration order, so dict key order may vary.
func (i *Interp) DictFrom(m map[string]any) *Obj {
	items := make(map[string]*Obj, len(m))
	order := make([]string, 0, len(m))
	for k, v := range m {
		order = append(order, k)
		items[k] = i.anyToObj(v)
	}
	return &Obj{intrep: &DictType{Items: items, Order: order}, interp: i}
}

// Obj creates an object with a custom ObjType internal representation.
//
// Use this when implementing custom shimmering types:
//
//	type RegexType struct {
//	    pattern string
//	    re      *regexp.Regexp
//	}
//	func (t *RegexType) Name() string         { return "regex" }
//	func (t *RegexType) UpdateString() string { return t.pattern }
//	func (t *RegexType) Dup() plume.ObjType   { return t }
//
//	obj := interp.Obj(&RegexType{pattern: "^foo", re: re})
func (i *Interp) Obj(intrep ObjType) *Obj {
	return &Obj{intrep: intrep, interp: i}
}

// anyToObj converts any Go value to a *Obj.
// Used internally for auto-conversion in SetVar, DictKV, etc.
func (i *Interp) anyToObj(v any) *Obj {
	switch val := v.(type) {
	case string:
		return i.String(val)
	case int:
		return i.Int(int64(val))
	case int64:
		return i.Int(val)
	case float64:
		return i.Double(val)
	case bool:
		return i.Bool(val)
	case *Obj:
		if val.interp == nil {
			val.interp = i
		}
		return val
	default:
		return i.String(fmt.Sprintf("%v", v))
	}
}

// -----------------------------------------------------------------------------
// Script Evaluation
// -----------------------------------------------------------------------------

// Eval evaluates a TCL script and returns the result.
//
// Multiple commands can be separated by semicolons or newlines.
// Returns an error if the script has a syntax error or a command fails;
// the error is an [*EvalError] carrying the accumulated stack trace.
//
//	result, err := interp.Eval("set x 10; expr {$x * 2}")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.String()) // "20"
func (i *Interp) Eval(script string) (out *Obj, err error) {
	defer i.recoverInternal(&out, &err)
	res := i.evalScript(script)
	out, err = i.finishEval(res)
	i.cancelled.Store(false)
	return out, err
}

// recoverInternal converts a panic inside the engine into an evaluation
// error with error code "PLUME INTERNAL". Panics never cross the API
// boundary.
func (i *Interp) recoverInternal(out **Obj, err *error) {
	r := recover()
	if r == nil {
		return
	}
	i.clearError()
	i.cancelled.Store(false)
	// Unwind any frames left behind by the panic.
	if len(i.frames) > 1 {
		i.frames = i.frames[:1]
	}
	i.active = 0
	i.tailcall = nil
	*out = nil
	*err = &EvalError{Message: fmt.Sprintf("internal error: %v", r), Code: "PLUME INTERNAL"}
}

// EvalObj evaluates a TCL script contained in an object.
//
// Equivalent to calling [Interp.Eval] with obj.String().
func (i *Interp) EvalObj(obj *Obj) (*Obj, error) {
	return i.Eval(obj.String())
}

// Call invokes a single TCL command with the given arguments.
//
// Unlike building a command string and using [Interp.Eval], Call passes
// arguments directly to the command without TCL parsing. Strings with
// special characters (unbalanced braces, $, [, etc.) are passed safely
// without escaping.
//
// Arguments can be Go types or *Obj values:
//   - *Obj: passed directly as-is
//   - string: converted to TCL string
//   - int, int64: converted to TCL integer
//   - float64: converted to TCL double
//   - bool: converted to 1 or 0
//   - Other types: converted via fmt.Sprintf
//
//	result, err := interp.Call("expr", "2 + 2")
//	result, err := interp.Call("llength", myList)
//	result, err := interp.Call("complete", "hello { l", 9)  // unbalanced brace OK
func (i *Interp) Call(cmd string, args ...any) (out *Obj, err error) {
	defer i.recoverInternal(&out, &err)
	words := make([]*Obj, len(args)+1)
	words[0] = i.String(cmd)
	for idx, arg := range args {
		words[idx+1] = i.anyToObj(arg)
	}
	res := i.invokeWords(words)
	if res.code == ResultError {
		i.ensureErrorTrace(res)
		i.appendErrorFrame(strings.TrimSpace(cmd), i.cmdLine)
	}
	out, err = i.finishEval(res)
	i.cancelled.Store(false)
	return out, err
}

// -----------------------------------------------------------------------------
// Variables
// -----------------------------------------------------------------------------

// Var returns the value of a variable as a *Obj.
//
// Returns an empty string object if the variable does not exist.
// The returned object preserves the variable's type (int, list, foreign, etc.).
//
//	interp.SetVar("x", 42)
//	v := interp.Var("x")
//	v.Int() // 42, nil
func (i *Interp) Var(name string) *Obj {
	v, res := i.getVar(name)
	if res.code != ResultOK {
		return i.String("")
	}
	return v
}

// SetVar sets a variable to a value.
//
// The value is automatically converted from Go types to TCL; see
// [Interp.Call] for the conversion rules.
//
//	interp.SetVar("name", "Alice")
//	interp.SetVar("count", 42)
func (i *Interp) SetVar(name string, val any) error {
	res := i.setVar(name, i.anyToObj(val))
	if res.code != ResultOK {
		return errors.New(res.value(i).String())
	}
	return nil
}

// SetVars sets multiple variables at once from a map.
//
// This is a convenience method equivalent to calling [Interp.SetVar] for
// each entry.
func (i *Interp) SetVars(vars map[string]any) error {
	for name, val := range vars {
		if err := i.SetVar(name, val); err != nil {
			return err
		}
	}
	return nil
}

// GetVars returns multiple variables as a map.
//
// Variables that don't exist will have empty string values in the result.
//
//	vars := interp.GetVars("x", "y", "z")
func (i *Interp) GetVars(names ...string) map[string]*Obj {
	result := make(map[string]*Obj, len(names))
	for _, name := range names {
		result[name] = i.Var(name)
	}
	return result
}

// -----------------------------------------------------------------------------
// Command Registration
// -----------------------------------------------------------------------------

// RegisterCommand adds a command using the low-level CommandFunc interface.
//
// Use this when you need full control over argument handling, access to the
// interpreter, or custom error messages. For simpler cases, use [Interp.Register].
//
//	interp.RegisterCommand("sum", func(i *plume.Interp, cmd *plume.Obj, args []*plume.Obj) plume.Result {
//	    if len(args) < 2 {
//	        return plume.Errorf("wrong # args: should be \"%s a b\"", cmd.String())
//	    }
//	    a, err := args[0].Int()
//	    if err != nil {
//	        return plume.Error(err.Error())
//	    }
//	    b, err := args[1].Int()
//	    if err != nil {
//	        return plume.Error(err.Error())
//	    }
//	    return plume.OK(a + b)
//	})
func (i *Interp) RegisterCommand(name string, fn CommandFunc) {
	i.register(name, fn)
}

// UnregisterCommand removes a previously registered command.
// This is used by destroy methods to make the command unavailable.
func (i *Interp) UnregisterCommand(name string) {
	delete(i.Commands, name)
	if i.globalNamespace != nil {
		delete(i.globalNamespace.commands, name)
	}
}

// Register adds a command with automatic argument conversion.
//
// The function's signature determines how arguments are converted:
//   - string parameters receive the string representation
//   - int/int64 parameters parse the argument as an integer
//   - float64 parameters parse as a floating-point number
//   - bool parameters use TCL boolean rules
//   - []string parameters receive remaining args as a list
//   - Variadic parameters (...string, ...int) consume remaining arguments
//
// Return types are also auto-converted:
//   - string, int, int64, float64, bool become the command result
//   - error causes the command to fail with the error message
//   - (T, error) returns T on success or fails on error
//
//	interp.Register("greet", func(name string) string {
//	    return "Hello, " + name
//	})
//
//	interp.Register("divide", func(a, b int) (int, error) {
//	    if b == 0 {
//	        return 0, errors.New("division by zero")
//	    }
//	    return a / b, nil
//	})
func (i *Interp) Register(name string, fn any) {
	i.register(name, wrapFunc(fn))
}

// SetUnknownHandler sets a handler called when a command is not found.
//
// The handler receives the unknown command name and its arguments. It can:
//   - Implement the command dynamically
//   - Delegate to another system
//   - Return an error for truly unknown commands
//
// Set to nil to restore default behavior (return "invalid command" error).
func (i *Interp) SetUnknownHandler(fn CommandFunc) {
	i.setUnknownHandler(fn)
}

// -----------------------------------------------------------------------------
// Parsing
// -----------------------------------------------------------------------------

// Parse checks if a script is syntactically complete.
//
// This is useful for implementing REPLs that need to detect incomplete input
// (unclosed braces, brackets, or quotes).
//
//	pr := interp.Parse("set x {")
//	if pr.Status == plume.ParseIncomplete {
//	    // Prompt for more input
//	}
func (i *Interp) Parse(script string) ParseResult {
	_, err := parseScript(script)
	if err == nil {
		return ParseResult{Status: ParseOK}
	}
	var pe *parseErr
	if errors.As(err, &pe) && pe.incomplete {
		return ParseResult{Status: ParseIncomplete, Message: pe.msg}
	}
	return ParseResult{Status: ParseError, Message: err.Error()}
}
