package plume

import (
	"fmt"
	"strconv"
	"strings"
)

// ReturnCode is the completion code of one evaluation step.
// Codes five and above are custom codes; they propagate verbatim.
type ReturnCode int

const (
	ResultOK       ReturnCode = 0
	ResultError    ReturnCode = 1
	ResultReturn   ReturnCode = 2
	ResultBreak    ReturnCode = 3
	ResultContinue ReturnCode = 4
)

// codeNames maps the symbolic completion code names accepted by
// "return -code" to their numeric values.
var codeNames = map[string]ReturnCode{
	"ok":       ResultOK,
	"error":    ResultError,
	"return":   ResultReturn,
	"break":    ResultBreak,
	"continue": ResultContinue,
}

// codeFromObj parses a completion code: a symbolic name or any integer.
func codeFromObj(o *Obj) (ReturnCode, error) {
	if c, ok := codeNames[o.String()]; ok {
		return c, nil
	}
	if v, err := AsInt(o); err == nil {
		return ReturnCode(v), nil
	}
	return 0, fmt.Errorf("bad completion code %q: must be ok, error, return, break, continue, or an integer", o.String())
}

// Result represents the outcome of a command execution: a completion code,
// a value, and an options record.
//
// Create results using [OK], [Error], [Errorf], [Break], [Continue],
// [ReturnTo], or [Custom].
type Result struct {
	code   ReturnCode
	val    string // used when obj is nil
	obj    *Obj   // used when non-nil (preserves type)
	hasObj bool   // true if obj should be used
	opts   *Obj   // return options dict; nil means the defaults for code
}

// Code returns the completion code of the result.
func (r Result) Code() ReturnCode { return r.code }

// value materializes the result value as an object.
func (r Result) value(i *Interp) *Obj {
	if r.hasObj && r.obj != nil {
		return r.obj
	}
	return i.String(r.val)
}

// OK returns a successful result with a value.
//
// The value is auto-converted to a TCL string representation.
// Pass a [*Obj] directly to preserve its internal type (int, list, dict, etc.).
//
//	return plume.OK("success")
//	return plume.OK(42)
//	return plume.OK(myObj)  // preserves *Obj type
func OK(v any) Result {
	if o, ok := v.(*Obj); ok {
		return Result{code: ResultOK, obj: o, hasObj: true}
	}
	switch val := v.(type) {
	case string:
		return Result{code: ResultOK, val: val}
	case int:
		return Result{code: ResultOK, val: strconv.Itoa(val)}
	case int64:
		return Result{code: ResultOK, val: strconv.FormatInt(val, 10)}
	case float64:
		return Result{code: ResultOK, val: fmt.Sprintf("%g", val)}
	case bool:
		if val {
			return Result{code: ResultOK, val: "1"}
		}
		return Result{code: ResultOK, val: "0"}
	default:
		return Result{code: ResultOK, val: fmt.Sprintf("%v", v)}
	}
}

// Error returns an error result with a message or *Obj.
//
//	return plume.Error("something went wrong")
//	return plume.Error(errObj)
func Error(v any) Result {
	if o, ok := v.(*Obj); ok {
		return Result{code: ResultError, obj: o, hasObj: true}
	}
	if s, ok := v.(string); ok {
		return Result{code: ResultError, val: s}
	}
	return Result{code: ResultError, val: fmt.Sprintf("%v", v)}
}

// Errorf returns a formatted error result.
//
//	return plume.Errorf("expected %d args, got %d", want, got)
func Errorf(format string, args ...any) Result {
	return Result{code: ResultError, val: fmt.Sprintf(format, args...)}
}

// Break returns a break result, as if the TCL break command had run.
func Break() Result { return Result{code: ResultBreak} }

// Continue returns a continue result, as if the TCL continue command had run.
func Continue() Result { return Result{code: ResultContinue} }

// ReturnTo returns a return result carrying a value, as if the TCL return
// command had run in the host command's caller.
func ReturnTo(v any) Result {
	r := OK(v)
	r.code = ResultReturn
	return r
}

// Custom returns a result with an arbitrary completion code.
// Codes five and above are preserved verbatim through the engine.
func Custom(code ReturnCode, v any) Result {
	r := OK(v)
	r.code = code
	return r
}

// -----------------------------------------------------------------------------
// Options record
// -----------------------------------------------------------------------------

// optionsDict returns the options record of a result, synthesizing the
// default record when none is attached. A bare return signal defaults to
// {-code 0 -level 1}; everything else to {-code N -level 0}. Unrecognized
// keys set via "return -options" ride along in the attached dict untouched.
func (i *Interp) optionsDict(r Result) *Obj {
	if r.opts != nil {
		return r.opts
	}
	if r.code == ResultReturn {
		return i.newOptions(int64(ResultOK), 1)
	}
	return i.newOptions(int64(r.code), 0)
}

// newOptions builds a fresh {-code C -level L} record.
func (i *Interp) newOptions(code, level int64) *Obj {
	d := &DictType{Items: make(map[string]*Obj, 2)}
	d = d.With("-code", i.Int(code))
	d = d.With("-level", i.Int(level))
	return i.Obj(d)
}

// optGet reads one key from an options record.
func optGet(opts *Obj, key string) (*Obj, bool) {
	if opts == nil {
		return nil, false
	}
	d, err := AsDict(opts)
	if err != nil {
		return nil, false
	}
	return d.Get(key)
}

// optInt reads an integer key from an options record, with a default.
func optInt(opts *Obj, key string, def int64) int64 {
	o, ok := optGet(opts, key)
	if !ok {
		return def
	}
	v, err := AsInt(o)
	if err != nil {
		return def
	}
	return v
}

// optSet returns the options record with key set (copy-producing).
func (i *Interp) optSet(opts *Obj, key string, val *Obj) *Obj {
	d, err := AsDict(opts)
	if err != nil {
		d = &DictType{Items: make(map[string]*Obj)}
	}
	return i.Obj(d.With(key, val))
}

// -----------------------------------------------------------------------------
// Error trace accumulator
// -----------------------------------------------------------------------------

// maxTraceCmdLen bounds the quoted command text in errorInfo frames.
const maxTraceCmdLen = 150

// errorTrace accumulates the human-readable (-errorinfo) and
// machine-readable (-errorstack) traces while an error signal unwinds.
// It is scoped to one interpreter; catch finalizes and clears it.
type errorTrace struct {
	active   bool
	skipNext bool // explicit info supplied; skip the "while executing" frame
	info     strings.Builder
	frames   int
	code     *Obj   // -errorcode value, nil means NONE
	stack    []*Obj // INNER/CALL entries, innermost first
	line     int    // -errorline
}

// beginError starts accumulating a trace for a fresh error.
// info seeds -errorinfo when non-empty (the error command's two-argument
// form); code becomes -errorcode.
func (i *Interp) beginError(msg, info string, code *Obj) {
	t := &i.errTrace
	t.active = true
	t.info.Reset()
	t.frames = 0
	t.stack = nil
	t.code = code
	t.line = i.currentLine()
	if info != "" {
		t.info.WriteString(info)
		t.skipNext = true
	} else {
		t.info.WriteString(msg)
		t.skipNext = false
	}
}

// appendErrorFrame records one unwound command in the trace.
func (i *Interp) appendErrorFrame(cmdText string, line int) {
	t := &i.errTrace
	if !t.active {
		return
	}
	if t.skipNext {
		t.skipNext = false
		t.frames++
		return
	}
	if len(cmdText) > maxTraceCmdLen {
		cmdText = cmdText[:maxTraceCmdLen] + "..."
	}
	if t.frames == 0 {
		t.info.WriteString("\n    while executing\n\"")
		t.stack = append(t.stack, i.String("INNER"), i.String(cmdText))
	} else {
		t.info.WriteString("\n    invoked from within\n\"")
	}
	t.info.WriteString(cmdText)
	t.info.WriteString("\"")
	t.frames++
	if t.line == 0 {
		t.line = line
	}
}

// appendErrorCall records the procedure boundary being unwound.
func (i *Interp) appendErrorCall(procName string, args []*Obj, line int) {
	t := &i.errTrace
	if !t.active {
		return
	}
	t.info.WriteString(fmt.Sprintf("\n    (procedure \"%s\" line %d)", procName, line))
	call := make([]*Obj, 0, len(args)+1)
	call = append(call, i.String(procName))
	call = append(call, args...)
	t.stack = append(t.stack, i.String("CALL"), i.List(call...))
}

// finalizeError snapshots the accumulated trace into an options record and
// clears the active flag. As a documented side effect the ::errorInfo and
// ::errorCode globals are updated to match.
func (i *Interp) finalizeError(msg *Obj) *Obj {
	t := &i.errTrace
	// Error raised without the accumulator (host command, conversion failure
	// surfaced directly): the message is the whole trace.
	info := msg
	code := i.String("NONE")
	var stack []*Obj
	line := 0
	if t.active {
		info = i.String(t.info.String())
		if t.code != nil {
			code = t.code
		}
		stack = t.stack
		line = t.line
	}
	d := &DictType{Items: make(map[string]*Obj)}
	d = d.With("-code", i.Int(int64(ResultError)))
	d = d.With("-level", i.Int(0))
	d = d.With("-errorcode", code)
	d = d.With("-errorinfo", info)
	d = d.With("-errorstack", i.List(stack...))
	d = d.With("-errorline", i.Int(int64(line)))
	i.setGlobalMirror("errorInfo", info)
	i.setGlobalMirror("errorCode", code)
	t.active = false
	return i.Obj(d)
}

// setGlobalMirror writes a :: variable through the store, clearing any
// tombstone and firing write traces. Trace errors are swallowed; the
// mirror update happens while an error is already being delivered.
func (i *Interp) setGlobalMirror(name string, val *Obj) {
	g := i.globalNamespace
	delete(g.dead, name)
	g.vars[name] = val
	i.fireTraces(g, name, name, "write")
}

// mergeExtraOpts copies options riding on the signal (custom keys from
// "return -options", -during from try handlers) into a finalized record.
// The trace-derived keys win over stale copies on the signal.
func (i *Interp) mergeExtraOpts(base *Obj, r Result) *Obj {
	if r.opts == nil {
		return base
	}
	src, err := AsDict(r.opts)
	if err != nil {
		return base
	}
	d, err := AsDict(base)
	if err != nil {
		return base
	}
	for _, k := range src.Order {
		if _, taken := d.Get(k); taken {
			continue
		}
		d = d.With(k, src.Items[k])
	}
	return i.Obj(d)
}

// clearError drops any partially accumulated trace.
func (i *Interp) clearError() {
	t := &i.errTrace
	t.active = false
	t.info.Reset()
	t.frames = 0
	t.stack = nil
	t.code = nil
	t.line = 0
}
