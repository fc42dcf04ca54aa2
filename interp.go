package plume

import (
	"fmt"
	"strings"
)

// DefaultRecursionLimit is the default maximum call stack depth.
const DefaultRecursionLimit = 1000

// SetRecursionLimit sets the maximum call stack depth.
// If limit is 0 or negative, the default limit (1000) is used.
func (i *Interp) SetRecursionLimit(limit int) {
	if limit <= 0 {
		i.recursionLimit = DefaultRecursionLimit
	} else {
		i.recursionLimit = limit
	}
}

// getRecursionLimit returns the effective recursion limit.
func (i *Interp) getRecursionLimit() int {
	if i.recursionLimit <= 0 {
		return DefaultRecursionLimit
	}
	return i.recursionLimit
}

// currentLine is the source line of the command being dispatched, for
// error trace bookkeeping.
func (i *Interp) currentLine() int {
	return i.cmdLine
}

// register adds a Go command to the interpreter. Host commands live in the
// global namespace and in the flat Commands table for enumeration.
func (i *Interp) register(name string, fn CommandFunc) {
	i.Commands[name] = fn
	i.globalNamespace.commands[name] = &Command{fn: fn}
}

// setUnknownHandler installs the handler consulted when resolution fails.
func (i *Interp) setUnknownHandler(fn CommandFunc) {
	i.unknownHandler = fn
}

// evalObj evaluates a script held in an object.
func (i *Interp) evalObj(script *Obj) Result {
	return i.evalScript(script.String())
}

// evalScript parses and evaluates a script in the active frame, returning
// the signal of the last command (or the first abnormal one).
func (i *Interp) evalScript(script string) Result {
	i.evalDepth++
	defer func() { i.evalDepth-- }()
	if i.evalDepth > i.getRecursionLimit() {
		return Error("too many nested evaluations (infinite loop?)")
	}
	cmds, err := parseScript(script)
	if err != nil {
		return Error(err.Error())
	}
	res := OK("")
	for idx := range cmds {
		res = i.evalCommand(&cmds[idx])
		if res.code != ResultOK {
			return res
		}
	}
	return res
}

// evalCommand substitutes one command's words and dispatches it.
// Errors pick up a trace frame naming this command on the way out.
func (i *Interp) evalCommand(cmd *parsedCmd) Result {
	savedLine := i.cmdLine
	i.cmdLine = cmd.line
	defer func() { i.cmdLine = savedLine }()

	words := make([]*Obj, 0, len(cmd.words))
	for _, w := range cmd.words {
		obj, res := i.substWord(w)
		if res.code != ResultOK {
			if res.code == ResultError {
				i.ensureErrorTrace(res)
				i.appendErrorFrame(strings.TrimSpace(cmd.text), cmd.line)
			}
			return res
		}
		words = append(words, obj)
	}
	res := i.invokeWords(words)
	if res.code == ResultError {
		i.ensureErrorTrace(res)
		i.appendErrorFrame(strings.TrimSpace(cmd.text), cmd.line)
	}
	return res
}

// ensureErrorTrace starts the accumulator for errors that were raised
// without it (host commands, conversion failures). Options attached to the
// signal seed -errorinfo and -errorcode.
func (i *Interp) ensureErrorTrace(res Result) {
	if i.errTrace.active {
		return
	}
	msg := res.value(i).String()
	info := ""
	var code *Obj
	if o, ok := optGet(res.opts, "-errorinfo"); ok {
		info = o.String()
	}
	if o, ok := optGet(res.opts, "-errorcode"); ok {
		code = o
	}
	i.beginError(msg, info, code)
}

// invokeWords resolves and runs one fully substituted command.
// This is the bounded granularity at which cancellation is observed.
func (i *Interp) invokeWords(words []*Obj) Result {
	if len(words) == 0 {
		return OK("")
	}
	if i.cancelled.Load() {
		i.beginError("eval canceled", "", i.String("CANCEL"))
		return Error("eval canceled")
	}
	name := words[0].String()
	cmd := i.resolveCommand(name)
	if cmd == nil {
		if i.unknownHandler != nil {
			return i.unknownHandler(i, words[0], words[1:])
		}
		return Error(noSuchCommand(name))
	}
	if cmd.proc != nil {
		return i.callProc(cmd.proc, words[0], words[1:])
	}
	return cmd.fn(i, words[0], words[1:])
}

// callProc runs a procedure (or lambda) body in a fresh frame. Pending
// tailcalls are consumed here in a loop, so a chain of procedures replacing
// themselves runs in constant Go and frame stack space.
func (i *Interp) callProc(p *Procedure, cmdName *Obj, args []*Obj) Result {
	for {
		res := i.pushProcFrame(p, cmdName, args)
		if res.code != ResultOK {
			return res
		}
		res = i.evalObj(p.body)
		i.popFrame()
		res = i.procBoundary(res, p, args)

		req := i.tailcall
		if req == nil {
			return res
		}
		i.tailcall = nil
		if res.code != ResultOK {
			return res
		}
		name := req.words[0].String()
		cmd := i.resolveCommandIn(name, req.ns)
		if cmd == nil {
			if i.unknownHandler != nil {
				return i.unknownHandler(i, req.words[0], req.words[1:])
			}
			return Error(noSuchCommand(name))
		}
		if cmd.proc != nil {
			p = cmd.proc
			cmdName = req.words[0]
			args = req.words[1:]
			continue
		}
		return cmd.fn(i, req.words[0], req.words[1:])
	}
}

// pushProcFrame pushes an activation for p and binds its parameters.
func (i *Interp) pushProcFrame(p *Procedure, cmdName *Obj, args []*Obj) Result {
	params, err := AsList(p.params)
	if err != nil {
		return Error(err.Error())
	}
	locals := newNamespace("", "", nil)
	frame := &CallFrame{
		cmd:      cmdName,
		args:     args,
		locals:   locals,
		links:    make(map[string]varLink),
		ns:       p.ns,
		line:     i.cmdLine,
		isProc:   true,
		procName: p.name,
		lambda:   p.lambda,
	}

	// bind parameters: plain, {name default}, trailing "args"
	n := 0
	for idx, param := range params {
		spec, err := AsList(param)
		if err != nil || len(spec) == 0 {
			return Errorf("procedure \"%s\" has malformed parameter list", p.name)
		}
		pname := spec[0].String()
		if pname == "args" && idx == len(params)-1 {
			locals.vars["args"] = i.List(args[n:]...)
			n = len(args)
			break
		}
		switch {
		case n < len(args):
			locals.vars[pname] = args[n]
			n++
		case len(spec) > 1:
			locals.vars[pname] = spec[1]
		default:
			return Errorf("wrong # args: should be \"%s\"", procUsage(p.name, params))
		}
	}
	if n < len(args) {
		return Errorf("wrong # args: should be \"%s\"", procUsage(p.name, params))
	}
	return i.pushFrame(frame)
}

// procUsage formats the canonical "wrong # args" usage string.
func procUsage(name string, params []*Obj) string {
	parts := []string{name}
	for idx, param := range params {
		spec, err := AsList(param)
		if err != nil || len(spec) == 0 {
			continue
		}
		pname := spec[0].String()
		switch {
		case pname == "args" && idx == len(params)-1:
			parts = append(parts, "?arg ...?")
		case len(spec) > 1:
			parts = append(parts, "?"+pname+"?")
		default:
			parts = append(parts, pname)
		}
	}
	return strings.Join(parts, " ")
}

// procBoundary applies the per-procedure-boundary signal rules: return
// levels count down, break/continue must not escape, errors collect the
// procedure's trace entry, everything else passes through.
func (i *Interp) procBoundary(res Result, p *Procedure, args []*Obj) Result {
	switch res.code {
	case ResultReturn:
		return i.applyReturnLevel(res)
	case ResultError:
		i.appendErrorCall(p.name, args, i.cmdLine)
		return res
	case ResultBreak:
		return Error(`invoked "break" outside of a loop`)
	case ResultContinue:
		return Error(`invoked "continue" outside of a loop`)
	default:
		return res
	}
}

// applyReturnLevel decrements -level at a procedure boundary; when it hits
// zero the recorded -code takes effect.
func (i *Interp) applyReturnLevel(res Result) Result {
	opts := res.opts
	if opts == nil {
		opts = i.newOptions(int64(ResultOK), 1)
	}
	level := optInt(opts, "-level", 1)
	code := optInt(opts, "-code", int64(ResultOK))
	if level > 0 {
		level--
	}
	if level > 0 {
		res.opts = i.optSet(opts, "-level", i.Int(level))
		res.code = ResultReturn
		return res
	}
	res.opts = i.optSet(opts, "-level", i.Int(0))
	res.code = ReturnCode(code)
	if res.code == ResultError && !i.errTrace.active {
		info := ""
		var codeObj *Obj
		if o, ok := optGet(opts, "-errorinfo"); ok {
			info = o.String()
		}
		if o, ok := optGet(opts, "-errorcode"); ok {
			codeObj = o
		}
		i.beginError(res.value(i).String(), info, codeObj)
	}
	return res
}

// finishEval converts the final signal of a top-level evaluation into the
// host-facing (value, error) pair. Uncaught errors carry the accumulated
// trace; loose break/continue and custom codes become errors.
func (i *Interp) finishEval(res Result) (*Obj, error) {
	if res.code == ResultReturn {
		res = i.applyReturnLevel(res)
	}
	switch res.code {
	case ResultOK:
		i.clearError()
		return res.value(i), nil
	case ResultError:
		opts := i.finalizeError(res.value(i))
		e := &EvalError{Message: res.value(i).String(), Code: "NONE"}
		if o, ok := optGet(opts, "-errorcode"); ok {
			e.Code = o.String()
		}
		if o, ok := optGet(opts, "-errorinfo"); ok {
			e.Info = o.String()
		}
		return nil, e
	case ResultBreak:
		i.clearError()
		return nil, &EvalError{Message: `invoked "break" outside of a loop`, Code: "NONE"}
	case ResultContinue:
		i.clearError()
		return nil, &EvalError{Message: `invoked "continue" outside of a loop`, Code: "NONE"}
	default:
		i.clearError()
		return nil, &EvalError{Message: fmt.Sprintf("command returned bad code: %d", res.code), Code: "NONE"}
	}
}
