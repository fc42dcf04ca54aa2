package plume

import "strings"

func registerControlCommands(i *Interp) {
	i.register("if", cmdIf)
	i.register("while", cmdWhile)
	i.register("for", cmdFor)
	i.register("foreach", cmdForeach)
	i.register("break", cmdBreak)
	i.register("continue", cmdContinue)
	i.register("proc", cmdProc)
	i.register("apply", cmdApply)
	i.register("return", cmdReturn)
	i.register("error", cmdError)
	i.register("throw", cmdThrow)
	i.register("catch", cmdCatch)
	i.register("try", cmdTry)
	i.register("tailcall", cmdTailcall)
	i.register("uplevel", cmdUplevel)
	i.register("eval", cmdEval)
	i.register("subst", cmdSubst)
	i.register("expr", cmdExpr)
}

// exprTruth evaluates a condition expression to a boolean.
func (i *Interp) exprTruth(cond *Obj) (bool, Result) {
	res := i.evalExpr(cond.String())
	if res.code != ResultOK {
		return false, res
	}
	b, err := AsBool(res.value(i))
	if err != nil {
		return false, Error(err.Error())
	}
	return b, OK("")
}

func cmdIf(i *Interp, cmd *Obj, args []*Obj) Result {
	pos := 0
	for {
		if pos+1 >= len(args) {
			return wrongArgs("if expr ?then? body ?elseif expr ?then? body? ?else body?")
		}
		cond := args[pos]
		pos++
		if args[pos].String() == "then" {
			pos++
		}
		if pos >= len(args) {
			return wrongArgs("if expr ?then? body ?elseif expr ?then? body? ?else body?")
		}
		b, res := i.exprTruth(cond)
		if res.code != ResultOK {
			return res
		}
		if b {
			return i.evalObj(args[pos])
		}
		pos++
		if pos >= len(args) {
			return OK("")
		}
		switch args[pos].String() {
		case "elseif":
			pos++
			continue
		case "else":
			pos++
			if pos != len(args)-1 {
				return wrongArgs("if expr ?then? body ?elseif expr ?then? body? ?else body?")
			}
			return i.evalObj(args[pos])
		default:
			// bare else body
			if pos != len(args)-1 {
				return wrongArgs("if expr ?then? body ?elseif expr ?then? body? ?else body?")
			}
			return i.evalObj(args[pos])
		}
	}
}

func cmdWhile(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 2 {
		return wrongArgs("while test command")
	}
	for {
		b, res := i.exprTruth(args[0])
		if res.code != ResultOK {
			return res
		}
		if !b {
			return OK("")
		}
		res = i.evalObj(args[1])
		switch res.code {
		case ResultOK, ResultContinue:
		case ResultBreak:
			return OK("")
		default:
			return res
		}
	}
}

func cmdFor(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 4 {
		return wrongArgs("for start test next command")
	}
	if res := i.evalObj(args[0]); res.code != ResultOK {
		return res
	}
	for {
		b, res := i.exprTruth(args[1])
		if res.code != ResultOK {
			return res
		}
		if !b {
			return OK("")
		}
		res = i.evalObj(args[3])
		switch res.code {
		case ResultOK, ResultContinue:
		case ResultBreak:
			return OK("")
		default:
			return res
		}
		if res := i.evalObj(args[2]); res.code != ResultOK {
			return res
		}
	}
}

// foreach iterates one or more variable lists over one or more value lists
// in lockstep, padding short lists with empty strings.
func cmdForeach(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 3 || len(args)%2 == 0 {
		return wrongArgs("foreach varList list ?varList list ...? command")
	}
	body := args[len(args)-1]
	pairs := args[:len(args)-1]

	type iterGroup struct {
		vars  []*Obj
		items []*Obj
		pos   int
	}
	groups := make([]*iterGroup, 0, len(pairs)/2)
	rounds := 0
	for j := 0; j < len(pairs); j += 2 {
		vars, err := AsList(pairs[j])
		if err != nil {
			return Error(err.Error())
		}
		if len(vars) == 0 {
			return Error("foreach varlist is empty")
		}
		items, err := AsList(pairs[j+1])
		if err != nil {
			return Error(err.Error())
		}
		groups = append(groups, &iterGroup{vars: vars, items: items})
		n := (len(items) + len(vars) - 1) / len(vars)
		if n > rounds {
			rounds = n
		}
	}
	for round := 0; round < rounds; round++ {
		for _, g := range groups {
			for _, v := range g.vars {
				val := i.String("")
				if g.pos < len(g.items) {
					val = g.items[g.pos]
				}
				g.pos++
				if res := i.setVar(v.String(), val); res.code != ResultOK {
					return res
				}
			}
		}
		res := i.evalObj(body)
		switch res.code {
		case ResultOK, ResultContinue:
		case ResultBreak:
			return OK("")
		default:
			return res
		}
	}
	return OK("")
}

func cmdBreak(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 0 {
		return wrongArgs("break")
	}
	return Break()
}

func cmdContinue(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 0 {
		return wrongArgs("continue")
	}
	return Continue()
}

// proc defines a procedure in the namespace its (possibly qualified) name
// addresses; the body later resolves commands relative to that namespace.
func cmdProc(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 3 {
		return wrongArgs("proc name args body")
	}
	name := args[0].String()
	ns := i.currentNamespace()
	tail := name
	if isQualified(name) {
		nsPart, t := splitQualified(name)
		if nsPart == "" {
			nsPart = "::"
		}
		ns = i.findNamespace(nsPart, true)
		tail = t
	}
	if _, err := AsList(args[1]); err != nil {
		return Error(err.Error())
	}
	ns.commands[tail] = &Command{proc: &Procedure{
		name:   tail,
		params: args[1],
		body:   args[2],
		ns:     ns,
	}}
	return OK("")
}

// apply runs an anonymous {params body ?namespace?} lambda.
func cmdApply(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 1 {
		return wrongArgs("apply lambdaExpr ?arg ...?")
	}
	lambda, err := AsList(args[0])
	if err != nil {
		return Error(err.Error())
	}
	if len(lambda) < 2 || len(lambda) > 3 {
		return Errorf("can't interpret \"%s\" as a lambda expression", args[0].String())
	}
	ns := i.globalNamespace
	if len(lambda) == 3 {
		ns = i.findNamespace(lambda[2].String(), false)
		if ns == nil {
			return Errorf("namespace \"%s\" not found", lambda[2].String())
		}
	}
	p := &Procedure{
		name:   "apply",
		params: lambda[0],
		body:   lambda[1],
		ns:     ns,
		lambda: args[0],
	}
	return i.callProc(p, cmd, args[1:])
}

// cmdReturn implements return with its full option surface. Unknown
// -key value pairs are kept in the options record untouched.
func cmdReturn(i *Interp, cmd *Obj, args []*Obj) Result {
	opts := &DictType{Items: make(map[string]*Obj)}
	opts = opts.With("-code", i.Int(int64(ResultOK)))
	opts = opts.With("-level", i.Int(1))
	var value *Obj

	for len(args) > 0 {
		key := args[0].String()
		if len(args) == 1 {
			value = args[0]
			args = nil
			break
		}
		if !strings.HasPrefix(key, "-") {
			return wrongArgs("return ?-option value ...? ?result?")
		}
		val := args[1]
		args = args[2:]
		switch key {
		case "-code":
			c, err := codeFromObj(val)
			if err != nil {
				return Error(err.Error())
			}
			opts = opts.With("-code", i.Int(int64(c)))
		case "-level":
			n, err := AsInt(val)
			if err != nil || n < 0 {
				return Errorf("bad -level value: expected non-negative integer but got \"%s\"", val.String())
			}
			opts = opts.With("-level", i.Int(n))
		case "-options":
			d, err := AsDict(val)
			if err != nil {
				return Error(err.Error())
			}
			for _, k := range d.Order {
				opts = opts.With(k, d.Items[k])
			}
		default:
			opts = opts.With(key, val)
		}
	}

	level := int64(1)
	if o, ok := opts.Get("-level"); ok {
		if n, err := AsInt(o); err == nil {
			level = n
		}
	}
	code := ResultReturn
	if level == 0 {
		c := int64(ResultOK)
		if o, ok := opts.Get("-code"); ok {
			if n, err := AsInt(o); err == nil {
				c = n
			}
		}
		code = ReturnCode(c)
	}
	r := Result{code: code, opts: i.Obj(opts)}
	if value != nil {
		r.obj = value
		r.hasObj = true
	}
	return r
}

func cmdError(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 1 || len(args) > 3 {
		return wrongArgs("error message ?info? ?code?")
	}
	info := ""
	var code *Obj
	if len(args) >= 2 {
		info = args[1].String()
	}
	if len(args) == 3 {
		code = args[2]
	}
	i.beginError(args[0].String(), info, code)
	return Error(args[0])
}

func cmdThrow(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 2 {
		return wrongArgs("throw type message")
	}
	types, err := AsList(args[0])
	if err != nil {
		return Error(err.Error())
	}
	if len(types) == 0 {
		return Error("type must be non-empty list")
	}
	i.beginError(args[1].String(), "", args[0])
	return Error(args[1])
}

// catch runs a script and absorbs its completion code. The options record
// (with trace data for errors) lands in optionsVar when given.
func cmdCatch(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 1 || len(args) > 3 {
		return wrongArgs("catch script ?resultVarName? ?optionVarName?")
	}
	res := i.evalObj(args[0])
	var opts *Obj
	if res.code == ResultError {
		opts = i.mergeExtraOpts(i.finalizeError(res.value(i)), res)
	} else {
		opts = i.optionsDict(res)
		i.clearError()
	}
	if len(args) >= 2 {
		if r := i.setVar(args[1].String(), res.value(i)); r.code != ResultOK {
			return r
		}
	}
	if len(args) == 3 {
		if r := i.setVar(args[2].String(), opts); r.code != ResultOK {
			return r
		}
	}
	return OK(i.Int(int64(res.code)))
}

// tryHandler is one parsed on/trap clause.
type tryHandler struct {
	trap    bool
	code    ReturnCode
	pattern []*Obj
	vars    []*Obj
	body    *Obj
}

func cmdTry(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 1 {
		return wrongArgs("try body ?handler ...? ?finally script?")
	}
	body := args[0]
	rest := args[1:]
	var handlers []tryHandler
	var finally *Obj
	for len(rest) > 0 {
		switch rest[0].String() {
		case "on":
			if len(rest) < 4 {
				return wrongArgs("try body ?handler ...? ?finally script?")
			}
			c, err := codeFromObj(rest[1])
			if err != nil {
				return Error(err.Error())
			}
			vars, err := AsList(rest[2])
			if err != nil {
				return Error(err.Error())
			}
			handlers = append(handlers, tryHandler{code: c, vars: vars, body: rest[3]})
			rest = rest[4:]
		case "trap":
			if len(rest) < 4 {
				return wrongArgs("try body ?handler ...? ?finally script?")
			}
			pattern, err := AsList(rest[1])
			if err != nil {
				return Error(err.Error())
			}
			vars, err := AsList(rest[2])
			if err != nil {
				return Error(err.Error())
			}
			handlers = append(handlers, tryHandler{trap: true, code: ResultError, pattern: pattern, vars: vars, body: rest[3]})
			rest = rest[4:]
		case "finally":
			if len(rest) != 2 {
				return wrongArgs("try body ?handler ...? ?finally script?")
			}
			finally = rest[1]
			rest = nil
		default:
			return Errorf("bad handler \"%s\": must be on, trap, or finally", rest[0].String())
		}
	}
	if n := len(handlers); n > 0 && handlers[n-1].body.String() == "-" {
		return Error("last non-finally clause must not have a body of \"-\"")
	}

	res := i.evalObj(body)
	handled := res

	idx, matched := matchTryHandler(i, handlers, res)
	if matched {
		h := handlers[idx]
		var opts *Obj
		if res.code == ResultError {
			opts = i.mergeExtraOpts(i.finalizeError(res.value(i)), res)
		} else {
			opts = i.optionsDict(res)
		}
		if len(h.vars) >= 1 {
			if r := i.setVar(h.vars[0].String(), res.value(i)); r.code != ResultOK {
				return r
			}
		}
		if len(h.vars) >= 2 {
			if r := i.setVar(h.vars[1].String(), opts); r.code != ResultOK {
				return r
			}
		}
		// A "-" body borrows the next clause's script; the variable
		// bindings above stay with the matched clause.
		hbody := h.body
		for hbody.String() == "-" {
			idx++
			hbody = handlers[idx].body
		}
		handled = i.evalObj(hbody)
		if handled.code == ResultError {
			// record what the handler was cleaning up after
			handled.opts = i.optSet(i.optionsDict(handled), "-during", opts)
		}
	}

	if finally != nil {
		var priorOpts *Obj
		if handled.code == ResultError {
			priorOpts = i.mergeExtraOpts(i.finalizeError(handled.value(i)), handled)
			handled.opts = priorOpts
		}
		fres := i.evalObj(finally)
		if fres.code != ResultOK {
			if fres.code == ResultError && priorOpts != nil {
				fres.opts = i.optSet(i.optionsDict(fres), "-during", priorOpts)
			}
			return fres
		}
		if priorOpts != nil {
			// keep the rethrown error's trace growing past the finally
			i.ensureErrorTrace(handled)
		}
	}
	return handled
}

// matchTryHandler picks the first clause accepting a completion. An "on"
// clause matches its exact code; a "trap" clause matches errors whose
// -errorcode list starts with the clause's pattern.
func matchTryHandler(i *Interp, handlers []tryHandler, res Result) (int, bool) {
	var errCode []*Obj
	if res.code == ResultError {
		codeObj := i.errTrace.code
		if codeObj == nil {
			if o, ok := optGet(res.opts, "-errorcode"); ok {
				codeObj = o
			}
		}
		if codeObj != nil {
			errCode, _ = AsList(codeObj)
		}
	}
	for idx, h := range handlers {
		if h.trap {
			if res.code != ResultError {
				continue
			}
			if len(h.pattern) > len(errCode) {
				continue
			}
			ok := true
			for j, p := range h.pattern {
				if errCode[j].String() != p.String() {
					ok = false
					break
				}
			}
			if ok {
				return idx, true
			}
			continue
		}
		if h.code == res.code {
			return idx, true
		}
	}
	return 0, false
}

// tailcall schedules a replacement command and unwinds the calling
// procedure; the pending request is consumed at the procedure call site.
func cmdTailcall(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 1 {
		return wrongArgs("tailcall command ?arg ...?")
	}
	if !i.frames[i.active].isProc {
		return Error("tailcall can only be called from a proc or lambda")
	}
	i.tailcall = &tailcallReq{words: args, ns: i.frames[i.active].ns}
	return Result{code: ResultReturn}
}

func cmdUplevel(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 1 {
		return wrongArgs("uplevel ?level? command ?arg ...?")
	}
	level := "1"
	if len(args) > 1 && looksLikeLevel(args[0].String()) {
		level = args[0].String()
		args = args[1:]
	}
	target, res := i.frameAtLevel(level)
	if res.code != ResultOK {
		return res
	}
	return i.uplevelEval(target, concatWords(args))
}

func cmdEval(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 1 {
		return wrongArgs("eval arg ?arg ...?")
	}
	if len(args) == 1 {
		return i.evalObj(args[0])
	}
	return i.evalScript(concatWords(args))
}

// concatWords joins arguments the way concat does: trimmed, single spaces.
func concatWords(args []*Obj) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		s := strings.TrimSpace(a.String())
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func cmdSubst(i *Interp, cmd *Obj, args []*Obj) Result {
	flags := substFlags{backslashes: true, variables: true, commands: true}
	for len(args) > 1 {
		switch args[0].String() {
		case "-nobackslashes":
			flags.backslashes = false
		case "-novariables":
			flags.variables = false
		case "-nocommands":
			flags.commands = false
		default:
			return Errorf("bad option \"%s\": must be -nobackslashes, -nocommands, or -novariables", args[0].String())
		}
		args = args[1:]
	}
	if len(args) != 1 {
		return wrongArgs("subst ?-nobackslashes? ?-nocommands? ?-novariables? string")
	}
	return i.substString(args[0].String(), flags)
}

func cmdExpr(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 1 {
		return wrongArgs("expr arg ?arg ...?")
	}
	parts := make([]string, len(args))
	for j, a := range args {
		parts[j] = a.String()
	}
	return i.evalExpr(strings.Join(parts, " "))
}
