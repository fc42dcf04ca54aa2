package plume

import "strings"

func registerVarCommands(i *Interp) {
	i.register("set", cmdSet)
	i.register("unset", cmdUnset)
	i.register("incr", cmdIncr)
	i.register("append", cmdAppend)
	i.register("global", cmdGlobal)
	i.register("variable", cmdVariable)
	i.register("upvar", cmdUpvar)
	i.register("trace", cmdTrace)
}

func cmdSet(i *Interp, cmd *Obj, args []*Obj) Result {
	switch len(args) {
	case 1:
		v, res := i.getVar(args[0].String())
		if res.code != ResultOK {
			return res
		}
		return OK(v)
	case 2:
		return i.setVar(args[0].String(), args[1])
	default:
		return wrongArgs("set varName ?newValue?")
	}
}

func cmdUnset(i *Interp, cmd *Obj, args []*Obj) Result {
	nocomplain := false
	if len(args) > 0 && args[0].String() == "-nocomplain" {
		nocomplain = true
		args = args[1:]
	}
	for _, a := range args {
		res := i.unsetVar(a.String())
		if res.code != ResultOK && !nocomplain {
			return res
		}
	}
	return OK("")
}

// incr creates a missing variable at zero before incrementing.
func cmdIncr(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 1 || len(args) > 2 {
		return wrongArgs("incr varName ?increment?")
	}
	delta := int64(1)
	if len(args) == 2 {
		v, err := AsInt(args[1])
		if err != nil {
			return Error(err.Error())
		}
		delta = v
	}
	name := args[0].String()
	cur := int64(0)
	if i.existsVar(name) {
		v, res := i.getVar(name)
		if res.code != ResultOK {
			return res
		}
		n, err := AsInt(v)
		if err != nil {
			return Error(err.Error())
		}
		cur = n
	}
	return i.setVar(name, i.Int(cur+delta))
}

func cmdAppend(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 1 {
		return wrongArgs("append varName ?value value ...?")
	}
	name := args[0].String()
	var b strings.Builder
	if i.existsVar(name) {
		v, res := i.getVar(name)
		if res.code != ResultOK {
			return res
		}
		b.WriteString(v.String())
	}
	for _, a := range args[1:] {
		b.WriteString(a.String())
	}
	return i.setVar(name, i.String(b.String()))
}

func cmdGlobal(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 1 {
		return wrongArgs("global varName ?varName ...?")
	}
	if i.active == 0 {
		return OK("")
	}
	for _, a := range args {
		name := a.String()
		local := name
		if idx := strings.LastIndex(name, "::"); idx >= 0 {
			local = name[idx+2:]
		}
		if res := i.linkNamespaceVar(local, "::", local); res.code != ResultOK {
			return res
		}
	}
	return OK("")
}

// variable links frame-local names to variables of the enclosing namespace
// and optionally initializes them.
func cmdVariable(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 1 {
		return wrongArgs("variable ?name value...? name ?value?")
	}
	ns := i.currentNamespace()
	for j := 0; j < len(args); j += 2 {
		name := args[j].String()
		if isQualified(name) {
			return Errorf("can't define \"%s\": name refers to an element in a namespace", name)
		}
		if i.frames[i.active].locals != ns {
			if res := i.linkNamespaceVar(name, ns.fullPath, name); res.code != ResultOK {
				return res
			}
		}
		if j+1 < len(args) {
			if res := i.setVar(name, args[j+1]); res.code != ResultOK {
				return res
			}
		} else if _, ok := ns.vars[name]; !ok {
			// declared but not yet set: reserve the name without a value
			delete(ns.dead, name)
		}
	}
	return OK("")
}

func cmdUpvar(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 2 {
		return wrongArgs("upvar ?level? otherVar localVar ?otherVar localVar ...?")
	}
	level := "1"
	if looksLikeLevel(args[0].String()) && len(args)%2 == 1 {
		level = args[0].String()
		args = args[1:]
	}
	if len(args) == 0 || len(args)%2 != 0 {
		return wrongArgs("upvar ?level? otherVar localVar ?otherVar localVar ...?")
	}
	target, res := i.frameAtLevel(level)
	if res.code != ResultOK {
		return res
	}
	for j := 0; j < len(args); j += 2 {
		other := args[j].String()
		local := args[j+1].String()
		if isQualified(other) {
			nsPart, tail := splitQualified(other)
			if res := i.linkNamespaceVar(local, nsPart, tail); res.code != ResultOK {
				return res
			}
			continue
		}
		if res := i.linkFrameVar(local, target, other); res.code != ResultOK {
			return res
		}
	}
	return OK("")
}

func cmdTrace(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 2 {
		return wrongArgs("trace add|remove|info variable name ?ops cmd?")
	}
	sub := args[0].String()
	kind := args[1].String()
	if kind != "variable" {
		return Errorf("bad trace type \"%s\": must be variable", kind)
	}
	switch sub {
	case "add", "remove":
		if len(args) != 5 {
			return wrongArgs("trace " + sub + " variable name ops cmd")
		}
		opsList, err := AsList(args[3])
		if err != nil {
			return Error(err.Error())
		}
		ops := make(map[string]bool, len(opsList))
		for _, o := range opsList {
			op := o.String()
			switch op {
			case "read", "write", "unset":
				ops[op] = true
			default:
				return Errorf("bad operation \"%s\": must be read, write, or unset", op)
			}
		}
		if len(ops) == 0 {
			return Errorf("bad operation list \"\": must be one or more of read, write, or unset")
		}
		if sub == "add" {
			return i.addTrace(args[2].String(), ops, args[4])
		}
		return i.removeTrace(args[2].String(), ops, args[4])
	case "info":
		if len(args) != 3 {
			return wrongArgs("trace info variable name")
		}
		v, res := i.traceInfo(args[2].String())
		if res.code != ResultOK {
			return res
		}
		return OK(v)
	default:
		return Errorf("bad option \"%s\": must be add, remove, or info", sub)
	}
}
