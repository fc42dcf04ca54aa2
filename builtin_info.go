package plume

import "sort"

func registerIntroCommands(i *Interp) {
	i.register("info", cmdInfo)
	i.register("namespace", cmdNamespace)
	i.register("rename", cmdRename)
}

func cmdInfo(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 1 {
		return wrongArgs("info subcommand ?arg ...?")
	}
	switch args[0].String() {
	case "exists":
		if len(args) != 2 {
			return wrongArgs("info exists varName")
		}
		return OK(i.Bool(i.existsVar(args[1].String())))
	case "level":
		return infoLevel(i, args[1:])
	case "frame":
		return infoFrame(i, args[1:])
	case "locals":
		return infoLocals(i, args[1:])
	case "globals":
		return infoGlobals(i, args[1:])
	case "commands":
		return infoCommands(i, args[1:])
	case "body":
		return infoProcField(i, args[1:], "body")
	case "args":
		return infoProcField(i, args[1:], "args")
	default:
		return Errorf("unknown or ambiguous subcommand \"%s\": must be args, body, commands, exists, frame, globals, level, or locals", args[0].String())
	}
}

// infoLevel reports the procedure call depth, or with an argument the
// invocation words of the addressed procedure frame.
func infoLevel(i *Interp, args []*Obj) Result {
	if len(args) == 0 {
		return OK(i.Int(int64(i.procLevel())))
	}
	if len(args) != 1 {
		return wrongArgs("info level ?number?")
	}
	n, err := AsInt(args[0])
	if err != nil {
		return Error(err.Error())
	}
	f, err := i.procFrameAt(int(n))
	if err != nil {
		return Error(err.Error())
	}
	words := make([]*Obj, 0, len(f.args)+1)
	if f.cmd != nil {
		words = append(words, f.cmd)
	} else {
		words = append(words, i.String(f.procName))
	}
	words = append(words, f.args...)
	return OK(i.List(words...))
}

// infoFrame reports the evaluation stack depth, or with an argument a
// description of one frame along the caller chain (1 = global).
func infoFrame(i *Interp, args []*Obj) Result {
	depth := i.frames[i.active].level + 1
	if len(args) == 0 {
		return OK(i.Int(int64(depth)))
	}
	if len(args) != 1 {
		return wrongArgs("info frame ?number?")
	}
	n, err := AsInt(args[0])
	if err != nil {
		return Error(err.Error())
	}
	want := int(n)
	if want <= 0 {
		want = depth + want
	}
	if want <= 0 || want > depth {
		return Errorf("bad level \"%s\"", args[0].String())
	}
	idx := i.active
	for i.frames[idx].level != want-1 {
		idx = i.frames[idx].caller
	}
	f := i.frames[idx]
	d := &DictType{Items: make(map[string]*Obj)}
	kind := "eval"
	if f.lambda != nil {
		kind = "lambda"
	} else if f.isProc {
		kind = "proc"
	}
	d = d.With("type", i.String(kind))
	d = d.With("level", i.Int(int64(want)))
	d = d.With("line", i.Int(int64(f.line)))
	if f.isProc {
		d = d.With("proc", i.String(f.procName))
		words := make([]*Obj, 0, len(f.args)+1)
		if f.cmd != nil {
			words = append(words, f.cmd)
		}
		words = append(words, f.args...)
		d = d.With("cmd", i.List(words...))
	}
	return OK(i.Obj(d))
}

// matchPattern implements glob matching with * and ? only, enough for the
// introspection commands.
func matchPattern(pattern, s string) bool {
	if pattern == "" {
		return s == ""
	}
	switch pattern[0] {
	case '*':
		for j := 0; j <= len(s); j++ {
			if matchPattern(pattern[1:], s[j:]) {
				return true
			}
		}
		return false
	case '?':
		return s != "" && matchPattern(pattern[1:], s[1:])
	default:
		return s != "" && s[0] == pattern[0] && matchPattern(pattern[1:], s[1:])
	}
}

func nameListResult(i *Interp, names []string, args []*Obj) Result {
	pattern := ""
	if len(args) == 1 {
		pattern = args[0].String()
	}
	sort.Strings(names)
	out := make([]*Obj, 0, len(names))
	for _, n := range names {
		if pattern != "" && !matchPattern(pattern, n) {
			continue
		}
		out = append(out, i.String(n))
	}
	return OK(i.List(out...))
}

// infoLocals lists the active frame's own variables and its aliases.
func infoLocals(i *Interp, args []*Obj) Result {
	if len(args) > 1 {
		return wrongArgs("info locals ?pattern?")
	}
	f := i.frames[i.active]
	names := make([]string, 0, len(f.locals.vars)+len(f.links))
	for n := range f.locals.vars {
		names = append(names, n)
	}
	for n := range f.links {
		names = append(names, n)
	}
	return nameListResult(i, names, args)
}

func infoGlobals(i *Interp, args []*Obj) Result {
	if len(args) > 1 {
		return wrongArgs("info globals ?pattern?")
	}
	names := make([]string, 0, len(i.globalNamespace.vars))
	for n := range i.globalNamespace.vars {
		names = append(names, n)
	}
	return nameListResult(i, names, args)
}

// infoCommands lists commands visible from the current namespace.
func infoCommands(i *Interp, args []*Obj) Result {
	if len(args) > 1 {
		return wrongArgs("info commands ?pattern?")
	}
	seen := make(map[string]bool)
	for n := range i.currentNamespace().commands {
		seen[n] = true
	}
	for n := range i.globalNamespace.commands {
		seen[n] = true
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	return nameListResult(i, names, args)
}

func infoProcField(i *Interp, args []*Obj, field string) Result {
	if len(args) != 1 {
		return wrongArgs("info " + field + " procname")
	}
	name := args[0].String()
	c := i.resolveCommand(name)
	if c == nil || c.proc == nil {
		return Errorf("\"%s\" isn't a procedure", name)
	}
	if field == "body" {
		return OK(c.proc.body)
	}
	return OK(c.proc.params)
}

func cmdNamespace(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 1 {
		return wrongArgs("namespace subcommand ?arg ...?")
	}
	switch args[0].String() {
	case "eval":
		return namespaceEval(i, args[1:])
	case "current":
		if len(args) != 1 {
			return wrongArgs("namespace current")
		}
		return OK(i.currentNamespace().fullPath)
	case "children":
		return namespaceChildren(i, args[1:])
	case "parent":
		return namespaceParent(i, args[1:])
	case "delete":
		for _, a := range args[1:] {
			ns := i.findNamespace(a.String(), false)
			if ns == nil {
				return Errorf("unknown namespace \"%s\" in namespace delete command", a.String())
			}
			i.deleteNamespace(ns)
		}
		return OK("")
	case "exists":
		if len(args) != 2 {
			return wrongArgs("namespace exists name")
		}
		return OK(i.Bool(i.findNamespace(args[1].String(), false) != nil))
	default:
		return Errorf("unknown or ambiguous subcommand \"%s\": must be children, current, delete, eval, exists, or parent", args[0].String())
	}
}

// namespaceEval runs a script in a frame whose variable environment is the
// namespace itself: plain set inside creates namespace variables.
func namespaceEval(i *Interp, args []*Obj) Result {
	if len(args) < 2 {
		return wrongArgs("namespace eval name arg ?arg ...?")
	}
	ns := i.findNamespace(args[0].String(), true)
	frame := &CallFrame{
		locals: ns,
		links:  make(map[string]varLink),
		ns:     ns,
		line:   i.cmdLine,
	}
	if res := i.pushFrame(frame); res.code != ResultOK {
		return res
	}
	var script string
	if len(args) == 2 {
		script = args[1].String()
	} else {
		script = concatWords(args[1:])
	}
	res := i.evalScript(script)
	i.popFrame()
	if res.code == ResultReturn {
		res = i.applyReturnLevel(res)
	}
	return res
}

func namespaceChildren(i *Interp, args []*Obj) Result {
	if len(args) > 1 {
		return wrongArgs("namespace children ?name?")
	}
	ns := i.currentNamespace()
	if len(args) == 1 {
		ns = i.findNamespace(args[0].String(), false)
		if ns == nil {
			return Errorf("unknown namespace \"%s\"", args[0].String())
		}
	}
	paths := make([]string, 0, len(ns.children))
	for _, child := range ns.children {
		paths = append(paths, child.fullPath)
	}
	sort.Strings(paths)
	out := make([]*Obj, len(paths))
	for j, p := range paths {
		out[j] = i.String(p)
	}
	return OK(i.List(out...))
}

func namespaceParent(i *Interp, args []*Obj) Result {
	if len(args) > 1 {
		return wrongArgs("namespace parent ?name?")
	}
	ns := i.currentNamespace()
	if len(args) == 1 {
		ns = i.findNamespace(args[0].String(), false)
		if ns == nil {
			return Errorf("unknown namespace \"%s\"", args[0].String())
		}
	}
	if ns.parent == nil {
		return OK("")
	}
	return OK(ns.parent.fullPath)
}

// rename moves a command to a new name; renaming to the empty string
// deletes it.
func cmdRename(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 2 {
		return wrongArgs("rename oldName newName")
	}
	oldName := args[0].String()
	newName := args[1].String()

	oldNS, oldTail := i.currentNamespace(), oldName
	if isQualified(oldName) {
		nsPart, t := splitQualified(oldName)
		oldNS = i.findNamespace(nsPart, false)
		oldTail = t
	}
	var c *Command
	if oldNS != nil {
		c = oldNS.commands[oldTail]
	}
	if c == nil && !isQualified(oldName) {
		oldNS = i.globalNamespace
		c = oldNS.commands[oldTail]
	}
	if c == nil {
		return Errorf("can't rename \"%s\": command doesn't exist", oldName)
	}

	if newName == "" {
		delete(oldNS.commands, oldTail)
		if oldNS == i.globalNamespace {
			delete(i.Commands, oldTail)
		}
		return OK("")
	}

	newNS, newTail := i.currentNamespace(), newName
	if isQualified(newName) {
		nsPart, t := splitQualified(newName)
		newNS = i.findNamespace(nsPart, true)
		newTail = t
	}
	if _, exists := newNS.commands[newTail]; exists {
		return Errorf("can't rename to \"%s\": command already exists", newName)
	}
	delete(oldNS.commands, oldTail)
	if oldNS == i.globalNamespace {
		if fn, ok := i.Commands[oldTail]; ok {
			delete(i.Commands, oldTail)
			if newNS == i.globalNamespace {
				i.Commands[newTail] = fn
			}
		}
	}
	newNS.commands[newTail] = c
	if c.proc != nil {
		c.proc.name = newTail
		c.proc.ns = newNS
	}
	return OK("")
}
