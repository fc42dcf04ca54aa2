package plume

// maxLinkHops bounds transitive link resolution. Cycles are rejected at
// link-creation time; the bound catches anything that slips past.
const maxLinkHops = 100

// varTrace is one registered variable trace. firing suppresses re-entrant
// invocation while the trace body runs.
type varTrace struct {
	ops    map[string]bool // "read", "write", "unset"
	cmd    *Obj            // command prefix
	firing bool
}

// resolveVar maps a variable name in the active frame to its owning store
// and real name, following links transitively. viaLink reports whether any
// link hop (upvar/global/variable) was taken; qualified names go straight
// to the namespace tree and do not count.
func (i *Interp) resolveVar(name, verb string) (*Namespace, string, bool, Result) {
	if isQualified(name) {
		ns, tail, ok := i.resolveVarContainer(name)
		if !ok {
			return nil, "", false, Error(noSuchVariable(verb, name))
		}
		return ns, tail, false, OK("")
	}
	f := i.frames[i.active]
	cur := name
	viaLink := false
	for hops := 0; hops < maxLinkHops; hops++ {
		l, ok := f.links[cur]
		if !ok {
			return f.locals, cur, viaLink, OK("")
		}
		viaLink = true
		if l.frameIdx < 0 {
			ns, ok := i.namespaces[l.nsPath]
			if !ok {
				return nil, "", false, Error(noSuchVariable(verb, name))
			}
			return ns, l.name, true, OK("")
		}
		if l.frameIdx >= len(i.frames) {
			return nil, "", false, Error(noSuchVariable(verb, name))
		}
		f = i.frames[l.frameIdx]
		cur = l.name
	}
	return nil, "", false, Errorf("too many nested upvar links for \"%s\"", name)
}

// getVar reads a variable through the active frame. Read traces fire before
// the read; a trace error fails the read itself.
func (i *Interp) getVar(name string) (*Obj, Result) {
	ns, real, _, res := i.resolveVar(name, "read")
	if res.code != ResultOK {
		return nil, res
	}
	if res := i.fireTraces(ns, real, name, "read"); res.code != ResultOK {
		return nil, Errorf("can't read \"%s\": %s", name, res.value(i).String())
	}
	v, ok := ns.vars[real]
	if !ok {
		return nil, Error(noSuchVariable("read", name))
	}
	return v, OK("")
}

// setVar writes a variable through the active frame. Writing through a link
// whose target was explicitly unset fails (the alias dangles, it is not
// resurrected); a direct write clears the tombstone.
func (i *Interp) setVar(name string, val *Obj) Result {
	ns, real, viaLink, res := i.resolveVar(name, "set")
	if res.code != ResultOK {
		return res
	}
	if viaLink && ns.dead[real] {
		return Error(noSuchVariable("set", name))
	}
	delete(ns.dead, real)
	ns.vars[real] = val
	if res := i.fireTraces(ns, real, name, "write"); res.code != ResultOK {
		return Errorf("can't set \"%s\": %s", name, res.value(i).String())
	}
	return OK(val)
}

// unsetVar removes a variable. Unsetting an alias removes only the alias;
// unsetting an owned variable fires unset traces, drops the slot and its
// traces, and leaves a tombstone so dangling aliases stay dangling.
func (i *Interp) unsetVar(name string) Result {
	f := i.frames[i.active]
	if !isQualified(name) {
		if _, ok := f.links[name]; ok {
			delete(f.links, name)
			return OK("")
		}
	}
	ns, real, _, res := i.resolveVar(name, "unset")
	if res.code != ResultOK {
		return res
	}
	if _, ok := ns.vars[real]; !ok {
		return Error(noSuchVariable("unset", name))
	}
	if res := i.fireTraces(ns, real, name, "unset"); res.code != ResultOK {
		return Errorf("can't unset \"%s\": %s", name, res.value(i).String())
	}
	delete(ns.vars, real)
	delete(ns.traces, real)
	ns.dead[real] = true
	return OK("")
}

// existsVar reports whether a variable resolves to an existing slot.
// Resolution failures count as "does not exist".
func (i *Interp) existsVar(name string) bool {
	ns, real, _, res := i.resolveVar(name, "read")
	if res.code != ResultOK {
		return false
	}
	_, ok := ns.vars[real]
	return ok
}

// linkFrameVar creates an upvar-style alias in the active frame pointing at
// targetName in the frame at targetIdx. Cycles are rejected here, at
// creation time, by walking the prospective chain.
func (i *Interp) linkFrameVar(localName string, targetIdx int, targetName string) Result {
	f := i.frames[i.active]
	if _, owned := f.locals.vars[localName]; owned {
		return Errorf("variable \"%s\" already exists", localName)
	}
	if targetIdx == i.active && targetName == localName {
		return Errorf("can't upvar from variable to itself")
	}
	// walk the chain from the target; reaching the new link is a cycle
	idx, cur := targetIdx, targetName
	for hops := 0; hops < maxLinkHops; hops++ {
		if idx == i.active && cur == localName {
			return Errorf("can't upvar from variable to itself")
		}
		l, ok := i.frames[idx].links[cur]
		if !ok || l.frameIdx < 0 {
			break
		}
		idx, cur = l.frameIdx, l.name
	}
	if f.links == nil {
		f.links = make(map[string]varLink)
	}
	f.links[localName] = varLink{frameIdx: targetIdx, name: targetName}
	return OK("")
}

// linkNamespaceVar creates an alias in the active frame pointing at a
// namespace variable (the global and variable commands).
func (i *Interp) linkNamespaceVar(localName, nsPath, nsName string) Result {
	f := i.frames[i.active]
	if _, owned := f.locals.vars[localName]; owned {
		return Errorf("variable \"%s\" already exists", localName)
	}
	if f.links == nil {
		f.links = make(map[string]varLink)
	}
	f.links[localName] = varLink{frameIdx: -1, name: nsName, nsPath: nsPath}
	return OK("")
}

// addTrace registers a trace on a variable; the newest registration fires
// first. The variable need not exist yet.
func (i *Interp) addTrace(name string, ops map[string]bool, cmd *Obj) Result {
	ns, real, _, res := i.resolveVar(name, "trace")
	if res.code != ResultOK {
		return res
	}
	t := &varTrace{ops: ops, cmd: cmd}
	ns.traces[real] = append([]*varTrace{t}, ns.traces[real]...)
	return OK("")
}

// removeTrace drops the first trace matching ops and command prefix.
func (i *Interp) removeTrace(name string, ops map[string]bool, cmd *Obj) Result {
	ns, real, _, res := i.resolveVar(name, "trace")
	if res.code != ResultOK {
		return res
	}
	list := ns.traces[real]
	for idx, t := range list {
		if t.cmd.String() == cmd.String() && sameOps(t.ops, ops) {
			ns.traces[real] = append(list[:idx], list[idx+1:]...)
			return OK("")
		}
	}
	return OK("")
}

// traceInfo lists registered traces as {ops cmd} pairs, newest first.
func (i *Interp) traceInfo(name string) (*Obj, Result) {
	ns, real, _, res := i.resolveVar(name, "trace")
	if res.code != ResultOK {
		return nil, res
	}
	var entries []*Obj
	for _, t := range ns.traces[real] {
		var ops []*Obj
		for _, op := range []string{"read", "write", "unset"} {
			if t.ops[op] {
				ops = append(ops, i.String(op))
			}
		}
		entries = append(entries, i.List(i.List(ops...), t.cmd))
	}
	return i.List(entries...), OK("")
}

func sameOps(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// fireTraces runs the traces registered for op on a variable, newest first.
// A trace is suppressed while it is itself firing, so a trace body touching
// its own variable does not storm. The first trace error stops the run.
func (i *Interp) fireTraces(ns *Namespace, real, accessName, op string) Result {
	list := ns.traces[real]
	if len(list) == 0 {
		return OK("")
	}
	for _, t := range list {
		if !t.ops[op] || t.firing {
			continue
		}
		prefix, err := AsList(t.cmd)
		if err != nil {
			prefix = []*Obj{t.cmd}
		}
		words := make([]*Obj, 0, len(prefix)+3)
		words = append(words, prefix...)
		words = append(words, i.String(accessName), i.String(""), i.String(op))
		t.firing = true
		res := i.invokeWords(words)
		t.firing = false
		if res.code == ResultError {
			return res
		}
	}
	return OK("")
}
