package plume

import "strings"

// Namespace is a node in the hierarchical name registry. It holds commands
// and variables; the variable maps double as the locals container for the
// global frame and for namespace-eval frames.
type Namespace struct {
	name     string
	fullPath string
	parent   *Namespace
	children map[string]*Namespace
	vars     map[string]*Obj
	dead     map[string]bool        // tombstones for explicitly unset variables
	traces   map[string][]*varTrace // per-variable trace lists, most recent first
	commands map[string]*Command
}

func newNamespace(name, fullPath string, parent *Namespace) *Namespace {
	return &Namespace{
		name:     name,
		fullPath: fullPath,
		parent:   parent,
		children: make(map[string]*Namespace),
		vars:     make(map[string]*Obj),
		dead:     make(map[string]bool),
		traces:   make(map[string][]*varTrace),
		commands: make(map[string]*Command),
	}
}

// Command is an entry in a namespace's command table: either a Go-backed
// command or a user-defined procedure.
type Command struct {
	fn   CommandFunc
	proc *Procedure
}

// Procedure is a user-defined procedure (or an apply lambda).
type Procedure struct {
	name   string
	params *Obj
	body   *Obj
	ns     *Namespace
	lambda *Obj // lambda expression for apply frames (nil = regular proc)
}

func isQualified(name string) bool {
	return strings.Contains(name, "::")
}

// splitQualified splits "::a::b::x" into the namespace part "::a::b" and
// the tail "x". A name like "::x" has namespace part "::".
func splitQualified(name string) (string, string) {
	idx := strings.LastIndex(name, "::")
	nsPart := name[:idx]
	tail := name[idx+2:]
	if nsPart == "" && strings.HasPrefix(name, "::") {
		nsPart = "::"
	}
	return nsPart, tail
}

// findNamespace resolves a namespace path. Relative paths resolve against
// the current frame's namespace. With create set, missing nodes are built.
func (i *Interp) findNamespace(path string, create bool) *Namespace {
	ns := i.currentNamespace()
	if strings.HasPrefix(path, "::") {
		ns = i.globalNamespace
		path = path[2:]
	}
	if path == "" {
		return ns
	}
	for _, part := range strings.Split(path, "::") {
		if part == "" {
			continue
		}
		child, ok := ns.children[part]
		if !ok {
			if !create {
				return nil
			}
			full := ns.fullPath + "::" + part
			if ns.fullPath == "::" {
				full = "::" + part
			}
			child = newNamespace(part, full, ns)
			ns.children[part] = child
			i.namespaces[full] = child
		}
		ns = child
	}
	return ns
}

// resolveVarContainer maps a qualified variable name to its namespace and
// bare name. The namespace must already exist.
func (i *Interp) resolveVarContainer(name string) (*Namespace, string, bool) {
	nsPart, tail := splitQualified(name)
	var ns *Namespace
	if nsPart == "::" || nsPart == "" {
		ns = i.globalNamespace
	} else {
		ns = i.findNamespace(nsPart, false)
	}
	if ns == nil || tail == "" {
		return nil, "", false
	}
	return ns, tail, true
}

// resolveCommand looks a command up with the fixed precedence:
// exact qualified match, then current namespace, then global.
func (i *Interp) resolveCommand(name string) *Command {
	return i.resolveCommandIn(name, i.currentNamespace())
}

// resolveCommandIn is resolveCommand against an explicit namespace context
// (tailcall resolves in the tailcalling procedure's namespace).
func (i *Interp) resolveCommandIn(name string, cur *Namespace) *Command {
	if isQualified(name) {
		nsPart, tail := splitQualified(name)
		var ns *Namespace
		if nsPart == "::" || nsPart == "" {
			ns = i.globalNamespace
		} else if strings.HasPrefix(nsPart, "::") {
			ns = i.findNamespace(nsPart, false)
		} else {
			// relative qualified name: current namespace first, then global
			ns = i.findNamespaceFrom(cur, nsPart)
			if ns == nil {
				ns = i.findNamespaceFrom(i.globalNamespace, nsPart)
			}
		}
		if ns == nil {
			return nil
		}
		return ns.commands[tail]
	}
	if c, ok := cur.commands[name]; ok {
		return c
	}
	if c, ok := i.globalNamespace.commands[name]; ok {
		return c
	}
	return nil
}

// findNamespaceFrom walks a relative path from a starting namespace.
func (i *Interp) findNamespaceFrom(start *Namespace, path string) *Namespace {
	ns := start
	for _, part := range strings.Split(path, "::") {
		if part == "" {
			continue
		}
		child, ok := ns.children[part]
		if !ok {
			return nil
		}
		ns = child
	}
	return ns
}

// deleteNamespace removes a namespace subtree and its registrations.
// The global namespace cannot be deleted.
func (i *Interp) deleteNamespace(ns *Namespace) {
	if ns == i.globalNamespace {
		return
	}
	for _, child := range ns.children {
		i.deleteNamespace(child)
	}
	delete(i.namespaces, ns.fullPath)
	if ns.parent != nil {
		delete(ns.parent.children, ns.name)
	}
}

// currentNamespace returns the active frame's namespace.
func (i *Interp) currentNamespace() *Namespace {
	return i.frames[i.active].ns
}
