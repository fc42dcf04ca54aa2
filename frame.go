package plume

import (
	"fmt"
	"strconv"
	"strings"
)

// varLink represents a link to a variable in another frame (for upvar)
// or to a namespace variable (for the global and variable commands).
type varLink struct {
	frameIdx int    // index of the target frame in i.frames (-1 for namespace links)
	name     string // variable name in the target store
	nsPath   string // absolute namespace path when frameIdx == -1
}

// CallFrame represents an execution frame on the call stack.
// Each frame has its own variable environment; for the global frame and
// namespace-eval frames the environment IS the namespace itself.
type CallFrame struct {
	cmd      *Obj    // command being evaluated (proc/apply frames)
	args     []*Obj  // arguments to the command
	locals   *Namespace
	links    map[string]varLink // upvar links: local name -> target variable
	level    int                // depth along the caller chain (global frame is 0)
	caller   int                // index of the calling frame in i.frames
	ns       *Namespace         // current namespace context
	line     int                // line number where the command was invoked (0 = not set)
	isProc   bool               // procedure or apply frame
	procName string
	lambda   *Obj // lambda expression for apply frames (nil = not apply)
}

// pushFrame appends a frame and makes it active.
func (i *Interp) pushFrame(f *CallFrame) Result {
	if len(i.frames) >= i.getRecursionLimit() {
		return Error("too many nested evaluations (infinite loop?)")
	}
	f.caller = i.active
	f.level = i.frames[i.active].level + 1
	i.frames = append(i.frames, f)
	i.active = len(i.frames) - 1
	if i.frameHighWater < len(i.frames) {
		i.frameHighWater = len(i.frames)
	}
	return OK("")
}

// popFrame removes the most recently pushed frame. The active frame reverts
// to the popped frame's caller, which keeps uplevel retargeting intact.
func (i *Interp) popFrame() {
	f := i.frames[len(i.frames)-1]
	i.frames = i.frames[:len(i.frames)-1]
	i.active = f.caller
}

// frameAtLevel resolves a level spec against the active frame's caller
// chain. Level 0 is the active frame, positive n walks toward the caller,
// and "#N" addresses the frame whose absolute level is N (#0 = global).
func (i *Interp) frameAtLevel(spec string) (int, Result) {
	if strings.HasPrefix(spec, "#") {
		n, err := strconv.Atoi(spec[1:])
		if err != nil || n < 0 {
			return 0, Error(badLevel(spec))
		}
		idx := i.active
		for idx >= 0 && i.frames[idx].level != n {
			idx = i.frames[idx].caller
		}
		if idx < 0 {
			return 0, Error(badLevel(spec))
		}
		return idx, OK("")
	}
	n, err := strconv.Atoi(spec)
	if err != nil || n < 0 {
		return 0, Error(badLevel(spec))
	}
	idx := i.active
	for k := 0; k < n; k++ {
		idx = i.frames[idx].caller
		if idx < 0 {
			return 0, Error(badLevel(spec))
		}
	}
	return idx, OK("")
}

// looksLikeLevel reports whether an argument should be treated as a level
// spec by uplevel/upvar (an integer or a #-prefixed integer).
func looksLikeLevel(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '#' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// uplevelEval evaluates a script with the given frame temporarily active.
// The original active frame is restored even when the script errors.
func (i *Interp) uplevelEval(frameIdx int, script string) Result {
	saved := i.active
	i.active = frameIdx
	res := i.evalScript(script)
	i.active = saved
	return res
}

// tailcallReq is a pending tailcall: the replacement command words plus the
// namespace of the tailcalling procedure, used for command resolution.
type tailcallReq struct {
	words []*Obj
	ns    *Namespace
}

// procLevel counts procedure frames along the caller chain; this is the
// value info level reports.
func (i *Interp) procLevel() int {
	n := 0
	for idx := i.active; idx >= 0; idx = i.frames[idx].caller {
		if i.frames[idx].isProc {
			n++
		}
	}
	return n
}

// procFrameAt walks the caller chain to the procedure frame addressed by an
// info level argument: positive is absolute proc depth, zero or negative is
// relative to the current one.
func (i *Interp) procFrameAt(n int) (*CallFrame, error) {
	cur := i.procLevel()
	want := n
	if n <= 0 {
		want = cur + n
	}
	if want <= 0 || want > cur {
		return nil, fmt.Errorf("bad level \"%d\"", n)
	}
	depth := 0
	var frames []*CallFrame
	for idx := i.active; idx >= 0; idx = i.frames[idx].caller {
		if i.frames[idx].isProc {
			frames = append(frames, i.frames[idx])
		}
	}
	// frames is innermost first; innermost has depth cur
	depth = cur - want
	if depth < 0 || depth >= len(frames) {
		return nil, fmt.Errorf("bad level \"%d\"", n)
	}
	return frames[depth], nil
}
