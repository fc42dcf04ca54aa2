package plume

import (
	"strconv"
	"strings"
)

// substBackslash decodes the backslash sequence starting at s[i] (which must
// be '\\') and returns the replacement text plus the index after the
// sequence. Unknown sequences yield the escaped character itself.
func substBackslash(s string, i int) (string, int) {
	if i+1 >= len(s) {
		return "\\", i + 1
	}
	c := s[i+1]
	switch c {
	case 'a':
		return "\a", i + 2
	case 'b':
		return "\b", i + 2
	case 'f':
		return "\f", i + 2
	case 'n':
		return "\n", i + 2
	case 'r':
		return "\r", i + 2
	case 't':
		return "\t", i + 2
	case 'v':
		return "\v", i + 2
	case '\n':
		return " ", i + 2
	case 'x':
		j := i + 2
		for j < len(s) && j < i+4 && isHexDigit(s[j]) {
			j++
		}
		if j > i+2 {
			v, _ := strconv.ParseUint(s[i+2:j], 16, 8)
			return string(rune(v)), j
		}
		return "x", i + 2
	case 'u':
		j := i + 2
		for j < len(s) && j < i+6 && isHexDigit(s[j]) {
			j++
		}
		if j > i+2 {
			v, _ := strconv.ParseUint(s[i+2:j], 16, 32)
			return string(rune(v)), j
		}
		return "u", i + 2
	case '0', '1', '2', '3', '4', '5', '6', '7':
		j := i + 1
		for j < len(s) && j < i+4 && s[j] >= '0' && s[j] <= '7' {
			j++
		}
		v, _ := strconv.ParseUint(s[i+1:j], 8, 32)
		return string(rune(v)), j
	default:
		return string(c), i + 2
	}
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// substWord materializes one parsed word: literal segments pass through,
// variable segments read through the variable store, command segments
// evaluate recursively. A word that is exactly one variable or command
// segment returns the underlying object so its internal representation
// survives (lindex $l keeps the list rep of $l).
func (i *Interp) substWord(w word) (*Obj, Result) {
	if len(w.segs) == 1 {
		seg := w.segs[0]
		switch seg.kind {
		case segLiteral:
			return i.String(seg.text), OK("")
		case segVar:
			obj, res := i.getVar(seg.text)
			if res.code != ResultOK {
				return nil, res
			}
			return obj, OK("")
		case segCommand:
			res := i.evalScript(seg.text)
			if res.code != ResultOK {
				return nil, res
			}
			return res.value(i), OK("")
		}
	}
	var b strings.Builder
	for _, seg := range w.segs {
		switch seg.kind {
		case segLiteral:
			b.WriteString(seg.text)
		case segVar:
			obj, res := i.getVar(seg.text)
			if res.code != ResultOK {
				return nil, res
			}
			b.WriteString(obj.String())
		case segCommand:
			res := i.evalScript(seg.text)
			if res.code != ResultOK {
				return nil, res
			}
			b.WriteString(res.value(i).String())
		}
	}
	return i.String(b.String()), OK("")
}

// substFlags selects which substitution passes substString performs.
type substFlags struct {
	backslashes bool
	variables   bool
	commands    bool
}

// substString runs one round of backslash, variable, and command
// substitution over s, the way the subst command does. Break and continue
// signals from a command substitution truncate the result per TCL rules.
func (i *Interp) substString(s string, flags substFlags) Result {
	var b strings.Builder
	pos := 0
	for pos < len(s) {
		c := s[pos]
		switch {
		case c == '\\' && flags.backslashes:
			sub, next := substBackslash(s, pos)
			b.WriteString(sub)
			pos = next
		case c == '$' && flags.variables:
			p := &parser{src: s, pos: pos, line: 1}
			name, ok := p.parseVarName()
			if !ok {
				b.WriteByte('$')
				pos++
				continue
			}
			obj, res := i.getVar(name)
			if res.code != ResultOK {
				return res
			}
			b.WriteString(obj.String())
			pos = p.pos
		case c == '[' && flags.commands:
			p := &parser{src: s, pos: pos, line: 1}
			script, err := p.parseBracket()
			if err != nil {
				return Error(err.Error())
			}
			res := i.evalScript(script)
			switch res.code {
			case ResultOK:
				b.WriteString(res.value(i).String())
			case ResultBreak:
				return OK(i.String(b.String()))
			case ResultContinue:
				// skip this substitution, keep going
			default:
				return res
			}
			pos = p.pos
		default:
			b.WriteByte(c)
			pos++
		}
	}
	return OK(i.String(b.String()))
}
