package plume

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// The expr evaluator: a recursive-descent parser over one expression string.
// Operands are substituted eagerly ($var, [script], quoted and braced
// strings); arithmetic is int64 until a floating-point operand appears.

// exprValue is one evaluated operand. Numeric values keep their kind;
// non-numeric operands are strings and only the string operators and
// comparisons accept them.
type exprValue struct {
	isInt bool
	isStr bool
	i     int64
	d     float64
	s     string
}

func exprInt(v int64) exprValue     { return exprValue{isInt: true, i: v} }
func exprDouble(v float64) exprValue { return exprValue{d: v} }
func exprStr(s string) exprValue    { return exprValue{isStr: true, s: s} }

func exprBool(b bool) exprValue {
	if b {
		return exprInt(1)
	}
	return exprInt(0)
}

func (v exprValue) text() string {
	switch {
	case v.isStr:
		return v.s
	case v.isInt:
		return strconv.FormatInt(v.i, 10)
	default:
		return DoubleType(v.d).UpdateString()
	}
}

func (v exprValue) float() float64 {
	if v.isInt {
		return float64(v.i)
	}
	return v.d
}

// truth applies the boolean rules: numeric nonzero, or the boolean words.
func (v exprValue) truth() (bool, error) {
	if v.isInt {
		return v.i != 0, nil
	}
	if !v.isStr {
		return v.d != 0, nil
	}
	switch strings.ToLower(v.s) {
	case "true", "yes", "on":
		return true, nil
	case "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("expected boolean value but got %q", v.s)
}

// exprError carries an ARITH error code list alongside the message.
type exprError struct {
	msg  string
	code []string
}

func (e *exprError) Error() string { return e.msg }

func arithError(code, msg string) error {
	return &exprError{msg: msg, code: []string{"ARITH", code, msg}}
}

// exprParser walks one expression string. It borrows the script parser for
// bracketed command substitution so the two agree on nesting rules.
type exprParser struct {
	i   *Interp
	src string
	pos int
}

// evalExpr evaluates an expression string to a result object.
func (i *Interp) evalExpr(src string) Result {
	p := &exprParser{i: i, src: src}
	v, err := p.parseTernary()
	if err != nil {
		return i.exprFail(err)
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return Errorf("syntax error in expression %q", src)
	}
	switch {
	case v.isStr:
		return OK(i.String(v.s))
	case v.isInt:
		return OK(i.Int(v.i))
	default:
		return OK(i.Double(v.d))
	}
}

// exprFail converts an evaluation error to an error result, seeding the
// trace with the ARITH code when one is attached.
func (i *Interp) exprFail(err error) Result {
	if ae, ok := err.(*exprError); ok {
		parts := make([]*Obj, len(ae.code))
		for j, c := range ae.code {
			parts[j] = i.String(c)
		}
		if !i.errTrace.active {
			i.beginError(ae.msg, "", i.List(parts...))
		}
		return Error(ae.msg)
	}
	return Error(err.Error())
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return
		}
		p.pos++
	}
}

// peekOp reports whether the upcoming text is exactly op, without consuming.
// Longer operators must be checked before their prefixes.
func (p *exprParser) peekOp(op string) bool {
	p.skipSpace()
	if !strings.HasPrefix(p.src[p.pos:], op) {
		return false
	}
	// "e" of eq/ne/in/ni must not swallow identifiers
	last := op[len(op)-1]
	if last >= 'a' && last <= 'z' {
		next := p.pos + len(op)
		if next < len(p.src) && isBareExprChar(p.src[next]) {
			return false
		}
	}
	return true
}

func (p *exprParser) takeOp(op string) bool {
	if p.peekOp(op) {
		p.pos += len(op)
		return true
	}
	return false
}

func isBareExprChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// parseTernary handles cond ? a : b with lazy branch evaluation.
func (p *exprParser) parseTernary() (exprValue, error) {
	cond, err := p.parseOr()
	if err != nil {
		return exprValue{}, err
	}
	if !p.takeOp("?") {
		return cond, nil
	}
	b, err := cond.truth()
	if err != nil {
		return exprValue{}, err
	}
	// both branches must parse; only the taken one keeps its value
	left, err := p.parseTernary()
	if err != nil {
		return exprValue{}, err
	}
	if !p.takeOp(":") {
		return exprValue{}, fmt.Errorf("missing \":\" in ternary expression")
	}
	right, err := p.parseTernary()
	if err != nil {
		return exprValue{}, err
	}
	if b {
		return left, nil
	}
	return right, nil
}

func (p *exprParser) parseOr() (exprValue, error) {
	v, err := p.parseAnd()
	if err != nil {
		return exprValue{}, err
	}
	for p.takeOp("||") {
		b, err := v.truth()
		if err != nil {
			return exprValue{}, err
		}
		rhs, err := p.parseAnd()
		if err != nil {
			return exprValue{}, err
		}
		if b {
			v = exprBool(true)
			continue
		}
		rb, err := rhs.truth()
		if err != nil {
			return exprValue{}, err
		}
		v = exprBool(rb)
	}
	return v, nil
}

func (p *exprParser) parseAnd() (exprValue, error) {
	v, err := p.parseBitOr()
	if err != nil {
		return exprValue{}, err
	}
	for {
		p.skipSpace()
		if !strings.HasPrefix(p.src[p.pos:], "&&") {
			return v, nil
		}
		p.pos += 2
		b, err := v.truth()
		if err != nil {
			return exprValue{}, err
		}
		rhs, err := p.parseBitOr()
		if err != nil {
			return exprValue{}, err
		}
		if !b {
			v = exprBool(false)
			continue
		}
		rb, err := rhs.truth()
		if err != nil {
			return exprValue{}, err
		}
		v = exprBool(rb)
	}
}

func (p *exprParser) parseBitOr() (exprValue, error) {
	v, err := p.parseBitXor()
	if err != nil {
		return exprValue{}, err
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != '|' ||
			(p.pos+1 < len(p.src) && p.src[p.pos+1] == '|') {
			return v, nil
		}
		p.pos++
		rhs, err := p.parseBitXor()
		if err != nil {
			return exprValue{}, err
		}
		v, err = intBinop("|", v, rhs)
		if err != nil {
			return exprValue{}, err
		}
	}
}

func (p *exprParser) parseBitXor() (exprValue, error) {
	v, err := p.parseBitAnd()
	if err != nil {
		return exprValue{}, err
	}
	for p.takeOp("^") {
		rhs, err := p.parseBitAnd()
		if err != nil {
			return exprValue{}, err
		}
		v, err = intBinop("^", v, rhs)
		if err != nil {
			return exprValue{}, err
		}
	}
	return v, nil
}

func (p *exprParser) parseBitAnd() (exprValue, error) {
	v, err := p.parseEquality()
	if err != nil {
		return exprValue{}, err
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != '&' ||
			(p.pos+1 < len(p.src) && p.src[p.pos+1] == '&') {
			return v, nil
		}
		p.pos++
		rhs, err := p.parseEquality()
		if err != nil {
			return exprValue{}, err
		}
		v, err = intBinop("&", v, rhs)
		if err != nil {
			return exprValue{}, err
		}
	}
}

func (p *exprParser) parseEquality() (exprValue, error) {
	v, err := p.parseRelational()
	if err != nil {
		return exprValue{}, err
	}
	for {
		var op string
		switch {
		case p.takeOp("=="):
			op = "=="
		case p.takeOp("!="):
			op = "!="
		case p.takeOp("eq"):
			op = "eq"
		case p.takeOp("ne"):
			op = "ne"
		default:
			return v, nil
		}
		rhs, err := p.parseRelational()
		if err != nil {
			return exprValue{}, err
		}
		switch op {
		case "eq":
			v = exprBool(v.text() == rhs.text())
		case "ne":
			v = exprBool(v.text() != rhs.text())
		default:
			eq, err := valuesEqual(v, rhs)
			if err != nil {
				return exprValue{}, err
			}
			v = exprBool(eq == (op == "=="))
		}
	}
}

func (p *exprParser) parseRelational() (exprValue, error) {
	v, err := p.parseShift()
	if err != nil {
		return exprValue{}, err
	}
	for {
		var op string
		switch {
		case p.takeOp("<="):
			op = "<="
		case p.takeOp(">="):
			op = ">="
		case p.peekOp("<<") || p.peekOp(">>"):
			return v, nil
		case p.takeOp("<"):
			op = "<"
		case p.takeOp(">"):
			op = ">"
		default:
			return v, nil
		}
		rhs, err := p.parseShift()
		if err != nil {
			return exprValue{}, err
		}
		c, err := compareValues(v, rhs)
		if err != nil {
			return exprValue{}, err
		}
		switch op {
		case "<":
			v = exprBool(c < 0)
		case ">":
			v = exprBool(c > 0)
		case "<=":
			v = exprBool(c <= 0)
		case ">=":
			v = exprBool(c >= 0)
		}
	}
}

func (p *exprParser) parseShift() (exprValue, error) {
	v, err := p.parseAdditive()
	if err != nil {
		return exprValue{}, err
	}
	for {
		var op string
		switch {
		case p.takeOp("<<"):
			op = "<<"
		case p.takeOp(">>"):
			op = ">>"
		default:
			return v, nil
		}
		rhs, err := p.parseAdditive()
		if err != nil {
			return exprValue{}, err
		}
		v, err = intBinop(op, v, rhs)
		if err != nil {
			return exprValue{}, err
		}
	}
}

func (p *exprParser) parseAdditive() (exprValue, error) {
	v, err := p.parseMultiplicative()
	if err != nil {
		return exprValue{}, err
	}
	for {
		var op byte
		switch {
		case p.takeOp("+"):
			op = '+'
		case p.takeOp("-"):
			op = '-'
		default:
			return v, nil
		}
		rhs, err := p.parseMultiplicative()
		if err != nil {
			return exprValue{}, err
		}
		v, err = numBinop(op, v, rhs)
		if err != nil {
			return exprValue{}, err
		}
	}
}

func (p *exprParser) parseMultiplicative() (exprValue, error) {
	v, err := p.parseUnary()
	if err != nil {
		return exprValue{}, err
	}
	for {
		var op byte
		switch {
		case p.takeOp("*"):
			op = '*'
		case p.takeOp("/"):
			op = '/'
		case p.takeOp("%"):
			op = '%'
		default:
			return v, nil
		}
		rhs, err := p.parseUnary()
		if err != nil {
			return exprValue{}, err
		}
		v, err = numBinop(op, v, rhs)
		if err != nil {
			return exprValue{}, err
		}
	}
}

func (p *exprParser) parseUnary() (exprValue, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return exprValue{}, fmt.Errorf("missing operand")
	}
	switch p.src[p.pos] {
	case '-':
		p.pos++
		v, err := p.parseUnary()
		if err != nil {
			return exprValue{}, err
		}
		return numUnaryNeg(v)
	case '+':
		p.pos++
		v, err := p.parseUnary()
		if err != nil {
			return exprValue{}, err
		}
		if v.isStr {
			return exprValue{}, fmt.Errorf("can't use non-numeric string as operand of \"+\"")
		}
		return v, nil
	case '!':
		if p.pos+1 < len(p.src) && p.src[p.pos+1] == '=' {
			break
		}
		p.pos++
		v, err := p.parseUnary()
		if err != nil {
			return exprValue{}, err
		}
		b, err := v.truth()
		if err != nil {
			return exprValue{}, err
		}
		return exprBool(!b), nil
	case '~':
		p.pos++
		v, err := p.parseUnary()
		if err != nil {
			return exprValue{}, err
		}
		if !v.isInt {
			return exprValue{}, fmt.Errorf("can't use non-integer as operand of \"~\"")
		}
		return exprInt(^v.i), nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (exprValue, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return exprValue{}, fmt.Errorf("missing operand")
	}
	c := p.src[p.pos]
	switch {
	case c == '(':
		p.pos++
		v, err := p.parseTernary()
		if err != nil {
			return exprValue{}, err
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ')' {
			return exprValue{}, fmt.Errorf("missing close parenthesis")
		}
		p.pos++
		return v, nil
	case c == '$':
		sp := &parser{src: p.src, pos: p.pos, line: 1}
		name, ok := sp.parseVarName()
		if !ok {
			return exprValue{}, fmt.Errorf("invalid variable reference in expression")
		}
		p.pos = sp.pos
		obj, res := p.i.getVar(name)
		if res.code != ResultOK {
			return exprValue{}, fmt.Errorf("%s", res.value(p.i).String())
		}
		return objToExprValue(obj), nil
	case c == '[':
		sp := &parser{src: p.src, pos: p.pos, line: 1}
		script, err := sp.parseBracket()
		if err != nil {
			return exprValue{}, err
		}
		p.pos = sp.pos
		res := p.i.evalScript(script)
		if res.code != ResultOK {
			return exprValue{}, fmt.Errorf("%s", res.value(p.i).String())
		}
		return objToExprValue(res.value(p.i)), nil
	case c == '"':
		sp := &parser{src: p.src, pos: p.pos, line: 1}
		segs, err := sp.parseQuoted()
		if err != nil {
			return exprValue{}, err
		}
		p.pos = sp.pos
		obj, res := p.i.substWord(word{segs: segs})
		if res.code != ResultOK {
			return exprValue{}, fmt.Errorf("%s", res.value(p.i).String())
		}
		return exprStr(obj.String()), nil
	case c == '{':
		sp := &parser{src: p.src, pos: p.pos, line: 1}
		text, err := sp.parseBraced()
		if err != nil {
			return exprValue{}, err
		}
		p.pos = sp.pos
		return exprStr(text), nil
	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()
	default:
		return p.parseBareWord()
	}
}

// parseNumber scans an integer or floating literal. Base prefixes (0x, 0o,
// 0b) are accepted; a bare leading zero stays decimal.
func (p *exprParser) parseNumber() (exprValue, error) {
	start := p.pos
	isFloat := false
	if p.pos+1 < len(p.src) && p.src[p.pos] == '0' {
		switch p.src[p.pos+1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			p.pos += 2
			for p.pos < len(p.src) && isHexDigit(p.src[p.pos]) {
				p.pos++
			}
			v, err := strconv.ParseInt(p.src[start:p.pos], 0, 64)
			if err != nil {
				return exprValue{}, fmt.Errorf("invalid number %q", p.src[start:p.pos])
			}
			return exprInt(v), nil
		}
	}
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c >= '0' && c <= '9':
			p.pos++
		case c == '.':
			isFloat = true
			p.pos++
		case c == 'e' || c == 'E':
			isFloat = true
			p.pos++
			if p.pos < len(p.src) && (p.src[p.pos] == '+' || p.src[p.pos] == '-') {
				p.pos++
			}
		default:
			goto done
		}
	}
done:
	text := p.src[start:p.pos]
	if isFloat {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return exprValue{}, fmt.Errorf("invalid number %q", text)
		}
		return exprDouble(v), nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return exprValue{}, fmt.Errorf("invalid number %q", text)
	}
	return exprInt(v), nil
}

// parseBareWord handles boolean words and math function calls.
func (p *exprParser) parseBareWord() (exprValue, error) {
	start := p.pos
	for p.pos < len(p.src) && isBareExprChar(p.src[p.pos]) {
		p.pos++
	}
	name := p.src[start:p.pos]
	if name == "" {
		return exprValue{}, fmt.Errorf("syntax error in expression at %q", p.src[start:])
	}
	switch strings.ToLower(name) {
	case "true", "yes", "on":
		return exprBool(true), nil
	case "false", "no", "off":
		return exprBool(false), nil
	case "inf":
		return exprDouble(math.Inf(1)), nil
	case "nan":
		return exprDouble(math.NaN()), nil
	}
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '(' {
		return p.parseFuncCall(name)
	}
	return exprValue{}, fmt.Errorf("invalid bareword %q in expression", name)
}

func (p *exprParser) parseFuncCall(name string) (exprValue, error) {
	p.pos++ // consume '('
	var args []exprValue
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == ')' {
		p.pos++
	} else {
		for {
			v, err := p.parseTernary()
			if err != nil {
				return exprValue{}, err
			}
			args = append(args, v)
			p.skipSpace()
			if p.pos >= len(p.src) {
				return exprValue{}, fmt.Errorf("missing close parenthesis")
			}
			if p.src[p.pos] == ',' {
				p.pos++
				continue
			}
			if p.src[p.pos] == ')' {
				p.pos++
				break
			}
			return exprValue{}, fmt.Errorf("missing close parenthesis")
		}
	}
	return callMathFunc(name, args)
}

func callMathFunc(name string, args []exprValue) (exprValue, error) {
	need := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("wrong # args for math function %q", name)
		}
		return nil
	}
	switch name {
	case "abs":
		if err := need(1); err != nil {
			return exprValue{}, err
		}
		if args[0].isInt {
			v := args[0].i
			if v < 0 {
				v = -v
			}
			return exprInt(v), nil
		}
		return exprDouble(math.Abs(args[0].float())), nil
	case "int":
		if err := need(1); err != nil {
			return exprValue{}, err
		}
		if args[0].isInt {
			return args[0], nil
		}
		return exprInt(int64(args[0].float())), nil
	case "double":
		if err := need(1); err != nil {
			return exprValue{}, err
		}
		return exprDouble(args[0].float()), nil
	case "round":
		if err := need(1); err != nil {
			return exprValue{}, err
		}
		if args[0].isInt {
			return args[0], nil
		}
		return exprInt(int64(math.Round(args[0].float()))), nil
	case "sqrt":
		if err := need(1); err != nil {
			return exprValue{}, err
		}
		return exprDouble(math.Sqrt(args[0].float())), nil
	case "pow":
		if err := need(2); err != nil {
			return exprValue{}, err
		}
		return exprDouble(math.Pow(args[0].float(), args[1].float())), nil
	case "fmod":
		if err := need(2); err != nil {
			return exprValue{}, err
		}
		if args[1].float() == 0 {
			return exprValue{}, arithError("DOMAIN", "domain error: argument not in valid range")
		}
		return exprDouble(math.Mod(args[0].float(), args[1].float())), nil
	case "max":
		if len(args) == 0 {
			return exprValue{}, fmt.Errorf("wrong # args for math function %q", name)
		}
		best := args[0]
		for _, a := range args[1:] {
			c, err := compareValues(a, best)
			if err != nil {
				return exprValue{}, err
			}
			if c > 0 {
				best = a
			}
		}
		return best, nil
	case "min":
		if len(args) == 0 {
			return exprValue{}, fmt.Errorf("wrong # args for math function %q", name)
		}
		best := args[0]
		for _, a := range args[1:] {
			c, err := compareValues(a, best)
			if err != nil {
				return exprValue{}, err
			}
			if c < 0 {
				best = a
			}
		}
		return best, nil
	}
	return exprValue{}, fmt.Errorf("unknown math function %q", name)
}

// objToExprValue classifies an operand object using its native rep first so
// shimmered numbers stay numeric without reparsing.
func objToExprValue(o *Obj) exprValue {
	switch rep := o.InternalRep().(type) {
	case IntType:
		return exprInt(int64(rep))
	case DoubleType:
		return exprDouble(float64(rep))
	}
	s := o.String()
	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		return exprInt(v)
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return exprDouble(v)
	}
	return exprStr(s)
}

// numericOperand reparses string operands that look numeric; true numerics
// pass through.
func numericOperand(v exprValue) (exprValue, bool) {
	if !v.isStr {
		return v, true
	}
	s := strings.TrimSpace(v.s)
	if iv, err := strconv.ParseInt(s, 0, 64); err == nil {
		return exprInt(iv), true
	}
	if fv, err := strconv.ParseFloat(s, 64); err == nil {
		return exprDouble(fv), true
	}
	return v, false
}

func numUnaryNeg(v exprValue) (exprValue, error) {
	v, ok := numericOperand(v)
	if !ok {
		return exprValue{}, fmt.Errorf("can't use non-numeric string as operand of \"-\"")
	}
	if v.isInt {
		return exprInt(-v.i), nil
	}
	return exprDouble(-v.d), nil
}

// numBinop applies + - * / % with int64 arithmetic unless either side is a
// double. Integer division floors toward negative infinity and the modulo
// result takes the divisor's sign.
func numBinop(op byte, a, b exprValue) (exprValue, error) {
	a, aok := numericOperand(a)
	b, bok := numericOperand(b)
	if !aok || !bok {
		return exprValue{}, fmt.Errorf("can't use non-numeric string as operand of %q", string(op))
	}
	if a.isInt && b.isInt {
		x, y := a.i, b.i
		switch op {
		case '+':
			return exprInt(x + y), nil
		case '-':
			return exprInt(x - y), nil
		case '*':
			return exprInt(x * y), nil
		case '/':
			if y == 0 {
				return exprValue{}, arithError("DIVZERO", "divide by zero")
			}
			q := x / y
			if (x%y != 0) && ((x < 0) != (y < 0)) {
				q--
			}
			return exprInt(q), nil
		case '%':
			if y == 0 {
				return exprValue{}, arithError("DIVZERO", "divide by zero")
			}
			r := x % y
			if r != 0 && ((r < 0) != (y < 0)) {
				r += y
			}
			return exprInt(r), nil
		}
	}
	if op == '%' {
		return exprValue{}, fmt.Errorf("can't use floating-point value as operand of \"%%\"")
	}
	x, y := a.float(), b.float()
	switch op {
	case '+':
		return exprDouble(x + y), nil
	case '-':
		return exprDouble(x - y), nil
	case '*':
		return exprDouble(x * y), nil
	case '/':
		if y == 0 {
			return exprValue{}, arithError("DIVZERO", "divide by zero")
		}
		return exprDouble(x / y), nil
	}
	return exprValue{}, fmt.Errorf("unknown operator %q", string(op))
}

// intBinop applies the integer-only operators.
func intBinop(op string, a, b exprValue) (exprValue, error) {
	a, aok := numericOperand(a)
	b, bok := numericOperand(b)
	if !aok || !a.isInt || !bok || !b.isInt {
		return exprValue{}, fmt.Errorf("can't use non-integer as operand of %q", op)
	}
	x, y := a.i, b.i
	switch op {
	case "&":
		return exprInt(x & y), nil
	case "|":
		return exprInt(x | y), nil
	case "^":
		return exprInt(x ^ y), nil
	case "<<":
		if y < 0 || y >= 64 {
			return exprValue{}, fmt.Errorf("invalid shift count %d", y)
		}
		return exprInt(x << uint(y)), nil
	case ">>":
		if y < 0 || y >= 64 {
			return exprValue{}, fmt.Errorf("invalid shift count %d", y)
		}
		return exprInt(x >> uint(y)), nil
	}
	return exprValue{}, fmt.Errorf("unknown operator %q", op)
}

// valuesEqual compares numerically when both operands are numeric, falling
// back to string equality.
func valuesEqual(a, b exprValue) (bool, error) {
	an, aok := numericOperand(a)
	bn, bok := numericOperand(b)
	if aok && bok {
		if an.isInt && bn.isInt {
			return an.i == bn.i, nil
		}
		return an.float() == bn.float(), nil
	}
	return a.text() == b.text(), nil
}

// compareValues orders two operands numerically when possible, otherwise
// lexicographically.
func compareValues(a, b exprValue) (int, error) {
	an, aok := numericOperand(a)
	bn, bok := numericOperand(b)
	if aok && bok {
		if an.isInt && bn.isInt {
			switch {
			case an.i < bn.i:
				return -1, nil
			case an.i > bn.i:
				return 1, nil
			}
			return 0, nil
		}
		x, y := an.float(), bn.float()
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		}
		return 0, nil
	}
	return strings.Compare(a.text(), b.text()), nil
}
