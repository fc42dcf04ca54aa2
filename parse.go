package plume

import "fmt"

// The word splitter turns source text into commands of substitution-ready
// words. Each word is a run of segments: literal text (backslash escapes
// already applied), variable references, and bracketed command scripts.
// Byte offsets and line numbers are kept for diagnostics.

type segKind int

const (
	segLiteral segKind = iota
	segVar     // $name or ${name}: text is the variable name
	segCommand // [script]: text is the unevaluated script
)

type wordSeg struct {
	kind segKind
	text string
}

type word struct {
	segs   []wordSeg
	braced bool // {...} word, single verbatim literal segment
	offset int
}

type parsedCmd struct {
	words []word
	line  int
	text  string // source text, used for error traces
}

// ParseStatus indicates the result of parsing a script.
type ParseStatus int

const (
	// ParseOK indicates the script is syntactically complete and valid.
	ParseOK ParseStatus = iota

	// ParseIncomplete indicates the script has unclosed braces, brackets, or quotes.
	ParseIncomplete

	// ParseError indicates a syntax error in the script.
	ParseError
)

// ParseResult holds the result of parsing a script.
type ParseResult struct {
	// Status indicates whether parsing succeeded, found incomplete input, or failed.
	Status ParseStatus

	// Message contains an error message if Status is ParseError.
	Message string
}

// parseErr is a script syntax error with completeness information.
type parseErr struct {
	msg        string
	offset     int
	incomplete bool
}

func (e *parseErr) Error() string { return e.msg }

type parser struct {
	src  string
	pos  int
	line int
}

// parseScript splits a script into commands of tagged words.
func parseScript(src string) ([]parsedCmd, error) {
	p := &parser{src: src, line: 1}
	var cmds []parsedCmd
	for {
		cmd, err := p.nextCommand()
		if err != nil {
			return nil, err
		}
		if cmd == nil {
			return cmds, nil
		}
		if len(cmd.words) > 0 {
			cmds = append(cmds, *cmd)
		}
	}
}

func (p *parser) errAt(offset int, incomplete bool, format string, args ...any) error {
	return &parseErr{msg: fmt.Sprintf(format, args...), offset: offset, incomplete: incomplete}
}

func (p *parser) atEnd() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte { return p.src[p.pos] }

// skipBlank consumes spaces, tabs, and backslash-newline continuations.
func (p *parser) skipBlank() {
	for !p.atEnd() {
		c := p.peek()
		if c == ' ' || c == '\t' || c == '\r' {
			p.pos++
			continue
		}
		if c == '\\' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '\n' {
			p.pos += 2
			p.line++
			continue
		}
		return
	}
}

// nextCommand parses one command, or returns nil at end of input.
// Empty commands (blank lines, stray separators) come back with no words.
func (p *parser) nextCommand() (*parsedCmd, error) {
	p.skipBlank()
	for !p.atEnd() && (p.peek() == '\n' || p.peek() == ';') {
		if p.peek() == '\n' {
			p.line++
		}
		p.pos++
		p.skipBlank()
	}
	if p.atEnd() {
		return nil, nil
	}
	if p.peek() == '#' {
		p.skipComment()
		return &parsedCmd{}, nil
	}
	cmd := &parsedCmd{line: p.line}
	start := p.pos
	for {
		p.skipBlank()
		if p.atEnd() || p.peek() == '\n' || p.peek() == ';' {
			break
		}
		w, err := p.parseWord()
		if err != nil {
			return nil, err
		}
		cmd.words = append(cmd.words, w)
	}
	cmd.text = p.src[start:p.pos]
	if !p.atEnd() {
		if p.peek() == '\n' {
			p.line++
		}
		p.pos++
	}
	return cmd, nil
}

func (p *parser) skipComment() {
	for !p.atEnd() {
		c := p.peek()
		if c == '\\' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '\n' {
			p.pos += 2
			p.line++
			continue
		}
		p.pos++
		if c == '\n' {
			p.line++
			return
		}
	}
}

func (p *parser) parseWord() (word, error) {
	w := word{offset: p.pos}
	switch p.peek() {
	case '{':
		text, err := p.parseBraced()
		if err != nil {
			return w, err
		}
		if !p.atEnd() && !isWordEnd(p.peek()) {
			return w, p.errAt(p.pos, false, "extra characters after close-brace")
		}
		w.braced = true
		w.segs = []wordSeg{{kind: segLiteral, text: text}}
		return w, nil
	case '"':
		segs, err := p.parseQuoted()
		if err != nil {
			return w, err
		}
		if !p.atEnd() && !isWordEnd(p.peek()) {
			return w, p.errAt(p.pos, false, "extra characters after close-quote")
		}
		w.segs = segs
		return w, nil
	default:
		segs, err := p.parseBare()
		if err != nil {
			return w, err
		}
		w.segs = segs
		return w, nil
	}
}

func isWordEnd(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == ';'
}

// parseBraced consumes a {...} word and returns its verbatim content.
// Backslash-newline is the one substitution applied inside braces.
func (p *parser) parseBraced() (string, error) {
	open := p.pos
	p.pos++ // {
	depth := 1
	var out []byte
	for !p.atEnd() {
		c := p.peek()
		switch c {
		case '\\':
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '\n' {
				out = append(out, ' ')
				p.pos += 2
				p.line++
				continue
			}
			out = append(out, c)
			p.pos++
			if !p.atEnd() {
				out = append(out, p.peek())
				p.pos++
			}
			continue
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				p.pos++
				return string(out), nil
			}
		case '\n':
			p.line++
		}
		out = append(out, c)
		p.pos++
	}
	return "", p.errAt(open, true, "missing close-brace")
}

// parseQuoted consumes a "..." word, producing substitution segments.
func (p *parser) parseQuoted() ([]wordSeg, error) {
	open := p.pos
	p.pos++ // "
	segs, err := p.parseSegments(func(c byte) bool { return c == '"' }, false)
	if err != nil {
		return nil, err
	}
	if p.atEnd() {
		return nil, p.errAt(open, true, "missing close-quote")
	}
	p.pos++ // closing quote
	if len(segs) == 0 {
		segs = []wordSeg{{kind: segLiteral, text: ""}}
	}
	return segs, nil
}

// parseBare consumes an unquoted word, producing substitution segments.
func (p *parser) parseBare() ([]wordSeg, error) {
	return p.parseSegments(isWordEnd, true)
}

// parseSegments scans segments until stop reports a terminator.
// bare words additionally terminate at backslash-newline.
func (p *parser) parseSegments(stop func(byte) bool, bare bool) ([]wordSeg, error) {
	var segs []wordSeg
	var lit []byte
	flush := func() {
		if len(lit) > 0 {
			segs = append(segs, wordSeg{kind: segLiteral, text: string(lit)})
			lit = nil
		}
	}
	for !p.atEnd() {
		c := p.peek()
		if stop(c) {
			break
		}
		switch c {
		case '\\':
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '\n' {
				if bare {
					// collapses to a word separator
					flush()
					return segs, nil
				}
				lit = append(lit, ' ')
				p.pos += 2
				p.line++
				continue
			}
			sub, next := substBackslash(p.src, p.pos)
			lit = append(lit, sub...)
			p.pos = next
		case '$':
			name, ok := p.parseVarName()
			if !ok {
				lit = append(lit, '$')
				p.pos++
				continue
			}
			flush()
			segs = append(segs, wordSeg{kind: segVar, text: name})
		case '[':
			script, err := p.parseBracket()
			if err != nil {
				return nil, err
			}
			flush()
			segs = append(segs, wordSeg{kind: segCommand, text: script})
		default:
			if c == '\n' {
				p.line++
			}
			lit = append(lit, c)
			p.pos++
		}
	}
	flush()
	return segs, nil
}

// parseVarName reads the name after '$'. Returns false when the '$' is not
// followed by a variable reference and should stay literal.
func (p *parser) parseVarName() (string, bool) {
	start := p.pos
	p.pos++ // $
	if p.atEnd() {
		p.pos = start
		return "", false
	}
	if p.peek() == '{' {
		p.pos++
		nameStart := p.pos
		for !p.atEnd() && p.peek() != '}' {
			p.pos++
		}
		if p.atEnd() {
			p.pos = start
			return "", false
		}
		name := p.src[nameStart:p.pos]
		p.pos++ // }
		return name, true
	}
	nameStart := p.pos
	for !p.atEnd() {
		c := p.peek()
		if isVarNameChar(c) {
			p.pos++
			continue
		}
		// allow :: namespace separators
		if c == ':' && p.pos+1 < len(p.src) && p.src[p.pos+1] == ':' {
			p.pos += 2
			continue
		}
		break
	}
	if p.pos == nameStart {
		p.pos = start
		return "", false
	}
	return p.src[nameStart:p.pos], true
}

func isVarNameChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// parseBracket consumes a [script] segment and returns the raw script.
// Braced and backslashed characters inside do not count toward nesting.
func (p *parser) parseBracket() (string, error) {
	open := p.pos
	p.pos++ // [
	start := p.pos
	depth := 1
	for !p.atEnd() {
		switch p.peek() {
		case '\\':
			p.pos++
		case '{':
			if _, err := p.parseBraced(); err != nil {
				return "", err
			}
			continue
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				script := p.src[start:p.pos]
				p.pos++
				return script, nil
			}
		case '\n':
			p.line++
		}
		p.pos++
	}
	return "", p.errAt(open, true, "missing close-bracket")
}
