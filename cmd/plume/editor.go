package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/plume-lang/plume"
	"golang.org/x/term"
)

var errInterrupted = errors.New("interrupted")

// completion is one candidate offered by the tab popup.
type completion struct {
	text string
	kind string // "command" or "variable"
}

type keyEvent struct {
	key string
	err error
}

// lineEditor is a raw-mode line editor with tab completion backed by the
// interpreter's own introspection commands.
type lineEditor struct {
	interp   *plume.Interp
	fd       int
	oldState *term.State

	line   []rune
	cursor int

	candidates []completion
	selected   int
	popupOpen  bool
	popupLines int // popup lines currently on screen

	pending []byte
	keys    chan keyEvent
	reading bool
}

func newLineEditor(i *plume.Interp) *lineEditor {
	return &lineEditor{interp: i, fd: int(os.Stdin.Fd())}
}

func (e *lineEditor) enterRawMode() error {
	st, err := term.MakeRaw(e.fd)
	if err != nil {
		return err
	}
	e.oldState = st
	return nil
}

func (e *lineEditor) exitRawMode() {
	if e.oldState != nil {
		term.Restore(e.fd, e.oldState)
		e.oldState = nil
	}
}

func (e *lineEditor) width() int {
	w, _, err := term.GetSize(e.fd)
	if err != nil || w <= 0 {
		return 80
	}
	// some terminals report the scrollbar column as usable
	if w > 80 {
		return w - 1
	}
	return w
}

// readByte returns the next input byte, draining any bytes left over from a
// previous multi-byte read first.
func (e *lineEditor) readByte() (byte, error) {
	if len(e.pending) > 0 {
		b := e.pending[0]
		e.pending = e.pending[1:]
		return b, nil
	}
	buf := make([]byte, 32)
	n, err := os.Stdin.Read(buf)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	if n > 1 {
		e.pending = append(e.pending, buf[1:n]...)
	}
	return buf[0], nil
}

// drainCSI consumes bytes up to and including a CSI terminator (0x40-0x7E).
func (e *lineEditor) drainCSI() {
	for {
		b, err := e.readByte()
		if err != nil {
			return
		}
		if b >= 0x40 && b <= 0x7E {
			return
		}
	}
}

// readKey decodes one key press, collapsing escape sequences to key names.
func (e *lineEditor) readKey() (string, error) {
	ch, err := e.readByte()
	if err != nil {
		return "", err
	}
	if ch == 0x1b {
		ch2, err := e.readByte()
		if err != nil {
			return "escape", nil
		}
		if ch2 != '[' {
			return "escape", nil
		}
		ch3, err := e.readByte()
		if err != nil {
			return "escape", nil
		}
		switch ch3 {
		case 'A':
			return "up", nil
		case 'B':
			return "down", nil
		case 'C':
			return "right", nil
		case 'D':
			return "left", nil
		case 'H':
			return "home", nil
		case 'F':
			return "end", nil
		case 'Z':
			return "shift-tab", nil
		case '3':
			e.readByte() // trailing ~
			return "delete", nil
		case 'I', 'O':
			// focus events
			return e.readKey()
		}
		if ch3 >= '0' && ch3 <= '9' {
			// bracketed paste and friends
			e.drainCSI()
			return e.readKey()
		}
		if ch3 < 0x40 || ch3 > 0x7E {
			e.drainCSI()
		}
		return e.readKey()
	}
	switch ch {
	case 0x01:
		return "home", nil
	case 0x03:
		return "ctrl-c", nil
	case 0x04:
		return "ctrl-d", nil
	case 0x05:
		return "end", nil
	case 0x09:
		return "tab", nil
	case 0x0d, 0x0a:
		return "enter", nil
	case 0x7f, 0x08:
		return "backspace", nil
	case 0x15:
		return "ctrl-u", nil
	case 0x17:
		return "ctrl-w", nil
	}
	return string(rune(ch)), nil
}

// render redraws the prompt, the line, and the popup when open.
func (e *lineEditor) render(prompt string) {
	if e.popupLines > 0 {
		for i := 0; i < e.popupLines; i++ {
			fmt.Print("\n\033[2K")
		}
		fmt.Printf("\033[%dA\r", e.popupLines)
		e.popupLines = 0
	}

	fmt.Print("\r\033[K")
	fmt.Print(prompt)
	fmt.Print(string(e.line))

	if e.popupOpen && len(e.candidates) > 0 {
		e.renderPopup()
	}

	fmt.Printf("\r\033[%dC", len(prompt)+e.cursor)
}

func kindIndicator(kind string) string {
	switch kind {
	case "command":
		return "C"
	case "variable":
		return "V"
	}
	return "?"
}

// renderPopup draws up to ten candidates below the input line, selection
// inverted, the rest dimmed.
func (e *lineEditor) renderPopup() {
	shown := min(len(e.candidates), 10)
	maxLen := e.width() - 2
	if maxLen < 40 {
		maxLen = 40
	}
	e.popupLines = shown

	nameWidth := 8
	for idx := 0; idx < shown; idx++ {
		if n := len(e.candidates[idx].text); n > nameWidth {
			nameWidth = n
		}
	}
	nameWidth += 2
	if nameWidth > 30 {
		nameWidth = 30
	}

	for idx := 0; idx < shown; idx++ {
		c := e.candidates[idx]
		fmt.Print("\n\r\033[K")
		prefix := "  "
		if idx == e.selected {
			prefix = "> "
		}
		text := c.text
		if len(text) > nameWidth-2 {
			text = text[:nameWidth-5] + "..."
		}
		row := fmt.Sprintf("%s%-*s [%s]", prefix, nameWidth, text, kindIndicator(c.kind))
		if len(row) > maxLen {
			row = row[:maxLen]
		}
		if idx == e.selected {
			fmt.Printf("\033[7m%s\033[0m", row)
		} else {
			fmt.Printf("\033[2m%s\033[0m", row)
		}
	}
	if shown > 0 {
		fmt.Printf("\033[%dA\r", shown)
	}
}

func (e *lineEditor) clearPopup() {
	if e.popupLines == 0 {
		return
	}
	for i := 0; i < e.popupLines; i++ {
		fmt.Print("\n\033[2K")
	}
	fmt.Printf("\033[%dA\r", e.popupLines)
	e.popupLines = 0
}

func (e *lineEditor) hidePopup() {
	if e.popupOpen || e.popupLines > 0 {
		e.clearPopup()
		e.popupOpen = false
		e.candidates = nil
	}
}

func isWordBreak(r rune) bool {
	return r == ' ' || r == '\t' || r == ';' || r == '\n' || r == '{' || r == '}' || r == '['
}

func (e *lineEditor) wordStart() int {
	s := e.cursor
	for s > 0 && !isWordBreak(e.line[s-1]) {
		s--
	}
	return s
}

// complete fills the candidate list for the word under the cursor. A word
// starting with $ completes against global variables, anything else against
// registered commands.
func (e *lineEditor) complete() {
	e.candidates = nil
	word := string(e.line[e.wordStart():e.cursor])
	if strings.HasPrefix(word, "$") {
		for _, c := range e.introspect("globals", strings.TrimPrefix(word, "$"), "variable") {
			c.text = "$" + c.text
			e.candidates = append(e.candidates, c)
		}
		return
	}
	e.candidates = e.introspect("commands", word, "command")
}

func (e *lineEditor) introspect(what, prefix, kind string) []completion {
	result, err := e.interp.Call("info", what)
	if err != nil {
		return nil
	}
	names, err := result.List()
	if err != nil {
		return nil
	}
	var out []completion
	for _, n := range names {
		if s := n.String(); strings.HasPrefix(s, prefix) {
			out = append(out, completion{text: s, kind: kind})
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].text < out[b].text })
	return out
}

// applyCompletion replaces the word under the cursor with the selection.
func (e *lineEditor) applyCompletion() {
	if e.selected < 0 || e.selected >= len(e.candidates) {
		return
	}
	text := []rune(e.candidates[e.selected].text)
	start := e.wordStart()

	next := make([]rune, 0, len(e.line)+len(text)+1)
	next = append(next, e.line[:start]...)
	next = append(next, text...)
	next = append(next, ' ')
	next = append(next, e.line[e.cursor:]...)

	e.line = next
	e.cursor = start + len(text) + 1
	e.popupOpen = false
	e.candidates = nil
}

func (e *lineEditor) startKeyReader() {
	if e.reading {
		return
	}
	e.keys = make(chan keyEvent, 16)
	e.reading = true
	go func() {
		for {
			key, err := e.readKey()
			e.keys <- keyEvent{key, err}
			if err != nil {
				e.reading = false
				return
			}
		}
	}()
}

// readLine collects one line of input in raw mode. Ctrl-D on an empty line
// is io.EOF; Ctrl-C is errInterrupted.
func (e *lineEditor) readLine(prompt string) (string, error) {
	if err := e.enterRawMode(); err != nil {
		return "", err
	}
	defer e.exitRawMode()

	resized := make(chan os.Signal, 1)
	signal.Notify(resized, syscall.SIGWINCH)
	defer signal.Stop(resized)

	e.startKeyReader()

	e.line = nil
	e.cursor = 0
	e.popupOpen = false
	e.candidates = nil
	e.selected = 0

	e.render(prompt)

	for {
		var ev keyEvent
		select {
		case <-resized:
			e.render(prompt)
			continue
		case ev = <-e.keys:
		}
		if ev.err != nil {
			return "", ev.err
		}

		switch ev.key {
		case "enter":
			if e.popupOpen && len(e.candidates) > 0 {
				e.applyCompletion()
			} else {
				e.clearPopup()
				fmt.Print("\r\n")
				return string(e.line), nil
			}

		case "ctrl-c":
			e.clearPopup()
			fmt.Print("\r\n")
			return "", errInterrupted

		case "ctrl-d":
			if len(e.line) == 0 {
				e.clearPopup()
				fmt.Print("\r\n")
				return "", io.EOF
			}
			if e.cursor < len(e.line) {
				e.line = append(e.line[:e.cursor], e.line[e.cursor+1:]...)
				e.hidePopup()
			}

		case "tab":
			if e.popupOpen && len(e.candidates) > 0 {
				e.selected = (e.selected + 1) % len(e.candidates)
			} else {
				e.complete()
				e.selected = 0
				e.popupOpen = len(e.candidates) > 0
			}

		case "shift-tab":
			if e.popupOpen && len(e.candidates) > 0 {
				e.selected--
				if e.selected < 0 {
					e.selected = len(e.candidates) - 1
				}
			} else {
				e.complete()
				if len(e.candidates) > 0 {
					e.selected = len(e.candidates) - 1
					e.popupOpen = true
				}
			}

		case "up":
			if e.popupOpen && len(e.candidates) > 0 {
				e.selected--
				if e.selected < 0 {
					e.selected = len(e.candidates) - 1
				}
			}

		case "down":
			if e.popupOpen && len(e.candidates) > 0 {
				e.selected = (e.selected + 1) % len(e.candidates)
			}

		case "left":
			if e.cursor > 0 {
				e.cursor--
			}
			e.hidePopup()

		case "right":
			if e.cursor < len(e.line) {
				e.cursor++
			}
			e.hidePopup()

		case "home":
			e.cursor = 0
			e.hidePopup()

		case "end":
			e.cursor = len(e.line)
			e.hidePopup()

		case "backspace":
			if e.cursor > 0 {
				e.line = append(e.line[:e.cursor-1], e.line[e.cursor:]...)
				e.cursor--
				e.hidePopup()
			}

		case "delete":
			if e.cursor < len(e.line) {
				e.line = append(e.line[:e.cursor], e.line[e.cursor+1:]...)
				e.hidePopup()
			}

		case "ctrl-u":
			e.line = e.line[e.cursor:]
			e.cursor = 0
			e.hidePopup()

		case "ctrl-w":
			cut := e.cursor
			for cut > 0 && e.line[cut-1] == ' ' {
				cut--
			}
			for cut > 0 && e.line[cut-1] != ' ' {
				cut--
			}
			e.line = append(e.line[:cut], e.line[e.cursor:]...)
			e.cursor = cut
			e.hidePopup()

		case "escape":
			e.hidePopup()

		default:
			if len(ev.key) == 1 {
				ch := rune(ev.key[0])
				if ch >= 32 && ch < 127 {
					next := make([]rune, len(e.line)+1)
					copy(next, e.line[:e.cursor])
					next[e.cursor] = ch
					copy(next[e.cursor+1:], e.line[e.cursor:])
					e.line = next
					e.cursor++
					e.hidePopup()
				}
			}
		}

		e.render(prompt)
	}
}

// runEditorREPL drives the interactive prompt through the raw-mode editor,
// continuing the prompt while the input is syntactically incomplete. When
// the terminal refuses raw mode it falls back to the plain line reader.
func runEditorREPL(i *plume.Interp) {
	ed := newLineEditor(i)
	if err := ed.enterRawMode(); err != nil {
		runREPL(i)
		return
	}
	ed.exitRawMode()

	fmt.Println("plume - Tab completes, Ctrl-D exits")
	var inputBuffer string
	for {
		prompt := "% "
		if inputBuffer != "" {
			prompt = "> "
		}

		line, err := ed.readLine(prompt)
		if err != nil {
			if err == io.EOF {
				if inputBuffer != "" {
					fmt.Println("incomplete input discarded")
				}
				return
			}
			if err == errInterrupted {
				inputBuffer = ""
				continue
			}
			fmt.Fprintf(os.Stderr, "error reading input: %v\n", err)
			return
		}

		if inputBuffer != "" {
			inputBuffer += "\n" + line
		} else {
			inputBuffer = line
		}

		pr := i.Parse(inputBuffer)
		if pr.Status == plume.ParseIncomplete {
			continue
		}
		if pr.Status == plume.ParseError {
			fmt.Fprintf(os.Stderr, "error: %s\n", pr.Message)
			inputBuffer = ""
			continue
		}

		result, err := i.Eval(inputBuffer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		} else if result.String() != "" {
			fmt.Println(result.String())
		}
		inputBuffer = ""
	}
}
