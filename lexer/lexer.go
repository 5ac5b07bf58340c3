// Package lexer implements the two-state tokenizer for the macro language
// used by the symbol-table templates (spec.md §4.4): a "gibberish" state
// for literal template text and an "expr" state for $if/$elif conditions.
package lexer

import (
	"regexp"
	"strings"
)

// Token identifies the kind of the lexer's current token.
type Token int

const (
	Unknown Token = iota
	EOF
	Gibberish
	Identifier
	BlockOpen
	BlockClose
	Num
	Str
	ParOpen
	ParClose
	Op
	And
	Or
)

// State selects which sub-scanner parseNext dispatches to.
type State int

const (
	StateGibberish State = iota
	StateExpr
)

var (
	reID  = regexp.MustCompile(`^\$[a-zA-Z][a-zA-Z0-9_-]*`)
	reNum = regexp.MustCompile(`^(0[xX][0-9a-fA-F]+|[0-9]+)`)
	reOp  = regexp.MustCompile(`^(<=|<|==|!=|>=|>)`)
	reStr = regexp.MustCompile(`^"?([a-zA-Z0-9_-]+)"?`)
)

// Lexer is a hand-rolled lexical analyser over a mutable input buffer; its
// defining feature is Prepend, which lets the parser push expanded
// identifier values back onto the front of the stream for rescanning --
// this is how macro expansion works, there is no separate "include" step.
type Lexer struct {
	input     string
	text      string
	state     State
	hasNext   bool
	nextToken Token
}

// New creates a Lexer positioned at the start of input, in gibberish state.
func New(input string) *Lexer {
	return &Lexer{input: input, state: StateGibberish}
}

// SetStr resets the lexer to scan a new input string from the start.
func (l *Lexer) SetStr(input string) {
	l.input = input
	l.text = ""
	l.hasNext = false
}

// Text returns the text consumed by the current (peeked) token.
func (l *Lexer) Text() string { return l.text }

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() Token {
	if !l.hasNext {
		l.nextToken = l.parseNext()
		l.hasNext = true
	}
	return l.nextToken
}

// Advance discards the current token so the next Peek scans fresh input.
// If skipNL is set and the next input byte is a newline, it is dropped too,
// unless that newline is the only byte left in the input.
func (l *Lexer) Advance(skipNL bool) {
	l.hasNext = false
	if skipNL && len(l.input) > 1 && l.input[0] == '\n' {
		l.input = l.input[1:]
	}
}

// DeleteSpaces strips leading spaces/tabs from the input. If
// skipUnconditional is false, the strip only happens when the stripped
// input begins with a reserved $if/$elif/$else identifier -- this is what
// keeps "$if (x) {:...:}" from swallowing intentional whitespace in plain
// gibberish text, while letting control-keyword lines lay out cleanly.
func (l *Lexer) DeleteSpaces(skipUnconditional bool) {
	newInput := strings.TrimLeft(l.input, " \t")

	if m := reID.FindString(newInput); m != "" {
		text := m[1:]
		if text == "if" || text == "elif" || text == "else" {
			skipUnconditional = true
		}
	}
	if skipUnconditional {
		l.hasNext = false
		l.input = newInput
	}
}

// Prepend pushes inStr back onto the front of the input stream.
func (l *Lexer) Prepend(inStr string) {
	l.input = inStr + l.input
}

// SetState switches between gibberish and expression scanning, as when
// entering or leaving a $if(...) condition.
func (l *Lexer) SetState(s State) {
	l.state = s
	l.hasNext = false
}

func (l *Lexer) parseNext() Token {
	if len(l.input) == 0 {
		return EOF
	}
	if l.state == StateGibberish {
		return l.parseGibberish()
	}
	return l.parseExpr()
}

func (l *Lexer) parseGibberish() Token {
	if m := reID.FindString(l.input); m != "" {
		l.text = m[1:]
		l.input = l.input[len(m):]
		return Identifier
	}

	if len(l.input) > 1 {
		switch {
		case l.input[0:2] == "{:":
			l.text = l.input[0:2]
			l.input = l.input[2:]
			return BlockOpen
		case l.input[0:2] == ":}":
			l.text = l.input[0:2]
			l.input = l.input[2:]
			return BlockClose
		case l.input[0:2] == "$$":
			l.text = l.input[0:1]
			l.input = l.input[2:]
			return Gibberish
		}
		if l.input[0] == '$' {
			l.text = l.input[0:1]
			return Unknown
		}
	}

	pos := strings.IndexByte(l.input, '$')
	if tmp := strings.Index(l.input, "{:"); pos < 0 || (tmp >= 0 && tmp < pos) {
		pos = tmp
	}
	if tmp := strings.Index(l.input, ":}"); pos < 0 || (tmp >= 0 && tmp < pos) {
		pos = tmp
	}

	if pos < 0 || len(l.input) == 1 {
		l.text = l.input
		l.input = ""
	} else {
		l.text = l.input[:pos]
		l.input = l.input[pos:]
	}
	return Gibberish
}

func (l *Lexer) parseExpr() Token {
	pos := 0
	for pos < len(l.input) && l.input[pos] == ' ' {
		pos++
	}
	if pos > 0 {
		l.input = l.input[pos:]
	}
	if len(l.input) == 0 {
		return EOF
	}

	// "$$" is a literal '$' in expression state too (resolves the open
	// question of §9: same rule as gibberish, explicitly).
	if len(l.input) > 1 && l.input[0:2] == "$$" {
		l.text = "$"
		l.input = l.input[2:]
		return Str
	}

	if m := reID.FindString(l.input); m != "" {
		l.text = m[1:]
		l.input = l.input[len(m):]
		return Identifier
	}

	if m := reNum.FindString(l.input); m != "" {
		l.text = m
		l.input = l.input[len(m):]
		return Num
	}

	if m := reOp.FindString(l.input); m != "" {
		l.text = m
		l.input = l.input[len(m):]
		return Op
	}

	if strings.HasPrefix(l.input, "and ") {
		l.text = "and"
		l.input = l.input[len(l.text)+1:]
		return And
	}
	if strings.HasPrefix(l.input, "or ") {
		l.text = "or"
		l.input = l.input[len(l.text)+1:]
		return Or
	}

	if loc := reStr.FindStringSubmatchIndex(l.input); loc != nil && loc[0] == 0 {
		l.text = l.input[loc[2]:loc[3]]
		l.input = l.input[loc[1]:]
		return Str
	}

	switch l.input[0] {
	case '(':
		l.text = "("
		l.input = l.input[1:]
		return ParOpen
	case ')':
		l.text = ")"
		l.input = l.input[1:]
		return ParClose
	}

	return Unknown
}
