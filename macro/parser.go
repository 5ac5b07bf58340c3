// Package macro implements the recursive-descent parser/evaluator for the
// template macro language: plain text ("gibberish"), identifier expansion,
// `{: ... :}` data blocks, and `$if/$elif/$else` conditionals over a
// small boolean-expression grammar (spec.md §4.6).
//
// Grammar:
//
//	data:           /* empty */
//	              | data GIBBERISH
//	              | data IDENTIFIER
//	              | data '{:' data ':}'
//	              | data if_block
//	              ;
//	if_block:       IF '(' exp_or ')' '{:' data ':}' elif_blocks else_block
//	              ;
//	elif_blocks:    /* empty */
//	              | elif_blocks ELIF '(' exp_or ')' '{:' data ':}'
//	              ;
//	else_block:     /* empty */
//	              | ELSE '{:' data ':}'
//	              ;
//	exp_or:         exp_and | exp_or TOK_OR exp_and ;
//	exp_and:        exp_comparison | exp_and TOK_AND exp_comparison ;
//	exp_comparison: term TOK_COMPARISON term ;
//	term:           LITERAL | IDENTIFIER | '(' exp_or ')' ;
package macro

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/crcgen/crcgen/lexer"
)

// ErrSymbolLookup is the sentinel a SymbolSource returns for an unknown
// identifier; the parser wraps it into a ParseError naming the identifier.
var ErrSymbolLookup = errors.New("macro: symbol lookup failed")

// SymbolSource resolves a macro identifier (without its leading '$') to
// its expansion text. Implemented by package symtable.
type SymbolSource interface {
	GetTerminal(id string) (string, error)
}

// ParseError is returned for any malformed template: a stray closing
// block, an unknown terminal, a missing parenthesis, and so on.
type ParseError struct {
	Reason string
	cause  error
}

func (e *ParseError) Error() string { return e.Reason }
func (e *ParseError) Unwrap() error { return e.cause }

func parseErrorf(cause error, format string, args ...interface{}) *ParseError {
	return &ParseError{Reason: fmt.Sprintf(format, args...), cause: cause}
}

var (
	reIsInt = regexp.MustCompile(`^[-+]?[0-9]+$`)
	reIsHex = regexp.MustCompile(`^0[xX][0-9a-fA-F]+$`)
)

// Parser is the macro language parser and code generator.
type Parser struct {
	sym SymbolSource
	lex *lexer.Lexer
	out strings.Builder
}

// New creates a Parser that resolves identifiers against sym.
func New(sym SymbolSource) *Parser {
	return &Parser{sym: sym, lex: lexer.New("")}
}

// Parse expands inStr and returns the resulting text.
func (p *Parser) Parse(inStr string) (string, error) {
	p.lex.SetStr(inStr)
	p.out.Reset()
	if err := p.parseData(true); err != nil {
		return "", err
	}
	if tok := p.lex.Peek(); tok != lexer.EOF {
		return "", parseErrorf(nil, "macro: error: misaligned closing block '%s'", p.lex.Text())
	}
	return p.out.String(), nil
}

func (p *Parser) parseData(doPrint bool) error {
	tok := p.lex.Peek()
	for tok != lexer.EOF {
		switch {
		case tok == lexer.Gibberish:
			p.parseGibberish(doPrint)
		case tok == lexer.BlockOpen:
			if err := p.parseDataBlock(doPrint); err != nil {
				return err
			}
		case tok == lexer.Identifier && p.lex.Text() == "if":
			if err := p.parseIfBlock(doPrint); err != nil {
				return err
			}
		case tok == lexer.Identifier:
			if err := p.parseIdentifier(doPrint); err != nil {
				return err
			}
		case tok == lexer.BlockClose:
			return nil
		default:
			return parseErrorf(nil, "macro: error: wrong token '%s'", p.lex.Text())
		}
		tok = p.lex.Peek()
	}
	return nil
}

func (p *Parser) parseGibberish(doPrint bool) {
	if doPrint {
		p.out.WriteString(p.lex.Text())
	}
	p.lex.Advance(false)
}

func (p *Parser) parseIdentifier(doPrint bool) error {
	symValue, err := p.sym.GetTerminal(p.lex.Text())
	if err != nil {
		if errors.Is(err, ErrSymbolLookup) {
			return parseErrorf(err, "macro: error: unknown terminal '%s'", p.lex.Text())
		}
		return err
	}
	p.lex.Advance(false)
	if doPrint {
		p.lex.Prepend(symValue)
	}
	return nil
}

func (p *Parser) parseIfBlock(doPrint bool) error {
	expRes, err := p.parseConditionalBlock(doPrint)
	if err != nil {
		return err
	}
	doPrint = doPrint && !expRes

	tok := p.lex.Peek()
	for tok == lexer.Identifier && p.lex.Text() == "elif" {
		expRes, err = p.parseConditionalBlock(doPrint)
		if err != nil {
			return err
		}
		doPrint = doPrint && !expRes
		tok = p.lex.Peek()
	}

	if tok == lexer.Identifier && p.lex.Text() == "else" {
		p.lex.Advance(false)
		p.lex.DeleteSpaces(true)
		if err := p.parseDataBlock(doPrint); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseConditionalBlock(doPrint bool) (bool, error) {
	p.lex.Advance(false) // discard 'if'/'elif'
	p.lex.SetState(lexer.StateExpr)

	if tok := p.lex.Peek(); tok != lexer.ParOpen {
		return false, parseErrorf(nil, "macro: error: open parenthesis expected: '%s'", p.lex.Text())
	}
	p.lex.Advance(false)

	expRes, err := p.parseExpOr()
	if err != nil {
		return false, err
	}

	if tok := p.lex.Peek(); tok != lexer.ParClose {
		return false, parseErrorf(nil, "macro: error: closed parenthesis expected: '%s'", p.lex.Text())
	}
	p.lex.Advance(false)

	p.lex.DeleteSpaces(true)
	p.lex.SetState(lexer.StateGibberish)

	if err := p.parseDataBlock(doPrint && expRes); err != nil {
		return false, err
	}

	p.lex.DeleteSpaces(false)
	return expRes, nil
}

func (p *Parser) parseDataBlock(doPrint bool) error {
	if tok := p.lex.Peek(); tok != lexer.BlockOpen {
		return parseErrorf(nil, "macro: error: open block expected: '%s'", p.lex.Text())
	}
	p.lex.Advance(true)

	if err := p.parseData(doPrint); err != nil {
		return err
	}

	if tok := p.lex.Peek(); tok != lexer.BlockClose {
		return parseErrorf(nil, "macro: error: closed block expected: '%s'", p.lex.Text())
	}
	p.lex.Advance(true)
	return nil
}

func (p *Parser) parseExpOr() (bool, error) {
	ret := false
	for {
		v, err := p.parseExpAnd()
		if err != nil {
			return false, err
		}
		ret = v || ret

		tok := p.lex.Peek()
		switch tok {
		case lexer.ParClose:
			return ret, nil
		case lexer.Or:
			p.lex.Advance(false)
		default:
			return ret, nil
		}
	}
}

func (p *Parser) parseExpAnd() (bool, error) {
	ret := true
	for {
		v, err := p.parseExpComparison()
		if err != nil {
			return false, err
		}
		ret = v && ret

		tok := p.lex.Peek()
		switch tok {
		case lexer.ParClose:
			return ret, nil
		case lexer.And:
			p.lex.Advance(false)
		default:
			return ret, nil
		}
	}
}

// term is the result of parsing a grammar 'term': either the raw text of
// an identifier/string/number, or the boolean result of a parenthesised
// sub-expression.
type term struct {
	isBool bool
	b      bool
	s      string
}

func (t term) asString() string {
	if t.isBool {
		if t.b {
			return "True"
		}
		return "False"
	}
	return t.s
}

func (p *Parser) parseExpComparison() (bool, error) {
	lhs, err := p.parseExpTerm()
	if err != nil {
		return false, err
	}

	tok := p.lex.Peek()
	if tok != lexer.Op {
		return false, parseErrorf(nil, "macro: error: operator expected: '%s'", p.lex.Text())
	}
	operator := p.lex.Text()
	p.lex.Advance(false)

	rhs, err := p.parseExpTerm()
	if err != nil {
		return false, err
	}

	lhsStr, rhsStr := lhs.asString(), rhs.asString()
	numL, okL := getNum(lhsStr)
	numR, okR := getNum(rhsStr)

	var cmp int
	if okL && okR {
		cmp = numL.Cmp(numR)
	} else {
		cmp = strings.Compare(lhsStr, rhsStr)
	}

	switch operator {
	case "<=":
		return cmp <= 0, nil
	case "<":
		return cmp < 0, nil
	case "==":
		return cmp == 0, nil
	case "!=":
		return cmp != 0, nil
	case ">=":
		return cmp >= 0, nil
	case ">":
		return cmp > 0, nil
	default:
		return false, parseErrorf(nil, "macro: error: unknown operator: '%s'", operator)
	}
}

func (p *Parser) parseExpTerm() (term, error) {
	tok := p.lex.Peek()
	var ret term

	switch tok {
	case lexer.Identifier:
		v, err := p.sym.GetTerminal(p.lex.Text())
		if err != nil {
			if errors.Is(err, ErrSymbolLookup) {
				return term{}, parseErrorf(err, "macro: error: unknown terminal '%s'", p.lex.Text())
			}
			return term{}, err
		}
		ret = term{s: v}
	case lexer.Str:
		ret = term{s: p.lex.Text()}
	case lexer.Num:
		ret = term{s: p.lex.Text()}
	case lexer.ParOpen:
		p.lex.Advance(false)
		v, err := p.parseExpOr()
		if err != nil {
			return term{}, err
		}
		if tok := p.lex.Peek(); tok != lexer.ParClose {
			return term{}, parseErrorf(nil, "macro: error: closed parenthesis expected: '%s'", p.lex.Text())
		}
		ret = term{isBool: true, b: v}
	default:
		return term{}, parseErrorf(nil, "macro: error: unexpected token parsing term: '%s'", p.lex.Text())
	}
	p.lex.Advance(false)
	return ret, nil
}

// getNum reports whether s parses as a decimal or 0x-hex integer, per
// MacroParser._get_num. Arbitrary precision (math/big) because the macro
// language's numbers are plain Python ints with no fixed width -- unlike
// model.U128, this isn't a per-byte hot path, so there is no reason to
// hand-roll fixed-width arithmetic here.
func getNum(s string) (*big.Int, bool) {
	if reIsInt.MatchString(s) {
		n, ok := new(big.Int).SetString(s, 10)
		return n, ok
	}
	if reIsHex.MatchString(s) {
		n, ok := new(big.Int).SetString(s[2:], 16)
		return n, ok
	}
	return nil, false
}
