// Package lexer implements the interpreter's one-pass scanner: it
// turns a bounded raw command buffer into a token.CommandInfo record.
// The state machine is one switch per input character; multi-character
// operators are recognized greedily, longest match first.
package lexer

import (
	"fmt"
	"io"

	"github.com/isaacjoffe/nanopy/errors"
	"github.com/isaacjoffe/nanopy/internal/limits"
	"github.com/isaacjoffe/nanopy/internal/token"
)

// Lexer scans one command buffer into a token.CommandInfo.
type Lexer struct {
	input        string
	position     int // index of ch
	readPosition int // index of the next character to read
	ch           byte
	column       int // 1-based column of ch, for diagnostics

	cfg   limits.Config
	trace io.Writer
}

// Option configures a Lexer at construction time.
type Option func(*Lexer)

// WithLimits overrides the default capacity constants.
func WithLimits(cfg limits.Config) Option {
	return func(l *Lexer) { l.cfg = cfg }
}

// WithTracing makes the lexer write one line per token scanned to w.
func WithTracing(w io.Writer) Option {
	return func(l *Lexer) { l.trace = w }
}

// New creates a Lexer over input with optional configuration.
func New(input string, opts ...Option) *Lexer {
	l := &Lexer{input: input, cfg: limits.Default()}
	for _, opt := range opts {
		opt(l)
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{Line: 1, Column: l.column}
}

// next consumes ch if it equals want, reporting whether it matched.
func (l *Lexer) next(want byte) bool {
	if l.ch != want {
		return false
	}
	l.readChar()
	return true
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// Scan tokenizes the entire input buffer and returns the populated
// CommandInfo, or a SyntaxError on the first malformed construct.
func (l *Lexer) Scan() (*token.CommandInfo, error) {
	if len(l.input) > l.cfg.MaxInputLen {
		return nil, errors.New(errors.Runtime, "command exceeds maximum input length")
	}

	info := token.NewCommandInfo(l.cfg)
	for l.ch != 0 {
		if err := l.scanNextToken(info); err != nil {
			return nil, err
		}
	}
	return info, nil
}

func (l *Lexer) emit(info *token.CommandInfo, kind token.Kind, pos token.Position) error {
	if l.trace != nil {
		fmt.Fprintf(l.trace, "lex: %s\n", kind)
	}
	return info.AddToken(kind, pos)
}

func (l *Lexer) scanNextToken(info *token.CommandInfo) error {
	pos := l.currentPos()

	switch ch := l.ch; {
	case ch == ' ' || ch == '\t':
		l.readChar()
		return nil

	case ch == '\n':
		l.readChar()
		return l.emit(info, token.NEWLINE, pos)

	case ch == '#':
		for l.ch != 0 && l.ch != '\n' {
			l.readChar()
		}
		return nil

	case ch == '(':
		l.readChar()
		return l.emit(info, token.LPAREN, pos)
	case ch == ')':
		l.readChar()
		return l.emit(info, token.RPAREN, pos)
	case ch == '{':
		l.readChar()
		return l.emit(info, token.LBRACE, pos)
	case ch == '}':
		l.readChar()
		return l.emit(info, token.RBRACE, pos)
	case ch == '[':
		l.readChar()
		return l.emit(info, token.LBRACKET, pos)
	case ch == ']':
		l.readChar()
		return l.emit(info, token.RBRACKET, pos)
	case ch == ',':
		l.readChar()
		return l.emit(info, token.COMMA, pos)
	case ch == '.':
		l.readChar()
		return l.emit(info, token.DOT, pos)
	case ch == ';':
		l.readChar()
		return l.emit(info, token.SEMICOLON, pos)
	case ch == '~':
		l.readChar()
		return l.emit(info, token.TILDE, pos)

	case ch == ':':
		l.readChar()
		if l.next('=') {
			return l.emit(info, token.WALRUS, pos)
		}
		return l.emit(info, token.COLON, pos)

	case ch == '+':
		l.readChar()
		if l.next('=') {
			return l.emit(info, token.PLUS_ASSIGN, pos)
		}
		return l.emit(info, token.PLUS, pos)
	case ch == '-':
		l.readChar()
		if l.next('=') {
			return l.emit(info, token.MINUS_ASSIGN, pos)
		}
		return l.emit(info, token.MINUS, pos)
	case ch == '%':
		l.readChar()
		if l.next('=') {
			return l.emit(info, token.PERCENT_ASSIGN, pos)
		}
		return l.emit(info, token.PERCENT, pos)
	case ch == '@':
		l.readChar()
		if l.next('=') {
			return l.emit(info, token.AT_ASSIGN, pos)
		}
		return l.emit(info, token.AT, pos)
	case ch == '&':
		l.readChar()
		if l.next('=') {
			return l.emit(info, token.AMP_ASSIGN, pos)
		}
		return l.emit(info, token.AMP, pos)
	case ch == '|':
		l.readChar()
		if l.next('=') {
			return l.emit(info, token.PIPE_ASSIGN, pos)
		}
		return l.emit(info, token.PIPE, pos)
	case ch == '^':
		l.readChar()
		if l.next('=') {
			return l.emit(info, token.CARET_ASSIGN, pos)
		}
		return l.emit(info, token.CARET, pos)
	case ch == '=':
		l.readChar()
		if l.next('=') {
			return l.emit(info, token.EQ, pos)
		}
		return l.emit(info, token.ASSIGN, pos)
	case ch == '!':
		l.readChar()
		if l.next('=') {
			return l.emit(info, token.NE, pos)
		}
		return errors.New(errors.Syntax, "invalid character")

	case ch == '*':
		l.readChar()
		if l.next('*') {
			if l.next('=') {
				return l.emit(info, token.DSTAR_ASSIGN, pos)
			}
			return l.emit(info, token.DSTAR, pos)
		}
		if l.next('=') {
			return l.emit(info, token.STAR_ASSIGN, pos)
		}
		return l.emit(info, token.STAR, pos)

	case ch == '/':
		l.readChar()
		if l.next('/') {
			if l.next('=') {
				return l.emit(info, token.DSLASH_ASSIGN, pos)
			}
			return l.emit(info, token.DSLASH, pos)
		}
		if l.next('=') {
			return l.emit(info, token.SLASH_ASSIGN, pos)
		}
		return l.emit(info, token.SLASH, pos)

	case ch == '<':
		l.readChar()
		if l.next('<') {
			if l.next('=') {
				return l.emit(info, token.SHL_ASSIGN, pos)
			}
			return l.emit(info, token.SHL, pos)
		}
		if l.next('=') {
			return l.emit(info, token.LE, pos)
		}
		return l.emit(info, token.LT, pos)

	case ch == '>':
		l.readChar()
		if l.next('>') {
			if l.next('=') {
				return l.emit(info, token.SHR_ASSIGN, pos)
			}
			return l.emit(info, token.SHR, pos)
		}
		if l.next('=') {
			return l.emit(info, token.GE, pos)
		}
		return l.emit(info, token.GT, pos)

	case ch == '\'' || ch == '"':
		return l.scanString(info, pos)

	case isDigit(ch):
		return l.scanNumber(info, pos)

	case isLetter(ch):
		return l.scanIdentifier(info, pos)

	default:
		return errors.New(errors.Syntax, "invalid character")
	}
}

func (l *Lexer) scanString(info *token.CommandInfo, pos token.Position) error {
	terminator := l.ch
	l.readChar() // consume opening quote
	start := l.position
	for l.ch != terminator {
		if l.ch == 0 {
			return errors.New(errors.Syntax, "unterminated string literal")
		}
		l.readChar()
	}
	lit := l.input[start:l.position]
	l.readChar() // consume closing quote
	if l.trace != nil {
		fmt.Fprintf(l.trace, "lex: STRING %q\n", lit)
	}
	return info.AddString(lit, pos)
}

func (l *Lexer) scanNumber(info *token.CommandInfo, pos token.Position) error {
	var value uint16
	for isDigit(l.ch) {
		digit := uint16(l.ch - '0')
		value = value*10 + digit // overflow wraps modulo 2^16 per Go's uint16 semantics
		l.readChar()
	}
	if l.trace != nil {
		fmt.Fprintf(l.trace, "lex: NUMBER %d\n", value)
	}
	return info.AddNumber(value, pos)
}

func (l *Lexer) scanIdentifier(info *token.CommandInfo, pos token.Position) error {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	name := l.input[start:l.position]

	if kind := token.LookupIdent(name); kind != token.IDENT {
		return l.emit(info, kind, pos)
	}
	if l.trace != nil {
		fmt.Fprintf(l.trace, "lex: IDENT %s\n", name)
	}
	return info.AddIdentifier(name, pos)
}
