// Package parser implements the recursive-descent parser: one
// function per precedence tier, each returning a single ast.Ref.
// Augmented assignment, chained comparison, and elif chains are
// desugared during parsing, so the evaluator only ever sees the core
// node kinds.
package parser

import (
	"fmt"
	"io"

	"github.com/isaacjoffe/nanopy/errors"
	"github.com/isaacjoffe/nanopy/internal/ast"
	"github.com/isaacjoffe/nanopy/internal/limits"
	"github.com/isaacjoffe/nanopy/internal/token"
	"github.com/isaacjoffe/nanopy/internal/values"
)

// Parser turns a lexed token.CommandInfo into an AST, allocating nodes
// from an arena shared with the caller for the lifetime of one parse.
type Parser struct {
	info    *token.CommandInfo
	arena   *ast.Arena
	cfg     limits.Config
	current int

	loopDepth int
	trace     io.Writer
}

// Option configures a Parser at construction time.
type Option func(*Parser)

// WithTracing makes the parser write one line per production entered
// to w.
func WithTracing(w io.Writer) Option {
	return func(p *Parser) { p.trace = w }
}

// New creates a Parser over info, allocating into arena.
func New(info *token.CommandInfo, arena *ast.Arena, cfg limits.Config, opts ...Option) *Parser {
	p := &Parser{info: info, arena: arena, cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) enter(production string) {
	if p.trace != nil {
		fmt.Fprintf(p.trace, "parse: %s\n", production)
	}
}

// Parse consumes the entire token stream and returns the root Block
// node reference. The top level is the same block production used for
// a nested compound body.
func (p *Parser) Parse() (ast.Ref, error) {
	root, err := p.block()
	if err != nil {
		return ast.NoRef, err
	}
	if !p.atEnd() {
		return ast.NoRef, p.syntaxError("invalid syntax")
	}
	return root, nil
}

// --- token-stream helpers -------------------------------------------------

func (p *Parser) atEnd() bool {
	return p.current >= len(p.info.Tokens)
}

func (p *Parser) curTokenIs(k token.Kind) bool {
	if p.atEnd() {
		return false
	}
	return p.info.Tokens[p.current].Kind == k
}

// curTokenIsAny reports whether the current token matches any of ks.
func (p *Parser) curTokenIsAny(ks ...token.Kind) bool {
	for _, k := range ks {
		if p.curTokenIs(k) {
			return true
		}
	}
	return false
}

// advance consumes and returns the current token, or EOF at the end.
func (p *Parser) advance() token.Token {
	if p.atEnd() {
		return token.Token{Kind: token.EOF, Lit: -1}
	}
	t := p.info.Tokens[p.current]
	p.current++
	return t
}

// match consumes the current token and reports true if it has kind k.
func (p *Parser) match(k token.Kind) bool {
	if !p.curTokenIs(k) {
		return false
	}
	p.advance()
	return true
}

// matchAny consumes the current token and reports true if its kind is
// any of ks, recording which one matched.
func (p *Parser) matchAny(ks ...token.Kind) (token.Kind, bool) {
	for _, k := range ks {
		if p.curTokenIs(k) {
			p.advance()
			return k, true
		}
	}
	return token.EOF, false
}

// expect consumes the current token if it has kind k, else reports a
// SyntaxError without consuming.
func (p *Parser) expect(k token.Kind) error {
	if p.match(k) {
		return nil
	}
	return p.syntaxError("invalid syntax")
}

func (p *Parser) syntaxError(msg string) error {
	return errors.New(errors.Syntax, msg)
}

// skipNewlines consumes a run of statement-separator NEWLINE tokens,
// used after a compound statement's `:` so the body may start on the
// next line (file input produces NEWLINE tokens; single-line REPL
// input never does).
func (p *Parser) skipNewlines() {
	for p.curTokenIs(token.NEWLINE) {
		p.advance()
	}
}

// --- arena helpers ---------------------------------------------------------

func (p *Parser) newNode(n ast.Node) (ast.Ref, error) {
	return p.arena.New(n)
}

func (p *Parser) noneLiteral() (ast.Ref, error) {
	return p.newNode(ast.Node{Kind: ast.KindLiteral, Lit: values.None})
}

// --- tier 0: block ----------------------------------------------------------

// block parses one or more statements separated by `;` or NEWLINE and
// wraps them in a single KindBlock node.
//
// A block ends at end of input or when the token after a separator
// run is `else` or `elif`; those belong to the enclosing compound
// statement, and with no indentation there is no other way for a
// nested body to hand them back.
func (p *Parser) block() (ast.Ref, error) {
	p.enter("block")
	stmts := make([]ast.Ref, 0, p.cfg.MaxNumStmts)

	first, err := p.statement()
	if err != nil {
		return ast.NoRef, err
	}
	stmts = append(stmts, first)

	for p.curTokenIsAny(token.SEMICOLON, token.NEWLINE) {
		for p.curTokenIsAny(token.SEMICOLON, token.NEWLINE) {
			p.advance()
		}
		if p.atEnd() || p.curTokenIsAny(token.ELSE, token.ELIF) {
			break
		}
		if len(stmts) >= p.cfg.MaxNumStmts {
			return ast.NoRef, errors.New(errors.Runtime, "too many statements in block")
		}
		stmt, err := p.statement()
		if err != nil {
			return ast.NoRef, err
		}
		stmts = append(stmts, stmt)
	}

	return p.newNode(ast.Node{Kind: ast.KindBlock, Body: stmts})
}

// --- tier 1: statement -------------------------------------------------------

func (p *Parser) statement() (ast.Ref, error) {
	return p.special()
}

// --- tier 2: special ---------------------------------------------------------

func (p *Parser) special() (ast.Ref, error) {
	p.enter("special")
	if p.curTokenIsAny(token.BREAK, token.CONTINUE) {
		kind, _ := p.matchAny(token.BREAK, token.CONTINUE)
		if p.loopDepth == 0 {
			return ast.NoRef, p.syntaxError("outside loop")
		}
		return p.newNode(ast.Node{Kind: ast.KindSpecial, Op: kind})
	}
	if p.match(token.PASS) {
		return p.newNode(ast.Node{Kind: ast.KindSpecial, Op: token.PASS})
	}
	return p.forloop()
}

// --- tier 3: forloop ---------------------------------------------------------

func (p *Parser) forloop() (ast.Ref, error) {
	if !p.match(token.FOR) {
		return p.whileloop()
	}
	p.enter("forloop")
	p.loopDepth++
	defer func() { p.loopDepth-- }()

	var name string
	if p.curTokenIs(token.IDENT) {
		tok := p.advance()
		name = p.info.Identifier(tok.Lit)
	} else {
		return ast.NoRef, p.syntaxError("cannot assign to literal")
	}

	if !p.match(token.IN) {
		return ast.NoRef, p.syntaxError("invalid syntax")
	}

	iterable, err := p.expression()
	if err != nil {
		return ast.NoRef, err
	}
	if err := p.expect(token.COLON); err != nil {
		return ast.NoRef, err
	}
	p.skipNewlines()

	body, err := p.block()
	if err != nil {
		return ast.NoRef, err
	}

	elseBranch, err := p.elseOrNone()
	if err != nil {
		return ast.NoRef, err
	}

	return p.newNode(ast.Node{Kind: ast.KindFor, Name: name, Left: iterable, Right: body, Else: elseBranch})
}

// --- tier 4: whileloop --------------------------------------------------------

func (p *Parser) whileloop() (ast.Ref, error) {
	if !p.match(token.WHILE) {
		return p.ifelse()
	}
	p.enter("whileloop")
	p.loopDepth++
	defer func() { p.loopDepth-- }()

	cond, err := p.expression()
	if err != nil {
		return ast.NoRef, err
	}
	if err := p.expect(token.COLON); err != nil {
		return ast.NoRef, err
	}
	p.skipNewlines()

	body, err := p.block()
	if err != nil {
		return ast.NoRef, err
	}

	elseBranch, err := p.elseOrNone()
	if err != nil {
		return ast.NoRef, err
	}

	return p.newNode(ast.Node{Kind: ast.KindWhile, Left: cond, Right: body, Else: elseBranch})
}

// elseOrNone parses an optional `else : block`, synthesizing
// Literal(None) when absent.
func (p *Parser) elseOrNone() (ast.Ref, error) {
	if !p.match(token.ELSE) {
		return p.noneLiteral()
	}
	if err := p.expect(token.COLON); err != nil {
		return ast.NoRef, err
	}
	p.skipNewlines()
	return p.block()
}

// --- tier 5: ifelse ------------------------------------------------------------

// ifelse builds the elif chain from the tail inward: the innermost
// IfElse pairs the last elif with the final else branch;
// each enclosing node wraps the prior elif's IfElse as its own else.
func (p *Parser) ifelse() (ast.Ref, error) {
	if !p.match(token.IF) {
		return p.assign()
	}
	p.enter("ifelse")

	var conditions, branches []ast.Ref

	cond, err := p.expression()
	if err != nil {
		return ast.NoRef, err
	}
	if err := p.expect(token.COLON); err != nil {
		return ast.NoRef, err
	}
	p.skipNewlines()
	branch, err := p.block()
	if err != nil {
		return ast.NoRef, err
	}
	conditions = append(conditions, cond)
	branches = append(branches, branch)

	for p.match(token.ELIF) {
		if len(conditions) >= p.cfg.MaxNumBranches {
			return ast.NoRef, errors.New(errors.Runtime, "too many branches in if statement")
		}
		cond, err := p.expression()
		if err != nil {
			return ast.NoRef, err
		}
		if err := p.expect(token.COLON); err != nil {
			return ast.NoRef, err
		}
		p.skipNewlines()
		branch, err := p.block()
		if err != nil {
			return ast.NoRef, err
		}
		conditions = append(conditions, cond)
		branches = append(branches, branch)
	}

	finalBranch, err := p.elseOrNone()
	if err != nil {
		return ast.NoRef, err
	}

	i := len(conditions) - 1
	expr, err := p.newNode(ast.Node{Kind: ast.KindIfElse, Left: conditions[i], Right: branches[i], Else: finalBranch})
	if err != nil {
		return ast.NoRef, err
	}
	for i--; i >= 0; i-- {
		expr, err = p.newNode(ast.Node{Kind: ast.KindIfElse, Left: conditions[i], Right: branches[i], Else: expr})
		if err != nil {
			return ast.NoRef, err
		}
	}
	return expr, nil
}

// --- tier 6: assign --------------------------------------------------------

// augmentedOps maps each augmented-assignment token to the binary
// operator it desugars to. WALRUS desugars to COLON, which has no
// evaluation semantics; the evaluator rejects it.
var augmentedOps = map[token.Kind]token.Kind{
	token.PLUS_ASSIGN:    token.PLUS,
	token.MINUS_ASSIGN:   token.MINUS,
	token.STAR_ASSIGN:    token.STAR,
	token.AT_ASSIGN:      token.AT,
	token.SLASH_ASSIGN:   token.SLASH,
	token.PERCENT_ASSIGN: token.PERCENT,
	token.DSTAR_ASSIGN:   token.DSTAR,
	token.DSLASH_ASSIGN:  token.DSLASH,
	token.AMP_ASSIGN:     token.AMP,
	token.PIPE_ASSIGN:    token.PIPE,
	token.CARET_ASSIGN:   token.CARET,
	token.SHL_ASSIGN:     token.SHL,
	token.SHR_ASSIGN:     token.SHR,
	token.WALRUS:         token.COLON,
}

var augmentedKinds = []token.Kind{
	token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.AT_ASSIGN,
	token.SLASH_ASSIGN, token.PERCENT_ASSIGN, token.DSTAR_ASSIGN, token.DSLASH_ASSIGN,
	token.AMP_ASSIGN, token.PIPE_ASSIGN, token.CARET_ASSIGN, token.SHL_ASSIGN,
	token.SHR_ASSIGN, token.WALRUS,
}

func (p *Parser) assign() (ast.Ref, error) {
	p.enter("assign")
	if !p.curTokenIs(token.IDENT) {
		return p.expression()
	}

	// Speculatively consume the identifier; back out if no assignment
	// operator follows.
	mark := p.current
	tok := p.advance()
	name := p.info.Identifier(tok.Lit)

	if p.match(token.ASSIGN) {
		value, err := p.assign()
		if err != nil {
			return ast.NoRef, err
		}
		return p.newNode(ast.Node{Kind: ast.KindAssign, Name: name, Left: value})
	}

	if opTok, ok := p.matchAny(augmentedKinds...); ok {
		variable, err := p.newNode(ast.Node{Kind: ast.KindVariable, Name: name})
		if err != nil {
			return ast.NoRef, err
		}
		rhs, err := p.expression()
		if err != nil {
			return ast.NoRef, err
		}
		aug, err := p.newNode(ast.Node{Kind: ast.KindBinary, Op: augmentedOps[opTok], Left: variable, Right: rhs})
		if err != nil {
			return ast.NoRef, err
		}
		return p.newNode(ast.Node{Kind: ast.KindAssign, Name: name, Left: aug})
	}

	p.current = mark
	return p.expression()
}

// --- tier 7: expression -------------------------------------------------------

func (p *Parser) expression() (ast.Ref, error) {
	p.enter("expression")
	return p.disjunction()
}

// --- tiers 8-9: disjunction, conjunction (short-circuit, left-assoc) --------

func (p *Parser) disjunction() (ast.Ref, error) {
	return p.leftAssocLogical(token.OR, p.conjunction)
}

func (p *Parser) conjunction() (ast.Ref, error) {
	return p.leftAssocLogical(token.AND, p.inversion)
}

func (p *Parser) leftAssocLogical(op token.Kind, next func() (ast.Ref, error)) (ast.Ref, error) {
	left, err := next()
	if err != nil {
		return ast.NoRef, err
	}
	for p.match(op) {
		right, err := next()
		if err != nil {
			return ast.NoRef, err
		}
		left, err = p.newNode(ast.Node{Kind: ast.KindLogical, Op: op, Left: left, Right: right})
		if err != nil {
			return ast.NoRef, err
		}
	}
	return left, nil
}

// --- tier 10: inversion (prefix `not`, right-recursive) ---------------------

func (p *Parser) inversion() (ast.Ref, error) {
	if p.match(token.NOT) {
		operand, err := p.inversion()
		if err != nil {
			return ast.NoRef, err
		}
		return p.newNode(ast.Node{Kind: ast.KindUnary, Op: token.NOT, Left: operand})
	}
	return p.comparison()
}

// --- tier 11: comparison (chained, desugars into and-joined binaries) ------

// matchComparisonOp recognizes a comparison operator, composing the
// two-token forms `is not` and `not in` by looking ahead.
// The returned kind is IS for both `is` and `is not` and IN for both
// `in` and `not in`; negated reports which form matched.
func (p *Parser) matchComparisonOp() (kind token.Kind, negated bool, ok bool) {
	if p.match(token.IS) {
		if p.match(token.NOT) {
			return token.IS, true, true
		}
		return token.IS, false, true
	}
	if p.curTokenIs(token.NOT) {
		mark := p.current
		p.advance()
		if p.match(token.IN) {
			return token.IN, true, true
		}
		p.current = mark
		return token.EOF, false, false
	}
	if k, matched := p.matchAny(token.EQ, token.NE, token.GT, token.GE, token.LT, token.LE, token.IN); matched {
		return k, false, true
	}
	return token.EOF, false, false
}

func (p *Parser) comparison() (ast.Ref, error) {
	p.enter("comparison")
	left, err := p.bor()
	if err != nil {
		return ast.NoRef, err
	}

	var chained ast.Ref
	first := true
	for {
		op, negated, ok := p.matchComparisonOp()
		if !ok {
			break
		}
		right, err := p.bor()
		if err != nil {
			return ast.NoRef, err
		}

		bin, err := p.newNode(ast.Node{Kind: ast.KindBinary, Op: op, Left: left, Right: right})
		if err != nil {
			return ast.NoRef, err
		}
		if negated {
			bin, err = p.newNode(ast.Node{Kind: ast.KindUnary, Op: token.NOT, Left: bin})
			if err != nil {
				return ast.NoRef, err
			}
		}

		if first {
			first = false
			chained = bin
		} else {
			chained, err = p.newNode(ast.Node{Kind: ast.KindLogical, Op: token.AND, Left: chained, Right: bin})
			if err != nil {
				return ast.NoRef, err
			}
		}
		left = right
	}

	if first {
		// no comparison operator matched; chained was never assigned
		return left, nil
	}
	return chained, nil
}

// --- tiers 12-17: bor, bxor, band, shift, sum, term (left-assoc binary) -----

func (p *Parser) bor() (ast.Ref, error)   { return p.leftAssocBinary(p.bxor, token.PIPE) }
func (p *Parser) bxor() (ast.Ref, error)  { return p.leftAssocBinary(p.band, token.CARET) }
func (p *Parser) band() (ast.Ref, error)  { return p.leftAssocBinary(p.shift, token.AMP) }
func (p *Parser) shift() (ast.Ref, error) { return p.leftAssocBinary(p.sum, token.SHL, token.SHR) }
func (p *Parser) sum() (ast.Ref, error)   { return p.leftAssocBinary(p.term, token.PLUS, token.MINUS) }
func (p *Parser) term() (ast.Ref, error) {
	return p.leftAssocBinary(p.factor, token.STAR, token.SLASH, token.DSLASH, token.PERCENT, token.AT)
}

func (p *Parser) leftAssocBinary(next func() (ast.Ref, error), ops ...token.Kind) (ast.Ref, error) {
	left, err := next()
	if err != nil {
		return ast.NoRef, err
	}
	for {
		op, ok := p.matchAny(ops...)
		if !ok {
			break
		}
		right, err := next()
		if err != nil {
			return ast.NoRef, err
		}
		left, err = p.newNode(ast.Node{Kind: ast.KindBinary, Op: op, Left: left, Right: right})
		if err != nil {
			return ast.NoRef, err
		}
	}
	return left, nil
}

// --- tier 18: factor (prefix +, -, ~; right-recursive) ----------------------

func (p *Parser) factor() (ast.Ref, error) {
	if op, ok := p.matchAny(token.PLUS, token.MINUS, token.TILDE); ok {
		operand, err := p.factor()
		if err != nil {
			return ast.NoRef, err
		}
		return p.newNode(ast.Node{Kind: ast.KindUnary, Op: op, Left: operand})
	}
	return p.power()
}

// --- tier 19: power (right-associative) -------------------------------------

func (p *Parser) power() (ast.Ref, error) {
	left, err := p.primary()
	if err != nil {
		return ast.NoRef, err
	}
	if p.match(token.DSTAR) {
		right, err := p.factor()
		if err != nil {
			return ast.NoRef, err
		}
		return p.newNode(ast.Node{Kind: ast.KindBinary, Op: token.DSTAR, Left: left, Right: right})
	}
	return left, nil
}

// --- tier 20: primary --------------------------------------------------------

func (p *Parser) primary() (ast.Ref, error) {
	p.enter("primary")
	switch {
	case p.match(token.FALSE):
		return p.newNode(ast.Node{Kind: ast.KindLiteral, Lit: values.Bool(false)})
	case p.match(token.NONE):
		return p.newNode(ast.Node{Kind: ast.KindLiteral, Lit: values.None})
	case p.match(token.TRUE):
		return p.newNode(ast.Node{Kind: ast.KindLiteral, Lit: values.Bool(true)})
	case p.curTokenIs(token.NUMBER):
		tok := p.advance()
		return p.newNode(ast.Node{Kind: ast.KindLiteral, Lit: values.Int(p.info.Number(tok.Lit))})
	case p.curTokenIs(token.STRING):
		tok := p.advance()
		return p.newNode(ast.Node{Kind: ast.KindLiteral, Lit: values.Str(p.info.String(tok.Lit))})
	case p.match(token.LPAREN):
		inner, err := p.expression()
		if err != nil {
			return ast.NoRef, err
		}
		grouping, err := p.newNode(ast.Node{Kind: ast.KindGrouping, Left: inner})
		if err != nil {
			return ast.NoRef, err
		}
		if err := p.expect(token.RPAREN); err != nil {
			return ast.NoRef, err
		}
		return grouping, nil
	case p.curTokenIs(token.IDENT):
		tok := p.advance()
		return p.newNode(ast.Node{Kind: ast.KindVariable, Name: p.info.Identifier(tok.Lit)})
	default:
		return ast.NoRef, p.syntaxError("invalid syntax")
	}
}
