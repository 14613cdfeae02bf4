package interp

import (
	"strings"

	"github.com/isaacjoffe/nanopy/errors"
	"github.com/isaacjoffe/nanopy/internal/ast"
	"github.com/isaacjoffe/nanopy/internal/token"
	"github.com/isaacjoffe/nanopy/internal/values"
)

// signal is a control-flow out-of-band result, never visible outside
// the nearest enclosing loop.
type signal int

const (
	signalNone signal = iota
	signalBreak
	signalContinue
)

// Evaluator walks an AST rooted in arena, reading and writing env.
type Evaluator struct {
	arena *ast.Arena
	env   *Environment
}

// New creates an Evaluator over arena, mutating env.
func New(arena *ast.Arena, env *Environment) *Evaluator {
	return &Evaluator{arena: arena, env: env}
}

// Eval evaluates the statement-root ref and returns its value: an
// expression's value, the assigned value for an assignment, the last
// statement's value for a block, the value of the branch taken for
// if/while/for, and values.None for pass, break, and continue.
func (e *Evaluator) Eval(ref ast.Ref) (values.Value, error) {
	v, _, err := e.eval(ref)
	return v, err
}

func (e *Evaluator) eval(ref ast.Ref) (values.Value, signal, error) {
	n := e.arena.Get(ref)
	switch n.Kind {
	case ast.KindLiteral:
		return n.Lit, signalNone, nil

	case ast.KindVariable:
		v, ok := e.env.Read(n.Name)
		if !ok {
			return values.None, signalNone, errors.New(errors.Name, "name '%s' is not defined", n.Name)
		}
		return v, signalNone, nil

	case ast.KindAssign:
		v, sig, err := e.eval(n.Left)
		if err != nil {
			return values.None, signalNone, err
		}
		if err := e.env.Write(n.Name, v); err != nil {
			return values.None, signalNone, err
		}
		return v, sig, nil

	case ast.KindGrouping:
		return e.eval(n.Left)

	case ast.KindUnary:
		return e.evalUnary(n)

	case ast.KindBinary:
		return e.evalBinary(n)

	case ast.KindLogical:
		return e.evalLogical(n)

	case ast.KindBlock:
		return e.evalBlock(n)

	case ast.KindIfElse:
		return e.evalIfElse(n)

	case ast.KindWhile:
		return e.evalWhile(n)

	case ast.KindFor:
		return e.evalFor(n)

	case ast.KindSpecial:
		return e.evalSpecial(n)

	default:
		return values.None, signalNone, errors.New(errors.Runtime, "unrecognized AST node kind")
	}
}

func (e *Evaluator) evalBlock(n *ast.Node) (values.Value, signal, error) {
	result := values.None
	for _, stmt := range n.Body {
		v, sig, err := e.eval(stmt)
		if err != nil {
			return values.None, signalNone, err
		}
		result = v
		if sig != signalNone {
			return result, sig, nil
		}
	}
	return result, signalNone, nil
}

func (e *Evaluator) evalIfElse(n *ast.Node) (values.Value, signal, error) {
	cond, _, err := e.eval(n.Left)
	if err != nil {
		return values.None, signalNone, err
	}
	if cond.Truthy() {
		return e.eval(n.Right)
	}
	return e.eval(n.Else)
}

func (e *Evaluator) evalWhile(n *ast.Node) (values.Value, signal, error) {
	result := values.None
	for {
		cond, _, err := e.eval(n.Left)
		if err != nil {
			return values.None, signalNone, err
		}
		if !cond.Truthy() {
			v, _, err := e.eval(n.Else)
			if err != nil {
				return values.None, signalNone, err
			}
			return v, signalNone, nil
		}

		v, sig, err := e.eval(n.Right)
		if err != nil {
			return values.None, signalNone, err
		}
		result = v
		if sig == signalBreak {
			return result, signalNone, nil
		}
		// signalContinue and signalNone both fall through to re-check cond
	}
}

func (e *Evaluator) evalFor(n *ast.Node) (values.Value, signal, error) {
	iterable, _, err := e.eval(n.Left)
	if err != nil {
		return values.None, signalNone, err
	}
	if iterable.Kind != values.StrKind {
		return values.None, signalNone, errors.New(errors.Type, "'%s' object is not iterable", iterable.TypeName())
	}

	result := values.None
	for _, r := range iterable.S {
		if err := e.env.Write(n.Name, values.Str(string(r))); err != nil {
			return values.None, signalNone, err
		}
		v, sig, err := e.eval(n.Right)
		if err != nil {
			return values.None, signalNone, err
		}
		result = v
		if sig == signalBreak {
			return result, signalNone, nil
		}
	}
	// loop ended naturally (including zero iterations): evaluate else
	v, _, err := e.eval(n.Else)
	if err != nil {
		return values.None, signalNone, err
	}
	return v, signalNone, nil
}

func (e *Evaluator) evalSpecial(n *ast.Node) (values.Value, signal, error) {
	switch n.Op {
	case token.BREAK:
		return values.None, signalBreak, nil
	case token.CONTINUE:
		return values.None, signalContinue, nil
	case token.PASS:
		return values.None, signalNone, nil
	default:
		return values.None, signalNone, errors.New(errors.Runtime, "unrecognized special statement")
	}
}

func (e *Evaluator) evalLogical(n *ast.Node) (values.Value, signal, error) {
	left, sig, err := e.eval(n.Left)
	if err != nil {
		return values.None, signalNone, err
	}
	if sig != signalNone {
		return left, sig, nil
	}
	if n.Op == token.OR {
		if left.Truthy() {
			return left, signalNone, nil
		}
	} else { // token.AND
		if !left.Truthy() {
			return left, signalNone, nil
		}
	}
	return e.eval(n.Right)
}

func (e *Evaluator) evalUnary(n *ast.Node) (values.Value, signal, error) {
	operand, sig, err := e.eval(n.Left)
	if err != nil {
		return values.None, signalNone, err
	}
	if sig != signalNone {
		return values.None, sig, nil
	}

	switch n.Op {
	case token.NOT:
		return values.Bool(!operand.Truthy()), signalNone, nil
	case token.PLUS:
		if operand.Kind != values.IntKind {
			return values.None, signalNone, errors.New(errors.Type, "bad operand type for unary +: '%s'", operand.TypeName())
		}
		return operand, signalNone, nil
	case token.MINUS:
		if operand.Kind != values.IntKind {
			return values.None, signalNone, errors.New(errors.Type, "bad operand type for unary -: '%s'", operand.TypeName())
		}
		return values.Int(-operand.I), signalNone, nil
	case token.TILDE:
		if operand.Kind != values.IntKind {
			return values.None, signalNone, errors.New(errors.Type, "bad operand type for unary ~: '%s'", operand.TypeName())
		}
		return values.Int(^operand.I), signalNone, nil
	default:
		return values.None, signalNone, errors.New(errors.Runtime, "unrecognized unary operator")
	}
}

func (e *Evaluator) evalBinary(n *ast.Node) (values.Value, signal, error) {
	if n.Op == token.COLON {
		// the parser desugars walrus to COLON; it has no runtime
		// semantics, and is rejected before either operand is evaluated
		return values.None, signalNone, errors.New(errors.Syntax, "invalid syntax")
	}

	left, sig, err := e.eval(n.Left)
	if err != nil {
		return values.None, signalNone, err
	}
	if sig != signalNone {
		return values.None, sig, nil
	}
	right, sig, err := e.eval(n.Right)
	if err != nil {
		return values.None, signalNone, err
	}
	if sig != signalNone {
		return values.None, sig, nil
	}

	switch n.Op {
	case token.EQ:
		return values.Bool(values.Equal(left, right)), signalNone, nil
	case token.NE:
		return values.Bool(!values.Equal(left, right)), signalNone, nil
	case token.LT, token.LE, token.GT, token.GE:
		return e.compare(n.Op, left, right)
	case token.IS:
		return values.Bool(values.Equal(left, right)), signalNone, nil
	case token.IN:
		return e.membership(left, right)
	case token.PLUS:
		return e.arithAdd(left, right)
	case token.MINUS:
		return e.arithInt(left, right, n.Op)
	case token.STAR:
		return e.arithMul(left, right)
	case token.SLASH:
		return e.arithDiv(left, right, false)
	case token.DSLASH:
		return e.arithDiv(left, right, true)
	case token.PERCENT:
		return e.arithMod(left, right)
	case token.DSTAR:
		return e.arithPow(left, right)
	case token.AT, token.AMP, token.PIPE, token.CARET, token.SHL, token.SHR:
		return e.bitwise(n.Op, left, right)
	default:
		return values.None, signalNone, errors.New(errors.Runtime, "unrecognized binary operator")
	}
}

func requireBothInt(op string, left, right values.Value) error {
	if left.Kind != values.IntKind || right.Kind != values.IntKind {
		return errors.New(errors.Type, "unsupported operand type(s) for %s: '%s' and '%s'", op, left.TypeName(), right.TypeName())
	}
	return nil
}

func (e *Evaluator) arithAdd(left, right values.Value) (values.Value, signal, error) {
	if left.Kind == values.IntKind && right.Kind == values.IntKind {
		return values.Int(left.I + right.I), signalNone, nil
	}
	if left.Kind == values.StrKind && right.Kind == values.StrKind {
		return values.Str(left.S + right.S), signalNone, nil
	}
	return values.None, signalNone, errors.New(errors.Type, "unsupported operand type(s) for +: '%s' and '%s'", left.TypeName(), right.TypeName())
}

func (e *Evaluator) arithInt(left, right values.Value, op token.Kind) (values.Value, signal, error) {
	if err := requireBothInt(op.String(), left, right); err != nil {
		return values.None, signalNone, err
	}
	switch op {
	case token.MINUS:
		return values.Int(left.I - right.I), signalNone, nil
	}
	return values.None, signalNone, errors.New(errors.Runtime, "unreachable arithmetic operator")
}

func (e *Evaluator) arithMul(left, right values.Value) (values.Value, signal, error) {
	if left.Kind == values.IntKind && right.Kind == values.IntKind {
		return values.Int(left.I * right.I), signalNone, nil
	}
	if left.Kind == values.StrKind && right.Kind == values.IntKind {
		return repeatString(left.S, right.SignedInt()), signalNone, nil
	}
	if left.Kind == values.IntKind && right.Kind == values.StrKind {
		return repeatString(right.S, left.SignedInt()), signalNone, nil
	}
	return values.None, signalNone, errors.New(errors.Type, "unsupported operand type(s) for *: '%s' and '%s'", left.TypeName(), right.TypeName())
}

func repeatString(s string, count int32) values.Value {
	if count <= 0 {
		return values.Str("")
	}
	var b strings.Builder
	for i := int32(0); i < count && b.Len() < values.MaxStrLen; i++ {
		b.WriteString(s)
	}
	return values.Str(b.String())
}

func (e *Evaluator) arithDiv(left, right values.Value, floor bool) (values.Value, signal, error) {
	opName := "/"
	if floor {
		opName = "//"
	}
	if err := requireBothInt(opName, left, right); err != nil {
		return values.None, signalNone, err
	}
	if right.I == 0 {
		return values.None, signalNone, errors.New(errors.ZeroDivision, "division by zero")
	}
	if floor {
		q := left.SignedInt() / right.SignedInt()
		if (left.SignedInt()%right.SignedInt() != 0) && ((left.SignedInt() < 0) != (right.SignedInt() < 0)) {
			q--
		}
		return values.Int(uint16(int32(q))), signalNone, nil
	}
	return values.Int(left.I / right.I), signalNone, nil
}

func (e *Evaluator) arithMod(left, right values.Value) (values.Value, signal, error) {
	if err := requireBothInt("%", left, right); err != nil {
		return values.None, signalNone, err
	}
	if right.I == 0 {
		return values.None, signalNone, errors.New(errors.ZeroDivision, "division by zero")
	}
	return values.Int(left.I % right.I), signalNone, nil
}

func (e *Evaluator) arithPow(left, right values.Value) (values.Value, signal, error) {
	if err := requireBothInt("**", left, right); err != nil {
		return values.None, signalNone, err
	}
	exp := right.SignedInt()
	if exp < 0 {
		return values.Int(0), signalNone, nil
	}
	result := uint16(1)
	for i := int32(0); i < exp; i++ {
		result *= left.I
	}
	return values.Int(result), signalNone, nil
}

func (e *Evaluator) bitwise(op token.Kind, left, right values.Value) (values.Value, signal, error) {
	if err := requireBothInt(op.String(), left, right); err != nil {
		return values.None, signalNone, err
	}
	switch op {
	case token.AMP:
		return values.Int(left.I & right.I), signalNone, nil
	case token.PIPE:
		return values.Int(left.I | right.I), signalNone, nil
	case token.CARET:
		return values.Int(left.I ^ right.I), signalNone, nil
	case token.SHL:
		if right.I >= 16 {
			return values.Int(0), signalNone, nil
		}
		return values.Int(left.I << right.I), signalNone, nil
	case token.SHR:
		if right.I >= 16 {
			return values.Int(0), signalNone, nil
		}
		return values.Int(left.I >> right.I), signalNone, nil
	case token.AT:
		// matrix multiplication has no semantics over Int/Str
		return values.None, signalNone, errors.New(errors.Type, "unsupported operand type(s) for @: '%s' and '%s'", left.TypeName(), right.TypeName())
	default:
		return values.None, signalNone, errors.New(errors.Runtime, "unreachable bitwise operator")
	}
}

func (e *Evaluator) compare(op token.Kind, left, right values.Value) (values.Value, signal, error) {
	var lt, eq bool
	switch {
	case left.Kind == values.IntKind && right.Kind == values.IntKind:
		lt = left.SignedInt() < right.SignedInt()
		eq = left.I == right.I
	case left.Kind == values.StrKind && right.Kind == values.StrKind:
		lt = left.S < right.S
		eq = left.S == right.S
	default:
		return values.None, signalNone, errors.New(errors.Type, "'%s' not supported between instances of '%s' and '%s'", op, left.TypeName(), right.TypeName())
	}
	switch op {
	case token.LT:
		return values.Bool(lt), signalNone, nil
	case token.LE:
		return values.Bool(lt || eq), signalNone, nil
	case token.GT:
		return values.Bool(!lt && !eq), signalNone, nil
	case token.GE:
		return values.Bool(!lt), signalNone, nil
	default:
		return values.None, signalNone, errors.New(errors.Runtime, "unreachable comparison operator")
	}
}

func (e *Evaluator) membership(left, right values.Value) (values.Value, signal, error) {
	if left.Kind != values.StrKind || right.Kind != values.StrKind {
		return values.None, signalNone, errors.New(errors.Type, "argument of type '%s' is not iterable", right.TypeName())
	}
	return values.Bool(strings.Contains(right.S, left.S)), signalNone, nil
}
