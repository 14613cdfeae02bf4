package interp

import (
	"testing"

	"github.com/isaacjoffe/nanopy/errors"
	"github.com/isaacjoffe/nanopy/internal/ast"
	"github.com/isaacjoffe/nanopy/internal/lexer"
	"github.com/isaacjoffe/nanopy/internal/limits"
	"github.com/isaacjoffe/nanopy/internal/parser"
	"github.com/isaacjoffe/nanopy/internal/values"
)

// run executes src against a fresh environment and returns the value
// of its final top-level statement, mirroring the REPL's
// last-statement-wins printing.
func run(t *testing.T, src string) values.Value {
	t.Helper()
	v, err := runErr(src)
	if err != nil {
		t.Fatalf("run(%q): unexpected error: %v", src, err)
	}
	return v
}

func runErr(src string) (values.Value, error) {
	cfg := limits.Default()
	info, err := lexer.New(src, lexer.WithLimits(cfg)).Scan()
	if err != nil {
		return values.None, err
	}
	arena := ast.NewArena(cfg.ArenaCapacity)
	root, err := parser.New(info, arena, cfg).Parse()
	if err != nil {
		return values.None, err
	}
	env := NewEnvironment(cfg)
	return New(arena, env).Eval(root)
}

// runSession evaluates each command in order against one shared
// environment, the way consecutive REPL cycles do, and returns the
// value of the last command. A loop body swallows every statement
// after its `:` up to end of input (there is no indentation to close
// it), so "run the loop, then inspect a variable" needs two commands.
func runSession(t *testing.T, cmds ...string) values.Value {
	t.Helper()
	cfg := limits.Default()
	env := NewEnvironment(cfg)
	last := values.None
	for _, src := range cmds {
		info, err := lexer.New(src, lexer.WithLimits(cfg)).Scan()
		if err != nil {
			t.Fatalf("lex(%q): %v", src, err)
		}
		arena := ast.NewArena(cfg.ArenaCapacity)
		root, err := parser.New(info, arena, cfg).Parse()
		if err != nil {
			t.Fatalf("parse(%q): %v", src, err)
		}
		last, err = New(arena, env).Eval(root)
		if err != nil {
			t.Fatalf("eval(%q): %v", src, err)
		}
	}
	return last
}

func TestScenario_OperatorPrecedence(t *testing.T) {
	if v := run(t, "1 + 2 * 3"); v.I != 7 {
		t.Fatalf("got %+v, want 7", v)
	}
}

func TestScenario_PowerRightAssociative(t *testing.T) {
	if v := run(t, "2 ** 3 ** 2"); v.I != 512 {
		t.Fatalf("got %+v, want 512", v)
	}
}

func TestScenario_AugmentedAssignChain(t *testing.T) {
	if v := run(t, "x = 5; x += 3; x"); v.I != 8 {
		t.Fatalf("got %+v, want 8", v)
	}
}

func TestScenario_ChainedComparisonTrue(t *testing.T) {
	if v := run(t, "1 < 2 < 3"); !v.B || v.Kind != values.BoolKind {
		t.Fatalf("got %+v, want True", v)
	}
}

func TestScenario_ChainedComparisonFalse(t *testing.T) {
	v := run(t, "1 < 2 < 0")
	if v.Kind != values.BoolKind || v.B {
		t.Fatalf("got %+v, want False", v)
	}
}

func TestScenario_WhileAccumulation(t *testing.T) {
	if v := runSession(t, "i = 0", "while i < 3: i = i + 1", "i"); v.I != 3 {
		t.Fatalf("got %+v, want 3", v)
	}
}

func TestScenario_StringConcat(t *testing.T) {
	v := run(t, "'ab' + 'cd'")
	if v.Kind != values.StrKind || v.S != "abcd" {
		t.Fatalf("got %+v, want 'abcd'", v)
	}
}

func TestScenario_DivisionByZero(t *testing.T) {
	_, err := runErr("5 / 0")
	perr, ok := err.(*errors.Error)
	if !ok || perr.Kind != errors.ZeroDivision {
		t.Fatalf("got %v, want ZeroDivisionError", err)
	}
}

func TestScenario_UnboundName(t *testing.T) {
	_, err := runErr("y")
	perr, ok := err.(*errors.Error)
	if !ok || perr.Kind != errors.Name {
		t.Fatalf("got %v, want NameError", err)
	}
}

func TestScenario_IfElseBranchSelection(t *testing.T) {
	if v := runSession(t, "if 1 < 2: a = 10 else: a = 20", "a"); v.I != 10 {
		t.Fatalf("got %+v, want 10", v)
	}
}

func TestArithmeticWrapsModulo65536(t *testing.T) {
	v := run(t, "65535 + 1")
	if v.I != 0 {
		t.Fatalf("got %d, want 0 (wraps mod 2^16)", v.I)
	}
}

func TestFloorDivisionTruncatesTowardNegativeInfinity(t *testing.T) {
	// -7 // 2 == -4 in Python floor-division semantics
	v := run(t, "0 - 7")
	if v.SignedInt() != -7 {
		t.Fatalf("sanity check failed: got %d", v.SignedInt())
	}
	v = run(t, "(0 - 7) // 2")
	if v.SignedInt() != -4 {
		t.Fatalf("got %d, want -4", v.SignedInt())
	}
}

func TestNegativeExponentYieldsZero(t *testing.T) {
	v := run(t, "2 ** (0 - 1)")
	if v.I != 0 {
		t.Fatalf("got %d, want 0", v.I)
	}
}

func TestShiftCountAtOrAbove16YieldsZero(t *testing.T) {
	if v := run(t, "1 << 16"); v.I != 0 {
		t.Fatalf("got %d, want 0", v.I)
	}
	if v := run(t, "256 >> 16"); v.I != 0 {
		t.Fatalf("got %d, want 0", v.I)
	}
}

func TestStringRepetition(t *testing.T) {
	v := run(t, "'ab' * 3")
	if v.S != "ababab" {
		t.Fatalf("got %q", v.S)
	}
	v = run(t, "'ab' * (0 - 1)")
	if v.S != "" {
		t.Fatalf("got %q, want empty", v.S)
	}
}

func TestEqualityAcrossVariantsNeverErrors(t *testing.T) {
	v := run(t, "1 == 'a'")
	if v.Kind != values.BoolKind || v.B {
		t.Fatalf("got %+v, want False", v)
	}
	v = run(t, "1 != 'a'")
	if v.Kind != values.BoolKind || !v.B {
		t.Fatalf("got %+v, want True", v)
	}
}

func TestLessThanAcrossVariantsIsTypeError(t *testing.T) {
	_, err := runErr("1 < 'a'")
	perr, ok := err.(*errors.Error)
	if !ok || perr.Kind != errors.Type {
		t.Fatalf("got %v, want TypeError", err)
	}
}

func TestIsNotAndNotIn(t *testing.T) {
	v := run(t, "None is not 1")
	if v.Kind != values.BoolKind || !v.B {
		t.Fatalf("got %+v, want True", v)
	}
	v = run(t, "'z' not in 'abc'")
	if v.Kind != values.BoolKind || !v.B {
		t.Fatalf("got %+v, want True", v)
	}
}

func TestShortCircuitAndSkipsRightOnFalse(t *testing.T) {
	// right side would be a NameError if evaluated
	v := run(t, "False and y")
	if v.Kind != values.BoolKind || v.B {
		t.Fatalf("got %+v, want False", v)
	}
}

func TestShortCircuitOrSkipsRightOnTrue(t *testing.T) {
	v := run(t, "True or y")
	if v.Kind != values.BoolKind || !v.B {
		t.Fatalf("got %+v, want True", v)
	}
}

func TestNotNotIsDoubleNegationOfTruthiness(t *testing.T) {
	v := run(t, "not not 5")
	if v.Kind != values.BoolKind || !v.B {
		t.Fatalf("got %+v, want True", v)
	}
	v = run(t, "not not 0")
	if v.Kind != values.BoolKind || v.B {
		t.Fatalf("got %+v, want False", v)
	}
}

func TestBreakExitsLoopWithoutElse(t *testing.T) {
	v := runSession(t, "i = 0", "while True: i = i + 1; if i == 3: break", "i")
	if v.I != 3 {
		t.Fatalf("got %+v, want 3", v)
	}
}

func TestContinueRestartsConditionCheck(t *testing.T) {
	v := runSession(t,
		"hits = 0", "i = 0",
		"while i < 5: i += 1; if i == 3: continue else: hits += 1",
		"hits")
	if v.I != 4 {
		t.Fatalf("got %+v, want 4", v)
	}
}

func TestWhileElseRunsOnNaturalExit(t *testing.T) {
	v := runSession(t, "i = 0", "while i < 2: i += 1 else: i = 99", "i")
	if v.I != 99 {
		t.Fatalf("got %+v, want 99 (else branch after natural exit)", v)
	}
}

func TestForLoopIteratesCharacters(t *testing.T) {
	v := runSession(t, "s = ''", "for c in 'abc': s = s + c", "s")
	if v.S != "abc" {
		t.Fatalf("got %q", v.S)
	}
}

func TestForOverNonStringIsTypeError(t *testing.T) {
	_, err := runErr("for c in 5: pass")
	perr, ok := err.(*errors.Error)
	if !ok || perr.Kind != errors.Type {
		t.Fatalf("got %v, want TypeError", err)
	}
}

func TestWalrusIsRejectedAtEval(t *testing.T) {
	_, err := runErr("x := 1")
	perr, ok := err.(*errors.Error)
	if !ok || perr.Kind != errors.Syntax {
		t.Fatalf("got %v, want SyntaxError", err)
	}
}

func TestFailureAbandonsRemainingStatementsButKeepsPriorWrites(t *testing.T) {
	cfg := limits.Default()
	info, err := lexer.New("x = 1; y = 5 / 0; z = 3", lexer.WithLimits(cfg)).Scan()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	arena := ast.NewArena(cfg.ArenaCapacity)
	root, err := parser.New(info, arena, cfg).Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	env := NewEnvironment(cfg)
	_, err = New(arena, env).Eval(root)
	if err == nil {
		t.Fatal("expected ZeroDivisionError")
	}
	if v, ok := env.Read("x"); !ok || v.I != 1 {
		t.Fatalf("expected x to retain its write, got %+v ok=%v", v, ok)
	}
	if _, ok := env.Read("z"); ok {
		t.Fatal("z should never have been written")
	}
}
