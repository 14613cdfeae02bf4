// Package values defines the runtime Value variant shared by the AST
// (literal payloads) and the evaluator (expression results and
// environment storage). Keeping it independent of both avoids a
// dependency cycle between internal/ast and internal/interp while
// still giving both a single, closed definition of "a value" to agree
// on.
package values

import "strconv"

// Kind is the closed tag of the Value variant: None, Bool, Int, or
// Str. The tag determines which payload field is meaningful.
type Kind int

const (
	NoneKind Kind = iota
	BoolKind
	IntKind
	StrKind
)

// MaxStrLen is the bound on a Str value's length; longer text is
// truncated on construction.
const MaxStrLen = 32

// Value is a tagged variant over {None, Bool(bool), Int(uint16),
// Str(string)}. Arithmetic on Int is always computed modulo 2^16;
// Int's bit pattern is interpreted as signed two's complement only
// where a sign is required (comparisons, printing).
type Value struct {
	Kind Kind
	B    bool
	I    uint16
	S    string
}

// None is the singleton absence-of-value.
var None = Value{Kind: NoneKind}

// Bool constructs a Bool value.
func Bool(b bool) Value { return Value{Kind: BoolKind, B: b} }

// Int constructs an Int value.
func Int(i uint16) Value { return Value{Kind: IntKind, I: i} }

// Str constructs a Str value, truncating to MaxStrLen.
func Str(s string) Value {
	if len(s) > MaxStrLen {
		s = s[:MaxStrLen]
	}
	return Value{Kind: StrKind, S: s}
}

// SignedInt interprets I as a two's-complement signed 16-bit integer,
// the view comparisons and printing use.
func (v Value) SignedInt() int32 {
	return int32(int16(v.I))
}

// Truthy projects v onto a condition: False, None, Int(0), and empty
// Str are falsy; everything else is truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case NoneKind:
		return false
	case BoolKind:
		return v.B
	case IntKind:
		return v.I != 0
	case StrKind:
		return v.S != ""
	default:
		return false
	}
}

// TypeName returns the Language's exception-message name for v's
// variant, e.g. "NoneType", "bool", "int", "str".
func (v Value) TypeName() string {
	switch v.Kind {
	case NoneKind:
		return "NoneType"
	case BoolKind:
		return "bool"
	case IntKind:
		return "int"
	case StrKind:
		return "str"
	default:
		return "object"
	}
}

// String renders v the way the REPL prints a result: None prints as
// nothing, Bool as True/False, Int as a signed decimal, Str
// single-quoted.
func (v Value) String() string {
	switch v.Kind {
	case NoneKind:
		return ""
	case BoolKind:
		if v.B {
			return "True"
		}
		return "False"
	case IntKind:
		return strconv.FormatInt(int64(v.SignedInt()), 10)
	case StrKind:
		return "'" + v.S + "'"
	default:
		return ""
	}
}

// Equal implements value equality used by ==/!=/is/is-not across
// variants: incompatible variants are simply unequal rather than an
// error.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case NoneKind:
		return true
	case BoolKind:
		return a.B == b.B
	case IntKind:
		return a.I == b.I
	case StrKind:
		return a.S == b.S
	default:
		return false
	}
}
