package errors

import (
	"bytes"
	"strings"
	"testing"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Syntax, "SyntaxError"},
		{Name, "NameError"},
		{Type, "TypeError"},
		{ZeroDivision, "ZeroDivisionError"},
		{Index, "IndexError"},
		{Assertion, "AssertionError"},
		{Runtime, "RuntimeError"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestNewAndError(t *testing.T) {
	err := New(Type, "unsupported operand for %s", "+")
	if err.Error() != "TypeError: unsupported operand for +" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestReporter_Report(t *testing.T) {
	tests := []struct {
		name        string
		err         *Error
		wantContain []string
		wantMissing []string
	}{
		{
			name: "syntax error omits traceback",
			err:  New(Syntax, "invalid character"),
			wantContain: []string{
				"  File \"<stdin>\", line 1, in <module>\n",
				"SyntaxError: invalid character\n",
			},
			wantMissing: []string{"Traceback"},
		},
		{
			name: "zero division includes traceback",
			err:  New(ZeroDivision, "division by zero"),
			wantContain: []string{
				"Traceback (most recent call last):\n",
				"  File \"<stdin>\", line 1, in <module>\n",
				"ZeroDivisionError: division by zero\n",
			},
		},
		{
			name: "name error message",
			err:  New(Name, "name 'y' is not defined"),
			wantContain: []string{
				"Traceback (most recent call last):\n",
				"NameError: name 'y' is not defined\n",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewReporter(&buf).Report(tt.err)
			out := buf.String()
			for _, want := range tt.wantContain {
				if !strings.Contains(out, want) {
					t.Errorf("output %q missing %q", out, want)
				}
			}
			for _, missing := range tt.wantMissing {
				if strings.Contains(out, missing) {
					t.Errorf("output %q unexpectedly contains %q", out, missing)
				}
			}
		})
	}
}

func TestReporter_Fatal(t *testing.T) {
	var buf bytes.Buffer
	NewReporter(&buf).Fatal("arena exhausted")
	out := buf.String()
	for _, want := range []string{
		"FATAL: unexpected error internal to interpreter\n",
		"arena exhausted",
		"disregard outputs and reboot the interpreter for safety\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}
