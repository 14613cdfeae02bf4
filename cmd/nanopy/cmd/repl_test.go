package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestREPLPersistsEnvironmentAcrossCommands(t *testing.T) {
	in := strings.NewReader("x = 5\nx + 1\nexit()\n")
	var out bytes.Buffer
	if err := REPL(in, &out); err != nil {
		t.Fatalf("REPL: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "6") {
		t.Fatalf("expected persisted x to produce 6, got %q", got)
	}
}

func TestREPLReportsErrorsWithoutStopping(t *testing.T) {
	in := strings.NewReader("5 / 0\n1 + 1\nexit()\n")
	var out bytes.Buffer
	if err := REPL(in, &out); err != nil {
		t.Fatalf("REPL: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "ZeroDivisionError") {
		t.Fatalf("expected ZeroDivisionError reported, got %q", got)
	}
	if !strings.Contains(got, "2") {
		t.Fatalf("expected the loop to continue after the error, got %q", got)
	}
}
