package token

import (
	"github.com/isaacjoffe/nanopy/errors"
	"github.com/isaacjoffe/nanopy/internal/limits"
)

// CommandInfo is the lexer's output record: every token produced, in
// order, plus the three parallel literal-payload sequences (strings,
// numbers, identifier names) a literal-carrying token's Lit index
// refers into. The parser consumes it read-only.
type CommandInfo struct {
	limits limits.Config

	Tokens      []Token
	Strings     []string
	Numbers     []uint16
	Identifiers []string
}

// NewCommandInfo allocates an empty CommandInfo sized to cfg.
func NewCommandInfo(cfg limits.Config) *CommandInfo {
	return &CommandInfo{
		limits:      cfg,
		Tokens:      make([]Token, 0, cfg.MaxInputTokens),
		Strings:     make([]string, 0, cfg.MaxLits),
		Numbers:     make([]uint16, 0, cfg.MaxLits),
		Identifiers: make([]string, 0, cfg.MaxIdentifiers),
	}
}

// AddToken appends a non-literal-carrying token (its Lit is left -1).
func (c *CommandInfo) AddToken(kind Kind, pos Position) error {
	if len(c.Tokens) >= c.limits.MaxInputTokens {
		return errors.New(errors.Runtime, "too many tokens in command")
	}
	c.Tokens = append(c.Tokens, Token{Kind: kind, Pos: pos, Lit: -1})
	return nil
}

// AddString appends a STRING token and its payload, truncating the
// payload to MaxLitLen.
func (c *CommandInfo) AddString(s string, pos Position) error {
	if len(c.Tokens) >= c.limits.MaxInputTokens {
		return errors.New(errors.Runtime, "too many tokens in command")
	}
	if len(c.Strings) >= c.limits.MaxLits {
		return errors.New(errors.Runtime, "too many string literals in command")
	}
	if len(s) > c.limits.MaxLitLen {
		s = s[:c.limits.MaxLitLen]
	}
	idx := len(c.Strings)
	c.Strings = append(c.Strings, s)
	c.Tokens = append(c.Tokens, Token{Kind: STRING, Pos: pos, Lit: idx})
	return nil
}

// AddNumber appends a NUMBER token and its payload.
func (c *CommandInfo) AddNumber(n uint16, pos Position) error {
	if len(c.Tokens) >= c.limits.MaxInputTokens {
		return errors.New(errors.Runtime, "too many tokens in command")
	}
	if len(c.Numbers) >= c.limits.MaxLits {
		return errors.New(errors.Runtime, "too many numeric literals in command")
	}
	idx := len(c.Numbers)
	c.Numbers = append(c.Numbers, n)
	c.Tokens = append(c.Tokens, Token{Kind: NUMBER, Pos: pos, Lit: idx})
	return nil
}

// AddIdentifier appends an IDENT token and its name payload.
func (c *CommandInfo) AddIdentifier(name string, pos Position) error {
	if len(c.Tokens) >= c.limits.MaxInputTokens {
		return errors.New(errors.Runtime, "too many tokens in command")
	}
	if len(c.Identifiers) >= c.limits.MaxIdentifiers {
		return errors.New(errors.Runtime, "too many identifiers in command")
	}
	if len(name) > c.limits.MaxIdentifierLen {
		name = name[:c.limits.MaxIdentifierLen]
	}
	idx := len(c.Identifiers)
	c.Identifiers = append(c.Identifiers, name)
	c.Tokens = append(c.Tokens, Token{Kind: IDENT, Pos: pos, Lit: idx})
	return nil
}

// AddKeyword appends a reserved-keyword token (no payload).
func (c *CommandInfo) AddKeyword(kind Kind, pos Position) error {
	return c.AddToken(kind, pos)
}

// String returns the payload for a STRING token's Lit index.
func (c *CommandInfo) String(lit int) string { return c.Strings[lit] }

// Number returns the payload for a NUMBER token's Lit index.
func (c *CommandInfo) Number(lit int) uint16 { return c.Numbers[lit] }

// Identifier returns the payload for an IDENT token's Lit index.
func (c *CommandInfo) Identifier(lit int) string { return c.Identifiers[lit] }
