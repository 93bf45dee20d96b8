package guardrail

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Denylist blocks text containing any of its terms, compared case-insensitively
// as substrings.
type Denylist struct {
	name   string
	terms  []string
	reason string
}

// DenylistOption configures a Denylist.
type DenylistOption func(*Denylist)

// WithReason sets the reason reported when the denylist blocks.
func WithReason(reason string) DenylistOption {
	return func(d *Denylist) { d.reason = reason }
}

// NewDenylist creates a Denylist. Empty terms are ignored.
func NewDenylist(name string, terms []string, opts ...DenylistOption) *Denylist {
	d := &Denylist{name: name, reason: "Inappropriate or complex query detected"}
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			d.terms = append(d.terms, t)
		}
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Denylist) Name() string { return d.name }

// Evaluate never fails.
func (d *Denylist) Evaluate(_ context.Context, text string) (Result, error) {
	lower := strings.ToLower(text)
	for _, term := range d.terms {
		if strings.Contains(lower, term) {
			return Result{
				Blocked: true,
				Info:    map[string]any{"reason": d.reason, "matched": term},
			}, nil
		}
	}
	return Pass(), nil
}

// MinLength blocks text shorter than n runes after trimming whitespace.
type MinLength struct {
	name string
	n    int
}

func NewMinLength(name string, n int) *MinLength {
	return &MinLength{name: name, n: n}
}

func (m *MinLength) Name() string { return m.name }

func (m *MinLength) Evaluate(_ context.Context, text string) (Result, error) {
	got := utf8.RuneCountInString(strings.TrimSpace(text))
	if got < m.n {
		return Result{
			Blocked: true,
			Info:    map[string]any{"reason": "text too short", "length": got, "min": m.n},
		}, nil
	}
	return Pass(), nil
}

// Func adapts a function to the Guardrail interface.
type Func struct {
	name string
	fn   func(ctx context.Context, text string) (Result, error)
}

func NewFunc(name string, fn func(ctx context.Context, text string) (Result, error)) *Func {
	return &Func{name: name, fn: fn}
}

func (f *Func) Name() string { return f.name }

func (f *Func) Evaluate(ctx context.Context, text string) (Result, error) {
	return f.fn(ctx, text)
}
