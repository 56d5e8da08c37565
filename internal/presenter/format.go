package presenter

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Display constants shared by all views.
const (
	Placeholder = "—"
	Ellipsis    = "…"
	LoadingText = "Loading..."
	// MaxMembers is the number of archetype members shown before truncation.
	MaxMembers = 10
)

// Formatter renders numbers for display. Grouped values follow the configured
// locale; fixed-precision values are locale independent.
type Formatter struct {
	p *message.Printer
}

// NewFormatter returns a formatter for a BCP 47 locale such as "en-US".
func NewFormatter(locale string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return &Formatter{p: message.NewPrinter(tag)}, nil
}

// DefaultFormatter formats for American English.
func DefaultFormatter() *Formatter {
	return &Formatter{p: message.NewPrinter(language.AmericanEnglish)}
}

// Percent renders a fraction as value*100 with 2 decimals and a trailing %.
func (f *Formatter) Percent(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 2, 64) + "%"
}

// PercentOrDash is Percent with nil rendered as the placeholder.
func (f *Formatter) PercentOrDash(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return f.Percent(*v)
}

// Amount renders currency, volume and PnL with grouping and 2 fraction digits.
func (f *Formatter) Amount(v float64) string {
	return f.p.Sprintf("%.2f", v)
}

// AmountOrDash is Amount with nil rendered as the placeholder.
func (f *Formatter) AmountOrDash(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return f.Amount(*v)
}

// Count renders an integer with grouping, e.g. 1,200.
func (f *Formatter) Count(n int) string {
	return f.p.Sprintf("%d", n)
}

// Int renders an integer without grouping.
func (f *Formatter) Int(n int) string {
	return strconv.Itoa(n)
}

// Precise renders 6 decimals.
func (f *Formatter) Precise(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// PreciseOrDash is Precise with nil rendered as the placeholder.
func (f *Formatter) PreciseOrDash(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return f.Precise(*v)
}

// Metric renders 4 decimals (entropy, niche score).
func (f *Formatter) Metric(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// TextOrDash returns s, or the placeholder when nil.
func (f *Formatter) TextOrDash(s *string) string {
	if s == nil {
		return Placeholder
	}
	return *s
}

// Members returns at most MaxMembers entries followed by a single Ellipsis
// when the list is longer.
func Members(members []string) []string {
	if len(members) <= MaxMembers {
		return append([]string(nil), members...)
	}
	out := make([]string, 0, MaxMembers+1)
	out = append(out, members[:MaxMembers]...)
	return append(out, Ellipsis)
}
