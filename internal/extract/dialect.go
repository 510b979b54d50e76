package extract

import (
	"fmt"
	"regexp"
)

// Dialect names of the built-in bank, in priority order.
const (
	DialectEmphasized = "emphasized-numbered"
	DialectPlain      = "plain-numbered"
	DialectLoose      = "loose-flexible"
)

// Capture group names every dialect pattern is expected to define.
const (
	groupOrdinal = "num"
	groupStem    = "stem"
	groupAnswer  = "answer"
)

var optionGroups = [4]string{"a", "b", "c", "d"}

// Dialect recognizes one textual layout of a question block.
// A Dialect is immutable after construction and safe for concurrent use.
type Dialect struct {
	name    string
	pattern *regexp.Regexp

	ordinal int
	stem    int
	options [4]int
	answer  int
}

// NewDialect compiles expr into a Dialect. The expression should name its
// groups num, stem, a, b, c, d and answer; a missing group simply never
// captures, which makes every match of that dialect invalid.
func NewDialect(name, expr string) (Dialect, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Dialect{}, fmt.Errorf("compile dialect %q: %w", name, err)
	}
	d := Dialect{
		name:    name,
		pattern: re,
		ordinal: re.SubexpIndex(groupOrdinal),
		stem:    re.SubexpIndex(groupStem),
		answer:  re.SubexpIndex(groupAnswer),
	}
	for i, g := range optionGroups {
		d.options[i] = re.SubexpIndex(g)
	}
	return d, nil
}

// MustDialect is like NewDialect but panics on an invalid expression.
func MustDialect(name, expr string) Dialect {
	d, err := NewDialect(name, expr)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the dialect's identifier.
func (d Dialect) Name() string {
	return d.name
}

var defaultBank = []Dialect{
	// **Question 1:** stem, blank line, A) .. D) lines, blank line, **Correct Answer: X**
	MustDialect(DialectEmphasized,
		`\*\*Question (?P<num>\d+):\*\* (?P<stem>.*?)\n\nA\) (?P<a>.*?)\nB\) (?P<b>.*?)\nC\) (?P<c>.*?)\nD\) (?P<d>.*?)\n\n\*\*Correct Answer: (?P<answer>\w)\*\*`),
	// Question 1: stem, A) .. D) lines, Correct Answer: X, no blank lines required
	MustDialect(DialectPlain,
		`Question (?P<num>\d+): (?P<stem>.*?)\nA\) (?P<a>.*?)\nB\) (?P<b>.*?)\nC\) (?P<c>.*?)\nD\) (?P<d>.*?)\nCorrect Answer: (?P<answer>\w)`),
	// Optional Q/Question prefix, optional Choices:/Options: label, any letter case,
	// loose whitespace, and Correct:/Correct Answer:/[Answer]: markers.
	MustDialect(DialectLoose,
		`(?:Q(?:uestion)?\.?\s*)?(?P<num>\d+)[.:]\s*(?P<stem>.*?)\s*(?:Choices|Options)?:?\s*\n\s*[Aa]\)\s*(?P<a>.*?)\s*\n\s*[Bb]\)\s*(?P<b>.*?)\s*\n\s*[Cc]\)\s*(?P<c>.*?)\s*\n\s*[Dd]\)\s*(?P<d>.*?)\s*\n\s*(?:Correct\s*(?:Answer)?:?\s*|\[Answer\]\s*:?\s*)(?P<answer>\w)`),
}

// DefaultBank returns the built-in dialects in priority order.
// The returned slice is a copy; changing it does not affect other callers.
func DefaultBank() []Dialect {
	bank := make([]Dialect, len(defaultBank))
	copy(bank, defaultBank)
	return bank
}
