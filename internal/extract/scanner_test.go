package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanStartsFreshEachCall(t *testing.T) {
	d := DefaultBank()[1]
	text := "Question 1: x\nA) a\nB) b\nC) c\nD) d\nCorrect Answer: A"

	first := scan(d, text)
	second := scan(d, text)

	require.Len(t, first, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, "1", first[0].ordinal)
	assert.Equal(t, 4, first[0].captured)
}

func TestScanEmptyMatchesMakeProgress(t *testing.T) {
	d := MustDialect("empty", `(?P<stem>x*)`)

	matches := scan(d, "abc")

	assert.NotEmpty(t, matches)
	for _, m := range matches {
		_, ok := buildQuestion(m)
		assert.False(t, ok)
	}
}

func TestScanMissingOptionGroups(t *testing.T) {
	d := MustDialect("three-options", `(?P<stem>\w+)\?\nA\) (?P<a>\w+)\nB\) (?P<b>\w+)\nC\) (?P<c>\w+)\n(?P<answer>\w)`)

	matches := scan(d, "Why?\nA) x\nB) y\nC) z\nA")

	require.Len(t, matches, 1)
	assert.Equal(t, 3, matches[0].captured)
	_, ok := buildQuestion(matches[0])
	assert.False(t, ok)
}

func TestNewDialectRejectsBadExpression(t *testing.T) {
	_, err := NewDialect("broken", `(?P<stem>`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustDialect("broken", `(`) })
}

func TestBuildQuestion(t *testing.T) {
	full := rawMatch{
		stem:     "  Stem  ",
		options:  [4]string{" one", "two ", "\tthree", "four"},
		captured: 4,
		answer:   " c ",
	}

	q, ok := buildQuestion(full)
	require.True(t, ok)
	assert.Equal(t, "Stem", q.Text)
	assert.Equal(t, []string{"A) one", "B) two", "C) three", "D) four"}, q.Options)
	assert.Equal(t, "C", q.CorrectAnswer)

	blank := full
	blank.stem = "   "
	_, ok = buildQuestion(blank)
	assert.False(t, ok)

	short := full
	short.captured = 3
	_, ok = buildQuestion(short)
	assert.False(t, ok)

	for _, answer := range []string{"E", "", "1", "AB"} {
		bad := full
		bad.answer = answer
		_, ok = buildQuestion(bad)
		assert.False(t, ok, "answer %q", answer)
	}
}

func TestDefaultBankIsACopy(t *testing.T) {
	bank := DefaultBank()
	bank[0] = MustDialect("other", `x`)

	assert.Equal(t, DialectEmphasized, DefaultBank()[0].Name())
	names := []string{}
	for _, d := range DefaultBank() {
		names = append(names, d.Name())
	}
	assert.Equal(t, []string{DialectEmphasized, DialectPlain, DialectLoose}, names)
}
