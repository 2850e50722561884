package folder

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseChange(t *testing.T) {
	tests := []struct {
		input    string
		expected Change
		ok       bool
	}{
		{input: "+12", expected: Added("12"), ok: true},
		{input: "-12", expected: Removed("12"), ok: true},
		{input: "+romeo-conv-juliet", expected: Added("romeo-conv-juliet"), ok: true},
		{input: "+", ok: false},
		{input: "", ok: false},
		{input: "12", ok: false},
		{input: "F12", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, ok := ParseChange(tt.input)

			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.expected, c)
				assert.Equal(t, tt.input, c.String())
			}
		})
	}
}

func TestCompareChanges(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Change
		expected int
	}{
		{name: "numeric by value", a: Added("9"), b: Added("10"), expected: -1},
		{name: "delete before add", a: Removed("10"), b: Added("10"), expected: -1},
		{name: "add after delete", a: Added("10"), b: Removed("10"), expected: 1},
		{name: "equal", a: Added("10"), b: Added("10"), expected: 0},
		{name: "lexicographic", a: Added("a-conv-b"), b: Added("a-conv-c"), expected: -1},
		{name: "numeric before text", a: Added("999"), b: Added("a"), expected: -1},
		{name: "text after numeric", a: Removed("a"), b: Added("1"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CompareChanges(tt.a, tt.b))
		})
	}
}

func TestCompareChanges_SortIsStable(t *testing.T) {
	changes := []Change{Added("b"), Added("20"), Removed("3"), Added("3"), Added("a"), Removed("100")}

	sort.Slice(changes, func(i, j int) bool { return CompareChanges(changes[i], changes[j]) < 0 })

	assert.Equal(t, []Change{Removed("3"), Added("3"), Added("20"), Removed("100"), Added("a"), Added("b")}, changes)
}

func TestScoreOf(t *testing.T) {
	assert.Equal(t, int64(120), ScoreOf(ChildID("romeo-conv-juliet", 120)))
	assert.Equal(t, int64(0), ScoreOf("120"))
	assert.Equal(t, int64(0), ScoreOf("romeo-"))
	assert.Equal(t, int64(0), ScoreOf("romeo-x"))
}

func TestCompareChildren(t *testing.T) {
	assert.Equal(t, -1, CompareChildren(Child{ID: "b", Score: 1}, Child{ID: "a", Score: 2}))
	assert.Equal(t, -1, CompareChildren(Child{ID: "a", Score: 1}, Child{ID: "b", Score: 1}))
	assert.Equal(t, 0, CompareChildren(ScoreChild(5), ScoreChild(5)))
}

func TestLocateChild(t *testing.T) {
	children := []Child{{ID: "a-conv-b", Score: 7}, ScoreChild(10)}

	c, ok := LocateChild(children, "a-conv-b")
	assert.True(t, ok)
	assert.Equal(t, int64(7), c.Score)

	c, ok = LocateChild(children, "15")
	assert.True(t, ok)
	assert.Equal(t, ScoreChild(15), c)

	_, ok = LocateChild(children, "missing")
	assert.False(t, ok)
}
