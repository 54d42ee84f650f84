package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnswerPoints(t *testing.T) {
	tests := []struct {
		name string
		in   Answer
		want int
		ok   bool
	}{
		{name: "integer", in: ScoreAnswer("3"), want: 3, ok: true},
		{name: "negative", in: ScoreAnswer("-2"), want: -2, ok: true},
		{name: "whole float", in: ScoreAnswer("2.0"), want: 2, ok: true},
		{name: "fractional", in: ScoreAnswer("1.5"), ok: false},
		{name: "garbage", in: ScoreAnswer("abc"), ok: false},
		{name: "empty", in: ScoreAnswer(""), ok: false},
		{name: "trait", in: TraitAnswer("5"), ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.in.Points()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAnswerTrait(t *testing.T) {
	label, ok := TraitAnswer("E").Trait()
	assert.True(t, ok)
	assert.Equal(t, "E", label)

	_, ok = TraitAnswer("").Trait()
	assert.False(t, ok)

	_, ok = ScoreAnswer("1").Trait()
	assert.False(t, ok)
}

func TestTrailOrdered(t *testing.T) {
	trail := Trail{
		2: TraitAnswer("c"),
		0: TraitAnswer("a"),
		1: TraitAnswer("b"),
	}
	assert.Equal(t, []Answer{TraitAnswer("a"), TraitAnswer("b"), TraitAnswer("c")}, trail.Ordered())

	clone := trail.Clone()
	clone[0] = TraitAnswer("z")
	assert.Equal(t, TraitAnswer("a"), trail[0])
}

func TestParseStrategy(t *testing.T) {
	for tag, want := range map[string]Strategy{
		"mbti":   AxisTally,
		"SUM":    SumBands,
		"traits": TraitTop,
		"match":  BestMatch,
		"":       TraitTop,
	} {
		got, ok := ParseStrategy(tag)
		assert.True(t, ok, tag)
		assert.Equal(t, want, got, tag)
	}

	got, ok := ParseStrategy("astrology")
	assert.False(t, ok)
	assert.Equal(t, TraitTop, got)
}
