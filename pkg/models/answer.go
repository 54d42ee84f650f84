package models

import (
	"sort"
	"strconv"
	"strings"
)

// AnswerKind tags the variant held by an Answer
type AnswerKind int

const (
	// TraitKind answers carry a free-form trait label
	TraitKind AnswerKind = iota + 1
	// ScoreKind answers carry a numeric score contribution
	ScoreKind
)

// Answer is the raw token a user picked for a question
type Answer struct {
	Kind  AnswerKind
	Value string
}

// TraitAnswer returns a trait answer
func TraitAnswer(label string) Answer {
	return Answer{Kind: TraitKind, Value: label}
}

// ScoreAnswer returns a score answer. The raw value is kept as authored and
// parsed at scoring time.
func ScoreAnswer(raw string) Answer {
	return Answer{Kind: ScoreKind, Value: raw}
}

// Trait returns the trait label, if this is a non-empty trait answer
func (a Answer) Trait() (string, bool) {
	if a.Kind != TraitKind || a.Value == "" {
		return "", false
	}
	return a.Value, true
}

// Points returns the parsed score, if this is a score answer with a numeric value
func (a Answer) Points() (int, bool) {
	if a.Kind != ScoreKind {
		return 0, false
	}
	v := strings.TrimSpace(a.Value)
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	// Scores authored as JSON numbers may arrive as "2.0"
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// Trail maps a question index to the answer given for it.
// Answering the same index again overwrites the previous entry.
type Trail map[int]Answer

// Ordered returns the answers sorted by question index
func (t Trail) Ordered() []Answer {
	idx := make([]int, 0, len(t))
	for i := range t {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	out := make([]Answer, 0, len(idx))
	for _, i := range idx {
		out = append(out, t[i])
	}
	return out
}

// Clone returns a copy of the trail
func (t Trail) Clone() Trail {
	if t == nil {
		return nil
	}
	out := make(Trail, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}
