package models

import "strings"

// Strategy selects how a test reduces its answers into a result
type Strategy int

const (
	// TraitTop ranks the most frequent traits. It is also the fallback strategy.
	TraitTop Strategy = iota
	// AxisTally builds a four letter type from opposing trait pairs (MBTI)
	AxisTally
	// SumBands sums numeric scores and picks a result band
	SumBands
	// BestMatch picks the result whose trait set overlaps the answers most
	BestMatch
)

// ParseStrategy maps a questions document type tag to a Strategy.
// Unknown tags report ok == false and resolve to TraitTop.
func ParseStrategy(tag string) (Strategy, bool) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "mbti", "axis":
		return AxisTally, true
	case "sum", "bands":
		return SumBands, true
	case "traits", "":
		return TraitTop, true
	case "match", "best_match":
		return BestMatch, true
	default:
		return TraitTop, false
	}
}

func (s Strategy) String() string {
	switch s {
	case AxisTally:
		return "mbti"
	case SumBands:
		return "sum"
	case BestMatch:
		return "match"
	default:
		return "traits"
	}
}

// TestDefinition is an immutable questionnaire loaded from the content repository
type TestDefinition struct {
	Slug      string
	Title     string
	Strategy  Strategy
	Questions []Question
	Results   ResultSpec
	// Dir is the directory the definition was loaded from
	Dir string
}

// Question is a single prompt with its answer options
type Question struct {
	Text    string
	Image   string
	Options []Option
}

// Option is a selectable answer; Answer carries either a trait or a score
type Option struct {
	Text   string
	Answer Answer
}

// TestSummary is a menu entry
type TestSummary struct {
	Slug  string
	Title string
}

// ResultSpec holds the strategy specific result texts.
// Only the field matching the test's Strategy is populated.
type ResultSpec struct {
	Types   map[string]string // AxisTally: type key -> description
	Bands   *BandSpec         // SumBands
	Traits  map[string]string // TraitTop: trait -> description (optional)
	Matches []MatchResult     // BestMatch, in declared order
}

// BandSpec is the SumBands result document
type BandSpec struct {
	Bands  []Band
	Format string
}

// Band maps an inclusive score range to a result
type Band struct {
	Min   int
	Max   int
	Title string
	Text  string
}

// MatchResult is one BestMatch outcome with the traits that point to it
type MatchResult struct {
	Key    string
	Text   string
	Traits []string
}
