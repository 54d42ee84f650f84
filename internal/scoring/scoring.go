// Package scoring reduces a session's answers into a human readable result.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/quizbot/pkg/models"
)

// Fixed texts returned when a result cannot be looked up
const (
	DescriptionUnavailable = "Description unavailable."
	NoResultData           = "🏁 Result: no data"
	DefaultBandFormat      = "<b>{title}</b>\n\n{text}"
)

// AxisPairs are the four MBTI dimensions. On a tie the first letter wins.
var AxisPairs = [4][2]string{{"E", "I"}, {"S", "N"}, {"T", "F"}, {"J", "P"}}

// Score computes the result text for a completed trail.
// It never fails: every strategy has a defined fallback output.
func Score(test *models.TestDefinition, trail models.Trail) string {
	answers := trail.Ordered()

	switch test.Strategy {
	case models.AxisTally:
		return scoreAxisTally(test, answers)
	case models.SumBands:
		return scoreSumBands(test, answers)
	case models.BestMatch:
		return scoreBestMatch(test, answers)
	default:
		return scoreTraitTop(test, answers)
	}
}

// TraitCount is a trait label with its tally
type TraitCount struct {
	Trait string
	Count int
}

// CountTraits tallies trait answers in first-seen order
func CountTraits(answers []models.Answer) []TraitCount {
	pos := make(map[string]int)
	var counts []TraitCount
	for _, a := range answers {
		label, ok := a.Trait()
		if !ok {
			continue
		}
		if i, seen := pos[label]; seen {
			counts[i].Count++
			continue
		}
		pos[label] = len(counts)
		counts = append(counts, TraitCount{Trait: label, Count: 1})
	}
	return counts
}

// TypeKey builds the four letter type from trait tallies
func TypeKey(counts map[string]int) string {
	var sb strings.Builder
	for _, pair := range AxisPairs {
		if counts[pair[0]] >= counts[pair[1]] {
			sb.WriteString(pair[0])
		} else {
			sb.WriteString(pair[1])
		}
	}
	return sb.String()
}

func scoreAxisTally(test *models.TestDefinition, answers []models.Answer) string {
	counts := make(map[string]int)
	for _, tc := range CountTraits(answers) {
		counts[tc.Trait] = tc.Count
	}

	key := TypeKey(counts)
	desc, ok := test.Results.Types[key]
	if !ok || desc == "" {
		desc = DescriptionUnavailable
	}
	return fmt.Sprintf("🏁 Your type: <b>%s</b>\n%s", key, desc)
}

// Total sums the numeric score answers, ignoring unparsable ones
func Total(answers []models.Answer) int {
	total := 0
	for _, a := range answers {
		if n, ok := a.Points(); ok {
			total += n
		}
	}
	return total
}

// PickBand returns the first band containing total. When none contains it,
// the band with the smallest Min is chosen for totals below it and the band
// with the largest Min otherwise.
func PickBand(bands []models.Band, total int) (models.Band, bool) {
	if len(bands) == 0 {
		return models.Band{}, false
	}
	for _, b := range bands {
		if b.Min <= total && total <= b.Max {
			return b, true
		}
	}

	sorted := make([]models.Band, len(bands))
	copy(sorted, bands)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	if total < sorted[0].Min {
		return sorted[0], true
	}
	return sorted[len(sorted)-1], true
}

func scoreSumBands(test *models.TestDefinition, answers []models.Answer) string {
	spec := test.Results.Bands
	if spec == nil {
		return NoResultData
	}

	band, ok := PickBand(spec.Bands, Total(answers))
	if !ok {
		return NoResultData
	}

	format := spec.Format
	if format == "" {
		format = DefaultBandFormat
	}
	title := band.Title
	if title == "" {
		title = "—"
	}
	return strings.NewReplacer("{title}", title, "{text}", band.Text).Replace(format)
}

func scoreTraitTop(test *models.TestDefinition, answers []models.Answer) string {
	counts := CountTraits(answers)
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if len(counts) > 3 {
		counts = counts[:3]
	}

	top := "no data"
	if len(counts) > 0 {
		parts := make([]string, 0, len(counts))
		for _, tc := range counts {
			parts = append(parts, fmt.Sprintf("%s:%d", tc.Trait, tc.Count))
		}
		top = strings.Join(parts, ", ")
	}

	text := fmt.Sprintf("🏁 Result «%s»:\n<b>%s</b>", test.Title, top)
	if len(counts) > 0 {
		if desc := test.Results.Traits[counts[0].Trait]; desc != "" {
			text += "\n\n" + desc
		}
	}
	return text
}

func scoreBestMatch(test *models.TestDefinition, answers []models.Answer) string {
	matches := test.Results.Matches
	if len(matches) == 0 {
		return NoResultData
	}

	best, bestScore := 0, -1
	for i, m := range matches {
		set := make(map[string]bool, len(m.Traits))
		for _, t := range m.Traits {
			set[t] = true
		}
		score := 0
		for _, a := range answers {
			if label, ok := a.Trait(); ok && set[label] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	if matches[best].Text == "" {
		return DescriptionUnavailable
	}
	return matches[best].Text
}
