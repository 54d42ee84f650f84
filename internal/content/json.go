package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/example/quizbot/pkg/models"
)

// Band bounds used when a band omits min or max
const (
	openMin = -1_000_000_000
	openMax = 1_000_000_000
)

type questionsDoc struct {
	Meta struct {
		Title string `json:"title"`
		Type  string `json:"type"`
	} `json:"meta"`
	Questions []questionDoc `json:"questions"`
}

type questionDoc struct {
	Text    string      `json:"text"`
	Image   string      `json:"image"`
	Options []optionDoc `json:"options"`
}

type optionDoc struct {
	Text  string          `json:"text"`
	Trait *string         `json:"trait"`
	Score json.RawMessage `json:"score"`
}

func parseQuestionsJSON(slug string, data []byte) (*models.TestDefinition, error) {
	var doc questionsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	def := newDefinition(slug, doc.Meta.Title, doc.Meta.Type)
	for i, q := range doc.Questions {
		question := models.Question{Text: q.Text, Image: q.Image}
		for j, o := range q.Options {
			answer, err := o.answer()
			if err != nil {
				return nil, fmt.Errorf("question %d option %d: %w", i+1, j+1, err)
			}
			question.Options = append(question.Options, models.Option{Text: o.Text, Answer: answer})
		}
		def.Questions = append(def.Questions, question)
	}
	return def, nil
}

// newDefinition applies the title and strategy defaults
func newDefinition(slug, title, tag string) *models.TestDefinition {
	if strings.TrimSpace(title) == "" {
		title = slug
	}
	if tag == "" {
		tag = slug
	}
	// unknown tags fall back to TraitTop
	strategy, _ := models.ParseStrategy(tag)
	return &models.TestDefinition{Slug: slug, Title: title, Strategy: strategy}
}

func (o optionDoc) answer() (models.Answer, error) {
	hasTrait := o.Trait != nil && *o.Trait != ""
	hasScore := len(o.Score) > 0 && string(o.Score) != "null"

	switch {
	case hasTrait && hasScore:
		return models.Answer{}, errors.New("both trait and score set")
	case hasTrait:
		return models.TraitAnswer(*o.Trait), nil
	case hasScore:
		raw, err := rawScore(o.Score)
		if err != nil {
			return models.Answer{}, err
		}
		return models.ScoreAnswer(raw), nil
	default:
		return models.Answer{}, errors.New("neither trait nor score set")
	}
}

// rawScore accepts a JSON number or string. Strings are kept verbatim and
// ignored at scoring time when they are not numeric.
func rawScore(msg json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch val := v.(type) {
	case json.Number:
		return val.String(), nil
	case string:
		return val, nil
	default:
		return "", fmt.Errorf("score must be a number, got %s", string(msg))
	}
}

type bandsDoc struct {
	Bands []struct {
		Min   *int   `json:"min"`
		Max   *int   `json:"max"`
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"bands"`
	Format string `json:"format"`
}

type matchDoc struct {
	Text   string   `json:"text"`
	Traits []string `json:"traits"`
}

func parseResults(strategy models.Strategy, data []byte) (models.ResultSpec, error) {
	var spec models.ResultSpec

	switch strategy {
	case models.AxisTally:
		types, err := parseTextMap(data)
		if err != nil {
			return spec, err
		}
		spec.Types = types

	case models.SumBands:
		var doc bandsDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return spec, err
		}
		bands := &models.BandSpec{Format: doc.Format}
		for _, b := range doc.Bands {
			band := models.Band{Min: openMin, Max: openMax, Title: b.Title, Text: b.Text}
			if b.Min != nil {
				band.Min = *b.Min
			}
			if b.Max != nil {
				band.Max = *b.Max
			}
			bands.Bands = append(bands.Bands, band)
		}
		spec.Bands = bands

	case models.BestMatch:
		keys, err := objectKeys(data)
		if err != nil {
			return spec, err
		}
		var doc map[string]matchDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return spec, err
		}
		for _, k := range keys {
			m := doc[k]
			spec.Matches = append(spec.Matches, models.MatchResult{Key: k, Text: m.Text, Traits: m.Traits})
		}

	default:
		traits, err := parseTextMap(data)
		if err != nil {
			return spec, err
		}
		spec.Traits = traits
	}
	return spec, nil
}

// parseTextMap decodes an object whose values are either strings or
// objects with a "text" field
func parseTextMap(data []byte) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[k] = s
			continue
		}
		var obj struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(v, &obj); err == nil {
			out[k] = obj.Text
		}
		// other values (bands, lists) carry no description for this key
	}
	return out, nil
}

// objectKeys returns the top level keys of a JSON object in document order
func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("results must be an object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}
