package content

import (
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"github.com/example/quizbot/pkg/models"
)

const mbtiQuestions = `{
  "meta": {"title": "Personality type", "type": "mbti"},
  "questions": [
    {"text": "At a party you", "options": [{"text": "talk", "trait": "E"}, {"text": "listen", "trait": "I"}]},
    {"text": "You decide with", "image": "q2.png", "options": [{"text": "logic", "trait": "T"}, {"text": "heart", "trait": "F"}]}
  ]
}`

const mbtiResults = `{"ESTJ": "Organiser.", "INFP": {"text": "Mediator."}}`

const sumQuestions = `{
  "meta": {"title": "Stress", "type": "sum"},
  "questions": [
    {"text": "Sleep badly?", "options": [{"text": "no", "score": 0}, {"text": "yes", "score": "2"}, {"text": "always", "score": 3}]}
  ]
}`

const sumResults = `{"bands": [{"min": 0, "max": 1, "title": "Calm", "text": "ok"}, {"min": 2, "title": "Tense", "text": "rest"}], "format": "{title}: {text}"}`

const matchQuestions = `{
  "meta": {"type": "match"},
  "questions": [{"text": "Pick", "options": [{"text": "a", "trait": "calm"}, {"text": "b", "trait": "loyal"}]}]
}`

const matchResults = `{"owl": {"text": "Owl.", "traits": ["calm"]}, "cat": {"text": "Cat.", "traits": ["calm", "solo"]}, "dog": {"text": "Dog.", "traits": ["loyal"]}}`

func newTestLoader(t *testing.T, fsys fstest.MapFS) *Loader {
	return NewLoader(fsys, "", zaptest.NewLogger(t))
}

func TestLoadAll(t *testing.T) {
	fsys := fstest.MapFS{
		"mbti/questions.json":   {Data: []byte(mbtiQuestions)},
		"mbti/results.json":     {Data: []byte(mbtiResults)},
		"mbti/q2.png":           {Data: []byte("png")},
		"stress/questions.json": {Data: []byte(sumQuestions)},
		"stress/results.json":   {Data: []byte(sumResults)},
		"animal/questions.json": {Data: []byte(matchQuestions)},
		"animal/results.json":   {Data: []byte(matchResults)},

		"no_results/questions.json": {Data: []byte(sumQuestions)},
		"broken/questions.json":     {Data: []byte(`{"questions": [`)},
		"broken/results.json":       {Data: []byte(`{}`)},
		"empty/questions.json":      {Data: []byte(`{"questions": []}`)},
		"empty/results.json":        {Data: []byte(`{}`)},
		"README.md":                 {Data: []byte("not a test")},
	}

	catalog, skipped := newTestLoader(t, fsys).LoadAll()

	assert.Equal(t, []models.TestSummary{
		{Slug: "animal", Title: "animal"},
		{Slug: "mbti", Title: "Personality type"},
		{Slug: "stress", Title: "Stress"},
	}, catalog.List())

	var skippedSlugs []string
	for _, s := range skipped {
		skippedSlugs = append(skippedSlugs, s.Slug)
		assert.Error(t, s.Err)
	}
	assert.Equal(t, []string{"broken", "empty", "no_results"}, skippedSlugs)

	mbti, ok := catalog.Get("mbti")
	require.True(t, ok)
	assert.Equal(t, models.AxisTally, mbti.Strategy)
	assert.Equal(t, filepath.FromSlash("mbti/q2.png"), mbti.Questions[1].Image)
	assert.Equal(t, "Organiser.", mbti.Results.Types["ESTJ"])
	assert.Equal(t, "Mediator.", mbti.Results.Types["INFP"])
	assert.Equal(t, models.TraitAnswer("E"), mbti.Questions[0].Options[0].Answer)

	stress, ok := catalog.Get("stress")
	require.True(t, ok)
	assert.Equal(t, models.SumBands, stress.Strategy)
	assert.Equal(t, models.ScoreAnswer("2"), stress.Questions[0].Options[1].Answer)
	require.Len(t, stress.Results.Bands.Bands, 2)
	assert.Equal(t, openMax, stress.Results.Bands.Bands[1].Max)
	assert.Equal(t, "{title}: {text}", stress.Results.Bands.Format)

	animal, ok := catalog.Get("animal")
	require.True(t, ok)
	assert.Equal(t, models.BestMatch, animal.Strategy)
	var keys []string
	for _, m := range animal.Results.Matches {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"owl", "cat", "dog"}, keys)
}

func TestLoadRejectsInvalidDefinitions(t *testing.T) {
	tests := []struct {
		name      string
		questions string
		results   string
	}{
		{
			name:      "mbti with three options",
			questions: `{"meta":{"type":"mbti"},"questions":[{"text":"q","options":[{"text":"a","trait":"E"},{"text":"b","trait":"I"},{"text":"c","trait":"E"}]}]}`,
			results:   `{}`,
		},
		{
			name:      "mbti option with score",
			questions: `{"meta":{"type":"mbti"},"questions":[{"text":"q","options":[{"text":"a","trait":"E"},{"text":"b","score":1}]}]}`,
			results:   `{}`,
		},
		{
			name:      "option with trait and score",
			questions: `{"questions":[{"text":"q","options":[{"text":"a","trait":"x","score":1}]}]}`,
			results:   `{}`,
		},
		{
			name:      "option with nothing",
			questions: `{"questions":[{"text":"q","options":[{"text":"a"}]}]}`,
			results:   `{}`,
		},
		{
			name:      "question without options",
			questions: `{"questions":[{"text":"q","options":[]}]}`,
			results:   `{}`,
		},
		{
			name:      "question without text",
			questions: `{"questions":[{"text":" ","options":[{"text":"a","trait":"x"}]}]}`,
			results:   `{}`,
		},
		{
			name:      "missing image",
			questions: `{"questions":[{"text":"q","image":"nope.png","options":[{"text":"a","trait":"x"}]}]}`,
			results:   `{}`,
		},
		{
			name:      "score is an object",
			questions: `{"meta":{"type":"sum"},"questions":[{"text":"q","options":[{"text":"a","score":{"v":1}}]}]}`,
			results:   `{"bands":[]}`,
		},
		{
			name:      "malformed bands",
			questions: `{"meta":{"type":"sum"},"questions":[{"text":"q","options":[{"text":"a","score":1}]}]}`,
			results:   `{"bands":[{"min":"low"}]}`,
		},
		{
			name:      "results not an object",
			questions: `{"meta":{"type":"match"},"questions":[{"text":"q","options":[{"text":"a","trait":"x"}]}]}`,
			results:   `[1,2]`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fsys := fstest.MapFS{
				"t/questions.json": {Data: []byte(tc.questions)},
				"t/results.json":   {Data: []byte(tc.results)},
			}
			_, err := newTestLoader(t, fsys).Load("t")
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsUnroutableSlugs(t *testing.T) {
	const questions = `{"questions":[{"text":"q","options":[{"text":"a","trait":"x"}]}]}`
	long := strings.Repeat("l", 70)
	fsys := fstest.MapFS{
		"a:b/questions.json":     {Data: []byte(questions)},
		"a:b/results.json":       {Data: []byte(`{}`)},
		long + "/questions.json": {Data: []byte(questions)},
		long + "/results.json":   {Data: []byte(`{}`)},
		"ok/questions.json":      {Data: []byte(questions)},
		"ok/results.json":        {Data: []byte(`{}`)},
	}

	catalog, skipped := newTestLoader(t, fsys).LoadAll()

	assert.Equal(t, []models.TestSummary{{Slug: "ok", Title: "ok"}}, catalog.List())
	require.Len(t, skipped, 2)
	assert.Equal(t, "a:b", skipped[0].Slug)
	assert.ErrorContains(t, skipped[0].Err, "contains ':'")
	assert.Equal(t, long, skipped[1].Slug)
	assert.ErrorContains(t, skipped[1].Err, "limit 64")
}

func TestLoadSlugLengthCountsIndexes(t *testing.T) {
	// "ans:" + 56 bytes + ":0:0" is exactly the limit
	slug := strings.Repeat("s", 56)
	one := `{"text":"q","options":[{"text":"a","trait":"x"}]}`

	fsys := fstest.MapFS{
		slug + "/questions.json": {Data: []byte(`{"questions":[` + one + `]}`)},
		slug + "/results.json":   {Data: []byte(`{}`)},
	}
	_, err := newTestLoader(t, fsys).Load(slug)
	require.NoError(t, err)

	eleven := strings.TrimSuffix(strings.Repeat(one+",", 11), ",")
	fsys[slug+"/questions.json"] = &fstest.MapFile{Data: []byte(`{"questions":[` + eleven + `]}`)}
	_, err = newTestLoader(t, fsys).Load(slug)
	assert.ErrorContains(t, err, "button data is 65 bytes")
}

func TestLoadDefaults(t *testing.T) {
	fsys := fstest.MapFS{
		"mbti/questions.json":  {Data: []byte(`{"questions":[{"text":"q","options":[{"text":"a","trait":"E"},{"text":"b","trait":"I"}]}]}`)},
		"mbti/results.json":    {Data: []byte(`{}`)},
		"odd/questions.json":   {Data: []byte(`{"meta":{"type":"astrology"},"questions":[{"text":"q","image":"https://example.com/a.png","options":[{"text":"a","trait":"x"}]}]}`)},
		"odd/results.json":     {Data: []byte(`{"x":"Ex.","y":["ignored"]}`)},
		"sum/questions.json":   {Data: []byte(`{"questions":[{"text":"q","options":[{"text":"a","score":1}]}]}`)},
		"sum/results.json":     {Data: []byte(`{"bands":[{"min":0,"title":"Any"}]}`)},
		"match/questions.json": {Data: []byte(`{"questions":[{"text":"q","options":[{"text":"a","trait":"x"}]}]}`)},
		"match/results.json":   {Data: []byte(`{"owl":{"text":"Owl.","traits":["x"]}}`)},
	}
	l := newTestLoader(t, fsys)

	mbti, err := l.Load("mbti")
	require.NoError(t, err)
	assert.Equal(t, "mbti", mbti.Title)
	assert.Equal(t, models.AxisTally, mbti.Strategy)

	odd, err := l.Load("odd")
	require.NoError(t, err)
	assert.Equal(t, models.TraitTop, odd.Strategy)
	assert.Equal(t, "https://example.com/a.png", odd.Questions[0].Image)
	assert.Equal(t, map[string]string{"x": "Ex."}, odd.Results.Traits)

	sum, err := l.Load("sum")
	require.NoError(t, err)
	assert.Equal(t, models.SumBands, sum.Strategy)

	match, err := l.Load("match")
	require.NoError(t, err)
	assert.Equal(t, models.BestMatch, match.Strategy)
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	_, err := f.NewSheet("meta")
	require.NoError(t, err)
	_, err = f.NewSheet("questions")
	require.NoError(t, err)

	require.NoError(t, f.SetSheetRow("meta", "A1", &[]interface{}{"title", "Anxiety scale"}))
	require.NoError(t, f.SetSheetRow("meta", "A2", &[]interface{}{"type", "sum"}))
	require.NoError(t, f.SetSheetRow("questions", "A1", &[]interface{}{"text", "image", "option 1", "value 1", "option 2", "value 2"}))
	require.NoError(t, f.SetSheetRow("questions", "A2", &[]interface{}{"Worry often?", "", "no", "0", "yes", "2"}))
	require.NoError(t, f.SetSheetRow("questions", "A3", &[]interface{}{"Sleep well?", "", "yes", "0", "no", "1"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	fsys := fstest.MapFS{
		"anxiety/questions.xlsx": {Data: buf.Bytes()},
		"anxiety/results.json":   {Data: []byte(sumResults)},
	}
	def, err := newTestLoader(t, fsys).Load("anxiety")
	require.NoError(t, err)

	assert.Equal(t, "Anxiety scale", def.Title)
	assert.Equal(t, models.SumBands, def.Strategy)
	require.Len(t, def.Questions, 2)
	assert.Equal(t, "Worry often?", def.Questions[0].Text)
	assert.Equal(t, []models.Option{
		{Text: "no", Answer: models.ScoreAnswer("0")},
		{Text: "yes", Answer: models.ScoreAnswer("2")},
	}, def.Questions[0].Options)
}

func TestLoadMissingQuestions(t *testing.T) {
	fsys := fstest.MapFS{"t/results.json": {Data: []byte(`{}`)}}
	_, err := newTestLoader(t, fsys).Load("t")
	assert.ErrorIs(t, err, errMissingFile)
}

func TestLoadDirMissing(t *testing.T) {
	catalog, skipped := LoadDir(filepath.Join(t.TempDir(), "absent"), zaptest.NewLogger(t))
	assert.Equal(t, 0, catalog.Len())
	assert.Empty(t, skipped)
}
