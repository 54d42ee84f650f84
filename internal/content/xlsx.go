package content

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/quizbot/pkg/models"
)

// Spreadsheet layout for questions.xlsx
const (
	metaSheet      = "meta"
	questionsSheet = "questions"

	textColumn        = 0 // A
	imageColumn       = 1 // B
	firstOptionColumn = 2 // C; options follow as text/value pairs
)

// parseQuestionsXLSX reads a spreadsheet authored test. The meta sheet holds
// key/value rows (title, type). The questions sheet has a header row followed
// by one question per row: text, image, then option text and value pairs.
// Option values are scores for sum tests and traits otherwise.
func parseQuestionsXLSX(slug string, r io.Reader) (*models.TestDefinition, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	meta := make(map[string]string)
	if hasSheet(f, metaSheet) {
		rows, err := f.GetRows(metaSheet)
		if err != nil {
			return nil, fmt.Errorf("failed to get meta rows: %w", err)
		}
		for _, row := range rows {
			if len(row) >= 2 {
				meta[strings.ToLower(strings.TrimSpace(row[0]))] = strings.TrimSpace(row[1])
			}
		}
	}

	def := newDefinition(slug, meta["title"], meta["type"])

	rows, err := f.GetRows(questionsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get question rows: %w", err)
	}

	for i, row := range rows {
		// Skip header row
		if i == 0 {
			continue
		}
		text := cell(row, textColumn)
		if text == "" {
			continue
		}

		q := models.Question{Text: text, Image: cell(row, imageColumn)}
		for col := firstOptionColumn; col < len(row); col += 2 {
			optText, value := cell(row, col), cell(row, col+1)
			if optText == "" && value == "" {
				continue
			}
			if value == "" {
				return nil, fmt.Errorf("row %d: option %q has no value", i+1, optText)
			}

			answer := models.TraitAnswer(value)
			if def.Strategy == models.SumBands {
				answer = models.ScoreAnswer(value)
			}
			q.Options = append(q.Options, models.Option{Text: optText, Answer: answer})
		}
		def.Questions = append(def.Questions, q)
	}
	return def, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func hasSheet(f *excelize.File, name string) bool {
	for _, s := range f.GetSheetList() {
		if s == name {
			return true
		}
	}
	return false
}
