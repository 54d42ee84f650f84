package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/example/quizbot/internal/screen"
	"github.com/example/quizbot/pkg/models"
)

// maxCaption is the Telegram caption limit; longer screens are sent as text
const maxCaption = 1024

const (
	menuText      = "📋 Choose a test:"
	emptyMenuText = "No tests are available right now."
	backText      = "⬅️ Back to menu"
	retakeText    = "🔁 Take again"
)

var brandExts = []string{"png", "jpg", "jpeg", "webp"}

// findBrandImage looks for <dir>/<kind>.<ext>
func findBrandImage(dir, kind string) string {
	if dir == "" {
		return ""
	}
	for _, ext := range brandExts {
		p := filepath.Join(dir, kind+"."+ext)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// withImage attaches img when the text still fits in a caption
func withImage(s screen.Screen, img string) screen.Screen {
	if img != "" && utf8.RuneCountInString(s.Text) <= maxCaption {
		s.Image = img
	}
	return s
}

func menuScreen(tests []models.TestSummary, image string) screen.Screen {
	if len(tests) == 0 {
		return screen.Screen{Text: emptyMenuText}
	}

	var rows screen.Keyboard
	var row []screen.Button
	for _, t := range tests {
		row = append(row, screen.Button{Text: t.Title, Data: StartData(t.Slug)})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return withImage(screen.Screen{Text: menuText, Buttons: rows}, image)
}

func questionScreen(test *models.TestDefinition, idx int) screen.Screen {
	q := test.Questions[idx]

	var rows screen.Keyboard
	var row []screen.Button
	for i, opt := range q.Options {
		text := opt.Text
		if text == "" {
			text = "—"
		}
		row = append(row, screen.Button{Text: text, Data: AnswerData(test.Slug, idx, i)})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []screen.Button{{Text: backText, Data: MenuData()}})

	text := fmt.Sprintf("<b>%s</b>\n\n(%d/%d)", q.Text, idx+1, len(test.Questions))
	return withImage(screen.Screen{Text: text, Buttons: rows}, q.Image)
}

func resultScreen(test *models.TestDefinition, result, image string) screen.Screen {
	rows := screen.Keyboard{
		{{Text: retakeText, Data: StartData(test.Slug)}},
		{{Text: backText, Data: MenuData()}},
	}
	return withImage(screen.Screen{Text: result, Buttons: rows}, image)
}
