package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback data layouts carried by inline buttons
const (
	startPrefix  = "start"
	answerPrefix = "ans"
	menuData     = "menu"

	// MaxCallbackData is the Telegram limit for button callback data, in bytes
	MaxCallbackData = 64
)

// CallbackKind identifies a decoded button tap
type CallbackKind int

const (
	// ChooseCallback selects a test from the menu
	ChooseCallback CallbackKind = iota + 1
	// AnswerCallback answers a question
	AnswerCallback
	// MenuCallback returns to the test menu
	MenuCallback
)

// Callback is a decoded button tap
type Callback struct {
	Kind     CallbackKind
	Slug     string
	Question int
	Option   int
}

// StartData encodes a test selection
func StartData(slug string) string {
	return startPrefix + ":" + slug
}

// AnswerData encodes an answer tap. The option index is resolved against the
// catalog when the tap comes back.
func AnswerData(slug string, question, option int) string {
	return fmt.Sprintf("%s:%s:%d:%d", answerPrefix, slug, question, option)
}

// MenuData encodes a return to the menu
func MenuData() string {
	return menuData
}

// ParseCallback decodes button data. Malformed data reports ok == false.
func ParseCallback(data string) (Callback, bool) {
	if data == menuData || data == "back:menu" {
		return Callback{Kind: MenuCallback}, true
	}

	parts := strings.Split(data, ":")
	switch parts[0] {
	case startPrefix:
		if len(parts) != 2 || parts[1] == "" {
			return Callback{}, false
		}
		return Callback{Kind: ChooseCallback, Slug: parts[1]}, true

	case answerPrefix:
		if len(parts) != 4 || parts[1] == "" {
			return Callback{}, false
		}
		question, err := strconv.Atoi(parts[2])
		if err != nil || question < 0 {
			return Callback{}, false
		}
		option, err := strconv.Atoi(parts[3])
		if err != nil || option < 0 {
			return Callback{}, false
		}
		return Callback{Kind: AnswerCallback, Slug: parts[1], Question: question, Option: option}, true
	}
	return Callback{}, false
}
