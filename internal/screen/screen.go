// Package screen keeps a single evolving message per chat on top of a channel
// that only supports sending, editing and deleting discrete messages.
package screen

import (
	"context"
	"errors"
)

// Kind is the content type of a displayed message
type Kind int

const (
	// None means nothing is displayed
	None Kind = iota
	// Text is a plain text message
	Text
	// Photo is a photo with a caption
	Photo
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Photo:
		return "photo"
	default:
		return "none"
	}
}

var (
	// ErrNotModified is returned by a Channel when an edit would not change the message.
	// The renderer treats it as a successful edit.
	ErrNotModified = errors.New("message is not modified")
	// ErrUndelivered is returned by Render when even the fallback send failed
	ErrUndelivered = errors.New("screen could not be delivered")
)

// Button is an inline button that routes a tap back through its Data
type Button struct {
	Text string
	Data string
}

// Keyboard is a grid of buttons, row by row
type Keyboard [][]Button

// Screen is the desired content of the chat's single live message
type Screen struct {
	Text    string
	Image   string
	Buttons Keyboard
}

// Kind returns Photo when the screen carries an image and Text otherwise
func (s Screen) Kind() Kind {
	if s.Image != "" {
		return Photo
	}
	return Text
}

// Displayed records the message currently representing the screen
type Displayed struct {
	MessageID int
	Kind      Kind
	// Image is the image shown by a Photo message
	Image string
}

// Empty reports whether nothing is known to be displayed
func (d Displayed) Empty() bool {
	return d.MessageID == 0 || d.Kind == None
}

// Channel is the messaging primitive set the renderer relies on.
// Edits are expected to fail routinely and must report failure as an error value.
type Channel interface {
	SendText(ctx context.Context, chatID int64, text string, kb Keyboard) (int, error)
	SendPhoto(ctx context.Context, chatID int64, image, caption string, kb Keyboard) (int, error)
	EditText(ctx context.Context, chatID int64, messageID int, text string, kb Keyboard) error
	EditCaption(ctx context.Context, chatID int64, messageID int, caption string, kb Keyboard) error
	EditMedia(ctx context.Context, chatID int64, messageID int, image, caption string, kb Keyboard) error
	Delete(ctx context.Context, chatID int64, messageID int) error
}
