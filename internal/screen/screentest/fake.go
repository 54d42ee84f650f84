// Package screentest provides an in-memory Channel for tests.
package screentest

import (
	"context"
	"errors"
	"sync"

	"github.com/example/quizbot/internal/screen"
)

// ErrInjected is returned by operations configured to fail
var ErrInjected = errors.New("injected channel failure")

// Call is one recorded channel operation
type Call struct {
	Op        string
	ChatID    int64
	MessageID int
	Text      string
	Image     string
	Buttons   screen.Keyboard
}

// Message is the fake's view of a live message
type Message struct {
	Kind    screen.Kind
	Text    string
	Image   string
	Buttons screen.Keyboard
}

// Channel records every call and keeps live messages per chat.
// Fail* fields force the matching operation to fail. Block, when set,
// makes every operation wait until it is closed or ctx ends.
type Channel struct {
	mu     sync.Mutex
	nextID int
	calls  []Call
	live   map[int64]map[int]Message

	FailEdits   bool
	FailSends   bool
	FailDeletes bool
	// NotModified makes identical edits return screen.ErrNotModified, as Telegram does
	NotModified bool
	Block       chan struct{}
}

// New returns an empty fake channel
func New() *Channel {
	return &Channel{nextID: 100, live: make(map[int64]map[int]Message)}
}

// Calls returns a copy of the recorded calls
func (c *Channel) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// Count returns how many calls of op were recorded
func (c *Channel) Count(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, call := range c.calls {
		if call.Op == op {
			n++
		}
	}
	return n
}

// Live returns the live messages of a chat
func (c *Channel) Live(chatID int64) map[int]Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int]Message, len(c.live[chatID]))
	for id, m := range c.live[chatID] {
		out[id] = m
	}
	return out
}

// Reset forgets the recorded calls but keeps live messages
func (c *Channel) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}

func (c *Channel) wait(ctx context.Context) error {
	c.mu.Lock()
	block := c.Block
	c.mu.Unlock()
	if block == nil {
		return nil
	}
	select {
	case <-block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Channel) record(call Call) {
	c.calls = append(c.calls, call)
}

func (c *Channel) send(ctx context.Context, call Call, msg Message) (int, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(call)
	if c.FailSends {
		return 0, ErrInjected
	}
	c.nextID++
	if c.live[call.ChatID] == nil {
		c.live[call.ChatID] = make(map[int]Message)
	}
	c.live[call.ChatID][c.nextID] = msg
	return c.nextID, nil
}

// edit applies an in-place change; only restricts the accepted kind unless it is screen.None
func (c *Channel) edit(ctx context.Context, call Call, only screen.Kind, apply func(*Message)) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(call)
	if c.FailEdits {
		return ErrInjected
	}
	msg, ok := c.live[call.ChatID][call.MessageID]
	if !ok {
		return errors.New("message to edit not found")
	}
	if only != screen.None && msg.Kind != only {
		return errors.New("message kind mismatch")
	}
	updated := msg
	apply(&updated)
	if c.NotModified && equal(msg, updated) {
		return screen.ErrNotModified
	}
	c.live[call.ChatID][call.MessageID] = updated
	return nil
}

func equal(a, b Message) bool {
	if a.Kind != b.Kind || a.Text != b.Text || a.Image != b.Image || len(a.Buttons) != len(b.Buttons) {
		return false
	}
	for i := range a.Buttons {
		if len(a.Buttons[i]) != len(b.Buttons[i]) {
			return false
		}
		for j := range a.Buttons[i] {
			if a.Buttons[i][j] != b.Buttons[i][j] {
				return false
			}
		}
	}
	return true
}

// SendText posts a new text message and makes it live
func (c *Channel) SendText(ctx context.Context, chatID int64, text string, kb screen.Keyboard) (int, error) {
	return c.send(ctx,
		Call{Op: "sendText", ChatID: chatID, Text: text, Buttons: kb},
		Message{Kind: screen.Text, Text: text, Buttons: kb})
}

// SendPhoto posts a new photo message and makes it live
func (c *Channel) SendPhoto(ctx context.Context, chatID int64, image, caption string, kb screen.Keyboard) (int, error) {
	return c.send(ctx,
		Call{Op: "sendPhoto", ChatID: chatID, Text: caption, Image: image, Buttons: kb},
		Message{Kind: screen.Photo, Text: caption, Image: image, Buttons: kb})
}

// EditText rewrites a live text message. Editing a photo fails as it does in Telegram.
func (c *Channel) EditText(ctx context.Context, chatID int64, messageID int, text string, kb screen.Keyboard) error {
	return c.edit(ctx,
		Call{Op: "editText", ChatID: chatID, MessageID: messageID, Text: text, Buttons: kb},
		screen.Text,
		func(m *Message) { m.Text, m.Buttons = text, kb })
}

// EditCaption rewrites the caption of a live photo message
func (c *Channel) EditCaption(ctx context.Context, chatID int64, messageID int, caption string, kb screen.Keyboard) error {
	return c.edit(ctx,
		Call{Op: "editCaption", ChatID: chatID, MessageID: messageID, Text: caption, Buttons: kb},
		screen.Photo,
		func(m *Message) { m.Text, m.Buttons = caption, kb })
}

// EditMedia swaps the image of a live message, turning it into a photo
func (c *Channel) EditMedia(ctx context.Context, chatID int64, messageID int, image, caption string, kb screen.Keyboard) error {
	return c.edit(ctx,
		Call{Op: "editMedia", ChatID: chatID, MessageID: messageID, Text: caption, Image: image, Buttons: kb},
		screen.None,
		func(m *Message) { m.Kind, m.Image, m.Text, m.Buttons = screen.Photo, image, caption, kb })
}

// Delete removes a live message
func (c *Channel) Delete(ctx context.Context, chatID int64, messageID int) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(Call{Op: "delete", ChatID: chatID, MessageID: messageID})
	if c.FailDeletes {
		return ErrInjected
	}
	if _, ok := c.live[chatID][messageID]; !ok {
		return errors.New("message to delete not found")
	}
	delete(c.live[chatID], messageID)
	return nil
}

var _ screen.Channel = (*Channel)(nil)
