// Package telegram implements the screen channel on the Telegram Bot API.
package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/quizbot/internal/screen"
)

// API is the part of *tgbotapi.BotAPI the bot relies on
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Client sends, edits and deletes chat messages. Every text is sent in HTML
// parse mode.
type Client struct {
	api API
}

// NewClient wraps api
func NewClient(api API) *Client {
	return &Client{api: api}
}

// createKeyboard converts a screen keyboard into inline markup
func createKeyboard(buttons screen.Keyboard) *tgbotapi.InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.Data))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	return &markup
}

// fileFor picks an upload or a URL reference for image
func fileFor(image string) tgbotapi.RequestFileData {
	if strings.Contains(image, "://") {
		return tgbotapi.FileURL(image)
	}
	return tgbotapi.FilePath(image)
}

// mapError translates Bot API failures into screen errors
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "message is not modified") {
		return screen.ErrNotModified
	}
	return err
}

// call runs fn and gives up waiting once ctx ends. The request itself keeps
// running until the Bot API answers.
func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (c *Client) send(ctx context.Context, msg tgbotapi.Chattable) (int, error) {
	sent, err := call(ctx, func() (tgbotapi.Message, error) { return c.api.Send(msg) })
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (c *Client) request(ctx context.Context, req tgbotapi.Chattable) error {
	_, err := call(ctx, func() (*tgbotapi.APIResponse, error) { return c.api.Request(req) })
	return mapError(err)
}

// SendText sends a new text message
func (c *Client) SendText(ctx context.Context, chatID int64, text string, kb screen.Keyboard) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup := createKeyboard(kb); markup != nil {
		msg.ReplyMarkup = *markup
	}
	return c.send(ctx, msg)
}

// SendPhoto sends a new photo message with caption
func (c *Client) SendPhoto(ctx context.Context, chatID int64, image, caption string, kb screen.Keyboard) (int, error) {
	msg := tgbotapi.NewPhoto(chatID, fileFor(image))
	msg.Caption = caption
	msg.ParseMode = tgbotapi.ModeHTML
	if markup := createKeyboard(kb); markup != nil {
		msg.ReplyMarkup = *markup
	}
	return c.send(ctx, msg)
}

// EditText replaces the text and keyboard of a text message
func (c *Client) EditText(ctx context.Context, chatID int64, messageID int, text string, kb screen.Keyboard) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.ReplyMarkup = createKeyboard(kb)
	return c.request(ctx, edit)
}

// EditCaption replaces the caption and keyboard of a photo message
func (c *Client) EditCaption(ctx context.Context, chatID int64, messageID int, caption string, kb screen.Keyboard) error {
	edit := tgbotapi.NewEditMessageCaption(chatID, messageID, caption)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.ReplyMarkup = createKeyboard(kb)
	return c.request(ctx, edit)
}

// EditMedia swaps the photo of a message along with its caption and keyboard
func (c *Client) EditMedia(ctx context.Context, chatID int64, messageID int, image, caption string, kb screen.Keyboard) error {
	media := tgbotapi.NewInputMediaPhoto(fileFor(image))
	media.Caption = caption
	media.ParseMode = tgbotapi.ModeHTML

	edit := tgbotapi.EditMessageMediaConfig{
		BaseEdit: tgbotapi.BaseEdit{
			ChatID:      chatID,
			MessageID:   messageID,
			ReplyMarkup: createKeyboard(kb),
		},
		Media: media,
	}
	return c.request(ctx, edit)
}

// Delete removes a message
func (c *Client) Delete(ctx context.Context, chatID int64, messageID int) error {
	return c.request(ctx, tgbotapi.NewDeleteMessage(chatID, messageID))
}

// AnswerCallback acknowledges a button tap, optionally with a notice
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	cb := tgbotapi.NewCallback(callbackID, text)
	cb.ShowAlert = alert
	return c.request(ctx, cb)
}

var _ screen.Channel = (*Client)(nil)
