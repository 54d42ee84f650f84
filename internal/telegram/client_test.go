package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/example/quizbot/internal/screen"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeAPI struct {
	mu      sync.Mutex
	sent    []tgbotapi.Chattable
	nextID  int
	err     error
	release chan struct{}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	if f.err != nil {
		return &tgbotapi.APIResponse{}, f.err
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) last(t *testing.T) tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

var kb = screen.Keyboard{{{Text: "A", Data: "ans:t:0:0"}, {Text: "B", Data: "ans:t:0:1"}}}

func TestSendText(t *testing.T) {
	api := &fakeAPI{}
	c := NewClient(api)

	id, err := c.SendText(context.Background(), 42, "<b>hi</b>", kb)
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	msg, ok := api.last(t).(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, "<b>hi</b>", msg.Text)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 1)
	assert.Equal(t, "ans:t:0:1", *markup.InlineKeyboard[0][1].CallbackData)
}

func TestSendTextWithoutKeyboard(t *testing.T) {
	api := &fakeAPI{}
	_, err := NewClient(api).SendText(context.Background(), 42, "plain", nil)
	require.NoError(t, err)

	msg := api.last(t).(tgbotapi.MessageConfig)
	assert.Nil(t, msg.ReplyMarkup)
}

func TestSendPhotoFileOrURL(t *testing.T) {
	api := &fakeAPI{}
	c := NewClient(api)

	_, err := c.SendPhoto(context.Background(), 42, "data/tests/mbti/q1.png", "cap", kb)
	require.NoError(t, err)
	photo := api.last(t).(tgbotapi.PhotoConfig)
	assert.Equal(t, tgbotapi.FilePath("data/tests/mbti/q1.png"), photo.File)
	assert.Equal(t, "cap", photo.Caption)
	assert.Equal(t, tgbotapi.ModeHTML, photo.ParseMode)

	_, err = c.SendPhoto(context.Background(), 42, "https://example.com/x.png", "cap", kb)
	require.NoError(t, err)
	photo = api.last(t).(tgbotapi.PhotoConfig)
	assert.Equal(t, tgbotapi.FileURL("https://example.com/x.png"), photo.File)
}

func TestEdits(t *testing.T) {
	api := &fakeAPI{}
	c := NewClient(api)
	ctx := context.Background()

	require.NoError(t, c.EditText(ctx, 42, 7, "new", kb))
	text := api.last(t).(tgbotapi.EditMessageTextConfig)
	assert.Equal(t, 7, text.MessageID)
	assert.Equal(t, "new", text.Text)
	require.NotNil(t, text.ReplyMarkup)

	require.NoError(t, c.EditCaption(ctx, 42, 7, "cap", nil))
	caption := api.last(t).(tgbotapi.EditMessageCaptionConfig)
	assert.Equal(t, "cap", caption.Caption)
	assert.Nil(t, caption.ReplyMarkup)

	require.NoError(t, c.EditMedia(ctx, 42, 7, "full.png", "cap", kb))
	media := api.last(t).(tgbotapi.EditMessageMediaConfig)
	photo, ok := media.Media.(tgbotapi.InputMediaPhoto)
	require.True(t, ok)
	assert.Equal(t, tgbotapi.FilePath("full.png"), photo.Media)
	assert.Equal(t, "cap", photo.Caption)

	require.NoError(t, c.Delete(ctx, 42, 7))
	del := api.last(t).(tgbotapi.DeleteMessageConfig)
	assert.Equal(t, 7, del.MessageID)
}

func TestNotModifiedIsMapped(t *testing.T) {
	api := &fakeAPI{err: &tgbotapi.Error{Code: 400, Message: "Bad Request: message is not modified: specified new message content and reply markup are exactly the same"}}
	err := NewClient(api).EditText(context.Background(), 42, 7, "same", kb)
	assert.ErrorIs(t, err, screen.ErrNotModified)

	api.err = &tgbotapi.Error{Code: 400, Message: "Bad Request: message to edit not found"}
	err = NewClient(api).EditText(context.Background(), 42, 7, "same", kb)
	require.Error(t, err)
	assert.False(t, errors.Is(err, screen.ErrNotModified))
}

func TestCallGivesUpOnContext(t *testing.T) {
	api := &fakeAPI{release: make(chan struct{})}
	c := NewClient(api)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.SendText(ctx, 42, "slow", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// let the pending request finish so no goroutine outlives the test
	close(api.release)
	require.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return len(api.sent) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestAnswerCallback(t *testing.T) {
	api := &fakeAPI{}
	require.NoError(t, NewClient(api).AnswerCallback(context.Background(), "cb1", "Test unavailable", true))
	cb := api.last(t).(tgbotapi.CallbackConfig)
	assert.Equal(t, "cb1", cb.CallbackQueryID)
	assert.True(t, cb.ShowAlert)
}
