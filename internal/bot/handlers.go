package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/example/quizbot/internal/engine"
)

const (
	privateOnlyText     = "Please message me in a private chat to take tests."
	unknownCommandText  = "Unknown command. Use /menu to choose a test."
	testUnavailableText = "Test unavailable"
	statsUnavailable    = "Statistics are not available right now."
	helpText            = `Commands:
/menu - choose a test
/stats - your completed tests
/help - this message`
)

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	if message.Chat == nil {
		return fmt.Errorf("invalid message: chat is missing")
	}
	if !message.Chat.IsPrivate() {
		if !message.IsCommand() {
			return nil
		}
		return b.reply(ctx, message.Chat.ID, privateOnlyText)
	}
	if !message.IsCommand() {
		b.log.Debug("plain text ignored", zap.Int64("chat_id", message.Chat.ID))
		return nil
	}
	return b.HandleCommand(ctx, message)
}

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	var err error
	switch message.Command() {
	case "start", "menu":
		_, err = b.engine.OpenMenu(ctx, message.Chat.ID)
	case "stats":
		err = b.handleStats(ctx, message)
	case "help":
		err = b.reply(ctx, message.Chat.ID, helpText)
	default:
		err = b.reply(ctx, message.Chat.ID, unknownCommandText)
	}
	return err
}

func (b *Bot) handleStats(ctx context.Context, message *tgbotapi.Message) error {
	if b.history == nil {
		return b.reply(ctx, message.Chat.ID, statsUnavailable)
	}

	userID := message.Chat.ID
	count, err := b.history.CountByUser(ctx, userID)
	if err != nil {
		b.log.Warn("failed to count results", zap.Int64("user_id", userID), zap.Error(err))
		return b.reply(ctx, message.Chat.ID, statsUnavailable)
	}
	recent, err := b.history.RecentByUser(ctx, userID, b.config.HistoryLimit)
	if err != nil {
		b.log.Warn("failed to load results", zap.Int64("user_id", userID), zap.Error(err))
		return b.reply(ctx, message.Chat.ID, statsUnavailable)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "📊 <b>Completed tests:</b> %d", count)
	if len(recent) > 0 {
		text.WriteString("\n\nLatest:")
		for _, r := range recent {
			fmt.Fprintf(&text, "\n• %s (%s)", tgbotapi.EscapeText(tgbotapi.ModeHTML, r.TestTitle), r.CompletedAt.Format("2006-01-02"))
		}
	}
	return b.reply(ctx, message.Chat.ID, text.String())
}

// handleCallbackQuery handles callback queries from buttons. Every query is
// answered so the client stops its progress indicator.
func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback.Message == nil || callback.Message.Chat == nil {
		return b.client.AnswerCallback(ctx, callback.ID, "", false)
	}
	chat := callback.Message.Chat
	if !chat.IsPrivate() {
		return b.client.AnswerCallback(ctx, callback.ID, privateOnlyText, true)
	}

	accepted, err := b.engine.HandleCallback(ctx, chat.ID, callback.Data)
	switch {
	case errors.Is(err, engine.ErrTestUnavailable):
		return b.client.AnswerCallback(ctx, callback.ID, testUnavailableText, true)
	case err != nil:
		b.log.Warn("callback failed", zap.Int64("chat_id", chat.ID), zap.String("data", callback.Data), zap.Error(err))
	case !accepted:
		b.log.Debug("callback ignored", zap.Int64("chat_id", chat.ID), zap.String("data", callback.Data))
	}
	return b.client.AnswerCallback(ctx, callback.ID, "", false)
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) error {
	_, err := b.client.SendText(ctx, chatID, text, nil)
	return err
}
