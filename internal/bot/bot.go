// Package bot connects Telegram updates to the quiz engine.
package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/example/quizbot/internal/telegram"
	"github.com/example/quizbot/pkg/models"
)

// Engine is the session controller surface driven by updates
type Engine interface {
	OpenMenu(ctx context.Context, sessionID int64) (bool, error)
	HandleCallback(ctx context.Context, sessionID int64, data string) (bool, error)
}

// History gives access to completed results
type History interface {
	CountByUser(ctx context.Context, userID int64) (int, error)
	RecentByUser(ctx context.Context, userID int64, limit int) ([]models.QuizResult, error)
}

// Bot represents the Telegram bot application
type Bot struct {
	api     telegram.API
	client  *telegram.Client
	engine  Engine
	history History
	config  *BotConfig
	log     *zap.Logger

	wg sync.WaitGroup
}

// New creates a new bot instance. history may be nil.
func New(api telegram.API, engine Engine, history History, config *BotConfig, logger *zap.Logger) *Bot {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		api:     api,
		client:  telegram.NewClient(api),
		engine:  engine,
		history: history,
		config:  config,
		log:     logger,
	}
}

// Run polls for updates until ctx ends, then waits for in-flight updates.
// Each update is handled on its own goroutine; ordering within a session is
// kept by the engine.
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = int(b.config.PollTimeout.Seconds())
	updates := b.api.GetUpdatesChan(updateConfig)

	// in-flight updates finish even after shutdown starts
	handlerCtx := context.WithoutCancel(ctx)

	b.log.Info("bot started", zap.Int("poll_timeout", updateConfig.Timeout))
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			b.log.Info("bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleUpdate(handlerCtx, update)
			}()
		}
	}
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("panic while handling update",
				zap.Int("update_id", update.UpdateID),
				zap.Any("panic", r),
				zap.StackSkip("stack", 1))
		}
	}()

	switch {
	case update.Message != nil:
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.log.Warn("message not handled", zap.Int("update_id", update.UpdateID), zap.Error(err))
		}
	case update.CallbackQuery != nil:
		if err := b.handleCallbackQuery(ctx, update.CallbackQuery); err != nil {
			b.log.Warn("callback not handled", zap.Int("update_id", update.UpdateID), zap.Error(err))
		}
	}
}
