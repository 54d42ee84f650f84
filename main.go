package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/example/quizbot/internal/bot"
	"github.com/example/quizbot/internal/config"
	"github.com/example/quizbot/internal/content"
	"github.com/example/quizbot/internal/database"
	"github.com/example/quizbot/internal/engine"
	"github.com/example/quizbot/internal/scheduler"
	"github.com/example/quizbot/internal/screen"
	"github.com/example/quizbot/internal/session"
	"github.com/example/quizbot/internal/telegram"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "quizbot",
	Short: "Telegram bot running multiple-choice psychological tests",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		zapConfig := zap.NewProductionConfig()
		if verbose || cfg.Debug {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runBot,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start polling Telegram for updates",
	Args:  cobra.NoArgs,
	RunE:  runBot,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, skipped := content.LoadDir(cfg.ContentDir, logger.Named("content"))
	if catalog.Len() == 0 {
		logger.Warn("no tests loaded, the menu will be empty",
			zap.String("dir", cfg.ContentDir),
			zap.Int("skipped", len(skipped)))
	}

	db, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()
	results := database.NewQuizResultRepository(db)

	// the default client has no timeout and a hung request would pin its goroutine
	httpClient := &http.Client{Timeout: cfg.Telegram.RequestTimeout.Std()}
	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return fmt.Errorf("unable to create bot: %w", err)
	}
	logger.Info("authorized", zap.String("account", api.Self.UserName))

	store := session.NewStore()
	renderer := screen.NewRenderer(telegram.NewClient(api), logger.Named("screen"))
	eng := engine.New(catalog, store, renderer, results, engine.Config{
		BrandingDir:  cfg.BrandingDir,
		EventTimeout: cfg.Telegram.RenderTimeout.Std(),
	}, logger.Named("engine"))

	sched := scheduler.New(store, cfg.Sessions.IdleTTL.Std(), cfg.Sessions.EvictInterval.Std(), logger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	botConfig := bot.DefaultConfig()
	botConfig.PollTimeout = cfg.Telegram.PollTimeout.Std()
	b := bot.New(api, eng, results, botConfig, logger.Named("bot"))

	logger.Info("bot started, press Ctrl+C to stop", zap.Int("tests", catalog.Len()))
	return b.Run(ctx)
}
