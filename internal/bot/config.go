package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Long polling timeout for getUpdates
	PollTimeout time.Duration
	// Number of past results shown by /stats
	HistoryLimit int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		PollTimeout:  60 * time.Second,
		HistoryLimit: 5,
	}
}
