// Package bot serves the plan analytics over Telegram.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"energy-analyzer/internal/backend"
	"energy-analyzer/internal/database"
	"energy-analyzer/internal/models"
	logx "energy-analyzer/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const handleTimeout = 45 * time.Second

// Init connects to Telegram with token.
func Init(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN is not set")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		if err.Error() == "Unauthorized" {
			return nil, errors.New("telegram token is invalid or revoked, ask @BotFather for a new one")
		}
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}

	api.Debug = false
	logx.Info().Str("username", api.Self.UserName).Msg("telegram bot authorized")
	return api, nil
}

// Sender delivers messages. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// PlanSource is the backend the bot reads plans from.
type PlanSource interface {
	Providers(ctx context.Context) ([]models.Provider, error)
	Plans(ctx context.Context, filter models.PlanFilter) ([]models.Plan, error)
	Plan(ctx context.Context, id int64) (*models.Plan, error)
	TriggerScrape(ctx context.Context, req backend.ScrapeRequest) (*backend.ScrapeResult, error)
}

// StateStore keeps per-chat form values and comparison picks.
type StateStore interface {
	Settings(ctx context.Context, chatID int64, defaults database.ChatSettings) (database.ChatSettings, error)
	SaveSettings(ctx context.Context, s database.ChatSettings) error
	Selections(ctx context.Context, chatID int64) ([]int64, error)
	AddSelection(ctx context.Context, chatID, planID int64) error
	RemoveSelection(ctx context.Context, chatID, planID int64) (bool, error)
	ClearSelections(ctx context.Context, chatID int64) (int64, error)
}

// Options tune the bot.
type Options struct {
	// OperatorChatID, when non-zero, is the only chat allowed to /scrape.
	OperatorChatID int64
	// Defaults are the usage form values of chats that never ran /usage.
	Defaults database.ChatSettings
}

// Bot dispatches chat commands.
type Bot struct {
	sender Sender
	source PlanSource
	store  StateStore
	opts   Options
}

// New wires a bot.
func New(sender Sender, source PlanSource, store StateStore, opts Options) *Bot {
	return &Bot{
		sender: sender,
		source: source,
		store:  store,
		opts:   opts,
	}
}

// Run handles updates until ctx is done or the channel closes.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			b.HandleMessage(ctx, update.Message)
		}
	}
}

// HandleMessage runs the command carried by message, if any.
func (b *Bot) HandleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat == nil {
		return
	}
	parts := strings.Fields(message.Text)
	if len(parts) == 0 {
		return
	}

	command := strings.ToLower(parts[0])
	if idx := strings.Index(command, "@"); idx > 0 {
		command = command[:idx]
	}
	args := parts[1:]
	chatID := message.Chat.ID

	ctx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	logx.Debug().Int64("chat_id", chatID).Str("command", command).Msg("telegram command")

	switch command {
	case "/start", "/help":
		b.handleHelp(chatID)
	case "/summary":
		b.handleSummary(ctx, chatID, args)
	case "/plans":
		b.handlePlans(ctx, chatID, args)
	case "/providers":
		b.handleProviders(ctx, chatID)
	case "/distribution":
		b.handleDistribution(ctx, chatID, args)
	case "/usage":
		b.handleUsage(ctx, chatID, args)
	case "/compare":
		b.handleCompare(ctx, chatID, args)
	case "/scrape":
		b.handleScrape(ctx, chatID, args)
	default:
		if strings.HasPrefix(command, "/") {
			b.send(chatID, "Unknown command. Use /help to see what I can do.")
		}
	}
}
