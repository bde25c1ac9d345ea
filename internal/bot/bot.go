package bot

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal-bot-backend/internal/config"
	"signal-bot-backend/internal/services"
)

// NewAPI authenticates against the Telegram bot API.
func NewAPI(cfg *config.Config) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate bot: %v", err)
	}

	api.Debug = false
	log.Printf("Authorized on account %s", api.Self.UserName)
	return api, nil
}

// TelegramDeliverer adapts the bot API to the core's Deliverer
// interface.
type TelegramDeliverer struct {
	api *tgbotapi.BotAPI
}

func NewTelegramDeliverer(api *tgbotapi.BotAPI) *TelegramDeliverer {
	return &TelegramDeliverer{api: api}
}

func (d *TelegramDeliverer) Deliver(userID int64, text string) error {
	_, err := d.api.Send(tgbotapi.NewMessage(userID, text))
	return err
}

// Bot runs the long-polling update loop and routes commands into the
// core.
type Bot struct {
	api   *tgbotapi.BotAPI
	core  *services.Core
	redis *services.RedisService
	cfg   *config.Config
}

func New(api *tgbotapi.BotAPI, core *services.Core, redis *services.RedisService, cfg *config.Config) *Bot {
	return &Bot{api: api, core: core, redis: redis, cfg: cfg}
}

// Start blocks on the update channel. Each update is handled on its own
// goroutine so one slow command doesn't stall the loop.
func (b *Bot) Start() {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	for update := range updates {
		if update.Message != nil {
			go b.handleMessage(update.Message)
		} else if update.CallbackQuery != nil {
			go b.handleCallbackQuery(update.CallbackQuery)
		}
	}
}

func (b *Bot) reply(chatID int64, messageID int, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = messageID
	b.send(msg)
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}
