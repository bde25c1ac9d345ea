package bot

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal-bot-backend/internal/models"
	"signal-bot-backend/internal/services"
)

const helpText = `/register <uid> - submit your platform UID
/signal <period> <recent results> - get a 1m signal
/result win|lose - report the round outcome
/my - your status
Owner: /approve <id>, /reject <id>, /users, /setref <link>, /broadcast <text>`

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if !message.IsCommand() {
		return
	}

	userID := message.From.ID
	chatID := message.Chat.ID
	messageID := message.MessageID
	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start":
		b.handleStart(userID, chatID, messageID, message.From.UserName)
	case "help":
		b.reply(chatID, messageID, helpText)
	case "register":
		b.handleRegister(userID, chatID, messageID, args)
	case "signal":
		b.handleSignal(userID, chatID, messageID, args)
	case "result":
		b.handleResult(userID, chatID, messageID, args)
	case "my":
		b.handleMyStatus(userID, chatID, messageID)
	case "approve":
		b.handleApproval(userID, chatID, messageID, args, true)
	case "reject":
		b.handleApproval(userID, chatID, messageID, args, false)
	case "users":
		b.handleListUsers(userID, chatID, messageID)
	case "setref":
		b.handleSetReferral(userID, chatID, messageID, args)
	case "broadcast":
		b.handleBroadcast(userID, chatID, messageID, args)
	}
}

func (b *Bot) handleStart(userID, chatID int64, messageID int, username string) {
	refLink, err := b.core.OnStart(userID, username)
	if err != nil {
		b.reply(chatID, messageID, "Something went wrong, please try again.")
		return
	}

	text := "Welcome! Start with /register <uid>."
	if refLink != "" {
		text += "\nReferral: " + refLink
	}
	b.reply(chatID, messageID, text)
}

func (b *Bot) handleRegister(userID, chatID int64, messageID int, args string) {
	err := b.core.OnRegister(userID, args)
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		b.reply(chatID, messageID, "Usage: /register <uid>")
		return
	case errors.Is(err, services.ErrNotFound):
		b.reply(chatID, messageID, "Please send /start first.")
		return
	case err != nil:
		b.reply(chatID, messageID, "Something went wrong, please try again.")
		return
	}

	b.reply(chatID, messageID, "UID submitted. You'll be notified once the owner approves you.")
	b.notifyOwnerOfRegistration(userID, args)
}

// notifyOwnerOfRegistration sends the owner an approve/reject prompt
// with inline buttons for the freshly registered user.
func (b *Bot) notifyOwnerOfRegistration(userID int64, uid string) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", fmt.Sprintf("approve:%d", userID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", fmt.Sprintf("reject:%d", userID)),
		),
	)

	msg := tgbotapi.NewMessage(b.cfg.OwnerID,
		fmt.Sprintf("Registration request from %d (UID %s)", userID, uid))
	msg.ReplyMarkup = keyboard
	b.send(msg)
}

func (b *Bot) handleSignal(userID, chatID int64, messageID int, args string) {
	allowed, err := b.redis.CheckRateLimit(userID, "signal", services.DefaultRateLimitSignals, services.RateLimitWindow)
	if err == nil && !allowed {
		b.reply(chatID, messageID, "Too many signal requests, slow down a little.")
		return
	}

	fields := strings.Fields(args)
	if len(fields) == 0 {
		b.reply(chatID, messageID, "Usage: /signal <period> <recent results>")
		return
	}
	period := fields[0]
	recents := strings.Join(fields[1:], " ")

	sig, err := b.core.OnSignalRequest(userID, period, recents)
	if errors.Is(err, services.ErrAccessDenied) {
		b.reply(chatID, messageID, "You're not approved yet. Submit your UID with /register and wait for approval.")
		return
	}
	if err != nil {
		b.reply(chatID, messageID, "Something went wrong, please try again.")
		return
	}

	b.reply(chatID, messageID, formatSignalMessage(period, sig))
}

func formatSignalMessage(period string, sig models.Signal) string {
	text := fmt.Sprintf("🎯 Signal for period %s\n[Big/Small]: %s\n[Color]: %s\n[Digit]: %d",
		period, sig.Size, sig.Color, sig.Digit)
	if sig.Note != "" {
		text += "\n" + sig.Note
	}
	return text
}

func (b *Bot) handleResult(userID, chatID int64, messageID int, args string) {
	win, ok := models.ParseOutcome(args)
	if !ok {
		b.reply(chatID, messageID, "Usage: /result win|lose")
		return
	}

	lossStreak, winStreak, err := b.core.OnResult(userID, win)
	if errors.Is(err, services.ErrAccessDenied) {
		b.reply(chatID, messageID, "You're not approved yet. Submit your UID with /register and wait for approval.")
		return
	}
	if err != nil {
		b.reply(chatID, messageID, "Something went wrong, please try again.")
		return
	}

	b.reply(chatID, messageID,
		fmt.Sprintf("Recorded. Win streak: %d, loss streak: %d", winStreak, lossStreak))
}

func (b *Bot) handleMyStatus(userID, chatID int64, messageID int) {
	status, err := b.core.OnMyStatus(userID)
	if errors.Is(err, services.ErrNotFound) {
		b.reply(chatID, messageID, "Please send /start first.")
		return
	}
	if err != nil {
		b.reply(chatID, messageID, "Something went wrong, please try again.")
		return
	}

	approval := "pending approval"
	if status.Approved {
		approval = "approved"
	}
	text := fmt.Sprintf("Status: %s\nWin streak: %d\nLoss streak: %d",
		approval, status.WinStreak, status.LossStreak)
	if status.LastSignal != "" {
		text += "\nLast signal: " + status.LastSignal
	}
	b.reply(chatID, messageID, text)
}

func (b *Bot) handleApproval(callerID, chatID int64, messageID int, args string, approve bool) {
	targetID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		usage := "Usage: /reject <id>"
		if approve {
			usage = "Usage: /approve <id>"
		}
		b.reply(chatID, messageID, usage)
		return
	}

	if approve {
		err = b.core.OnApprove(callerID, targetID)
	} else {
		err = b.core.OnReject(callerID, targetID)
	}

	switch {
	case errors.Is(err, services.ErrAccessDenied):
		b.reply(chatID, messageID, "Owner only.")
	case errors.Is(err, services.ErrNotFound):
		b.reply(chatID, messageID, fmt.Sprintf("No user with id %d.", targetID))
	case err != nil:
		b.reply(chatID, messageID, "Something went wrong, please try again.")
	default:
		b.reply(chatID, messageID, fmt.Sprintf("Done: %d", targetID))
		b.notifyVerdict(targetID, approve)
	}
}

func (b *Bot) notifyVerdict(targetID int64, approved bool) {
	text := "❌ Your registration was rejected."
	if approved {
		text = "✅ You're approved! Use /signal to get started."
	}
	b.send(tgbotapi.NewMessage(targetID, text))
}

func (b *Bot) handleListUsers(callerID, chatID int64, messageID int) {
	users, err := b.core.OnListUsers(callerID)
	if errors.Is(err, services.ErrAccessDenied) {
		b.reply(chatID, messageID, "Owner only.")
		return
	}
	if err != nil {
		b.reply(chatID, messageID, "Something went wrong, please try again.")
		return
	}

	if len(users) == 0 {
		b.reply(chatID, messageID, "No users yet.")
		return
	}

	var sb strings.Builder
	for _, u := range users {
		mark := "⏳"
		if u.Approved {
			mark = "✅"
		}
		fmt.Fprintf(&sb, "%s %d @%s uid=%s\n", mark, u.ID, u.Username, u.PlatformUID)
	}
	b.reply(chatID, messageID, sb.String())
}

func (b *Bot) handleSetReferral(callerID, chatID int64, messageID int, args string) {
	err := b.core.OnSetReferral(callerID, args)
	switch {
	case errors.Is(err, services.ErrAccessDenied):
		b.reply(chatID, messageID, "Owner only.")
	case errors.Is(err, services.ErrInvalidInput):
		b.reply(chatID, messageID, "Usage: /setref <link>")
	case err != nil:
		b.reply(chatID, messageID, "Something went wrong, please try again.")
	default:
		b.reply(chatID, messageID, "Referral link updated.")
	}
}

func (b *Bot) handleBroadcast(callerID, chatID int64, messageID int, args string) {
	report, err := b.core.OnBroadcast(callerID, args)
	switch {
	case errors.Is(err, services.ErrAccessDenied):
		b.reply(chatID, messageID, "Owner only.")
		return
	case errors.Is(err, services.ErrInvalidInput):
		b.reply(chatID, messageID, "Usage: /broadcast <text>")
		return
	case err != nil:
		b.reply(chatID, messageID, "Something went wrong, please try again.")
		return
	}

	b.reply(chatID, messageID,
		fmt.Sprintf("Broadcast done: %d delivered, %d failed of %d.",
			report.Delivered, report.Failed(), report.Total))
}

// handleCallbackQuery routes the owner's inline approve/reject buttons.
func (b *Bot) handleCallbackQuery(callbackQuery *tgbotapi.CallbackQuery) {
	data := callbackQuery.Data
	callerID := callbackQuery.From.ID

	action, rawID, found := strings.Cut(data, ":")
	if !found {
		return
	}
	targetID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return
	}

	var verdict string
	switch action {
	case "approve":
		err = b.core.OnApprove(callerID, targetID)
		verdict = fmt.Sprintf("Approved %d", targetID)
	case "reject":
		err = b.core.OnReject(callerID, targetID)
		verdict = fmt.Sprintf("Rejected %d", targetID)
	default:
		return
	}

	switch {
	case errors.Is(err, services.ErrAccessDenied):
		verdict = "Owner only."
	case errors.Is(err, services.ErrNotFound):
		verdict = fmt.Sprintf("No user with id %d.", targetID)
	case err != nil:
		verdict = "Something went wrong."
	default:
		b.notifyVerdict(targetID, action == "approve")
	}

	callback := tgbotapi.NewCallback(callbackQuery.ID, verdict)
	if _, err := b.api.Request(callback); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}

	if callbackQuery.Message != nil {
		b.send(tgbotapi.NewMessage(callbackQuery.Message.Chat.ID, verdict))
	}
}
