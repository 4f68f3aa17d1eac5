// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/atheraber/saverbot/internal/database"
)

// TrackUser creates a middleware that upserts the sender into the users table
// on every update, keeping last_active fresh. Failures are logged and never
// block the handler chain.
func TrackUser(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			from := senderOf(update)
			if from == nil {
				next(ctx, bot, update)
				return
			}

			user := &database.User{
				ID:           from.ID,
				Username:     from.Username,
				FirstName:    from.FirstName,
				LastName:     from.LastName,
				LanguageCode: from.LanguageCode,
				LastActive:   time.Now().UTC(),
			}
			if err := deps.Store.UpsertUser(ctx, user); err != nil {
				deps.Logger.ErrorContext(ctx, "Failed to upsert user", "user_id", from.ID, "error", err)
			}

			next(ctx, bot, update)
		}
	}
}

// RequireSubscription creates a middleware that blocks message handling for
// users who are not members of the configured channel. Blocked users get a
// prompt with a join link and a re-check button. Membership lookups that fail
// are treated as not subscribed.
func RequireSubscription(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				next(ctx, bot, update)
				return
			}

			if deps.Gate.Allow(ctx, bot, update.Message.From.ID) {
				next(ctx, bot, update)
				return
			}

			chatID := update.Message.Chat.ID
			log := deps.Logger.With("middleware", "RequireSubscription")
			log.InfoContext(ctx, "Blocking unsubscribed user", "user_id", update.Message.From.ID, "chat_id", chatID)

			_, err := bot.SendMessage(ctx, &tgbot.SendMessageParams{
				ChatID:      chatID,
				Text:        deps.Config.Messages.SubscribePrompt,
				ReplyMarkup: subscribeKeyboard(deps),
			})
			if err != nil {
				log.ErrorContext(ctx, "Failed to send subscription prompt", "error", err, "chat_id", chatID)
			}
		}
	}
}

// subscribeKeyboard builds the join-link plus re-check button markup.
func subscribeKeyboard(deps HandlerDeps) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "Join " + deps.Gate.Channel(), URL: deps.Gate.ChannelURL()},
			},
			{
				{Text: "✅ I joined, check again", CallbackData: subscriptionCheckCallback},
			},
		},
	}
}

func senderOf(update *models.Update) *models.User {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From
	case update.CallbackQuery != nil:
		return &update.CallbackQuery.From
	default:
		return nil
	}
}
