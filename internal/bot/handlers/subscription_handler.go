package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewSubscriptionCheckHandler returns a handler for the re-check button on
// the subscription prompt.
func NewSubscriptionCheckHandler(deps HandlerDeps) bot.HandlerFunc {
	return subscriptionCheckHandler{deps}.Handle
}

type subscriptionCheckHandler struct {
	deps HandlerDeps
}

func (h subscriptionCheckHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "subscription_check")

	cq := update.CallbackQuery
	if cq == nil {
		return
	}

	log.InfoContext(ctx, "Re-checking channel subscription", "user_id", cq.From.ID)

	if !h.deps.Gate.Allow(ctx, b, cq.From.ID) {
		if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: cq.ID,
			Text:            h.deps.Config.Messages.SubscribeMissing,
			ShowAlert:       true,
		}); err != nil {
			log.ErrorContext(ctx, "Failed to answer callback query", "error", err, "user_id", cq.From.ID)
		}
		return
	}

	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: cq.ID,
		Text:            h.deps.Config.Messages.SubscribeConfirmed,
	}); err != nil {
		log.ErrorContext(ctx, "Failed to answer callback query", "error", err, "user_id", cq.From.ID)
	}

	// Replace the prompt so the stale keyboard disappears.
	if cq.Message.Message != nil {
		_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    cq.Message.Message.Chat.ID,
			MessageID: cq.Message.Message.ID,
			Text:      h.deps.Config.Messages.SubscribeConfirmed,
		})
		if err != nil {
			log.WarnContext(ctx, "Failed to edit subscription prompt", "error", err, "user_id", cq.From.ID)
		}
	}
}
