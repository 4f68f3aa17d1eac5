package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStatsHandler returns a handler for the /stats command.
func NewStatsHandler(deps HandlerDeps) bot.HandlerFunc {
	return statsHandler{deps}.Handle
}

type statsHandler struct {
	deps HandlerDeps
}

func (h statsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Stats handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	log.InfoContext(ctx, "Handling /stats command", "chat_id", chatID, "user_id", userID)

	stats, err := h.deps.Store.GetUserStats(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to fetch user stats", "error", err, "user_id", userID)
		h.reply(ctx, b, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	if stats.TotalDownloads == 0 {
		h.reply(ctx, b, chatID, h.deps.Config.Messages.StatsEmpty)
		return
	}

	text := fmt.Sprintf("📈 Your downloads\n\nTotal: %d\nCompleted: %d\nFailed: %d",
		stats.TotalDownloads, stats.Completed, stats.Failed)
	h.reply(ctx, b, chatID, text)
}

func (h statsHandler) reply(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send stats message", "error", err, "chat_id", chatID)
	}
}
