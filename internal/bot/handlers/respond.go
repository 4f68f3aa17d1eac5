package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
)

// editOrSend replaces the placeholder message text, falling back to a single
// fresh message when the edit fails. Users always get a final status either way.
func editOrSend(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, messageID int, text string) {
	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	})
	if err == nil {
		return
	}
	log.WarnContext(ctx, "Failed to edit placeholder message, sending fresh message",
		"chat_id", chatID, "message_id", messageID, "error", err)

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send fallback message", "chat_id", chatID, "error", err)
	}
}
