package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/atheraber/saverbot/internal/analyzer"
	"github.com/atheraber/saverbot/internal/parser"
)

// NewAnalyzeHandler returns a handler for the /analyze command.
func NewAnalyzeHandler(deps HandlerDeps) bot.HandlerFunc {
	return analyzeHandler{deps}.Handle
}

type analyzeHandler struct {
	deps HandlerDeps
}

func (h analyzeHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "analyze")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Analyze handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	res := parser.Classify(update.Message.Text)
	if res.Owner == "" || res.Repo == "" {
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   h.deps.Config.Messages.AnalyzeUsage,
		})
		if err != nil {
			log.ErrorContext(ctx, "Failed to send analyze usage message", "error", err, "chat_id", chatID)
		}
		return
	}

	runAnalyze(ctx, b, h.deps, chatID, res.Owner, res.Repo)
}

// runAnalyze drives the analysis flow shared by the /analyze command and bare
// GitHub links: placeholder, one analyzer call, then edit the placeholder with
// the report or a failure message.
func runAnalyze(ctx context.Context, b *bot.Bot, deps HandlerDeps, chatID int64, owner, repo string) {
	log := deps.Logger.With("handler", "analyze")
	log.InfoContext(ctx, "Analyzing repository for chat", "chat_id", chatID, "owner", owner, "repo", repo)

	placeholder, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   deps.Config.Messages.Analyzing,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send analysis placeholder", "error", err, "chat_id", chatID)
		return
	}

	if _, err := b.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	}); err != nil {
		log.DebugContext(ctx, "Failed to send chat action", "error", err, "chat_id", chatID)
	}

	report, err := deps.Analyzer.Analyze(ctx, owner, repo)
	if err != nil {
		text := fmt.Sprintf(deps.Config.Messages.AnalysisFailedFmt, analysisReason(err))
		editOrSend(ctx, b, log, chatID, placeholder.ID, text)
		return
	}

	editOrSend(ctx, b, log, chatID, placeholder.ID, report.Format())
}

// analysisReason maps analyzer errors to user-facing phrases.
func analysisReason(err error) string {
	switch {
	case errors.Is(err, analyzer.ErrNotFound):
		return analyzer.ErrNotFound.Error()
	case errors.Is(err, analyzer.ErrAccessDenied):
		return analyzer.ErrAccessDenied.Error()
	default:
		return "something went wrong, please try again later"
	}
}
