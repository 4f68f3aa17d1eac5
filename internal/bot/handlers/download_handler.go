package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/atheraber/saverbot/internal/database"
	"github.com/atheraber/saverbot/internal/downloader"
	"github.com/atheraber/saverbot/internal/logger"
	"github.com/atheraber/saverbot/internal/parser"
)

const captionMaxLen = 50

// NewDownloadHandler returns the default handler for plain messages. It
// classifies the text and routes video links to the download flow, GitHub
// links to the analysis flow, and everything else to an unsupported notice.
func NewDownloadHandler(deps HandlerDeps) bot.HandlerFunc {
	return downloadHandler{deps}.Handle
}

type downloadHandler struct {
	deps HandlerDeps
}

func (h downloadHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "download")

	if update.Message == nil || update.Message.From == nil {
		return
	}

	res := parser.Classify(update.Message.Text)
	switch res.Kind {
	case parser.KindVideoURL:
		h.handleVideo(ctx, b, update, res)
	case parser.KindRepoURL:
		runAnalyze(ctx, b, h.deps, update.Message.Chat.ID, res.Owner, res.Repo)
	case parser.KindStart, parser.KindHelp, parser.KindStats, parser.KindAnalyze:
		// Commands are matched by their registered handlers before the
		// default handler runs.
	default:
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   h.deps.Config.Messages.Unsupported,
		})
		if err != nil {
			log.ErrorContext(ctx, "Failed to send unsupported message", "error", err, "chat_id", update.Message.Chat.ID)
		}
	}
}

func (h downloadHandler) handleVideo(ctx context.Context, b *bot.Bot, update *models.Update, res parser.Result) {
	log := h.deps.Logger.With("handler", "download")
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	log.InfoContext(ctx, "Handling video download", "chat_id", chatID, "user_id", userID,
		"platform", res.Platform, "url", res.URL)

	placeholder, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   h.deps.Config.Messages.Processing,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send download placeholder", "error", err, "chat_id", chatID)
		return
	}

	if _, err := b.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionUploadVideo,
	}); err != nil {
		log.DebugContext(ctx, "Failed to send chat action", "error", err, "chat_id", chatID)
	}

	dctx, cancel := context.WithTimeout(ctx, h.deps.Config.Download.Timeout)
	defer cancel()

	dl, err := h.deps.Downloader.Download(dctx, res.URL)
	if err != nil {
		reason := downloadReason(err)
		h.recordDownload(ctx, &database.Download{
			UserID:   userID,
			URL:      res.URL,
			Platform: res.Platform,
			Status:   database.DownloadStatusFailed,
			Error:    logger.TruncateString(err.Error(), 200),
		})
		editOrSend(ctx, b, log, chatID, placeholder.ID,
			fmt.Sprintf(h.deps.Config.Messages.DownloadFailedFmt, reason))
		return
	}
	defer dl.Cleanup()

	if _, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: placeholder.ID,
		Text:      h.deps.Config.Messages.Uploading,
	}); err != nil {
		log.DebugContext(ctx, "Failed to update placeholder to uploading", "error", err, "chat_id", chatID)
	}

	if err := h.sendVideo(ctx, b, chatID, dl); err != nil {
		log.ErrorContext(ctx, "Failed to upload video to Telegram", "error", err, "chat_id", chatID)
		h.recordDownload(ctx, &database.Download{
			UserID:   userID,
			URL:      res.URL,
			Platform: res.Platform,
			Title:    dl.Title,
			Status:   database.DownloadStatusFailed,
			Error:    logger.TruncateString(err.Error(), 200),
		})
		editOrSend(ctx, b, log, chatID, placeholder.ID,
			fmt.Sprintf(h.deps.Config.Messages.DownloadFailedFmt, "upload to Telegram failed"))
		return
	}

	if _, err := b.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: placeholder.ID,
	}); err != nil {
		log.DebugContext(ctx, "Failed to delete placeholder message", "error", err, "chat_id", chatID)
	}

	h.recordDownload(ctx, &database.Download{
		UserID:   userID,
		URL:      res.URL,
		Platform: res.Platform,
		Title:    dl.Title,
		FileSize: dl.Size,
		Duration: dl.Duration,
		Status:   database.DownloadStatusCompleted,
	})

	log.InfoContext(ctx, "Video delivered", "chat_id", chatID, "user_id", userID,
		"platform", res.Platform, "size", dl.Size)
}

func (h downloadHandler) sendVideo(ctx context.Context, b *bot.Bot, chatID int64, dl *downloader.Result) error {
	f, err := os.Open(dl.Path)
	if err != nil {
		return fmt.Errorf("failed to open download artifact: %w", err)
	}
	defer f.Close()

	_, err = b.SendVideo(ctx, &bot.SendVideoParams{
		ChatID: chatID,
		Video: &models.InputFileUpload{
			Filename: filepath.Base(dl.Path),
			Data:     f,
		},
		Caption:           logger.TruncateString(dl.Title, captionMaxLen),
		SupportsStreaming: true,
	})
	return err
}

func (h downloadHandler) recordDownload(ctx context.Context, dl *database.Download) {
	if err := h.deps.Store.RecordDownload(ctx, dl); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to record download",
			"user_id", dl.UserID, "url", dl.URL, "status", dl.Status, "error", err)
	}
}

// downloadReason maps downloader errors to user-facing phrases. Sentinel
// errors already carry friendly text, everything else gets a generic one.
func downloadReason(err error) string {
	for _, known := range []error{
		downloader.ErrTooLong,
		downloader.ErrTooLarge,
		downloader.ErrPrivate,
		downloader.ErrUnavailable,
		downloader.ErrUnsupported,
		downloader.ErrTimeout,
	} {
		if errors.Is(err, known) {
			return err.Error()
		}
	}
	return "something went wrong, please try again later"
}
