// Package gate enforces the channel-subscription requirement. Users must be
// members of the configured channel before the bot serves them. When no
// channel is configured the gate is disabled and allows everyone.
package gate

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ChatMemberAPI is the subset of the Telegram client the gate needs.
// *bot.Bot satisfies it.
type ChatMemberAPI interface {
	GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error)
}

// Gate checks channel membership for incoming requests.
type Gate struct {
	channel string
	logger  *slog.Logger
}

// New creates a subscription gate for the given channel handle (e.g.
// "@mychannel"). An empty handle disables the gate.
func New(channel string, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Gate{
		channel: channel,
		logger:  logger.With("component", "gate"),
	}
}

// Enabled reports whether a channel requirement is configured.
func (g *Gate) Enabled() bool {
	return g.channel != ""
}

// Channel returns the configured channel handle.
func (g *Gate) Channel() string {
	return g.channel
}

// ChannelURL returns the t.me link for the configured channel.
func (g *Gate) ChannelURL() string {
	return "https://t.me/" + strings.TrimPrefix(g.channel, "@")
}

// Allow reports whether the user may use the bot. Membership lookup errors
// deny access: when the check cannot be performed, the gate fails closed.
func (g *Gate) Allow(ctx context.Context, api ChatMemberAPI, userID int64) bool {
	if !g.Enabled() {
		return true
	}

	member, err := api.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: g.channel,
		UserID: userID,
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "Membership check failed, denying access",
			"channel", g.channel, "user_id", userID, "error", err)
		return false
	}

	allowed := isMember(member)
	if !allowed {
		g.logger.InfoContext(ctx, "User is not subscribed to the channel",
			"channel", g.channel, "user_id", userID, "status", member.Type)
	}
	return allowed
}

func isMember(member *models.ChatMember) bool {
	if member == nil {
		return false
	}
	switch member.Type {
	case models.ChatMemberTypeOwner, models.ChatMemberTypeAdministrator, models.ChatMemberTypeMember:
		return true
	case models.ChatMemberTypeRestricted:
		return member.Restricted != nil && member.Restricted.IsMember
	default:
		return false
	}
}
