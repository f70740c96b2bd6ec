package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"ronlotto/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	// ColorWinner is the embed accent color of winner announcements
	ColorWinner = 0x00ff99

	winnerContent = "@everyone 🎊"
)

// WebhookExecutor is the part of discordgo.Session used to post announcements
type WebhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts winner announcements to a Discord channel webhook
type DiscordNotifier struct {
	executor  WebhookExecutor
	webhookID string
	token     string
	clock     func() time.Time
}

// NewDiscordNotifier creates a notifier for the given webhook URL
func NewDiscordNotifier(webhookURL string) (*DiscordNotifier, error) {
	webhookID, token, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}

	// Webhook execution authenticates with the URL token, no bot token needed
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	return newDiscordNotifier(session, webhookID, token), nil
}

func newDiscordNotifier(executor WebhookExecutor, webhookID, token string) *DiscordNotifier {
	return &DiscordNotifier{
		executor:  executor,
		webhookID: webhookID,
		token:     token,
		clock:     time.Now,
	}
}

// NotifyWinner posts the announcement embed
func (n *DiscordNotifier) NotifyWinner(ctx context.Context, announcement *entities.WinnerAnnouncement) error {
	params := &discordgo.WebhookParams{
		Content: winnerContent,
		Embeds:  []*discordgo.MessageEmbed{BuildWinnerEmbed(announcement, n.clock())},
	}

	if _, err := n.executor.WebhookExecute(n.webhookID, n.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to execute Discord webhook: %w", err)
	}

	log.WithFields(log.Fields{
		"round_id":  announcement.RoundID,
		"ticket_id": announcement.TicketID,
		"tx_hash":   announcement.TxHash,
	}).Debug("Posted winner announcement")
	return nil
}

// BuildWinnerEmbed creates the winner announcement embed
func BuildWinnerEmbed(a *entities.WinnerAnnouncement, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🎉 We Have a Lotto Winner!",
		Description: fmt.Sprintf("Congratulations to **%s** for winning the draw. 🎰", a.Wallet),
		Color:       ColorWinner,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "🎟️ Ticket",
				Value:  fmt.Sprintf("#%d", a.TicketID),
				Inline: true,
			},
			{
				Name:   "👛 Wallet",
				Value:  fmt.Sprintf("`%s`", a.Wallet),
				Inline: true,
			},
			{
				Name:   "🎯 Hits",
				Value:  fmt.Sprintf("%d of 6", a.Hits),
				Inline: true,
			},
			{
				Name:   "💰 Prize",
				Value:  fmt.Sprintf("%s RON", formatAmount(a.Amount)),
				Inline: true,
			},
			{
				Name:   "🔗 Transaction",
				Value:  fmt.Sprintf("[View on explorer](%s)", a.ExplorerURL),
				Inline: false,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Round #%d", a.RoundID),
		},
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

// ParseWebhookURL extracts the webhook id and token from
// https://discord.com/api/webhooks/{id}/{token}
func ParseWebhookURL(webhookURL string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(webhookURL))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse webhook URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return "", "", fmt.Errorf("invalid webhook URL scheme %q", u.Scheme)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part != "webhooks" {
			continue
		}
		if len(parts) != i+3 || parts[i+1] == "" || parts[i+2] == "" {
			break
		}
		return parts[i+1], parts[i+2], nil
	}

	return "", "", fmt.Errorf("webhook URL %q has no id and token", u.Redacted())
}

// formatAmount trims trailing zeros, 12.50000000 becomes 12.5
func formatAmount(amount float64) string {
	s := fmt.Sprintf("%.8f", amount)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
