// Package telegram is the chat-bot transport: long polling for cmd/bot and a
// webhook handler for cmd/api.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bestcard/internal/domain"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sethvargo/go-retry"
)

const (
	HelpText = "Send your spend scenario, e.g. '今晚超市买200刀，哪张卡最好？' or 'I will pay 450 EUR for an overseas hotel'"

	sendRetries = 3
	pollTimeout = 60
)

type Recommender interface {
	Recommend(ctx context.Context, req domain.RecommendRequest) (*domain.RecommendResponse, error)
}

// Sender is the part of *tgbotapi.BotAPI the bot needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api       Sender
	service   Recommender
	logger    *slog.Logger
	retryBase time.Duration
}

func NewBot(api Sender, service Recommender, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{api: api, service: service, logger: logger, retryBase: 300 * time.Millisecond}
}

// FormatReply renders a recommendation as plain chat text.
func FormatReply(resp *domain.RecommendResponse) string {
	best := resp.BestCard
	lines := []string{
		"Best card: " + best.CardName,
		fmt.Sprintf("Net reward: $%s (cashback $%s, fee $%s)",
			best.NetReward.StringFixed(2), best.Cashback.StringFixed(2), best.Fee.StringFixed(2)),
		fmt.Sprintf("Scenario: %s / %s", resp.ParsedScenario.Amount.StringFixed(2), resp.ParsedScenario.Category),
	}
	if len(resp.PolicyEvidence) > 0 {
		lines = append(lines, "Evidence:")
		for _, item := range resp.PolicyEvidence {
			lines = append(lines, "- "+item)
		}
	}
	return strings.Join(lines, "\n")
}

// Reply returns the answer for one inbound text. An empty result means the
// message is ignored (blank text or an unknown command).
func (b *Bot) Reply(ctx context.Context, raw string) string {
	text := cleanText(raw)
	switch {
	case text == "":
		return ""
	case text == "/start" || text == "/help" || strings.HasPrefix(text, "/start@") || strings.HasPrefix(text, "/help@"):
		return HelpText
	case strings.HasPrefix(text, "/"):
		return ""
	}

	resp, err := b.service.Recommend(ctx, domain.RecommendRequest{Message: &text})
	if err != nil {
		b.logger.Info("Рекомендация не получена", "error", err)
		return "Parse failed: " + err.Error()
	}
	return FormatReply(resp)
}

// HandleUpdate answers one update. Non-message updates are skipped.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	b.logger.Debug("📥 Получено сообщение", "chat_id", chatID, "text", update.Message.Text)

	reply := b.Reply(ctx, update.Message.Text)
	if reply == "" {
		return
	}
	if err := b.send(ctx, chatID, reply); err != nil {
		b.logger.Error("Не удалось отправить ответ", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	backoff := retry.WithMaxRetries(sendRetries, retry.NewExponential(b.retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Warn("Ошибка отправки, повтор", "chat_id", chatID, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

// Poll reads updates with long polling until ctx is cancelled.
func (b *Bot) Poll(ctx context.Context, api *tgbotapi.BotAPI) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := api.GetUpdatesChan(u)
	defer api.StopReceivingUpdates()

	b.logger.Info("Bot started", "username", api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// WebhookHandler serves POST /telegram.
func (b *Bot) WebhookHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var update tgbotapi.Update
		if err := c.ShouldBindJSON(&update); err != nil {
			b.logger.Error("Ошибка парсинга обновления", "error", err)
			c.Status(http.StatusBadRequest)
			return
		}
		b.HandleUpdate(c.Request.Context(), update)
		c.Status(http.StatusOK)
	}
}

// SetWebhook registers baseURL + "/telegram" with Telegram.
func SetWebhook(api *tgbotapi.BotAPI, baseURL string) (string, error) {
	webhookURL := strings.TrimRight(baseURL, "/") + "/telegram"
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return "", fmt.Errorf("build webhook: %w", err)
	}
	if _, err := api.Request(wh); err != nil {
		return "", fmt.Errorf("set webhook: %w", err)
	}
	return webhookURL, nil
}
