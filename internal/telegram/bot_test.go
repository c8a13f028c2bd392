package telegram

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bestcard/internal/domain"
	"bestcard/internal/parser"
	"bestcard/internal/recommend"
	"bestcard/internal/storage/file"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const sampleCards = "../../data/cards/sample_cards.json"

type fakeSender struct {
	fails int
	sent  []tgbotapi.MessageConfig
	calls int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.calls++
	if f.calls <= f.fails {
		return tgbotapi.Message{}, errors.New("telegram: too many requests")
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func newBot(sender Sender) *Bot {
	svc := recommend.NewService(parser.New(parser.NewKeywordExtractor(), nil), file.NewStore(sampleCards, nil), nil)
	b := NewBot(sender, svc, nil)
	b.retryBase = time.Millisecond
	return b
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: text}}
}

func TestFormatReply(t *testing.T) {
	resp := &domain.RecommendResponse{
		BestCard: domain.CardEvaluation{
			CardName:  "Grocer Plus",
			Cashback:  decimal.NewFromInt(10),
			Fee:       decimal.Zero,
			NetReward: decimal.NewFromInt(10),
		},
		ParsedScenario: domain.SpendScenario{Amount: decimal.NewFromInt(200), Category: "grocery"},
		PolicyEvidence: []string{"Grocer Plus: grocery cashback 5% (cap 1500/quarter)"},
	}
	want := "Best card: Grocer Plus\n" +
		"Net reward: $10.00 (cashback $10.00, fee $0.00)\n" +
		"Scenario: 200.00 / grocery\n" +
		"Evidence:\n" +
		"- Grocer Plus: grocery cashback 5% (cap 1500/quarter)"
	assert.Equal(t, want, FormatReply(resp))

	resp.PolicyEvidence = nil
	assert.NotContains(t, FormatReply(resp), "Evidence")
}

func TestReply(t *testing.T) {
	b := newBot(&fakeSender{})
	ctx := context.Background()

	assert.Equal(t, HelpText, b.Reply(ctx, "/start"))
	assert.Equal(t, HelpText, b.Reply(ctx, "/help@bestcard_bot"))
	assert.Empty(t, b.Reply(ctx, "/unknown"))
	assert.Empty(t, b.Reply(ctx, "   "))

	reply := b.Reply(ctx, "今晚去超市买菜花了200元")
	assert.Contains(t, reply, "Best card: Grocer Plus")
	assert.Contains(t, reply, "Scenario: 200.00 / grocery")

	assert.Equal(t, "Parse failed: could not parse a positive amount from message", b.Reply(ctx, "lunch with the team"))
}

func TestHandleUpdate_RetriesSend(t *testing.T) {
	sender := &fakeSender{fails: 2}
	newBot(sender).HandleUpdate(context.Background(), textUpdate(42, "/start"))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, 3, sender.calls)
	assert.Equal(t, int64(42), sender.sent[0].ChatID)
	assert.Equal(t, HelpText, sender.sent[0].Text)
}

func TestHandleUpdate_GivesUp(t *testing.T) {
	sender := &fakeSender{fails: 100}
	newBot(sender).HandleUpdate(context.Background(), textUpdate(1, "/help"))
	assert.Empty(t, sender.sent)
	assert.Equal(t, sendRetries+1, sender.calls)
}

func TestHandleUpdate_SkipsNonMessages(t *testing.T) {
	sender := &fakeSender{}
	newBot(sender).HandleUpdate(context.Background(), tgbotapi.Update{UpdateID: 7})
	assert.Zero(t, sender.calls)
}

func TestWebhookHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sender := &fakeSender{}
	r := gin.New()
	r.POST("/telegram", newBot(sender).WebhookHandler())

	body := `{"update_id": 1, "message": {"message_id": 5, "chat": {"id": 99, "type": "private"},
		"text": "dinner at a restaurant 80 usd"}}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/telegram", bytes.NewBufferString(body)))
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Text, "Best card: Dining Max")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/telegram", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCleanText(t *testing.T) {
	cp1251, err := charmap.Windows1251.NewEncoder().String("Такси 500")
	require.NoError(t, err)

	tests := []struct {
		name, in, want string
	}{
		{"utf8 untouched", "超市 200", "超市 200"},
		{"nbsp and newlines", "dinner  80\n\tusd", "dinner 80 usd"},
		{"windows-1251", cp1251, "Такси 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanText(tt.in))
		})
	}
}
