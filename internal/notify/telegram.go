// Package notify pushes Big Steal and Big Overpay picks to a Telegram chat.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Billy-Davies-2/auction-draft/internal/logger"
	"github.com/Billy-Davies-2/auction-draft/internal/models"
	"github.com/Billy-Davies-2/auction-draft/internal/pubsub"
)

// Telegram allows about 30 messages a minute per chat.
const sendInterval = 2 * time.Second

// Sender is satisfied by *tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Broker is the subscription side of the event hub.
type Broker interface {
	Subscribe() chan pubsub.Event
	Unsubscribe(chan pubsub.Event)
}

type Notifier struct {
	sender   Sender
	chatID   int64
	interval time.Duration

	mu       sync.Mutex
	lastSend time.Time
}

// NewTelegram logs in with the bot token and checks it with getMe.
func NewTelegram(token string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	logger.Info("Telegram notifier initialized", "bot", bot.Self.UserName, "chat_id", chatID)
	return New(bot, chatID, sendInterval), nil
}

func New(sender Sender, chatID int64, interval time.Duration) *Notifier {
	return &Notifier{sender: sender, chatID: chatID, interval: interval}
}

// Run forwards alerts until ctx is done.
func (n *Notifier) Run(ctx context.Context, broker Broker) {
	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			n.Handle(ctx, ev)
		}
	}
}

// Handle sends a message when ev is a pick at either extreme. It reports
// whether a message was sent. Failures are logged and not retried.
func (n *Notifier) Handle(ctx context.Context, ev pubsub.Event) bool {
	text, ok := FormatAlert(ev)
	if !ok {
		return false
	}
	if !n.wait(ctx) {
		return false
	}
	if _, err := n.sender.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		logger.Error("Failed to send Telegram alert", "error", err, "chat_id", n.chatID)
		return false
	}
	return true
}

func (n *Notifier) wait(ctx context.Context) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if d := n.interval - time.Since(n.lastSend); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-t.C:
		}
	}
	n.lastSend = time.Now()
	return true
}

// FormatAlert renders a draft:pick event classified Big Steal or Big
// Overpay. Other events yield false.
func FormatAlert(ev pubsub.Event) (string, bool) {
	if ev.Type != pubsub.EventDraftPick {
		return "", false
	}
	class, _ := ev.Payload["classification"].(string)
	var headline string
	switch models.Classification(class) {
	case models.BigSteal:
		headline = "BIG STEAL"
	case models.BigOverpay:
		headline = "BIG OVERPAY"
	default:
		return "", false
	}
	name, _ := ev.Payload["player_name"].(string)
	team, _ := ev.Payload["team_id"].(string)
	price := number(ev.Payload["price"])
	value := number(ev.Payload["inflated_value"])
	diff := number(ev.Payload["value_diff"])
	return fmt.Sprintf("%s: %s to %s for $%.0f (value $%.1f, %+.1f)", headline, name, team, price, value, diff), true
}

// number accepts the int payloads of local events and the float64 ones
// that arrive through JSON.
func number(v interface{}) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case float64:
		return x
	default:
		return 0
	}
}
