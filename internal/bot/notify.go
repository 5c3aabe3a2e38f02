package bot

import (
	"context"
	"fmt"

	"gopkg.in/telebot.v4"

	"github.com/Houeta/page-press/internal/models"
	"github.com/Houeta/page-press/internal/pricing"
)

// NotifySaleChange broadcasts a sale toggle to every subscribed chat. A send
// failure for one chat is logged and does not stop the broadcast.
func (b *Bot) NotifySaleChange(ctx context.Context, product *models.Product, quote pricing.Quote) error {
	const opn = "bot.NotifySaleChange"

	chats, err := b.repo.GetSubscribedChats(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	msg := saleMessage(product, quote)
	for _, chatID := range chats {
		if _, err = b.bot.Send(telebot.ChatID(chatID), msg); err != nil {
			b.log.Error("failed to notify chat", "op", opn, "chat_id", chatID, "error", err)
		}
	}

	return nil
}

func saleMessage(product *models.Product, quote pricing.Quote) string {
	if !quote.Discounted {
		return fmt.Sprintf("%s: sale ended, price is back to %s.",
			product.Title, pricing.USD(quote.UnitPrice))
	}

	if quote.HasPercent {
		return fmt.Sprintf("%s: now %s (was %s, -%d%%).",
			product.Title, pricing.USD(quote.UnitPrice), pricing.USD(quote.OriginalPrice), quote.PercentOff)
	}
	return fmt.Sprintf("%s: now on sale for %s.", product.Title, pricing.USD(quote.UnitPrice))
}
