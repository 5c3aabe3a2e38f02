package bot

import (
	"context"
	"fmt"

	"gopkg.in/telebot.v4"
)

// startHandler process command /start.
func (b *Bot) startHandler(ctx telebot.Context) error {
	b.log.Info("User started the bot", "username", ctx.Sender().Username)

	msg := "Hello! Use /subscribe to get notified when a product sale is toggled, /unsubscribe to stop."
	if err := ctx.Send(msg); err != nil {
		return fmt.Errorf("failed to send greeting message: %w", err)
	}

	return nil
}

// subscribeHandler adds the chat to sale-change notifications.
func (b *Bot) subscribeHandler(ctx telebot.Context) error {
	chatID := ctx.Chat().ID

	if err := b.repo.SubscribeChat(context.Background(), chatID); err != nil {
		b.log.Error("failed to subscribe chat", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to subscribe chat: %w", err)
	}
	b.log.Info("Chat subscribed", "chat_id", chatID)

	if err := ctx.Send("Subscribed. You will be notified about sale changes."); err != nil {
		return fmt.Errorf("failed to send confirmation message: %w", err)
	}

	return nil
}

// unsubscribeHandler removes the chat from sale-change notifications.
func (b *Bot) unsubscribeHandler(ctx telebot.Context) error {
	chatID := ctx.Chat().ID

	if err := b.repo.UnsubscribeChat(context.Background(), chatID); err != nil {
		b.log.Error("failed to unsubscribe chat", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to unsubscribe chat: %w", err)
	}
	b.log.Info("Chat unsubscribed", "chat_id", chatID)

	if err := ctx.Send("Unsubscribed."); err != nil {
		return fmt.Errorf("failed to send confirmation message: %w", err)
	}

	return nil
}
