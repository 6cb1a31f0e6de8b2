package bot

import (
	"context"

	"github.com/mileshkin/companion-bot/internal/models"
	"github.com/mileshkin/companion-bot/internal/session"
	"go.uber.org/zap"
)

func (b *Bot) gptIntro(ctx context.Context, ev Event, sess *session.Session) session.State {
	sess.EnterMode(models.ModeGPT, session.StateGPTChat)
	b.sendMessage(ev.ChatID, "You are chatting with an assistant that keeps its answers short. Ask me anything. Use /stop to end the chat.")
	return session.StateGPTChat
}

func (b *Bot) gptChat(ctx context.Context, ev Event, sess *session.Session) session.State {
	reply, err := b.exchange(ctx, ev.UserID, models.ModeGPT, b.assistants.GPT, ev.Text)
	if err != nil {
		b.logger.Warn("Assistant failed in /gpt",
			zap.Error(err),
			zap.Int64("user_id", ev.UserID))
		b.sendMessage(ev.ChatID, assistantFailedText)
		return session.StateGPTChat
	}

	b.sendHTML(ev.ChatID, sanitizeHTML(reply))
	return session.StateGPTChat
}
