package bot

import (
	"context"

	"github.com/mileshkin/companion-bot/internal/models"
	"github.com/mileshkin/companion-bot/internal/session"
	"go.uber.org/zap"
)

// randomFact is a one-shot mode: it answers on the user's random-fact thread
// and leaves the session at the main menu.
func (b *Bot) randomFact(ctx context.Context, ev Event, sess *session.Session) session.State {
	sess.Reset()

	reply, err := b.exchange(ctx, ev.UserID, models.ModeRandom, b.assistants.Random, "Give me a random interesting technical fact.")
	if err != nil {
		b.logger.Warn("Assistant failed in /random",
			zap.Error(err),
			zap.Int64("user_id", ev.UserID))
		b.sendMessage(ev.ChatID, assistantFailedText)
		return session.StateIdle
	}

	b.sendHTML(ev.ChatID, sanitizeHTML(reply))
	b.sendKeyboard(ev.ChatID, "Choose your next step:", randomMenuKeyboard())
	return session.StateIdle
}
