package bot

import (
	"context"

	"github.com/mileshkin/companion-bot/internal/models"
	"github.com/mileshkin/companion-bot/internal/session"
	"go.uber.org/zap"
)

func (b *Bot) talkIntro(ctx context.Context, ev Event, sess *session.Session) session.State {
	sess.EnterMode(models.ModeTalk, session.StateTalkPersonality)
	b.sendKeyboard(ev.ChatID, "Who would you like to ask a question?", talkKeyboard())
	return session.StateTalkPersonality
}

func (b *Bot) promptTalkPersonality(ctx context.Context, ev Event, sess *session.Session) session.State {
	b.sendKeyboard(ev.ChatID, "Please choose a personality from the buttons before starting the conversation.", talkKeyboard())
	return session.StateTalkPersonality
}

func (b *Bot) talkSelect(ctx context.Context, ev Event, sess *session.Session) session.State {
	personality, ok := models.ParsePersonality(ev.Button)
	if !ok {
		// Unknown tokens never reach here through the table; keep the guard anyway.
		return b.promptTalkPersonality(ctx, ev, sess)
	}

	sess.Personality = personality
	b.sendMessage(ev.ChatID, "You chose "+capitalize(string(personality))+". Start a conversation!")
	return session.StateTalkChat
}

func (b *Bot) talkChat(ctx context.Context, ev Event, sess *session.Session) session.State {
	if sess.Personality == "" {
		return b.promptTalkPersonality(ctx, ev, sess)
	}

	assistantID, ok := b.assistants.ForPersonality(sess.Personality)
	if !ok {
		b.logger.Error("No assistant configured for personality",
			zap.String("personality", string(sess.Personality)))
		b.sendMessage(ev.ChatID, assistantFailedText)
		return session.StateTalkChat
	}

	reply, err := b.exchange(ctx, ev.UserID, models.ModeTalk, assistantID, ev.Text)
	if err != nil {
		b.logger.Warn("Assistant failed in /talk",
			zap.Error(err),
			zap.Int64("user_id", ev.UserID))
		b.sendMessage(ev.ChatID, assistantFailedText)
		return session.StateTalkChat
	}

	b.sendHTML(ev.ChatID, sanitizeHTML(reply))
	b.sendKeyboard(ev.ChatID, "You can end the chat or ask the next question.", endChatKeyboard())
	return session.StateTalkChat
}
