package bot

import (
	"context"
	"fmt"

	"github.com/mileshkin/companion-bot/internal/models"
	"github.com/mileshkin/companion-bot/internal/session"
	"go.uber.org/zap"
)

func (b *Bot) translateIntro(ctx context.Context, ev Event, sess *session.Session) session.State {
	sess.EnterMode(models.ModeTranslate, session.StateTranslateLanguage)
	b.sendKeyboard(ev.ChatID, "What language do you want to translate into?", languageKeyboard())
	return session.StateTranslateLanguage
}

func (b *Bot) promptTranslateLanguage(ctx context.Context, ev Event, sess *session.Session) session.State {
	b.sendKeyboard(ev.ChatID, "Please choose a language from the buttons.", languageKeyboard())
	return session.StateTranslateLanguage
}

func (b *Bot) translateSelect(ctx context.Context, ev Event, sess *session.Session) session.State {
	language, ok := models.ParseLanguage(ev.Button)
	if !ok {
		return b.promptTranslateLanguage(ctx, ev, sess)
	}

	sess.Language = language
	b.sendMessage(ev.ChatID, fmt.Sprintf("Ok. You have selected %s. Now enter a message to translate.", capitalize(string(language))))
	return session.StateTranslateChat
}

func (b *Bot) translateChangeLanguage(ctx context.Context, ev Event, sess *session.Session) session.State {
	b.sendKeyboard(ev.ChatID, "What language do you want to translate into?", languageKeyboard())
	return session.StateTranslateLanguage
}

func (b *Bot) translateText(ctx context.Context, ev Event, sess *session.Session) session.State {
	if sess.Language == "" {
		b.sendKeyboard(ev.ChatID, "⚠️ You have not selected a language yet. Please choose a language first.", languageKeyboard())
		return session.StateTranslateLanguage
	}

	request := fmt.Sprintf("Translate the text after 3 line breaks into %s\n\n\n%s", sess.Language, ev.Text)

	reply, err := b.exchange(ctx, ev.UserID, models.ModeTranslate, b.assistants.Translate, request)
	if err != nil {
		b.logger.Warn("Assistant failed in /translate",
			zap.Error(err),
			zap.Int64("user_id", ev.UserID))
		b.sendMessage(ev.ChatID, assistantFailedText)
		return session.StateTranslateChat
	}

	b.sendHTML(ev.ChatID, sanitizeHTML(reply))
	b.sendKeyboard(ev.ChatID, "Send the following text for translation or:", translateMenuKeyboard())
	return session.StateTranslateChat
}
