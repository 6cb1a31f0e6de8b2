package bot

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/mileshkin/companion-bot/internal/models"
	"github.com/mileshkin/companion-bot/internal/session"
	"go.uber.org/zap"
)

const assistantFailedText = "Assistant failed to respond. Please try again later."

const mainMenuText = `I am your AI companion. Here is what I can do:

/gpt - chat with an AI assistant
/talk - talk to a famous personality
/quiz - test your knowledge
/translate - translate your messages
/resume - build a résumé and download it
/voice_chat - talk to me with voice messages
/random - get a random technical fact
/history - show the recent conversation in the current mode
/stop - end the current conversation`

func (b *Bot) cmdStart(ctx context.Context, ev Event, sess *session.Session) session.State {
	sess.Reset()
	b.sendMessage(ev.ChatID, mainMenuText)
	return session.StateIdle
}

func (b *Bot) cmdStop(ctx context.Context, ev Event, sess *session.Session) session.State {
	sess.Reset()
	b.sendKeyboard(ev.ChatID, "Chat ended. Use /start to see the menu.", mainMenuButton())
	return session.StateIdle
}

func (b *Bot) unknownCommand(ctx context.Context, ev Event, sess *session.Session) session.State {
	b.sendMessage(ev.ChatID, "Unknown command. Use /start to see available commands.")
	return sess.State
}

func (b *Bot) promptIdle(ctx context.Context, ev Event, sess *session.Session) session.State {
	b.sendMessage(ev.ChatID, "Pick a mode first. Use /start to see the menu.")
	return session.StateIdle
}

// showHistory prints the recent transcript of the current mode's thread,
// read back from durable storage.
func (b *Bot) showHistory(ctx context.Context, ev Event, sess *session.Session) session.State {
	if sess.Mode == "" {
		b.sendMessage(ev.ChatID, "No active mode. Start one (for example /gpt) to build up a history.")
		return sess.State
	}

	threadID, err := b.storage.GetThreadID(ctx, ev.UserID, sess.Mode)
	if err != nil {
		b.logger.Error("Failed to get thread for history",
			zap.Error(err),
			zap.Int64("user_id", ev.UserID),
			zap.String("mode", string(sess.Mode)))
		b.sendErrorMessage(ev.ChatID, "Sorry, I couldn't retrieve your history.")
		return sess.State
	}
	if threadID == "" {
		b.sendMessage(ev.ChatID, "You don't have any messages in this mode yet.")
		return sess.State
	}

	messages, err := b.storage.RecentMessages(ctx, threadID, 10)
	if err != nil {
		b.logger.Error("Failed to get recent messages",
			zap.Error(err),
			zap.String("thread_id", threadID))
		b.sendErrorMessage(ev.ChatID, "Sorry, I couldn't retrieve your history.")
		return sess.State
	}
	if len(messages) == 0 {
		b.sendMessage(ev.ChatID, "You don't have any messages in this mode yet.")
		return sess.State
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Recent messages in %s mode:\n\n", sess.Mode))
	for _, msg := range messages {
		who := "You"
		if msg.Role == models.RoleAssistant {
			who = "Assistant"
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n\n", who, msg.Content))
	}

	b.sendMessage(ev.ChatID, strings.TrimSpace(sb.String()))
	return sess.State
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
