package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mileshkin/companion-bot/internal/models"
	"github.com/mileshkin/companion-bot/internal/session"
	"go.uber.org/zap"
)

func (b *Bot) voiceIntro(ctx context.Context, ev Event, sess *session.Session) session.State {
	sess.EnterMode(models.ModeVoiceChat, session.StateVoiceChat)
	b.sendMessage(ev.ChatID, "Send me a voice message and I will answer with text and voice. Use /stop to end the chat.")
	return session.StateVoiceChat
}

// voiceMessage runs the full voice round trip: download, re-encode,
// transcribe, ask the assistant, reply with text and synthesized voice.
// Temporary audio files are removed after processing.
func (b *Bot) voiceMessage(ctx context.Context, ev Event, sess *session.Session) session.State {
	if b.stt == nil || b.tts == nil || b.converter == nil {
		b.sendMessage(ev.ChatID, "Voice chat is not available right now.")
		return session.StateVoiceChat
	}

	inputPath, err := b.downloadVoice(ctx, ev.Voice.FileID)
	if err != nil {
		b.logger.Error("Failed to download voice message",
			zap.Error(err),
			zap.Int64("user_id", ev.UserID))
		b.sendErrorMessage(ev.ChatID, "Sorry, I couldn't download your voice message. Please try again.")
		return session.StateVoiceChat
	}
	defer b.removeFile(inputPath)

	convertedPath, err := b.converter.ToOggOpus(ctx, inputPath)
	if err != nil {
		b.logger.Error("Failed to convert voice message",
			zap.Error(err),
			zap.Int64("user_id", ev.UserID))
		b.sendErrorMessage(ev.ChatID, "Sorry, I couldn't process your voice message. Please try again.")
		return session.StateVoiceChat
	}
	defer b.removeFile(convertedPath)

	text, err := b.stt.Transcribe(ctx, convertedPath)
	if err != nil {
		b.logger.Error("Failed to transcribe voice message",
			zap.Error(err),
			zap.Int64("user_id", ev.UserID))
		b.sendErrorMessage(ev.ChatID, "Sorry, I couldn't process your voice message. Please try again.")
		return session.StateVoiceChat
	}
	if text == "" {
		b.sendErrorMessage(ev.ChatID, "Sorry, I couldn't recognize any speech.")
		return session.StateVoiceChat
	}

	b.sendMessage(ev.ChatID, "🗣️ You said: "+text)

	reply, ok := b.voiceAsk(ctx, ev.UserID, text)
	if !ok {
		b.sendMessage(ev.ChatID, assistantFailedText)
		return session.StateVoiceChat
	}

	b.sendMessage(ev.ChatID, "🗣️ My answer: "+reply)

	audio, err := b.tts.Synthesize(ctx, reply)
	if err != nil || len(audio) == 0 {
		b.logger.Error("Failed to synthesize reply",
			zap.Error(err),
			zap.Int64("user_id", ev.UserID))
		b.sendErrorMessage(ev.ChatID, "Text-to-speech error.")
		return session.StateVoiceChat
	}

	if err := b.sendVoice(ev.ChatID, audio); err != nil {
		b.logger.Error("Failed to send voice reply",
			zap.Error(err),
			zap.Int64("chat_id", ev.ChatID))
	}

	return session.StateVoiceChat
}

// voiceAsk is the thread-backed exchange for voice chat. The transcript keeps
// the raw transcribed text as the user message and the raw assistant reply,
// including replies suppressed from the user by the output guard.
func (b *Bot) voiceAsk(ctx context.Context, userID int64, text string) (string, bool) {
	threadID, err := b.ensureThread(ctx, userID, models.ModeVoiceChat)
	if err != nil {
		b.logger.Warn("Failed to ensure voice thread", zap.Error(err), zap.Int64("user_id", userID))
		return "", false
	}

	if err := b.storage.AddMessage(ctx, threadID, models.RoleUser, text); err != nil {
		b.logger.Error("Failed to save user message", zap.Error(err), zap.String("thread_id", threadID))
		return "", false
	}

	question := "Answer the following question in English: " + text

	reply, err := b.assistant.Ask(ctx, b.assistants.VoiceChat, threadID, question)
	if err != nil {
		b.logger.Warn("Assistant failed in /voice_chat", zap.Error(err), zap.Int64("user_id", userID))
		return "", false
	}

	reply = sanitizeHTML(reply)

	if err := b.storage.AddMessage(ctx, threadID, models.RoleAssistant, reply); err != nil {
		b.logger.Error("Failed to save assistant message", zap.Error(err), zap.String("thread_id", threadID))
	}

	if abnormalReply(reply) {
		b.logger.Warn("Abnormal model output suppressed", zap.Int64("user_id", userID))
		return "Sorry, something went wrong. Please rephrase your question and try again.", true
	}

	return reply, true
}

// abnormalReply flags output that looks like leaked markup or runaway
// generation; such replies are recorded but not voiced back.
func abnormalReply(reply string) bool {
	if len(reply) > 1000 {
		return true
	}
	for _, marker := range []string{"<?", "</", "{%", ">>>", "==", "***", "<script", "###"} {
		if strings.Contains(reply, marker) {
			return true
		}
	}
	return false
}

func (b *Bot) downloadVoice(ctx context.Context, fileID string) (string, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download file: status %s", resp.Status)
	}

	if err := os.MkdirAll(b.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio dir: %w", err)
	}

	path := filepath.Join(b.audioDir, uuid.New().String()+".ogg")
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	return path, nil
}

func (b *Bot) removeFile(path string) {
	if err := os.Remove(path); err != nil {
		b.logger.Warn("Failed to delete temp file",
			zap.Error(err),
			zap.String("path", path))
	}
}
