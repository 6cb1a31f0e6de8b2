package bot

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mileshkin/companion-bot/internal/assistant"
	"github.com/mileshkin/companion-bot/internal/models"
	"github.com/mileshkin/companion-bot/internal/quiz"
	"github.com/mileshkin/companion-bot/internal/session"
	"github.com/mileshkin/companion-bot/internal/speech"
	"github.com/mileshkin/companion-bot/internal/storage"
	"github.com/mileshkin/companion-bot/pkg/config"
	"go.uber.org/zap"
)

// Sender is the slice of the Telegram API the handlers use. *tgbotapi.BotAPI
// satisfies it; tests substitute a recorder.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Options carries the collaborators a Bot is wired with. STT, TTS and
// Converter may be nil; voice chat then degrades to an unavailability reply.
type Options struct {
	Storage    storage.Storage
	Assistant  assistant.Client
	Assistants config.AssistantsConfig
	STT        speech.Transcriber
	TTS        speech.Synthesizer
	Converter  *speech.Converter
	AudioDir   string
	Logger     *zap.Logger
}

type Bot struct {
	botAPI     *tgbotapi.BotAPI
	api        Sender
	storage    storage.Storage
	assistant  assistant.Client
	assistants config.AssistantsConfig
	sessions   *session.Store
	scores     *quiz.Scoreboard
	stt        speech.Transcriber
	tts        speech.Synthesizer
	converter  *speech.Converter
	audioDir   string
	router     *router
	httpClient *http.Client
	logger     *zap.Logger

	lockMu sync.Mutex
	locks  map[int64]*sync.Mutex
}

func New(token string, opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := newBot(api, opts)
	b.botAPI = api
	return b, nil
}

func newBot(api Sender, opts Options) *Bot {
	b := &Bot{
		api:        api,
		storage:    opts.Storage,
		assistant:  opts.Assistant,
		assistants: opts.Assistants,
		sessions:   session.NewStore(),
		scores:     quiz.NewScoreboard(),
		stt:        opts.STT,
		tts:        opts.TTS,
		converter:  opts.Converter,
		audioDir:   opts.AudioDir,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     opts.Logger,
		locks:      make(map[int64]*sync.Mutex),
	}
	b.router = newRouter(b)
	return b
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.botAPI.GetUpdatesChan(u)

	for update := range updates {
		go b.handleUpdate(update)
	}

	return nil
}

// handleUpdate serializes updates per user: one update is fully handled,
// external calls included, before the next update from the same user runs.
// Updates from different users interleave freely.
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	ev, ok := normalize(update)
	if !ok {
		return
	}

	lock := b.userLock(ev.UserID)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	if ev.CallbackID != "" {
		if _, err := b.api.Request(tgbotapi.NewCallback(ev.CallbackID, "")); err != nil {
			b.logger.Warn("Failed to answer callback query", zap.Error(err))
		}
	}

	b.dispatch(ctx, ev)
}

// dispatch routes one normalized event through the transition table and
// records the resulting state. Every path yields a defined next state.
func (b *Bot) dispatch(ctx context.Context, ev Event) {
	sess := b.sessions.Get(ev.UserID)
	sess.State = b.router.dispatch(ctx, ev, sess)
}

func (b *Bot) userLock(userID int64) *sync.Mutex {
	b.lockMu.Lock()
	defer b.lockMu.Unlock()

	lock, ok := b.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		b.locks[userID] = lock
	}
	return lock
}

func normalize(update tgbotapi.Update) (Event, bool) {
	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.Message == nil {
			return Event{}, false
		}
		return Event{
			Kind:       KindButton,
			UserID:     q.From.ID,
			ChatID:     q.Message.Chat.ID,
			Button:     q.Data,
			CallbackID: q.ID,
		}, true

	case update.Message != nil:
		msg := update.Message
		ev := Event{
			UserID:    msg.From.ID,
			ChatID:    msg.Chat.ID,
			MessageID: msg.MessageID,
		}
		switch {
		case msg.IsCommand():
			ev.Kind = KindCommand
			ev.Command = msg.Command()
		case msg.Voice != nil:
			ev.Kind = KindVoice
			ev.Voice = msg.Voice
		case msg.Text != "":
			ev.Kind = KindText
			ev.Text = msg.Text
		default:
			return Event{}, false
		}
		return ev, true
	}

	return Event{}, false
}

// ensureThread returns the durable thread id for the pair, creating a
// provider thread on first contact. Creation is an atomic get-or-create so a
// second racing call for the same pair converges on the stored id.
func (b *Bot) ensureThread(ctx context.Context, userID int64, mode models.Mode) (string, error) {
	threadID, err := b.storage.GetThreadID(ctx, userID, mode)
	if err != nil {
		return "", err
	}
	if threadID != "" {
		if err := b.storage.TouchThread(ctx, userID, mode); err != nil {
			b.logger.Warn("Failed to touch thread",
				zap.Error(err),
				zap.Int64("user_id", userID),
				zap.String("mode", string(mode)))
		}
		return threadID, nil
	}

	created, err := b.assistant.CreateThread(ctx)
	if err != nil {
		return "", err
	}

	return b.storage.GetOrCreateThread(ctx, userID, mode, created)
}

// exchange runs one thread-backed assistant round trip: the user message is
// appended to the transcript before the call, the reply after it. A failed
// call leaves no assistant entry behind.
func (b *Bot) exchange(ctx context.Context, userID int64, mode models.Mode, assistantID, userMessage string) (string, error) {
	threadID, err := b.ensureThread(ctx, userID, mode)
	if err != nil {
		return "", err
	}

	if err := b.storage.AddMessage(ctx, threadID, models.RoleUser, userMessage); err != nil {
		return "", err
	}

	reply, err := b.assistant.Ask(ctx, assistantID, threadID, userMessage)
	if err != nil {
		return "", err
	}

	if err := b.storage.AddMessage(ctx, threadID, models.RoleAssistant, reply); err != nil {
		b.logger.Error("Failed to save assistant message",
			zap.Error(err),
			zap.String("thread_id", threadID))
	}

	return reply, nil
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send html message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
		// Formatting problems should not swallow the reply.
		b.sendMessage(chatID, text)
	}
}

func (b *Bot) sendKeyboard(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send keyboard message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	b.sendMessage(chatID, "⚠️ "+text)
}

func (b *Bot) sendDocument(chatID int64, name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	if _, err := b.api.Send(doc); err != nil {
		return err
	}
	return nil
}

func (b *Bot) sendVoice(chatID int64, data []byte) error {
	voice := tgbotapi.NewVoice(chatID, tgbotapi.FileBytes{Name: "reply.ogg", Bytes: data})
	if _, err := b.api.Send(voice); err != nil {
		return err
	}
	return nil
}
