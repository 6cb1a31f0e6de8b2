package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mileshkin/companion-bot/internal/models"
	"github.com/mileshkin/companion-bot/internal/session"
	"github.com/mileshkin/companion-bot/internal/storage"
	"github.com/mileshkin/companion-bot/pkg/config"
	"go.uber.org/zap"
)

// fakeSender records every outbound payload instead of talking to Telegram.
type fakeSender struct {
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) GetFileDirectURL(fileID string) (string, error) {
	return "https://files.invalid/" + fileID, nil
}

func (f *fakeSender) texts() []string {
	var out []string
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, msg.Text)
		}
	}
	return out
}

func (f *fakeSender) lastText() string {
	texts := f.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

func (f *fakeSender) documents() []tgbotapi.DocumentConfig {
	var out []tgbotapi.DocumentConfig
	for _, c := range f.sent {
		if doc, ok := c.(tgbotapi.DocumentConfig); ok {
			out = append(out, doc)
		}
	}
	return out
}

type askCall struct {
	assistantID string
	threadID    string
	message     string
}

// fakeAssistant replays queued replies and records every Ask call.
type fakeAssistant struct {
	replies []string
	err     error
	threads int
	asks    []askCall
}

func (f *fakeAssistant) CreateThread(ctx context.Context) (string, error) {
	f.threads++
	return fmt.Sprintf("thread-%d", f.threads), nil
}

func (f *fakeAssistant) Ask(ctx context.Context, assistantID, threadID, userMessage string) (string, error) {
	f.asks = append(f.asks, askCall{assistantID, threadID, userMessage})
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "ok", nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

func testAssistants() config.AssistantsConfig {
	return config.AssistantsConfig{
		Random:    "a-random",
		GPT:       "a-gpt",
		Quiz:      "a-quiz",
		Translate: "a-translate",
		Resume:    "a-resume",
		VoiceChat: "a-voice",
		Talk: config.TalkAssistantsConfig{
			Einstein: "a-einstein",
			Napoleon: "a-napoleon",
			King:     "a-king",
			Mercury:  "a-mercury",
		},
	}
}

func testBot(t *testing.T) (*Bot, *fakeSender, *fakeAssistant, *storage.MemoryStorage) {
	t.Helper()
	api := &fakeSender{}
	assist := &fakeAssistant{}
	store := storage.NewMemoryStorage()
	b := newBot(api, Options{
		Storage:    store,
		Assistant:  assist,
		Assistants: testAssistants(),
		Logger:     zap.NewNop(),
	})
	return b, api, assist, store
}

func command(userID int64, name string) Event {
	return Event{Kind: KindCommand, UserID: userID, ChatID: userID, Command: name}
}

func text(userID int64, body string) Event {
	return Event{Kind: KindText, UserID: userID, ChatID: userID, Text: body}
}

func button(userID int64, data string) Event {
	return Event{Kind: KindButton, UserID: userID, ChatID: userID, Button: data}
}

const quizReply = `Question: Which planet is known as the Red Planet?

A) Venus
B) Jupiter
C) Mars
D) Mercury

Correct Answer: C`

func TestQuizFlow(t *testing.T) {
	b, api, assist, _ := testBot(t)
	ctx := context.Background()

	assist.replies = []string{quizReply}

	b.dispatch(ctx, command(1, "quiz"))
	sess := b.sessions.Get(1)
	if sess.State != session.StateQuizTopic {
		t.Fatalf("state after /quiz = %q", sess.State)
	}

	b.dispatch(ctx, button(1, "science"))
	if sess.State != session.StateQuizAnswer {
		t.Fatalf("state after topic choice = %q", sess.State)
	}
	if sess.PendingAnswer != "C" {
		t.Fatalf("PendingAnswer = %q, want C", sess.PendingAnswer)
	}
	if !strings.Contains(strings.Join(api.texts(), "\n"), "Which planet is known as the Red Planet?") {
		t.Error("question text was not sent to the user")
	}

	b.dispatch(ctx, button(1, "C"))
	if sess.State != session.StateQuizAnswer {
		t.Fatalf("state after answering = %q", sess.State)
	}
	if sess.PendingAnswer != "" {
		t.Error("PendingAnswer not cleared after grading")
	}
	if got := b.scores.Score(1); got != 1 {
		t.Errorf("score = %d, want 1", got)
	}
	if !strings.Contains(api.lastText(), "Your total correct answers: 1") {
		t.Errorf("missing score in reply: %q", api.lastText())
	}

	// The same question is graded at most once.
	b.dispatch(ctx, button(1, "C"))
	if got := b.scores.Score(1); got != 1 {
		t.Errorf("score after repeat answer = %d, want 1", got)
	}
}

func TestQuizWrongAnswer(t *testing.T) {
	b, api, assist, _ := testBot(t)
	ctx := context.Background()

	assist.replies = []string{quizReply}

	b.dispatch(ctx, command(1, "quiz"))
	b.dispatch(ctx, button(1, "art"))
	b.dispatch(ctx, button(1, "A"))

	if got := b.scores.Score(1); got != 0 {
		t.Errorf("score = %d, want 0", got)
	}
	if !strings.Contains(api.lastText(), "The correct answer was: C") {
		t.Errorf("missing correction in reply: %q", api.lastText())
	}
}

func TestQuizMalformedQuestion(t *testing.T) {
	b, _, assist, store := testBot(t)
	ctx := context.Background()

	assist.replies = []string{"Mars is a fascinating planet, let me tell you about it."}

	b.dispatch(ctx, command(1, "quiz"))
	b.dispatch(ctx, button(1, "science"))

	sess := b.sessions.Get(1)
	if sess.State != session.StateQuizTopic {
		t.Fatalf("state after malformed question = %q, want topic selection", sess.State)
	}
	if sess.PendingAnswer != "" {
		t.Error("PendingAnswer set despite parse failure")
	}

	// The raw reply still lands in the transcript.
	threadID, err := store.GetThreadID(ctx, 1, models.ModeQuiz)
	if err != nil || threadID == "" {
		t.Fatalf("GetThreadID() = %q, %v", threadID, err)
	}
	msgs, err := store.RecentMessages(ctx, threadID, 10)
	if err != nil {
		t.Fatalf("RecentMessages() error = %v", err)
	}
	if len(msgs) != 2 || msgs[1].Role != models.RoleAssistant {
		t.Fatalf("transcript = %+v, want user request plus raw assistant reply", msgs)
	}
}

func TestQuizNextWithoutTopic(t *testing.T) {
	b, api, _, _ := testBot(t)
	ctx := context.Background()

	b.dispatch(ctx, command(1, "quiz"))
	b.dispatch(ctx, button(1, tokenNextQuestion))

	if got := b.sessions.Get(1).State; got != session.StateQuizTopic {
		t.Fatalf("state = %q, want topic selection", got)
	}
	if !strings.Contains(api.lastText(), "I don't remember your topic") {
		t.Errorf("missing re-selection prompt: %q", api.lastText())
	}
}

func TestTranslateFlow(t *testing.T) {
	b, _, assist, _ := testBot(t)
	ctx := context.Background()

	b.dispatch(ctx, command(1, "translate"))
	b.dispatch(ctx, button(1, "french"))

	sess := b.sessions.Get(1)
	if sess.State != session.StateTranslateChat {
		t.Fatalf("state after language choice = %q", sess.State)
	}

	b.dispatch(ctx, text(1, "Good morning"))
	if len(assist.asks) != 1 {
		t.Fatalf("got %d asks, want 1", len(assist.asks))
	}
	want := "Translate the text after 3 line breaks into french\n\n\nGood morning"
	if assist.asks[0].message != want {
		t.Errorf("request = %q, want %q", assist.asks[0].message, want)
	}
	if assist.asks[0].assistantID != "a-translate" {
		t.Errorf("assistantID = %q", assist.asks[0].assistantID)
	}
}

func TestTranslateTextWithoutLanguage(t *testing.T) {
	b, api, assist, _ := testBot(t)
	ctx := context.Background()

	b.dispatch(ctx, command(1, "translate"))
	sess := b.sessions.Get(1)
	// Simulate a restart that lost the language but not the state.
	sess.State = session.StateTranslateChat

	b.dispatch(ctx, text(1, "Good morning"))
	if sess.State != session.StateTranslateLanguage {
		t.Fatalf("state = %q, want language selection", sess.State)
	}
	if len(assist.asks) != 0 {
		t.Error("assistant was called without a selected language")
	}
	if !strings.Contains(api.lastText(), "not selected a language") {
		t.Errorf("missing warning: %q", api.lastText())
	}
}

func TestTalkFlow(t *testing.T) {
	b, _, assist, _ := testBot(t)
	ctx := context.Background()

	b.dispatch(ctx, command(1, "talk"))
	b.dispatch(ctx, button(1, "einstein"))

	sess := b.sessions.Get(1)
	if sess.State != session.StateTalkChat {
		t.Fatalf("state after personality choice = %q", sess.State)
	}
	if sess.Personality != models.PersonalityEinstein {
		t.Fatalf("Personality = %q", sess.Personality)
	}

	b.dispatch(ctx, text(1, "What is relativity?"))
	if len(assist.asks) != 1 {
		t.Fatalf("got %d asks, want 1", len(assist.asks))
	}
	if assist.asks[0].assistantID != "a-einstein" {
		t.Errorf("assistantID = %q, want the personality's assistant", assist.asks[0].assistantID)
	}
}

func TestModeIsolation(t *testing.T) {
	b, _, assist, store := testBot(t)
	ctx := context.Background()

	assist.replies = []string{"hi there", quizReply}

	b.dispatch(ctx, command(1, "gpt"))
	b.dispatch(ctx, text(1, "hello"))

	b.dispatch(ctx, command(1, "quiz"))
	b.dispatch(ctx, button(1, "science"))

	gptThread, _ := store.GetThreadID(ctx, 1, models.ModeGPT)
	quizThread, _ := store.GetThreadID(ctx, 1, models.ModeQuiz)
	if gptThread == "" || quizThread == "" {
		t.Fatalf("threads missing: gpt=%q quiz=%q", gptThread, quizThread)
	}
	if gptThread == quizThread {
		t.Error("gpt and quiz modes share one thread")
	}
}

func TestThreadContinuity(t *testing.T) {
	b, _, assist, _ := testBot(t)
	ctx := context.Background()

	b.dispatch(ctx, command(1, "gpt"))
	b.dispatch(ctx, text(1, "first"))
	b.dispatch(ctx, text(1, "second"))

	if len(assist.asks) != 2 {
		t.Fatalf("got %d asks, want 2", len(assist.asks))
	}
	if assist.asks[0].threadID != assist.asks[1].threadID {
		t.Errorf("messages used different threads: %q vs %q",
			assist.asks[0].threadID, assist.asks[1].threadID)
	}
	if assist.threads != 1 {
		t.Errorf("created %d provider threads, want 1", assist.threads)
	}
}

func TestAssistantFailure(t *testing.T) {
	b, api, assist, store := testBot(t)
	ctx := context.Background()

	assist.err = errors.New("upstream down")

	b.dispatch(ctx, command(1, "gpt"))
	b.dispatch(ctx, text(1, "hello"))

	sess := b.sessions.Get(1)
	if sess.State != session.StateGPTChat {
		t.Fatalf("state after failure = %q, want the chat state kept", sess.State)
	}
	if api.lastText() != assistantFailedText {
		t.Errorf("lastText = %q", api.lastText())
	}

	// The user message is recorded; no assistant entry is left behind.
	threadID, _ := store.GetThreadID(ctx, 1, models.ModeGPT)
	msgs, err := store.RecentMessages(ctx, threadID, 10)
	if err != nil {
		t.Fatalf("RecentMessages() error = %v", err)
	}
	if len(msgs) != 1 || msgs[0].Role != models.RoleUser {
		t.Fatalf("transcript = %+v, want only the user message", msgs)
	}

	// The next attempt works on the same thread.
	assist.err = nil
	b.dispatch(ctx, text(1, "hello again"))
	if assist.threads != 1 {
		t.Errorf("created %d provider threads, want 1", assist.threads)
	}
}

func TestResumeFlow(t *testing.T) {
	b, api, assist, _ := testBot(t)
	ctx := context.Background()

	assist.replies = []string{"Jordan Lee\nBackend Engineer\nSkills: Python, SQL"}

	b.dispatch(ctx, command(1, "resume"))
	sess := b.sessions.Get(1)
	if sess.State != session.StateResumePosition {
		t.Fatalf("state after /resume = %q", sess.State)
	}

	answers := []string{
		"Backend Engineer",
		"Jordan Lee",
		"jordan@example.com",
		"BSc Computer Science",
		"3 years at Acme",
		"Excel",
		"no",
	}
	for _, a := range answers {
		b.dispatch(ctx, text(1, a))
	}
	if sess.State != session.StateResumeConfirm {
		t.Fatalf("state after collection = %q, want confirmation", sess.State)
	}

	// Targeted correction at the confirmation step.
	b.dispatch(ctx, text(1, "skills: Python, SQL"))
	if got := sess.Resume.Get(session.FieldSkills); got != "Python, SQL" {
		t.Fatalf("skills after correction = %q", got)
	}

	b.dispatch(ctx, button(1, tokenConfirm))
	if sess.State != session.StateResumeFormat {
		t.Fatalf("state after confirm = %q, want format selection", sess.State)
	}
	if assist.asks[0].assistantID != "a-resume" {
		t.Errorf("assistantID = %q", assist.asks[0].assistantID)
	}
	if !strings.Contains(assist.asks[0].message, "skills: Python, SQL") {
		t.Errorf("generation prompt missing corrected field:\n%s", assist.asks[0].message)
	}

	b.dispatch(ctx, button(1, tokenPDF))
	if sess.State != session.StateResumeFormat {
		t.Fatalf("state after export = %q, want format selection kept", sess.State)
	}
	docs := api.documents()
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}
	if f, ok := docs[0].File.(tgbotapi.FileBytes); !ok || f.Name != "resume.pdf" {
		t.Errorf("document file = %#v, want resume.pdf bytes", docs[0].File)
	}

	b.dispatch(ctx, button(1, tokenComplete))
	if sess.State != session.StateIdle {
		t.Fatalf("state after done = %q, want idle", sess.State)
	}
}

func TestResumeUnknownCorrectionField(t *testing.T) {
	b, api, _, _ := testBot(t)
	ctx := context.Background()

	b.dispatch(ctx, command(1, "resume"))
	sess := b.sessions.Get(1)
	sess.State = session.StateResumeConfirm

	b.dispatch(ctx, text(1, "salary: one million"))
	if sess.State != session.StateResumeConfirm {
		t.Fatalf("state = %q, want confirmation kept", sess.State)
	}
	if !strings.Contains(strings.Join(api.texts(), "\n"), "I don't know that field") {
		t.Error("missing unknown-field hint")
	}
}

func TestStopResetsSession(t *testing.T) {
	b, _, _, _ := testBot(t)
	ctx := context.Background()

	b.dispatch(ctx, command(1, "talk"))
	b.dispatch(ctx, button(1, "mercury"))

	b.dispatch(ctx, command(1, "stop"))
	sess := b.sessions.Get(1)
	if sess.State != session.StateIdle {
		t.Fatalf("state after /stop = %q", sess.State)
	}
	if sess.Mode != "" || sess.Personality != "" {
		t.Error("/stop left mode or scratch behind")
	}
}

func TestCommandsAreGlobalEntryPoints(t *testing.T) {
	b, _, assist, _ := testBot(t)
	ctx := context.Background()

	assist.replies = []string{quizReply}

	b.dispatch(ctx, command(1, "quiz"))
	b.dispatch(ctx, button(1, "science"))

	// A command mid-quiz switches modes cleanly.
	b.dispatch(ctx, command(1, "gpt"))
	sess := b.sessions.Get(1)
	if sess.State != session.StateGPTChat {
		t.Fatalf("state = %q, want gpt chat", sess.State)
	}
	if sess.PendingAnswer != "" || sess.QuizTopic != "" {
		t.Error("quiz scratch survived the mode switch")
	}
}

// Every state has a defined outcome for events its routes do not claim.
func TestDispatchTotality(t *testing.T) {
	b, _, _, _ := testBot(t)
	ctx := context.Background()

	defined := make(map[session.State]bool)
	for _, s := range session.All() {
		defined[s] = true
	}

	for _, state := range session.All() {
		for _, ev := range []Event{text(1, "???"), button(1, "bogus-token")} {
			sess := &session.Session{UserID: 1, State: state}
			next := b.router.dispatch(ctx, ev, sess)
			if !defined[next] {
				t.Errorf("state %q + kind %d yields undefined state %q", state, ev.Kind, next)
			}
		}
	}
}

func TestVoiceChatUnavailableWithoutSpeech(t *testing.T) {
	b, api, _, _ := testBot(t)
	ctx := context.Background()

	b.dispatch(ctx, command(1, "voice_chat"))
	sess := b.sessions.Get(1)
	if sess.State != session.StateVoiceChat {
		t.Fatalf("state after /voice_chat = %q", sess.State)
	}

	ev := Event{Kind: KindVoice, UserID: 1, ChatID: 1, Voice: &tgbotapi.Voice{FileID: "f1"}}
	b.dispatch(ctx, ev)
	if sess.State != session.StateVoiceChat {
		t.Fatalf("state after voice message = %q", sess.State)
	}
	if !strings.Contains(api.lastText(), "not available") {
		t.Errorf("missing unavailability reply: %q", api.lastText())
	}
}

func TestHistory(t *testing.T) {
	b, api, _, _ := testBot(t)
	ctx := context.Background()

	b.dispatch(ctx, command(1, "gpt"))
	b.dispatch(ctx, text(1, "remember me"))
	b.dispatch(ctx, command(1, "history"))

	last := api.lastText()
	if !strings.Contains(last, "You: remember me") {
		t.Errorf("history missing user message: %q", last)
	}
	if !strings.Contains(last, "Assistant: ok") {
		t.Errorf("history missing assistant message: %q", last)
	}

	// /history keeps the chat state.
	if got := b.sessions.Get(1).State; got != session.StateGPTChat {
		t.Errorf("state after /history = %q", got)
	}
}

func TestAbnormalReply(t *testing.T) {
	if abnormalReply("The capital of France is Paris.") {
		t.Error("plain reply flagged as abnormal")
	}
	if !abnormalReply(strings.Repeat("a", 1001)) {
		t.Error("overlong reply not flagged")
	}
	if !abnormalReply("broken ### heading") {
		t.Error("markup reply not flagged")
	}
	if !abnormalReply("<script>alert(1)") {
		t.Error("script reply not flagged")
	}
}
