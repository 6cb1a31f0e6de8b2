package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mileshkin/companion-bot/internal/models"
	"github.com/mileshkin/companion-bot/internal/quiz"
	"github.com/mileshkin/companion-bot/internal/session"
)

type EventKind int

const (
	KindCommand EventKind = iota
	KindText
	KindButton
	KindVoice
)

// Event is one normalized inbound update.
type Event struct {
	Kind       EventKind
	UserID     int64
	ChatID     int64
	Command    string
	Text       string
	Button     string
	CallbackID string
	MessageID  int
	Voice      *tgbotapi.Voice
}

func (ev Event) token() string {
	switch ev.Kind {
	case KindCommand:
		return ev.Command
	case KindButton:
		return ev.Button
	default:
		return ""
	}
}

// handlerFunc advances the state machine. Every handler returns the next
// state explicitly; errors are translated into user-visible messages inside
// the handler, never propagated to the transport.
type handlerFunc func(ctx context.Context, ev Event, sess *session.Session) session.State

// stateAny marks routes that apply regardless of the current state; commands
// are mode-entry points from anywhere.
const stateAny session.State = "*"

type route struct {
	state  session.State
	kind   EventKind
	tokens []string // nil matches any payload of the kind
	handle handlerFunc
}

// router is the explicit state-transition table: (state, event kind, token)
// rows resolved top to bottom, plus a per-state fallback that re-emits the
// state's prompt for unrecognized events.
type router struct {
	routes  []route
	prompts map[session.State]handlerFunc
}

func newRouter(b *Bot) *router {
	personalityTokens := tokens(models.Personalities())
	languageTokens := tokens(models.Languages())
	topicTokens := tokens(models.Topics())

	return &router{
		routes: []route{
			// Commands restart their flow from any state.
			{stateAny, KindCommand, []string{"start"}, b.cmdStart},
			{stateAny, KindCommand, []string{"stop"}, b.cmdStop},
			{stateAny, KindCommand, []string{"gpt"}, b.gptIntro},
			{stateAny, KindCommand, []string{"talk"}, b.talkIntro},
			{stateAny, KindCommand, []string{"quiz"}, b.quizIntro},
			{stateAny, KindCommand, []string{"translate"}, b.translateIntro},
			{stateAny, KindCommand, []string{"resume"}, b.resumeIntro},
			{stateAny, KindCommand, []string{"voice_chat"}, b.voiceIntro},
			{stateAny, KindCommand, []string{"random"}, b.randomFact},
			{stateAny, KindCommand, []string{"history"}, b.showHistory},
			{stateAny, KindCommand, nil, b.unknownCommand},

			// Navigation buttons offered by every mode's menus.
			{stateAny, KindButton, []string{tokenMainMenu}, b.cmdStart},
			{stateAny, KindButton, []string{tokenAnotherFact}, b.randomFact},

			{session.StateGPTChat, KindText, nil, b.gptChat},

			{session.StateTalkPersonality, KindButton, personalityTokens, b.talkSelect},
			{session.StateTalkChat, KindText, nil, b.talkChat},
			{session.StateTalkChat, KindButton, []string{tokenEndChat}, b.cmdStart},

			{session.StateQuizTopic, KindButton, topicTokens, b.quizTopicChosen},
			{session.StateQuizTopic, KindButton, []string{tokenNextQuestion}, b.quizNext},
			{session.StateQuizAnswer, KindButton, quiz.OptionKeys, b.quizGrade},
			{session.StateQuizAnswer, KindButton, []string{tokenNextQuestion}, b.quizNext},
			{session.StateQuizAnswer, KindButton, []string{tokenChangeTopic}, b.quizChangeTopic},
			{session.StateQuizAnswer, KindButton, []string{tokenEndQuiz}, b.cmdStart},

			{session.StateTranslateLanguage, KindButton, languageTokens, b.translateSelect},
			{session.StateTranslateChat, KindButton, languageTokens, b.translateSelect},
			{session.StateTranslateChat, KindText, nil, b.translateText},
			{session.StateTranslateChat, KindButton, []string{tokenChangeLanguage}, b.translateChangeLanguage},
			{session.StateTranslateChat, KindButton, []string{tokenEndTranslate}, b.cmdStart},

			{session.StateResumePosition, KindText, nil, b.resumeCollect},
			{session.StateResumeName, KindText, nil, b.resumeCollect},
			{session.StateResumeContacts, KindText, nil, b.resumeCollect},
			{session.StateResumeEducation, KindText, nil, b.resumeCollect},
			{session.StateResumeExperience, KindText, nil, b.resumeCollect},
			{session.StateResumeSkills, KindText, nil, b.resumeCollect},
			{session.StateResumeExtra, KindText, nil, b.resumeConfirmData},
			{session.StateResumeConfirm, KindText, nil, b.resumeConfirmData},
			{session.StateResumeConfirm, KindButton, []string{tokenConfirm}, b.resumeGenerate},
			{session.StateResumeConfirm, KindButton, []string{tokenEdit}, b.resumeEdit},
			{session.StateResumeFormat, KindButton, []string{tokenPDF, tokenDOCX}, b.resumeExport},
			{session.StateResumeFormat, KindButton, []string{tokenComplete}, b.cmdStart},

			{session.StateVoiceChat, KindVoice, nil, b.voiceMessage},
		},
		prompts: map[session.State]handlerFunc{
			session.StateIdle:              b.promptIdle,
			session.StateGPTChat:           prompt(b, "Send me a message, or /stop to end the chat."),
			session.StateTalkPersonality:   b.promptTalkPersonality,
			session.StateTalkChat:          prompt(b, "Send a message to continue the conversation, or press End chat."),
			session.StateQuizTopic:         b.promptQuizTopic,
			session.StateQuizAnswer:        b.promptQuizAnswer,
			session.StateTranslateLanguage: b.promptTranslateLanguage,
			session.StateTranslateChat:     prompt(b, "Send me text to translate, or use the buttons."),
			session.StateResumePosition:    prompt(b, "Write what position you are applying for:"),
			session.StateResumeName:        prompt(b, "Enter your full name:"),
			session.StateResumeContacts:    prompt(b, "Enter your contact information (phone, email, LinkedIn):"),
			session.StateResumeEducation:   prompt(b, "Describe your education:"),
			session.StateResumeExperience:  prompt(b, "Describe your work experience:"),
			session.StateResumeSkills:      prompt(b, "List your skills:"),
			session.StateResumeExtra:       prompt(b, "Additional information (certifications, languages, hobbies...) or write 'no' to skip:"),
			session.StateResumeConfirm:     b.promptResumeConfirm,
			session.StateResumeFormat:      b.promptResumeFormat,
			session.StateVoiceChat:         prompt(b, "Send me a voice message."),
		},
	}
}

// dispatch resolves the first matching row for the event. An event no row and
// no fallback claims is a no-op that keeps the current state.
func (r *router) dispatch(ctx context.Context, ev Event, sess *session.Session) session.State {
	for _, rt := range r.routes {
		if rt.state != stateAny && rt.state != sess.State {
			continue
		}
		if rt.kind != ev.Kind {
			continue
		}
		if len(rt.tokens) > 0 && !containsToken(rt.tokens, ev.token()) {
			continue
		}
		return rt.handle(ctx, ev, sess)
	}

	if p, ok := r.prompts[sess.State]; ok {
		return p(ctx, ev, sess)
	}
	return sess.State
}

// prompt builds a fallback handler that re-states what the current state
// expects without advancing.
func prompt(b *Bot, text string) handlerFunc {
	return func(ctx context.Context, ev Event, sess *session.Session) session.State {
		b.sendMessage(ev.ChatID, text)
		return sess.State
	}
}

func containsToken(tokens []string, token string) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}

func tokens[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
