package session

import (
	"sync"

	"github.com/mileshkin/companion-bot/internal/models"
)

// State names the step a mode's flow is currently waiting on. The dispatcher
// only routes events registered for the user's current state; everything else
// falls back to a re-prompt.
type State string

const (
	StateIdle State = "idle"

	StateGPTChat State = "gpt:chat"

	StateTalkPersonality State = "talk:choose_personality"
	StateTalkChat        State = "talk:chat"

	StateQuizTopic  State = "quiz:choose_topic"
	StateQuizAnswer State = "quiz:await_answer"

	StateTranslateLanguage State = "translate:choose_language"
	StateTranslateChat     State = "translate:chat"

	StateResumePosition   State = "resume:position"
	StateResumeName       State = "resume:name"
	StateResumeContacts   State = "resume:contacts"
	StateResumeEducation  State = "resume:education"
	StateResumeExperience State = "resume:work_experience"
	StateResumeSkills     State = "resume:skills"
	StateResumeExtra      State = "resume:additional_information"
	StateResumeConfirm    State = "resume:confirm"
	StateResumeFormat     State = "resume:format"

	StateVoiceChat State = "voice:chat"
)

// All lists every defined state, the idle state first.
func All() []State {
	return []State{
		StateIdle,
		StateGPTChat,
		StateTalkPersonality, StateTalkChat,
		StateQuizTopic, StateQuizAnswer,
		StateTranslateLanguage, StateTranslateChat,
		StateResumePosition, StateResumeName, StateResumeContacts, StateResumeEducation,
		StateResumeExperience, StateResumeSkills, StateResumeExtra, StateResumeConfirm, StateResumeFormat,
		StateVoiceChat,
	}
}

// Session is the per-user in-memory record of the active mode, the state
// within that mode and the mode-specific scratch payload. It does not survive
// a process restart; thread ids do (they live in storage).
type Session struct {
	UserID int64
	Mode   models.Mode
	State  State

	// Scratch payload. Cleared on every mode entry and on Reset so one
	// mode's leftovers never leak into another.
	Personality   models.Personality
	Language      models.Language
	QuizTopic     models.Topic
	PendingAnswer string // correct letter of the last issued quiz question, "" when none
	Resume        *ResumeDraft
	ResumeText    string // generated resume awaiting format selection
}

// EnterMode clears the scratch payload and moves the session into the given
// mode and entry state.
func (s *Session) EnterMode(mode models.Mode, state State) {
	s.clearScratch()
	s.Mode = mode
	s.State = state
}

// Reset returns the session to the idle (main menu) state and clears the
// scratch payload.
func (s *Session) Reset() {
	s.clearScratch()
	s.Mode = ""
	s.State = StateIdle
}

func (s *Session) clearScratch() {
	s.Personality = ""
	s.Language = ""
	s.QuizTopic = ""
	s.PendingAnswer = ""
	s.Resume = nil
	s.ResumeText = ""
}

// Store holds sessions keyed by user id. Sessions are created lazily on first
// interaction. The store itself is safe for concurrent use; a single session
// is only ever mutated by its user's serially processed updates.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

func (st *Store) Get(userID int64) *Session {
	st.mu.RLock()
	sess, ok := st.sessions[userID]
	st.mu.RUnlock()
	if ok {
		return sess
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if sess, ok = st.sessions[userID]; ok {
		return sess
	}
	sess = &Session{UserID: userID, State: StateIdle}
	st.sessions[userID] = sess
	return sess
}
