package session

import (
	"testing"

	"github.com/mileshkin/companion-bot/internal/models"
)

func TestEnterModeClearsScratch(t *testing.T) {
	sess := &Session{UserID: 1}
	sess.Personality = models.PersonalityEinstein
	sess.Language = models.LanguageFrench
	sess.QuizTopic = models.TopicScience
	sess.PendingAnswer = "B"
	sess.Resume = NewResumeDraft()
	sess.ResumeText = "generated"

	sess.EnterMode(models.ModeQuiz, StateQuizTopic)

	if sess.Mode != models.ModeQuiz || sess.State != StateQuizTopic {
		t.Errorf("got mode=%q state=%q", sess.Mode, sess.State)
	}
	if sess.Personality != "" || sess.Language != "" || sess.QuizTopic != "" ||
		sess.PendingAnswer != "" || sess.Resume != nil || sess.ResumeText != "" {
		t.Error("EnterMode left scratch payload behind")
	}
}

func TestReset(t *testing.T) {
	sess := &Session{UserID: 1}
	sess.EnterMode(models.ModeTalk, StateTalkChat)
	sess.Personality = models.PersonalityMercury

	sess.Reset()

	if sess.Mode != "" {
		t.Errorf("Mode = %q, want empty", sess.Mode)
	}
	if sess.State != StateIdle {
		t.Errorf("State = %q, want %q", sess.State, StateIdle)
	}
	if sess.Personality != "" {
		t.Error("Reset left scratch payload behind")
	}
}

func TestStoreGet(t *testing.T) {
	store := NewStore()

	sess := store.Get(42)
	if sess.UserID != 42 {
		t.Errorf("UserID = %d, want 42", sess.UserID)
	}
	if sess.State != StateIdle {
		t.Errorf("new session State = %q, want %q", sess.State, StateIdle)
	}

	sess.State = StateGPTChat
	if again := store.Get(42); again != sess {
		t.Error("Get returned a different session for the same user")
	}
	if other := store.Get(43); other == sess {
		t.Error("Get returned the same session for a different user")
	}
}

func TestAllStatesDistinct(t *testing.T) {
	seen := make(map[State]bool)
	for _, s := range All() {
		if seen[s] {
			t.Errorf("duplicate state %q", s)
		}
		seen[s] = true
	}
	if !seen[StateIdle] {
		t.Error("All() is missing the idle state")
	}
}
