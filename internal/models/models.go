package models

import "time"

// Mode is one of the fixed top-level interaction flows of the bot. The mode
// determines which state machine handles the user's input and which assistant
// configuration backs the conversation thread.
type Mode string

const (
	ModeRandom    Mode = "random"
	ModeGPT       Mode = "gpt"
	ModeTalk      Mode = "talk"
	ModeQuiz      Mode = "quiz"
	ModeTranslate Mode = "translate"
	ModeResume    Mode = "resume"
	ModeVoiceChat Mode = "voice_chat"
)

// MessageRole is the author of a transcript entry.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Personality is a closed set of role-play characters for talk mode.
// Unknown callback tokens are rejected at the dispatch boundary.
type Personality string

const (
	PersonalityEinstein Personality = "einstein"
	PersonalityNapoleon Personality = "napoleon"
	PersonalityKing     Personality = "king"
	PersonalityMercury  Personality = "mercury"
)

func Personalities() []Personality {
	return []Personality{PersonalityEinstein, PersonalityNapoleon, PersonalityKing, PersonalityMercury}
}

func ParsePersonality(token string) (Personality, bool) {
	for _, p := range Personalities() {
		if string(p) == token {
			return p, true
		}
	}
	return "", false
}

// Language is a target language for translate mode.
type Language string

const (
	LanguageEnglish   Language = "english"
	LanguageFrench    Language = "french"
	LanguageGerman    Language = "german"
	LanguageItalian   Language = "italian"
	LanguageSpanish   Language = "spanish"
	LanguageUkrainian Language = "ukrainian"
)

func Languages() []Language {
	return []Language{LanguageEnglish, LanguageFrench, LanguageGerman, LanguageItalian, LanguageSpanish, LanguageUkrainian}
}

func ParseLanguage(token string) (Language, bool) {
	for _, l := range Languages() {
		if string(l) == token {
			return l, true
		}
	}
	return "", false
}

// Topic is a quiz topic.
type Topic string

const (
	TopicScience Topic = "science"
	TopicSport   Topic = "sport"
	TopicArt     Topic = "art"
	TopicCinema  Topic = "cinema"
)

func Topics() []Topic {
	return []Topic{TopicScience, TopicSport, TopicArt, TopicCinema}
}

func ParseTopic(token string) (Topic, bool) {
	for _, t := range Topics() {
		if string(t) == token {
			return t, true
		}
	}
	return "", false
}

// Thread is a durable mapping from (user, mode) to the provider-side
// conversation handle. At most one thread exists per (user, mode) pair and
// the stored id is never replaced once created.
type Thread struct {
	UserID     int64     `json:"user_id"`
	Mode       Mode      `json:"mode"`
	ThreadID   string    `json:"thread_id"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// ThreadMessage is one append-only transcript entry.
type ThreadMessage struct {
	ID        int64       `json:"id"`
	ThreadID  string      `json:"thread_id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}
