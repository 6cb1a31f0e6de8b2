package quiz

import (
	"errors"
	"regexp"
	"strings"
	"sync"
)

// ErrMalformedQuestion is returned when an assistant reply does not follow the
// expected question format. Callers must re-prompt instead of guessing.
var ErrMalformedQuestion = errors.New("quiz: malformed question payload")

// Question is a parsed quiz question.
//
// The assistant is contracted to reply in this shape:
//
//	Question: <text>
//
//	A) <option>
//	B) <option>
//	C) <option>
//	D) <option>
//
//	Correct Answer: <A|B|C|D>
type Question struct {
	Text    string
	Options map[string]string
	Correct string
}

// OptionKeys is the fixed option order.
var OptionKeys = []string{"A", "B", "C", "D"}

var (
	questionRe = regexp.MustCompile(`(?im)^\s*Question:\s*(.+)$`)
	optionRe   = regexp.MustCompile(`(?m)^\s*([A-Da-d])\)\s*(.+)$`)
	correctRe  = regexp.MustCompile(`(?im)^\s*Correct Answer:\s*([A-Da-d])\b`)
)

// ParseQuestion extracts a question from an assistant reply. It requires
// exactly one Question line, exactly four options labelled A–D in order
// (labels matched case-insensitively) and exactly one Correct Answer line
// whose letter is one of the option keys. Any deviation is a parse failure.
func ParseQuestion(text string) (*Question, error) {
	questions := questionRe.FindAllStringSubmatch(text, -1)
	if len(questions) != 1 {
		return nil, ErrMalformedQuestion
	}

	optionMatches := optionRe.FindAllStringSubmatch(text, -1)
	if len(optionMatches) != len(OptionKeys) {
		return nil, ErrMalformedQuestion
	}
	options := make(map[string]string, len(OptionKeys))
	for i, m := range optionMatches {
		key := strings.ToUpper(m[1])
		if key != OptionKeys[i] {
			return nil, ErrMalformedQuestion
		}
		options[key] = strings.TrimSpace(m[2])
	}

	corrects := correctRe.FindAllStringSubmatch(text, -1)
	if len(corrects) != 1 {
		return nil, ErrMalformedQuestion
	}
	correct := strings.ToUpper(corrects[0][1])
	if _, ok := options[correct]; !ok {
		return nil, ErrMalformedQuestion
	}

	return &Question{
		Text:    strings.TrimSpace(questions[0][1]),
		Options: options,
		Correct: correct,
	}, nil
}

// Scoreboard tracks running correct-answer counts per user for the lifetime of
// the process. Scores are never persisted.
type Scoreboard struct {
	mu     sync.Mutex
	scores map[int64]int
}

func NewScoreboard() *Scoreboard {
	return &Scoreboard{scores: make(map[int64]int)}
}

// Score returns the user's running total, zero for a new user.
func (s *Scoreboard) Score(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scores[userID]
}

// Record adds one point for a correct answer and returns the new total.
// Incorrect answers leave the total unchanged.
func (s *Scoreboard) Record(userID int64, correct bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if correct {
		s.scores[userID]++
	}
	return s.scores[userID]
}
