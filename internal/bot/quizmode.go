package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/mileshkin/companion-bot/internal/models"
	"github.com/mileshkin/companion-bot/internal/quiz"
	"github.com/mileshkin/companion-bot/internal/session"
	"go.uber.org/zap"
)

// quizIntro restarts the quiz flow. The running score survives restarts of
// the flow; only the topic and pending question are discarded.
func (b *Bot) quizIntro(ctx context.Context, ev Event, sess *session.Session) session.State {
	sess.EnterMode(models.ModeQuiz, session.StateQuizTopic)
	b.sendKeyboard(ev.ChatID, "What topic do you want to get the first question about?", topicKeyboard())
	return session.StateQuizTopic
}

func (b *Bot) promptQuizTopic(ctx context.Context, ev Event, sess *session.Session) session.State {
	b.sendKeyboard(ev.ChatID, "Please choose a topic from the buttons.", topicKeyboard())
	return session.StateQuizTopic
}

func (b *Bot) promptQuizAnswer(ctx context.Context, ev Event, sess *session.Session) session.State {
	if sess.PendingAnswer == "" {
		b.sendKeyboard(ev.ChatID, "Use the buttons to continue the quiz.", quizMenuKeyboard())
	} else {
		b.sendMessage(ev.ChatID, "Please answer with one of the A-D buttons.")
	}
	return session.StateQuizAnswer
}

func (b *Bot) quizTopicChosen(ctx context.Context, ev Event, sess *session.Session) session.State {
	topic, ok := models.ParseTopic(ev.Button)
	if !ok {
		return b.promptQuizTopic(ctx, ev, sess)
	}

	sess.QuizTopic = topic
	return b.quizIssueQuestion(ctx, ev, sess)
}

// quizNext issues another question on the remembered topic; with no topic
// remembered the user is driven back to topic selection.
func (b *Bot) quizNext(ctx context.Context, ev Event, sess *session.Session) session.State {
	if sess.QuizTopic == "" {
		b.sendKeyboard(ev.ChatID, "⚠️ I don't remember your topic. Please choose one again.", topicKeyboard())
		return session.StateQuizTopic
	}
	return b.quizIssueQuestion(ctx, ev, sess)
}

func (b *Bot) quizChangeTopic(ctx context.Context, ev Event, sess *session.Session) session.State {
	sess.PendingAnswer = ""
	b.sendKeyboard(ev.ChatID, "What topic do you want to get the next question about?", topicKeyboard())
	return session.StateQuizTopic
}

// quizIssueQuestion asks the quiz assistant for a question on the session
// topic and parses it. The raw reply always lands in the transcript; only a
// well-formed question reaches the user.
func (b *Bot) quizIssueQuestion(ctx context.Context, ev Event, sess *session.Session) session.State {
	sess.PendingAnswer = ""

	request := fmt.Sprintf("Generate an interesting mid-level question on the topic: %s", sess.QuizTopic)

	reply, err := b.exchange(ctx, ev.UserID, models.ModeQuiz, b.assistants.Quiz, request)
	if err != nil {
		b.logger.Warn("Assistant failed in /quiz",
			zap.Error(err),
			zap.Int64("user_id", ev.UserID))
		b.sendKeyboard(ev.ChatID, assistantFailedText, topicKeyboard())
		return session.StateQuizTopic
	}

	question, err := quiz.ParseQuestion(reply)
	if err != nil {
		if !errors.Is(err, quiz.ErrMalformedQuestion) {
			b.logger.Error("Unexpected quiz parse error", zap.Error(err))
		}
		b.logger.Warn("Failed to parse quiz question",
			zap.Int64("user_id", ev.UserID),
			zap.String("reply", reply))
		b.sendKeyboard(ev.ChatID, "⚠️ I couldn't format that question properly. Please try again.", topicKeyboard())
		return session.StateQuizTopic
	}

	sess.PendingAnswer = question.Correct

	b.sendMessage(ev.ChatID, fmt.Sprintf("Selected topic: %s\n\n%s", capitalize(string(sess.QuizTopic)), question.Text))
	b.sendKeyboard(ev.ChatID, "Choose your answer:", answerKeyboard(question))
	return session.StateQuizAnswer
}

// quizGrade checks the submitted letter against the last issued question and
// updates the running score. A question is graded at most once.
func (b *Bot) quizGrade(ctx context.Context, ev Event, sess *session.Session) session.State {
	if sess.PendingAnswer == "" {
		b.sendKeyboard(ev.ChatID, "That question is already answered. Ask for the next one.", quizMenuKeyboard())
		return session.StateQuizAnswer
	}

	correct := ev.Button == sess.PendingAnswer
	result := "✅ Correct!"
	if !correct {
		result = fmt.Sprintf("❌ Wrong! The correct answer was: %s", sess.PendingAnswer)
	}
	sess.PendingAnswer = ""

	total := b.scores.Record(ev.UserID, correct)

	b.sendKeyboard(ev.ChatID, fmt.Sprintf("%s\n\nYour total correct answers: %d", result, total), quizMenuKeyboard())
	return session.StateQuizAnswer
}
