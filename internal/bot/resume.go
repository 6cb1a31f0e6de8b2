package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mileshkin/companion-bot/internal/export"
	"github.com/mileshkin/companion-bot/internal/models"
	"github.com/mileshkin/companion-bot/internal/session"
	"go.uber.org/zap"
)

// resumeStep maps a collection state to the field it stores and the prompt
// for the following field.
type resumeStep struct {
	field      string
	nextPrompt string
	next       session.State
}

var resumeSteps = map[session.State]resumeStep{
	session.StateResumePosition:   {session.FieldPosition, "Enter your full name:", session.StateResumeName},
	session.StateResumeName:       {session.FieldName, "Enter your contact information (phone, email, LinkedIn):", session.StateResumeContacts},
	session.StateResumeContacts:   {session.FieldContacts, "Describe your education:", session.StateResumeEducation},
	session.StateResumeEducation:  {session.FieldEducation, "Describe your work experience:", session.StateResumeExperience},
	session.StateResumeExperience: {session.FieldExperience, "List your skills:", session.StateResumeSkills},
	session.StateResumeSkills:     {session.FieldSkills, "Additional information (certifications, languages, hobbies...) or write 'no' to skip:", session.StateResumeExtra},
}

func (b *Bot) resumeIntro(ctx context.Context, ev Event, sess *session.Session) session.State {
	sess.EnterMode(models.ModeResume, session.StateResumePosition)
	sess.Resume = session.NewResumeDraft()
	b.sendMessage(ev.ChatID, "Let's build your résumé step by step.\n\nWrite what position you are applying for:")
	return session.StateResumePosition
}

// resumeCollect stores the answer for the current step and asks for the next
// field.
func (b *Bot) resumeCollect(ctx context.Context, ev Event, sess *session.Session) session.State {
	step, ok := resumeSteps[sess.State]
	if !ok || sess.Resume == nil {
		// Scratch got lost; restart the flow instead of guessing.
		return b.resumeIntro(ctx, ev, sess)
	}

	sess.Resume.Set(step.field, strings.TrimSpace(ev.Text))
	b.sendMessage(ev.ChatID, step.nextPrompt)
	return step.next
}

// resumeConfirmData handles both the final collection step and targeted
// corrections at the confirmation step. A "field: value" message overwrites
// that one field; a plain message replaces the additional-information field.
func (b *Bot) resumeConfirmData(ctx context.Context, ev Event, sess *session.Session) session.State {
	if sess.Resume == nil {
		return b.resumeIntro(ctx, ev, sess)
	}

	if field := sess.Resume.Apply(ev.Text); field == "" {
		b.sendMessage(ev.ChatID, "I don't know that field. Copy one of the field names from the summary, e.g. 'skills:'.")
	}

	b.sendKeyboard(ev.ChatID,
		fmt.Sprintf("Check the entered data:\n%s\n\nConfirm or select Edit.", sess.Resume.Summary()),
		resumeConfirmKeyboard())
	return session.StateResumeConfirm
}

func (b *Bot) promptResumeConfirm(ctx context.Context, ev Event, sess *session.Session) session.State {
	if sess.Resume == nil {
		return b.resumeIntro(ctx, ev, sess)
	}
	b.sendKeyboard(ev.ChatID,
		fmt.Sprintf("Check the entered data:\n%s\n\nConfirm or select Edit.", sess.Resume.Summary()),
		resumeConfirmKeyboard())
	return session.StateResumeConfirm
}

func (b *Bot) resumeEdit(ctx context.Context, ev Event, sess *session.Session) session.State {
	b.sendMessage(ev.ChatID, "Please copy one field name (e.g. 'skills:') and enter the corrected data.")
	return session.StateResumeConfirm
}

// resumeGenerate sends the collected data to the résumé assistant. On failure
// the confirmation step is kept so the user can simply confirm again.
func (b *Bot) resumeGenerate(ctx context.Context, ev Event, sess *session.Session) session.State {
	if sess.Resume == nil {
		return b.resumeIntro(ctx, ev, sess)
	}

	reply, err := b.exchange(ctx, ev.UserID, models.ModeResume, b.assistants.Resume, sess.Resume.Prompt())
	if err != nil {
		b.logger.Warn("Assistant failed in /resume",
			zap.Error(err),
			zap.Int64("user_id", ev.UserID))
		b.sendMessage(ev.ChatID, assistantFailedText)
		return session.StateResumeConfirm
	}

	sess.ResumeText = sanitizeHTML(reply)

	b.sendKeyboard(ev.ChatID, "Your resume is ready.\n\nIn what format would you like to download it?", resumeFormatKeyboard())
	return session.StateResumeFormat
}

func (b *Bot) promptResumeFormat(ctx context.Context, ev Event, sess *session.Session) session.State {
	b.sendKeyboard(ev.ChatID, "Choose a file format for your resume.", resumeFormatKeyboard())
	return session.StateResumeFormat
}

// resumeExport renders the generated résumé in the chosen format. An unknown
// format is rejected before reaching the renderer's collaborators; any other
// render failure is fatal to the flow and returns the user to the main menu.
func (b *Bot) resumeExport(ctx context.Context, ev Event, sess *session.Session) session.State {
	data, err := export.Render(sess.ResumeText, ev.Button)
	if errors.Is(err, export.ErrUnsupportedFormat) {
		b.logger.Warn("Invalid resume format selected", zap.String("format", ev.Button))
		b.sendMessage(ev.ChatID, "❌ Unsupported format. Please choose PDF or DOCX.")
		return session.StateResumeFormat
	}
	if err != nil {
		b.logger.Error("Failed to render resume file",
			zap.Error(err),
			zap.String("format", ev.Button))
		sess.Reset()
		b.sendErrorMessage(ev.ChatID, "Something went wrong during file conversion. Please start over with /resume.")
		return session.StateIdle
	}

	fileName := "resume." + ev.Button
	if err := b.sendDocument(ev.ChatID, fileName, data, "Here is your resume as "+strings.ToUpper(ev.Button)+"."); err != nil {
		b.logger.Error("Failed to send resume document",
			zap.Error(err),
			zap.Int64("chat_id", ev.ChatID))
		b.sendErrorMessage(ev.ChatID, "Sorry, I couldn't send the file. Please try again.")
		return session.StateResumeFormat
	}

	b.sendKeyboard(ev.ChatID, "If necessary, select another format:", resumeFormatKeyboard())
	return session.StateResumeFormat
}
