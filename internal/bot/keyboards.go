package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mileshkin/companion-bot/internal/models"
	"github.com/mileshkin/companion-bot/internal/quiz"
)

// Navigation and action tokens carried in callback data. The dispatcher only
// routes tokens registered for the current state; everything else is ignored.
const (
	tokenMainMenu       = "start"
	tokenAnotherFact    = "random"
	tokenEndChat        = "end_chat"
	tokenNextQuestion   = "next_question"
	tokenChangeTopic    = "change_topic"
	tokenEndQuiz        = "end_quiz"
	tokenChangeLanguage = "change_language"
	tokenEndTranslate   = "end_translate"
	tokenConfirm        = "confirm"
	tokenEdit           = "edit"
	tokenPDF            = "pdf"
	tokenDOCX           = "docx"
	tokenComplete       = "complete"
)

func mainMenuButton() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 Main Menu", tokenMainMenu),
		),
	)
}

func randomMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 Main Menu", tokenMainMenu),
			tgbotapi.NewInlineKeyboardButtonData("I want another fact", tokenAnotherFact),
		),
	)
}

func talkKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Albert Einstein", string(models.PersonalityEinstein)),
			tgbotapi.NewInlineKeyboardButtonData("Napoleon Bonaparte", string(models.PersonalityNapoleon)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Stephen King", string(models.PersonalityKing)),
			tgbotapi.NewInlineKeyboardButtonData("Freddie Mercury", string(models.PersonalityMercury)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 Main Menu", tokenMainMenu),
		),
	)
}

func endChatKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("End chat", tokenEndChat),
		),
	)
}

func topicKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Science", string(models.TopicScience)),
			tgbotapi.NewInlineKeyboardButtonData("Sport", string(models.TopicSport)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Art", string(models.TopicArt)),
			tgbotapi.NewInlineKeyboardButtonData("Cinema", string(models.TopicCinema)),
		),
	)
}

func answerKeyboard(q *quiz.Question) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(quiz.OptionKeys))
	for _, key := range quiz.OptionKeys {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(key+") "+q.Options[key], key),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func quizMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Next question", tokenNextQuestion),
			tgbotapi.NewInlineKeyboardButtonData("Change topic", tokenChangeTopic),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("End quiz", tokenEndQuiz),
		),
	)
}

func languageKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("English", string(models.LanguageEnglish)),
			tgbotapi.NewInlineKeyboardButtonData("French", string(models.LanguageFrench)),
			tgbotapi.NewInlineKeyboardButtonData("German", string(models.LanguageGerman)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Italian", string(models.LanguageItalian)),
			tgbotapi.NewInlineKeyboardButtonData("Spanish", string(models.LanguageSpanish)),
			tgbotapi.NewInlineKeyboardButtonData("Ukrainian", string(models.LanguageUkrainian)),
		),
	)
}

func translateMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Change language", tokenChangeLanguage),
			tgbotapi.NewInlineKeyboardButtonData("End translation", tokenEndTranslate),
		),
	)
}

func resumeConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", tokenConfirm),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Edit", tokenEdit),
		),
	)
}

func resumeFormatKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("PDF", tokenPDF),
			tgbotapi.NewInlineKeyboardButtonData("DOCX", tokenDOCX),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Done", tokenComplete),
		),
	)
}
