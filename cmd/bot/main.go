package main

import (
	"context"

	"github.com/mileshkin/companion-bot/internal/assistant"
	"github.com/mileshkin/companion-bot/internal/bot"
	"github.com/mileshkin/companion-bot/internal/speech"
	"github.com/mileshkin/companion-bot/internal/storage"
	"github.com/mileshkin/companion-bot/pkg/config"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		dbConfig := storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		}
		store, err = storage.NewPostgresStorage(dbConfig, logger)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Initialize the assistant client
	client := assistant.NewOpenAIClient(cfg.OpenAI.APIKey, logger)

	// Speech services are optional: without credentials the bot runs with
	// voice chat disabled.
	ctx := context.Background()
	var stt speech.Transcriber
	var tts speech.Synthesizer
	var converter *speech.Converter

	if cfg.Speech.CredentialsFile != "" {
		googleSTT, err := speech.NewGoogleSTT(ctx, cfg.Speech.CredentialsFile, cfg.Speech.LanguageCode, logger)
		if err != nil {
			logger.Fatal("Failed to create speech-to-text client", zap.Error(err))
		}
		defer googleSTT.Close()

		googleTTS, err := speech.NewGoogleTTS(ctx, cfg.Speech.CredentialsFile, cfg.Speech.LanguageCode, logger)
		if err != nil {
			logger.Fatal("Failed to create text-to-speech client", zap.Error(err))
		}
		defer googleTTS.Close()

		stt = googleSTT
		tts = googleTTS
		converter = speech.NewConverter(cfg.Audio.FFmpegPath, cfg.Audio.ConvertedDir, logger)
	} else {
		logger.Info("Google credentials not configured, voice chat disabled")
	}

	// Initialize bot
	b, err := bot.New(cfg.Telegram.Token, bot.Options{
		Storage:    store,
		Assistant:  client,
		Assistants: cfg.Assistants,
		STT:        stt,
		TTS:        tts,
		Converter:  converter,
		AudioDir:   cfg.Audio.InputDir,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	// Start the bot
	if err := b.Start(); err != nil {
		logger.Fatal("Bot error", zap.Error(err))
	}
}
