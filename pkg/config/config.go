package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mileshkin/companion-bot/internal/models"
	"github.com/spf13/viper"
)

type Config struct {
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Database   DatabaseConfig   `mapstructure:"database"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Assistants AssistantsConfig `mapstructure:"assistants"`
	Speech     SpeechConfig     `mapstructure:"speech"`
	Audio      AudioConfig      `mapstructure:"audio"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	UseInMemory bool   `mapstructure:"use_in_memory"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// AssistantsConfig maps each mode, and each talk personality, to the id of
// the pre-configured assistant that backs it.
type AssistantsConfig struct {
	Random    string               `mapstructure:"random"`
	GPT       string               `mapstructure:"gpt"`
	Quiz      string               `mapstructure:"quiz"`
	Translate string               `mapstructure:"translate"`
	Resume    string               `mapstructure:"resume"`
	VoiceChat string               `mapstructure:"voice_chat"`
	Talk      TalkAssistantsConfig `mapstructure:"talk"`
}

type TalkAssistantsConfig struct {
	Einstein string `mapstructure:"einstein"`
	Napoleon string `mapstructure:"napoleon"`
	King     string `mapstructure:"king"`
	Mercury  string `mapstructure:"mercury"`
}

// ForMode returns the assistant id backing a mode. Talk mode has no single
// assistant; use ForPersonality.
func (a AssistantsConfig) ForMode(mode models.Mode) (string, bool) {
	switch mode {
	case models.ModeRandom:
		return a.Random, a.Random != ""
	case models.ModeGPT:
		return a.GPT, a.GPT != ""
	case models.ModeQuiz:
		return a.Quiz, a.Quiz != ""
	case models.ModeTranslate:
		return a.Translate, a.Translate != ""
	case models.ModeResume:
		return a.Resume, a.Resume != ""
	case models.ModeVoiceChat:
		return a.VoiceChat, a.VoiceChat != ""
	default:
		return "", false
	}
}

// ForPersonality returns the assistant id for a talk personality.
func (a AssistantsConfig) ForPersonality(p models.Personality) (string, bool) {
	switch p {
	case models.PersonalityEinstein:
		return a.Talk.Einstein, a.Talk.Einstein != ""
	case models.PersonalityNapoleon:
		return a.Talk.Napoleon, a.Talk.Napoleon != ""
	case models.PersonalityKing:
		return a.Talk.King, a.Talk.King != ""
	case models.PersonalityMercury:
		return a.Talk.Mercury, a.Talk.Mercury != ""
	default:
		return "", false
	}
}

type SpeechConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	LanguageCode    string `mapstructure:"language_code"`
}

type AudioConfig struct {
	InputDir     string `mapstructure:"input_dir"`
	ConvertedDir string `mapstructure:"converted_dir"`
	FFmpegPath   string `mapstructure:"ffmpeg_path"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	// Remove leading slash from path to get database name
	dbName := strings.TrimPrefix(u.Path, "/")

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   dbName,
		SSLMode:  "disable",
	}, nil
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.use_in_memory", false)
	v.SetDefault("speech.language_code", "en-US")
	v.SetDefault("audio.input_dir", "storage/input_audio")
	v.SetDefault("audio.converted_dir", "storage/converted_audio")
	v.SetDefault("audio.ffmpeg_path", "ffmpeg")

	// Enable environment variable support
	v.AutomaticEnv()

	// Read the config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		config.Database = dbConfig
	}

	// Get other environment variables
	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}

	if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}

	if creds := v.GetString("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		config.Speech.CredentialsFile = creds
	}

	if config.Telegram.Token == "" {
		return nil, fmt.Errorf("telegram token is not configured")
	}
	if config.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("openai api key is not configured")
	}

	return &config, nil
}
