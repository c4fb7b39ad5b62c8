package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Assets   AssetsConfig
	Database DatabaseConfig
	Redis    RedisConfig
	LLM      LLMConfig
	Speech   SpeechConfig
	STT      STTConfig
	TTS      TTSConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

type AssetsConfig struct {
	FrontendDir     string
	TranslationsDir string
	QuestionsDir    string
}

type DatabaseConfig struct {
	URL      string // postgres://, file: or libsql:// URL; empty selects Path
	Path     string // libSQL file, used when URL is not a postgres URL
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string // empty disables redis
	Password string
	DB       int
}

type LLMConfig struct {
	Provider     string // gemini, openai, anthropic, ollama
	Model        string
	Temperature  float64
	MaxTokens    int
	GeminiKey    string
	OpenAIKey    string
	OpenAIURL    string // optional OpenAI-compatible base URL
	AnthropicKey string
	OllamaURL    string
}

// SpeechConfig holds the Google Cloud credentials shared by the google TTS and STT backends.
type SpeechConfig struct {
	CredentialsFile string
}

type STTConfig struct {
	Backend       string // "google", "openai" or "local"
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	LocalBaseURL  string // default: "http://localhost:8178"
}

type TTSConfig struct {
	Backend       string // "google", "openai" or "local"
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	OpenAIVoice   string
	LocalBinPath  string // default: "piper"
	LocalModel    string // required when backend=local
}

type LogConfig struct {
	Level      string
	Format     string // "json" or "text"
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ConfigurationError reports settings the service cannot start without.
type ConfigurationError struct {
	Missing []string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing required env vars: %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Load reads the optional .env file and then the process environment.
// Variables already present in the environment win over the file.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	port, err := getEnvInt("SERVER_PORT", 5000)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	rps, err := getEnvFloat("RATE_LIMIT_RPS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	burst, err := getEnvInt("RATE_LIMIT_BURST", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 1)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	temperature, err := getEnvFloat("LLM_TEMPERATURE", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TEMPERATURE: %w", err)
	}

	maxTokens, err := getEnvInt("LLM_MAX_TOKENS", 4096)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_TOKENS: %w", err)
	}

	logMaxSize, err := getEnvInt("LOG_MAX_SIZE_MB", 50)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_MAX_SIZE_MB: %w", err)
	}

	logMaxBackups, err := getEnvInt("LOG_MAX_BACKUPS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_MAX_BACKUPS: %w", err)
	}

	logMaxAge, err := getEnvInt("LOG_MAX_AGE_DAYS", 28)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_MAX_AGE_DAYS: %w", err)
	}

	frontendDir := getEnv("FRONTEND_DIR", "frontend")
	provider := strings.ToLower(getEnv("LLM_PROVIDER", "gemini"))

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           port,
			CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
			RateLimitRPS:   rps,
			RateLimitBurst: burst,
		},
		Assets: AssetsConfig{
			FrontendDir:     frontendDir,
			TranslationsDir: getEnv("TRANSLATIONS_DIR", filepath.Join(frontendDir, "translations")),
			QuestionsDir:    getEnv("QUESTIONS_DIR", filepath.Join(frontendDir, "questions")),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Path:     getEnv("DATABASE_PATH", filepath.Join("instance", "database.db")),
			MaxConns: maxConns,
			MinConns: minConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		LLM: LLMConfig{
			Provider:     provider,
			Model:        getEnv("LLM_MODEL", defaultModel(provider)),
			Temperature:  temperature,
			MaxTokens:    maxTokens,
			GeminiKey:    getEnv("GEMINI_API_KEY", ""),
			OpenAIKey:    getEnv("OPENAI_API_KEY", ""),
			OpenAIURL:    getEnv("OPENAI_BASE_URL", ""),
			AnthropicKey: getEnv("ANTHROPIC_API_KEY", ""),
			OllamaURL:    getEnv("OLLAMA_URL", "http://localhost:11434"),
		},
		Speech: SpeechConfig{
			CredentialsFile: getEnv("GCP_KEY_JSON_PATH", ""),
		},
		STT: STTConfig{
			Backend:       strings.ToLower(getEnv("STT_BACKEND", "google")),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("STT_OPENAI_BASE_URL", ""),
			OpenAIModel:   getEnv("STT_OPENAI_MODEL", ""),
			LocalBaseURL:  getEnv("STT_LOCAL_BASE_URL", "http://localhost:8178"),
		},
		TTS: TTSConfig{
			Backend:       strings.ToLower(getEnv("TTS_BACKEND", "google")),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("TTS_OPENAI_BASE_URL", ""),
			OpenAIModel:   getEnv("TTS_OPENAI_MODEL", ""),
			OpenAIVoice:   getEnv("TTS_OPENAI_VOICE", ""),
			LocalBinPath:  getEnv("TTS_LOCAL_PIPER_BIN", "piper"),
			LocalModel:    getEnv("TTS_LOCAL_PIPER_MODEL", ""),
		},
		Log: LogConfig{
			Level:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format:     strings.ToLower(getEnv("LOG_FORMAT", "json")),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  logMaxSize,
			MaxBackups: logMaxBackups,
			MaxAgeDays: logMaxAge,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// UsesPostgres reports whether DATABASE_URL points at a postgres server.
func (c DatabaseConfig) UsesPostgres() bool {
	return strings.HasPrefix(c.URL, "postgres://") || strings.HasPrefix(c.URL, "postgresql://")
}

// UsesLibSQLURL reports whether DATABASE_URL names a libSQL database.
func (c DatabaseConfig) UsesLibSQLURL() bool {
	return strings.HasPrefix(c.URL, "file:") || strings.HasPrefix(c.URL, "libsql://")
}

// LibSQLDSN is the libSQL database to open when postgres is not configured.
func (c DatabaseConfig) LibSQLDSN() string {
	if c.UsesLibSQLURL() {
		return c.URL
	}
	return c.Path
}

// Validate checks that the secrets for the configured vendors are present.
func (c *Config) Validate() error {
	var missing []string

	if c.Database.URL != "" && !c.Database.UsesPostgres() && !c.Database.UsesLibSQLURL() {
		return &ConfigurationError{Err: fmt.Errorf("unsupported DATABASE_URL scheme in %q (want postgres://, file: or libsql://)", redactURL(c.Database.URL))}
	}

	switch c.LLM.Provider {
	case "gemini":
		if c.LLM.GeminiKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	case "openai":
		if c.LLM.OpenAIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case "anthropic":
		if c.LLM.AnthropicKey == "" {
			missing = append(missing, "ANTHROPIC_API_KEY")
		}
	case "ollama":
		if c.LLM.OllamaURL == "" {
			missing = append(missing, "OLLAMA_URL")
		}
	default:
		return &ConfigurationError{Err: fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)}
	}

	for _, backend := range []string{c.TTS.Backend, c.STT.Backend} {
		switch backend {
		case "google", "openai", "local":
		default:
			return &ConfigurationError{Err: fmt.Errorf("unknown speech backend %q", backend)}
		}
	}

	if (c.TTS.Backend == "google" || c.STT.Backend == "google") && c.Speech.CredentialsFile == "" {
		missing = append(missing, "GCP_KEY_JSON_PATH")
	}
	if (c.TTS.Backend == "openai" || c.STT.Backend == "openai") && c.TTS.OpenAIKey == "" && !contains(missing, "OPENAI_API_KEY") {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.TTS.Backend == "local" && c.TTS.LocalModel == "" {
		missing = append(missing, "TTS_LOCAL_PIPER_MODEL")
	}

	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// redactURL drops everything after the scheme so credentials never reach logs.
func redactURL(u string) string {
	if scheme, _, ok := strings.Cut(u, "://"); ok {
		return scheme + "://..."
	}
	if len(u) > 8 {
		return u[:8] + "..."
	}
	return u
}

func defaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o"
	case "anthropic":
		return "claude-sonnet-4-20250514"
	case "ollama":
		return "llama3"
	default:
		return "gemini-1.5-pro-latest"
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
