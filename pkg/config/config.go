package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int

	LogJSON bool
	Debug   bool

	// GigaChat
	GigaChatAuthKey  string // base64(client_id:client_secret) для Basic-авторизации
	GigaChatScope    string
	GigaChatModels   []string // цепочка фолбэка, по порядку
	GigaChatOAuthURL string
	GigaChatAPIURL   string
	GigaChatInsecure bool

	// Матчинг
	MinTextLen       int
	WeightEducation  float64
	WeightExperience float64
	WeightHardSkills float64
	WeightSoftSkills float64

	// Журнал запросов (jsonl)
	RequestLogPath     string
	RequestLogFullPath string

	// Телеграм-уведомления (опционально)
	TelegramBotToken string
	TelegramChatIDs  []string
	TelegramMaxLen   int

	HistoryLimitDefault int
	HistoryLimitMax     int
}

// Load reads environment variables, optionally from a .env file if present.
func Load() Config {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change"),
		JWTIssuer:     getEnv("JWT_ISSUER", "matcher"),
		JWTTTLMinutes: getEnvInt("JWT_TTL_MINUTES", 60),

		LogJSON: getEnvBool("LOG_JSON", true),
		Debug:   getEnvBool("DEBUG", false),

		GigaChatAuthKey:  os.Getenv("GIGACHAT_AUTH_B64"),
		GigaChatScope:    getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
		GigaChatModels:   getEnvList("GIGACHAT_MODELS", "GigaChat-Max,GigaChat-Pro,GigaChat"),
		GigaChatOAuthURL: getEnv("GIGACHAT_OAUTH_URL", "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"),
		GigaChatAPIURL:   getEnv("GIGACHAT_API_URL", "https://gigachat.devices.sberbank.ru/api/v1/chat/completions"),
		GigaChatInsecure: getEnvBool("GIGACHAT_INSECURE", false),

		MinTextLen:       getEnvInt("MIN_TEXT_LEN", 100),
		WeightEducation:  getEnvFloat("WEIGHT_EDUCATION", 25),
		WeightExperience: getEnvFloat("WEIGHT_EXPERIENCE", 25),
		WeightHardSkills: getEnvFloat("WEIGHT_HARD_SKILLS", 40),
		WeightSoftSkills: getEnvFloat("WEIGHT_SOFT_SKILLS", 10),

		RequestLogPath:     getEnv("REQUEST_LOG_PATH", ""),
		RequestLogFullPath: getEnv("REQUEST_LOG_FULL_PATH", ""),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatIDs:  getEnvList("TELEGRAM_CHAT_IDS", ""),
		TelegramMaxLen:   getEnvInt("TELEGRAM_MAX_LEN", 3500),

		HistoryLimitDefault: getEnvInt("HISTORY_LIMIT_DEFAULT", 20),
		HistoryLimitMax:     getEnvInt("HISTORY_LIMIT_MAX", 100),
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// getEnvList разбирает список, разделённый запятыми или точками с запятой.
func getEnvList(key, def string) []string {
	raw := getEnv(key, def)
	raw = strings.ReplaceAll(raw, ";", ",")
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
