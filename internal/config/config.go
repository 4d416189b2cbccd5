package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const placeholderToken = "hf_your_token_here"

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	Port           string
	HFToken        string
	HFBaseURL      string
	TextModel      string
	VisionModel    string
	FallbackModels []string
	MaxTokens      int
	Temperature    float32
	MaxUploadBytes int64
	SearchBaseURL  string
	SearchTimeout  int
	LogLevel       string
	StaticDir      string
	CORSOrigins    []string
}

// Load reads configuration from the environment, providing sensible defaults.
func Load() Config {
	// Load .env file if it exists (useful for development)
	_ = godotenv.Load()
	return Config{
		Port:        getEnv("PORT", "3000"),
		HFToken:     os.Getenv("HUGGINGFACE_TOKEN"),
		HFBaseURL:   getEnv("HF_BASE_URL", "https://router.huggingface.co/v1"),
		TextModel:   getEnv("TEXT_MODEL", "Qwen/Qwen2.5-72B-Instruct"),
		VisionModel: getEnv("VISION_MODEL", "Qwen/Qwen2.5-VL-7B-Instruct"),
		FallbackModels: getEnvList("FALLBACK_MODELS", []string{
			"meta-llama/Llama-3.1-8B-Instruct",
			"microsoft/Phi-3-mini-4k-instruct",
			"HuggingFaceH4/zephyr-7b-beta",
		}),
		MaxTokens:      getEnvInt("MAX_TOKENS", 2048),
		Temperature:    float32(getEnvFloat("TEMPERATURE", 0.7)),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		SearchBaseURL:  getEnv("SEARCH_BASE_URL", "https://api.duckduckgo.com/"),
		SearchTimeout:  getEnvInt("SEARCH_TIMEOUT_SECONDS", 30),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		StaticDir:      getEnv("STATIC_DIR", "./static"),
		CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"*"}),
	}
}

// TokenConfigured reports whether a usable inference credential was supplied.
func (c Config) TokenConfigured() bool {
	return c.HFToken != "" && c.HFToken != placeholderToken
}

// Models returns the primary text model followed by the fallbacks.
func (c Config) Models() []string {
	models := make([]string, 0, len(c.FallbackModels)+1)
	models = append(models, c.TextModel)
	for _, m := range c.FallbackModels {
		if m != "" && m != c.TextModel {
			models = append(models, m)
		}
	}
	return models
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil && v > 0 {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil && v >= 0 {
		return v
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
