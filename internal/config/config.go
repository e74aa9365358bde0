package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Pipeline PipelineConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	PipelineLogPath    string
	CorsAllowedOrigins string
	NatsURL            string // empty disables NATS; status events are then dispatched in process
	RedisURL           string // empty selects the process-local in-flight guard
	MetricsEnabled     bool
}

type DatabaseConfig struct {
	Connection string
	Verbose    bool
}

type AIConfig struct {
	LLMProvider       string // "ollama", "openai" or "huggingface"
	LLMModel          string
	LLMBaseURL        string
	EmbeddingProvider string // "ollama", "openai", "jina" or "gemini"
	EmbeddingModel    string
	EmbeddingBaseURL  string
	EmbeddingDim      int
	DefaultAPIKey     string
	CallTimeout       time.Duration
	RequestsPerSecond float64
	Burst             int
}

type PipelineConfig struct {
	TopicName     string
	ChunkSize     int
	ChunkOverlap  int
	MaxInputChars int
	MinSimilarity float64
	GuardTTL      time.Duration
	Workers       int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			PipelineLogPath:    getEnv("PIPELINE_LOG_PATH", "logs/pipeline.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			MetricsEnabled:     getEnvAsBool("METRICS_ENABLED", true),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			Verbose:    getEnvAsBool("DB_VERBOSE", false),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", "http://localhost:11434"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			EmbeddingBaseURL:  getEnv("EMBEDDING_BASE_URL", "http://localhost:11434"),
			EmbeddingDim:      getEnvAsInt("EMBEDDING_DIMENSION", 768),
			DefaultAPIKey:     getEnv("AI_DEFAULT_API_KEY", ""),
			CallTimeout:       getEnvAsDuration("AI_CALL_TIMEOUT", 30*time.Second),
			RequestsPerSecond: getEnvAsFloat("AI_REQUESTS_PER_SECOND", 5),
			Burst:             getEnvAsInt("AI_BURST", 5),
		},
		Pipeline: PipelineConfig{
			TopicName:     getEnv("PIPELINE_TOPIC_NAME", "MEMORY_PIPELINE"),
			ChunkSize:     getEnvAsInt("PIPELINE_CHUNK_SIZE", 1500),
			ChunkOverlap:  getEnvAsInt("PIPELINE_CHUNK_OVERLAP", 200),
			MaxInputChars: getEnvAsInt("PIPELINE_MAX_INPUT_CHARS", 3000),
			MinSimilarity: getEnvAsFloat("PIPELINE_MIN_SIMILARITY", 0.2),
			GuardTTL:      getEnvAsDuration("PIPELINE_GUARD_TTL", 10*time.Minute),
			Workers:       getEnvAsInt("PIPELINE_WORKERS", 4),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("45s") or plain seconds ("45").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
