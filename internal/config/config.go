package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Ai          AIConfig
	VectorStore VectorStoreConfig
	History     HistoryConfig
	Rag         RAGConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string // empty disables the auth guard
	IngestTopic        string
	UploadDir          string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider       string // "ollama" or "huggingface"
	LLMModel          string
	LLMBaseURL        string
	LLMAPIKey         string
	LLMTimeout        time.Duration
	LLMMaxRetries     int
	EmbeddingProvider string // only "ollama" today
	OllamaBaseURL     string
	OllamaModel       string
}

type VectorStoreConfig struct {
	Driver     string // "qdrant", "pgvector" or "memory"
	QdrantURL  string
	QdrantKey  string
	Collection string
	Dimension  int
}

type HistoryConfig struct {
	Store string // "memory", "redis" or "postgres"
	TTL   time.Duration
}

type RAGConfig struct {
	TopK              int
	StrictVerdict     bool
	ChunkSize         int
	ChunkOverlap      int
	IngestConcurrency int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	ollamaURL := getEnv("OLLAMA_BASE_URL", "http://localhost:11434")

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			IngestTopic:        getEnv("INGEST_DOCUMENTS_TOPIC_NAME", "INGEST_DOCUMENTS"),
			UploadDir:          getEnv("UPLOAD_DIR", os.TempDir()),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "deepseek-r1:1.5b"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ollamaURL),
			LLMAPIKey:         getEnv("LLM_API_KEY", ""),
			LLMTimeout:        getEnvAsDuration("LLM_TIMEOUT", 120*time.Second),
			LLMMaxRetries:     getEnvAsInt("LLM_MAX_RETRIES", 0),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     ollamaURL,
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "all-minilm"),
		},
		VectorStore: VectorStoreConfig{
			Driver:     strings.ToLower(getEnv("VECTOR_STORE", "qdrant")),
			QdrantURL:  getEnv("QDRANT_URL", "http://localhost:6333"),
			QdrantKey:  getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "deep_seek_storage"),
			Dimension:  getEnvAsInt("EMBEDDING_DIMENSION", 384),
		},
		History: HistoryConfig{
			Store: strings.ToLower(getEnv("HISTORY_STORE", "memory")),
			TTL:   getEnvAsDuration("HISTORY_TTL", 24*time.Hour),
		},
		Rag: RAGConfig{
			TopK:              getEnvAsInt("RAG_TOP_K", 3),
			StrictVerdict:     getEnvAsBool("RETRIEVAL_STRICT_VERDICT", false),
			ChunkSize:         getEnvAsInt("CHUNK_SIZE", 2000),
			ChunkOverlap:      getEnvAsInt("CHUNK_OVERLAP", 400),
			IngestConcurrency: getEnvAsInt("INGEST_CONCURRENCY", 4),
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
