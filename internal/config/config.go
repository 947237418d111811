package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default values
const (
	DefaultHost = "0.0.0.0"
	DefaultPort = "8080"

	DefaultTrustedProxies = "127.0.0.1,::1"

	DefaultMaxUploadBytes = 20 << 20 // 20MB per ingested declaration

	// Chunking
	DefaultChunkSize       = 800
	DefaultChunkOverlap    = 100
	DefaultMinChunkSize    = 50
	DefaultPreserveStructure = true

	// Hybrid search / fusion
	DefaultRRFConstant    = 60
	DefaultFusionAlpha    = 0.5
	DefaultBM25K1         = 1.5
	DefaultBM25B          = 0.75
	DefaultSearchTopK     = 10
	DefaultOversampleMult = 2

	// Reranking
	DefaultComplexityThreshold = 0.7
	DefaultRerankTopK          = 10

	// Temporal adjustment
	DefaultTemporalWindowDays = 365
	DefaultTemporalMaxBonus   = 0.1

	// Vector index
	DefaultVectorSize     = 1536
	DefaultQdrantGRPCPort = 6334
	DefaultQdrantHost     = "localhost"

	// External model calls (embeddings, reranker scorer)
	DefaultModelRequestTimeout = 30 * time.Second
	DefaultModelMaxRetries     = 3
	DefaultModelRetryBaseDelay = 1 * time.Second

	// Circuit breaker
	DefaultCBFailureThreshold = 5
	DefaultCBResetTimeout     = 30 * time.Second
	DefaultCBHalfOpenMax      = 1

	// Schema registry
	DefaultTenantConfigDir = "config/tenants"

	// Document blob store
	DefaultDocumentStoreDir = ".data/documents"
)

type Config struct {
	// Server
	Host           string
	Port           string
	CORSOrigins    []string
	TrustedProxies []string

	// Ingestion
	MaxUploadBytes int64

	// Chunking
	ChunkSize         int
	ChunkOverlap      int
	MinChunkSize      int
	PreserveStructure bool

	// Hybrid search
	RRFConstant    int
	FusionAlpha    float64
	BM25K1         float64
	BM25B          float64
	SearchTopK     int
	OversampleMult int

	// Reranking
	ComplexityThreshold float64
	RerankTopK          int

	// Temporal adjustment
	TemporalEnabled    bool
	TemporalWindowDays int
	TemporalMaxBonus   float64

	// Explainability
	ExplainabilityEnabled bool

	// Vector index (Qdrant)
	QdrantHost     string
	QdrantPort     int
	QdrantGRPCPort int
	QdrantUseTLS   bool
	VectorSize     int
	CollectionName string

	// Metadata store (Postgres)
	MetadataDSN string

	// Document blob store
	DocumentStoreDir string

	// Schema registry
	TenantConfigDir string

	// External model provider (embeddings + reranker scorer)
	OpenAIAPIKey        string
	EmbeddingModel      string
	RerankModelSimple   string
	RerankModelComplex  string
	ModelRequestTimeout time.Duration
	ModelMaxRetries     int
	ModelRetryBaseDelay time.Duration

	// Circuit breaker
	CBFailureThreshold int
	CBResetTimeout     time.Duration
	CBHalfOpenMax      int
}

func LoadConfig() *Config {
	corsOrigins := getEnv("CORS_ORIGINS", "http://localhost:3000")
	parsedCORSOrigins := splitCSV(corsOrigins)
	if len(parsedCORSOrigins) == 0 {
		parsedCORSOrigins = []string{"http://localhost:3000"}
	}

	openAIAPIKey := getEnv("OPENAI_API_KEY", "")
	if openAIAPIKey != "" {
		slog.Info("model provider enabled (OPENAI_API_KEY is set)")
	} else {
		slog.Info("model provider disabled (OPENAI_API_KEY not set); vector/rerank calls will fail fast")
	}

	return &Config{
		Host:           getEnv("HOST", DefaultHost),
		Port:           getEnv("PORT", DefaultPort),
		CORSOrigins:    parsedCORSOrigins,
		TrustedProxies: splitCSV(getEnv("TRUSTED_PROXIES", DefaultTrustedProxies)),

		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),

		ChunkSize:         getEnvInt("CHUNK_SIZE", DefaultChunkSize),
		ChunkOverlap:      getEnvInt("CHUNK_OVERLAP", DefaultChunkOverlap),
		MinChunkSize:      getEnvInt("MIN_CHUNK_SIZE", DefaultMinChunkSize),
		PreserveStructure: getEnvBool("PRESERVE_STRUCTURE", DefaultPreserveStructure),

		RRFConstant:    getEnvInt("RRF_CONSTANT", DefaultRRFConstant),
		FusionAlpha:    getEnvFloat64("FUSION_ALPHA", DefaultFusionAlpha),
		BM25K1:         getEnvFloat64("BM25_K1", DefaultBM25K1),
		BM25B:          getEnvFloat64("BM25_B", DefaultBM25B),
		SearchTopK:     getEnvInt("SEARCH_TOP_K", DefaultSearchTopK),
		OversampleMult: getEnvInt("SEARCH_OVERSAMPLE_MULT", DefaultOversampleMult),

		ComplexityThreshold: getEnvFloat64("RERANK_COMPLEXITY_THRESHOLD", DefaultComplexityThreshold),
		RerankTopK:          getEnvInt("RERANK_TOP_K", DefaultRerankTopK),

		TemporalEnabled:    getEnvBool("TEMPORAL_ENABLED", true),
		TemporalWindowDays: getEnvInt("TEMPORAL_WINDOW_DAYS", DefaultTemporalWindowDays),
		TemporalMaxBonus:   getEnvFloat64("TEMPORAL_MAX_BONUS", DefaultTemporalMaxBonus),

		ExplainabilityEnabled: getEnvBool("EXPLAINABILITY_ENABLED", true),

		QdrantHost:     getEnv("QDRANT_HOST", DefaultQdrantHost),
		QdrantPort:     getEnvInt("QDRANT_PORT", 6333),
		QdrantGRPCPort: getEnvInt("QDRANT_GRPC_PORT", DefaultQdrantGRPCPort),
		QdrantUseTLS:   getEnvBool("QDRANT_USE_TLS", false),
		VectorSize:     getEnvInt("VECTOR_SIZE", DefaultVectorSize),
		CollectionName: getEnv("QDRANT_COLLECTION", "declarations"),

		MetadataDSN: getEnv("METADATA_DSN", ""),

		DocumentStoreDir: getEnv("DOCUMENT_STORE_DIR", DefaultDocumentStoreDir),
		TenantConfigDir:  getEnv("TENANT_CONFIG_DIR", DefaultTenantConfigDir),

		OpenAIAPIKey:        openAIAPIKey,
		EmbeddingModel:      getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		RerankModelSimple:   getEnv("RERANK_MODEL_SIMPLE", "gpt-4o-mini"),
		RerankModelComplex:  getEnv("RERANK_MODEL_COMPLEX", "gpt-4o"),
		ModelRequestTimeout: getEnvDuration("MODEL_REQUEST_TIMEOUT", DefaultModelRequestTimeout),
		ModelMaxRetries:     getEnvInt("MODEL_MAX_RETRIES", DefaultModelMaxRetries),
		ModelRetryBaseDelay: getEnvDuration("MODEL_RETRY_BASE_DELAY", DefaultModelRetryBaseDelay),

		CBFailureThreshold: getEnvInt("CB_FAILURE_THRESHOLD", DefaultCBFailureThreshold),
		CBResetTimeout:     getEnvDuration("CB_RESET_TIMEOUT", DefaultCBResetTimeout),
		CBHalfOpenMax:      getEnvInt("CB_HALF_OPEN_MAX", DefaultCBHalfOpenMax),
	}
}

// ValidateConfig checks config values and returns an error on failure.
// Call after LoadConfig to fail fast on invalid configuration.
func ValidateConfig(cfg *Config) error {
	if cfg.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if cfg.Port != "" {
		if _, err := strconv.Atoi(cfg.Port); err != nil {
			return fmt.Errorf("PORT must be numeric, got %q", cfg.Port)
		}
	}
	if len(cfg.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must have at least one origin")
	}
	for _, origin := range cfg.CORSOrigins {
		if origin == "" || !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("CORS_ORIGINS entry %q must be a valid http(s) URL", origin)
		}
	}
	if len(cfg.TrustedProxies) == 0 {
		return fmt.Errorf("TRUSTED_PROXIES must have at least one entry")
	}
	for _, proxy := range cfg.TrustedProxies {
		if proxy == "" {
			return fmt.Errorf("TRUSTED_PROXIES must not contain empty entries")
		}
		if net.ParseIP(proxy) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(proxy); err == nil {
			continue
		}
		return fmt.Errorf("TRUSTED_PROXIES entry %q must be a valid IP or CIDR", proxy)
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", cfg.ChunkOverlap, cfg.ChunkSize)
	}
	if cfg.MinChunkSize <= 0 || cfg.MinChunkSize > cfg.ChunkSize {
		return fmt.Errorf("MIN_CHUNK_SIZE must be positive and not exceed CHUNK_SIZE")
	}
	if cfg.FusionAlpha < 0 || cfg.FusionAlpha > 1 {
		return fmt.Errorf("FUSION_ALPHA must be in range 0..1")
	}
	if cfg.RRFConstant <= 0 {
		return fmt.Errorf("RRF_CONSTANT must be positive")
	}
	if cfg.BM25K1 <= 0 || cfg.BM25B < 0 || cfg.BM25B > 1 {
		return fmt.Errorf("BM25_K1 must be positive and BM25_B must be in range 0..1")
	}
	if cfg.SearchTopK <= 0 || cfg.OversampleMult <= 0 {
		return fmt.Errorf("SEARCH_TOP_K and SEARCH_OVERSAMPLE_MULT must be positive")
	}
	if cfg.ComplexityThreshold < 0 || cfg.ComplexityThreshold > 1 {
		return fmt.Errorf("RERANK_COMPLEXITY_THRESHOLD must be in range 0..1")
	}
	if cfg.VectorSize <= 0 {
		return fmt.Errorf("VECTOR_SIZE must be positive")
	}
	if cfg.ModelMaxRetries < 0 {
		return fmt.Errorf("MODEL_MAX_RETRIES must not be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt64(key string, fallback int64) int64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat64(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var items []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
