package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ScorerHybrid     = "hybrid"
	ScorerSimilarity = "similarity"

	SourceLocal = "local"
	SourceMinIO = "minio"
)

type Config struct {
	Port    string
	GinMode string

	Scorer      string
	ModelPath   string
	CatalogPath string

	EnableDB    bool
	DatabaseURL string

	RedisAddr string
	RedisDB   int
	CacheTTL  time.Duration

	JWTSecret string

	ArtifactSource string
	ArtifactDir    string
	MinIO          MinIOConfig

	ExposeErrorDetails bool
	LogLevel           string
	LogFormat          string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load reads .env, an optional config file and the environment, in that order of
// increasing precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.AddConfigPath("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        v.GetString("PORT"),
		GinMode:     v.GetString("GIN_MODE"),
		Scorer:      strings.ToLower(strings.TrimSpace(v.GetString("SCORER"))),
		ModelPath:   v.GetString("MODEL_PATH"),
		CatalogPath: v.GetString("CATALOG_PATH"),
		EnableDB:    v.GetBool("ENABLE_DB"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		RedisAddr:   v.GetString("REDIS_ADDR"),
		RedisDB:     v.GetInt("REDIS_DB"),
		CacheTTL:    v.GetDuration("CACHE_TTL"),
		JWTSecret:   v.GetString("JWT_SECRET"),

		ArtifactSource: strings.ToLower(v.GetString("ARTIFACT_SOURCE")),
		ArtifactDir:    v.GetString("ARTIFACT_DIR"),
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
		},

		ExposeErrorDetails: v.GetBool("EXPOSE_ERROR_DETAILS"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
	}

	switch cfg.Scorer {
	case ScorerHybrid, ScorerSimilarity:
	default:
		return nil, fmt.Errorf("unknown SCORER %q (want %q or %q)", cfg.Scorer, ScorerHybrid, ScorerSimilarity)
	}

	if cfg.ModelPath == "" {
		cfg.ModelPath = defaultModelPath(cfg.Scorer)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = buildDSN(v)
	}

	switch cfg.ArtifactSource {
	case SourceLocal:
	case SourceMinIO:
		if cfg.MinIO.Bucket == "" || cfg.MinIO.Endpoint == "" {
			return nil, fmt.Errorf("MINIO_ENDPOINT and MINIO_BUCKET are required when ARTIFACT_SOURCE=minio")
		}
	default:
		return nil, fmt.Errorf("unknown ARTIFACT_SOURCE %q", cfg.ArtifactSource)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("SCORER", ScorerSimilarity)
	v.SetDefault("CATALOG_PATH", "final_dataset.csv")
	v.SetDefault("ENABLE_DB", false)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_NAME", "symptom_diagnosing_tool_db")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", 10*time.Minute)

	v.SetDefault("ARTIFACT_SOURCE", SourceLocal)
	v.SetDefault("ARTIFACT_DIR", ".")

	v.SetDefault("EXPOSE_ERROR_DETAILS", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

func defaultModelPath(scorer string) string {
	if scorer == ScorerHybrid {
		return "hybrid_model_package.json"
	}
	return "similarity_model_package.json"
}

func buildDSN(v *viper.Viper) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(v.GetString("DB_USER"), v.GetString("DB_PASSWORD")),
		Host:     v.GetString("DB_HOST") + ":" + v.GetString("DB_PORT"),
		Path:     "/" + v.GetString("DB_NAME"),
		RawQuery: "sslmode=" + v.GetString("DB_SSLMODE"),
	}
	return u.String()
}
