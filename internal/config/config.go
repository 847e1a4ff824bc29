package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Tesseract-Nexus/go-shared/secrets"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store backends
const (
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
)

type Config struct {
	// Server
	Port        string
	Environment string
	LogFile     string

	// Catalog store
	TableKey       string
	StoreBackend   string
	StoreWriteRate float64

	// AWS
	Region           string
	AccessKeyID      string
	SecretAccessKey  string
	DynamoDBEndpoint string
	S3BucketName     string
	S3Endpoint       string

	// Images
	ImageRoot              string
	ImageUploadConcurrency int
	LinkImageUpload        bool

	// Synchronization
	VerifySkuExists bool
	SourceEncoding  string

	// Database (postgres backend)
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisURL      string
	BrandCacheTTL time.Duration

	// Events
	NATSURL  string
	TenantID string

	// Auth
	ImportAPIToken string
}

func Load() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	concurrency, _ := strconv.Atoi(getEnv("IMAGE_UPLOAD_CONCURRENCY", "4"))
	writeRate, _ := strconv.ParseFloat(getEnv("STORE_WRITE_RATE", "0"), 64)
	linkImages, _ := strconv.ParseBool(getEnv("LINK_IMAGE_UPLOAD", "false"))
	verifySkus, _ := strconv.ParseBool(getEnv("VERIFY_SKU_EXISTS", "false"))
	brandCacheTTL, err := time.ParseDuration(getEnv("BRAND_CACHE_TTL", "30m"))
	if err != nil {
		brandCacheTTL = 30 * time.Minute
	}
	if concurrency < 1 {
		concurrency = 4
	}

	return &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogFile:     getEnv("LOG_FILE", ""),

		// Catalog store
		TableKey:       getEnv("TABLE_KEY", ""),
		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", BackendDynamoDB)),
		StoreWriteRate: writeRate,

		// AWS - empty keys fall back to the default credential chain
		Region:           getEnv("REGION", "us-east-1"),
		AccessKeyID:      getEnv("ACCESS_KEY_ID", ""),
		SecretAccessKey:  getEnv("SECRET_ACCESS_KEY", ""),
		DynamoDBEndpoint: getEnv("DYNAMODB_ENDPOINT", ""),
		S3BucketName:     getEnv("AWS_S3_BUCKET_NAME", ""),
		S3Endpoint:       getEnv("S3_ENDPOINT", ""),

		// Images
		ImageRoot:              getEnv("IMAGE_ROOT", "."),
		ImageUploadConcurrency: concurrency,
		LinkImageUpload:        linkImages,

		// Synchronization
		VerifySkuExists: verifySkus,
		SourceEncoding:  getEnv("SOURCE_ENCODING", "utf-8"),

		// Database - fetch password from GCP Secret Manager if enabled
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: secrets.GetDBPassword(),
		DBName:     getEnv("DB_NAME", "catalog_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", ""),
		BrandCacheTTL: brandCacheTTL,

		// Events
		NATSURL:  getEnv("NATS_URL", ""),
		TenantID: getEnv("TENANT_ID", ""),

		// Auth
		ImportAPIToken: getEnv("IMPORT_API_TOKEN", ""),
	}
}

// Validate reports configuration that cannot produce a working store
func (c *Config) Validate() error {
	if c.TableKey == "" {
		return fmt.Errorf("TABLE_KEY is required")
	}
	switch c.StoreBackend {
	case BackendDynamoDB, BackendPostgres:
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", c.StoreBackend)
	}
	if c.LinkImageUpload && c.S3BucketName == "" {
		return fmt.Errorf("AWS_S3_BUCKET_NAME is required when LINK_IMAGE_UPLOAD is enabled")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// InitDB opens the postgres connection used by the postgres store backend
func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	var logLevel logger.LogLevel
	if cfg.IsProduction() {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Connected to catalog database")
	return db, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
