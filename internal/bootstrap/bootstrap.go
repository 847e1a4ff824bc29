// Package bootstrap builds the collaborators shared by the HTTP service and the CLI.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"catalog-sync-service/internal/catalog"
	"catalog-sync-service/internal/config"
	"catalog-sync-service/internal/events"
	"catalog-sync-service/internal/images"
	"catalog-sync-service/internal/repository"
	"github.com/Tesseract-Nexus/go-shared/secrets"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Services holds everything a synchronization run needs.
// Uploader and Publisher are nil when their feature is disabled.
type Services struct {
	Repo      repository.CatalogRepository
	Uploader  catalog.ImageUploader
	Publisher catalog.EventPublisher

	closers []func()
}

// Close releases connections in reverse order of creation
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// NewLogger returns the JSON logger, tee'd to a rotated file when LOG_FILE is set
func NewLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.IsProduction() {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	if cfg.LogFile != "" {
		logger.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}))
	}
	return logger
}

// LoadAWSConfig resolves region and credentials. Static keys win over the default chain.
func LoadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}

// NewServices wires the catalog store, image uploader and event publisher from cfg
func NewServices(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Services, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	svc := &Services{}
	tables := repository.NewTables(cfg.TableKey)

	var awsCfg aws.Config
	if cfg.StoreBackend == config.BackendDynamoDB || cfg.LinkImageUpload {
		var err error
		awsCfg, err = LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	repo, err := newStore(cfg, awsCfg, tables)
	if err != nil {
		return nil, err
	}

	if redisClient := connectRedis(ctx, cfg, logger); redisClient != nil {
		svc.closers = append(svc.closers, func() { redisClient.Close() })
		repo = repository.NewCachedCatalogRepository(repo, redisClient, tables, cfg.BrandCacheTTL, logger)
		logger.Info("Brand lookups cached in Redis")
	}

	if cfg.StoreWriteRate > 0 {
		repo = repository.NewThrottledCatalogRepository(repo, cfg.StoreWriteRate)
		logger.WithField("perSecond", cfg.StoreWriteRate).Info("Store calls throttled")
	}
	svc.Repo = repo

	if cfg.LinkImageUpload {
		svc.Uploader = newImageUploader(cfg, awsCfg, logger)
	}

	// Initialize event publisher only if NATS_URL is set
	if cfg.NATSURL != "" {
		publisher, err := events.NewPublisher(cfg.NATSURL, cfg.TenantID, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize events publisher (continuing without event publishing)")
		} else {
			svc.Publisher = publisher
			svc.closers = append(svc.closers, publisher.Close)
			logger.Info("Events publisher initialized (NATS connected)")
		}
	} else {
		logger.Debug("NATS_URL not set, skipping event publishing")
	}

	return svc, nil
}

func newStore(cfg *config.Config, awsCfg aws.Config, tables repository.Tables) (repository.CatalogRepository, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := config.InitDB(cfg)
		if err != nil {
			return nil, err
		}
		if err := repository.Migrate(db, tables); err != nil {
			return nil, err
		}
		return repository.NewPostgresCatalogRepository(db, tables), nil
	default:
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.DynamoDBEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
			}
		})
		return repository.NewDynamoCatalogRepository(client, tables), nil
	}
}

// connectRedis returns nil when Redis is not configured or not reachable
func connectRedis(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.WithError(err).Warn("Failed to parse Redis URL (continuing without brand cache)")
		return nil
	}
	// Set Redis password from GCP Secret Manager
	if password := secrets.GetRedisPassword(); password != "" {
		redisOpts.Password = password
	}
	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).Warn("Failed to connect to Redis (continuing without brand cache)")
		client.Close()
		return nil
	}
	return client
}

func newImageUploader(cfg *config.Config, awsCfg aws.Config, logger *logrus.Logger) *images.S3Uploader {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	presigner := s3.NewPresignClient(client, s3.WithPresignExpires(images.PresignExpiry))
	return images.NewS3Uploader(presigner, cfg.S3BucketName, cfg.ImageRoot, cfg.ImageUploadConcurrency, logger)
}
