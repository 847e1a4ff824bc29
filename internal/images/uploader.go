package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"catalog-sync-service/internal/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidImageType is returned when a row references a file that is not jpeg, jpg or png
var ErrInvalidImageType = errors.New("image type is invalid, the extension must be jpeg, jpg or png")

// PresignExpiry is how long a presigned upload URL stays valid
const PresignExpiry = time.Hour

// DefaultConcurrency bounds the uploads of one row
const DefaultConcurrency = 4

var allowedExtensions = map[string]bool{
	"jpeg": true,
	"jpg":  true,
	"png":  true,
}

// Presigner is implemented by *s3.PresignClient
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var _ Presigner = (*s3.PresignClient)(nil)

// S3Uploader reads row images from the local image root and PUTs them through presigned URLs
type S3Uploader struct {
	presigner   Presigner
	httpClient  *http.Client
	bucket      string
	root        string
	concurrency int
	logger      *logrus.Entry
}

func NewS3Uploader(presigner Presigner, bucket, root string, concurrency int, logger *logrus.Logger) *S3Uploader {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &S3Uploader{
		presigner:   presigner,
		httpClient:  &http.Client{Timeout: 5 * time.Minute},
		bucket:      bucket,
		root:        root,
		concurrency: concurrency,
		logger:      logger.WithField("component", "image-uploader"),
	}
}

type imageFile struct {
	name        string
	key         string
	localPath   string
	contentType string
}

// Upload validates every file of the batch before transferring any, then uploads them
// in parallel. It returns once all uploads have finished.
func (u *S3Uploader) Upload(ctx context.Context, batch models.ImageBatch) error {
	files, err := u.plan(batch)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)
	for _, f := range files {
		f := f
		g.Go(func() error {
			return u.uploadFile(gctx, f)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("image upload for sku %s failed: %w", batch.SKU, err)
	}

	u.logger.WithFields(logrus.Fields{"sku": batch.SKU, "files": len(files)}).Info("Images uploaded")
	return nil
}

func (u *S3Uploader) plan(batch models.ImageBatch) ([]imageFile, error) {
	prefix := path.Join(
		strings.ToLower(strings.TrimSpace(batch.Brand)),
		strings.ToLower(strings.TrimSpace(batch.Model)),
	)

	files := make([]imageFile, 0, len(batch.FileNames))
	for _, name := range batch.FileNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
		if !allowedExtensions[ext] {
			return nil, fmt.Errorf("%w: %s", ErrInvalidImageType, name)
		}
		key := path.Join("images", prefix, name)
		files = append(files, imageFile{
			name:        name,
			key:         key,
			localPath:   filepath.Join(u.root, filepath.FromSlash(key)),
			contentType: "image/" + ext,
		})
	}
	return files, nil
}

func (u *S3Uploader) uploadFile(ctx context.Context, f imageFile) error {
	file, err := os.Open(f.localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.localPath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", f.localPath, err)
	}

	presigned, err := u.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(f.key),
		ContentType: aws.String(f.contentType),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return fmt.Errorf("failed to presign %s: %w", f.key, err)
	}

	req, err := http.NewRequestWithContext(ctx, presigned.Method, presigned.URL, file)
	if err != nil {
		return fmt.Errorf("failed to build upload request for %s: %w", f.key, err)
	}
	for k, values := range presigned.SignedHeader {
		if strings.EqualFold(k, "Host") {
			continue
		}
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", f.contentType)
	req.ContentLength = info.Size()

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", f.key, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload of %s returned status %d", f.key, resp.StatusCode)
	}

	u.logger.WithFields(logrus.Fields{"key": f.key, "bytes": info.Size()}).Debug("Image uploaded")
	return nil
}
