// Package objectstore загружает чеки об оплате в S3-совместимое хранилище
// и отдаёт их публичные ссылки.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"

	"github.com/magabrotheeeer/cloudslims/internal/config"
)

var (
	// ErrEmptyFile — файл пустой.
	ErrEmptyFile = errors.New("empty file")
	// ErrTooLarge — файл больше допустимого размера.
	ErrTooLarge = errors.New("file too large")
	// ErrUnsupportedType — файл не является поддерживаемым изображением.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrUpload — хранилище отклонило загрузку.
	ErrUpload = errors.New("upload failed")
)

var allowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp"}

// API — используемая часть клиента S3.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store — хранилище чеков.
type Store struct {
	log        *slog.Logger
	api        API
	bucket     string
	publicBase string
	maxSize    int64
	timeout    time.Duration
	now        func() time.Time
}

// New создаёт клиента S3 по конфигу.
func New(ctx context.Context, log *slog.Logger, cfg config.S3) (*Store, error) {
	const op = "objectstore.New"

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return NewWithAPI(log, client, cfg), nil
}

// NewWithAPI создаёт Store поверх готового клиента.
func NewWithAPI(log *slog.Logger, api API, cfg config.S3) *Store {
	base := cfg.PublicBaseURL
	if base == "" {
		base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = 5 << 20
	}
	return &Store{
		log:        log,
		api:        api,
		bucket:     cfg.Bucket,
		publicBase: strings.TrimRight(base, "/"),
		maxSize:    maxSize,
		timeout:    cfg.UploadTimeout,
		now:        time.Now,
	}
}

// Upload кладёт объект по ключу path.
func (s *Store) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	const op = "objectstore.Upload"
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(path),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrUpload, err)
	}
	return nil
}

// PublicURL возвращает публичную ссылку на объект.
func (s *Store) PublicURL(path string) string {
	return s.publicBase + "/" + path
}

// Detect проверяет размер и тип изображения, возвращает MIME-тип и расширение.
func (s *Store) Detect(data []byte) (string, string, error) {
	const op = "objectstore.Detect"
	if len(data) == 0 {
		return "", "", fmt.Errorf("%s: %w", op, ErrEmptyFile)
	}
	if int64(len(data)) > s.maxSize {
		return "", "", fmt.Errorf("%s: %d bytes: %w", op, len(data), ErrTooLarge)
	}
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedTypes...) {
		return "", "", fmt.Errorf("%s: %s: %w", op, mt.String(), ErrUnsupportedType)
	}
	return mt.String(), mt.Extension(), nil
}

// ProofKey строит ключ объекта: <user_id>/<unix_millis><ext>.
func ProofKey(userID string, at time.Time, ext string) string {
	return fmt.Sprintf("%s/%d%s", userID, at.UnixMilli(), ext)
}

// UploadProof проверяет и загружает чек пользователя, возвращает его публичную ссылку.
func (s *Store) UploadProof(ctx context.Context, userID string, data []byte) (string, error) {
	const op = "objectstore.UploadProof"
	contentType, ext, err := s.Detect(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	key := ProofKey(userID, s.now(), ext)
	if err = s.Upload(ctx, key, data, contentType); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("payment proof uploaded", slog.String("key", key), slog.Int("size", len(data)))
	return s.PublicURL(key), nil
}
