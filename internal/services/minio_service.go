package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"collabCanvas/configs"
	"collabCanvas/internal/enums"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioService struct {
	minioClient *minio.Client
	config      *configs.Config
}

func NewMinioService(ctx context.Context, config *configs.Config) (*MinioService, error) {
	endpoint := config.Viper.GetString("minio.endpoint")
	accessKeyID := config.Viper.GetString("minio.access_key_id")
	secretAccessKey := config.Viper.GetString("minio.secret_access_key")
	useSSL := config.Viper.GetBool("minio.use_ssl")

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}

	bucketName := enums.FILE_BUCKET_CANVAS_IMAGES
	if err := minioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
		exists, errBucketExists := minioClient.BucketExists(ctx, bucketName)
		if errBucketExists != nil || !exists {
			return nil, fmt.Errorf("create bucket %s: %w", bucketName, err)
		}
		slog.Debug("NewMinioService - bucket already exists", "bucket", bucketName)
	} else {
		slog.Info("NewMinioService - bucket created", "bucket", bucketName)
	}

	return &MinioService{
		minioClient: minioClient,
		config:      config,
	}, nil
}

func (ms *MinioService) UploadFile(ctx context.Context, fileName string, file io.Reader, fileSize int64, contentType string, bucketName string) (string, error) {
	info, err := ms.minioClient.PutObject(ctx, bucketName, fileName, file, fileSize, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return ms.GetPublicFileUrl(bucketName, info.Key), nil
}

func (ms *MinioService) GetPublicFileUrl(bucketName, fileKey string) string {
	scheme := "http"
	if ms.config.Viper.GetBool("minio.use_ssl") {
		scheme = "https"
	}
	externalEndpoint := ms.config.Viper.GetString("minio.external_endpoint")
	return fmt.Sprintf("%s://%s/%s/%s", scheme, externalEndpoint, bucketName, fileKey)
}
