package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/fathima-sithara/chat-backend/internal/apperr"
)

// ImageStore keeps image blobs in one S3 bucket, keyed by generated id.
type ImageStore struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
}

func NewImageStore(ctx context.Context, region, bucket, endpoint string) (*ImageStore, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		// custom endpoint supports MinIO in local/dev setups
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &ImageStore{client: client, uploader: manager.NewUploader(client), bucket: bucket}, nil
}

// Upload stores the blob under a fresh uuid and returns that id.
func (s *ImageStore) Upload(ctx context.Context, contentType string, data []byte) (string, error) {
	id := uuid.NewString()
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(id),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: upload image: %w", apperr.ErrStorageUnavailable, err)
	}
	return id, nil
}

func (s *ImageStore) Download(ctx context.Context, id string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: id %s", apperr.ErrImageNotFound, id)
		}
		return nil, fmt.Errorf("%w: download image %s: %w", apperr.ErrStorageUnavailable, id, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: download image %s: %w", apperr.ErrStorageUnavailable, id, err)
	}
	return data, nil
}

func (s *ImageStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return fmt.Errorf("%w: delete image %s: %w", apperr.ErrStorageUnavailable, id, err)
	}
	return nil
}
