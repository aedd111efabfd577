package aws

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// FileService is the document store contract: fetch uploaded bills, store
// report artifacts. Both operations are fallible and retryless; a failed
// fetch fails one document, a failed store fails the batch.
type FileService interface {
	FetchFile(ctx context.Context, key string) ([]byte, error)
	UploadFile(ctx context.Context, key string, file io.Reader) (string, error)
	TestConnection(ctx context.Context) error
}

type fileService struct {
	s3     *s3.Client
	bucket string
	region string
}

func NewFileService(accessKey, secretKey, bucketName, region string) (FileService, error) {
	credProvider := aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		return aws.Credentials{
			AccessKeyID:     accessKey,
			SecretAccessKey: secretKey,
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credProvider),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg)

	return &fileService{
		s3:     client,
		bucket: bucketName,
		region: region,
	}, nil
}

// FetchFile downloads one object into memory. Bills are capped at a few MB
// by the upload layer, so buffering is fine.
func (s *fileService) FetchFile(ctx context.Context, key string) ([]byte, error) {
	output, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to fetch object from S3")
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}
	defer output.Body.Close()

	content, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	log.Debug().Str("key", key).Int("size", len(content)).Msg("Fetched object from S3")
	return content, nil
}

func (s *fileService) UploadFile(ctx context.Context, key string, file io.Reader) (string, error) {
	uploader := manager.NewUploader(s.s3)
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   file,
	})

	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to upload object to S3")
		return "", err
	}

	// Construct the URL manually
	fileURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
	return fileURL, nil
}

func (s *fileService) TestConnection(ctx context.Context) error {
	// Try to list objects with max 1 result to test the connection
	_, err := s.s3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		MaxKeys: aws.Int32(1), // Only fetch 1 key to minimize data transfer
	})
	log.Err(err).Msg("AWS S3 Test Connection")

	return err
}
