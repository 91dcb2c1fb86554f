package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"strings"
	"time"

	"github.com/loftline/propgraph/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewS3Client builds an S3 client from the AWS_* environment variables.
// Path-style addressing keeps MinIO-style endpoints working.
func NewS3Client(ctx context.Context) *s3.Client {
	region := util.GetEnv("AWS_REGION")
	endpoint := util.GetEnv("AWS_ENDPOINT")
	accessKey := util.GetEnv("AWS_ACCESS_KEY")
	secretKey := util.GetEnv("AWS_SECRET_KEY")
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(region),
		config.WithBaseEndpoint(endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
	)
	if err != nil {
		return nil
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return client
}

// PutAttachment uploads a graph attachment under graphs/<graphID>/attachments
// and returns the object key. The key embeds the caller-provided id so two
// uploads of the same file name never collide.
func PutAttachment(ctx context.Context, client *s3.Client, graphID, name, id string, file io.ReadSeeker) (string, error) {
	bucket := util.GetEnv("AWS_BUCKET")
	ext := name
	if idx := strings.LastIndex(name, "."); idx != -1 {
		ext = name[idx+1:]
	}
	mimeType := mime.TypeByExtension("." + ext)
	key := fmt.Sprintf("graphs/%s/attachments/%s.%s", graphID, id, ext)
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload attachment to S3: %w", err)
	}
	return key, nil
}

// GenerateDownloadLink returns a presigned GET URL for an attachment key,
// valid for one hour.
func GenerateDownloadLink(ctx context.Context, client *s3.Client, key string) (string, error) {
	bucket := util.GetEnv("AWS_BUCKET")

	if _, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return "", fmt.Errorf("attachment does not exist: %w", err)
	}

	presigner := s3.NewPresignClient(client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = time.Hour
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign attachment: %w", err)
	}

	u, err := url.Parse(req.URL)
	if err != nil {
		return "", fmt.Errorf("failed to parse presigned URL: %w", err)
	}
	return u.String(), nil
}

// DeleteAttachments removes every object stored under a graph's attachment
// prefix. Called when the graph itself is deleted.
func DeleteAttachments(ctx context.Context, client *s3.Client, graphID string) error {
	bucket := util.GetEnv("AWS_BUCKET")
	prefix := fmt.Sprintf("graphs/%s/attachments/", graphID)

	list, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return fmt.Errorf("failed to list attachments: %w", err)
	}

	for _, obj := range list.Contents {
		_, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    obj.Key,
		})
		if err != nil {
			return fmt.Errorf("failed to delete attachment %s: %w", aws.ToString(obj.Key), err)
		}
	}
	return nil
}
