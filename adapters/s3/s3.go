package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI 是上傳需要用到的 S3 API
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	Bucket          string
	PublicBaseURL   string
}

// Uploader 把圖片上傳到 S3 相容的儲存空間，並回傳公開的 URL
type Uploader struct {
	// client 是 S3 客戶端。
	client PutObjectAPI
	// bucket 是 S3 存儲桶的名稱。
	bucket string
	// publicEndpoint 是 S3 存儲桶的公開 Endpoint。
	publicEndpoint *url.URL
}

func NewUploader(client PutObjectAPI, bucket, publicBaseURL string) (*Uploader, error) {
	const op = "NewUploader"
	publicEndpoint, err := url.Parse(publicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to parse public base URL, err=%w", op, err)
	}
	return &Uploader{client: client, bucket: bucket, publicEndpoint: publicEndpoint}, nil
}

// NewUploaderFromConfig 以靜態金鑰建立 S3 客戶端
func NewUploaderFromConfig(ctx context.Context, config Config) (*Uploader, error) {
	const op = "NewUploaderFromConfig"
	cfg, err := awsCfg.LoadDefaultConfig(
		ctx,
		awsCfg.WithBaseEndpoint(config.Endpoint),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, "")),
		awsCfg.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to load AWS config, err=%w", op, err)
	}
	return NewUploader(s3.NewFromConfig(cfg), config.Bucket, config.PublicBaseURL)
}

func (u *Uploader) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	const op = "Upload"
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to upload file to S3, err=%w", op, err)
	}
	uri := *u.publicEndpoint
	uri.Path = strings.TrimSuffix(uri.Path, "/") + "/" + strings.TrimPrefix(key, "/")
	return uri.String(), nil
}
