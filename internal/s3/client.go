package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const uriScheme = "s3://"

// ObjectAPI is the subset of the SDK client used here.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type Client struct {
	s3Client ObjectAPI
}

// NewClient builds an S3 client from static credentials when given, otherwise
// from the default AWS credential chain.
func NewClient(ctx context.Context, region, accessKey, secretKey, endpoint string) (*Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{s3Client: s3Client}, nil
}

// NewClientWithAPI wraps an existing SDK client or test double.
func NewClientWithAPI(api ObjectAPI) *Client {
	return &Client{s3Client: api}
}

// GetObject returns the object body and the content type S3 stored for it.
func (c *Client) GetObject(ctx context.Context, bucket, key string) ([]byte, string, error) {
	result, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get s3://%s/%s: %w", bucket, key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read s3://%s/%s: %w", bucket, key, err)
	}
	return data, aws.ToString(result.ContentType), nil
}

// IsURI reports whether ref uses the s3:// scheme.
func IsURI(ref string) bool {
	return strings.HasPrefix(ref, uriScheme)
}

// ParseURI splits s3://bucket/key into its parts.
func ParseURI(ref string) (bucket, key string, err error) {
	if !IsURI(ref) {
		return "", "", fmt.Errorf("not an s3 uri: %s", ref)
	}
	bucket, key, _ = strings.Cut(strings.TrimPrefix(ref, uriScheme), "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 uri must be s3://bucket/key, got %s", ref)
	}
	return bucket, key, nil
}
