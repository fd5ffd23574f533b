package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockObjectAPI implements ObjectAPI for testing
type MockObjectAPI struct {
	getObjectFunc func(ctx context.Context, params *s3.GetObjectInput) (*s3.GetObjectOutput, error)
}

func (m *MockObjectAPI) GetObject(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return m.getObjectFunc(ctx, params)
}

func TestParseURI(t *testing.T) {
	tests := []struct {
		ref        string
		bucket     string
		key        string
		expectFail bool
	}{
		{ref: "s3://media/raw/clip.mp4", bucket: "media", key: "raw/clip.mp4"},
		{ref: "s3://media/a", bucket: "media", key: "a"},
		{ref: "s3://media", expectFail: true},
		{ref: "s3://media/", expectFail: true},
		{ref: "s3:///key", expectFail: true},
		{ref: "/tmp/clip.mp4", expectFail: true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			bucket, key, err := ParseURI(tt.ref)
			if tt.expectFail {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestClient_GetObject(t *testing.T) {
	mock := &MockObjectAPI{
		getObjectFunc: func(ctx context.Context, params *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			assert.Equal(t, "media", aws.ToString(params.Bucket))
			assert.Equal(t, "raw/clip.mp4", aws.ToString(params.Key))
			return &s3.GetObjectOutput{
				Body:        io.NopCloser(strings.NewReader("payload")),
				ContentType: aws.String("video/mp4"),
			}, nil
		},
	}

	data, contentType, err := NewClientWithAPI(mock).GetObject(context.Background(), "media", "raw/clip.mp4")

	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, "video/mp4", contentType)
}

func TestClient_GetObject_Error(t *testing.T) {
	mock := &MockObjectAPI{
		getObjectFunc: func(ctx context.Context, params *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			return nil, errors.New("NoSuchKey")
		},
	}

	_, _, err := NewClientWithAPI(mock).GetObject(context.Background(), "media", "missing")

	assert.ErrorContains(t, err, "s3://media/missing")
	assert.ErrorContains(t, err, "NoSuchKey")
}
