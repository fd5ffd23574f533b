package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockObjectGetter struct {
	getObjectFunc func(ctx context.Context, bucket, key string) ([]byte, string, error)
}

func (m *MockObjectGetter) GetObject(ctx context.Context, bucket, key string) ([]byte, string, error) {
	return m.getObjectFunc(ctx, bucket, key)
}

func TestLoader_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sunset.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0o600))

	loader := NewLoader(func(ctx context.Context) (ObjectGetter, error) {
		t.Fatal("s3 factory must not be called for local files")
		return nil, nil
	})

	file, err := loader.Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "sunset", file.Name)
	assert.Equal(t, []byte("jpeg"), file.Data)
	assert.Empty(t, file.ContentType)
}

func TestLoader_LocalFileMissing(t *testing.T) {
	_, err := NewLoader(nil).Load(context.Background(), filepath.Join(t.TempDir(), "absent.jpg"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_S3Object(t *testing.T) {
	factoryCalls := 0
	loader := NewLoader(func(ctx context.Context) (ObjectGetter, error) {
		factoryCalls++
		return &MockObjectGetter{
			getObjectFunc: func(ctx context.Context, bucket, key string) ([]byte, string, error) {
				return []byte(bucket + "/" + key), "video/mp4", nil
			},
		}, nil
	})

	for i := 0; i < 2; i++ {
		file, err := loader.Load(context.Background(), "s3://media/raw/clip.mp4")
		require.NoError(t, err)
		assert.Equal(t, "clip", file.Name)
		assert.Equal(t, "media/raw/clip.mp4", string(file.Data))
		assert.Equal(t, "video/mp4", file.ContentType)
	}
	assert.Equal(t, 1, factoryCalls)
}

func TestLoader_S3Errors(t *testing.T) {
	_, err := NewLoader(nil).Load(context.Background(), "s3://media/clip.mp4")
	assert.EqualError(t, err, "s3 source not configured")

	boom := errors.New("no credentials")
	loader := NewLoader(func(ctx context.Context) (ObjectGetter, error) { return nil, boom })
	_, err = loader.Load(context.Background(), "s3://media/clip.mp4")
	assert.ErrorIs(t, err, boom)

	_, err = loader.Load(context.Background(), "s3://media")
	assert.Error(t, err)
}
