// Package source loads upload payloads from local files or S3.
package source

import (
	"context"
	"fmt"
	"os"
	"sync"

	utils "momentflow/internal"
	"momentflow/internal/s3"
)

// File is a loaded payload. ContentType is empty when the origin did not
// declare one.
type File struct {
	Name        string
	Data        []byte
	ContentType string
}

// ObjectGetter is satisfied by *s3.Client.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, string, error)
}

// ObjectGetterFactory builds the S3 client on first use so local uploads never
// need AWS configuration.
type ObjectGetterFactory func(ctx context.Context) (ObjectGetter, error)

type Loader struct {
	newObjects ObjectGetterFactory

	once    sync.Once
	objects ObjectGetter
	err     error
}

func NewLoader(factory ObjectGetterFactory) *Loader {
	return &Loader{newObjects: factory}
}

func (l *Loader) Load(ctx context.Context, ref string) (*File, error) {
	if s3.IsURI(ref) {
		return l.loadObject(ctx, ref)
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ref, err)
	}
	return &File{Name: utils.BaseName(ref), Data: data}, nil
}

func (l *Loader) loadObject(ctx context.Context, ref string) (*File, error) {
	bucket, key, err := s3.ParseURI(ref)
	if err != nil {
		return nil, err
	}

	l.once.Do(func() {
		if l.newObjects == nil {
			l.err = fmt.Errorf("s3 source not configured")
			return
		}
		l.objects, l.err = l.newObjects(ctx)
	})
	if l.err != nil {
		return nil, l.err
	}

	data, contentType, err := l.objects.GetObject(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	return &File{Name: utils.BaseName(key), Data: data, ContentType: contentType}, nil
}
