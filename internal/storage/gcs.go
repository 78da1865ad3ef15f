package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSOptions параметры подключения к бакету Google Cloud Storage.
type GCSOptions struct {
	Bucket        string
	PublicBaseURL string
	// PublicRead выставляет объектам ACL publicRead. Для бакетов с uniform access выключается.
	PublicRead    bool
	ClientOptions []option.ClientOption
}

// GCSObjectStore реализует ObjectStore поверх бакета GCS.
type GCSObjectStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
	opts   GCSOptions
}

// NewGCSObjectStore создаёт клиент GCS. Учётные данные берутся из окружения (ADC),
// STORAGE_EMULATOR_HOST поддерживается клиентом.
func NewGCSObjectStore(ctx context.Context, opts GCSOptions) (*GCSObjectStore, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("storage: имя бакета не задано")
	}

	client, err := storage.NewClient(ctx, opts.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось создать клиент GCS: %w", err)
	}

	return &GCSObjectStore{
		client: client,
		bucket: client.Bucket(opts.Bucket),
		opts:   opts,
	}, nil
}

// Put записывает объект. ifGeneration задаёт условие записи, см. AnyGeneration.
func (s *GCSObjectStore) Put(ctx context.Context, key string, data []byte, ifGeneration int64) (ObjectInfo, error) {
	obj := s.bucket.Object(key)
	switch {
	case ifGeneration == 0:
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	case ifGeneration > 0:
		obj = obj.If(storage.Conditions{GenerationMatch: ifGeneration})
	}

	writer := obj.NewWriter(ctx)
	writer.ContentType = "application/json"
	writer.CacheControl = "no-cache"
	if s.opts.PublicRead {
		writer.PredefinedACL = "publicRead"
	}

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		return ObjectInfo{}, s.translate(err)
	}
	if err := writer.Close(); err != nil {
		return ObjectInfo{}, s.translate(err)
	}

	info := ObjectInfo{Key: key, URL: s.publicURL(key)}
	if attrs := writer.Attrs(); attrs != nil {
		info.Generation = attrs.Generation
		info.Updated = attrs.Updated
	}
	return info, nil
}

// Read читает объект целиком.
func (s *GCSObjectStore) Read(ctx context.Context, key string) ([]byte, ObjectInfo, error) {
	reader, err := s.bucket.Object(key).NewReader(ctx)
	if err != nil {
		return nil, ObjectInfo{}, s.translate(err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("storage: ошибка чтения объекта %s: %w", key, err)
	}

	return data, ObjectInfo{
		Key:        key,
		URL:        s.publicURL(key),
		Generation: reader.Attrs.Generation,
		Updated:    reader.Attrs.LastModified,
	}, nil
}

// List перечисляет объекты с указанным префиксом.
func (s *GCSObjectStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})

	var out []ObjectInfo
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, s.translate(err)
		}
		out = append(out, ObjectInfo{
			Key:        attrs.Name,
			URL:        s.publicURL(attrs.Name),
			Generation: attrs.Generation,
			Updated:    attrs.Updated,
		})
	}
	return out, nil
}

// Close закрывает клиент GCS.
func (s *GCSObjectStore) Close() error {
	return s.client.Close()
}

func (s *GCSObjectStore) publicURL(key string) string {
	return s.opts.PublicBaseURL + "/" + s.opts.Bucket + "/" + (&url.URL{Path: key}).EscapedPath()
}

// translate приводит ошибки GCS к ошибкам ObjectStore.
func (s *GCSObjectStore) translate(err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return ErrObjectNotFound
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusNotFound:
			return ErrObjectNotFound
		case http.StatusPreconditionFailed:
			return ErrPreconditionFailed
		}
	}
	return err
}
