package storage

import (
	"context"

	"github.com/dgenny/propostas/internal/config"
	"github.com/dgenny/propostas/internal/logger"
)

// NewFromConfig выбирает бэкенд по флагу REMOTE_STORAGE. Возвращённую функцию
// закрытия нужно вызвать при остановке процесса.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Storage, func() error, error) {
	local := NewFileStore(cfg.DataDir)
	if !cfg.RemoteStorage {
		logger.WithComponent("storage").WithField("dir", cfg.DataDir).Info("используется локальное хранилище")
		return New(local, Options{}), func() error { return nil }, nil
	}

	objects, err := NewGCSObjectStore(ctx, GCSOptions{
		Bucket:        cfg.GCSBucket,
		PublicBaseURL: cfg.GCSPublicBaseURL,
		PublicRead:    cfg.GCSPublicRead,
	})
	if err != nil {
		return nil, nil, err
	}

	opts := Options{Remote: true, StrictWrites: cfg.StrictWrites}
	if cfg.LocalFallback {
		opts.Fallback = local
	}

	logger.WithComponent("storage").WithField("bucket", cfg.GCSBucket).Info("используется удалённое хранилище")
	return New(NewBlobStore(objects, cfg.RemoteTimeout), opts), objects.Close, nil
}
