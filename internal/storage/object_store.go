package storage

import (
	"context"
	"errors"
	"time"
)

// AnyGeneration снимает условие на поколение объекта при записи.
// Поколение 0 означает "объект не должен существовать".
const AnyGeneration int64 = -1

var (
	ErrObjectNotFound     = errors.New("storage: объект не найден")
	ErrPreconditionFailed = errors.New("storage: объект изменён конкурентно")
)

// ObjectInfo метаданные объекта в удалённом хранилище.
type ObjectInfo struct {
	Key        string
	URL        string
	Generation int64
	Updated    time.Time
}

// ObjectStore минимальный набор операций над публично читаемым объектным хранилищем.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, ifGeneration int64) (ObjectInfo, error)
	Read(ctx context.Context, key string) ([]byte, ObjectInfo, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
