package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dgenny/propostas/internal/models"
)

// ListCap единый лимит длины списка предложений для всех бэкендов.
const ListCap = 50

var (
	// ErrNotFound запись отсутствует.
	ErrNotFound = errors.New("storage: предложение не найдено")

	// ErrInvalidID идентификатор не является каноническим UUID. Для вызывающего это тоже "не найдено".
	ErrInvalidID = fmt.Errorf("%w: некорректный идентификатор", ErrNotFound)

	// ErrUnpersisted запись не удалось сохранить ни в одном бэкенде.
	ErrUnpersisted = errors.New("storage: предложение не сохранено")
)

// Backend хранилище записей предложений.
type Backend interface {
	Name() string
	Save(ctx context.Context, p models.Proposal) error
	Get(ctx context.Context, id string) (models.Proposal, error)
	List(ctx context.Context) ([]models.Summary, error)
}

// Reindexer перестраивает вспомогательный индекс списка полным сканированием.
type Reindexer interface {
	Reindex(ctx context.Context) (int, error)
}

// Deleter удаляет запись. Отсутствующая запись не считается ошибкой.
type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// validateID пропускает только канонический UUID в нижнем регистре.
func validateID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.String() != id {
		return ErrInvalidID
	}
	return nil
}

// capSummaries обрезает список до ListCap.
func capSummaries(items []models.Summary) []models.Summary {
	if len(items) > ListCap {
		return items[:ListCap]
	}
	return items
}
