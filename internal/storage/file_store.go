package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dgenny/propostas/internal/logger"
	"github.com/dgenny/propostas/internal/models"
)

const fileExt = ".json"

// FileStore хранит каждое предложение отдельным JSON-файлом {id}.json.
type FileStore struct {
	rootPath string

	// Порядковые номера записей этого процесса. Различают файлы с одинаковым mtime
	// на файловых системах с грубыми метками времени.
	mu      sync.Mutex
	seq     uint64
	written map[string]uint64
}

// NewFileStore создаёт файловое хранилище. Каталог создаётся при первой записи или чтении.
func NewFileStore(rootPath string) *FileStore {
	return &FileStore{rootPath: rootPath, written: make(map[string]uint64)}
}

// Name возвращает имя бэкенда.
func (s *FileStore) Name() string {
	return "local"
}

// Root возвращает каталог хранилища.
func (s *FileStore) Root() string {
	return s.rootPath
}

// Save перезаписывает файл записи. Запись идёт через временный файл и rename.
func (s *FileStore) Save(ctx context.Context, p models.Proposal) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id := p.ID()
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.ensureDir(); err != nil {
		return err
	}

	payload, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: не удалось сериализовать предложение %s: %w", id, err)
	}

	targetPath := s.path(id)
	tempPath := targetPath + ".tmp"

	if err := os.WriteFile(tempPath, payload, 0o644); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	s.mu.Lock()
	s.seq++
	s.written[id] = s.seq
	s.mu.Unlock()
	return nil
}

// Delete удаляет файл записи.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}

	if err := os.Remove(s.path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: не удалось удалить предложение %s: %w", id, err)
	}

	s.mu.Lock()
	delete(s.written, id)
	s.mu.Unlock()
	return nil
}

// Get читает запись по идентификатору.
func (s *FileStore) Get(ctx context.Context, id string) (models.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: не удалось прочитать предложение %s: %w", id, err)
	}

	var p models.Proposal
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("storage: повреждённый файл предложения %s: %w", id, err)
	}
	if p == nil {
		return nil, fmt.Errorf("storage: пустой файл предложения %s", id)
	}
	return p, nil
}

// List читает все записи каталога и возвращает проекции, новые первыми.
// Повреждённые файлы пропускаются.
func (s *FileStore) List(ctx context.Context) ([]models.Summary, error) {
	items, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}
	return capSummaries(items), nil
}

// Reindex у файлового хранилища нет индекса, возвращается число записей на диске.
func (s *FileStore) Reindex(ctx context.Context) (int, error) {
	items, err := s.scan(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (s *FileStore) scan(ctx context.Context) ([]models.Summary, error) {
	if err := s.ensureDir(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.rootPath)
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось прочитать каталог %s: %w", s.rootPath, err)
	}

	items := make([]models.Summary, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}

		summary, err := s.readSummary(entry)
		if err != nil {
			logger.WithComponent("storage").WithFields(logrus.Fields{
				"file":  entry.Name(),
				"error": err.Error(),
			}).Warn("пропущен повреждённый файл предложения")
			continue
		}
		items = append(items, summary)
	}

	s.mu.Lock()
	order := make(map[string]uint64, len(s.written))
	for id, n := range s.written {
		order[id] = n
	}
	s.mu.Unlock()

	// При равном mtime позже записанная этим процессом запись идёт первой,
	// записи прошлых запусков упорядочиваются по id.
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].UpdatedAt.Equal(items[j].UpdatedAt) {
			return items[i].UpdatedAt.After(items[j].UpdatedAt)
		}
		if oi, oj := order[items[i].ID], order[items[j].ID]; oi != oj {
			return oi > oj
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (s *FileStore) readSummary(entry os.DirEntry) (models.Summary, error) {
	info, err := entry.Info()
	if err != nil {
		return models.Summary{}, err
	}

	raw, err := os.ReadFile(filepath.Join(s.rootPath, entry.Name()))
	if err != nil {
		return models.Summary{}, err
	}

	var p models.Proposal
	if err := json.Unmarshal(raw, &p); err != nil {
		return models.Summary{}, err
	}

	summary := p.Summary(info.ModTime())
	if summary.ID == "" {
		summary.ID = strings.TrimSuffix(entry.Name(), fileExt)
	}
	return summary, nil
}

func (s *FileStore) ensureDir() error {
	if err := os.MkdirAll(s.rootPath, 0o755); err != nil {
		return fmt.Errorf("storage: не удалось создать каталог %s: %w", s.rootPath, err)
	}
	return nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.rootPath, id+fileExt)
}
