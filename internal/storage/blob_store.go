package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dgenny/propostas/internal/logger"
	"github.com/dgenny/propostas/internal/metrics"
	"github.com/dgenny/propostas/internal/models"
)

const (
	proposalPrefix = "propostas/"

	// indexAttempts число попыток записи индекса при конкурентном изменении.
	indexAttempts  = 3
	reindexWorkers = 8
)

// BlobStore хранит записи объектами propostas/{id}.json и поддерживает индекс для списков.
type BlobStore struct {
	objects ObjectStore
	timeout time.Duration
	now     func() time.Time

	// indexMu сериализует read-modify-write индекса внутри процесса.
	indexMu sync.Mutex
}

// NewBlobStore создаёт удалённое хранилище. timeout ограничивает каждое обращение к объектам.
func NewBlobStore(objects ObjectStore, timeout time.Duration) *BlobStore {
	return &BlobStore{
		objects: objects,
		timeout: timeout,
		now:     time.Now,
	}
}

// Name возвращает имя бэкенда.
func (s *BlobStore) Name() string {
	return "remote"
}

// Save пишет объект записи, затем обновляет индекс. Сбой индекса на результат не влияет.
func (s *BlobStore) Save(ctx context.Context, p models.Proposal) error {
	id := p.ID()
	if err := validateID(id); err != nil {
		return err
	}

	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("storage: не удалось сериализовать предложение %s: %w", id, err)
	}

	opCtx, cancel := s.withTimeout(ctx)
	info, err := s.objects.Put(opCtx, proposalKey(id), payload, AnyGeneration)
	cancel()
	if err != nil {
		return fmt.Errorf("storage: не удалось сохранить объект %s: %w", proposalKey(id), err)
	}

	log := logger.WithComponent("storage").WithFields(logrus.Fields{"id": id, "url": info.URL})
	log.Debug("предложение сохранено в удалённом хранилище")

	if err := s.updateIndex(ctx, p.Summary(s.now())); err != nil {
		metrics.IndexUpdates.WithLabelValues(metrics.ResultError).Inc()
		log.WithField("error", err.Error()).Warn("не удалось обновить индекс предложений")
	} else {
		metrics.IndexUpdates.WithLabelValues(metrics.ResultOK).Inc()
	}
	return nil
}

// Get ищет объект по точному ключу, затем по префиксу имени.
func (s *BlobStore) Get(ctx context.Context, id string) (models.Proposal, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, _, err := s.objects.Read(opCtx, proposalKey(id))
	if errors.Is(err, ErrObjectNotFound) {
		key, lerr := s.resolveByPrefix(opCtx, id)
		if lerr != nil {
			return nil, lerr
		}
		raw, _, err = s.objects.Read(opCtx, key)
	}
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: не удалось прочитать предложение %s: %w", id, err)
	}

	var p models.Proposal
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("storage: повреждённый объект предложения %s: %w", id, err)
	}
	if p == nil {
		return nil, fmt.Errorf("storage: пустой объект предложения %s", id)
	}
	return p, nil
}

// List возвращает содержимое индекса. Полное сканирование здесь не выполняется.
func (s *BlobStore) List(ctx context.Context) ([]models.Summary, error) {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	entries, _, err := s.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.Summary{}
	}
	return capSummaries(entries), nil
}

// Reindex строит индекс заново по всем объектам пространства propostas/.
func (s *BlobStore) Reindex(ctx context.Context) (int, error) {
	opCtx, cancel := s.withTimeout(ctx)
	objects, err := s.objects.List(opCtx, proposalPrefix)
	cancel()
	if err != nil {
		return 0, fmt.Errorf("storage: не удалось получить список объектов: %w", err)
	}

	var keys []ObjectInfo
	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, fileExt) {
			keys = append(keys, obj)
		}
	}

	found := make([]*models.Summary, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reindexWorkers)
	for i, obj := range keys {
		g.Go(func() error {
			summary, err := s.readSummary(gctx, obj)
			if err != nil {
				// Объект пропускается, индекс строится по остальным.
				logger.WithComponent("storage").WithFields(logrus.Fields{
					"key":   obj.Key,
					"error": err.Error(),
				}).Warn("объект пропущен при перестроении индекса")
				return nil
			}
			found[i] = &summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	entries := make([]models.Summary, 0, len(found))
	for _, summary := range found {
		if summary != nil {
			entries = append(entries, *summary)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	entries = capSummaries(entries)

	payload, err := json.Marshal(entries)
	if err != nil {
		return 0, fmt.Errorf("storage: не удалось сериализовать индекс: %w", err)
	}

	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	opCtx, cancel = s.withTimeout(ctx)
	defer cancel()
	if _, err := s.objects.Put(opCtx, indexKey, payload, AnyGeneration); err != nil {
		return 0, fmt.Errorf("storage: не удалось записать индекс: %w", err)
	}
	return len(entries), nil
}

// updateIndex выполняет read-modify-write индекса. Запись условна по поколению,
// при конкурентном изменении из другого процесса делается повтор.
func (s *BlobStore) updateIndex(ctx context.Context, summary models.Summary) error {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	for attempt := 1; attempt <= indexAttempts; attempt++ {
		entries, generation, err := s.loadIndex(ctx)
		if err != nil {
			logger.WithComponent("storage").WithField("error", err.Error()).
				Warn("индекс недоступен, используется пустой")
			entries, generation = nil, AnyGeneration
		}

		payload, err := json.Marshal(upsertIndex(entries, summary, ListCap))
		if err != nil {
			return fmt.Errorf("storage: не удалось сериализовать индекс: %w", err)
		}

		opCtx, cancel := s.withTimeout(ctx)
		_, err = s.objects.Put(opCtx, indexKey, payload, generation)
		cancel()
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrPreconditionFailed) {
			return fmt.Errorf("storage: не удалось записать индекс: %w", err)
		}
		metrics.IndexUpdates.WithLabelValues("conflict").Inc()
	}
	return fmt.Errorf("storage: индекс изменён конкурентно %d раз подряд: %w", indexAttempts, ErrPreconditionFailed)
}

// loadIndex читает индекс и его поколение. Отсутствующий индекс даёт поколение 0,
// повреждённый считается пустым. Ошибкой возвращаются только сбои чтения.
func (s *BlobStore) loadIndex(ctx context.Context) ([]models.Summary, int64, error) {
	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, info, err := s.objects.Read(opCtx, indexKey)
	if errors.Is(err, ErrObjectNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("storage: не удалось прочитать индекс: %w", err)
	}

	entries, ok := decodeIndex(raw)
	if !ok {
		logger.WithComponent("storage").Warn("индекс повреждён, используется пустой")
		return nil, info.Generation, nil
	}
	return entries, info.Generation, nil
}

func (s *BlobStore) resolveByPrefix(ctx context.Context, id string) (string, error) {
	objects, err := s.objects.List(ctx, proposalPrefix+id)
	if err != nil {
		return "", fmt.Errorf("storage: не удалось найти объект предложения %s: %w", id, err)
	}
	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, fileExt) {
			return obj.Key, nil
		}
	}
	return "", ErrNotFound
}

func (s *BlobStore) readSummary(ctx context.Context, obj ObjectInfo) (models.Summary, error) {
	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, _, err := s.objects.Read(opCtx, obj.Key)
	if err != nil {
		return models.Summary{}, err
	}

	var p models.Proposal
	if err := json.Unmarshal(raw, &p); err != nil {
		return models.Summary{}, err
	}

	summary := p.Summary(obj.Updated)
	if summary.ID == "" {
		summary.ID = strings.TrimSuffix(strings.TrimPrefix(obj.Key, proposalPrefix), fileExt)
	}
	return summary, nil
}

func (s *BlobStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func proposalKey(id string) string {
	return proposalPrefix + id + fileExt
}
