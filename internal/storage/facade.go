package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dgenny/propostas/internal/logger"
	"github.com/dgenny/propostas/internal/metrics"
	"github.com/dgenny/propostas/internal/models"
)

// SaveStatus итог сохранения записи фасадом.
type SaveStatus string

const (
	// SaveOK запись сохранена основным бэкендом.
	SaveOK SaveStatus = "ok"
	// SaveDegraded основной бэкенд недоступен, запись сохранена в резервный локальный.
	SaveDegraded SaveStatus = "degraded"
	// SaveUnpersisted запись не сохранена нигде, ошибка поглощена ради доступности.
	SaveUnpersisted SaveStatus = "unpersisted"
)

// SaveResult результат Save. При статусе, отличном от SaveOK, Warning описывает причину.
type SaveResult struct {
	Status  SaveStatus
	Backend string
	Warning string
}

// Degraded сообщает, что сохранение прошло не через основной бэкенд.
func (r SaveResult) Degraded() bool {
	return r.Status != SaveOK
}

// Options настройки фасада хранилища.
type Options struct {
	// Remote основной бэкенд удалённый: его сбои поглощаются фасадом.
	Remote bool
	// Fallback резервный бэкенд для записей при сбое основного. Может быть nil.
	Fallback Backend
	// StrictWrites возвращает ошибку вместо SaveUnpersisted.
	StrictWrites bool
}

// Storage фасад над выбранным при старте бэкендом.
type Storage struct {
	primary Backend
	opts    Options
}

// New создаёт фасад. Бэкенд не меняется в течение жизни процесса.
func New(primary Backend, opts Options) *Storage {
	return &Storage{primary: primary, opts: opts}
}

// Name возвращает имя основного бэкенда.
func (s *Storage) Name() string {
	return s.primary.Name()
}

// Save сохраняет запись. Ошибка удалённого бэкенда не возвращается вызывающему,
// вместо неё результат помечается как деградированный.
func (s *Storage) Save(ctx context.Context, p models.Proposal) (SaveResult, error) {
	err := s.primary.Save(ctx, p)
	s.observe("save", err)
	if err == nil {
		s.dropFallbackCopy(ctx, p.ID())
		return SaveResult{Status: SaveOK, Backend: s.primary.Name()}, nil
	}
	if !s.opts.Remote {
		return SaveResult{}, err
	}

	metrics.StorageFallbacks.WithLabelValues("save").Inc()
	log := s.log().WithFields(logrus.Fields{"id": p.ID(), "error": err.Error()})

	if s.opts.Fallback != nil {
		ferr := s.opts.Fallback.Save(ctx, p)
		s.observeBackend(s.opts.Fallback, "save", ferr)
		if ferr == nil {
			log.Warn("удалённое хранилище недоступно, предложение сохранено локально")
			return SaveResult{
				Status:  SaveDegraded,
				Backend: s.opts.Fallback.Name(),
				Warning: "Armazenamento remoto indisponível; proposta salva no armazenamento local",
			}, nil
		}
		log = log.WithField("fallback_error", ferr.Error())
	}

	if s.opts.StrictWrites {
		log.Error("предложение не сохранено")
		return SaveResult{}, fmt.Errorf("%w: %v", ErrUnpersisted, err)
	}

	log.Error("предложение не сохранено, ошибка поглощена")
	return SaveResult{
		Status:  SaveUnpersisted,
		Backend: s.primary.Name(),
		Warning: "Armazenamento remoto indisponível; proposta não foi persistida",
	}, nil
}

// Get возвращает запись или ErrNotFound. Для удалённого бэкенда любой сбой
// неотличим от отсутствия записи.
func (s *Storage) Get(ctx context.Context, id string) (models.Proposal, error) {
	// Копия в резервном хранилище новее удалённой: она появляется только при сбое
	// записи и удаляется после следующей успешной записи в основной бэкенд.
	if s.opts.Remote && s.opts.Fallback != nil {
		fp, ferr := s.opts.Fallback.Get(ctx, id)
		s.observeBackend(s.opts.Fallback, "get", ferr)
		if ferr == nil {
			return fp, nil
		}
		if errors.Is(ferr, ErrInvalidID) {
			return nil, ErrNotFound
		}
		if !errors.Is(ferr, ErrNotFound) {
			s.log().WithFields(logrus.Fields{"id": id, "error": ferr.Error()}).
				Warn("не удалось прочитать резервную копию предложения")
		}
	}

	p, err := s.primary.Get(ctx, id)
	s.observe("get", err)
	if err == nil {
		return p, nil
	}
	if !s.opts.Remote {
		return nil, err
	}

	if !errors.Is(err, ErrNotFound) {
		metrics.StorageFallbacks.WithLabelValues("get").Inc()
		s.log().WithFields(logrus.Fields{"id": id, "error": err.Error()}).
			Warn("сбой удалённого хранилища при чтении, запись считается отсутствующей")
	}
	return nil, ErrNotFound
}

// List возвращает не более ListCap проекций, новые первыми.
// Сбой удалённого бэкенда даёт пустой список.
func (s *Storage) List(ctx context.Context) ([]models.Summary, error) {
	items, err := s.primary.List(ctx)
	s.observe("list", err)
	if err != nil {
		if !s.opts.Remote {
			return nil, err
		}
		metrics.StorageFallbacks.WithLabelValues("list").Inc()
		s.log().WithField("error", err.Error()).Warn("сбой удалённого хранилища при получении списка")
		return []models.Summary{}, nil
	}
	if items == nil {
		items = []models.Summary{}
	}
	return capSummaries(items), nil
}

// Reindex перестраивает индекс списка, если бэкенд его поддерживает.
func (s *Storage) Reindex(ctx context.Context) (int, error) {
	r, ok := s.primary.(Reindexer)
	if !ok {
		items, err := s.List(ctx)
		return len(items), err
	}
	n, err := r.Reindex(ctx)
	s.observe("reindex", err)
	return n, err
}

// dropFallbackCopy удаляет устаревшую резервную копию после успешной записи в основной бэкенд.
func (s *Storage) dropFallbackCopy(ctx context.Context, id string) {
	if !s.opts.Remote || s.opts.Fallback == nil {
		return
	}
	d, ok := s.opts.Fallback.(Deleter)
	if !ok {
		return
	}
	if err := d.Delete(ctx, id); err != nil {
		s.log().WithFields(logrus.Fields{"id": id, "error": err.Error()}).
			Warn("не удалось удалить резервную копию предложения")
	}
}

func (s *Storage) observe(op string, err error) {
	s.observeBackend(s.primary, op, err)
}

func (s *Storage) observeBackend(b Backend, op string, err error) {
	result := metrics.ResultOK
	switch {
	case errors.Is(err, ErrNotFound):
		result = metrics.ResultNotFound
	case err != nil:
		result = metrics.ResultError
	}
	metrics.StorageOperations.WithLabelValues(b.Name(), op, result).Inc()
}

func (s *Storage) log() *logrus.Entry {
	return logger.WithComponent("storage").WithField("backend", s.primary.Name())
}
