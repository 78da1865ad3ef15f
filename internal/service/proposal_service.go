package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dgenny/propostas/internal/logger"
	"github.com/dgenny/propostas/internal/models"
	"github.com/dgenny/propostas/internal/pkg/apperror"
	"github.com/dgenny/propostas/internal/storage"
)

// ProposalStore описывает взаимодействие сервиса с фасадом хранилища.
type ProposalStore interface {
	Name() string
	Save(ctx context.Context, p models.Proposal) (storage.SaveResult, error)
	Get(ctx context.Context, id string) (models.Proposal, error)
	List(ctx context.Context) ([]models.Summary, error)
	Reindex(ctx context.Context) (int, error)
}

// ProposalService содержит бизнес-логику работы с предложениями.
type ProposalService struct {
	store ProposalStore
	now   func() time.Time
	newID func() string
}

// NewProposalService создаёт новый сервис предложений.
func NewProposalService(store ProposalStore) *ProposalService {
	return &ProposalService{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Backend возвращает имя активного бэкенда хранилища.
func (s *ProposalService) Backend() string {
	return s.store.Name()
}

// Create создаёт запись: поля вызывающего поверх шаблона, идентификатор всегда новый.
func (s *ProposalService) Create(ctx context.Context, fields map[string]any) (models.Proposal, storage.SaveResult, error) {
	id := s.newID()

	p := models.DefaultProposal(s.now()).Merge(fields)
	p[models.FieldID] = id

	res, err := s.store.Save(ctx, p)
	if err != nil {
		return nil, res, saveError("создать", err)
	}

	logger.WithComponent("proposal").WithFields(logrus.Fields{
		"id":     id,
		"status": res.Status,
	}).Info("предложение создано")
	return p, res, nil
}

// Get возвращает запись по идентификатору.
func (s *ProposalService) Get(ctx context.Context, id string) (models.Proposal, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperror.ErrProposalNotFound
		}
		return nil, fmt.Errorf("proposal service: не удалось получить предложение: %w", err)
	}
	return p, nil
}

// Update сливает новые поля поверх сохранённой записи. Опущенные поля сохраняются,
// идентификатор не меняется.
func (s *ProposalService) Update(ctx context.Context, id string, fields map[string]any) (models.Proposal, storage.SaveResult, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, storage.SaveResult{}, err
	}

	updated := existing.Merge(fields)
	updated[models.FieldID] = id

	res, err := s.store.Save(ctx, updated)
	if err != nil {
		return nil, res, saveError("обновить", err)
	}

	logger.WithComponent("proposal").WithFields(logrus.Fields{
		"id":     id,
		"status": res.Status,
	}).Info("предложение обновлено")
	return updated, res, nil
}

// List возвращает сокращённые проекции, новые первыми, не более storage.ListCap.
func (s *ProposalService) List(ctx context.Context) ([]models.Summary, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("proposal service: не удалось получить список: %w", err)
	}
	return items, nil
}

// Reindex перестраивает индекс списка и возвращает число проиндексированных записей.
func (s *ProposalService) Reindex(ctx context.Context) (int, error) {
	n, err := s.store.Reindex(ctx)
	if err != nil {
		return 0, fmt.Errorf("proposal service: не удалось перестроить индекс: %w", err)
	}
	logger.WithComponent("proposal").WithField("indexed", n).Info("индекс перестроен")
	return n, nil
}

// saveError отделяет недоступность хранилища от прочих сбоев записи.
func saveError(action string, err error) error {
	if errors.Is(err, storage.ErrUnpersisted) {
		return apperror.Wrap(err, apperror.ErrCodeUnavailable, "Armazenamento indisponível")
	}
	return fmt.Errorf("proposal service: не удалось %s предложение: %w", action, err)
}
