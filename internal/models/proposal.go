package models

import (
	"fmt"
	"time"
)

// Поля записи, которые используются в списках и индексе.
const (
	FieldID      = "id"
	FieldCliente = "cliente"
	FieldData    = "data"
	FieldPlano   = "plano"
)

// DateLayout формат даты в документе (dd/mm/yyyy).
const DateLayout = "02/01/2006"

// Proposal плоская запись коммерческого предложения: имя поля -> значение.
// Схема не навязывается, хранится любой набор полей.
type Proposal map[string]any

// ID возвращает идентификатор записи или пустую строку.
func (p Proposal) ID() string {
	return p.String(FieldID)
}

// String возвращает строковое представление поля. Отсутствующее поле даёт "".
func (p Proposal) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Bool трактует поле как флаг секции документа.
func (p Proposal) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "on" || v == "1"
	case float64:
		return v != 0
	default:
		return false
	}
}

// Clone возвращает поверхностную копию записи.
func (p Proposal) Clone() Proposal {
	out := make(Proposal, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge возвращает новую запись: поля patch поверх полей p.
func (p Proposal) Merge(patch map[string]any) Proposal {
	out := p.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Summary проецирует запись в сокращённое представление для списков.
func (p Proposal) Summary(updatedAt time.Time) Summary {
	return Summary{
		ID:        p.ID(),
		Cliente:   p.String(FieldCliente),
		Data:      p.String(FieldData),
		Plano:     p.String(FieldPlano),
		UpdatedAt: updatedAt.UTC(),
	}
}

// Summary сокращённая проекция записи. Она же элемент индекса удалённого хранилища.
type Summary struct {
	ID        string    `json:"id"`
	Cliente   string    `json:"cliente"`
	Data      string    `json:"data"`
	Plano     string    `json:"plano"`
	UpdatedAt time.Time `json:"updatedAt"`
}
