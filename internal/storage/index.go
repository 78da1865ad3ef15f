package storage

import (
	"encoding/json"

	"github.com/dgenny/propostas/internal/models"
)

// indexKey объект индекса, отдельный от пространства записей.
const indexKey = "index/propostas.json"

// upsertIndex ставит проекцию в начало индекса, убирает прежнюю версию той же записи
// и обрезает индекс до limit элементов.
func upsertIndex(entries []models.Summary, s models.Summary, limit int) []models.Summary {
	out := make([]models.Summary, 0, len(entries)+1)
	out = append(out, s)
	for _, e := range entries {
		if e.ID == s.ID {
			continue
		}
		out = append(out, e)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// decodeIndex разбирает индекс. Повреждённый индекс считается пустым.
func decodeIndex(raw []byte) ([]models.Summary, bool) {
	var entries []models.Summary
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}
