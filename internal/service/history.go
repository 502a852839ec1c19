package service

import (
	"encoding/json"
	"fmt"
	"time"

	"countdown/internal/model"
)

// HistoryLog is the append-only record of completions. The Session guards it.
type HistoryLog struct {
	items []model.TimerHistoryItem
}

func NewHistoryLog(items []model.TimerHistoryItem) *HistoryLog {
	h := &HistoryLog{}
	h.items = append(h.items, items...)
	return h
}

func (h *HistoryLog) Record(item model.TimerHistoryItem) {
	h.items = append(h.items, item)
}

func (h *HistoryLog) Clear() {
	h.items = nil
}

func (h *HistoryLog) Len() int {
	return len(h.items)
}

// Items returns the log in insertion order.
func (h *HistoryLog) Items() []model.TimerHistoryItem {
	out := make([]model.TimerHistoryItem, len(h.items))
	copy(out, h.items)
	return out
}

// Recent returns the log newest first.
func (h *HistoryLog) Recent() []model.TimerHistoryItem {
	out := make([]model.TimerHistoryItem, 0, len(h.items))
	for i := len(h.items) - 1; i >= 0; i-- {
		out = append(out, h.items[i])
	}
	return out
}

// Export snapshots the log for sharing.
func (h *HistoryLog) Export(now time.Time) model.HistoryExport {
	return model.HistoryExport{ExportDate: now.UTC(), Items: h.Items()}
}

// EncodeExport renders an export document as indented JSON.
func EncodeExport(doc model.HistoryExport) ([]byte, error) {
	if doc.Items == nil {
		doc.Items = []model.TimerHistoryItem{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode history export: %w", err)
	}
	return data, nil
}

func historyItemFor(t *model.Timer, completedAt time.Time) model.TimerHistoryItem {
	return model.TimerHistoryItem{
		ID:          t.ID,
		Name:        t.Name,
		Category:    t.Category,
		Duration:    t.Duration,
		CompletedAt: completedAt.UTC(),
	}
}
