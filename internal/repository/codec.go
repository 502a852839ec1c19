package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"

	"countdown/internal/model"
)

func encodeJSON(key string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	return data, nil
}

// decodeList parses a stored JSON array. Anything that is not a well-formed
// array, including null, yields an empty list.
func decodeList[T any](logger *log.Logger, key string, data []byte) []T {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []T{}
	}
	if data[0] != '[' {
		logger.Printf("[warn] stored %s is not a JSON array, ignoring it", key)
		return []T{}
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		logger.Printf("[warn] stored %s is malformed, ignoring it: %v", key, err)
		return []T{}
	}
	if out == nil {
		out = []T{}
	}
	return out
}

func decodeTimers(logger *log.Logger, data []byte) []model.Timer {
	return decodeList[model.Timer](logger, model.KeyTimers, data)
}

func decodeHistory(logger *log.Logger, data []byte) []model.TimerHistoryItem {
	return decodeList[model.TimerHistoryItem](logger, model.KeyHistory, data)
}
