// Package workers defines the worker record served by the marketplace backend and
// the category and ordering rules the list page applies to it.
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Worker is a service-provider record. Only ID and Category drive the list page;
// the remaining fields feed card rendering and sorting.
type Worker struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name,omitempty"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Image       string    `json:"image,omitempty"`
	Experience  int       `json:"experience,omitempty"`
	Rating      float64   `json:"rating,omitempty"`
	Reviews     int       `json:"reviews,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

// UnmarshalJSON decodes _id and category strictly. The display and sort fields
// keep their zero value when the backend sends them with an unexpected type, so a
// single odd record does not fail the whole collection.
func (w *Worker) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          string          `json:"_id"`
		Category    string          `json:"category"`
		Name        json.RawMessage `json:"name"`
		Description json.RawMessage `json:"description"`
		Location    json.RawMessage `json:"location"`
		Phone       json.RawMessage `json:"phone"`
		Image       json.RawMessage `json:"image"`
		Experience  json.RawMessage `json:"experience"`
		Rating      json.RawMessage `json:"rating"`
		Reviews     json.RawMessage `json:"reviews"`
		CreatedAt   json.RawMessage `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode worker: %w", err)
	}
	*w = Worker{
		ID:          raw.ID,
		Category:    raw.Category,
		Name:        looseString(raw.Name),
		Description: looseString(raw.Description),
		Location:    looseString(raw.Location),
		Phone:       looseString(raw.Phone),
		Image:       looseString(raw.Image),
		Experience:  int(looseNumber(raw.Experience)),
		Rating:      looseNumber(raw.Rating),
		Reviews:     int(looseNumber(raw.Reviews)),
		CreatedAt:   looseTime(raw.CreatedAt),
	}
	return nil
}

// looseString accepts a JSON string or number.
func looseString(raw json.RawMessage) string {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return ""
	}
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// looseNumber accepts a JSON number or a string holding one ("4.5").
func looseNumber(raw json.RawMessage) float64 {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return 0
	}
	switch v := v.(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// looseTime accepts RFC 3339 timestamps, with or without fractional seconds.
func looseTime(raw json.RawMessage) time.Time {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return time.Time{}
	}
	at, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return at
}

// Source returns the full worker collection. Implementations never filter.
type Source interface {
	ListWorkers(ctx context.Context) ([]Worker, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]Worker, error)

// ListWorkers calls f.
func (f SourceFunc) ListWorkers(ctx context.Context) ([]Worker, error) {
	return f(ctx)
}

// FindByID returns the worker with the given ID.
func FindByID(list []Worker, id string) (Worker, bool) {
	for _, w := range list {
		if w.ID == id {
			return w, true
		}
	}
	return Worker{}, false
}
