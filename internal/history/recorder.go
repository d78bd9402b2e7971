// Package history persists generated predictions.
package history

import (
	"context"

	"stock-dashboard-backend/internal/model"
)

// Recorder stores prediction records and reads back recent ones.
type Recorder interface {
	RecordPrediction(ctx context.Context, p model.Prediction) error
	Recent(ctx context.Context, symbol string, limit int) ([]model.Prediction, error)
	Close() error
}

// NoopRecorder is used when no database is configured.
type NoopRecorder struct{}

// NewNoopRecorder returns a recorder that stores nothing.
func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

// RecordPrediction discards p.
func (n *NoopRecorder) RecordPrediction(_ context.Context, _ model.Prediction) error { return nil }

// Recent always returns an empty list.
func (n *NoopRecorder) Recent(_ context.Context, _ string, _ int) ([]model.Prediction, error) {
	return []model.Prediction{}, nil
}

// Close is a no-op.
func (n *NoopRecorder) Close() error { return nil }
