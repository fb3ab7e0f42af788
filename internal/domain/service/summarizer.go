package service

import (
	"context"
	"time"

	"MCMTracker/internal/domain/models"
)

// Summarizer turns a prompt into narrative text.
type Summarizer interface {
	Summarize(ctx context.Context, system, prompt string) (string, error)
	Model() string
	Configured() bool
}

// SessionResolver classifies instants into market sessions.
type SessionResolver interface {
	Resolve(t time.Time) models.Session
}
