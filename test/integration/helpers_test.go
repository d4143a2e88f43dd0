//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/perfectballers/league/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustField(t *testing.T, name string) domain.StatField {
	t.Helper()
	f, err := domain.ParseStatField(name)
	if err != nil {
		t.Fatalf("parse field %q: %v", name, err)
	}
	return f
}

type capturePublisher struct {
	mu     sync.Mutex
	topics []string
	keys   [][]byte
}

func (p *capturePublisher) Publish(_ context.Context, topic string, key, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.keys = append(p.keys, key)
	return nil
}
