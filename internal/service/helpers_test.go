package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"docscan/internal/db"
	"docscan/internal/model"
	"docscan/internal/repository"
	"docscan/internal/storage"
)

func newTestStore(t *testing.T) repository.Store {
	t.Helper()
	gormDB, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return repository.NewStore(gormDB)
}

func newTestDocs(t *testing.T) *storage.LocalStorage {
	t.Helper()
	docs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return docs
}

func fixedCalendar(now time.Time) Calendar {
	return Calendar{Location: time.UTC, Now: func() time.Time { return now }}
}

func seedUser(t *testing.T, store repository.Store, username string, credits int, lastReset time.Time) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		PasswordHash: "hash",
		Credits:      credits,
		LastResetAt:  lastReset,
	}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

type recordedEvent struct {
	Type    string
	Payload interface{}
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: eventType, Payload: payload})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}
