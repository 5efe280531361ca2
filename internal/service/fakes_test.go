package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/huddle/internal/domain"
)

type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: make(map[string]time.Time)}
}

func (f *fakeRevoker) Revoke(ctx context.Context, id string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[id] = expiresAt
	return nil
}

func (f *fakeRevoker) IsRevoked(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[id]
	return ok, nil
}

type notification struct {
	table      string
	changeType domain.ChangeType
	record     any
	audience   []uuid.UUID
}

type recordingNotifier struct {
	got []notification
}

func (n *recordingNotifier) NotifyChange(table string, changeType domain.ChangeType, record any, audience []uuid.UUID) {
	n.got = append(n.got, notification{table: table, changeType: changeType, record: record, audience: audience})
}
