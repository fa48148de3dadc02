package fakes

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/dhima/audit-store/internal/models"
)

var ErrNotFound = errors.New("not found")

// FakeAuditStore is an in-memory audit Store with the same observable behavior as the
// SQL adapter: ids are generated on save, batch save and criteria delete do nothing,
// count is zero and queries ignore criteria.
type FakeAuditStore struct {
	mu     sync.Mutex
	nextID int64
	audits map[int64]models.Audit

	// FailNext makes the next store call return FailError (or a generic error).
	FailNext  bool
	FailError error
}

func NewFakeAuditStore() *FakeAuditStore {
	return &FakeAuditStore{audits: make(map[int64]models.Audit)}
}

func (f *FakeAuditStore) fail() error {
	if !f.FailNext {
		return nil
	}
	f.FailNext = false
	if f.FailError == nil {
		return errors.New("store failed")
	}
	return f.FailError
}

func (f *FakeAuditStore) Save(_ context.Context, a *models.Audit) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return 0, err
	}
	f.nextID++
	stored := *a
	stored.ID = f.nextID
	f.audits[stored.ID] = stored
	return stored.ID, nil
}

func (f *FakeAuditStore) SaveAll(_ context.Context, _ []models.Audit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail()
}

func (f *FakeAuditStore) Delete(_ context.Context, a *models.Audit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return err
	}
	delete(f.audits, a.ID)
	return nil
}

func (f *FakeAuditStore) DeleteByQuery(_ context.Context, _ models.AuditQuery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail()
}

func (f *FakeAuditStore) Count(_ context.Context, _ models.AuditQuery) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return 0, f.fail()
}

func (f *FakeAuditStore) Query(_ context.Context, _ models.AuditQuery) ([]models.Audit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return nil, err
	}
	out := make([]models.Audit, 0, len(f.audits))
	for _, a := range f.audits {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get returns a stored audit by id.
func (f *FakeAuditStore) Get(id int64) (models.Audit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.audits[id]
	if !ok {
		return models.Audit{}, ErrNotFound
	}
	return a, nil
}

// Len returns the number of stored audits.
func (f *FakeAuditStore) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.audits)
}
