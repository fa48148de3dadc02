package fakes

import (
	"context"
	"errors"
	"sync"

	"github.com/dhima/audit-store/internal/models"
)

// FakePublisher captures published audits and can simulate failures.
type FakePublisher struct {
	mu        sync.Mutex
	Audits    []models.Audit
	FailNext  bool
	FailError error
}

func (p *FakePublisher) Publish(_ context.Context, a models.Audit) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailNext {
		p.FailNext = false
		if p.FailError == nil {
			p.FailError = errors.New("publish failed")
		}
		return p.FailError
	}
	p.Audits = append(p.Audits, a)
	return nil
}
